// Tone-moderation core for short user-generated feed text.
//
// This package (`github.com/loofah-social/loofah/tonemod`) classifies feed
// items as safe-to-keep, hide-worthy, or rewrite-worthy, and rewrites
// flagged or stylistically-redirected text in to a softened or
// style-transformed variant. Classification combines learned preference
// tokens with built-in heuristic rules, gated by a strictness level.
// Rewrites are delegated to an external completion service, with a
// deterministic local transform chain as the fallback so that every request
// gets an answer even when that service is down.
//
// See `cmd/loofah` for the daemon built on this package.
package tonemod
