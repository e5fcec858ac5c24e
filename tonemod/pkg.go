package tonemod

import (
	"github.com/loofah-social/loofah/tonemod/engine"
	"github.com/loofah-social/loofah/tonemod/rewrite"
)

type Item = engine.Item
type Suggestion = engine.Suggestion
type ClassificationResult = engine.ClassificationResult
type StrictnessLevel = engine.StrictnessLevel
type RewriteResult = rewrite.Result

var (
	SuggestKeep    = engine.SuggestKeep
	SuggestHide    = engine.SuggestHide
	SuggestRewrite = engine.SuggestRewrite

	LevelRelaxed  = engine.LevelRelaxed
	LevelModerate = engine.LevelModerate
	LevelStrict   = engine.LevelStrict

	SourceRemote      = rewrite.SourceRemote
	SourceLocal       = rewrite.SourceLocal
	SourcePassthrough = rewrite.SourcePassthrough
)

var ParseLevel = engine.ParseLevel
