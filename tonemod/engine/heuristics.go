package engine

import (
	"regexp"
	"strings"

	"github.com/loofah-social/loofah/tonemod/keyword"
)

type Category string

const (
	CategoryProfanity  = Category("profanity")
	CategorySexual     = Category("sexual")
	CategoryNoise      = Category("noise")
	CategoryEmptyReply = Category("empty-reply")
)

// Lexicon terms are matched as case-insensitive substrings of the folded
// text, since Japanese has no token boundaries to split on. Terms are listed
// in their common surface forms; folding covers width and case variants.
var lexicons = map[Category][]string{
	CategoryProfanity: {
		"死ね", "殺すぞ", "くたばれ", "消えろ", "黙れ",
		"きもい", "キモい", "キモイ", "うざい", "ウザい", "ウザイ",
		"クズ", "カス野郎", "ぶっ殺",
		"fuck you", "fuck off", "piece of shit", "asshole", "bitch",
		"kill yourself", "kys", "dumbass",
	},
	CategorySexual: {
		"エロ画像", "えろ", "セフレ", "裏垢女子", "援交", "おっぱい",
		"porn", "nudes", "hentai", "onlyfans", "lewds",
	},
}

// folded lexicons, built once so matching and storage normalize identically
var foldedLexicons = func() map[Category][]string {
	out := make(map[Category][]string, len(lexicons))
	for cat, terms := range lexicons {
		folded := make([]string, len(terms))
		for i, term := range terms {
			folded[i] = keyword.Fold(term)
		}
		out[cat] = folded
	}
	return out
}()

// a run of this many repeats of one character or short sequence reads as
// spam or emotional flooding
const noiseRepeatThreshold = 7

var (
	mentionPattern = regexp.MustCompile(`[@＠][\w.]+`)
	hashtagPattern = regexp.MustCompile(`[#＃][^\s#＃]+`)
	urlPattern     = regexp.MustCompile(`https?://\S+`)
)

func matchesLexicon(folded string, cat Category) bool {
	for _, term := range foldedLexicons[cat] {
		if strings.Contains(folded, term) {
			return true
		}
	}
	return false
}

// reports whether text contains any 1-3 rune sequence repeated at least
// noiseRepeatThreshold times consecutively. RE2 has no backreferences, so
// this is a direct scan: a streak of positions where r[i] == r[i-p] means
// the text has period p there, covering streak/p + 1 repeats.
func hasNoiseRun(text string) bool {
	runes := []rune(text)
	for period := 1; period <= 3; period++ {
		streak := 0
		for i := period; i < len(runes); i++ {
			if runes[i] == runes[i-period] {
				streak++
				if streak >= (noiseRepeatThreshold-1)*period {
					return true
				}
			} else {
				streak = 0
			}
		}
	}
	return false
}

// reports whether the message consists only of mentions, hashtags, and URLs,
// with no content of its own.
func isEmptyReply(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	stripped := urlPattern.ReplaceAllString(text, "")
	stripped = mentionPattern.ReplaceAllString(stripped, "")
	stripped = hashtagPattern.ReplaceAllString(stripped, "")
	return strings.TrimSpace(stripped) == ""
}

// evaluates all heuristic categories against one item's text. The folded
// form drives lexicon matching; raw text drives the structural checks.
func evalHeuristics(raw, folded string) []Category {
	var hits []Category
	if matchesLexicon(folded, CategoryProfanity) {
		hits = append(hits, CategoryProfanity)
	}
	if matchesLexicon(folded, CategorySexual) {
		hits = append(hits, CategorySexual)
	}
	if hasNoiseRun(raw) {
		hits = append(hits, CategoryNoise)
	}
	if isEmptyReply(raw) {
		hits = append(hits, CategoryEmptyReply)
	}
	return hits
}
