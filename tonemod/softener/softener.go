// Deterministic local text transforms, used when no completion service is
// available. These never synthesize content for empty input, and never
// return empty output for non-empty input.
package softener

import (
	"hash/fnv"
	"regexp"
	"strings"
	"unicode"
)

var terminalPunct = map[rune]bool{
	'!': true, '?': true, '！': true, '？': true,
	'。': true, '．': true, '.': true, '…': true, '、': true,
}

var laughterRunes = map[rune]bool{
	'w': true, 'ｗ': true, '笑': true, '草': true,
}

// substitutions applied by Soften, in order. Patterns are matched against the
// raw text; Japanese entries are plain literals, English entries fold case.
var softenTable = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`死ね`), "やめてほしい"},
	{regexp.MustCompile(`殺す[ぞ]?`), "本当に怒っている"},
	{regexp.MustCompile(`消えろ`), "少し距離を置きたい"},
	{regexp.MustCompile(`くたばれ`), "もう関わりたくない"},
	{regexp.MustCompile(`黙れ`), "少し静かにしてほしい"},
	{regexp.MustCompile(`(?:うざい|ウザい|ウザイ)`), "ちょっと苦手"},
	{regexp.MustCompile(`(?:きもい|キモい|キモイ)`), "得意ではない"},
	{regexp.MustCompile(`(?:ばか|バカ|馬鹿)`), "おっちょこちょい"},
	{regexp.MustCompile(`(?:あほ|アホ|阿呆)`), "そそっかしい"},
	{regexp.MustCompile(`(?:クソ|くそ|糞)`), "とても"},
	{regexp.MustCompile(`(?i)\bfuck(?:ing)?\s+(?:you|off)\b`), "please leave me alone"},
	{regexp.MustCompile(`(?i)\bfuck(?:ing)?\b`), "heck"},
	{regexp.MustCompile(`(?i)\bshit\b`), "shoot"},
	{regexp.MustCompile(`(?i)\bstupid\b`), "silly"},
	{regexp.MustCompile(`(?i)\bidiot\b`), "goof"},
	{regexp.MustCompile(`(?i)\bhate\b`), "dislike"},
}

func isLaughter(r rune) bool {
	return laughterRunes[r]
}

func isDecorative(r rune) bool {
	return unicode.IsSymbol(r) && !unicode.IsSpace(r)
}

// collapses a run of runes matching class, longer than keep, down to keep
// instances of the first rune in the run. Non-identical runes in the same
// class run (eg, ★☆★☆) still collapse to one representative.
func collapseRuns(text string, class func(rune) bool, keep int) string {
	var b strings.Builder
	b.Grow(len(text))
	runLen := 0
	var runStart rune
	for _, r := range text {
		if class(r) {
			if runLen == 0 {
				runStart = r
			}
			runLen++
			if runLen <= keep {
				b.WriteRune(runStart)
			}
			continue
		}
		runLen = 0
		b.WriteRune(r)
	}
	return b.String()
}

// collapses runs of the same rune longer than keep. Distinct neighbors in the
// class are left alone ("!?" stays "!?", "!!" does not).
func collapseRepeats(text string, class func(rune) bool, keep int) string {
	var b strings.Builder
	b.Grow(len(text))
	var prev rune = -1
	runLen := 0
	for _, r := range text {
		if class(r) && r == prev {
			runLen++
			if runLen > keep {
				continue
			}
		} else {
			runLen = 1
		}
		prev = r
		b.WriteRune(r)
	}
	return b.String()
}

// Normalize collapses emotional flooding without changing wording: repeated
// terminal punctuation ("！！！！"), laughter runs ("wwww", "笑笑笑"), and
// decorative symbol runs ("★★★★", "✨✨") each collapse to one instance.
func Normalize(text string) string {
	out := collapseRepeats(text, func(r rune) bool { return terminalPunct[r] }, 1)
	out = collapseRepeats(out, isLaughter, 1)
	out = collapseRuns(out, isDecorative, 1)
	return out
}

func hasJapanese(text string) bool {
	for _, r := range text {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return true
		}
	}
	return false
}

func endsWithTerminal(text string) bool {
	runes := []rune(text)
	if len(runes) == 0 {
		return false
	}
	return terminalPunct[runes[len(runes)-1]]
}

// Soften rewrites known aggressive phrases to neutral equivalents, calms
// shouty terminal punctuation, and closes off short abrupt clauses. For any
// non-empty input the output is non-empty; empty input passes through.
func Soften(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	out := text
	for _, sub := range softenTable {
		out = sub.pattern.ReplaceAllString(out, sub.repl)
	}
	out = Normalize(out)

	calm := "."
	if hasJapanese(out) {
		calm = "。"
	}

	// "！" and "!?" read as shouting; close calmly instead
	trimmed := strings.TrimRight(out, "!?！？")
	if trimmed != out && strings.TrimSpace(trimmed) != "" {
		out = trimmed + calm
	}

	// single abrupt clause with no closing mark at all
	if !endsWithTerminal(out) && !strings.ContainsAny(out, "。．.!?！？\n") {
		out = out + calm
	}
	return out
}

// closing remarks appended by Stylize to approximate a light-joke register
// without a model.
var DefaultAddOns = []string{
	"知らんけど。",
	"なんちゃって。",
	"……たぶんね。",
	"まあ、ぼちぼちいこか。",
}

// Stylize softens the text, then appends one closing remark from the pool.
// The pick is pseudo-random but derived from the text itself, so repeated
// calls with the same input give the same output.
func Stylize(text string, addOnPool []string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	out := Soften(text)
	if len(addOnPool) == 0 {
		addOnPool = DefaultAddOns
	}
	h := fnv.New32a()
	h.Write([]byte(text))
	pick := addOnPool[int(h.Sum32())%len(addOnPool)]
	return out + pick
}
