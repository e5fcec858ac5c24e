package softener

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		input  string
		output string
	}{
		{input: "", output: ""},
		{input: "danger!!!!", output: "danger!"},
		{input: "まじで！！！？？", output: "まじで！？"},
		{input: "おもろいwwww", output: "おもろいw"},
		{input: "笑笑笑笑", output: "笑"},
		{input: "すごい★★★★★", output: "すごい★"},
		{input: "キラキラ✨✨♪♪♪", output: "キラキラ✨"},
		{input: "normal text.", output: "normal text."},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.output, Normalize(fix.input))
	}
}

func TestSoften(t *testing.T) {
	assert := assert.New(t)

	// empty stays empty
	assert.Equal("", Soften(""))
	assert.Equal("   ", Soften("   "))

	// substitution plus closing mark
	assert.Equal("やめてほしい。", Soften("死ね"))
	assert.Equal("おっちょこちょい。", Soften("バカ！！！"))

	// shouting calmed
	assert.Equal("know what i mean.", Soften("know what i mean?!?!"))

	// already-calm text gains at most a closing mark
	out := Soften("今日は忙しいからまた後で連絡するね。")
	assert.Equal("今日は忙しいからまた後で連絡するね。", out)

	// non-empty input never produces empty output
	for _, s := range []string{"a", "!", "死ね死ね死ね", "ok then"} {
		assert.NotEmpty(Soften(s))
	}
}

func TestStylize(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("", Stylize("", nil))

	out := Stylize("今日は忙しい", nil)
	assert.NotEmpty(out)
	// deterministic for the same input
	assert.Equal(out, Stylize("今日は忙しい", nil))

	// appended remark comes from the pool
	pool := []string{"ですよね。"}
	out = Stylize("そうかもしれない", pool)
	assert.True(strings.HasSuffix(out, "ですよね。"))
}
