package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		input  string
		output string
	}{
		{input: "", output: ""},
		{input: "Hello World", output: "hello world"},
		{input: "ＢＡＫＡ", output: "baka"},
		{input: "café", output: "café"},
		{input: "死ね", output: "死ね"},
		{input: "ｱﾎ", output: "アホ"},
		{input: "ﾊﾞｶ", output: "バカ"},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.output, Fold(fix.input))
	}
}

func TestSlugify(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("", Slugify(""))
	assert.Equal("badword", Slugify("b-a-d w.o.r.d"))
	assert.Equal("死ね", Slugify("死☆ね！"))
}

func TestTokenizeText(t *testing.T) {
	assert := assert.New(t)

	assert.Empty(TokenizeText("   "))
	assert.Equal([]string{"some", "text"}, TokenizeText("Some, text!"))
	assert.Equal([]string{"go", "somewhere", "else"}, TokenizeText("GO somewhere... ELSE"))
}

func TestNormalizeToken(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("", NormalizeToken("  "))
	assert.Equal("spam", NormalizeToken("  SPAM\n"))
	assert.Equal("うざい", NormalizeToken(" うざい "))
}
