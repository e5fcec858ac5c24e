package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/loofah-social/loofah/tonemod/prefstore"

	"github.com/stretchr/testify/assert"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	ps := prefstore.NewFilePrefStore(filepath.Join(t.TempDir(), "prefs.json"), nil)
	if err := ps.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return NewEngine(ps, nil)
}

func TestClassifyBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng := testEngine(t)

	items := []Item{
		{ID: "1", Text: "死ね"},
		{ID: "2", Text: "今日はいい天気ですね"},
		{ID: "3", Text: ""},
	}
	out := eng.Classify(ctx, items, LevelStrict, nil, nil)
	assert.Len(out, 3)
	assert.Equal(SuggestHide, out["1"].Suggest)
	assert.Equal(SuggestKeep, out["2"].Suggest)
	// empty text still receives a classification
	assert.Equal(SuggestKeep, out["3"].Suggest)
}

func TestClassifyDislikePriority(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng := testEngine(t)

	assert.NoError(eng.Prefs.AddDislike(ctx, []string{"納豆"}))

	items := []Item{{ID: "a", Text: "納豆の話はもういいよ"}}
	// dislike hides at every level
	for _, level := range []StrictnessLevel{LevelRelaxed, LevelModerate, LevelStrict} {
		out := eng.Classify(ctx, items, level, nil, nil)
		assert.Equal(SuggestHide, out["a"].Suggest, string(level))
	}

	// request-supplied dislike tokens merge the same way
	eng2 := testEngine(t)
	out := eng2.Classify(ctx, items, LevelRelaxed, nil, []string{"納豆"})
	assert.Equal(SuggestHide, out["a"].Suggest)

	// dislike outranks like on the same text
	out = eng2.Classify(ctx, items, LevelRelaxed, []string{"納豆"}, []string{"納豆"})
	assert.Equal(SuggestHide, out["a"].Suggest)
}

func TestClassifyLikeRewrite(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng := testEngine(t)

	items := []Item{{ID: "a", Text: "ラーメン食べたい"}}
	out := eng.Classify(ctx, items, LevelModerate, nil, nil)
	assert.Equal(SuggestKeep, out["a"].Suggest)

	out = eng.Classify(ctx, items, LevelModerate, []string{"ラーメン"}, nil)
	assert.Equal(SuggestRewrite, out["a"].Suggest)

	assert.NoError(eng.Prefs.AddLike(ctx, []string{"ラーメン"}))
	out = eng.Classify(ctx, items, LevelModerate, nil, nil)
	assert.Equal(SuggestRewrite, out["a"].Suggest)
}

func TestClassifyEmptyReply(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng := testEngine(t)

	items := []Item{{ID: "a", Text: "@foo #bar https://x"}}

	out := eng.Classify(ctx, items, LevelRelaxed, nil, nil)
	assert.Equal(SuggestRewrite, out["a"].Suggest)

	out = eng.Classify(ctx, items, LevelModerate, nil, nil)
	assert.Equal(SuggestHide, out["a"].Suggest)

	out = eng.Classify(ctx, items, LevelStrict, nil, nil)
	assert.Equal(SuggestHide, out["a"].Suggest)
}

func TestClassifyNoise(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng := testEngine(t)

	items := []Item{
		{ID: "flood", Text: "わああああああああ"},
		{ID: "seq", Text: "それなそれなそれなそれなそれなそれなそれな"},
		{ID: "ok", Text: "www"},
	}

	out := eng.Classify(ctx, items, LevelStrict, nil, nil)
	assert.Equal(SuggestHide, out["flood"].Suggest)
	assert.Equal(SuggestHide, out["seq"].Suggest)
	assert.Equal(SuggestKeep, out["ok"].Suggest)

	out = eng.Classify(ctx, items, LevelModerate, nil, nil)
	assert.Equal(SuggestRewrite, out["flood"].Suggest)

	out = eng.Classify(ctx, items, LevelRelaxed, nil, nil)
	assert.Equal(SuggestRewrite, out["flood"].Suggest)
}

// anything hidden under relaxed is also hidden under moderate and strict
func TestHideMonotonicity(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng := testEngine(t)

	texts := []string{
		"死ね", "くたばれ雑魚", "エロ画像貼るよ", "porn link here",
		"@foo #bar https://x", "わああああああああ", "普通の投稿です",
		"ｷﾓｲんだけど", "ＢＡＫＡとは言ってない",
	}
	items := make([]Item, len(texts))
	for i, text := range texts {
		items[i] = Item{ID: string(rune('a' + i)), Text: text}
	}

	relaxed := eng.Classify(ctx, items, LevelRelaxed, nil, nil)
	moderate := eng.Classify(ctx, items, LevelModerate, nil, nil)
	strict := eng.Classify(ctx, items, LevelStrict, nil, nil)

	for id, res := range relaxed {
		if res.Suggest == SuggestHide {
			assert.Equal(SuggestHide, moderate[id].Suggest, id)
			assert.Equal(SuggestHide, strict[id].Suggest, id)
		}
	}
	for id, res := range moderate {
		if res.Suggest == SuggestHide {
			assert.Equal(SuggestHide, strict[id].Suggest, id)
		}
	}
}

// folding catches width and case variants of lexicon terms
func TestClassifyFoldedVariants(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng := testEngine(t)

	items := []Item{
		{ID: "half", Text: "ｳｻﾞｲって言われた側の話"},
		{ID: "wide", Text: "ＫＹＳ ok bye"},
	}
	out := eng.Classify(ctx, items, LevelStrict, nil, nil)
	assert.Equal(SuggestHide, out["half"].Suggest)
	assert.Equal(SuggestHide, out["wide"].Suggest)
}

func TestParseLevel(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(LevelStrict, ParseLevel("strict"))
	assert.Equal(LevelRelaxed, ParseLevel("relaxed"))
	assert.Equal(LevelModerate, ParseLevel(""))
	assert.Equal(LevelModerate, ParseLevel("extreme"))
}

func TestHasNoiseRun(t *testing.T) {
	assert := assert.New(t)

	assert.False(hasNoiseRun(""))
	assert.False(hasNoiseRun("perfectly normal text"))
	assert.False(hasNoiseRun("wwwwww"))            // 6 repeats, under threshold
	assert.True(hasNoiseRun("wwwwwww"))            // 7 repeats
	assert.True(hasNoiseRun("ほげほげほげほげほげほげほげ")) // 2-rune sequence x7
	assert.False(hasNoiseRun("ほげほげほげ"))
}
