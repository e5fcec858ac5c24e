package rewrite

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/loofah-social/loofah/tonemod/completion"
	"github.com/loofah-social/loofah/tonemod/engine"
	"github.com/loofah-social/loofah/tonemod/styles"

	"github.com/stretchr/testify/assert"
)

func remoteClient(host string) *completion.Client {
	c := completion.NewClient(host, "", "test-model", nil)
	c.Client = http.DefaultClient
	c.Timeout = 2 * time.Second
	return c
}

func TestRewriteLocalFallback(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	// no completion service configured
	o := NewOrchestrator(nil, nil)

	items := []engine.Item{
		{ID: "1", Text: "今日は忙しいからまた後で連絡するね。"},
		{ID: "2", Text: "死ね"},
		{ID: "3", Text: ""},
	}
	out := o.Rewrite(ctx, items, "dialect:kansai")
	assert.Len(out, 3)

	// non-empty input: non-empty, non-identical output
	assert.NotEmpty(out["1"].Text)
	assert.NotEqual(items[0].Text, out["1"].Text)
	assert.Equal(SourceLocal, out["1"].Source)

	assert.NotEmpty(out["2"].Text)
	assert.NotContains(out["2"].Text, "死ね")

	// empty input stays empty, marked passthrough
	assert.Equal("", out["3"].Text)
	assert.Equal(SourcePassthrough, out["3"].Source)
}

func TestRewriteRemote(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	var gotReq int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq++
		w.Write([]byte(`{"choices":[{"message":{"content":"めっちゃ忙しいから、あとで連絡するわな。"}}]}`))
	}))
	defer srv.Close()

	o := NewOrchestrator(remoteClient(srv.URL), nil)
	items := []engine.Item{{ID: "1", Text: "今日は忙しいからまた後で連絡するね。"}}

	out := o.Rewrite(ctx, items, "dialect:kansai")
	assert.Equal(SourceRemote, out["1"].Source)
	assert.Equal("めっちゃ忙しいから、あとで連絡するわな。", out["1"].Text)
	assert.Equal(1, gotReq)

	// identical repeat item is served from cache, no second call
	out = o.Rewrite(ctx, items, "dialect:kansai")
	assert.Equal(SourceRemote, out["1"].Source)
	assert.Equal(1, gotReq)
}

func TestRewriteServiceFailure(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	o := NewOrchestrator(remoteClient(srv.URL), nil)
	items := []engine.Item{
		{ID: "a", Text: "バカ！！！"},
		{ID: "b", Text: "ごはん食べた？"},
	}

	// service failure is invisible: every id mapped, output non-empty
	out := o.Rewrite(ctx, items, "polite_clean")
	assert.Len(out, 2)
	for id, res := range out {
		assert.NotEmpty(res.Text, id)
		assert.NotEqual(SourceRemote, res.Source, id)
	}
	assert.Equal("おっちょこちょい。", out["a"].Text)
	assert.Equal(SourceLocal, out["a"].Source)
}

func TestRewriteJokeStyle(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	o := NewOrchestrator(nil, nil)
	items := []engine.Item{{ID: "1", Text: "明日はテストだ"}}
	out := o.Rewrite(ctx, items, "american_joke")
	assert.Equal(SourceLocal, out["1"].Source)
	assert.NotEqual(items[0].Text, out["1"].Text)
	// deterministic
	out2 := o.Rewrite(ctx, items, "american_joke")
	assert.Equal(out["1"].Text, out2["1"].Text)
}

func TestRewriteTotality(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	o := NewOrchestrator(nil, nil)
	var items []engine.Item
	for i := 0; i < 50; i++ {
		items = append(items, engine.Item{ID: string(rune('a' + i%26)) + string(rune('0' + i/26)), Text: "テキストその" + string(rune('0'+i%10))})
	}
	out := o.Rewrite(ctx, items, "polite_clean")
	for _, item := range items {
		res, ok := out[item.ID]
		assert.True(ok, item.ID)
		assert.NotEmpty(res.Text, item.ID)
	}
}

func TestBuildMessages(t *testing.T) {
	assert := assert.New(t)

	// few-shot pairs precede the user turn, system instruction first
	p := styles.Resolve("dialect:kansai")
	msgs := buildMessages(&p, "それは違うと思います。")
	assert.Equal("system", msgs[0].Role)
	assert.Contains(msgs[0].Content, "関西弁")
	assert.Contains(msgs[0].Content, "URL")
	assert.Equal("user", msgs[len(msgs)-1].Role)
	assert.Equal("それは違うと思います。", msgs[len(msgs)-1].Content)
	assert.True(len(msgs) >= 4)
	assert.Equal("assistant", msgs[2].Role)
}
