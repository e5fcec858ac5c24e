package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	assert := assert.New(t)

	p := Resolve("polite_clean")
	assert.Equal("polite_clean", p.Key)
	assert.Equal(FamilyPolish, p.Family)

	p = Resolve("american_joke")
	assert.Equal(FamilyJoke, p.Family)

	p = Resolve("dialect:kansai")
	assert.Equal("kansai", p.Key)
	assert.Equal(FamilyDialect, p.Family)
	assert.NotEmpty(p.Particles)
	assert.NotEmpty(p.Examples)

	// unknown specs fall back to the default
	assert.Equal(DefaultKey, Resolve("").Key)
	assert.Equal(DefaultKey, Resolve("shakespeare").Key)
	assert.Equal(DefaultKey, Resolve("dialect:nosuch").Key)

	// dialects are only reachable with the prefix, and vice versa
	assert.Equal(DefaultKey, Resolve("kansai").Key)
	assert.Equal(DefaultKey, Resolve("dialect:polite_clean").Key)
}

func TestListStable(t *testing.T) {
	assert := assert.New(t)

	l1 := List()
	l2 := List()
	assert.Equal(l1, l2)
	assert.True(len(l1) >= 5)
	for _, p := range l1 {
		assert.NotEmpty(p.Key)
		assert.NotEmpty(p.Description)
		assert.Equal(p.Key, Resolve(p.SpecKey()).Key)
	}
}
