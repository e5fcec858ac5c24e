// Style and dialect profiles used to steer rewrites. Profiles are static
// configuration: the registry is read-only after process start.
package styles

import (
	"sort"
	"strings"
)

type Family string

const (
	// de-escalate / polish register
	FamilyPolish = Family("polish")
	// light joke register
	FamilyJoke = Family("joke")
	// regional dialect transfer
	FamilyDialect = Family("dialect")
)

// One (original, transformed) sentence pair, embedded in prompts as a
// few-shot example.
type ExamplePair struct {
	Original    string
	Transformed string
}

type Profile struct {
	Key         string
	Family      Family
	Description string
	// natural-language system instruction for the completion service
	Instruction string
	// signature sentence-final particles, used in prompt construction and as
	// the local-fallback add-on pool for dialects
	Particles []string
	Examples  []ExamplePair
}

const DefaultKey = "polite_clean"

// prefix selecting a dialect profile, eg "dialect:kansai"
const dialectPrefix = "dialect:"

var profiles = map[string]Profile{
	"polite_clean": {
		Key:         "polite_clean",
		Family:      FamilyPolish,
		Description: "トゲのある表現をやわらげ、丁寧で読みやすい文にする",
		Instruction: "入力文の意図を保ったまま、攻撃的・乱暴な表現を丁寧で落ち着いた日本語に書き換えてください。",
	},
	"american_joke": {
		Key:         "american_joke",
		Family:      FamilyJoke,
		Description: "軽いジョークを交えたアメリカンな語り口にする",
		Instruction: "入力文を、軽いアメリカンジョークを一つ添えた明るい語り口に書き換えてください。皮肉や悪意は入れないでください。",
	},
	"kansai": {
		Key:         "kansai",
		Family:      FamilyDialect,
		Description: "関西弁に変換する",
		Instruction: "入力文を自然な関西弁に書き換えてください。標準語のまま返さないでください。",
		Particles:   []string{"やで。", "やん。", "知らんけど。", "ほんまに。"},
		Examples: []ExamplePair{
			{Original: "今日はとても忙しいです。", Transformed: "今日はめっちゃ忙しいねん。"},
			{Original: "それは違うと思います。", Transformed: "それはちゃうと思うで。"},
			{Original: "後で連絡しますね。", Transformed: "あとで連絡するわな。"},
		},
	},
	"hakata": {
		Key:         "hakata",
		Family:      FamilyDialect,
		Description: "博多弁に変換する",
		Instruction: "入力文を自然な博多弁に書き換えてください。標準語のまま返さないでください。",
		Particles:   []string{"ばい。", "たい。", "っちゃん。"},
		Examples: []ExamplePair{
			{Original: "とても良いですね。", Transformed: "ばりよかね。"},
		},
	},
	"tsugaru": {
		Key:         "tsugaru",
		Family:      FamilyDialect,
		Description: "津軽弁に変換する",
		Instruction: "入力文を自然な津軽弁に書き換えてください。標準語のまま返さないでください。",
		Particles:   []string{"だべ。", "んだ。"},
	},
	"okinawa": {
		Key:         "okinawa",
		Family:      FamilyDialect,
		Description: "沖縄の言葉(うちなーぐち風)に変換する",
		Instruction: "入力文を沖縄方言風の親しみやすい言い回しに書き換えてください。標準語のまま返さないでください。",
		Particles:   []string{"さー。", "やっさー。"},
	},
}

// Resolve maps a style spec string to a profile. Bare keywords look up
// non-dialect profiles; "dialect:<name>" selects a dialect. Unknown specs
// fall back to the default profile; callers who care can compare Key.
func Resolve(spec string) Profile {
	key := strings.TrimSpace(spec)
	isDialect := false
	if strings.HasPrefix(key, dialectPrefix) {
		key = strings.TrimPrefix(key, dialectPrefix)
		isDialect = true
	}
	p, ok := profiles[key]
	if ok && (p.Family == FamilyDialect) == isDialect {
		return p
	}
	return profiles[DefaultKey]
}

// List returns all profiles in stable key order, dialects keyed with their
// "dialect:" prefix. Feeds the enumeration endpoint.
func List() []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// SpecKey is the spec string that resolves back to this profile.
func (p *Profile) SpecKey() string {
	if p.Family == FamilyDialect {
		return dialectPrefix + p.Key
	}
	return p.Key
}
