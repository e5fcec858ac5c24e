package engine

// Escalation policy: which heuristic categories map to which action at each
// strictness level. Declarative so the escalation rules are testable apart
// from the matching code. Dislike-token hits bypass this table entirely and
// always hide.
var levelPolicies = map[StrictnessLevel]map[Category]Suggestion{
	LevelStrict: {
		CategoryProfanity:  SuggestHide,
		CategorySexual:     SuggestHide,
		CategoryNoise:      SuggestHide,
		CategoryEmptyReply: SuggestHide,
	},
	LevelModerate: {
		CategoryProfanity:  SuggestHide,
		CategorySexual:     SuggestHide,
		CategoryNoise:      SuggestRewrite,
		CategoryEmptyReply: SuggestHide,
	},
	LevelRelaxed: {
		CategoryProfanity:  SuggestHide,
		CategorySexual:     SuggestHide,
		CategoryNoise:      SuggestRewrite,
		CategoryEmptyReply: SuggestRewrite,
	},
}

// resolves a set of heuristic hits to one action under the given level.
// Hide outranks rewrite; no hits means no opinion (empty string).
func applyPolicy(level StrictnessLevel, hits []Category) Suggestion {
	policy, ok := levelPolicies[level]
	if !ok {
		policy = levelPolicies[LevelModerate]
	}
	var out Suggestion
	for _, cat := range hits {
		switch policy[cat] {
		case SuggestHide:
			return SuggestHide
		case SuggestRewrite:
			out = SuggestRewrite
		}
	}
	return out
}
