package detect

// minTUnitTokens is the token count below which a T-unit is considered a
// fragment.
const minTUnitTokens = 3

// FalseStart records one immediately repeated token within a T-unit.
type FalseStart struct {
	// Token is the repeated token (normalized).
	Token string `json:"token"`

	// TUnit is the index of the containing T-unit.
	TUnit int `json:"t_unit"`

	// Position is the index of the first of the two repeated tokens
	// within the T-unit.
	Position int `json:"position"`
}

// FalseStartResult is the output of [FalseStarts].
type FalseStartResult struct {
	// FalseStartCount is the number of immediate token repetitions.
	FalseStartCount int `json:"false_start_count"`

	// FragmentCount is the number of T-units with fewer than 3 tokens.
	FragmentCount int `json:"fragment_count"`

	// FalseStarts lists each repetition in order.
	FalseStarts []FalseStart `json:"false_starts,omitempty"`
}

// FalseStarts scans each T-unit for immediately repeated tokens
// (case-insensitive) and counts under-length T-units as fragments.
func FalseStarts(tunits [][]string) FalseStartResult {
	var res FalseStartResult
	for ti, unit := range tunits {
		if len(unit) < minTUnitTokens {
			res.FragmentCount++
		}
		for i := 0; i+1 < len(unit); i++ {
			a, b := Normalize(unit[i]), Normalize(unit[i+1])
			if a != "" && a == b {
				res.FalseStarts = append(res.FalseStarts, FalseStart{
					Token:    a,
					TUnit:    ti,
					Position: i,
				})
			}
		}
	}
	res.FalseStartCount = len(res.FalseStarts)
	return res
}
