package detect

// subordinateMarkers is the closed-class word list used to approximate
// clause embedding for complexity scoring.
var subordinateMarkers = map[string]bool{
	"that": true, "which": true, "who": true, "whom": true, "whose": true,
	"when": true, "where": true, "while": true, "because": true,
	"although": true, "if": true, "unless": true, "since": true,
	"after": true, "before": true,
}

// MarkerResult is the output of [SubordinateMarkers].
type MarkerResult struct {
	Count    int            `json:"count"`
	ByMarker map[string]int `json:"by_marker,omitempty"`
}

// SubordinateMarkers counts occurrences of subordinate-clause markers in the
// token sequence (case-insensitive, whole-token).
func SubordinateMarkers(tokens []string) MarkerResult {
	res := MarkerResult{ByMarker: make(map[string]int)}
	for _, t := range tokens {
		n := Normalize(t)
		if subordinateMarkers[n] {
			res.Count++
			res.ByMarker[n]++
		}
	}
	if len(res.ByMarker) == 0 {
		res.ByMarker = nil
	}
	return res
}
