package techspec

// Complexity levels form a closed set.
const (
	ComplexityLow    = "Low"
	ComplexityMedium = "Medium"
	ComplexityHigh   = "High"
)

// Complexity is the derived build-complexity rating.
type Complexity struct {
	Score        int    `json:"score"`
	Level        string `json:"level"`
	ElementScore int    `json:"element_score"`
	ScriptScore  int    `json:"script_score"`
	FormCount    int    `json:"form_count"`
}

// ScoreComplexity rates the page from its element, external-script and
// form counts. Element and script counts contribute tiered scores of 0-3
// each, forms contribute their raw count. Totals of 7 or more rate High,
// 4-6 Medium, below that Low.
func ScoreComplexity(elementCount, externalScriptCount, formCount int) Complexity {
	c := Complexity{
		ElementScore: elementTier(elementCount),
		ScriptScore:  scriptTier(externalScriptCount),
		FormCount:    formCount,
	}
	c.Score = c.ElementScore + c.ScriptScore + c.FormCount

	switch {
	case c.Score >= 7:
		c.Level = ComplexityHigh
	case c.Score >= 4:
		c.Level = ComplexityMedium
	default:
		c.Level = ComplexityLow
	}
	return c
}

func elementTier(count int) int {
	switch {
	case count < 50:
		return 0
	case count < 200:
		return 1
	case count < 500:
		return 2
	default:
		return 3
	}
}

func scriptTier(count int) int {
	switch {
	case count == 0:
		return 0
	case count <= 5:
		return 1
	case count <= 10:
		return 2
	default:
		return 3
	}
}
