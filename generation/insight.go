package generation

import (
	"strings"

	"github.com/pageza/crave-decoder/nlp"
)

// CravingType classifies what drives a craving.
type CravingType string

const (
	Emotional     CravingType = "emotional"
	Psychological CravingType = "psychological"
	Physical      CravingType = "physical"
)

var cravingTypes = []string{string(Emotional), string(Psychological), string(Physical)}

// cravingTypeThreshold is the minimum token similarity for a free-form label
// to be mapped onto a known type.
const cravingTypeThreshold = 0.3

// ParseCravingType maps a model-supplied label onto a CravingType. Labels such
// as "Physical hunger" resolve by token similarity; anything unrecognised,
// including the empty string, is Emotional.
func ParseCravingType(s string) CravingType {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range cravingTypes {
		if s == t {
			return CravingType(t)
		}
	}
	if best, _, ok := nlp.BestMatch(s, cravingTypes, cravingTypeThreshold); ok {
		return CravingType(best)
	}
	return Emotional
}

// Badge is the CSS class the result page uses to colour the type badge.
func (t CravingType) Badge() string {
	switch t {
	case Physical:
		return "badge-physical"
	case Psychological:
		return "badge-psychological"
	default:
		return "badge-emotional"
	}
}

// Insight is the structured interpretation of a craving query. Every field is
// always present; unknown values are empty strings.
type Insight struct {
	Craving          string      `json:"craving"`
	Insight          string      `json:"insight"`
	Suggestion       string      `json:"suggestion"`
	CravingType      CravingType `json:"craving_type"`
	RecipeSuggestion string      `json:"recipe_suggestion"`
}

const (
	placeholderCraving = "No input provided"
	placeholderInsight = "Please share what you're craving and feeling"

	fallbackInsight    = "Sorry, we couldn't decode your craving right now."
	fallbackSuggestion = "Please try again later."
)

// Placeholder is returned for empty input without contacting the model.
func Placeholder() Insight {
	return Insight{
		Craving:     placeholderCraving,
		Insight:     placeholderInsight,
		CravingType: Emotional,
	}
}

// Fallback is substituted when the model call fails for any reason.
func Fallback(input string) Insight {
	return Insight{
		Craving:     input,
		Insight:     fallbackInsight,
		Suggestion:  fallbackSuggestion,
		CravingType: Emotional,
	}
}
