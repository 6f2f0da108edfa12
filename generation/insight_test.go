package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCravingType(t *testing.T) {
	tests := map[string]CravingType{
		"emotional":             Emotional,
		"  PHYSICAL ":           Physical,
		"Psychological":         Psychological,
		"physical hunger":       Physical,
		"psychological / habit": Psychological,
		"":                      Emotional,
		"spiritual":             Emotional,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseCravingType(in), in)
	}
}

func TestBadge(t *testing.T) {
	assert.Equal(t, "badge-physical", Physical.Badge())
	assert.Equal(t, "badge-psychological", Psychological.Badge())
	assert.Equal(t, "badge-emotional", Emotional.Badge())
	assert.Equal(t, "badge-emotional", CravingType("").Badge())
}

func TestPlaceholderAndFallback(t *testing.T) {
	p := Placeholder()
	assert.Equal(t, "No input provided", p.Craving)
	assert.Equal(t, "Please share what you're craving and feeling", p.Insight)
	assert.Equal(t, Emotional, p.CravingType)

	f := Fallback("cheese")
	assert.Equal(t, "cheese", f.Craving)
	assert.Contains(t, f.Insight, "Sorry")
	assert.Equal(t, "Please try again later.", f.Suggestion)
}
