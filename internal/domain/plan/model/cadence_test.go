package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCadence(t *testing.T) {
	t.Run("Twelve month synonyms", func(t *testing.T) {
		for _, raw := range []string{"monthly", "Monthly", "12months", "yearly", "annual", "1year", "12 months"} {
			c := NormalizeCadence(raw)
			assert.Equal(t, 12, c.Months(), "raw=%s", raw)
		}
	})

	t.Run("Twenty four month synonyms", func(t *testing.T) {
		for _, raw := range []string{"24months", "twoYearly", "2year", "2-year", "2 years"} {
			c := NormalizeCadence(raw)
			assert.Equal(t, 24, c.Months(), "raw=%s", raw)
		}
	})

	t.Run("Longer durations", func(t *testing.T) {
		assert.Equal(t, 36, NormalizeCadence("36months").Months())
		assert.Equal(t, 48, NormalizeCadence("fourYearly").Months())
		assert.Equal(t, 60, NormalizeCadence("5years").Months())
	})

	t.Run("Unknown string defaults to twelve months", func(t *testing.T) {
		c := NormalizeCadence("montly") // misspelling seen in the wild
		assert.Equal(t, CadenceMonthly, c)
		assert.Equal(t, 12, c.Months())
	})
}
