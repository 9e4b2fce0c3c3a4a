package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntities_Merge(t *testing.T) {
	extracted := Entities{
		Sector:  "automotive",
		Country: "France",
	}

	t.Run("explicit values win field by field", func(t *testing.T) {
		merged := extracted.Merge(Entities{Country: "Germany", FinancialProduct: "leasing"})
		assert.Equal(t, "automotive", merged.Sector)
		assert.Equal(t, "Germany", merged.Country)
		assert.Equal(t, "leasing", merged.FinancialProduct)
	})

	t.Run("empty explicit fields keep extracted values", func(t *testing.T) {
		merged := extracted.Merge(Entities{})
		assert.Equal(t, extracted, merged)
	})
}
