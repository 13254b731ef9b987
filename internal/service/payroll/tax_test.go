package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateTax(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		gross string
		want  string
	}{
		{"zero gross", "0", "0"},
		{"below first threshold", "500", "0"},
		{"exactly first threshold", "1000", "0"},
		{"just above first threshold", "1000.01", "0.001"},
		{"middle of second bracket", "2300", "130"},
		{"exactly second threshold", "3000", "200"},
		{"middle of third bracket", "4000", "350"},
		{"exactly third threshold", "5000", "500"},
		{"above third threshold", "6000", "700"},
		{"far above third threshold", "10000", "1500"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := CalculateTax(decimal.RequireFromString(tc.gross))
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
				"tax(%s) = %s, want %s", tc.gross, got, tc.want)
		})
	}
}

func TestCalculateTaxContinuity(t *testing.T) {
	t.Parallel()

	// Crossing each bracket boundary by a cent must not jump the tax amount.
	epsilon := decimal.RequireFromString("0.01")
	for _, boundary := range []int64{1000, 3000, 5000} {
		at := CalculateTax(decimal.NewFromInt(boundary))
		above := CalculateTax(decimal.NewFromInt(boundary).Add(epsilon))
		diff := above.Sub(at)
		assert.True(t, diff.LessThan(decimal.RequireFromString("0.01")),
			"tax jumps by %s at boundary %d", diff, boundary)
	}
}

func TestCalculateTaxMonotonic(t *testing.T) {
	t.Parallel()

	step := decimal.NewFromInt(250)
	prev := decimal.Zero
	gross := decimal.Zero
	for i := 0; i < 40; i++ {
		tax := CalculateTax(gross)
		assert.False(t, tax.IsNegative(), "tax(%s) is negative", gross)
		assert.True(t, tax.GreaterThanOrEqual(prev),
			"tax decreased from %s to %s at gross %s", prev, tax, gross)
		prev = tax
		gross = gross.Add(step)
	}
}
