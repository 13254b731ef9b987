package payroll

import (
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/compensation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitAdjustments(t *testing.T) {
	t.Parallel()

	t.Run("empty input yields zero totals", func(t *testing.T) {
		t.Parallel()

		allowances, deductions, totalAllowances, totalDeductions := SplitAdjustments(nil)
		assert.Empty(t, allowances)
		assert.Empty(t, deductions)
		assert.True(t, totalAllowances.IsZero())
		assert.True(t, totalDeductions.IsZero())
	})

	t.Run("splits by kind and preserves order", func(t *testing.T) {
		t.Parallel()

		records := []compensation.AdjustmentRecord{
			{Kind: compensation.AdjustmentKindAllowance, Category: "Transport", Amount: decimal.NewFromInt(300)},
			{Kind: compensation.AdjustmentKindDeduction, Category: "Insurance", Amount: decimal.NewFromInt(50)},
			{Kind: compensation.AdjustmentKindAllowance, Category: "Meals", Amount: decimal.NewFromInt(150)},
		}

		allowances, deductions, totalAllowances, totalDeductions := SplitAdjustments(records)

		require.Len(t, allowances, 2)
		assert.Equal(t, "Transport", allowances[0].Category)
		assert.Equal(t, "Meals", allowances[1].Category)
		require.Len(t, deductions, 1)
		assert.Equal(t, "Insurance", deductions[0].Category)

		assert.True(t, totalAllowances.Equal(decimal.NewFromInt(450)))
		assert.True(t, totalDeductions.Equal(decimal.NewFromInt(50)))
	})
}
