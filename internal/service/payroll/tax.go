package payroll

import "github.com/shopspring/decimal"

// Fixed progressive brackets. The base amounts are the accumulated tax of
// the full brackets below, which keeps the function continuous at each
// boundary: tax(1000)=0, tax(3000)=200, tax(5000)=500.
var (
	taxThreshold1 = decimal.NewFromInt(1000)
	taxThreshold2 = decimal.NewFromInt(3000)
	taxThreshold3 = decimal.NewFromInt(5000)

	taxRate1 = decimal.RequireFromString("0.10")
	taxRate2 = decimal.RequireFromString("0.15")
	taxRate3 = decimal.RequireFromString("0.20")

	taxBase2 = decimal.NewFromInt(200)
	taxBase3 = decimal.NewFromInt(500)
)

// CalculateTax maps a gross amount to income tax. Pure and deterministic;
// non-negative and monotonically non-decreasing in gross.
func CalculateTax(gross decimal.Decimal) decimal.Decimal {
	switch {
	case gross.LessThanOrEqual(taxThreshold1):
		return decimal.Zero
	case gross.LessThanOrEqual(taxThreshold2):
		return gross.Sub(taxThreshold1).Mul(taxRate1)
	case gross.LessThanOrEqual(taxThreshold3):
		return taxBase2.Add(gross.Sub(taxThreshold2).Mul(taxRate2))
	default:
		return taxBase3.Add(gross.Sub(taxThreshold3).Mul(taxRate3))
	}
}
