package paper

import "github.com/shopspring/decimal"

type fixedRateCommission struct {
	buyFactor  decimal.Decimal
	sellFactor decimal.Decimal
}

func newFixedRateCommission(pct float64) *fixedRateCommission {
	return &fixedRateCommission{
		buyFactor:  decimal.NewFromFloat(1 - pct),
		sellFactor: decimal.NewFromFloat(1 - pct),
	}
}

func (c *fixedRateCommission) ApplyOnBuy(vol decimal.Decimal) decimal.Decimal {
	return vol.Mul(c.buyFactor)
}

func (c *fixedRateCommission) ApplyOnSell(sum decimal.Decimal) decimal.Decimal {
	return sum.Mul(c.sellFactor)
}
