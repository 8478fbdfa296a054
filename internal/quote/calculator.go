package quote

import (
	"math"

	"github.com/yuanbr/escrow-order-service/internal/domain"
)

// Quote is the result of a conversion in decimal units. Persisted amounts
// go through MinorUnits; the decimals exist only for presentation and for
// the round-trip contract between Convert and Invert.
type Quote struct {
	SourceAmount float64
	BaseAmount   float64
	FeeAmount    float64
	TotalAmount  float64
	Rate         float64
	FeeRate      float64
}

// Calculator converts a source-currency amount into a destination-currency
// total plus a service fee, and back. Rate is destination units per source
// unit. FeeRate is a fraction (0.05 = 5%). Overrides maps a buyer id to a
// custom fee rate that replaces the default for that buyer's orders.
type Calculator struct {
	Rate      float64
	FeeRate   float64
	Overrides map[string]float64
}

func NewCalculator(rate, feeRate float64, overrides map[string]float64) *Calculator {
	return &Calculator{
		Rate:      rate,
		FeeRate:   feeRate,
		Overrides: overrides,
	}
}

func (c *Calculator) feeRateFor(buyerID string) float64 {
	if fee, ok := c.Overrides[buyerID]; ok {
		return fee
	}
	return c.FeeRate
}

// Convert quotes the destination total for a given source amount:
// base = source * rate, fee = base * feeRate, total = base + fee.
func (c *Calculator) Convert(sourceAmount float64, buyerID string) (*Quote, error) {
	if err := validateAmount(sourceAmount); err != nil {
		return nil, err
	}
	feeRate := c.feeRateFor(buyerID)

	base := sourceAmount * c.Rate
	fee := base * feeRate

	return &Quote{
		SourceAmount: sourceAmount,
		BaseAmount:   base,
		FeeAmount:    fee,
		TotalAmount:  base + fee,
		Rate:         c.Rate,
		FeeRate:      feeRate,
	}, nil
}

// Invert answers "I have this much destination currency to spend":
// total = base * (1 + feeRate), so base = total / (1 + feeRate) and the
// source amount is base / rate. Feeding Convert's total back through
// Invert reproduces the original source amount and fee.
func (c *Calculator) Invert(destinationBudget float64, buyerID string) (*Quote, error) {
	if err := validateAmount(destinationBudget); err != nil {
		return nil, err
	}
	feeRate := c.feeRateFor(buyerID)

	base := destinationBudget / (1 + feeRate)
	fee := destinationBudget - base

	return &Quote{
		SourceAmount: base / c.Rate,
		BaseAmount:   base,
		FeeAmount:    fee,
		TotalAmount:  destinationBudget,
		Rate:         c.Rate,
		FeeRate:      feeRate,
	}, nil
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return domain.ErrInvalidAmount
	}
	return nil
}

// MinorUnits converts a decimal amount to integer minor units (cents),
// rounding half away from zero. Storage and comparison always use minor
// units to keep floating-point drift out of the state machine.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
