package commission

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Mode selects how the commission rate is chosen per transaction.
type Mode string

const (
	// ModeSingle applies Terms.Rate to every provider.
	ModeSingle Mode = "SINGLE"
	// ModeDouble applies Terms.OverrideRate to Terms.OverrideProvider and Terms.Rate to the rest.
	ModeDouble Mode = "DOUBLE"
)

// Terms are the financial terms agreed with a merchant.
type Terms struct {
	MerchantID       string
	Rate             decimal.Decimal
	GST              decimal.Decimal
	WithholdingTax   decimal.Decimal
	Mode             Mode
	OverrideProvider string
	OverrideRate     decimal.NullDecimal
}

// Validate reports whether the terms can be used to settle transactions.
func (t Terms) Validate() error {
	switch t.Mode {
	case ModeSingle, ModeDouble:
	default:
		return ErrInvalidTerms
	}

	if t.Rate.IsNegative() || t.GST.IsNegative() || t.WithholdingTax.IsNegative() {
		return ErrInvalidTerms
	}

	if t.OverrideRate.Valid && t.OverrideRate.Decimal.IsNegative() {
		return ErrInvalidTerms
	}

	return nil
}

// RateFor returns the commission rate applicable to a transaction collected through provider.
func (t Terms) RateFor(provider string) decimal.Decimal {
	if t.Mode == ModeDouble && sameProvider(provider, t.OverrideProvider) {
		if t.OverrideRate.Valid {
			return t.OverrideRate.Decimal
		}

		return decimal.Zero
	}

	return t.Rate
}

func sameProvider(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}

	return strings.EqualFold(a, b)
}

// Item is one transaction amount to be settled.
type Item struct {
	Amount   decimal.Decimal
	Provider string
}

// Aggregate is the settlement of a set of transactions before deductions.
type Aggregate struct {
	TransactionCount  int64
	TransactionAmount decimal.Decimal
	Commission        decimal.Decimal
	GST               decimal.Decimal
	WithholdingTax    decimal.Decimal
	MerchantAmount    decimal.Decimal
}

// Compute sums commission, GST and withholding tax over items.
//
// GST and withholding tax are levied on the transaction amount, not on the
// commission. Nothing is rounded.
func Compute(items []Item, terms Terms) Aggregate {
	agg := Aggregate{
		TransactionAmount: decimal.Zero,
		Commission:        decimal.Zero,
		GST:               decimal.Zero,
		WithholdingTax:    decimal.Zero,
	}

	for _, it := range items {
		rate := terms.RateFor(it.Provider)

		agg.Commission = agg.Commission.Add(it.Amount.Mul(rate))
		agg.GST = agg.GST.Add(it.Amount.Mul(terms.GST))
		agg.WithholdingTax = agg.WithholdingTax.Add(it.Amount.Mul(terms.WithholdingTax))
		agg.TransactionAmount = agg.TransactionAmount.Add(it.Amount)
		agg.TransactionCount++
	}

	agg.MerchantAmount = agg.TransactionAmount.
		Sub(agg.Commission).
		Sub(agg.GST).
		Sub(agg.WithholdingTax)

	return agg
}
