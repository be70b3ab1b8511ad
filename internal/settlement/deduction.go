package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Deduction is a provider-side fee recorded after the payment was collected.
// A zero Deduction (Valid false) means the provider recorded nothing usable.
type Deduction struct {
	Amount decimal.Decimal
	Valid  bool
}

// NewDeduction returns a valid deduction of amount.
func NewDeduction(amount decimal.Decimal) Deduction {
	return Deduction{Amount: amount, Valid: true}
}

// ParseDeduction accepts numbers and numeric strings. Anything else, including
// nil, yields an invalid Deduction instead of an error.
func ParseDeduction(v any) Deduction {
	switch x := v.(type) {
	case decimal.Decimal:
		return NewDeduction(x)
	case json.Number:
		return parseDeductionString(x.String())
	case string:
		return parseDeductionString(x)
	case int:
		return NewDeduction(decimal.NewFromInt(int64(x)))
	case int64:
		return NewDeduction(decimal.NewFromInt(x))
	case float64:
		return NewDeduction(decimal.NewFromFloat(x))
	default:
		return Deduction{}
	}
}

func parseDeductionString(s string) Deduction {
	s = strings.TrimSpace(s)
	if s == "" {
		return Deduction{}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Deduction{}
	}

	return NewDeduction(d)
}

func (d *Deduction) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		*d = Deduction{}
		return nil
	}

	*d = ParseDeduction(v)

	return nil
}

func (d Deduction) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}

	return []byte(d.Amount.String()), nil
}

type providerInfoJSON struct {
	Name          string          `json:"name"`
	Deduction     Deduction       `json:"deduction"`
	DeductionDone json.RawMessage `json:"deductionDone"`
}

// UnmarshalJSON decodes the provider_info document. deductionDone counts as
// set only when it is true or the string "true", matching the store's SQL filter.
func (p *ProviderInfo) UnmarshalJSON(b []byte) error {
	var raw providerInfoJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decoding provider info: %w", err)
	}

	p.Name = raw.Name
	p.Deduction = raw.Deduction
	p.DeductionDone = isTrue(raw.DeductionDone)

	return nil
}

func (p ProviderInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name          string    `json:"name"`
		Deduction     Deduction `json:"deduction"`
		DeductionDone bool      `json:"deductionDone"`
	}{p.Name, p.Deduction, p.DeductionDone})
}

func isTrue(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "true" || s == `"true"`
}

// DeductionFinder loads transactions that may carry an unconsumed deduction.
type DeductionFinder interface {
	FindDeductionCandidates(ctx context.Context, merchantID string, cutoff time.Time) ([]Transaction, error)
}

// DeductionResult is the carry-forward total for a merchant and the
// transactions it was taken from.
type DeductionResult struct {
	Total   decimal.Decimal
	Sources []uuid.UUID
}

// ResolveDeductions totals the merchant's unconsumed deductions dated before cutoff.
func ResolveDeductions(ctx context.Context, finder DeductionFinder, merchantID string, cutoff time.Time) (DeductionResult, error) {
	rows, err := finder.FindDeductionCandidates(ctx, merchantID, cutoff)
	if err != nil {
		return DeductionResult{}, fmt.Errorf("finding deduction candidates: %w", err)
	}

	return SumDeductions(rows, merchantID, cutoff), nil
}

// SumDeductions applies the carry-forward rules to rows and sums what qualifies.
// Deductions dated on or after cutoff wait for a later business day.
func SumDeductions(rows []Transaction, merchantID string, cutoff time.Time) DeductionResult {
	res := DeductionResult{Total: decimal.Zero}

	for _, tx := range rows {
		if !carriesDeduction(tx, merchantID, cutoff) {
			continue
		}

		res.Total = res.Total.Add(tx.ProviderInfo.Deduction.Amount)
		res.Sources = append(res.Sources, tx.ID)
	}

	return res
}

func carriesDeduction(tx Transaction, merchantID string, cutoff time.Time) bool {
	if tx.MerchantID != merchantID {
		return false
	}

	if tx.Status != StatusCompleted && tx.Status != StatusFailed {
		return false
	}

	if tx.ProviderInfo.DeductionDone || !tx.ProviderInfo.Deduction.Valid {
		return false
	}

	return tx.DateTime.Before(cutoff)
}
