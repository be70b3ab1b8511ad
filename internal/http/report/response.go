package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/settler/internal/settlement"
)

type reportResponse struct {
	MerchantID        string          `json:"merchant_id"`
	SettlementDate    string          `json:"settlement_date"`
	TransactionCount  int64           `json:"transaction_count"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	Commission        decimal.Decimal `json:"commission"`
	GST               decimal.Decimal `json:"gst"`
	WithholdingTax    decimal.Decimal `json:"withholding_tax"`
	MerchantAmount    decimal.Decimal `json:"merchant_amount"`
	DeductionApplied  decimal.Decimal `json:"deduction_applied"`
}

func toResponse(r *settlement.Report) reportResponse {
	return reportResponse{
		MerchantID:        r.MerchantID,
		SettlementDate:    r.SettlementDate.Format(time.DateOnly),
		TransactionCount:  r.TransactionCount,
		TransactionAmount: r.TransactionAmount,
		Commission:        r.Commission,
		GST:               r.GST,
		WithholdingTax:    r.WithholdingTax,
		MerchantAmount:    r.MerchantAmount,
		DeductionApplied:  r.DeductionApplied,
	}
}
