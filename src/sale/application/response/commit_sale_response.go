package response

import (
	"time"

	"github.com/ENb08/jh/src/sale/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommitSaleItemResponse es una línea confirmada con precios del servidor
type CommitSaleItemResponse struct {
	LineID    uuid.UUID       `json:"line_id"`
	ProductID int64           `json:"product_id"`
	Reference string          `json:"reference"`
	Qty       int64           `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Currency  string          `json:"currency"`
}

// CommitSaleResponse es la confirmación de una venta commiteada.
// duplicate=true cuando el commit fue un replay idempotente (el terminal
// reintentó un local_id que el servidor ya había commiteado).
type CommitSaleResponse struct {
	Success        bool                     `json:"success"`
	SaleID         uuid.UUID                `json:"sale_id"`
	LocalID        string                   `json:"local_id"`
	Subtotal       decimal.Decimal          `json:"subtotal"`
	DiscountPct    decimal.Decimal          `json:"discount_pct"`
	DiscountAmount decimal.Decimal          `json:"discount_amount"`
	Total          decimal.Decimal          `json:"total"`
	AmountTendered decimal.Decimal          `json:"amount_tendered"`
	Change         decimal.Decimal          `json:"change"`
	Currency       string                   `json:"currency"`
	PaymentMode    string                   `json:"payment_mode"`
	RateUSD        decimal.Decimal          `json:"rate_usd"`
	Items          []CommitSaleItemResponse `json:"items"`
	CreatedAt      time.Time                `json:"created_at"`
	Duplicate      bool                     `json:"duplicate,omitempty"`
}

// FromSale arma la respuesta de confirmación desde el aggregate persistido
func FromSale(sale *entity.Sale, duplicate bool) *CommitSaleResponse {
	items := make([]CommitSaleItemResponse, 0, len(sale.Lines))
	for _, line := range sale.Lines {
		items = append(items, CommitSaleItemResponse{
			LineID:    line.ID,
			ProductID: line.ProductID,
			Reference: line.Reference,
			Qty:       line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
			Currency:  line.Currency,
		})
	}

	return &CommitSaleResponse{
		Success:        true,
		SaleID:         sale.ID,
		LocalID:        sale.ClientRef,
		Subtotal:       sale.Subtotal,
		DiscountPct:    sale.DiscountPct,
		DiscountAmount: sale.DiscountAmount,
		Total:          sale.Total,
		AmountTendered: sale.AmountTendered,
		Change:         sale.Change,
		Currency:       sale.Currency,
		PaymentMode:    sale.PaymentMode,
		RateUSD:        sale.RateUSD,
		Items:          items,
		CreatedAt:      sale.CreatedAt,
		Duplicate:      duplicate,
	}
}

// CommitRejectedResponse es el rechazo de negocio (HTTP 200, success=false)
type CommitRejectedResponse struct {
	Success   bool   `json:"success"`
	Reason    string `json:"reason,omitempty"`
	ProductID int64  `json:"product_id,omitempty"`
	Available int64  `json:"available,omitempty"`
	Requested int64  `json:"requested,omitempty"`
	Message   string `json:"message"`
}
