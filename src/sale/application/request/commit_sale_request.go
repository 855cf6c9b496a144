package request

import "github.com/shopspring/decimal"

// CommitSaleItem es una línea del carrito enviada por el terminal.
// El unit_price viajero es solo informativo: el servidor recalcula
// siempre desde el catálogo.
type CommitSaleItem struct {
	ProductID int64           `json:"product_id" binding:"required"`
	Qty       int64           `json:"qty" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Currency  string          `json:"currency"`
}

// CommitSaleRequest es el body de POST /pos/sales/commit.
// local_id es el id generado por el terminal y actúa como clave de
// idempotencia: el mismo local_id nunca produce dos ventas.
type CommitSaleRequest struct {
	LocalID        string           `json:"local_id" binding:"required"`
	Items          []CommitSaleItem `json:"items" binding:"required"`
	PaymentMode    string           `json:"payment_mode"`
	Currency       string           `json:"currency"`
	DiscountPct    decimal.Decimal  `json:"discount_pct"`
	AmountTendered decimal.Decimal  `json:"amount_tendered"`
	RateUSD        decimal.Decimal  `json:"rate_usd"`
}
