package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConfirmedLine es una línea con los precios recalculados por el servidor
type ConfirmedLine struct {
	ProductID int64           `json:"product_id"`
	Reference string          `json:"reference"`
	Qty       int64           `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Currency  string          `json:"currency"`
}

// ConfirmedSale es el espejo local de una venta commiteada en el servidor.
// Se escribe una vez al confirmar la sincronización y nunca se muta;
// sirve para reimpresión de recibos y navegación offline.
type ConfirmedSale struct {
	SaleID         uuid.UUID       `json:"sale_id"`
	LocalID        uuid.UUID       `json:"local_id"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	AmountTendered decimal.Decimal `json:"amount_tendered"`
	Change         decimal.Decimal `json:"change"`
	Currency       string          `json:"currency"`
	PaymentMode    string          `json:"payment_mode"`
	Items          []ConfirmedLine `json:"items"`
	CreatedAt      time.Time       `json:"created_at"`
	SyncedAt       time.Time       `json:"synced_at"`
}
