package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Modos de pago aceptados por la caja
const (
	PaymentModeCash   = "cash"
	PaymentModeMobile = "mobile_money"
	PaymentModeCard   = "card"
)

// StatusCompleted es el único estado de una venta commiteada.
// Las correcciones se modelan como movimientos compensatorios, nunca como edición.
const StatusCompleted = "completed"

// Sale representa una venta POS commiteada (Aggregate Root)
// Inmutable después de creación; client_ref es la clave de idempotencia
// generada por el terminal (local_id de la cola offline).
type Sale struct {
	ID             uuid.UUID       `json:"id"`
	ClientRef      string          `json:"client_ref"`
	UserID         int64           `json:"user_id"`
	StoreID        int64           `json:"store_id"`
	PaymentMode    string          `json:"payment_mode"`
	Currency       string          `json:"currency"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountPct    decimal.Decimal `json:"discount_pct"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	AmountTendered decimal.Decimal `json:"amount_tendered"`
	Change         decimal.Decimal `json:"change"`
	RateUSD        decimal.Decimal `json:"rate_usd"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	Lines          []SaleLine      `json:"lines"`
}

var oneHundred = decimal.NewFromInt(100)

// NewSale crea una venta POS con totales recalculados desde las líneas.
// Invariantes: subtotal == suma de line_totals; total == subtotal - descuento;
// en cash el monto recibido debe cubrir el total.
func NewSale(
	clientRef string,
	userID int64,
	storeID int64,
	lines []SaleLine,
	paymentMode string,
	currency string,
	discountPct decimal.Decimal,
	amountTendered decimal.Decimal,
	rateUSD decimal.Decimal,
) (*Sale, error) {
	if clientRef == "" {
		return nil, ErrClientRefRequired
	}
	if userID <= 0 {
		return nil, ErrUserRequired
	}
	if storeID <= 0 {
		return nil, ErrStoreRequired
	}
	if len(lines) == 0 {
		return nil, ErrSaleMustHaveLines
	}
	if !ValidCurrency(currency) {
		return nil, ErrInvalidCurrency
	}
	if discountPct.LessThan(decimal.Zero) || discountPct.GreaterThan(oneHundred) {
		return nil, ErrInvalidDiscount
	}
	if paymentMode == "" {
		paymentMode = PaymentModeCash
	}

	// Subtotal = suma de subtotales de línea
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal)
	}

	// Remise porcentual sobre el subtotal
	discountAmount := subtotal.Mul(discountPct).Div(oneHundred).Round(2)
	total := subtotal.Sub(discountAmount)

	// Vuelto solo aplica en cash; en otros modos el monto es exacto
	change := decimal.Zero
	if paymentMode == PaymentModeCash {
		if amountTendered.LessThan(total) {
			return nil, ErrInsufficientPayment
		}
		change = amountTendered.Sub(total)
	}

	saleID := uuid.New()
	for i := range lines {
		lines[i].SaleID = saleID
	}

	return &Sale{
		ID:             saleID,
		ClientRef:      clientRef,
		UserID:         userID,
		StoreID:        storeID,
		PaymentMode:    paymentMode,
		Currency:       currency,
		Subtotal:       subtotal,
		DiscountPct:    discountPct,
		DiscountAmount: discountAmount,
		Total:          total,
		AmountTendered: amountTendered,
		Change:         change,
		RateUSD:        rateUSD,
		Status:         StatusCompleted,
		CreatedAt:      time.Now(),
		Lines:          lines,
	}, nil
}

// TotalLines retorna el número de líneas de la venta
func (s *Sale) TotalLines() int {
	return len(s.Lines)
}

// TotalArticles retorna la cantidad total de artículos vendidos
func (s *Sale) TotalArticles() int64 {
	var n int64
	for _, line := range s.Lines {
		n += line.Quantity
	}
	return n
}
