package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SyncState es el estado de una venta encolada en el terminal
type SyncState string

const (
	// SyncStatePending espera su primer intento de sincronización
	SyncStatePending SyncState = "pending"
	// SyncStateInFlight está siendo enviada al servidor ahora mismo
	SyncStateInFlight SyncState = "in_flight"
	// SyncStateFailed falló de forma transitoria; vuelve a intentarse
	// en la próxima pasada
	SyncStateFailed SyncState = "failed"
	// SyncStateNeedsAttention fue rechazada por el servidor de forma
	// definitiva; queda visible para resolución manual del cajero
	SyncStateNeedsAttention SyncState = "needs_attention"
)

// CartLine es una línea del carrito capturada en caja.
// El unit_price local es informativo: el servidor recalcula del catálogo.
type CartLine struct {
	ProductID int64           `json:"product_id"`
	Qty       int64           `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Currency  string          `json:"currency"`
}

// SalePayload es el contenido de la venta tal como se capturó offline
type SalePayload struct {
	Items          []CartLine      `json:"items"`
	PaymentMode    string          `json:"payment_mode"`
	Currency       string          `json:"currency"`
	DiscountPct    decimal.Decimal `json:"discount_pct"`
	AmountTendered decimal.Decimal `json:"amount_tendered"`
	RateUSD        decimal.Decimal `json:"rate_usd"`
}

// PendingSale es una venta capturada en caja y todavía no confirmada por
// el servidor. LocalID se genera en el terminal, nunca se reutiliza, y
// viaja como clave de idempotencia en cada reintento.
type PendingSale struct {
	LocalID   uuid.UUID   `json:"local_id"`
	Seq       uint64      `json:"seq"`
	Payload   SalePayload `json:"payload"`
	State     SyncState   `json:"state"`
	Attempts  int         `json:"attempts"`
	LastError string      `json:"last_error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewPendingSale valida el payload y crea la entrada de cola
func NewPendingSale(payload SalePayload) (*PendingSale, error) {
	if len(payload.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, item := range payload.Items {
		if item.Qty <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	return &PendingSale{
		LocalID:   uuid.New(),
		Payload:   payload,
		State:     SyncStatePending,
		CreatedAt: time.Now(),
	}, nil
}

// Retryable indica si la entrada participa del drenaje automático
func (p *PendingSale) Retryable() bool {
	return p.State == SyncStatePending || p.State == SyncStateFailed
}
