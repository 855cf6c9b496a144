package entity

import (
	"errors"
	"fmt"
)

var (
	ErrClientRefRequired   = errors.New("client_ref (local_id) is required")
	ErrUserRequired        = errors.New("user_id is required")
	ErrStoreRequired       = errors.New("store_id is required")
	ErrSaleMustHaveLines   = errors.New("sale must have at least one line")
	ErrInvalidQuantity     = errors.New("quantity must be greater than 0")
	ErrInvalidPrice        = errors.New("unit_price must be greater than or equal to 0")
	ErrInvalidDiscount     = errors.New("discount_pct must be between 0 and 100")
	ErrInvalidCurrency     = errors.New("currency must be CDF or USD")
	ErrInsufficientPayment = errors.New("amount_tendered must cover the sale total")
	ErrReferenceRequired   = errors.New("product reference is required")

	ErrSaleNotFound       = errors.New("sale not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrProductNotInStore  = errors.New("product not associated to this store")
	ErrDuplicateClientRef = errors.New("a sale with this client_ref already exists")

	// Backstop del ledger: ninguna venta puede dejar el stock en negativo
	ErrStockWouldGoNegative = errors.New("stock delta would leave a negative quantity")
)

// StockRejection es el rechazo de negocio por stock insuficiente.
// Aborta el commit completo: ninguna línea descuenta stock.
type StockRejection struct {
	ProductID int64
	Available int64
	Requested int64
}

func (e *StockRejection) Error() string {
	return fmt.Sprintf("stock insuffisant pour produit %d (disponible: %d, demandé: %d)",
		e.ProductID, e.Available, e.Requested)
}
