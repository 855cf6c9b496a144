package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleLine representa una línea dentro de una venta POS (Entity dentro del Aggregate)
type SaleLine struct {
	ID        uuid.UUID       `json:"id"`
	SaleID    uuid.UUID       `json:"sale_id"`
	ProductID int64           `json:"product_id"`
	Reference string          `json:"reference"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Currency  string          `json:"currency"`
}

// NewSaleLine crea una línea de venta con el subtotal calculado
// El unit_price viene del catálogo del servidor, no del terminal
func NewSaleLine(
	productID int64,
	reference string,
	quantity int64,
	unitPrice decimal.Decimal,
	currency string,
) (*SaleLine, error) {
	if productID <= 0 {
		return nil, ErrProductNotFound
	}
	if reference == "" {
		return nil, ErrReferenceRequired
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if unitPrice.LessThan(decimal.Zero) {
		return nil, ErrInvalidPrice
	}
	if !ValidCurrency(currency) {
		return nil, ErrInvalidCurrency
	}

	lineTotal := unitPrice.Mul(decimal.NewFromInt(quantity))

	return &SaleLine{
		ID:        uuid.New(),
		ProductID: productID,
		Reference: reference,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		LineTotal: lineTotal,
		Currency:  currency,
	}, nil
}
