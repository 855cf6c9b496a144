package port

import (
	"context"

	"github.com/ENb08/jh/src/sale/domain/entity"

	"github.com/google/uuid"
)

// SaleTx es la vista transaccional usada por el commit de venta:
// lecturas de catálogo, ledger de stock e inserción del aggregate,
// todo dentro de la MISMA unidad atómica de trabajo.
type SaleTx interface {
	StockLedger
	PriceCatalog

	// InsertSale persiste el header de la venta y todas sus líneas.
	// entity.ErrDuplicateClientRef si otro commit ya usó el mismo client_ref.
	InsertSale(ctx context.Context, sale *entity.Sale) error
}

// SaleRepository define el contrato de persistencia de ventas POS.
// Las ventas son inmutables: Create-only más lecturas.
type SaleRepository interface {
	// WithinTx ejecuta fn dentro de una transacción; si fn retorna error
	// se revierte todo (stock y venta, all-or-nothing).
	WithinTx(ctx context.Context, fn func(tx SaleTx) error) error

	// FindByClientRef busca una venta por su clave de idempotencia.
	// entity.ErrSaleNotFound si no existe.
	FindByClientRef(ctx context.Context, storeID int64, clientRef string) (*entity.Sale, error)

	// FindByID busca una venta con sus líneas (reimpresión de recibo).
	FindByID(ctx context.Context, storeID int64, saleID uuid.UUID) (*entity.Sale, error)

	// ListByStore retorna las ventas de un magasin, más recientes primero.
	ListByStore(ctx context.Context, storeID int64) ([]*entity.Sale, error)
}
