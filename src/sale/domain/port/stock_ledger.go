package port

import "context"

// StockLedger es la única puerta de mutación del stock por venta.
// Todo caller pasa por ApplyDelta, que garantiza la no-negatividad;
// nadie escribe la cantidad directamente.
//
// Los commits concurrentes sobre el mismo producto serializan en esta capa
// (row lock en Postgres, mutex en la implementación en memoria).
type StockLedger interface {
	// Get retorna la cantidad actual para (producto, magasin).
	// entity.ErrProductNotInStore si no existe fila de stock.
	Get(ctx context.Context, productID, storeID int64) (int64, error)

	// ApplyDelta aplica un delta (negativo en ventas) y retorna la nueva cantidad.
	// entity.ErrStockWouldGoNegative si el delta dejaría la cantidad < 0.
	ApplyDelta(ctx context.Context, productID, storeID, delta int64) (int64, error)
}
