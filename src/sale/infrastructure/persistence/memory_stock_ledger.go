package persistence

import (
	"context"
	"sync"

	"github.com/ENb08/jh/src/sale/domain/entity"
)

type stockKey struct {
	productID int64
	storeID   int64
}

// MemoryStockLedger implementa StockLedger en memoria.
// El mutex cumple el rol del row lock de Postgres: el chequeo de
// no-negatividad y la aplicación del delta son una sola sección crítica.
type MemoryStockLedger struct {
	mu  sync.Mutex
	qty map[stockKey]int64
}

// NewMemoryStockLedger crea un ledger vacío
func NewMemoryStockLedger() *MemoryStockLedger {
	return &MemoryStockLedger{qty: make(map[stockKey]int64)}
}

// Seed fija la cantidad inicial de un producto en un magasin
func (l *MemoryStockLedger) Seed(productID, storeID, quantity int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.qty[stockKey{productID, storeID}] = quantity
}

// Get retorna la cantidad actual
func (l *MemoryStockLedger) Get(ctx context.Context, productID, storeID int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	q, ok := l.qty[stockKey{productID, storeID}]
	if !ok {
		return 0, entity.ErrProductNotInStore
	}
	return q, nil
}

// ApplyDelta aplica el delta de forma atómica rechazando negativos
func (l *MemoryStockLedger) ApplyDelta(ctx context.Context, productID, storeID, delta int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := stockKey{productID, storeID}
	q, ok := l.qty[key]
	if !ok {
		return 0, entity.ErrProductNotInStore
	}
	if q+delta < 0 {
		return 0, entity.ErrStockWouldGoNegative
	}
	l.qty[key] = q + delta
	return q + delta, nil
}
