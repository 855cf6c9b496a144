package persistence

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ENb08/jh/src/sale/domain/entity"
	"github.com/ENb08/jh/src/sale/domain/port"

	"github.com/google/uuid"
)

// MemorySaleStore implementa SaleRepository en memoria.
// Cada WithinTx toma el mutex por toda la transacción (equivalente al
// single-writer de Postgres) y aplica los cambios en staging: si fn
// falla no se toca ni el stock ni el índice de ventas.
type MemorySaleStore struct {
	mu       sync.Mutex
	products map[int64]entity.Product
	stock    map[stockKey]int64
	sales    map[uuid.UUID]*entity.Sale
	byRef    map[string]uuid.UUID
}

// NewMemorySaleStore crea un store vacío
func NewMemorySaleStore() *MemorySaleStore {
	return &MemorySaleStore{
		products: make(map[int64]entity.Product),
		stock:    make(map[stockKey]int64),
		sales:    make(map[uuid.UUID]*entity.Sale),
		byRef:    make(map[string]uuid.UUID),
	}
}

// SeedProduct registra un producto en el catálogo con su stock inicial
func (s *MemorySaleStore) SeedProduct(p entity.Product, storeID, quantity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
	s.stock[stockKey{p.ID, storeID}] = quantity
}

// StockOf retorna la cantidad actual (inspección en tests)
func (s *MemorySaleStore) StockOf(productID, storeID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[stockKey{productID, storeID}]
}

// WithinTx ejecuta fn con cambios staged y commit all-or-nothing
func (s *MemorySaleStore) WithinTx(ctx context.Context, fn func(tx port.SaleTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memorySaleTx{
		store:  s,
		deltas: make(map[stockKey]int64),
	}
	if err := fn(tx); err != nil {
		return err
	}

	// Commit: aplicar deltas y ventas staged
	for key, delta := range tx.deltas {
		s.stock[key] += delta
	}
	for _, sale := range tx.inserted {
		s.sales[sale.ID] = sale
		s.byRef[refKey(sale.StoreID, sale.ClientRef)] = sale.ID
	}
	return nil
}

// FindByClientRef busca una venta por clave de idempotencia
func (s *MemorySaleStore) FindByClientRef(ctx context.Context, storeID int64, clientRef string) (*entity.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byRef[refKey(storeID, clientRef)]
	if !ok {
		return nil, entity.ErrSaleNotFound
	}
	return s.sales[id], nil
}

// FindByID busca una venta por su ID
func (s *MemorySaleStore) FindByID(ctx context.Context, storeID int64, saleID uuid.UUID) (*entity.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[saleID]
	if !ok || sale.StoreID != storeID {
		return nil, entity.ErrSaleNotFound
	}
	return sale, nil
}

// ListByStore retorna las ventas del magasin, más recientes primero
func (s *MemorySaleStore) ListByStore(ctx context.Context, storeID int64) ([]*entity.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Sale
	for _, sale := range s.sales {
		if sale.StoreID == storeID {
			out = append(out, sale)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func refKey(storeID int64, clientRef string) string {
	return fmt.Sprintf("%d|%s", storeID, clientRef)
}

// memorySaleTx es la vista transaccional staged sobre MemorySaleStore.
// El mutex del store ya está tomado por WithinTx.
type memorySaleTx struct {
	store    *MemorySaleStore
	deltas   map[stockKey]int64
	inserted []*entity.Sale
}

func (t *memorySaleTx) FindProduct(ctx context.Context, productID int64) (*entity.Product, error) {
	p, ok := t.store.products[productID]
	if !ok {
		return nil, entity.ErrProductNotFound
	}
	return &p, nil
}

func (t *memorySaleTx) Get(ctx context.Context, productID, storeID int64) (int64, error) {
	key := stockKey{productID, storeID}
	q, ok := t.store.stock[key]
	if !ok {
		return 0, entity.ErrProductNotInStore
	}
	return q + t.deltas[key], nil
}

func (t *memorySaleTx) ApplyDelta(ctx context.Context, productID, storeID, delta int64) (int64, error) {
	current, err := t.Get(ctx, productID, storeID)
	if err != nil {
		return 0, err
	}
	if current+delta < 0 {
		return 0, entity.ErrStockWouldGoNegative
	}
	t.deltas[stockKey{productID, storeID}] += delta
	return current + delta, nil
}

func (t *memorySaleTx) InsertSale(ctx context.Context, sale *entity.Sale) error {
	key := refKey(sale.StoreID, sale.ClientRef)
	if _, exists := t.store.byRef[key]; exists {
		return entity.ErrDuplicateClientRef
	}
	for _, staged := range t.inserted {
		if refKey(staged.StoreID, staged.ClientRef) == key {
			return entity.ErrDuplicateClientRef
		}
	}
	t.inserted = append(t.inserted, sale)
	return nil
}
