package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ENb08/jh/src/sale/domain/entity"
	"github.com/ENb08/jh/src/sale/domain/port"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SalePostgresRepository implementa SaleRepository usando PostgreSQL.
// El commit completo (chequeo de stock, descuento, header + líneas) corre
// dentro de UNA transacción; las filas de store_stock quedan bloqueadas
// con FOR UPDATE hasta el commit (single writer por fila).
type SalePostgresRepository struct {
	db *sql.DB
}

// NewSalePostgresRepository crea una nueva instancia del repositorio
func NewSalePostgresRepository(db *sql.DB) *SalePostgresRepository {
	return &SalePostgresRepository{db: db}
}

// WithinTx ejecuta fn dentro de una transacción con rollback garantizado
func (r *SalePostgresRepository) WithinTx(ctx context.Context, fn func(tx port.SaleTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&salePostgresTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// FindByClientRef busca una venta por clave de idempotencia
func (r *SalePostgresRepository) FindByClientRef(ctx context.Context, storeID int64, clientRef string) (*entity.Sale, error) {
	query := saleSelect + ` WHERE client_ref = $1 AND store_id = $2`
	return r.loadOne(ctx, query, clientRef, storeID)
}

// FindByID busca una venta con sus líneas por su ID
func (r *SalePostgresRepository) FindByID(ctx context.Context, storeID int64, saleID uuid.UUID) (*entity.Sale, error) {
	query := saleSelect + ` WHERE id = $1 AND store_id = $2`
	return r.loadOne(ctx, query, saleID, storeID)
}

// ListByStore retorna las ventas de un magasin, más recientes primero
func (r *SalePostgresRepository) ListByStore(ctx context.Context, storeID int64) ([]*entity.Sale, error) {
	query := saleSelect + ` WHERE store_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("error querying pos_sales: %w", err)
	}
	defer rows.Close()

	var sales []*entity.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pos_sales: %w", err)
	}

	for _, sale := range sales {
		if err := r.loadLines(ctx, sale); err != nil {
			return nil, err
		}
	}
	return sales, nil
}

const saleSelect = `
	SELECT id, client_ref, user_id, store_id, payment_mode, currency,
	       subtotal, discount_pct, discount_amount, total,
	       amount_tendered, change, rate_usd, status, created_at
	FROM pos_sales`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSale(row rowScanner) (*entity.Sale, error) {
	sale := &entity.Sale{}
	err := row.Scan(
		&sale.ID,
		&sale.ClientRef,
		&sale.UserID,
		&sale.StoreID,
		&sale.PaymentMode,
		&sale.Currency,
		&sale.Subtotal,
		&sale.DiscountPct,
		&sale.DiscountAmount,
		&sale.Total,
		&sale.AmountTendered,
		&sale.Change,
		&sale.RateUSD,
		&sale.Status,
		&sale.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("error scanning pos_sale: %w", err)
	}
	return sale, nil
}

func (r *SalePostgresRepository) loadOne(ctx context.Context, query string, args ...interface{}) (*entity.Sale, error) {
	row := r.db.QueryRowContext(ctx, query, args...)
	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrSaleNotFound
		}
		return nil, err
	}
	if err := r.loadLines(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *SalePostgresRepository) loadLines(ctx context.Context, sale *entity.Sale) error {
	query := `
		SELECT id, sale_id, product_id, reference, quantity, unit_price, line_total, currency
		FROM pos_sale_lines
		WHERE sale_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, sale.ID)
	if err != nil {
		return fmt.Errorf("error loading lines for sale %s: %w", sale.ID, err)
	}
	defer rows.Close()

	var lines []entity.SaleLine
	for rows.Next() {
		var line entity.SaleLine
		err := rows.Scan(
			&line.ID,
			&line.SaleID,
			&line.ProductID,
			&line.Reference,
			&line.Quantity,
			&line.UnitPrice,
			&line.LineTotal,
			&line.Currency,
		)
		if err != nil {
			return fmt.Errorf("error scanning sale line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating sale lines: %w", err)
	}

	sale.Lines = lines
	return nil
}

// salePostgresTx es la vista transaccional (port.SaleTx) sobre *sql.Tx
type salePostgresTx struct {
	tx *sql.Tx
}

// FindProduct lee el producto con sus precios autoritativos
func (t *salePostgresTx) FindProduct(ctx context.Context, productID int64) (*entity.Product, error) {
	query := `
		SELECT id, reference, price_cdf, price_usd
		FROM products
		WHERE id = $1
	`

	product := &entity.Product{}
	err := t.tx.QueryRowContext(ctx, query, productID).Scan(
		&product.ID,
		&product.Reference,
		&product.PriceCDF,
		&product.PriceUSD,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error finding product: %w", err)
	}
	return product, nil
}

// Get lee la cantidad actual bloqueando la fila hasta el fin de la transacción
func (t *salePostgresTx) Get(ctx context.Context, productID, storeID int64) (int64, error) {
	query := `
		SELECT quantity
		FROM store_stock
		WHERE product_id = $1 AND store_id = $2
		FOR UPDATE
	`

	var quantity int64
	err := t.tx.QueryRowContext(ctx, query, productID, storeID).Scan(&quantity)
	if err == sql.ErrNoRows {
		return 0, entity.ErrProductNotInStore
	}
	if err != nil {
		return 0, fmt.Errorf("error reading stock: %w", err)
	}
	return quantity, nil
}

// ApplyDelta aplica el delta con el chequeo de no-negatividad en el UPDATE
func (t *salePostgresTx) ApplyDelta(ctx context.Context, productID, storeID, delta int64) (int64, error) {
	query := `
		UPDATE store_stock
		SET quantity = quantity + $3
		WHERE product_id = $1 AND store_id = $2 AND quantity + $3 >= 0
		RETURNING quantity
	`

	var newQuantity int64
	err := t.tx.QueryRowContext(ctx, query, productID, storeID, delta).Scan(&newQuantity)
	if err == sql.ErrNoRows {
		// O la fila no existe, o el delta la dejaría negativa
		if _, gerr := t.Get(ctx, productID, storeID); gerr != nil {
			return 0, gerr
		}
		return 0, entity.ErrStockWouldGoNegative
	}
	if err != nil {
		return 0, fmt.Errorf("error applying stock delta: %w", err)
	}
	return newQuantity, nil
}

// InsertSale persiste el header y las líneas dentro de la transacción
func (t *salePostgresTx) InsertSale(ctx context.Context, sale *entity.Sale) error {
	querySale := `
		INSERT INTO pos_sales (
			id, client_ref, user_id, store_id, payment_mode, currency,
			subtotal, discount_pct, discount_amount, total,
			amount_tendered, change, rate_usd, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
	`

	_, err := t.tx.ExecContext(ctx, querySale,
		sale.ID,
		sale.ClientRef,
		sale.UserID,
		sale.StoreID,
		sale.PaymentMode,
		sale.Currency,
		sale.Subtotal,
		sale.DiscountPct,
		sale.DiscountAmount,
		sale.Total,
		sale.AmountTendered,
		sale.Change,
		sale.RateUSD,
		sale.Status,
		sale.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrDuplicateClientRef
		}
		return fmt.Errorf("error creating pos_sale: %w", err)
	}

	queryLine := `
		INSERT INTO pos_sale_lines (
			id, sale_id, product_id, reference,
			quantity, unit_price, line_total, currency, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW()
		)
	`

	for _, line := range sale.Lines {
		_, err := t.tx.ExecContext(ctx, queryLine,
			line.ID,
			line.SaleID,
			line.ProductID,
			line.Reference,
			line.Quantity,
			line.UnitPrice,
			line.LineTotal,
			line.Currency,
		)
		if err != nil {
			return fmt.Errorf("error creating sale line for product %d: %w", line.ProductID, err)
		}
	}

	return nil
}

// isUniqueViolation detecta el choque del índice único sobre client_ref
// (dos reintentos concurrentes del mismo local_id)
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
