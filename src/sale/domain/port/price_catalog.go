package port

import (
	"context"

	"github.com/ENb08/jh/src/sale/domain/entity"
)

// PriceCatalog expone la consulta de precios autoritativos del catálogo.
// El commit de venta re-deriva todos los precios de aquí: los totales
// enviados por el terminal nunca se usan para calcular.
type PriceCatalog interface {
	// FindProduct retorna el producto o entity.ErrProductNotFound
	FindProduct(ctx context.Context, productID int64) (*entity.Product, error)
}
