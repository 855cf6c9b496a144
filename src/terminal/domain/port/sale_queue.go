package port

import (
	"context"

	"github.com/ENb08/jh/src/terminal/domain/entity"

	"github.com/google/uuid"
)

// SaleQueue es la cola local durable del terminal.
// Sobrevive reinicios del proceso; Enqueue nunca toca la red y solo
// falla por agotamiento del almacenamiento (entity.StorageError).
type SaleQueue interface {
	// Enqueue persiste una venta capturada y retorna la entrada con su
	// local_id (clave de idempotencia) y su posición de creación.
	Enqueue(ctx context.Context, payload entity.SalePayload) (*entity.PendingSale, error)

	// List retorna todas las entradas en orden de creación
	List(ctx context.Context) ([]*entity.PendingSale, error)

	// Remove elimina una entrada confirmada
	Remove(ctx context.Context, localID uuid.UUID) error

	// MarkInFlight marca la entrada como en vuelo hacia el servidor
	MarkInFlight(ctx context.Context, localID uuid.UUID) error

	// MarkFailed devuelve la entrada al pool de reintento automático
	MarkFailed(ctx context.Context, localID uuid.UUID, reason string) error

	// MarkNeedsAttention saca la entrada del reintento automático pero
	// la deja visible para resolución manual
	MarkNeedsAttention(ctx context.Context, localID uuid.UUID, reason string) error

	// SaveConfirmed cachea el espejo de la venta confirmada por el servidor
	SaveConfirmed(ctx context.Context, sale *entity.ConfirmedSale) error

	// ListConfirmed retorna las ventas confirmadas cacheadas
	ListConfirmed(ctx context.Context) ([]*entity.ConfirmedSale, error)

	Close() error
}
