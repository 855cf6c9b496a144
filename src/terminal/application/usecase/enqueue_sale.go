package usecase

import (
	"context"
	"log"

	"github.com/ENb08/jh/src/terminal/domain/entity"
	"github.com/ENb08/jh/src/terminal/domain/port"
)

// EnqueueSaleUseCase captura una venta cerrada en caja.
// Nunca bloquea en red y nunca falla por conectividad: la venta queda
// durable en la cola local y la sincronización corre por su cuenta.
type EnqueueSaleUseCase struct {
	queue port.SaleQueue
}

// NewEnqueueSaleUseCase crea una nueva instancia del caso de uso
func NewEnqueueSaleUseCase(queue port.SaleQueue) *EnqueueSaleUseCase {
	return &EnqueueSaleUseCase{queue: queue}
}

// Execute valida el carrito y lo persiste en la cola local.
// Un *entity.StorageError es fatal para este enqueue y se reporta
// sincrónicamente al cajero.
func (uc *EnqueueSaleUseCase) Execute(ctx context.Context, payload entity.SalePayload) (*entity.PendingSale, error) {
	pending, err := uc.queue.Enqueue(ctx, payload)
	if err != nil {
		log.Printf("❌ Enqueue failed: %v", err)
		return nil, err
	}

	log.Printf("🧾 Vente encolada local_id=%s items=%d", pending.LocalID, len(pending.Payload.Items))
	return pending, nil
}
