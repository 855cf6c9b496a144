package usecase

import (
	"context"

	"github.com/ENb08/jh/src/terminal/domain/entity"
	"github.com/ENb08/jh/src/terminal/domain/port"
)

// QueueStatus es la vista del operador sobre la cola local:
// ningún estado de falla puede ser invisible.
type QueueStatus struct {
	Pending        []*entity.PendingSale
	InFlight       []*entity.PendingSale
	NeedsAttention []*entity.PendingSale
	ConfirmedCount int
}

// QueueStatusUseCase expone el estado de la cola al UI de caja
type QueueStatusUseCase struct {
	queue port.SaleQueue
}

// NewQueueStatusUseCase crea una nueva instancia del caso de uso
func NewQueueStatusUseCase(queue port.SaleQueue) *QueueStatusUseCase {
	return &QueueStatusUseCase{queue: queue}
}

// Execute agrupa las entradas por estado
func (uc *QueueStatusUseCase) Execute(ctx context.Context) (*QueueStatus, error) {
	entries, err := uc.queue.List(ctx)
	if err != nil {
		return nil, err
	}
	confirmed, err := uc.queue.ListConfirmed(ctx)
	if err != nil {
		return nil, err
	}

	status := &QueueStatus{ConfirmedCount: len(confirmed)}
	for _, entry := range entries {
		switch entry.State {
		case entity.SyncStateNeedsAttention:
			status.NeedsAttention = append(status.NeedsAttention, entry)
		case entity.SyncStateInFlight:
			status.InFlight = append(status.InFlight, entry)
		default:
			status.Pending = append(status.Pending, entry)
		}
	}
	return status, nil
}
