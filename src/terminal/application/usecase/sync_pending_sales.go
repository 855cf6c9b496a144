package usecase

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/ENb08/jh/src/shared/infrastructure/metrics"
	"github.com/ENb08/jh/src/terminal/domain/entity"
	"github.com/ENb08/jh/src/terminal/domain/port"
)

// SyncReport resume una pasada de sincronización
type SyncReport struct {
	Attempted int
	Confirmed int
	Rejected  int
	Halted    bool
	HaltedOn  string
}

// SyncPendingSalesUseCase drena la cola local contra el servidor.
//
// Máquina de estados por entrada:
//
//	pending → in_flight → confirmada (removida)
//	                    → needs_attention (rechazo definitivo, visible)
//	                    → failed (falla transitoria, reintenta; corta el lote)
//
// Las entradas se drenan en orden de creación para que el chequeo de stock
// del servidor refleje la demanda cronológica (first-queued, first-served).
// Una sola pasada corre a la vez: el guard se toma al entrar y se libera
// en defer, incluso ante error.
type SyncPendingSalesUseCase struct {
	queue   port.SaleQueue
	client  port.CommitClient
	timeout time.Duration
	met     *metrics.Registry
	running atomic.Bool
}

// NewSyncPendingSalesUseCase crea una nueva instancia del caso de uso
func NewSyncPendingSalesUseCase(
	queue port.SaleQueue,
	client port.CommitClient,
	timeout time.Duration,
	met *metrics.Registry,
) *SyncPendingSalesUseCase {
	return &SyncPendingSalesUseCase{
		queue:   queue,
		client:  client,
		timeout: timeout,
		met:     met,
	}
}

// Execute corre una pasada completa. entity.ErrSyncInProgress si otra
// pasada está activa (el trigger se descarta, no se encola).
func (uc *SyncPendingSalesUseCase) Execute(ctx context.Context) (*SyncReport, error) {
	if !uc.running.CompareAndSwap(false, true) {
		return nil, entity.ErrSyncInProgress
	}
	defer uc.running.Store(false)

	if uc.met != nil {
		uc.met.SyncPasses.Inc()
	}

	entries, err := uc.queue.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{}
	for _, entry := range entries {
		if !entry.Retryable() {
			continue
		}
		report.Attempted++

		if err := uc.queue.MarkInFlight(ctx, entry.LocalID); err != nil {
			return report, err
		}

		cctx, cancel := context.WithTimeout(ctx, uc.timeout)
		result, err := uc.client.CommitSale(cctx, entry)
		cancel()

		if err != nil {
			// Falla transitoria: la entrada vuelve al pool y el resto
			// del lote espera al próximo trigger (sin hot-loop)
			log.Printf("⚠️  Sync transitorio local_id=%s: %v", entry.LocalID, err)
			if uc.met != nil {
				uc.met.SyncTransient.Inc()
			}
			if merr := uc.queue.MarkFailed(ctx, entry.LocalID, err.Error()); merr != nil {
				return report, merr
			}
			report.Halted = true
			report.HaltedOn = entry.LocalID.String()
			return report, nil
		}

		if result.Rejection != nil {
			// Rechazo definitivo: fuera del reintento automático pero
			// nunca borrado en silencio
			log.Printf("❌ Vente rechazada local_id=%s: %v", entry.LocalID, result.Rejection)
			if uc.met != nil {
				uc.met.SyncRejected.Inc()
			}
			if merr := uc.queue.MarkNeedsAttention(ctx, entry.LocalID, result.Rejection.Error()); merr != nil {
				return report, merr
			}
			report.Rejected++
			continue
		}

		// Confirmada: cachear el espejo y recién después soltar la entrada
		if err := uc.queue.SaveConfirmed(ctx, result.Confirmed); err != nil {
			return report, err
		}
		if err := uc.queue.Remove(ctx, entry.LocalID); err != nil {
			return report, err
		}
		if uc.met != nil {
			uc.met.SyncConfirmed.Inc()
		}
		report.Confirmed++
		log.Printf("✅ Vente sincronizada local_id=%s → sale_id=%s", entry.LocalID, result.Confirmed.SaleID)
	}

	return report, nil
}
