package connectivity

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/ENb08/jh/src/terminal/domain/entity"
)

// Prober responde si el servidor está alcanzable ahora mismo
type Prober interface {
	Ping(ctx context.Context) bool
}

// SyncTrigger dispara una pasada de sincronización. Debe ser segura
// ante triggers redundantes: el guard vive en el sync engine, no acá.
type SyncTrigger func(ctx context.Context) error

// Monitor observa las transiciones online/offline del terminal.
// Un solo goroutine corre el loop: la transición offline→online dispara
// exactamente un trigger, y cada tick online dispara un trigger
// suplementario que el guard del engine descarta si ya hay pasada activa.
type Monitor struct {
	probe    Prober
	trigger  SyncTrigger
	interval time.Duration
	online   atomic.Bool
}

// NewMonitor crea el monitor de conectividad
func NewMonitor(probe Prober, trigger SyncTrigger, interval time.Duration) *Monitor {
	return &Monitor{
		probe:    probe,
		trigger:  trigger,
		interval: interval,
	}
}

// Online retorna el último estado observado
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Run corre el loop hasta que el contexto se cancele
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

func (m *Monitor) check(ctx context.Context) {
	wasOnline := m.online.Load()
	nowOnline := m.probe.Ping(ctx)
	m.online.Store(nowOnline)

	switch {
	case nowOnline && !wasOnline:
		log.Println("✅ Connexion rétablie - disparando sincronización")
		m.fire(ctx)
	case nowOnline:
		// Trigger suplementario por timer: cubre eventos perdidos y
		// entradas que quedaron en failed
		m.fire(ctx)
	case wasOnline:
		log.Println("⚠️  Mode hors ligne")
	}
}

func (m *Monitor) fire(ctx context.Context) {
	if err := m.trigger(ctx); err != nil && !errors.Is(err, entity.ErrSyncInProgress) {
		log.Printf("⚠️  Sync trigger failed: %v", err)
	}
}
