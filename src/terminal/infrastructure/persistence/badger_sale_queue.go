package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/ENb08/jh/src/terminal/domain/entity"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	queuePrefix     = "queue/"
	indexPrefix     = "idx/"
	confirmedPrefix = "confirmed/"
)

// BadgerSaleQueue implementa SaleQueue sobre BadgerDB, el equivalente
// local-durable del object store por dispositivo del POS original.
// Las claves de cola llevan un secuencial zero-padded: el orden
// lexicográfico de iteración ES el orden de creación.
type BadgerSaleQueue struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewBadgerSaleQueue abre (o crea) la cola en el directorio del terminal
func NewBadgerSaleQueue(dir string) (*BadgerSaleQueue, error) {
	opts := badger.DefaultOptions(filepath.Clean(dir))
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open: %w", err)
	}

	if err := recoverInFlight(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("badger recover in-flight: %w", err)
	}

	seq, err := db.GetSequence([]byte("seq/queue"), 32)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("badger sequence: %w", err)
	}

	return &BadgerSaleQueue{db: db, seq: seq}, nil
}

// recoverInFlight devuelve al pool de reintento las entradas que quedaron
// in_flight por un crash del daemon entre el marcado y la respuesta.
// El reintento es seguro: el local_id viaja como clave de idempotencia y el
// servidor deduplica si el commit original sí llegó a aplicarse.
func recoverInFlight(db *badger.DB) error {
	recovered := 0
	err := db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(queuePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			var pending entity.PendingSale
			if err := json.Unmarshal(value, &pending); err != nil {
				return err
			}
			if pending.State != entity.SyncStateInFlight {
				continue
			}

			pending.State = entity.SyncStateFailed
			pending.LastError = "sync interrumpido por reinicio del terminal"
			updated, err := json.Marshal(&pending)
			if err != nil {
				return err
			}
			if err := txn.Set(item.KeyCopy(nil), updated); err != nil {
				return err
			}
			recovered++
		}
		return nil
	})
	if err != nil {
		return err
	}
	if recovered > 0 {
		log.Printf("🔁 %d vente(s) in_flight recuperadas al pool de reintento", recovered)
	}
	return nil
}

// Close libera el secuencial y cierra la base
func (q *BadgerSaleQueue) Close() error {
	if err := q.seq.Release(); err != nil {
		q.db.Close()
		return err
	}
	return q.db.Close()
}

func queueKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", queuePrefix, seq))
}

func indexKey(localID uuid.UUID) []byte {
	return []byte(indexPrefix + localID.String())
}

// Enqueue persiste la venta en una sola transacción Badger.
// Nunca toca la red; un error acá es entity.StorageError (fatal).
func (q *BadgerSaleQueue) Enqueue(ctx context.Context, payload entity.SalePayload) (*entity.PendingSale, error) {
	pending, err := entity.NewPendingSale(payload)
	if err != nil {
		return nil, err
	}

	seq, err := q.seq.Next()
	if err != nil {
		return nil, &entity.StorageError{Op: "enqueue", Err: err}
	}
	pending.Seq = seq

	value, err := json.Marshal(pending)
	if err != nil {
		return nil, &entity.StorageError{Op: "enqueue", Err: err}
	}

	err = q.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(queueKey(seq), value); err != nil {
			return err
		}
		return txn.Set(indexKey(pending.LocalID), queueKey(seq))
	})
	if err != nil {
		return nil, &entity.StorageError{Op: "enqueue", Err: err}
	}

	return pending, nil
}

// List retorna todas las entradas en orden de creación
func (q *BadgerSaleQueue) List(ctx context.Context) ([]*entity.PendingSale, error) {
	var out []*entity.PendingSale
	err := q.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(queuePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var pending entity.PendingSale
			if err := json.Unmarshal(value, &pending); err != nil {
				return err
			}
			out = append(out, &pending)
		}
		return nil
	})
	if err != nil {
		return nil, &entity.StorageError{Op: "list", Err: err}
	}
	return out, nil
}

// Remove elimina la entrada y su índice
func (q *BadgerSaleQueue) Remove(ctx context.Context, localID uuid.UUID) error {
	err := q.db.Update(func(txn *badger.Txn) error {
		key, _, err := q.lookup(txn, localID)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(indexKey(localID))
	})
	if err == entity.ErrPendingSaleNotFound {
		return err
	}
	if err != nil {
		return &entity.StorageError{Op: "remove", Err: err}
	}
	return nil
}

// MarkInFlight marca la entrada como en vuelo
func (q *BadgerSaleQueue) MarkInFlight(ctx context.Context, localID uuid.UUID) error {
	return q.mutate(localID, "mark_in_flight", func(p *entity.PendingSale) {
		p.State = entity.SyncStateInFlight
		p.Attempts++
	})
}

// MarkFailed devuelve la entrada al pool de reintento
func (q *BadgerSaleQueue) MarkFailed(ctx context.Context, localID uuid.UUID, reason string) error {
	return q.mutate(localID, "mark_failed", func(p *entity.PendingSale) {
		p.State = entity.SyncStateFailed
		p.LastError = reason
	})
}

// MarkNeedsAttention saca la entrada del reintento automático
func (q *BadgerSaleQueue) MarkNeedsAttention(ctx context.Context, localID uuid.UUID, reason string) error {
	return q.mutate(localID, "mark_needs_attention", func(p *entity.PendingSale) {
		p.State = entity.SyncStateNeedsAttention
		p.LastError = reason
	})
}

// SaveConfirmed cachea el espejo de una venta confirmada
func (q *BadgerSaleQueue) SaveConfirmed(ctx context.Context, sale *entity.ConfirmedSale) error {
	if sale.SyncedAt.IsZero() {
		sale.SyncedAt = time.Now()
	}
	value, err := json.Marshal(sale)
	if err != nil {
		return &entity.StorageError{Op: "save_confirmed", Err: err}
	}
	err = q.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(confirmedPrefix+sale.SaleID.String()), value)
	})
	if err != nil {
		return &entity.StorageError{Op: "save_confirmed", Err: err}
	}
	return nil
}

// ListConfirmed retorna las ventas confirmadas cacheadas
func (q *BadgerSaleQueue) ListConfirmed(ctx context.Context) ([]*entity.ConfirmedSale, error) {
	var out []*entity.ConfirmedSale
	err := q.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(confirmedPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var sale entity.ConfirmedSale
			if err := json.Unmarshal(value, &sale); err != nil {
				return err
			}
			out = append(out, &sale)
		}
		return nil
	})
	if err != nil {
		return nil, &entity.StorageError{Op: "list_confirmed", Err: err}
	}
	return out, nil
}

// lookup resuelve local_id → (clave de cola, entrada)
func (q *BadgerSaleQueue) lookup(txn *badger.Txn, localID uuid.UUID) ([]byte, *entity.PendingSale, error) {
	item, err := txn.Get(indexKey(localID))
	if err == badger.ErrKeyNotFound {
		return nil, nil, entity.ErrPendingSaleNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	key, err := item.ValueCopy(nil)
	if err != nil {
		return nil, nil, err
	}

	entryItem, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil, entity.ErrPendingSaleNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	value, err := entryItem.ValueCopy(nil)
	if err != nil {
		return nil, nil, err
	}

	var pending entity.PendingSale
	if err := json.Unmarshal(value, &pending); err != nil {
		return nil, nil, err
	}
	return key, &pending, nil
}

// mutate carga, transforma y re-escribe una entrada en una transacción
func (q *BadgerSaleQueue) mutate(localID uuid.UUID, op string, fn func(*entity.PendingSale)) error {
	err := q.db.Update(func(txn *badger.Txn) error {
		key, pending, err := q.lookup(txn, localID)
		if err != nil {
			return err
		}
		fn(pending)
		value, err := json.Marshal(pending)
		if err != nil {
			return err
		}
		return txn.Set(key, value)
	})
	if err == entity.ErrPendingSaleNotFound {
		return err
	}
	if err != nil {
		return &entity.StorageError{Op: op, Err: err}
	}
	return nil
}
