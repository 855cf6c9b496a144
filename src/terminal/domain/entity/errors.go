package entity

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart           = errors.New("cart must have at least one item")
	ErrInvalidQuantity     = errors.New("quantity must be greater than 0")
	ErrPendingSaleNotFound = errors.New("pending sale not found in local queue")

	// ErrSyncInProgress: una pasada de sincronización ya está corriendo;
	// el trigger que la encontró ocupada simplemente no hace nada
	ErrSyncInProgress = errors.New("sync pass already in progress")
)

// StorageError es una falla del almacenamiento local durable.
// Fatal para ese enqueue: la venta se pierde salvo que el caller reintente.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("local storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// TransientError es una falla de red/timeout/5xx: la entrada vuelve a
// pending y el resto del lote se posterga hasta el próximo trigger.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient sync failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// RejectionError es un rechazo de negocio definitivo del servidor
// (stock insuficiente, producto inválido). Reintentar sin cambios no
// puede funcionar: la entrada pasa a needs_attention.
type RejectionError struct {
	Reason    string
	ProductID int64
	Available int64
	Requested int64
	Message   string
}

func (e *RejectionError) Error() string {
	if e.Reason == "insufficient_stock" {
		return fmt.Sprintf("rejected (%s): product %d available %d requested %d",
			e.Reason, e.ProductID, e.Available, e.Requested)
	}
	return fmt.Sprintf("rejected (%s): %s", e.Reason, e.Message)
}
