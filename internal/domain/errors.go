package domain

import (
	"errors"
	"fmt"
)

// Kind clasifica los errores de dominio. El conjunto es cerrado: la capa HTTP
// traduce cada Kind a una categoría de estado sin inspeccionar el texto.
type Kind int

const (
	KindInternal Kind = iota
	KindForbidden
	KindNotFound
	KindInsufficientStock
	KindNoStockRecord
	KindInvalidInput
)

// String devuelve el código estable del Kind (se expone en las respuestas HTTP).
func (k Kind) String() string {
	switch k {
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindInsufficientStock:
		return "INSUFFICIENT_STOCK"
	case KindNoStockRecord:
		return "NO_STOCK_RECORD"
	case KindInvalidInput:
		return "VALIDATION"
	default:
		return "INTERNAL"
	}
}

// NoIndex indica que el error no corresponde a un ítem concreto de un lote.
const NoIndex = -1

// Error es el error de dominio. Index es la posición del ítem culpable dentro
// de un lote, o NoIndex.
type Error struct {
	Kind    Kind
	Index   int
	Message string
}

func (e *Error) Error() string {
	if e.Index != NoIndex {
		return fmt.Sprintf("%s (ítem %d)", e.Message, e.Index)
	}
	return e.Message
}

// Is permite errors.Is(err, domain.ErrInsufficientStock) comparando solo el Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Errores de dominio (sin dependencias externas).
var (
	ErrForbidden         = &Error{Kind: KindForbidden, Index: NoIndex, Message: "acceso denegado"}
	ErrNotFound          = &Error{Kind: KindNotFound, Index: NoIndex, Message: "recurso no encontrado"}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock, Index: NoIndex, Message: "stock insuficiente"}
	ErrNoStockRecord     = &Error{Kind: KindNoStockRecord, Index: NoIndex, Message: "no hay stock de este producto en la bodega"}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput, Index: NoIndex, Message: "entrada inválida"}
)

// New construye un error de dominio con mensaje propio.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Index: NoIndex, Message: msg}
}

// AtItem devuelve una copia del error asociada al ítem i de un lote.
func AtItem(err error, i int) error {
	var de *Error
	if !errors.As(err, &de) {
		return err
	}
	cp := *de
	cp.Index = i
	return &cp
}

// KindOf extrae el Kind de err; cualquier error ajeno al dominio es KindInternal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IndexOf devuelve el índice de ítem asociado a err, o NoIndex.
func IndexOf(err error) int {
	var de *Error
	if errors.As(err, &de) {
		return de.Index
	}
	return NoIndex
}
