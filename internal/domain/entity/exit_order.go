package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDeclaration es el texto fijo de responsabilidad que firma quien recibe el material.
const DefaultDeclaration = "Declaro que recibí los materiales arriba descritos, asumiendo total responsabilidad por " +
	"su uso y conservación, y me comprometo a devolverlos en perfectas condiciones o a resarcir eventuales daños."

// SnapshotVersion es la versión actual del esquema de ItemsSnapshot.
const SnapshotVersion = 1

// SnapshotItem es una línea de la orden tal como era al momento de crearla.
type SnapshotItem struct {
	Product   string          `json:"product"`
	Quantity  decimal.Decimal `json:"quantity"`
	Warehouse string          `json:"warehouse"`
}

// ItemsSnapshot es la copia materializada de los ítems de una orden de salida.
// Nunca se recalcula contra productos o bodegas vivos.
type ItemsSnapshot struct {
	Version int            `json:"version"`
	Items   []SnapshotItem `json:"items"`
}

// NewItemsSnapshot materializa el snapshot a partir de movimientos enriquecidos.
func NewItemsSnapshot(movements []MovementDetail) ItemsSnapshot {
	items := make([]SnapshotItem, 0, len(movements))
	for _, m := range movements {
		items = append(items, SnapshotItem{
			Product:   m.ProductName,
			Quantity:  m.Quantity,
			Warehouse: m.WarehouseName,
		})
	}
	return ItemsSnapshot{Version: SnapshotVersion, Items: items}
}

// Validate comprueba la forma del documento.
func (s ItemsSnapshot) Validate() error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("snapshot: versión %d no soportada", s.Version)
	}
	if len(s.Items) == 0 {
		return fmt.Errorf("snapshot: sin ítems")
	}
	for i, it := range s.Items {
		if it.Product == "" || it.Warehouse == "" {
			return fmt.Errorf("snapshot: ítem %d incompleto", i)
		}
		if !it.Quantity.IsPositive() {
			return fmt.Errorf("snapshot: ítem %d con cantidad no positiva", i)
		}
	}
	return nil
}

// Marshal serializa el snapshot validándolo antes.
func (s ItemsSnapshot) Marshal() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// ParseItemsSnapshot lee y valida un snapshot persistido.
func ParseItemsSnapshot(raw []byte) (ItemsSnapshot, error) {
	var s ItemsSnapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return ItemsSnapshot{}, fmt.Errorf("snapshot: %w", err)
	}
	if err := s.Validate(); err != nil {
		return ItemsSnapshot{}, err
	}
	return s, nil
}

// ExitOrder es la orden de salida (OS) derivada de un lote de movimientos EXIT.
// MovementID es el ancla: el primer movimiento del lote y número visible de la OS.
type ExitOrder struct {
	ID                int64
	MovementID        int64
	WarehouseID       int64
	ClientName        string
	ClientDocument    string
	Declaration       string
	OperatorName      string
	Items             ItemsSnapshot
	DocumentRef       string
	SignatureImage    []byte
	SignedDocumentRef string
	CreatedAt         time.Time
}

// IsSigned indica si la orden ya tiene firma.
func (o *ExitOrder) IsSigned() bool {
	return len(o.SignatureImage) > 0
}

// CurrentDocumentRef devuelve el documento vigente: el firmado si existe.
func (o *ExitOrder) CurrentDocumentRef() string {
	if o.SignedDocumentRef != "" {
		return o.SignedDocumentRef
	}
	return o.DocumentRef
}
