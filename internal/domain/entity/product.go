package entity

import (
	"fmt"
	"time"
)

// Product representa un producto del catálogo. El SKU se deriva del ID al crearlo y no cambia.
type Product struct {
	ID          int64
	Name        string
	Unit        string // unidad de medida: UN, CX, KG...
	SKU         string
	Barcode     string
	Description string
	CreatedAt   time.Time
}

// SKUFor deriva el SKU de un producto a partir de su ID: P-00042.
func SKUFor(id int64) string {
	return fmt.Sprintf("P-%05d", id)
}
