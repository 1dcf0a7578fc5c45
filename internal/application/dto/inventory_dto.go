package dto

import "github.com/shopspring/decimal"

// MovementRequest body para POST /api/stock/entries y POST /api/stock/exits.
type MovementRequest struct {
	ProductID   int64           `json:"product_id"`
	WarehouseID int64           `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Description string          `json:"description,omitempty"`
}

// BatchItemRequest ítem de un lote.
type BatchItemRequest struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// BatchEntryRequest body para POST /api/stock/entries/batch.
type BatchEntryRequest struct {
	WarehouseID int64              `json:"warehouse_id"`
	Items       []BatchItemRequest `json:"items"`
	Description string             `json:"description,omitempty"`
}

// DispatchRequest body para POST /api/stock/dispatch (salida en lote + OS).
type DispatchRequest struct {
	WarehouseID    int64              `json:"warehouse_id"`
	Items          []BatchItemRequest `json:"items"`
	Description    string             `json:"description,omitempty"`
	ClientName     string             `json:"client_name"`
	ClientDocument string             `json:"client_document,omitempty"`
	Declaration    string             `json:"declaration,omitempty"`
}

// OpenBalanceRequest body para POST /api/stock/balances.
type OpenBalanceRequest struct {
	ProductID   int64 `json:"product_id"`
	WarehouseID int64 `json:"warehouse_id"`
}

// SignRequest body para POST /api/exit-orders/:id/sign.
type SignRequest struct {
	SignatureDataURL string `json:"signatureDataUrl"`
}

// MovementResponse respuesta de una entrada o salida individual.
type MovementResponse struct {
	Message    string `json:"message"`
	MovementID int64  `json:"movement_id"`
}

// BatchResponse respuesta de una operación en lote.
type BatchResponse struct {
	Message     string  `json:"message"`
	MovementIDs []int64 `json:"movement_ids"`
}

// BalanceResponse saldo de un par producto/bodega.
type BalanceResponse struct {
	ProductID   int64           `json:"product_id"`
	WarehouseID int64           `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}
