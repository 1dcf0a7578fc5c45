package dto

// ErrorResponse cuerpo de error HTTP.
// Index solo aparece cuando el error corresponde a un ítem concreto de un lote.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Index   *int   `json:"index,omitempty"`
}

// MessageResponse respuesta simple con mensaje.
type MessageResponse struct {
	Message string `json:"message"`
}
