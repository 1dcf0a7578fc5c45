package exitorder

import (
	"bytes"
	"encoding/base64"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// MaxSignatureBytes tamaño máximo de la imagen de firma decodificada.
const MaxSignatureBytes = 2 << 20

// Formatos de imagen de firma admitidos.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// Signature imagen de firma ya decodificada.
type Signature struct {
	Image  []byte
	Format string
}

var (
	pngMagic  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	jpegMagic = []byte{0xff, 0xd8, 0xff}
)

// ParseSignatureDataURL decodifica "data:image/png;base64,...". Solo acepta PNG o JPEG.
func ParseSignatureDataURL(raw string) (Signature, error) {
	invalid := func(msg string) (Signature, error) {
		return Signature{}, domain.New(domain.KindInvalidInput, msg)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return invalid("la firma es obligatoria")
	}
	header, payload, ok := strings.Cut(raw, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return invalid("la firma debe ser un data URL en base64")
	}
	mime := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	var format string
	switch mime {
	case "image/png":
		format = FormatPNG
	case "image/jpeg", "image/jpg":
		format = FormatJPEG
	default:
		return invalid("formato de firma no soportado: " + mime)
	}
	img, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return invalid("la firma no es base64 válido")
	}
	if len(img) == 0 || len(img) > MaxSignatureBytes {
		return invalid("tamaño de firma inválido")
	}
	magic := pngMagic
	if format == FormatJPEG {
		magic = jpegMagic
	}
	if !bytes.HasPrefix(img, magic) {
		return invalid("el contenido de la firma no coincide con su formato")
	}
	return Signature{Image: img, Format: format}, nil
}
