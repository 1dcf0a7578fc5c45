package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jhoicas/stock-ledger/internal/application/exitorder"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/storage"
)

var (
	_ exitorder.DocumentRenderer = (*DocumentRenderer)(nil)
	_ exitorder.DocumentStore    = (*DocumentRenderer)(nil)
)

const contentTypePDF = "application/pdf"

// DocumentRenderer genera los PDF de órdenes de salida y los guarda en el storage.
// Claves: exit-orders/OS-SALIDA-<n>.pdf y exit-orders/OS-SALIDA-<n>-firmada.pdf.
type DocumentRenderer struct {
	gen   *MarotoPDFGenerator
	store storage.Store
}

// NewDocumentRenderer construye el adaptador.
func NewDocumentRenderer(gen *MarotoPDFGenerator, store storage.Store) *DocumentRenderer {
	return &DocumentRenderer{gen: gen, store: store}
}

// DocumentKey clave de almacenamiento del documento de la OS n.
func DocumentKey(number int64, signed bool) string {
	key := "exit-orders/OS-SALIDA-" + strconv.FormatInt(number, 10)
	if signed {
		key += "-firmada"
	}
	return key + ".pdf"
}

func (r *DocumentRenderer) Render(ctx context.Context, doc exitorder.ExitDocument) (string, error) {
	return r.put(ctx, doc, nil, DocumentKey(doc.Number, false))
}

func (r *DocumentRenderer) RenderSigned(ctx context.Context, order *entity.ExitOrder, sig exitorder.Signature) (string, error) {
	return r.put(ctx, exitorder.DocumentFromOrder(order), &sig, DocumentKey(order.MovementID, true))
}

func (r *DocumentRenderer) put(ctx context.Context, doc exitorder.ExitDocument, sig *exitorder.Signature, key string) (string, error) {
	raw, err := r.gen.Generate(ctx, doc, sig)
	if err != nil {
		return "", err
	}
	_, err = r.store.Put(ctx, key, bytes.NewReader(raw), storage.PutOptions{
		ContentType: contentTypePDF,
		Metadata:    map[string]string{"os": strconv.FormatInt(doc.Number, 10)},
	})
	if err != nil {
		return "", fmt.Errorf("pdf: guardar %s: %w", key, err)
	}
	return key, nil
}

func (r *DocumentRenderer) URL(ctx context.Context, ref string) (string, error) {
	return r.store.URL(ctx, ref)
}

func (r *DocumentRenderer) Open(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	info, body, err := r.store.Get(ctx, ref)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", domain.New(domain.KindNotFound, "documento no encontrado")
	}
	if err != nil {
		return nil, "", fmt.Errorf("pdf: abrir %s: %w", ref, err)
	}
	ct := info.ContentType
	if ct == "" {
		ct = contentTypePDF
	}
	return body, ct, nil
}
