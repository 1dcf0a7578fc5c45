// Package storage guarda los documentos generados (PDF de órdenes de salida)
// detrás de una interfaz única con backends de disco, S3 y memoria.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/pkg/config"
)

// Driver identifica el backend concreto.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverMemory     Driver = "memory"
)

// PutOptions parámetros opcionales de Put.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Info describe un objeto almacenado.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
}

// Store abstracción mínima tipo S3. Put sobrescribe si la clave ya existe.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// URL devuelve una dirección con la que el cliente puede descargar el objeto.
	URL(ctx context.Context, key string) (string, error)
	Driver() Driver
}

// ErrNotFound se devuelve cuando la clave no existe.
var ErrNotFound = errors.New("storage: objeto no encontrado")

// Open construye el Store según la configuración.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch Driver(cfg.Driver) {
	case DriverFilesystem, "":
		return NewFilesystem(cfg.Root, cfg.PublicPrefix)
	case DriverS3:
		return NewS3(ctx, S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			PathStyle:       cfg.S3PathStyle,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
		})
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("storage: driver desconocido %q", cfg.Driver)
	}
}

// sanitizeKey impide salir de la raíz con rutas absolutas o "..".
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("storage: clave vacía")
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("storage: clave inválida %q", key)
	}
	return path.Clean(key), nil
}

func cloneMD(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
