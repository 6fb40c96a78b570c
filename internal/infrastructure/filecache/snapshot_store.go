// Package filecache persiste la instantánea de clientes sin compra en un archivo JSON local.
package filecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jhoicas/ecommerce-metrics/internal/domain"
	"github.com/jhoicas/ecommerce-metrics/internal/domain/entity"
	"github.com/jhoicas/ecommerce-metrics/internal/domain/repository"
)

var _ repository.SnapshotRepository = (*SnapshotStore)(nil)

// SnapshotStore archivo {updatedAt, data}. Cada Save lo reemplaza por completo:
// se escribe un temporal en el mismo directorio y se renombra.
// Entre procesos distintos gana el último en escribir.
type SnapshotStore struct {
	path string
	mu   sync.Mutex
}

// NewSnapshotStore construye el store sobre la ruta dada.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Path ruta del archivo.
func (s *SnapshotStore) Path() string { return s.path }

// Save crea el directorio si falta y reemplaza el archivo.
func (s *SnapshotStore) Save(_ context.Context, snapshot entity.TargetCustomerSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot.Data == nil {
		snapshot.Data = []entity.TargetCustomer{}
	}
	raw, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("filecache: serializar: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("filecache: crear directorio: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("filecache: crear temporal: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op después del rename

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("filecache: escribir: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filecache: cerrar temporal: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("filecache: reemplazar archivo: %w", err)
	}
	return nil
}

// Load lee el archivo. Si no existe devuelve domain.ErrCacheNotGenerated.
func (s *SnapshotStore) Load(_ context.Context) (*entity.TargetCustomerSnapshot, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrCacheNotGenerated
		}
		return nil, fmt.Errorf("filecache: leer: %w", err)
	}

	var snapshot entity.TargetCustomerSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("filecache: archivo inválido: %w", err)
	}
	return &snapshot, nil
}
