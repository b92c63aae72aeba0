package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StateStore = (*StateStore)(nil)

// StateStore guarda cada tienda como un blob JSON en memoria, igual que el
// almacenamiento local del navegador: un documento por clave.
type StateStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewStateStore construye un store vacío.
func NewStateStore() *StateStore {
	return &StateStore{blobs: map[string][]byte{}}
}

// Load decodifica una copia del documento; las mutaciones sobre ella no se persisten.
func (s *StateStore) Load(_ context.Context, key string) (*ledger.State, error) {
	s.mu.Lock()
	data := s.blobs[key]
	s.mu.Unlock()
	return ledger.Decode(data)
}

// Update ejecuta fn sobre una copia y solo la guarda si fn no falla.
func (s *StateStore) Update(ctx context.Context, key string, fn func(*ledger.State) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := ledger.Decode(s.blobs[key])
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	data, err := st.Encode()
	if err != nil {
		return err
	}
	s.blobs[key] = data
	return nil
}

// Raw devuelve el documento persistido de una clave (nil si no existe).
func (s *StateStore) Raw(key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blobs[key]
}
