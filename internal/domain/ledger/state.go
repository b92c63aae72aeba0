package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Settings ajustes persistidos junto con el estado de una tienda.
type Settings struct {
	LowStockThreshold int `json:"low_stock_threshold"`
}

// State árbol completo de una tienda (global o tenant). Se serializa como un único
// documento JSON, sin versionado de esquema.
type State struct {
	Locations map[string]*entity.Location `json:"locations"`
	Items     map[string]*entity.Item     `json:"items"`
	Orders    map[string]*entity.Order    `json:"orders"`
	Movements []*entity.StockMovement     `json:"movements"`
	Settings  Settings                    `json:"settings"`
}

// NewState devuelve un estado vacío listo para usar.
func NewState() *State {
	s := &State{}
	s.normalize()
	return s
}

// Decode reconstruye un estado desde su JSON. Un documento vacío produce un estado vacío.
func Decode(data []byte) (*State, error) {
	if len(data) == 0 {
		return NewState(), nil
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode ledger state: %w", err)
	}
	s.normalize()
	return &s, nil
}

// Encode serializa el estado completo.
func (s *State) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode ledger state: %w", err)
	}
	return data, nil
}

// normalize inicializa mapas nulos tras decodificar.
func (s *State) normalize() {
	if s.Locations == nil {
		s.Locations = map[string]*entity.Location{}
	}
	if s.Items == nil {
		s.Items = map[string]*entity.Item{}
	}
	if s.Orders == nil {
		s.Orders = map[string]*entity.Order{}
	}
	if s.Movements == nil {
		s.Movements = []*entity.StockMovement{}
	}
	for _, it := range s.Items {
		if it.Stock == nil {
			it.Stock = map[string]int{}
		}
	}
}
