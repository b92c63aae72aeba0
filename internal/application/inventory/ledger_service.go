package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Config política del servicio de ledger.
type Config struct {
	AllowNegativeStock bool
	// Now y NewID opcionales (tests); nil usa el reloj y UUIDs del ledger.
	Now   func() time.Time
	NewID func() string
}

// LedgerService único escritor del estado de cada tienda. Cada operación carga el
// estado del StateStore, aplica la función del ledger y persiste en la misma llamada.
type LedgerService struct {
	store repository.StateStore
	log   *logger.Logger
	cfg   Config
	mu    sync.Mutex
}

// NewLedgerService construye el servicio con el adaptador de persistencia inyectado.
func NewLedgerService(store repository.StateStore, log *logger.Logger, cfg Config) *LedgerService {
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerService{store: store, log: log, cfg: cfg}
}

func (s *LedgerService) options() []ledger.Option {
	opts := []ledger.Option{ledger.AllowNegativeStock(s.cfg.AllowNegativeStock)}
	if s.cfg.Now != nil {
		opts = append(opts, ledger.WithClock(s.cfg.Now))
	}
	if s.cfg.NewID != nil {
		opts = append(opts, ledger.WithIDGenerator(s.cfg.NewID))
	}
	return opts
}

// Mutate ejecuta fn sobre el ledger de la tienda del tenant y persiste si fn no falla.
// Las llamadas se serializan: un solo escritor por proceso.
func (s *LedgerService) Mutate(ctx context.Context, tenantID string, fn func(*ledger.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Update(ctx, repository.StoreKey(tenantID), func(st *ledger.State) error {
		return fn(ledger.New(st, s.options()...))
	})
}

// View ejecuta fn sobre una copia del estado; los cambios se descartan.
func (s *LedgerService) View(ctx context.Context, tenantID string, fn func(*ledger.Ledger) error) error {
	st, err := s.store.Load(ctx, repository.StoreKey(tenantID))
	if err != nil {
		return err
	}
	return fn(ledger.New(st, s.options()...))
}

// Logger logger con la tienda del tenant.
func (s *LedgerService) Logger(tenantID string) *logger.Logger {
	return s.log.ForStore(repository.StoreKey(tenantID))
}

// CreateLocation registra una ubicación en la tienda.
func (s *LedgerService) CreateLocation(ctx context.Context, tenantID, name, address string) (*entity.Location, error) {
	var out *entity.Location
	err := s.Mutate(ctx, tenantID, func(l *ledger.Ledger) error {
		loc, err := l.AddLocation(name, address)
		out = loc
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Logger(tenantID).Info().Str("location_id", out.ID).Str("name", out.Name).Msg("ubicación creada")
	return out, nil
}

// ListLocations lista las ubicaciones de la tienda.
func (s *LedgerService) ListLocations(ctx context.Context, tenantID string) ([]*entity.Location, error) {
	var out []*entity.Location
	err := s.View(ctx, tenantID, func(l *ledger.Ledger) error {
		out = l.Locations()
		return nil
	})
	return out, err
}

// CreateItem da de alta un artículo con stock inicial opcional por ubicación.
func (s *LedgerService) CreateItem(ctx context.Context, tenantID string, in ledger.NewItem) (*entity.Item, error) {
	var (
		out  *entity.Item
		movs []*entity.StockMovement
	)
	err := s.Mutate(ctx, tenantID, func(l *ledger.Ledger) error {
		it, m, err := l.AddItem(in)
		out, movs = it, m
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Logger(tenantID).Info().
		Str("item_id", out.ID).
		Str("sku", out.SKU).
		Int("initial_movements", len(movs)).
		Msg("artículo creado")
	return out, nil
}

// GetItem obtiene un artículo por ID.
func (s *LedgerService) GetItem(ctx context.Context, tenantID, itemID string) (*entity.Item, error) {
	var out *entity.Item
	err := s.View(ctx, tenantID, func(l *ledger.Ledger) error {
		it, err := l.Item(itemID)
		out = it
		return err
	})
	return out, err
}

// ListItems lista los artículos ordenados por SKU.
func (s *LedgerService) ListItems(ctx context.Context, tenantID string) ([]*entity.Item, error) {
	var out []*entity.Item
	err := s.View(ctx, tenantID, func(l *ledger.Ledger) error {
		out = l.Items()
		return nil
	})
	return out, err
}

// LowStock artículos con stock total <= threshold (threshold < 0 usa el de la tienda).
func (s *LedgerService) LowStock(ctx context.Context, tenantID string, threshold int) ([]*entity.Item, error) {
	var out []*entity.Item
	err := s.View(ctx, tenantID, func(l *ledger.Ledger) error {
		out = l.LowStock(threshold)
		return nil
	})
	return out, err
}

// AdjustStock ajuste aditivo crudo sin registro de movimiento.
func (s *LedgerService) AdjustStock(ctx context.Context, tenantID, itemID, locationID string, delta int) (*entity.Item, error) {
	var out *entity.Item
	err := s.Mutate(ctx, tenantID, func(l *ledger.Ledger) error {
		if err := l.UpdateStock(itemID, locationID, delta); err != nil {
			return err
		}
		it, err := l.Item(itemID)
		out = it
		return err
	})
	if err != nil {
		s.Logger(tenantID).Warn().Err(err).Str("item_id", itemID).Int("delta", delta).Msg("ajuste de stock rechazado")
		return nil, err
	}
	s.Logger(tenantID).Info().
		Str("item_id", itemID).
		Str("location_id", locationID).
		Int("delta", delta).
		Int("stock", out.StockAt(locationID)).
		Msg("stock ajustado")
	return out, nil
}

// RecordMovement registra un movimiento manual (entrada o salida).
func (s *LedgerService) RecordMovement(ctx context.Context, tenantID string, in ledger.MovementInput) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := s.Mutate(ctx, tenantID, func(l *ledger.Ledger) error {
		m, err := l.RecordMovement(in)
		out = m
		return err
	})
	if err != nil {
		s.Logger(tenantID).Warn().Err(err).Str("item_id", in.ItemID).Str("type", in.Type).Msg("movimiento rechazado")
		return nil, err
	}
	s.Logger(tenantID).Info().
		Str("movement_id", out.ID).
		Str("item_id", out.ItemID).
		Str("type", out.Type).
		Int("quantity", out.Quantity).
		Msg("movimiento registrado")
	return out, nil
}

// CancelMovement elimina un movimiento y revierte su efecto sobre el stock.
func (s *LedgerService) CancelMovement(ctx context.Context, tenantID, movementID string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := s.Mutate(ctx, tenantID, func(l *ledger.Ledger) error {
		m, err := l.CancelStockMovement(movementID)
		out = m
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Logger(tenantID).Info().
		Str("movement_id", out.ID).
		Str("item_id", out.ItemID).
		Int("reverted_delta", -out.Delta()).
		Msg("movimiento cancelado")
	return out, nil
}

// ListMovements movimientos filtrados, más reciente primero, con el total sin paginar.
func (s *LedgerService) ListMovements(ctx context.Context, tenantID string, f ledger.MovementFilter) ([]*entity.StockMovement, int, error) {
	var (
		out   []*entity.StockMovement
		total int
	)
	err := s.View(ctx, tenantID, func(l *ledger.Ledger) error {
		out, total = l.Movements(f)
		return nil
	})
	return out, total, err
}

// Settings devuelve los ajustes de la tienda.
func (s *LedgerService) Settings(ctx context.Context, tenantID string) (ledger.Settings, error) {
	var out ledger.Settings
	err := s.View(ctx, tenantID, func(l *ledger.Ledger) error {
		out = l.State().Settings
		return nil
	})
	return out, err
}

// UpdateSettings reemplaza los ajustes de la tienda.
func (s *LedgerService) UpdateSettings(ctx context.Context, tenantID string, in ledger.Settings) (ledger.Settings, error) {
	if in.LowStockThreshold < 0 {
		return ledger.Settings{}, fmt.Errorf("inventory: umbral %d: %w", in.LowStockThreshold, domain.ErrInvalidInput)
	}
	err := s.Mutate(ctx, tenantID, func(l *ledger.Ledger) error {
		l.State().Settings = in
		return nil
	})
	if err != nil {
		return ledger.Settings{}, err
	}
	s.Logger(tenantID).Info().Int("low_stock_threshold", in.LowStockThreshold).Msg("ajustes actualizados")
	return in, nil
}
