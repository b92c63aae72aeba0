// Package ledger contiene el motor de stock: niveles por artículo y ubicación más el
// registro append-only de movimientos. Funciones puras sobre *State, sin I/O.
//
// Toda mutación valida la operación completa antes de escribir, de modo que una
// llamada que falla deja el estado intacto.
package ledger

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Line una línea de carrito a reservar o liberar.
type Line struct {
	ItemID   string
	Quantity int
}

// Option configura un Ledger.
type Option func(*Ledger)

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator reemplaza la generación de IDs (tests).
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// AllowNegativeStock permite que una salida deje stock negativo.
func AllowNegativeStock(allow bool) Option {
	return func(l *Ledger) { l.allowNegative = allow }
}

// Ledger opera sobre el estado de una tienda.
type Ledger struct {
	st            *State
	allowNegative bool
	now           func() time.Time
	newID         func() string
}

// New envuelve st. Si st es nil se parte de un estado vacío.
func New(st *State, opts ...Option) *Ledger {
	if st == nil {
		st = NewState()
	}
	st.normalize()
	l := &Ledger{
		st:    st,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State devuelve el estado subyacente.
func (l *Ledger) State() *State { return l.st }

// Now reloj del ledger, compartido con los casos de uso que escriben en el mismo estado.
func (l *Ledger) Now() time.Time { return l.now() }

// NewID genera un identificador con el generador del ledger.
func (l *Ledger) NewID() string { return l.newID() }

// ── Ubicaciones y artículos ─────────────────────────────────────────────────

// AddLocation registra una ubicación.
func (l *Ledger) AddLocation(name, address string) (*entity.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("ledger: nombre de ubicación vacío: %w", domain.ErrInvalidInput)
	}
	for _, loc := range l.st.Locations {
		if strings.EqualFold(loc.Name, name) {
			return nil, fmt.Errorf("ledger: ubicación %q: %w", name, domain.ErrDuplicate)
		}
	}
	loc := &entity.Location{ID: l.newID(), Name: name, Address: address, CreatedAt: l.now()}
	l.st.Locations[loc.ID] = loc
	return loc, nil
}

// Location busca una ubicación por ID.
func (l *Ledger) Location(id string) (*entity.Location, error) {
	loc, ok := l.st.Locations[id]
	if !ok {
		return nil, fmt.Errorf("ledger: ubicación %s: %w", id, domain.ErrLocationNotFound)
	}
	return loc, nil
}

// Locations lista las ubicaciones por fecha de creación.
func (l *Ledger) Locations() []*entity.Location {
	out := make([]*entity.Location, 0, len(l.st.Locations))
	for _, loc := range l.st.Locations {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// NewItem datos para dar de alta un artículo.
type NewItem struct {
	SKU          string
	Name         string
	Price        decimal.Decimal
	InitialStock map[string]int // locationID -> cantidad inicial
}

// AddItem da de alta un artículo. El stock inicial se registra como movimientos
// "increase" con motivo ReasonInitialStock.
func (l *Ledger) AddItem(in NewItem) (*entity.Item, []*entity.StockMovement, error) {
	sku := strings.TrimSpace(in.SKU)
	name := strings.TrimSpace(in.Name)
	if sku == "" || name == "" || in.Price.IsNegative() {
		return nil, nil, fmt.Errorf("ledger: artículo sin sku/nombre o con precio negativo: %w", domain.ErrInvalidInput)
	}
	for _, it := range l.st.Items {
		if strings.EqualFold(it.SKU, sku) {
			return nil, nil, fmt.Errorf("ledger: sku %q: %w", sku, domain.ErrDuplicate)
		}
	}
	locIDs := make([]string, 0, len(in.InitialStock))
	for locID, qty := range in.InitialStock {
		if qty < 0 || qty > MaxStock {
			return nil, nil, fmt.Errorf("ledger: stock inicial fuera de rango en %s: %w", locID, domain.ErrInvalidInput)
		}
		if _, err := l.Location(locID); err != nil {
			return nil, nil, err
		}
		locIDs = append(locIDs, locID)
	}
	sort.Strings(locIDs)

	now := l.now()
	item := &entity.Item{
		ID:        l.newID(),
		SKU:       sku,
		Name:      name,
		Price:     in.Price,
		Stock:     map[string]int{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	l.st.Items[item.ID] = item

	var movs []*entity.StockMovement
	for _, locID := range locIDs {
		qty := in.InitialStock[locID]
		item.Stock[locID] = qty
		if qty == 0 {
			continue
		}
		movs = append(movs, l.appendMovement(item.ID, locID, entity.MovementTypeIncrease, qty, entity.ReasonInitialStock, "", now))
	}
	return item, movs, nil
}

// Item busca un artículo por ID.
func (l *Ledger) Item(id string) (*entity.Item, error) {
	it, ok := l.st.Items[id]
	if !ok {
		return nil, fmt.Errorf("ledger: artículo %s: %w", id, domain.ErrItemNotFound)
	}
	return it, nil
}

// Items lista los artículos ordenados por SKU.
func (l *Ledger) Items() []*entity.Item {
	out := make([]*entity.Item, 0, len(l.st.Items))
	for _, it := range l.st.Items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}

// LowStock artículos cuyo stock total es menor o igual a threshold.
// threshold < 0 usa el umbral configurado en Settings.
func (l *Ledger) LowStock(threshold int) []*entity.Item {
	if threshold < 0 {
		threshold = l.st.Settings.LowStockThreshold
	}
	var out []*entity.Item
	for _, it := range l.Items() {
		if it.TotalStock() <= threshold {
			out = append(out, it)
		}
	}
	return out
}

// ── Operaciones de stock ────────────────────────────────────────────────────

// UpdateStock ajuste aditivo crudo de stock[locationID]; no registra movimiento.
func (l *Ledger) UpdateStock(itemID, locationID string, delta int) error {
	return l.apply([]stockDelta{{itemID: itemID, locationID: locationID, qty: delta}})
}

// ReserveStock descuenta cada línea de stock[locationID] y registra un movimiento
// "decrease" por línea con motivo ReasonOrderReservation.
// No es idempotente: reservar dos veces el mismo pedido descuenta dos veces.
func (l *Ledger) ReserveStock(lines []Line, locationID, orderID string) ([]*entity.StockMovement, error) {
	return l.moveLines(lines, locationID, orderID, entity.MovementTypeDecrease, entity.ReasonOrderReservation)
}

// ReleaseStock operación espejo de ReserveStock: suma stock y registra movimientos
// "increase" con motivo ReasonOrderCancellation.
func (l *Ledger) ReleaseStock(lines []Line, locationID, orderID string) ([]*entity.StockMovement, error) {
	return l.moveLines(lines, locationID, orderID, entity.MovementTypeIncrease, entity.ReasonOrderCancellation)
}

func (l *Ledger) moveLines(lines []Line, locationID, orderID, movType, reason string) ([]*entity.StockMovement, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("ledger: sin líneas: %w", domain.ErrInvalidInput)
	}
	deltas := make([]stockDelta, 0, len(lines))
	for _, ln := range lines {
		if ln.Quantity <= 0 {
			return nil, fmt.Errorf("ledger: cantidad %d para %s: %w", ln.Quantity, ln.ItemID, domain.ErrInvalidInput)
		}
		d := stockDelta{itemID: ln.ItemID, locationID: locationID, qty: ln.Quantity}
		if movType == entity.MovementTypeDecrease {
			d.qty = -ln.Quantity
		}
		deltas = append(deltas, d)
	}
	if err := l.apply(deltas); err != nil {
		return nil, err
	}
	now := l.now()
	movs := make([]*entity.StockMovement, 0, len(lines))
	for _, ln := range lines {
		movs = append(movs, l.appendMovement(ln.ItemID, locationID, movType, ln.Quantity, reason, orderID, now))
	}
	return movs, nil
}

// MovementInput entrada del formulario manual de movimientos.
type MovementInput struct {
	ItemID     string
	LocationID string
	Type       string
	Quantity   int
	Reason     string
}

// RecordMovement aplica un movimiento manual y lo registra.
func (l *Ledger) RecordMovement(in MovementInput) (*entity.StockMovement, error) {
	if !entity.IsValidMovementType(in.Type) || in.Quantity <= 0 {
		return nil, fmt.Errorf("ledger: movimiento %s de %d: %w", in.Type, in.Quantity, domain.ErrInvalidInput)
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = "Manual " + in.Type
	}
	delta := in.Quantity
	if in.Type == entity.MovementTypeDecrease {
		delta = -in.Quantity
	}
	if err := l.UpdateStock(in.ItemID, in.LocationID, delta); err != nil {
		return nil, err
	}
	return l.appendMovement(in.ItemID, in.LocationID, in.Type, in.Quantity, reason, "", l.now()), nil
}

// CancelStockMovement elimina el movimiento y aplica el delta inverso en su ubicación.
func (l *Ledger) CancelStockMovement(movementID string) (*entity.StockMovement, error) {
	idx := -1
	for i, m := range l.st.Movements {
		if m.ID == movementID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("ledger: movimiento %s: %w", movementID, domain.ErrMovementNotFound)
	}
	mov := l.st.Movements[idx]
	if err := l.UpdateStock(mov.ItemID, mov.LocationID, -mov.Delta()); err != nil {
		return nil, err
	}
	l.st.Movements = append(l.st.Movements[:idx], l.st.Movements[idx+1:]...)
	return mov, nil
}

// MovementFilter filtros de consulta. Campos vacíos no filtran.
type MovementFilter struct {
	ItemID     string
	LocationID string
	Type       string
	OrderID    string
	Limit      int
	Offset     int
}

// Movements devuelve los movimientos que cumplen el filtro, del más reciente al más antiguo,
// y el total antes de paginar.
func (l *Ledger) Movements(f MovementFilter) ([]*entity.StockMovement, int) {
	var matched []*entity.StockMovement
	for i := len(l.st.Movements) - 1; i >= 0; i-- {
		m := l.st.Movements[i]
		if f.ItemID != "" && m.ItemID != f.ItemID {
			continue
		}
		if f.LocationID != "" && m.LocationID != f.LocationID {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.OrderID != "" && m.OrderID != f.OrderID {
			continue
		}
		matched = append(matched, m)
	}
	total := len(matched)
	if f.Offset > 0 {
		if f.Offset >= total {
			return []*entity.StockMovement{}, total
		}
		matched = matched[f.Offset:]
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, total
}

// ── internos ────────────────────────────────────────────────────────────────

type stockDelta struct {
	itemID     string
	locationID string
	qty        int
}

type stockKey struct{ itemID, locationID string }

// MaxStock cota absoluta de un nivel de stock y de cada delta; coincide con la
// columna INTEGER de la proyección en PostgreSQL.
const MaxStock = math.MaxInt32

// apply valida todos los deltas (existencia, rango ±MaxStock y política de stock
// negativo sobre el resultado acumulado) y solo entonces los escribe.
func (l *Ledger) apply(deltas []stockDelta) error {
	totals := make(map[stockKey]int, len(deltas))
	order := make([]stockKey, 0, len(deltas))
	for _, d := range deltas {
		if _, err := l.Item(d.itemID); err != nil {
			return err
		}
		if _, err := l.Location(d.locationID); err != nil {
			return err
		}
		k := stockKey{d.itemID, d.locationID}
		if _, seen := totals[k]; !seen {
			order = append(order, k)
		}
		if d.qty > MaxStock || d.qty < -MaxStock {
			return fmt.Errorf("ledger: delta %d fuera de rango: %w", d.qty, domain.ErrInvalidInput)
		}
		totals[k] += d.qty
		if totals[k] > MaxStock || totals[k] < -MaxStock {
			return fmt.Errorf("ledger: delta acumulado %d fuera de rango: %w", totals[k], domain.ErrInvalidInput)
		}
	}
	for _, k := range order {
		current := l.st.Items[k.itemID].StockAt(k.locationID)
		next := current + totals[k]
		if next > MaxStock || next < -MaxStock {
			return fmt.Errorf("ledger: stock resultante %d fuera de rango: %w", next, domain.ErrInvalidInput)
		}
		if !l.allowNegative && totals[k] < 0 && next < 0 {
			return fmt.Errorf("ledger: artículo %s en %s tiene %d, se requieren %d: %w",
				k.itemID, k.locationID, current, -totals[k], domain.ErrInsufficientStock)
		}
	}
	now := l.now()
	for _, k := range order {
		it := l.st.Items[k.itemID]
		it.Stock[k.locationID] += totals[k]
		it.UpdatedAt = now
	}
	return nil
}

func (l *Ledger) appendMovement(itemID, locationID, movType string, qty int, reason, orderID string, at time.Time) *entity.StockMovement {
	m := &entity.StockMovement{
		ID:         l.newID(),
		ItemID:     itemID,
		LocationID: locationID,
		Type:       movType,
		Quantity:   qty,
		Reason:     reason,
		OrderID:    orderID,
		Date:       at,
	}
	l.st.Movements = append(l.st.Movements, m)
	return m
}
