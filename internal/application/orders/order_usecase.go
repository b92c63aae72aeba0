package orders

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

// OrderUseCase crea pedidos y aplica sus transiciones de estado. Los efectos sobre el
// ledger (reserva y liberación) se escriben en la misma operación que el pedido.
type OrderUseCase struct {
	ledgers *inventory.LedgerService
}

// NewOrderUseCase construye el caso de uso sobre el servicio de ledger.
func NewOrderUseCase(ledgers *inventory.LedgerService) *OrderUseCase {
	return &OrderUseCase{ledgers: ledgers}
}

// LineInput línea solicitada del carrito.
type LineInput struct {
	ItemID   string
	Quantity int
}

// CreateOrderInput entrada para crear un pedido.
type CreateOrderInput struct {
	TenantID   string
	UserID     string
	LocationID string
	Lines      []LineInput
	Status     string // vacío = pending
}

// CreateOrder crea el pedido con sus líneas (precio unitario tomado del artículo).
// Si nace en processing, reserva stock en la misma llamada.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, in CreateOrderInput) (*entity.Order, error) {
	status := in.Status
	if status == "" {
		status = entity.OrderStatusPending
	}
	if status != entity.OrderStatusPending && status != entity.OrderStatusProcessing {
		return nil, fmt.Errorf("orders: estado inicial %q: %w", status, domain.ErrInvalidInput)
	}
	if in.LocationID == "" || len(in.Lines) == 0 {
		return nil, fmt.Errorf("orders: ubicación y líneas requeridas: %w", domain.ErrInvalidInput)
	}

	var out *entity.Order
	err := uc.ledgers.Mutate(ctx, in.TenantID, func(l *ledger.Ledger) error {
		if _, err := l.Location(in.LocationID); err != nil {
			return err
		}
		lines := make([]entity.OrderLine, 0, len(in.Lines))
		total := decimal.Zero
		for _, ln := range in.Lines {
			if ln.Quantity <= 0 {
				return fmt.Errorf("orders: cantidad %d: %w", ln.Quantity, domain.ErrInvalidInput)
			}
			it, err := l.Item(ln.ItemID)
			if err != nil {
				return err
			}
			ol := entity.OrderLine{ItemID: it.ID, Quantity: ln.Quantity, UnitPrice: it.Price}
			total = total.Add(ol.Subtotal())
			lines = append(lines, ol)
		}

		now := l.Now()
		order := &entity.Order{
			ID:         l.NewID(),
			LocationID: in.LocationID,
			Lines:      lines,
			Status:     status,
			Total:      total,
			CreatedBy:  in.UserID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if status == entity.OrderStatusProcessing {
			if _, err := l.ReserveStock(ledgerLines(order), order.LocationID, order.ID); err != nil {
				return err
			}
		}
		l.State().Orders[order.ID] = order
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.ledgers.Logger(in.TenantID).Info().
		Str("order_id", out.ID).
		Str("status", out.Status).
		Int("lines", len(out.Lines)).
		Str("total", out.Total.StringFixed(2)).
		Msg("pedido creado")
	return out, nil
}

// UpdateStatus cambia el estado del pedido.
//   - pending→processing reserva stock.
//   - processing→cancelled libera stock.
//   - el resto de cambios no tocan el ledger.
//
// completed y cancelled son terminales. Repetir el estado actual no hace nada.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, tenantID, orderID, status string) (*entity.Order, error) {
	if !entity.IsValidOrderStatus(status) {
		return nil, fmt.Errorf("orders: estado %q: %w", status, domain.ErrInvalidInput)
	}
	var (
		out    *entity.Order
		from   string
		effect string
	)
	err := uc.ledgers.Mutate(ctx, tenantID, func(l *ledger.Ledger) error {
		order, ok := l.State().Orders[orderID]
		if !ok {
			return fmt.Errorf("orders: pedido %s: %w", orderID, domain.ErrOrderNotFound)
		}
		from, effect = order.Status, ""
		if order.Status == status {
			out = order
			return nil
		}
		if entity.IsTerminalOrderStatus(order.Status) {
			return fmt.Errorf("orders: %s→%s: %w", order.Status, status, domain.ErrInvalidTransition)
		}

		switch {
		case order.Status == entity.OrderStatusPending && status == entity.OrderStatusProcessing:
			if _, err := l.ReserveStock(ledgerLines(order), order.LocationID, order.ID); err != nil {
				return err
			}
			effect = "reserve"
		case order.Status == entity.OrderStatusProcessing && status == entity.OrderStatusCancelled:
			if _, err := l.ReleaseStock(ledgerLines(order), order.LocationID, order.ID); err != nil {
				return err
			}
			effect = "release"
		}

		order.Status = status
		order.UpdatedAt = l.Now()
		out = order
		return nil
	})
	if err != nil {
		uc.ledgers.Logger(tenantID).Warn().Err(err).Str("order_id", orderID).Str("to", status).Msg("transición rechazada")
		return nil, err
	}
	uc.ledgers.Logger(tenantID).Info().
		Str("order_id", orderID).
		Str("from", from).
		Str("to", status).
		Str("ledger_effect", effect).
		Msg("estado de pedido actualizado")
	return out, nil
}

// GetOrder obtiene un pedido por ID.
func (uc *OrderUseCase) GetOrder(ctx context.Context, tenantID, orderID string) (*entity.Order, error) {
	var out *entity.Order
	err := uc.ledgers.View(ctx, tenantID, func(l *ledger.Ledger) error {
		order, ok := l.State().Orders[orderID]
		if !ok {
			return fmt.Errorf("orders: pedido %s: %w", orderID, domain.ErrOrderNotFound)
		}
		out = order
		return nil
	})
	return out, err
}

// ListOrders lista pedidos, más reciente primero; status vacío no filtra.
func (uc *OrderUseCase) ListOrders(ctx context.Context, tenantID, status string) ([]*entity.Order, error) {
	if status != "" && !entity.IsValidOrderStatus(status) {
		return nil, fmt.Errorf("orders: estado %q: %w", status, domain.ErrInvalidInput)
	}
	var out []*entity.Order
	err := uc.ledgers.View(ctx, tenantID, func(l *ledger.Ledger) error {
		for _, o := range l.State().Orders {
			if status == "" || o.Status == status {
				out = append(out, o)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func ledgerLines(o *entity.Order) []ledger.Line {
	lines := make([]ledger.Line, 0, len(o.Lines))
	for _, ln := range o.Lines {
		lines = append(lines, ledger.Line{ItemID: ln.ItemID, Quantity: ln.Quantity})
	}
	return lines
}
