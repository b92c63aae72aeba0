package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StateStore = (*StateStore)(nil)

// StateStore implementación de StateStore sobre PostgreSQL. El documento vive en
// ledger_states; ledger_item_stock es una proyección de solo lectura para reportes.
type StateStore struct {
	pool *pgxpool.Pool
	tx   *TxRunner
}

// NewStateStore construye el adaptador con el pool.
func NewStateStore(pool *pgxpool.Pool) *StateStore {
	return &StateStore{pool: pool, tx: NewTxRunner(pool)}
}

// Load lee el documento de la tienda.
func (s *StateStore) Load(ctx context.Context, key string) (*ledger.State, error) {
	return loadState(ctx, s.pool, key, false)
}

// Update bloquea la fila de la tienda (SELECT FOR UPDATE), ejecuta fn y guarda documento
// y proyección en la misma transacción; cualquier error hace Rollback.
func (s *StateStore) Update(ctx context.Context, key string, fn func(*ledger.State) error) error {
	return s.tx.Run(ctx, func(tx pgx.Tx) error {
		// Garantiza que exista la fila a bloquear aunque la tienda sea nueva.
		if _, err := tx.Exec(ctx, `
			INSERT INTO ledger_states (store_key, payload) VALUES ($1, '{}'::jsonb)
			ON CONFLICT (store_key) DO NOTHING`, key); err != nil {
			return fmt.Errorf("init state row: %w", err)
		}

		st, err := loadState(ctx, tx, key, true)
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
		if _, err := tx.Exec(ctx, `
			UPDATE ledger_states SET payload = $2, updated_at = now() WHERE store_key = $1`,
			key, data); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
		return writeStockProjection(ctx, tx, key, st)
	})
}

func loadState(ctx context.Context, q Querier, key string, forUpdate bool) (*ledger.State, error) {
	query := `SELECT payload FROM ledger_states WHERE store_key = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var data []byte
	err := q.QueryRow(ctx, query, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.NewState(), nil
		}
		return nil, fmt.Errorf("get state: %w", err)
	}
	return ledger.Decode(data)
}

// writeStockProjection reescribe las filas de stock de la tienda con COPY.
func writeStockProjection(ctx context.Context, q Querier, key string, st *ledger.State) error {
	if _, err := q.Exec(ctx, `DELETE FROM ledger_item_stock WHERE store_key = $1`, key); err != nil {
		return fmt.Errorf("clear stock projection: %w", err)
	}
	rows := stockRows(key, st)
	if len(rows) == 0 {
		return nil
	}
	_, err := q.CopyFrom(ctx,
		pgx.Identifier{"ledger_item_stock"},
		[]string{"store_key", "item_id", "sku", "location_id", "quantity", "price"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy stock projection: %w", err)
	}
	return nil
}

// stockRows filas de la proyección en orden determinista (item, ubicación).
func stockRows(key string, st *ledger.State) [][]any {
	itemIDs := make([]string, 0, len(st.Items))
	for id := range st.Items {
		itemIDs = append(itemIDs, id)
	}
	sort.Strings(itemIDs)

	var rows [][]any
	for _, id := range itemIDs {
		it := st.Items[id]
		locIDs := make([]string, 0, len(it.Stock))
		for loc := range it.Stock {
			locIDs = append(locIDs, loc)
		}
		sort.Strings(locIDs)
		for _, loc := range locIDs {
			rows = append(rows, []any{key, it.ID, it.SKU, loc, it.Stock[loc], it.Price})
		}
	}
	return rows
}
