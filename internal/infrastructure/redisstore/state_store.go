package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

var _ repository.StateStore = (*StateStore)(nil)

const maxTxRetries = 5

// NewClient crea el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redisstore: ping: %w", err)
	}
	return client, nil
}

// StateStore guarda el documento JSON de cada tienda en una clave string de Redis.
type StateStore struct {
	client redis.UniversalClient
	prefix string
}

// NewStateStore construye el adaptador. prefix se antepone a cada clave de tienda.
func NewStateStore(client redis.UniversalClient, prefix string) *StateStore {
	return &StateStore{client: client, prefix: prefix}
}

func (s *StateStore) key(storeKey string) string {
	return s.prefix + storeKey
}

// Load lee el documento; una clave inexistente es un estado vacío.
func (s *StateStore) Load(ctx context.Context, storeKey string) (*ledger.State, error) {
	data, err := s.client.Get(ctx, s.key(storeKey)).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redisstore: get %s: %w", storeKey, err)
	}
	return ledger.Decode(data)
}

// Update aplica fn bajo WATCH/MULTI. Si otro escritor modifica la clave entre la lectura
// y el EXEC, se reintenta con el estado nuevo; fn puede ejecutarse más de una vez.
func (s *StateStore) Update(ctx context.Context, storeKey string, fn func(*ledger.State) error) error {
	k := s.key(storeKey)
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, k).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("redisstore: get %s: %w", storeKey, err)
		}
		st, err := ledger.Decode(data)
		if err != nil {
			return err
		}
		if err := fn(st); err != nil {
			return err
		}
		enc, err := st.Encode()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, enc, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, k)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("redisstore: %s modificado concurrentemente tras %d intentos", storeKey, maxTxRetries)
}
