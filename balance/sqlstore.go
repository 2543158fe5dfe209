// Copyright (c) 2025 BVK Chaitanya

package balance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc.org/sqlite registers itself as "sqlite" which sqlx doesn't know.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

const createTable = `
CREATE TABLE IF NOT EXISTS balances (
  user_id BIGINT PRIMARY KEY,
  cash DOUBLE PRECISION NOT NULL DEFAULT 1000,
  btc DOUBLE PRECISION NOT NULL DEFAULT 0,
  eth DOUBLE PRECISION NOT NULL DEFAULT 0
)`

type row struct {
	UserID int64   `db:"user_id"`
	Cash   float64 `db:"cash"`
	BTC    float64 `db:"btc"`
	ETH    float64 `db:"eth"`
}

func (r *row) balance() *Balance {
	return &Balance{
		UserID: r.UserID,
		Cash:   r.Cash,
		BTC:    r.BTC,
		ETH:    r.ETH,
	}
}

// SQLStore keeps balances in a single relational table. Both sqlite and
// postgres drivers are supported.
type SQLStore struct {
	db *sqlx.DB
}

// OpenSQLStore opens the database with the given driver ("sqlite" or
// "postgres") and creates the balances table if it doesn't exist.
func OpenSQLStore(ctx context.Context, driver, dsn string) (_ *SQLStore, status error) {
	switch driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open %s database: %w", driver, err)
	}
	defer func() {
		if status != nil {
			db.Close()
		}
	}()

	if driver == "sqlite" {
		// Single writer avoids SQLITE_BUSY errors between pooled connections.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("could not ping %s database: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("could not create balances table: %w", err)
	}
	slog.Info("opened sql balance store", "driver", driver)
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) GetOrCreate(ctx context.Context, uid int64) (*Balance, error) {
	if err := checkUserID(uid); err != nil {
		return nil, err
	}

	d := Default(uid)
	insert := s.db.Rebind(`INSERT INTO balances (user_id, cash, btc, eth) VALUES (?, ?, ?, ?) ON CONFLICT (user_id) DO NOTHING`)
	if _, err := s.db.ExecContext(ctx, insert, d.UserID, d.Cash, d.BTC, d.ETH); err != nil {
		return nil, fmt.Errorf("could not insert default balance for user %d: %w", uid, err)
	}

	var r row
	query := s.db.Rebind(`SELECT user_id, cash, btc, eth FROM balances WHERE user_id = ?`)
	if err := s.db.GetContext(ctx, &r, query, uid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("balance for user %d disappeared after insert: %w", uid, err)
		}
		return nil, fmt.Errorf("could not read balance for user %d: %w", uid, err)
	}
	return r.balance(), nil
}

func (s *SQLStore) Save(ctx context.Context, b *Balance) error {
	if err := checkUserID(b.UserID); err != nil {
		return err
	}
	if err := b.Check(); err != nil {
		return err
	}

	update := s.db.Rebind(`UPDATE balances SET cash = ?, btc = ?, eth = ? WHERE user_id = ?`)
	if _, err := s.db.ExecContext(ctx, update, b.Cash, b.BTC, b.ETH, b.UserID); err != nil {
		return fmt.Errorf("could not update balance for user %d: %w", b.UserID, err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context) ([]*Balance, error) {
	var rows []*row
	if err := s.db.SelectContext(ctx, &rows, `SELECT user_id, cash, btc, eth FROM balances ORDER BY user_id`); err != nil {
		return nil, fmt.Errorf("could not list balances: %w", err)
	}
	balances := make([]*Balance, 0, len(rows))
	for _, r := range rows {
		balances = append(balances, r.balance())
	}
	return balances, nil
}
