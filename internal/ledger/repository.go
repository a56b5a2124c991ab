package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"networth/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
    rowid_seq      INTEGER PRIMARY KEY AUTOINCREMENT,
    id             TEXT NOT NULL UNIQUE,
    symbol         TEXT NOT NULL,
    market         TEXT NOT NULL,
    direction      TEXT NOT NULL CHECK (direction IN ('BUY', 'SELL')),
    quantity       TEXT NOT NULL,
    unit_price     TEXT NOT NULL DEFAULT '0',
    effective_date TEXT NOT NULL,
    created_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_effective_date
    ON transactions (effective_date);
`

// Repository is the SQLite-backed transaction log. Quantities and
// prices are stored as decimal strings to avoid float drift.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates the repository and its schema.
func NewRepository(db *sql.DB, log zerolog.Logger) (*Repository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create transactions schema: %w", err)
	}
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "ledger").Logger(),
	}, nil
}

// All returns the full ordered log: effective date ascending, ties
// broken by insertion order. This ordering is the replay contract.
func (r *Repository) All() ([]domain.Transaction, error) {
	rows, err := r.db.Query(`
        SELECT id, symbol, market, direction, quantity, unit_price, effective_date, created_at
        FROM transactions
        ORDER BY effective_date ASC, rowid_seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var (
			tx                             domain.Transaction
			id, qty, price, effDate, crtAt string
			market, direction              string
		)
		if err := rows.Scan(&id, &tx.Symbol, &market, &direction, &qty, &price, &effDate, &crtAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		tx.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid transaction id %q: %w", id, err)
		}
		tx.Market = domain.Market(market)
		tx.Direction = domain.Direction(direction)
		if tx.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("invalid quantity %q: %w", qty, err)
		}
		if tx.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("invalid unit price %q: %w", price, err)
		}
		if tx.EffectiveDate, err = time.Parse("2006-01-02", effDate); err != nil {
			return nil, fmt.Errorf("invalid effective date %q: %w", effDate, err)
		}
		if tx.CreatedAt, err = time.Parse(time.RFC3339, crtAt); err != nil {
			return nil, fmt.Errorf("invalid created_at %q: %w", crtAt, err)
		}

		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// Add appends one transaction to the log.
func (r *Repository) Add(tx domain.Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	if !tx.Quantity.IsPositive() {
		return fmt.Errorf("transaction quantity must be positive, got %s", tx.Quantity)
	}

	_, err := r.db.Exec(`
        INSERT INTO transactions (id, symbol, market, direction, quantity, unit_price, effective_date, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID.String(),
		tx.Symbol,
		string(tx.Market),
		string(tx.Direction),
		tx.Quantity.String(),
		tx.UnitPrice.String(),
		tx.EffectiveDate.Format("2006-01-02"),
		tx.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	r.log.Debug().
		Str("id", tx.ID.String()).
		Str("symbol", tx.Symbol).
		Str("direction", string(tx.Direction)).
		Str("quantity", tx.Quantity.String()).
		Msg("Transaction recorded")

	return nil
}

// Delete removes one transaction by id.
func (r *Repository) Delete(id uuid.UUID) error {
	res, err := r.db.Exec(`DELETE FROM transactions WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s not found", id)
	}
	return nil
}
