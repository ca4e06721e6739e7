// Package staging holds one run's transactions and item rows in an in-memory
// SQLite database and answers the grouped queries the ledger writer needs.
// A Store is filled once by New and is read-only afterwards.
package staging

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/overhacked/square-bridge/pkg/models"
)

// ErrDuplicateKey marks a transaction whose join key was already staged.
var ErrDuplicateKey = errors.New("duplicate transaction key")

type Store struct {
	db         *sqlx.DB
	logger     *log.Logger
	duplicates []models.Key
}

// New stages txns and items in a fresh in-memory database. When two
// transactions share a join key only the first one is staged and the key is
// reported through Duplicates. The items of every colliding row are still
// staged under that key.
func New(logger *log.Logger, txns []*models.Transaction, items []*models.Item) (*Store, error) {
	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open staging database: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply staging schema: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.load(txns, items); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load(txns []*models.Transaction, items []*models.Item) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin staging: %w", err)
	}
	defer tx.Rollback()

	dropped := 0
	seen := make(map[models.Key]bool)
	for _, t := range txns {
		err := insertTransaction(tx, newTransactionRow(t))
		if errors.Is(err, ErrDuplicateKey) {
			s.logger.Warn("duplicate transaction key",
				"payment_id", t.PaymentID, "date", t.Date.Format(models.DateLayout), "time", t.Time, "line", t.Line)
			dropped++
			if k := t.Key(); !seen[k] {
				seen[k] = true
				s.duplicates = append(s.duplicates, k)
			}
			continue
		}
		if err != nil {
			return err
		}
	}

	for _, it := range items {
		if err := insertItem(tx, newItemRow(it)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit staging: %w", err)
	}
	s.logger.Info("staged export", "transactions", len(txns)-dropped, "items", len(items), "duplicates", len(s.duplicates))
	return nil
}

func insertTransaction(tx *sqlx.Tx, row transactionRow) error {
	const q = `
		INSERT INTO transactions (
			payment_id, date, time, kind, sale, discount, tax, tip, total, fee, net,
			card_brand, card_number, description, line
		) VALUES (
			:payment_id, :date, :time, :kind, :sale, :discount, :tax, :tip, :total, :fee, :net,
			:card_brand, :card_number, :description, :line
		)
		ON CONFLICT(payment_id, date, time) DO NOTHING`
	res, err := tx.NamedExec(q, row)
	if err != nil {
		return fmt.Errorf("failed to stage transaction %s (line %d): %w", row.PaymentID, row.Line, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to stage transaction %s (line %d): %w", row.PaymentID, row.Line, err)
	}
	if n == 0 {
		return ErrDuplicateKey
	}
	return nil
}

func insertItem(tx *sqlx.Tx, row itemRow) error {
	const q = `
		INSERT INTO items (payment_id, date, time, category, name, price, discount, tax, line)
		VALUES (:payment_id, :date, :time, :category, :name, :price, :discount, :tax, :line)`
	if _, err := tx.NamedExec(q, row); err != nil {
		return fmt.Errorf("failed to stage item %q (line %d): %w", row.Name, row.Line, err)
	}
	return nil
}

// Duplicates returns each join key shared by more than one transaction, once,
// in input order.
func (s *Store) Duplicates() []models.Key {
	return s.duplicates
}

func (s *Store) Close() error {
	return s.db.Close()
}
