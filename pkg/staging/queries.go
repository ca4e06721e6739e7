package staging

import (
	"fmt"

	"github.com/overhacked/square-bridge/pkg/models"
)

const transactionColumns = `id, payment_id, date, time, kind, sale, discount, tax, tip, total, fee, net,
	card_brand, card_number, description, line`

// Sales returns every transaction with a nonzero sale amount in date order.
func (s *Store) Sales() ([]*models.Transaction, error) {
	return s.transactions(`SELECT ` + transactionColumns + ` FROM transactions
		WHERE sale <> 0 ORDER BY date, time, id`)
}

// Fees returns every transaction with a nonzero processing fee.
func (s *Store) Fees() ([]*models.Transaction, error) {
	return s.transactions(`SELECT ` + transactionColumns + ` FROM transactions
		WHERE fee <> 0 ORDER BY date, time, id`)
}

func (s *Store) transactions(q string) ([]*models.Transaction, error) {
	var rows []transactionRow
	if err := s.db.Select(&rows, q); err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}

	txns := make([]*models.Transaction, 0, len(rows))
	for _, r := range rows {
		t, err := r.model()
		if err != nil {
			return nil, fmt.Errorf("staged transaction %s has a bad date: %w", r.PaymentID, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// GroupedLines aggregates the item rows joined to key by category, item name
// and price, in the order each group first appeared in the export.
func (s *Store) GroupedLines(key models.Key) ([]models.GroupedLine, error) {
	const q = `
		SELECT category, name, price, COUNT(*) AS row_count,
			SUM(discount) AS discount, SUM(tax) AS tax
		FROM items
		WHERE payment_id = ? AND date = ? AND time = ?
		GROUP BY category, name, price
		ORDER BY MIN(id)`

	var rows []groupRow
	if err := s.db.Select(&rows, q, key.PaymentID, key.Date, key.Time); err != nil {
		return nil, fmt.Errorf("failed to group items for %s: %w", key.PaymentID, err)
	}

	lines := make([]models.GroupedLine, 0, len(rows))
	for _, r := range rows {
		qty, unit := models.InferQuantity(r.Rows, fromScaled(r.Price))
		lines = append(lines, models.GroupedLine{
			Category: r.Category,
			Name:     r.Name,
			Quantity: qty,
			Price:    unit,
			Discount: fromScaled(r.Discount),
			Tax:      fromScaled(r.Tax),
			Rows:     r.Rows,
		})
	}
	return lines, nil
}

// Catalog returns one entry per distinct category and item name with the
// highest price observed and whether tax was ever charged on it.
func (s *Store) Catalog() ([]models.CatalogItem, error) {
	const q = `
		SELECT category, name, MAX(price) AS max_price,
			MAX(CASE WHEN tax <> 0 THEN 1 ELSE 0 END) AS taxable
		FROM items
		GROUP BY category, name
		ORDER BY MIN(id)`

	var rows []catalogRow
	if err := s.db.Select(&rows, q); err != nil {
		return nil, fmt.Errorf("failed to query item catalog: %w", err)
	}

	catalog := make([]models.CatalogItem, 0, len(rows))
	for _, r := range rows {
		_, unit := models.InferQuantity(1, fromScaled(r.MaxPrice))
		catalog = append(catalog, models.CatalogItem{
			Category: r.Category,
			Name:     r.Name,
			MaxPrice: unit,
			Taxable:  r.Taxable != 0,
		})
	}
	return catalog, nil
}

// Orphans counts item rows whose join key matches no staged transaction.
func (s *Store) Orphans() (int, error) {
	const q = `
		SELECT COUNT(*) FROM items i
		LEFT JOIN transactions t
			ON t.payment_id = i.payment_id AND t.date = i.date AND t.time = i.time
		WHERE t.id IS NULL`

	var n int
	if err := s.db.Get(&n, q); err != nil {
		return 0, fmt.Errorf("failed to count orphan items: %w", err)
	}
	return n, nil
}
