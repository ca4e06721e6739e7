package staging

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/overhacked/square-bridge/pkg/models"
)

const schema = `
CREATE TABLE transactions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	payment_id  TEXT    NOT NULL,
	date        TEXT    NOT NULL,
	time        TEXT    NOT NULL,
	kind        TEXT    NOT NULL,
	sale        INTEGER NOT NULL DEFAULT 0,
	discount    INTEGER NOT NULL DEFAULT 0,
	tax         INTEGER NOT NULL DEFAULT 0,
	tip         INTEGER NOT NULL DEFAULT 0,
	total       INTEGER NOT NULL DEFAULT 0,
	fee         INTEGER NOT NULL DEFAULT 0,
	net         INTEGER NOT NULL DEFAULT 0,
	card_brand  TEXT    NOT NULL DEFAULT '',
	card_number TEXT    NOT NULL DEFAULT '',
	description TEXT    NOT NULL DEFAULT '',
	line        INTEGER NOT NULL DEFAULT 0
);
CREATE UNIQUE INDEX transactions_key ON transactions (payment_id, date, time);

CREATE TABLE items (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	payment_id  TEXT    NOT NULL,
	date        TEXT    NOT NULL,
	time        TEXT    NOT NULL,
	category    TEXT    NOT NULL DEFAULT '',
	name        TEXT    NOT NULL DEFAULT '',
	price       INTEGER NOT NULL DEFAULT 0,
	discount    INTEGER NOT NULL DEFAULT 0,
	tax         INTEGER NOT NULL DEFAULT 0,
	line        INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX items_key ON items (payment_id, date, time);
`

// Amounts are staged as integers scaled by 10^scale so SUM stays exact.
const scale = 4

func toScaled(d decimal.Decimal) int64 {
	return d.Shift(scale).Round(0).IntPart()
}

func fromScaled(n int64) decimal.Decimal {
	return decimal.New(n, -scale)
}

type transactionRow struct {
	ID          int64  `db:"id"`
	PaymentID   string `db:"payment_id"`
	Date        string `db:"date"`
	Time        string `db:"time"`
	Kind        string `db:"kind"`
	Sale        int64  `db:"sale"`
	Discount    int64  `db:"discount"`
	Tax         int64  `db:"tax"`
	Tip         int64  `db:"tip"`
	Total       int64  `db:"total"`
	Fee         int64  `db:"fee"`
	Net         int64  `db:"net"`
	CardBrand   string `db:"card_brand"`
	CardNumber  string `db:"card_number"`
	Description string `db:"description"`
	Line        int    `db:"line"`
}

func newTransactionRow(t *models.Transaction) transactionRow {
	return transactionRow{
		PaymentID:   t.PaymentID,
		Date:        t.Date.Format(models.DateLayout),
		Time:        t.Time,
		Kind:        string(t.Kind),
		Sale:        toScaled(t.Sale),
		Discount:    toScaled(t.Discount),
		Tax:         toScaled(t.Tax),
		Tip:         toScaled(t.Tip),
		Total:       toScaled(t.Total),
		Fee:         toScaled(t.Fee),
		Net:         toScaled(t.Net),
		CardBrand:   t.CardBrand,
		CardNumber:  t.CardNumber,
		Description: t.Description,
		Line:        t.Line,
	}
}

func (r transactionRow) model() (*models.Transaction, error) {
	date, err := time.Parse(models.DateLayout, r.Date)
	if err != nil {
		return nil, err
	}
	return &models.Transaction{
		Date:        date,
		Time:        r.Time,
		Kind:        models.Kind(r.Kind),
		Sale:        fromScaled(r.Sale),
		Discount:    fromScaled(r.Discount),
		Tax:         fromScaled(r.Tax),
		Tip:         fromScaled(r.Tip),
		Total:       fromScaled(r.Total),
		Fee:         fromScaled(r.Fee),
		Net:         fromScaled(r.Net),
		CardBrand:   r.CardBrand,
		CardNumber:  r.CardNumber,
		PaymentID:   r.PaymentID,
		Description: r.Description,
		Line:        r.Line,
	}, nil
}

type itemRow struct {
	PaymentID string `db:"payment_id"`
	Date      string `db:"date"`
	Time      string `db:"time"`
	Category  string `db:"category"`
	Name      string `db:"name"`
	Price     int64  `db:"price"`
	Discount  int64  `db:"discount"`
	Tax       int64  `db:"tax"`
	Line      int    `db:"line"`
}

func newItemRow(i *models.Item) itemRow {
	return itemRow{
		PaymentID: i.PaymentID,
		Date:      i.Date.Format(models.DateLayout),
		Time:      i.Time,
		Category:  i.Category,
		Name:      i.Name,
		Price:     toScaled(i.Price),
		Discount:  toScaled(i.Discount),
		Tax:       toScaled(i.Tax),
		Line:      i.Line,
	}
}

type groupRow struct {
	Category string `db:"category"`
	Name     string `db:"name"`
	Price    int64  `db:"price"`
	Rows     int    `db:"row_count"`
	Discount int64  `db:"discount"`
	Tax      int64  `db:"tax"`
}

type catalogRow struct {
	Category string `db:"category"`
	Name     string `db:"name"`
	MaxPrice int64  `db:"max_price"`
	Taxable  int    `db:"taxable"`
}
