package export

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/overhacked/square-bridge/pkg/mapping"
	"github.com/overhacked/square-bridge/pkg/models"
)

// Source is the read side of the staging store.
type Source interface {
	Sales() ([]*models.Transaction, error)
	Fees() ([]*models.Transaction, error)
	GroupedLines(key models.Key) ([]models.GroupedLine, error)
	Catalog() ([]models.CatalogItem, error)
	Duplicates() []models.Key
}

// Batch is everything one run converts, in output order.
type Batch struct {
	Catalog []CatalogEntry
	Entries []Entry
	Fees    []Entry
	Skipped []Skip
}

type Writer struct {
	logger   *log.Logger
	resolver *mapping.Resolver
	backend  Backend
}

func NewWriter(logger *log.Logger, resolver *mapping.Resolver, backend Backend) *Writer {
	return &Writer{
		logger:   logger,
		resolver: resolver,
		backend:  backend,
	}
}

// Write builds the batch from src and renders it to out.
func (w *Writer) Write(src Source, out *Outputs) (*Batch, error) {
	batch, err := w.Build(src)
	if err != nil {
		return nil, err
	}
	if err := w.Render(batch, out); err != nil {
		return batch, err
	}
	return batch, nil
}

// Build converts every staged sale and fee into entries. A transaction that
// cannot be converted is logged and recorded in Skipped; only failures to
// query src are returned. Sales and fees on a duplicated join key are always
// skipped since their items cannot be told apart.
func (w *Writer) Build(src Source) (*Batch, error) {
	batch := &Batch{}

	if w.resolver.RewritesItems() {
		items, err := src.Catalog()
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			batch.Catalog = append(batch.Catalog, w.catalogEntry(it))
		}
		w.logger.Debug("built item catalog", "items", len(batch.Catalog))
	}

	dups := make(map[models.Key]bool)
	for _, k := range src.Duplicates() {
		dups[k] = true
	}

	sales, err := src.Sales()
	if err != nil {
		return nil, err
	}
	for _, t := range sales {
		if dups[t.Key()] {
			w.logger.Warn("duplicate join key, skipping", "payment_id", t.PaymentID, "date", t.Key().Date, "time", t.Time)
			batch.Skipped = append(batch.Skipped, skip(t, "duplicate join key"))
			continue
		}
		if !t.Kind.Known() {
			w.logger.Warn("unknown transaction type, skipping", "payment_id", t.PaymentID, "type", t.Kind, "line", t.Line)
			batch.Skipped = append(batch.Skipped, skip(t, fmt.Sprintf("unknown transaction type %q", t.Kind)))
			continue
		}

		lines, err := src.GroupedLines(t.Key())
		if err != nil {
			w.logger.Warn("failed to group items, skipping", "payment_id", t.PaymentID, "err", err)
			batch.Skipped = append(batch.Skipped, skip(t, err.Error()))
			continue
		}
		if len(lines) == 0 {
			w.logger.Warn("transaction has no items", "payment_id", t.PaymentID, "date", t.Key().Date, "time", t.Time)
		}
		batch.Entries = append(batch.Entries, w.entry(t, lines))
	}

	fees, err := src.Fees()
	if err != nil {
		return nil, err
	}
	for _, t := range fees {
		if dups[t.Key()] {
			w.logger.Warn("duplicate join key, skipping fee", "payment_id", t.PaymentID, "fee", t.Fee)
			batch.Skipped = append(batch.Skipped, skip(t, "duplicate join key, fee not posted"))
			continue
		}
		batch.Fees = append(batch.Fees, w.feeEntry(t))
	}

	w.logger.Info("built entries", "entries", len(batch.Entries), "fees", len(batch.Fees), "skipped", len(batch.Skipped))
	return batch, nil
}

func skip(t *models.Transaction, reason string) Skip {
	return Skip{Key: t.Key(), Kind: t.Kind, Line: t.Line, Reason: reason}
}

// entry builds the ledger entry for a payment or refund. With s = +1 for a
// payment and -1 for a refund the header carries s*total and every split is
// negated by s, so the entry balances when the export's total covers its
// items, discounts, tax and tip.
func (w *Writer) entry(t *models.Transaction, lines []models.GroupedLine) Entry {
	m := w.resolver.Mapping()
	s := t.Kind.Sign()
	neg := s.Neg()

	kind := EntrySale
	if t.Kind == models.KindRefund {
		kind = EntryRefund
	}

	e := Entry{
		Kind:   kind,
		Key:    t.Key(),
		Date:   t.Date,
		DocNum: t.PaymentID,
		Route:  w.backend.Route(kind, t.IsCard()),
	}

	till := m.Accounts.Cash
	e.PaymentMethod = m.Payments.Cash
	e.Memo = t.PaymentID
	if t.IsCard() {
		till = m.Accounts.Square
		e.PaymentMethod = m.Payments.Square
		e.Memo = strings.TrimSpace(t.CardBrand + " " + t.CardNumber)
	}
	if kind == EntryRefund {
		e.Memo = "Refund " + e.Memo
	}

	e.Header = Line{
		Kind:    LineHeader,
		Account: till,
		Name:    m.Names.Customer,
		Class:   m.Classes.Default,
		Memo:    e.Memo,
		Amount:  t.Total.Mul(s),
	}

	for _, g := range lines {
		class := w.resolver.Class(g.Category)
		name := w.resolver.ItemName(g.Name)

		e.Splits = append(e.Splits, Line{
			Kind:     LineItem,
			Account:  w.resolver.SalesAccount(g.Category),
			Class:    class,
			Item:     name,
			Memo:     g.Category,
			Quantity: g.Quantity.Mul(neg),
			Price:    g.Price,
			Amount:   g.Amount().Mul(neg),
			Taxable:  !g.Tax.IsZero(),
		})

		if !g.Discount.IsZero() {
			e.Splits = append(e.Splits, Line{
				Kind:    LineDiscount,
				Account: m.Discounts.Account,
				Class:   class,
				Item:    m.Discounts.Item,
				Memo:    name,
				Amount:  g.Discount.Mul(neg),
			})
		}
	}

	if !t.Tax.IsZero() {
		e.Splits = append(e.Splits, Line{
			Kind:    LineTax,
			Account: m.Tax.Account,
			Name:    m.Tax.Vendor,
			Class:   m.Classes.Default,
			Item:    m.Tax.Item,
			Rate:    TaxRate(t.Tax, t.Total),
			Amount:  t.Tax.Mul(neg),
		})
	}

	if !t.Tip.IsZero() {
		e.Splits = append(e.Splits, Line{
			Kind:    LineTip,
			Account: m.Tips.Account,
			Name:    m.Tips.Vendor,
			Class:   m.Classes.Default,
			Item:    m.Tips.Item,
			Amount:  t.Tip.Mul(neg),
		})
	}

	return e
}

// feeEntry moves the processing fee out of the card clearing account into
// the fees account, dated to the original transaction.
func (w *Writer) feeEntry(t *models.Transaction) Entry {
	m := w.resolver.Mapping()
	memo := "Fee " + t.PaymentID
	// Square exports fees as negatives, so a usual fee credits clearing and debits fees.
	clearing := t.Fee

	return Entry{
		Kind:   EntryFee,
		Key:    t.Key(),
		Date:   t.Date,
		DocNum: t.PaymentID,
		Memo:   memo,
		Route:  w.backend.Route(EntryFee, t.IsCard()),
		Header: Line{
			Kind:    LineHeader,
			Account: m.Accounts.Square,
			Name:    m.Names.Square,
			Class:   m.Classes.Fees,
			Memo:    memo,
			Amount:  clearing,
		},
		Splits: []Line{{
			Kind:    LineFee,
			Account: m.Accounts.Fees,
			Name:    m.Names.Square,
			Class:   m.Classes.Fees,
			Memo:    memo,
			Amount:  clearing.Neg(),
		}},
	}
}

func (w *Writer) catalogEntry(it models.CatalogItem) CatalogEntry {
	return CatalogEntry{
		Name:        w.resolver.ItemName(it.Name),
		Description: it.Name,
		Category:    it.Category,
		Account:     w.resolver.SalesAccount(it.Category),
		Price:       it.MaxPrice,
		Taxable:     it.Taxable,
	}
}

var hundred = decimal.NewFromInt(100)

// TaxRate is |tax / total| * 100, or zero for a zero total.
func TaxRate(tax, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return tax.Div(total).Abs().Mul(hundred)
}

// Render writes the batch through the backend: the item catalog first, then
// the entries, then the fee entries.
func (w *Writer) Render(batch *Batch, out *Outputs) error {
	if len(batch.Catalog) > 0 {
		stream := w.backend.Route(EntryCatalog, false)
		if stream == "" {
			w.logger.Warn("format has no item catalog, skipping", "format", w.backend.Name(), "items", len(batch.Catalog))
		} else {
			dst, err := out.Writer(stream, w.backend.Preamble(stream))
			if err != nil {
				return err
			}
			for i := range batch.Catalog {
				if err := w.backend.CatalogItem(dst, &batch.Catalog[i]); err != nil {
					return fmt.Errorf("failed to write item %q: %w", batch.Catalog[i].Name, err)
				}
			}
		}
	}

	for i := range batch.Entries {
		if err := w.render(out, &batch.Entries[i]); err != nil {
			return err
		}
	}
	for i := range batch.Fees {
		if err := w.render(out, &batch.Fees[i]); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) render(out *Outputs, e *Entry) error {
	dst, err := out.Writer(e.Route, w.backend.Preamble(e.Route))
	if err != nil {
		return err
	}
	if err := w.backend.Header(dst, e); err != nil {
		return fmt.Errorf("failed to write %s entry %s: %w", e.Kind, e.DocNum, err)
	}
	for i := range e.Splits {
		if err := w.backend.Split(dst, e, &e.Splits[i]); err != nil {
			return fmt.Errorf("failed to write %s entry %s: %w", e.Kind, e.DocNum, err)
		}
	}
	if err := w.backend.Footer(dst, e); err != nil {
		return fmt.Errorf("failed to write %s entry %s: %w", e.Kind, e.DocNum, err)
	}
	return nil
}
