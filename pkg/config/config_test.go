package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	m := Default()
	if m.Accounts.Cash != "Cash" || m.Accounts.Square != "Square" || m.Accounts.Fees != "Square Fees" {
		t.Errorf("unexpected default accounts: %+v", m.Accounts)
	}
	if m.Discounts.Account != "Discount Expenses" || m.Discounts.Item != "Industry Discount" {
		t.Errorf("unexpected default discounts: %+v", m.Discounts)
	}
	if m.Names.Customer != "Market Customers" {
		t.Errorf("unexpected default customer %q", m.Names.Customer)
	}
	if m.Classes.Default != "" || m.Classes.Fees != "" {
		t.Errorf("expected empty default classes, got %+v", m.Classes)
	}
	if len(m.Items) != 0 {
		t.Errorf("default mapping should not rewrite item names")
	}
}

func TestLoadINI(t *testing.T) {
	path := writeConfig(t, "square.cfg", `[accounts]
cash=Cash Drawer
sales=Market Sales

[classes]
default=Market
fees=Overhead

[categories]
Produce=Farm
Baked Goods=Bakery

[items]
Apples=Apples (lb)
`)

	m, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Accounts.Cash != "Cash Drawer" {
		t.Errorf("expected cash account override, got %q", m.Accounts.Cash)
	}
	if m.Accounts.Square != "Square" {
		t.Errorf("expected square default to survive, got %q", m.Accounts.Square)
	}
	if m.Classes.Default != "Market" || m.Classes.Fees != "Overhead" {
		t.Errorf("unexpected classes %+v", m.Classes)
	}
	if got := m.Categories["baked goods"]; got != "Bakery" {
		t.Errorf("expected category table entry, got %q (%v)", got, m.Categories)
	}
	if len(m.Items) == 0 {
		t.Errorf("expected item table to be loaded")
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "square-bridge.yaml", `
names:
  customer: Farmers Market
sales_accounts:
  Produce: Produce Sales
tax:
  account: State Tax
`)

	m, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Names.Customer != "Farmers Market" {
		t.Errorf("unexpected customer %q", m.Names.Customer)
	}
	if m.SalesAccounts["produce"] != "Produce Sales" {
		t.Errorf("unexpected sales accounts %v", m.SalesAccounts)
	}
	if m.Tax.Account != "State Tax" || m.Tax.Item != "Sales Tax" {
		t.Errorf("unexpected tax %+v", m.Tax)
	}
}

func TestLoadRejectsLongValues(t *testing.T) {
	long := strings.Repeat("x", MaxValueLength+1)
	tests := []struct {
		name    string
		content string
		key     string
	}{
		{"scalar", "[accounts]\ncash=" + long + "\n", "accounts.cash"},
		{"table", "[categories]\nProduce=" + long + "\n", "categories.produce"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "square.cfg", tt.content), nil)
			if !errors.Is(err, ErrValueTooLong) {
				t.Fatalf("expected ErrValueTooLong, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("expected error to name %s, got %v", tt.key, err)
			}
		})
	}
}

func TestLoadAcceptsMaxLength(t *testing.T) {
	exact := strings.Repeat("y", MaxValueLength)
	m, err := Load(writeConfig(t, "square.cfg", "[names]\ncustomer="+exact+"\n"), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Names.Customer != exact {
		t.Errorf("unexpected customer %q", m.Names.Customer)
	}
}

func TestLoadEnvAndFlagOverrides(t *testing.T) {
	t.Setenv("SQUARE_BRIDGE_ACCOUNTS_CASH", "Till")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("customer", "", "")
	flags.String("default-class", "", "")
	if err := flags.Parse([]string{"--customer", "Walk-in"}); err != nil {
		t.Fatalf("flag parse failed: %v", err)
	}

	m, err := Load(writeConfig(t, "square.cfg", "[names]\ncustomer=From File\n[classes]\ndefault=Main\n"), flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Accounts.Cash != "Till" {
		t.Errorf("expected env override, got %q", m.Accounts.Cash)
	}
	if m.Names.Customer != "Walk-in" {
		t.Errorf("expected flag override, got %q", m.Names.Customer)
	}
	if m.Classes.Default != "Main" {
		t.Errorf("unchanged flag must not override file value, got %q", m.Classes.Default)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.cfg"), nil); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
