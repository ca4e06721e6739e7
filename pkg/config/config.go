package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// MaxValueLength is the longest name the ledger formats accept.
const MaxValueLength = 30

// ErrValueTooLong is returned by Load when a configured name exceeds MaxValueLength.
var ErrValueTooLong = errors.New("config value too long")

const envPrefix = "SQUARE_BRIDGE"

type Accounts struct {
	Cash   string `yaml:"cash"`
	Square string `yaml:"square"`
	Sales  string `yaml:"sales"`
	Fees   string `yaml:"fees"`
}

type Discounts struct {
	Account string `yaml:"account"`
	Item    string `yaml:"item"`
}

type Names struct {
	Square   string `yaml:"square"`
	Customer string `yaml:"customer"`
}

type Payments struct {
	Square string `yaml:"square"`
	Cash   string `yaml:"cash"`
}

type Classes struct {
	Default string `yaml:"default"`
	Fees    string `yaml:"fees"`
}

// Liability describes where collected tax or tips are booked.
type Liability struct {
	Account string `yaml:"account"`
	Vendor  string `yaml:"vendor"`
	Item    string `yaml:"item"`
}

// Mapping is the account, class and name configuration for one conversion
// run. It is built once by Load and only read afterwards.
type Mapping struct {
	Accounts      Accounts          `yaml:"accounts"`
	Discounts     Discounts         `yaml:"discounts"`
	Names         Names             `yaml:"names"`
	Payments      Payments          `yaml:"payments"`
	Classes       Classes           `yaml:"classes"`
	Tax           Liability         `yaml:"tax"`
	Tips          Liability         `yaml:"tips"`
	Categories    map[string]string `yaml:"categories,omitempty"`
	SalesAccounts map[string]string `yaml:"sales_accounts,omitempty"`
	Items         map[string]string `yaml:"items,omitempty"`
}

var defaults = map[string]string{
	"accounts.cash":     "Cash",
	"accounts.square":   "Square",
	"accounts.sales":    "Sales",
	"accounts.fees":     "Square Fees",
	"discounts.account": "Discount Expenses",
	"discounts.item":    "Industry Discount",
	"names.square":      "Square",
	"names.customer":    "Market Customers",
	"payments.square":   "Square",
	"payments.cash":     "Cash",
	"classes.default":   "",
	"classes.fees":      "",
	"tax.account":       "Sales Tax Payable",
	"tax.vendor":        "Sales Tax Agency",
	"tax.item":          "Sales Tax",
	"tips.account":      "Tips Payable",
	"tips.vendor":       "Square",
	"tips.item":         "Tips",
}

// flagKeys lists the command-line flags that override configuration keys.
var flagKeys = map[string]string{
	"customer":      "names.customer",
	"default-class": "classes.default",
	"fee-class":     "classes.fees",
}

// Default returns the built-in mapping used when no configuration file exists.
func Default() *Mapping {
	m, _ := build(newViper())
	return m
}

// Load reads the mapping from path, environment and flags. An empty path
// looks for square-bridge.{yaml,toml,cfg} in the working directory and falls
// back to the defaults when none exists. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Mapping, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if strings.EqualFold(filepath.Ext(path), ".cfg") {
			v.SetConfigType("ini")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("square-bridge")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	return build(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func build(v *viper.Viper) (*Mapping, error) {
	m := &Mapping{
		Accounts: Accounts{
			Cash:   v.GetString("accounts.cash"),
			Square: v.GetString("accounts.square"),
			Sales:  v.GetString("accounts.sales"),
			Fees:   v.GetString("accounts.fees"),
		},
		Discounts: Discounts{
			Account: v.GetString("discounts.account"),
			Item:    v.GetString("discounts.item"),
		},
		Names: Names{
			Square:   v.GetString("names.square"),
			Customer: v.GetString("names.customer"),
		},
		Payments: Payments{
			Square: v.GetString("payments.square"),
			Cash:   v.GetString("payments.cash"),
		},
		Classes: Classes{
			Default: v.GetString("classes.default"),
			Fees:    v.GetString("classes.fees"),
		},
		Tax: Liability{
			Account: v.GetString("tax.account"),
			Vendor:  v.GetString("tax.vendor"),
			Item:    v.GetString("tax.item"),
		},
		Tips: Liability{
			Account: v.GetString("tips.account"),
			Vendor:  v.GetString("tips.vendor"),
			Item:    v.GetString("tips.item"),
		},
		Categories:    v.GetStringMapString("categories"),
		SalesAccounts: v.GetStringMapString("sales_accounts"),
		Items:         v.GetStringMapString("items"),
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks every configured name against MaxValueLength.
func (m *Mapping) Validate() error {
	scalars := map[string]string{
		"accounts.cash":     m.Accounts.Cash,
		"accounts.square":   m.Accounts.Square,
		"accounts.sales":    m.Accounts.Sales,
		"accounts.fees":     m.Accounts.Fees,
		"discounts.account": m.Discounts.Account,
		"discounts.item":    m.Discounts.Item,
		"names.square":      m.Names.Square,
		"names.customer":    m.Names.Customer,
		"payments.square":   m.Payments.Square,
		"payments.cash":     m.Payments.Cash,
		"classes.default":   m.Classes.Default,
		"classes.fees":      m.Classes.Fees,
		"tax.account":       m.Tax.Account,
		"tax.vendor":        m.Tax.Vendor,
		"tax.item":          m.Tax.Item,
		"tips.account":      m.Tips.Account,
		"tips.vendor":       m.Tips.Vendor,
		"tips.item":         m.Tips.Item,
	}
	for _, table := range []struct {
		name   string
		values map[string]string
	}{
		{"categories", m.Categories},
		{"sales_accounts", m.SalesAccounts},
		{"items", m.Items},
	} {
		for k, v := range table.values {
			scalars[table.name+"."+k] = v
		}
	}

	// sorted so the reported key is stable across runs
	keys := make([]string, 0, len(scalars))
	for k := range scalars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if n := utf8.RuneCountInString(scalars[k]); n > MaxValueLength {
			return fmt.Errorf("%w: %s is %d characters (max %d)", ErrValueTooLong, k, n, MaxValueLength)
		}
	}
	return nil
}
