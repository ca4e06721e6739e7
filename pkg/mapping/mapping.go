// Package mapping resolves point-of-sale categories and item names to ledger
// classes, accounts and display names. Every lookup falls back to a
// configured default, so resolution never fails.
package mapping

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/overhacked/square-bridge/pkg/config"
)

type Resolver struct {
	mapping       *config.Mapping
	classes       map[string]string
	salesAccounts map[string]string
	items         map[string]string
}

// New indexes the mapping tables. Keys are case-folded because the
// configuration loader does not preserve key case.
func New(m *config.Mapping) *Resolver {
	return &Resolver{
		mapping:       m,
		classes:       fold(m.Categories),
		salesAccounts: fold(m.SalesAccounts),
		items:         fold(m.Items),
	}
}

// Mapping exposes the scalar defaults the writer needs.
func (r *Resolver) Mapping() *config.Mapping {
	return r.mapping
}

// Class returns the class configured for category, or the default class.
func (r *Resolver) Class(category string) string {
	if class, ok := r.classes[key(category)]; ok {
		return class
	}
	return r.mapping.Classes.Default
}

// SalesAccount returns the income account for category, or the default sales account.
func (r *Resolver) SalesAccount(category string) string {
	if account, ok := r.salesAccounts[key(category)]; ok {
		return account
	}
	return r.mapping.Accounts.Sales
}

// ItemName returns the display name for a raw item name.
func (r *Resolver) ItemName(name string) string {
	if display, ok := r.items[key(name)]; ok {
		return display
	}
	return name
}

// RewritesItems reports whether an item catalog should be emitted.
func (r *Resolver) RewritesItems() bool {
	return len(r.items) > 0
}

func fold(table map[string]string) map[string]string {
	out := make(map[string]string, len(table))
	for k, v := range table {
		out[key(k)] = v
	}
	return out
}

func key(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
