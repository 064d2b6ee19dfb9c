// Package analytics derives the summary views shown on the dashboard from
// lists of transactions, budgets and assets.
//
// Every function here is pure: the same input always yields the same output,
// and empty input yields an empty or zero result.
package analytics

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// sortByLabel orders items by a text label using locale-aware collation.
func sortByLabel[T any](items []T, label func(T) string) {
	c := collate.New(language.English)
	sort.SliceStable(items, func(i, j int) bool {
		return c.CompareString(label(items[i]), label(items[j])) < 0
	})
}
