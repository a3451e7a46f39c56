package core

import (
	"sort"
	"strings"
)

// AllocationResult is the outcome of spreading one pay amount over items.
type AllocationResult struct {
	RemainingPay int64
	Funded       []Item
	Unfunded     []Item
}

// Spent returns how much of pay went to funded items.
func (r AllocationResult) Spent(pay int64) int64 {
	return pay - r.RemainingPay
}

// SortByPriority returns a copy of items ordered by priority, highest first.
// Items of equal priority keep their relative order.
func SortByPriority(items []Item) []Item {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return sorted
}

// Allocate deducts the effective cost of each item from pay in priority
// order. Funding stops at the first item whose cost would take the balance to
// zero or below; that item and every item after it are unfunded and the
// balance is left as it was before the item.
//
// Items are not range-checked here. An item with a blank title or an
// interval that has no cost normaliser yields a StructuralError before
// anything is deducted.
func Allocate(pay int64, items []Item) (AllocationResult, error) {
	for i, it := range items {
		if strings.TrimSpace(it.Title) == "" {
			return AllocationResult{}, &StructuralError{Index: i, Title: it.Title, Field: "title"}
		}
		if _, err := it.Interval.Normalizer(); err != nil {
			return AllocationResult{}, &StructuralError{Index: i, Title: it.Title, Field: "interval"}
		}
	}

	sorted := SortByPriority(items)
	result := AllocationResult{
		RemainingPay: pay,
		Funded:       make([]Item, 0, len(sorted)),
		Unfunded:     make([]Item, 0),
	}

	for pos, it := range sorted {
		deduct, _ := it.Interval.EffectiveCost(it.Cost.Cents)

		if result.RemainingPay-deduct <= 0 {
			result.Unfunded = append(result.Unfunded, sorted[pos:]...)
			return result, nil
		}

		result.Funded = append(result.Funded, it)
		result.RemainingPay -= deduct
	}

	return result, nil
}
