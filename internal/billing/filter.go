package billing

import (
	"sort"
	"strings"
)

// FilterBills narrows bills by type (empty means all) and a case-insensitive
// search over name, mobile, location and bill number. The result is sorted
// newest first by bill date; the input slice is not modified.
func FilterBills(bills []Bill, billType BillType, term string) []Bill {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]Bill, 0, len(bills))
	for _, b := range bills {
		if billType != "" && b.BillType != billType {
			continue
		}
		if term != "" && !matchesTerm(b, term) {
			continue
		}
		out = append(out, b)
	}
	SortNewestFirst(out)
	return out
}

// SortNewestFirst orders bills by bill date descending, keeping input order for equal dates.
func SortNewestFirst(bills []Bill) {
	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].BillDate > bills[j].BillDate
	})
}

func matchesTerm(b Bill, term string) bool {
	return strings.Contains(strings.ToLower(b.Name), term) ||
		strings.Contains(b.Mobile, term) ||
		strings.Contains(strings.ToLower(b.VillageCity), term) ||
		strings.Contains(strings.ToLower(b.BillNumber), term)
}
