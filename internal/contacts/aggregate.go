// Package contacts derives customer and supplier summaries from bills.
package contacts

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsbilling/vsbilling/internal/billing"
)

// Customer summarises every customer bill sharing one mobile number.
type Customer struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Mobile         string          `json:"mobile"`
	VillageCity    string          `json:"village_city"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	BillCount      int             `json:"bill_count"`
}

// Supplier summarises every supplier bill sharing one mobile number.
type Supplier struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Mobile              string          `json:"mobile"`
	City                string          `json:"city"`
	TotalPurchaseAmount decimal.Decimal `json:"total_purchase_amount"`
	BillCount           int             `json:"bill_count"`
}

// party is the type-independent accumulator behind both summaries.
type party struct {
	id           string
	name         string
	mobile       string
	location     string
	locationDate string
	total        decimal.Decimal
	count        int
}

// group folds bills of one type into per-mobile accumulators in first
// appearance order. The location follows the latest bill date; on equal dates
// the first bill seen keeps it, which for store order (newest first) is the
// most recently created bill.
func group(bills []billing.Bill, billType billing.BillType) []*party {
	index := make(map[string]*party)
	order := make([]*party, 0)
	for _, b := range bills {
		if b.BillType != billType {
			continue
		}
		p, ok := index[b.Mobile]
		if !ok {
			p = &party{
				id:           b.ID,
				name:         b.Name,
				mobile:       b.Mobile,
				location:     b.VillageCity,
				locationDate: b.BillDate,
				total:        decimal.Zero,
			}
			index[b.Mobile] = p
			order = append(order, p)
		} else if b.BillDate > p.locationDate {
			p.location = b.VillageCity
			p.locationDate = b.BillDate
		}
		p.total = p.total.Add(b.FinalTotal)
		p.count++
	}
	return order
}

// AggregateCustomers groups customer bills by mobile.
func AggregateCustomers(bills []billing.Bill) []Customer {
	parties := group(bills, billing.BillTypeCustomer)
	out := make([]Customer, 0, len(parties))
	for _, p := range parties {
		out = append(out, Customer{
			ID:             p.id,
			Name:           p.name,
			Mobile:         p.mobile,
			VillageCity:    p.location,
			TotalPurchases: p.total,
			BillCount:      p.count,
		})
	}
	return out
}

// AggregateSuppliers groups supplier bills by mobile.
func AggregateSuppliers(bills []billing.Bill) []Supplier {
	parties := group(bills, billing.BillTypeSupplier)
	out := make([]Supplier, 0, len(parties))
	for _, p := range parties {
		out = append(out, Supplier{
			ID:                  p.id,
			Name:                p.name,
			Mobile:              p.mobile,
			City:                p.location,
			TotalPurchaseAmount: p.total,
			BillCount:           p.count,
		})
	}
	return out
}

// SortCustomersByTotal orders customers by total purchases, highest first.
func SortCustomersByTotal(customers []Customer) {
	sort.SliceStable(customers, func(i, j int) bool {
		return customers[i].TotalPurchases.GreaterThan(customers[j].TotalPurchases)
	})
}

// SortSuppliersByTotal orders suppliers by total purchase amount, highest first.
func SortSuppliersByTotal(suppliers []Supplier) {
	sort.SliceStable(suppliers, func(i, j int) bool {
		return suppliers[i].TotalPurchaseAmount.GreaterThan(suppliers[j].TotalPurchaseAmount)
	})
}

func matches(term, name, mobile, location string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), term) ||
		strings.Contains(mobile, term) ||
		strings.Contains(strings.ToLower(location), term)
}

// SearchCustomers keeps customers whose name, mobile or location contains term.
func SearchCustomers(customers []Customer, term string) []Customer {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]Customer, 0, len(customers))
	for _, c := range customers {
		if matches(term, c.Name, c.Mobile, c.VillageCity) {
			out = append(out, c)
		}
	}
	return out
}

// SearchSuppliers keeps suppliers whose name, mobile or city contains term.
func SearchSuppliers(suppliers []Supplier, term string) []Supplier {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]Supplier, 0, len(suppliers))
	for _, s := range suppliers {
		if matches(term, s.Name, s.Mobile, s.City) {
			out = append(out, s)
		}
	}
	return out
}
