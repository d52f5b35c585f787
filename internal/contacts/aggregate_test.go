package contacts

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsbilling/vsbilling/internal/billing"
)

func bill(id, date string, t billing.BillType, name, mobile, place, total string) billing.Bill {
	return billing.Bill{
		ID:          id,
		BillNumber:  "VS" + id,
		BillDate:    date,
		BillType:    t,
		Name:        name,
		Mobile:      mobile,
		VillageCity: place,
		FinalTotal:  decimal.RequireFromString(total),
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	customers := AggregateCustomers(nil)
	suppliers := AggregateSuppliers([]billing.Bill{})

	assert.NotNil(t, customers)
	assert.Empty(t, customers)
	assert.NotNil(t, suppliers)
	assert.Empty(t, suppliers)
}

func TestAggregateCustomersMergesByMobile(t *testing.T) {
	bills := []billing.Bill{
		bill("1", "2026-10-01", billing.BillTypeCustomer, "Ramesh Patil", "9876543210", "Nashik", "1500.50"),
		bill("2", "2026-10-05", billing.BillTypeCustomer, "Ramesh P.", "9876543210", "Nashik", "499.50"),
	}

	customers := AggregateCustomers(bills)
	require.Len(t, customers, 1)
	c := customers[0]
	assert.Equal(t, "1", c.ID)
	assert.Equal(t, "Ramesh Patil", c.Name, "name comes from the first bill seen")
	assert.Equal(t, 2, c.BillCount)
	assert.True(t, decimal.RequireFromString("2000").Equal(c.TotalPurchases))
}

func TestAggregateIgnoresOtherBillType(t *testing.T) {
	bills := []billing.Bill{
		bill("1", "2026-10-01", billing.BillTypeCustomer, "Ramesh", "1", "Nashik", "10"),
		bill("2", "2026-10-01", billing.BillTypeSupplier, "Surat Textiles", "2", "Surat", "90"),
	}

	customers := AggregateCustomers(bills)
	suppliers := AggregateSuppliers(bills)

	require.Len(t, customers, 1)
	assert.Equal(t, "1", customers[0].Mobile)
	require.Len(t, suppliers, 1)
	assert.Equal(t, "Surat", suppliers[0].City)
	assert.True(t, decimal.RequireFromString("90").Equal(suppliers[0].TotalPurchaseAmount))
}

func TestAggregateLocationFollowsLatestBill(t *testing.T) {
	tests := []struct {
		name  string
		bills []billing.Bill
		want  string
	}{
		{
			name: "newer date wins regardless of order",
			bills: []billing.Bill{
				bill("1", "2026-10-09", billing.BillTypeCustomer, "A", "1", "Pune", "1"),
				bill("2", "2026-10-01", billing.BillTypeCustomer, "A", "1", "Nashik", "1"),
			},
			want: "Pune",
		},
		{
			name: "first seen wins on equal dates",
			bills: []billing.Bill{
				bill("1", "2026-10-01", billing.BillTypeCustomer, "A", "1", "Pune", "1"),
				bill("2", "2026-10-01", billing.BillTypeCustomer, "A", "1", "Sinnar", "1"),
			},
			want: "Pune",
		},
		{
			name: "move to a newer place",
			bills: []billing.Bill{
				bill("1", "2026-09-01", billing.BillTypeCustomer, "A", "1", "Pune", "1"),
				bill("2", "2026-10-01", billing.BillTypeCustomer, "A", "1", "Nashik", "1"),
			},
			want: "Nashik",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customers := AggregateCustomers(tt.bills)
			require.Len(t, customers, 1)
			assert.Equal(t, tt.want, customers[0].VillageCity)
		})
	}
}

func TestAggregateSameDayBillsInStoreOrder(t *testing.T) {
	// Store order: bill_date DESC, created_at DESC.
	bills := []billing.Bill{
		bill("b2", "2026-10-14", billing.BillTypeCustomer, "Ramesh Patil", "9876543210", "NewPlace", "200"),
		bill("b1", "2026-10-14", billing.BillTypeCustomer, "Ramesh", "9876543210", "OldPlace", "100"),
		bill("b0", "2026-10-02", billing.BillTypeCustomer, "Ramesh", "9876543210", "Older", "50"),
	}

	customers := AggregateCustomers(bills)
	require.Len(t, customers, 1)
	c := customers[0]
	assert.Equal(t, "b2", c.ID)
	assert.Equal(t, "Ramesh Patil", c.Name)
	assert.Equal(t, "NewPlace", c.VillageCity)
	assert.Equal(t, 3, c.BillCount)

	suppliers := AggregateSuppliers([]billing.Bill{
		bill("s2", "2026-10-14", billing.BillTypeSupplier, "Surat Textiles", "97", "Surat", "1"),
		bill("s1", "2026-10-14", billing.BillTypeSupplier, "Surat Textiles", "97", "Vapi", "1"),
	})
	require.Len(t, suppliers, 1)
	assert.Equal(t, "Surat", suppliers[0].City)
}

func TestAggregateKeepsFirstAppearanceOrder(t *testing.T) {
	bills := []billing.Bill{
		bill("1", "2026-10-01", billing.BillTypeCustomer, "Small", "1", "X", "10"),
		bill("2", "2026-10-01", billing.BillTypeCustomer, "Big", "2", "Y", "900"),
	}

	customers := AggregateCustomers(bills)
	require.Len(t, customers, 2)
	assert.Equal(t, "Small", customers[0].Name)

	SortCustomersByTotal(customers)
	assert.Equal(t, "Big", customers[0].Name)
}

func TestSortSuppliersByTotal(t *testing.T) {
	suppliers := []Supplier{
		{Name: "a", TotalPurchaseAmount: decimal.RequireFromString("5")},
		{Name: "b", TotalPurchaseAmount: decimal.RequireFromString("50")},
		{Name: "c", TotalPurchaseAmount: decimal.RequireFromString("5")},
	}
	SortSuppliersByTotal(suppliers)
	assert.Equal(t, []string{"b", "a", "c"}, []string{suppliers[0].Name, suppliers[1].Name, suppliers[2].Name})
}

func TestSearchCustomers(t *testing.T) {
	customers := []Customer{
		{Name: "Ramesh Patil", Mobile: "9876543210", VillageCity: "Nashik"},
		{Name: "Anita", Mobile: "9988776655", VillageCity: "Pune"},
	}

	assert.Len(t, SearchCustomers(customers, ""), 2)
	assert.Len(t, SearchCustomers(customers, "ramesh"), 1)
	assert.Len(t, SearchCustomers(customers, "99887"), 1)
	assert.Len(t, SearchCustomers(customers, "PUNE"), 1)
	assert.Empty(t, SearchCustomers(customers, "surat"))
}
