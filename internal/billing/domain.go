package billing

import (
	"github.com/shopspring/decimal"
)

// BillType distinguishes sales to customers from purchases from suppliers.
type BillType string

const (
	BillTypeCustomer BillType = "customer"
	BillTypeSupplier BillType = "supplier"
)

// Valid reports whether t is a known bill type.
func (t BillType) Valid() bool {
	return t == BillTypeCustomer || t == BillTypeSupplier
}

// DateLayout is the ISO calendar date format bills are stored and compared in.
const DateLayout = "2006-01-02"

// BillItem is a line on a bill. TotalPrice is derived and never authoritative.
type BillItem struct {
	ID           string          `json:"id"`
	ItemName     string          `json:"item_name" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity" validate:"gt=0"`
	PricePerItem decimal.Decimal `json:"price_per_item" validate:"gt=0"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

// NewItem builds a line item with its total already computed.
func NewItem(name string, quantity, price decimal.Decimal) BillItem {
	item := BillItem{ItemName: name, Quantity: quantity, PricePerItem: price}
	item.Recalculate()
	return item
}

// SetQuantity updates the quantity and recomputes the total.
func (i *BillItem) SetQuantity(q decimal.Decimal) {
	i.Quantity = q
	i.Recalculate()
}

// SetPrice updates the unit price and recomputes the total.
func (i *BillItem) SetPrice(p decimal.Decimal) {
	i.PricePerItem = p
	i.Recalculate()
}

// Recalculate sets TotalPrice = Quantity × PricePerItem.
func (i *BillItem) Recalculate() {
	i.TotalPrice = i.Quantity.Mul(i.PricePerItem)
}

// Bill is a single sale or purchase. Subtotal and FinalTotal are derived.
type Bill struct {
	ID          string          `json:"id"`
	BillNumber  string          `json:"bill_number" validate:"required,billnumber"`
	BillDate    string          `json:"bill_date" validate:"required,datetime=2006-01-02"`
	BillType    BillType        `json:"bill_type" validate:"required,oneof=customer supplier"`
	Name        string          `json:"name" validate:"required"`
	Mobile      string          `json:"mobile" validate:"required"`
	VillageCity string          `json:"village_city" validate:"required"`
	Items       []BillItem      `json:"items" validate:"dive"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount" validate:"gte=0"`
	FinalTotal  decimal.Decimal `json:"final_total"`
}

// Recalculate re-derives every item total, the subtotal and the final total.
func (b *Bill) Recalculate() {
	subtotal := decimal.Zero
	for idx := range b.Items {
		b.Items[idx].Recalculate()
		subtotal = subtotal.Add(b.Items[idx].TotalPrice)
	}
	b.Subtotal = subtotal
	b.FinalTotal = subtotal.Sub(b.Discount)
}

// SetDiscount updates the discount and recomputes the final total.
func (b *Bill) SetDiscount(d decimal.Decimal) {
	b.Discount = d
	b.Recalculate()
}

// AddItem appends a line and recomputes totals.
func (b *Bill) AddItem(item BillItem) {
	b.Items = append(b.Items, item)
	b.Recalculate()
}

// RemoveItem drops the line with the given id and recomputes totals.
func (b *Bill) RemoveItem(id string) bool {
	for idx := range b.Items {
		if b.Items[idx].ID == id {
			b.Items = append(b.Items[:idx], b.Items[idx+1:]...)
			b.Recalculate()
			return true
		}
	}
	return false
}
