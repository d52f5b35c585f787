package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SaveBillRequest is the JSON body accepted for create and replace. It accepts
// the Bill representation returned by reads: derived totals are ignored, and
// the id is ignored on create and must match the path on replace.
type SaveBillRequest struct {
	ID          string            `json:"id,omitempty"`
	BillNumber  string            `json:"bill_number"`
	BillDate    string            `json:"bill_date"`
	BillType    BillType          `json:"bill_type"`
	Name        string            `json:"name"`
	Mobile      string            `json:"mobile"`
	VillageCity string            `json:"village_city"`
	Items       []SaveItemRequest `json:"items"`
	Discount    decimal.Decimal   `json:"discount"`
	Subtotal    *decimal.Decimal  `json:"subtotal,omitempty"`
	FinalTotal  *decimal.Decimal  `json:"final_total,omitempty"`
}

// SaveItemRequest is one line of SaveBillRequest.
type SaveItemRequest struct {
	ID           string           `json:"id"`
	ItemName     string           `json:"item_name"`
	Quantity     decimal.Decimal  `json:"quantity"`
	PricePerItem decimal.Decimal  `json:"price_per_item"`
	TotalPrice   *decimal.Decimal `json:"total_price,omitempty"`
}

// ToBill converts the request into a Bill with totals recomputed.
func (r SaveBillRequest) ToBill(id string) Bill {
	bill := Bill{
		ID:          id,
		BillNumber:  strings.TrimSpace(r.BillNumber),
		BillDate:    strings.TrimSpace(r.BillDate),
		BillType:    r.BillType,
		Name:        strings.TrimSpace(r.Name),
		Mobile:      strings.TrimSpace(r.Mobile),
		VillageCity: strings.TrimSpace(r.VillageCity),
		Discount:    r.Discount,
		Items:       make([]BillItem, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		bill.Items = append(bill.Items, BillItem{
			ID:           strings.TrimSpace(it.ID),
			ItemName:     strings.TrimSpace(it.ItemName),
			Quantity:     it.Quantity,
			PricePerItem: it.PricePerItem,
		})
	}
	bill.Recalculate()
	return bill
}

// BillNumberResponse carries a freshly issued bill number.
type BillNumberResponse struct {
	BillNumber string `json:"bill_number"`
}

// ListBillsResponse wraps a bill listing with its count and summed final total.
type ListBillsResponse struct {
	Bills       []Bill          `json:"bills"`
	Total       int             `json:"total"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewListBillsResponse summarises bills for the records view.
func NewListBillsResponse(bills []Bill) ListBillsResponse {
	amount := decimal.Zero
	for _, b := range bills {
		amount = amount.Add(b.FinalTotal)
	}
	return ListBillsResponse{Bills: bills, Total: len(bills), TotalAmount: amount}
}
