package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var inrPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatRupees renders an amount the way the shop displays it, with Indian
// digit grouping and two decimals. The rupee part is grouped as an integer
// and the paise are appended from the decimal, so no float rounding applies.
// Amounts beyond int64 rupees are printed ungrouped.
func FormatRupees(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	rupees := rounded.Truncate(0)
	paise := rounded.Sub(rupees).Shift(2).IntPart()

	grouped := rupees.String()
	if whole := rupees.BigInt(); whole.IsInt64() {
		grouped = inrPrinter.Sprintf("%v", number.Decimal(whole.Int64()))
	}
	return fmt.Sprintf("₹%s%s.%02d", sign, grouped, paise)
}

// ExportCSV writes the report's bills followed by the period totals.
func ExportCSV(w io.Writer, report ReportData) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Bill Number", "Date", "Type", "Name", "Mobile", "Village/City", "Items", "Subtotal", "Discount", "Final Total"}); err != nil {
		return err
	}
	for _, b := range report.Bills {
		if err := writer.Write([]string{
			b.BillNumber,
			b.BillDate,
			string(b.BillType),
			b.Name,
			b.Mobile,
			b.VillageCity,
			strconv.Itoa(len(b.Items)),
			FormatRupees(b.Subtotal),
			FormatRupees(b.Discount),
			FormatRupees(b.FinalTotal),
		}); err != nil {
			return err
		}
	}

	summary := [][]string{
		{},
		{"Period", string(report.Period), report.Start, report.End},
		{"Total Sales", FormatRupees(report.TotalSales)},
		{"Total Purchases", FormatRupees(report.TotalPurchases)},
		{"Bill Count", strconv.Itoa(report.BillCount)},
	}
	for _, record := range summary {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
