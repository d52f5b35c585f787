package reports

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/vsbilling/vsbilling/internal/billing"
	"github.com/vsbilling/vsbilling/internal/contacts"
)

// BillStore is the bill access the report builder needs.
type BillStore interface {
	ListBills(ctx context.Context, owner string) ([]billing.Bill, error)
	ListBillsBetween(ctx context.Context, owner, start, end string) ([]billing.Bill, error)
}

// ContactLister provides the customer and supplier summaries counted on the dashboard.
type ContactLister interface {
	Customers(ctx context.Context, owner, search string) []contacts.Customer
	Suppliers(ctx context.Context, owner, search string) []contacts.Supplier
}

// ReportData summarises the bills dated inside one period.
type ReportData struct {
	Period         Period          `json:"period"`
	Start          string          `json:"start"`
	End            string          `json:"end"`
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	BillCount      int             `json:"bill_count"`
	Bills          []billing.Bill  `json:"bills"`
}

// DailySales is one point of the dashboard sales series.
type DailySales struct {
	Date  string          `json:"date"`
	Label string          `json:"label"`
	Sales decimal.Decimal `json:"sales"`
}

// DashboardStats is the landing page summary.
type DashboardStats struct {
	TodaySales     decimal.Decimal `json:"today_sales"`
	WeeklySales    decimal.Decimal `json:"weekly_sales"`
	MonthlySales   decimal.Decimal `json:"monthly_sales"`
	YearlySales    decimal.Decimal `json:"yearly_sales"`
	TotalCustomers int             `json:"total_customers"`
	TotalSuppliers int             `json:"total_suppliers"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	LastSevenDays  []DailySales    `json:"last_seven_days"`
}

// Service builds reports against the configured business time zone.
type Service struct {
	bills    BillStore
	contacts ContactLister
	loc      *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(bills BillStore, contactLister ContactLister, loc *time.Location, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{bills: bills, contacts: contactLister, loc: loc, logger: logger, now: time.Now}
}

// BuildReport totals the bills dated inside period. A fetch failure is logged
// and yields a zeroed report for the same window.
func (s *Service) BuildReport(ctx context.Context, owner string, period Period) ReportData {
	window := Resolve(period, s.now(), s.loc)
	report := ReportData{
		Period:         period,
		Start:          window.Start,
		End:            window.End,
		TotalSales:     decimal.Zero,
		TotalPurchases: decimal.Zero,
		Bills:          []billing.Bill{},
	}

	bills, err := s.bills.ListBillsBetween(ctx, owner, window.Start, window.End)
	if err != nil {
		s.logger.Error("build report failed",
			slog.String("owner", owner),
			slog.String("period", string(period)),
			slog.Any("error", err))
		return report
	}

	for _, b := range bills {
		switch b.BillType {
		case billing.BillTypeCustomer:
			report.TotalSales = report.TotalSales.Add(b.FinalTotal)
		case billing.BillTypeSupplier:
			report.TotalPurchases = report.TotalPurchases.Add(b.FinalTotal)
		}
	}
	report.BillCount = len(bills)
	report.Bills = append(report.Bills, bills...)
	return report
}

// Dashboard gathers the four period reports, the contact counts and the
// seven day sales series concurrently.
func (s *Service) Dashboard(ctx context.Context, owner string) (DashboardStats, error) {
	var (
		reports   = make([]ReportData, len(Periods))
		customers []contacts.Customer
		suppliers []contacts.Supplier
		all       []billing.Bill
	)

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range Periods {
		g.Go(func() error {
			reports[i] = s.BuildReport(ctx, owner, p)
			return ctx.Err()
		})
	}
	g.Go(func() error {
		customers = s.contacts.Customers(ctx, owner, "")
		return ctx.Err()
	})
	g.Go(func() error {
		suppliers = s.contacts.Suppliers(ctx, owner, "")
		return ctx.Err()
	})
	g.Go(func() error {
		bills, err := s.bills.ListBills(ctx, owner)
		if err != nil {
			s.logger.Error("load bills for dashboard failed", slog.String("owner", owner), slog.Any("error", err))
			return ctx.Err()
		}
		all = bills
		return nil
	})
	if err := g.Wait(); err != nil {
		return DashboardStats{}, err
	}

	return DashboardStats{
		TodaySales:     reports[0].TotalSales,
		WeeklySales:    reports[1].TotalSales,
		MonthlySales:   reports[2].TotalSales,
		YearlySales:    reports[3].TotalSales,
		TotalCustomers: len(customers),
		TotalSuppliers: len(suppliers),
		TotalRevenue:   reports[3].TotalSales,
		LastSevenDays:  DailySeries(all, s.now().In(s.loc), 7),
	}, nil
}

// DailySeries sums customer bills per calendar day for the days ending at
// today, oldest first.
func DailySeries(bills []billing.Bill, today time.Time, days int) []DailySales {
	byDate := make(map[string]decimal.Decimal)
	for _, b := range bills {
		if b.BillType != billing.BillTypeCustomer {
			continue
		}
		byDate[b.BillDate] = byDate[b.BillDate].Add(b.FinalTotal)
	}

	series := make([]DailySales, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := day.Format(billing.DateLayout)
		series = append(series, DailySales{
			Date:  key,
			Label: day.Format("Jan 2"),
			Sales: byDate[key],
		})
	}
	return series
}
