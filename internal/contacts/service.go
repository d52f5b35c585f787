package contacts

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vsbilling/vsbilling/internal/billing"
)

// BillReader is the part of the bill store the aggregation views read from.
type BillReader interface {
	ListBills(ctx context.Context, owner string) ([]billing.Bill, error)
	ListBillsByType(ctx context.Context, owner string, billType billing.BillType) ([]billing.Bill, error)
}

// Service serves customer and supplier views. Every read is recomputed from
// bills and degrades to an empty result on store failure.
type Service struct {
	bills  BillReader
	logger *slog.Logger
}

func NewService(bills BillReader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{bills: bills, logger: logger}
}

func (s *Service) load(ctx context.Context, owner string, billType billing.BillType) []billing.Bill {
	bills, err := s.bills.ListBillsByType(ctx, owner, billType)
	if err != nil {
		s.logger.Error("load bills for aggregation failed",
			slog.String("owner", owner),
			slog.String("bill_type", string(billType)),
			slog.Any("error", err))
		return nil
	}
	return bills
}

// Customers returns customer summaries matching search, highest total first.
func (s *Service) Customers(ctx context.Context, owner, search string) []Customer {
	customers := SearchCustomers(AggregateCustomers(s.load(ctx, owner, billing.BillTypeCustomer)), search)
	SortCustomersByTotal(customers)
	return customers
}

// Suppliers returns supplier summaries matching search, highest total first.
func (s *Service) Suppliers(ctx context.Context, owner, search string) []Supplier {
	suppliers := SearchSuppliers(AggregateSuppliers(s.load(ctx, owner, billing.BillTypeSupplier)), search)
	SortSuppliersByTotal(suppliers)
	return suppliers
}

// CustomerHistory lists the customer bills for mobile, newest first.
func (s *Service) CustomerHistory(ctx context.Context, owner, mobile string) []billing.Bill {
	return s.history(ctx, owner, mobile, billing.BillTypeCustomer)
}

// SupplierHistory lists the supplier bills for mobile, newest first.
func (s *Service) SupplierHistory(ctx context.Context, owner, mobile string) []billing.Bill {
	return s.history(ctx, owner, mobile, billing.BillTypeSupplier)
}

func (s *Service) history(ctx context.Context, owner, mobile string, billType billing.BillType) []billing.Bill {
	mobile = strings.TrimSpace(mobile)
	out := []billing.Bill{}
	bills, err := s.bills.ListBills(ctx, owner)
	if err != nil {
		s.logger.Error("load bill history failed", slog.String("owner", owner), slog.Any("error", err))
		return out
	}
	for _, b := range bills {
		if b.BillType == billType && b.Mobile == mobile {
			out = append(out, b)
		}
	}
	billing.SortNewestFirst(out)
	return out
}
