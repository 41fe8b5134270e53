package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/karvyapaar/karvyapaar/internal/billing"
)

// Period selects the reporting window ending now.
type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

var ErrInvalidPeriod = errors.New("invalid report period")

// ParsePeriod validates a period string, defaulting empty input to a month.
func ParsePeriod(raw string) (Period, error) {
	switch Period(raw) {
	case "":
		return PeriodMonth, nil
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return Period(raw), nil
	default:
		return "", ErrInvalidPeriod
	}
}

// Start returns the window start for a period ending at ref.
func (p Period) Start(ref time.Time) time.Time {
	switch p {
	case PeriodWeek:
		return ref.AddDate(0, 0, -7)
	case PeriodQuarter:
		return ref.AddDate(0, -3, 0)
	case PeriodYear:
		return ref.AddDate(-1, 0, 0)
	default:
		return ref.AddDate(0, -1, 0)
	}
}

// DailySales is one point on the revenue-over-time series.
type DailySales struct {
	Date    string  `json:"date"`
	Sales   int     `json:"sales"`
	Revenue float64 `json:"revenue"`
}

// TopProduct ranks products by quantity sold in the window.
type TopProduct struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Revenue     float64 `json:"revenue"`
}

// PaymentBreakdown splits revenue by payment method.
type PaymentBreakdown struct {
	Method  string  `json:"method"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// GSTSummary totals collected tax for the window. The collected amount is
// shown split into equal central and state halves.
type GSTSummary struct {
	TaxableAmount float64 `json:"taxable_amount"`
	GSTCollected  float64 `json:"gst_collected"`
	CGST          float64 `json:"cgst"`
	SGST          float64 `json:"sgst"`
}

// Report is the full dashboard payload for one period.
type Report struct {
	Period        Period             `json:"period"`
	From          time.Time          `json:"from"`
	To            time.Time          `json:"to"`
	TotalSales    int                `json:"total_sales"`
	TotalRevenue  float64            `json:"total_revenue"`
	AverageTicket float64            `json:"average_ticket"`
	Daily         []DailySales       `json:"daily"`
	TopProducts   []TopProduct       `json:"top_products"`
	Payments      []PaymentBreakdown `json:"payments"`
	GST           GSTSummary         `json:"gst"`
}

// SaleSource supplies the raw sale rows a report aggregates over.
type SaleSource interface {
	ListSalesBetween(ctx context.Context, from, to time.Time) ([]billing.Sale, error)
	ListSaleItemsBetween(ctx context.Context, from, to time.Time) ([]billing.SaleItem, error)
}

// Service aggregates sales into dashboard reports, cached per period.
type Service struct {
	logger *slog.Logger
	source SaleSource
	cache  *Cache
	now    func() time.Time
}

func NewService(logger *slog.Logger, source SaleSource, cache *Cache, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{logger: logger, source: source, cache: cache, now: now}
}

// Build returns the report for the period, serving from cache when the
// version has not been bumped since it was written.
func (s *Service) Build(ctx context.Context, period Period) (Report, error) {
	key, err := s.cache.BuildKey(ctx, "reports", string(period))
	if err != nil {
		return Report{}, fmt.Errorf("build report cache key: %w", err)
	}
	var report Report
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (any, error) {
		return s.build(ctx, period)
	})
	if err != nil {
		return Report{}, err
	}
	return report, nil
}

// Refresh warms the cache for every period under the current version.
// The scheduler calls this so dashboards load warm after invalidation.
func (s *Service) Refresh(ctx context.Context) error {
	for _, period := range []Period{PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear} {
		if _, err := s.Build(ctx, period); err != nil {
			return fmt.Errorf("refresh %s report: %w", period, err)
		}
	}
	return nil
}

func (s *Service) build(ctx context.Context, period Period) (Report, error) {
	to := s.now()
	from := period.Start(to)

	var (
		sales []billing.Sale
		items []billing.SaleItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = s.source.ListSalesBetween(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.source.ListSaleItemsBetween(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("load sales for report: %w", err)
	}

	report := Report{
		Period: period,
		From:   from,
		To:     to,
	}

	daily := make(map[string]*DailySales)
	payments := make(map[string]*PaymentBreakdown)
	for _, sale := range sales {
		report.TotalSales++
		report.TotalRevenue += sale.Total
		report.GST.GSTCollected += sale.GSTAmount
		report.GST.TaxableAmount += sale.Subtotal

		day := sale.CreatedAt.Format("2006-01-02")
		if daily[day] == nil {
			daily[day] = &DailySales{Date: day}
		}
		daily[day].Sales++
		daily[day].Revenue += sale.Total

		method := string(sale.PaymentMethod)
		if payments[method] == nil {
			payments[method] = &PaymentBreakdown{Method: method}
		}
		payments[method].Count++
		payments[method].Revenue += sale.Total
	}
	if report.TotalSales > 0 {
		report.AverageTicket = billing.Round2(report.TotalRevenue / float64(report.TotalSales))
	}
	report.GST.CGST = billing.Round2(report.GST.GSTCollected / 2)
	report.GST.SGST = report.GST.CGST

	byProduct := make(map[string]*TopProduct)
	for _, item := range items {
		if byProduct[item.ProductName] == nil {
			byProduct[item.ProductName] = &TopProduct{ProductName: item.ProductName}
		}
		byProduct[item.ProductName].Quantity += item.Quantity
		byProduct[item.ProductName].Revenue += item.TotalPrice
	}

	report.Daily = sortedDaily(daily)
	report.Payments = sortedPayments(payments)
	report.TopProducts = topProducts(byProduct, 10)
	return report, nil
}

func sortedDaily(m map[string]*DailySales) []DailySales {
	out := make([]DailySales, 0, len(m))
	for _, d := range m {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func sortedPayments(m map[string]*PaymentBreakdown) []PaymentBreakdown {
	out := make([]PaymentBreakdown, 0, len(m))
	for _, p := range m {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Revenue > out[j].Revenue })
	return out
}

func topProducts(m map[string]*TopProduct, limit int) []TopProduct {
	out := make([]TopProduct, 0, len(m))
	for _, p := range m {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Revenue > out[j].Revenue
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
