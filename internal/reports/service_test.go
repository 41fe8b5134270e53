package reports

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karvyapaar/karvyapaar/internal/billing"
	_ "github.com/karvyapaar/karvyapaar/testing"
)

type mockSaleSource struct {
	sales     []billing.Sale
	items     []billing.SaleItem
	salesErr  error
	saleCalls int
}

func (m *mockSaleSource) ListSalesBetween(_ context.Context, from, to time.Time) ([]billing.Sale, error) {
	m.saleCalls++
	if m.salesErr != nil {
		return nil, m.salesErr
	}
	return m.sales, nil
}

func (m *mockSaleSource) ListSaleItemsBetween(_ context.Context, from, to time.Time) ([]billing.SaleItem, error) {
	return m.items, nil
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func sampleSource() *mockSaleSource {
	day1 := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, time.March, 2, 15, 0, 0, 0, time.UTC)
	return &mockSaleSource{
		sales: []billing.Sale{
			{ID: 1, Subtotal: 100, GSTAmount: 18, Total: 118, PaymentMethod: billing.PaymentCash, CreatedAt: day1},
			{ID: 2, Subtotal: 200, GSTAmount: 36, Total: 236, PaymentMethod: billing.PaymentUPI, CreatedAt: day1},
			{ID: 3, Subtotal: 50, GSTAmount: 9, Total: 59, PaymentMethod: billing.PaymentCash, CreatedAt: day2},
		},
		items: []billing.SaleItem{
			{SaleID: 1, ProductName: "Paracetamol 500mg", Quantity: 4, TotalPrice: 80},
			{SaleID: 2, ProductName: "Cough Syrup", Quantity: 1, TotalPrice: 120},
			{SaleID: 2, ProductName: "Paracetamol 500mg", Quantity: 2, TotalPrice: 40},
			{SaleID: 3, ProductName: "Vitamin C", Quantity: 3, TotalPrice: 50},
		},
	}
}

func newTestService(t *testing.T, source SaleSource) (*Service, *Cache) {
	cache, _ := newTestCache(t)
	now := func() time.Time { return time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC) }
	return NewService(slog.New(slog.DiscardHandler), source, cache, now), cache
}

func TestBuildAggregates(t *testing.T) {
	source := sampleSource()
	svc, _ := newTestService(t, source)

	report, err := svc.Build(context.Background(), PeriodMonth)
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalSales)
	assert.Equal(t, 413.0, report.TotalRevenue)
	assert.InDelta(t, 137.67, report.AverageTicket, 0.001)

	require.Len(t, report.Daily, 2)
	assert.Equal(t, "2025-03-01", report.Daily[0].Date)
	assert.Equal(t, 2, report.Daily[0].Sales)
	assert.Equal(t, 354.0, report.Daily[0].Revenue)

	require.Len(t, report.Payments, 2)
	assert.Equal(t, "upi", report.Payments[0].Method)
	assert.Equal(t, 236.0, report.Payments[0].Revenue)
	assert.Equal(t, "cash", report.Payments[1].Method)
	assert.Equal(t, 2, report.Payments[1].Count)

	require.NotEmpty(t, report.TopProducts)
	assert.Equal(t, "Paracetamol 500mg", report.TopProducts[0].ProductName)
	assert.Equal(t, 6, report.TopProducts[0].Quantity)
	assert.Equal(t, 120.0, report.TopProducts[0].Revenue)
}

func TestBuildGSTSplitsEqually(t *testing.T) {
	source := sampleSource()
	svc, _ := newTestService(t, source)

	report, err := svc.Build(context.Background(), PeriodWeek)
	require.NoError(t, err)

	assert.Equal(t, 350.0, report.GST.TaxableAmount)
	assert.Equal(t, 63.0, report.GST.GSTCollected)
	assert.Equal(t, 31.5, report.GST.CGST)
	assert.Equal(t, report.GST.CGST, report.GST.SGST)
}

func TestBuildServesFromCacheUntilBump(t *testing.T) {
	source := sampleSource()
	svc, cache := newTestService(t, source)

	_, err := svc.Build(context.Background(), PeriodMonth)
	require.NoError(t, err)
	_, err = svc.Build(context.Background(), PeriodMonth)
	require.NoError(t, err)
	assert.Equal(t, 1, source.saleCalls)

	require.NoError(t, cache.Bump(context.Background()))

	_, err = svc.Build(context.Background(), PeriodMonth)
	require.NoError(t, err)
	assert.Equal(t, 2, source.saleCalls)
}

func TestBuildPropagatesSourceError(t *testing.T) {
	source := &mockSaleSource{salesErr: errors.New("connection refused")}
	svc, _ := newTestService(t, source)

	_, err := svc.Build(context.Background(), PeriodMonth)
	assert.Error(t, err)
}

func TestParsePeriod(t *testing.T) {
	period, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodMonth, period)

	period, err = ParsePeriod("quarter")
	require.NoError(t, err)
	assert.Equal(t, PeriodQuarter, period)

	_, err = ParsePeriod("fortnight")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestPeriodStart(t *testing.T) {
	ref := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC), PeriodWeek.Start(ref))
	assert.Equal(t, time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC), PeriodMonth.Start(ref))
	assert.Equal(t, time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC), PeriodQuarter.Start(ref))
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), PeriodYear.Start(ref))
}
