package customers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	byPhone   map[string]*Customer
	nextID    int64
	upsertErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{byPhone: make(map[string]*Customer), nextID: 1}
}

func (m *mockRepository) List(_ context.Context, limit, offset int) ([]Customer, error) {
	customers := make([]Customer, 0, len(m.byPhone))
	for _, c := range m.byPhone {
		customers = append(customers, *c)
	}
	return customers, nil
}

func (m *mockRepository) GetByPhone(_ context.Context, phone string) (Customer, error) {
	c, ok := m.byPhone[phone]
	if !ok {
		return Customer{}, ErrNotFound
	}
	return *c, nil
}

func (m *mockRepository) UpsertSale(_ context.Context, name, phone string, amount float64, tier LoyaltyTier) (Customer, error) {
	if m.upsertErr != nil {
		return Customer{}, m.upsertErr
	}
	c, ok := m.byPhone[phone]
	if !ok {
		c = &Customer{
			ID: m.nextID, Name: name, Phone: phone,
			LoyaltyTier: tier, CreatedAt: time.Now(),
		}
		m.nextID++
		m.byPhone[phone] = c
	}
	c.Name = name
	c.TotalOrders++
	c.TotalSpent += amount
	c.UpdatedAt = time.Now()
	return *c, nil
}

func (m *mockRepository) UpdateTier(_ context.Context, id int64, tier LoyaltyTier) error {
	for _, c := range m.byPhone {
		if c.ID == id {
			c.LoyaltyTier = tier
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockRepository) Stats(_ context.Context) (Stats, error) {
	stats := Stats{TierCounts: make(map[LoyaltyTier]int)}
	for _, c := range m.byPhone {
		stats.TotalCustomers++
		stats.TotalRevenue += c.TotalSpent
		stats.TierCounts[c.LoyaltyTier]++
	}
	if stats.TotalCustomers > 0 {
		stats.AverageSpend = stats.TotalRevenue / float64(stats.TotalCustomers)
	}
	return stats, nil
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		spent float64
		want  LoyaltyTier
	}{
		{0, TierBronze},
		{9_999.99, TierBronze},
		{10_000, TierSilver},
		{49_999.99, TierSilver},
		{50_000, TierGold},
		{149_999.99, TierGold},
		{150_000, TierPlatinum},
		{1_000_000, TierPlatinum},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, TierFor(tc.spent), "spend %.2f", tc.spent)
	}
}

func TestRecordSaleCreatesCustomer(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(slog.New(slog.DiscardHandler), repo)

	require.NoError(t, svc.RecordSale(context.Background(), "Asha", "9876543210", 450))

	c, err := svc.GetByPhone(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "Asha", c.Name)
	assert.Equal(t, 1, c.TotalOrders)
	assert.Equal(t, 450.0, c.TotalSpent)
	assert.Equal(t, TierBronze, c.LoyaltyTier)
}

func TestRecordSaleAccumulatesByPhone(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(slog.New(slog.DiscardHandler), repo)

	require.NoError(t, svc.RecordSale(context.Background(), "Asha", "9876543210", 300))
	require.NoError(t, svc.RecordSale(context.Background(), "Asha Verma", "9876543210", 700))

	c, err := svc.GetByPhone(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.Equal(t, 2, c.TotalOrders)
	assert.Equal(t, 1000.0, c.TotalSpent)
	assert.Equal(t, "Asha Verma", c.Name)
}

func TestRecordSalePromotesAcrossThreshold(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(slog.New(slog.DiscardHandler), repo)

	require.NoError(t, svc.RecordSale(context.Background(), "Ravi", "9000000001", 9_500))
	c, _ := svc.GetByPhone(context.Background(), "9000000001")
	assert.Equal(t, TierBronze, c.LoyaltyTier)

	// This sale pushes lifetime spend past the Silver threshold.
	require.NoError(t, svc.RecordSale(context.Background(), "Ravi", "9000000001", 600))
	c, _ = svc.GetByPhone(context.Background(), "9000000001")
	assert.Equal(t, TierSilver, c.LoyaltyTier)
}

func TestRecordSaleDefaultsName(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(slog.New(slog.DiscardHandler), repo)

	require.NoError(t, svc.RecordSale(context.Background(), "   ", "9000000002", 120))
	c, err := svc.GetByPhone(context.Background(), "9000000002")
	require.NoError(t, err)
	assert.Equal(t, "Walk-in", c.Name)
}

func TestStats(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(slog.New(slog.DiscardHandler), repo)

	require.NoError(t, svc.RecordSale(context.Background(), "A", "9000000001", 200_000))
	require.NoError(t, svc.RecordSale(context.Background(), "B", "9000000002", 400))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCustomers)
	assert.Equal(t, 200_400.0, stats.TotalRevenue)
	assert.Equal(t, 100_200.0, stats.AverageSpend)
	assert.Equal(t, 1, stats.TierCounts[TierPlatinum])
	assert.Equal(t, 1, stats.TierCounts[TierBronze])
}
