package compliance

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	banned  map[string]BannedMedicine
	alerts  []RegulatoryAlert
	nextID  int64
	findErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{banned: make(map[string]BannedMedicine), nextID: 1}
}

func (m *mockRepository) ListBanned(_ context.Context) ([]BannedMedicine, error) {
	items := make([]BannedMedicine, 0, len(m.banned))
	for _, item := range m.banned {
		items = append(items, item)
	}
	return items, nil
}

func (m *mockRepository) FindBannedByName(_ context.Context, name string) (BannedMedicine, error) {
	if m.findErr != nil {
		return BannedMedicine{}, m.findErr
	}
	item, ok := m.banned[strings.ToLower(name)]
	if !ok {
		return BannedMedicine{}, ErrNotFound
	}
	return item, nil
}

func (m *mockRepository) AddBanned(_ context.Context, item BannedMedicine) (BannedMedicine, error) {
	key := strings.ToLower(item.Name)
	if _, ok := m.banned[key]; ok {
		return BannedMedicine{}, ErrAlreadyExists
	}
	item.ID = m.nextID
	m.nextID++
	item.CreatedAt = time.Now()
	m.banned[key] = item
	return item, nil
}

func (m *mockRepository) RemoveBanned(_ context.Context, id int64) error {
	for key, item := range m.banned {
		if item.ID == id {
			delete(m.banned, key)
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockRepository) ListAlerts(_ context.Context, unreadOnly bool) ([]RegulatoryAlert, error) {
	if !unreadOnly {
		return m.alerts, nil
	}
	unread := make([]RegulatoryAlert, 0)
	for _, a := range m.alerts {
		if !a.IsRead {
			unread = append(unread, a)
		}
	}
	return unread, nil
}

func (m *mockRepository) CreateAlert(_ context.Context, alert RegulatoryAlert) (RegulatoryAlert, error) {
	alert.ID = m.nextID
	m.nextID++
	alert.CreatedAt = time.Now()
	m.alerts = append(m.alerts, alert)
	return alert, nil
}

func (m *mockRepository) MarkAlertRead(_ context.Context, id int64) error {
	for i := range m.alerts {
		if m.alerts[i].ID == id {
			m.alerts[i].IsRead = true
			return nil
		}
	}
	return ErrNotFound
}

func newTestService(repo Repository) *Service {
	fixed := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	return NewService(slog.New(slog.DiscardHandler), repo, func() time.Time { return fixed })
}

func TestIsBannedMatchesCaseInsensitive(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	_, err := svc.AddBanned(context.Background(), AddBannedMedicineRequest{
		Name: "Oxytocin", Reason: "banned for veterinary misuse", Source: "CDSCO",
	})
	require.NoError(t, err)

	banned, err := svc.IsBanned(context.Background(), "oxytocin")
	require.NoError(t, err)
	assert.True(t, banned)

	banned, err = svc.IsBanned(context.Background(), "OXYTOCIN ")
	require.NoError(t, err)
	assert.True(t, banned)

	banned, err = svc.IsBanned(context.Background(), "Paracetamol")
	require.NoError(t, err)
	assert.False(t, banned)
}

func TestAddBannedDefaultsBannedDate(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	created, err := svc.AddBanned(context.Background(), AddBannedMedicineRequest{
		Name: "  Phenylpropanolamine  ", Reason: "stroke risk", Source: "CDSCO",
	})
	require.NoError(t, err)
	assert.Equal(t, "Phenylpropanolamine", created.Name)
	assert.Equal(t, time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC), created.BannedDate)
}

func TestAddBannedRejectsDuplicate(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	_, err := svc.AddBanned(context.Background(), AddBannedMedicineRequest{
		Name: "Oxytocin", Reason: "banned", Source: "CDSCO",
	})
	require.NoError(t, err)

	_, err = svc.AddBanned(context.Background(), AddBannedMedicineRequest{
		Name: "oxytocin", Reason: "banned", Source: "CDSCO",
	})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestAlertLifecycle(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	created, err := svc.CreateAlert(context.Background(), CreateAlertRequest{
		Title:       "Batch recall",
		Description: "Recall of batch B-104 ordered by the state drug controller.",
		Source:      "State FDA",
		Severity:    "critical",
	})
	require.NoError(t, err)
	assert.False(t, created.IsRead)

	unread, err := svc.ListAlerts(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, unread, 1)

	require.NoError(t, svc.MarkAlertRead(context.Background(), created.ID))

	unread, err = svc.ListAlerts(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	all, err := svc.ListAlerts(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsRead)
}

func TestMarkAlertReadUnknownID(t *testing.T) {
	svc := newTestService(newMockRepository())
	assert.ErrorIs(t, svc.MarkAlertRead(context.Background(), 999), ErrNotFound)
}
