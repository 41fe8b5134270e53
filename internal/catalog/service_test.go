package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	products  map[int64]Product
	byBarcode map[string]int64
	nextID    int64

	createErr error
	updateErr error
}

func newMockRepository(products ...Product) *mockRepository {
	m := &mockRepository{
		products:  make(map[int64]Product),
		byBarcode: make(map[string]int64),
	}
	for _, p := range products {
		m.products[p.ID] = p
		m.byBarcode[p.Barcode] = p.ID
		if p.ID > m.nextID {
			m.nextID = p.ID
		}
	}
	return m
}

func (m *mockRepository) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	var out []Product
	for _, p := range m.products {
		if filters.Category != "" && p.Category != filters.Category {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (m *mockRepository) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	id, ok := m.byBarcode[barcode]
	if !ok {
		return Product{}, ErrNotFound
	}
	return m.products[id], nil
}

func (m *mockRepository) Create(ctx context.Context, p Product) (Product, error) {
	if m.createErr != nil {
		return Product{}, m.createErr
	}
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.products[p.ID] = p
	m.byBarcode[p.Barcode] = p.ID
	return p, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["price"]; ok {
		p.Price = v.(float64)
	}
	if v, ok := updates["stock"]; ok {
		p.Stock = v.(int)
	}
	if v, ok := updates["is_banned"]; ok {
		p.IsBanned = v.(bool)
	}
	m.products[id] = p
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.byBarcode, m.products[id].Barcode)
	delete(m.products, id)
	return nil
}

func (m *mockRepository) LowStock(ctx context.Context) ([]Product, error) {
	var out []Product
	for _, p := range m.products {
		if p.LowOnStock() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRepository) Expiring(ctx context.Context, before time.Time) ([]Product, error) {
	var out []Product
	for _, p := range m.products {
		if p.ExpiryDate != nil && !p.ExpiryDate.After(before) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRepository) DecrementStock(ctx context.Context, id int64, quantity int) error {
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Stock -= quantity
	if p.Stock < 0 {
		p.Stock = 0
	}
	m.products[id] = p
	return nil
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateRejectsDuplicateBarcode(t *testing.T) {
	repo := newMockRepository(Product{ID: 1, Barcode: "8901001", Name: "Dal", Category: "Grocery"})
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateProductRequest{
		Barcode:  "8901001",
		Name:     "Other Dal",
		Category: "Grocery",
		Unit:     "kg",
	})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCreateTrimsFields(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), CreateProductRequest{
		Barcode:  " 8901002 ",
		Name:     "  Atta ",
		Category: " Grocery ",
		Price:    45,
		Unit:     "kg",
	})
	require.NoError(t, err)
	assert.Equal(t, "8901002", p.Barcode)
	assert.Equal(t, "Atta", p.Name)
	assert.Equal(t, "Grocery", p.Category)
}

func TestUpdateAppliesPartialFields(t *testing.T) {
	repo := newMockRepository(Product{ID: 1, Barcode: "8901001", Name: "Dal", Price: 100, Stock: 10})
	svc := NewService(repo)

	price := 110.0
	updated, err := svc.Update(context.Background(), 1, UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 110.0, updated.Price)
	assert.Equal(t, 10, updated.Stock)
}

func TestUpdateUnknownProduct(t *testing.T) {
	svc := NewService(newMockRepository())
	price := 10.0
	_, err := svc.Update(context.Background(), 42, UpdateProductRequest{Price: &price})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLowStockUsesMinStockFloor(t *testing.T) {
	repo := newMockRepository(
		Product{ID: 1, Barcode: "a", Name: "Dal", Stock: 2, MinStock: 5},
		Product{ID: 2, Barcode: "b", Name: "Atta", Stock: 5, MinStock: 5},
		Product{ID: 3, Barcode: "c", Name: "Sugar", Stock: 9, MinStock: 5},
	)
	svc := NewService(repo)

	low, err := svc.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 2)
	for _, p := range low {
		assert.LessOrEqual(t, p.Stock, p.MinStock)
	}
}

func TestDecrementStockValidatesQuantity(t *testing.T) {
	repo := newMockRepository(Product{ID: 1, Barcode: "a", Name: "Dal", Stock: 5})
	svc := NewService(repo)

	err := svc.DecrementStock(context.Background(), 1, 0)
	assert.Error(t, err)

	require.NoError(t, svc.DecrementStock(context.Background(), 1, 3))
	p, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)
}
