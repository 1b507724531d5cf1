package usecase

import (
	"context"

	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
)

// In-memory collaborators for the use case tests.

type fakeCartStore struct {
	carts   map[string]*domain.Cart
	updates int
	deletes int
}

func newFakeCartStore(carts ...*domain.Cart) *fakeCartStore {
	m := make(map[string]*domain.Cart)
	for _, c := range carts {
		m[c.ID] = c
	}
	return &fakeCartStore{carts: m}
}

func (f *fakeCartStore) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	c, ok := f.carts[id]
	if !ok {
		return nil, domain.NotFoundf("cart %s does not exist", id)
	}
	return c, nil
}

func (f *fakeCartStore) Create(_ context.Context, c *domain.Cart) error {
	f.carts[c.ID] = c
	return nil
}

func (f *fakeCartStore) Update(_ context.Context, c *domain.Cart) error {
	f.carts[c.ID] = c
	f.updates++
	return nil
}

func (f *fakeCartStore) Delete(_ context.Context, id string) error {
	delete(f.carts, id)
	f.deletes++
	return nil
}

type fakeSaleStore struct {
	sales   map[string]*domain.Sale
	updates int
	failErr error
}

func newFakeSaleStore(sales ...*domain.Sale) *fakeSaleStore {
	m := make(map[string]*domain.Sale)
	for _, s := range sales {
		m[s.ID] = s
	}
	return &fakeSaleStore{sales: m}
}

func (f *fakeSaleStore) GetByID(_ context.Context, id string) (*domain.Sale, error) {
	s, ok := f.sales[id]
	if !ok {
		return nil, domain.NotFoundf("sale %s does not exist", id)
	}
	cp := *s
	cp.Items = append([]domain.SaleItem(nil), s.Items...)
	return &cp, nil
}

func (f *fakeSaleStore) Create(_ context.Context, s *domain.Sale) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.sales[s.ID] = s
	return nil
}

func (f *fakeSaleStore) Update(_ context.Context, s *domain.Sale) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.sales[s.ID] = s
	f.updates++
	return nil
}

// fakeCheckoutStore records one transactional checkout commit.
type fakeCheckoutStore struct {
	sale    *domain.Sale
	cartID  string
	event   []byte
	failErr error
}

func (f *fakeCheckoutStore) CreateSaleRetireCart(_ context.Context, sale *domain.Sale, cartID string, event []byte) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.sale = sale
	f.cartID = cartID
	f.event = event
	return nil
}

type fakeCatalog struct {
	products map[string]domain.Product
}

func newFakeCatalog(products ...domain.Product) *fakeCatalog {
	m := make(map[string]domain.Product)
	for _, p := range products {
		m[p.ID] = p
	}
	return &fakeCatalog{products: m}
}

func (f *fakeCatalog) GetByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) List(_ context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

type fakeBus struct {
	events  []Event
	failErr error
}

func (f *fakeBus) Publish(_ context.Context, e Event) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeBus) names() []string {
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.EventName())
	}
	return out
}

type fakeIdem struct {
	locks     map[string]bool
	values    map[string]string
	recallErr error
}

func newFakeIdem() *fakeIdem {
	return &fakeIdem{locks: map[string]bool{}, values: map[string]string{}}
}

func (f *fakeIdem) TryLock(_ context.Context, scope, key string) (bool, error) {
	k := scope + ":" + key
	if f.locks[k] {
		return false, nil
	}
	f.locks[k] = true
	return true, nil
}

func (f *fakeIdem) Remember(_ context.Context, scope, key, value string) error {
	f.values[scope+":"+key] = value
	return nil
}

func (f *fakeIdem) Recall(_ context.Context, scope, key string) (string, bool, error) {
	if f.recallErr != nil {
		return "", false, f.recallErr
	}
	v, ok := f.values[scope+":"+key]
	return v, ok, nil
}

type fakeCache struct {
	statuses map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{statuses: map[string]string{}} }

func (f *fakeCache) SetStatus(_ context.Context, saleID, status string) error {
	f.statuses[saleID] = status
	return nil
}

func (f *fakeCache) GetStatus(_ context.Context, saleID string) (string, bool, error) {
	v, ok := f.statuses[saleID]
	return v, ok, nil
}
