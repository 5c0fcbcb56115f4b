package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"product-catalog-browser/internal/domain"
	"product-catalog-browser/internal/store"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) All(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	var products []domain.Product
	if arg0 := args.Get(0); arg0 != nil {
		products = arg0.([]domain.Product)
	}
	return products, args.Error(1)
}

func (m *MockRepository) ByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func PtrTo[T any](v T) *T {
	return &v
}

func fruitSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	s, err := NewSnapshot([]domain.Product{
		{ID: "1", Name: "Banana", Price: 10, Category: "Food", InStock: true},
		{ID: "2", Name: "Apple", Price: 5, Category: "Food", InStock: false},
	})
	require.NoError(t, err)
	return s
}

func mixedSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	var products []domain.Product
	categories := []domain.Category{"Electronics", "Home", "Clothing", "Books"}
	for i := 0; i < 23; i++ {
		products = append(products, domain.Product{
			ID:       fmt.Sprintf("p%02d", i),
			Name:     fmt.Sprintf("Item %c%d", 'A'+rune(i%7), i),
			Price:    float64((i * 37) % 11),
			Category: categories[i%len(categories)],
			InStock:  i%3 != 0,
		})
	}
	s, err := NewSnapshot(products)
	require.NoError(t, err)
	return s
}

func params(mod func(*domain.QueryParams)) domain.QueryParams {
	p := domain.DefaultQueryParams()
	if mod != nil {
		mod(&p)
	}
	return p
}

func ids(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestEngine_Query_NameAsc(t *testing.T) {
	e := NewEngine(fruitSnapshot(t), Options{})

	res, err := e.Query(context.Background(), params(nil))

	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, ids(res.Items))
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 8, res.Limit)
}

func TestEngine_Query_StockAvailable(t *testing.T) {
	e := NewEngine(fruitSnapshot(t), Options{})

	res, err := e.Query(context.Background(), params(func(p *domain.QueryParams) {
		p.Stock = domain.StockAvailable
	}))

	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(res.Items))
	assert.Equal(t, 1, res.Total)
}

func TestEngine_Query_PagePastEnd(t *testing.T) {
	e := NewEngine(fruitSnapshot(t), Options{})

	res, err := e.Query(context.Background(), params(func(p *domain.QueryParams) { p.Page = 2 }))

	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, 2, res.Total)
}

func TestEngine_Query_HugePageDoesNotPanic(t *testing.T) {
	e := NewEngine(fruitSnapshot(t), Options{})

	res, err := e.Query(context.Background(), params(func(p *domain.QueryParams) {
		p.Page = int(^uint(0) >> 1)
		p.Limit = 100
	}))

	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 2, res.Total)
}

func TestPaginate(t *testing.T) {
	products := make([]domain.Product, 10)
	for i := range products {
		products[i] = domain.Product{ID: fmt.Sprint(i)}
	}

	testCases := []struct {
		name        string
		page, limit int
		want        []string
	}{
		{"first page", 1, 4, []string{"0", "1", "2", "3"}},
		{"middle page", 2, 4, []string{"4", "5", "6", "7"}},
		{"short last page", 3, 4, []string{"8", "9"}},
		{"past end", 4, 4, []string{}},
		{"exact boundary", 2, 5, []string{"5", "6", "7", "8", "9"}},
		{"zero page", 0, 4, []string{}},
		{"zero limit", 1, 0, []string{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := paginate(products, domain.QueryParams{Page: tc.page, Limit: tc.limit})
			assert.Equal(t, tc.want, ids(got))
		})
	}
}

func TestEngine_Query_TextFilterCaseInsensitive(t *testing.T) {
	e := NewEngine(fruitSnapshot(t), Options{})

	res, err := e.Query(context.Background(), params(func(p *domain.QueryParams) { p.Query = "bAN" }))

	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(res.Items))
}

func TestEngine_Query_CategoryFilter(t *testing.T) {
	e := NewEngine(mixedSnapshot(t), Options{})

	res, err := e.Query(context.Background(), params(func(p *domain.QueryParams) {
		p.Category = "Books"
		p.Limit = 100
	}))
	require.NoError(t, err)
	require.NotEmpty(t, res.Items)
	for _, p := range res.Items {
		assert.Equal(t, domain.Category("Books"), p.Category)
	}

	res, err = e.Query(context.Background(), params(func(p *domain.QueryParams) { p.Category = "Garden" }))
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.Total)
}

func TestEngine_Query_StockFiltersArePure(t *testing.T) {
	e := NewEngine(mixedSnapshot(t), Options{})
	for _, tc := range []struct {
		stock domain.StockFilter
		want  bool
	}{
		{domain.StockAvailable, true},
		{domain.StockOutOfStock, false},
	} {
		res, err := e.Query(context.Background(), params(func(p *domain.QueryParams) {
			p.Stock = tc.stock
			p.Limit = 100
		}))
		require.NoError(t, err)
		require.NotEmpty(t, res.Items)
		for _, p := range res.Items {
			assert.Equal(t, tc.want, p.InStock, "stock=%s id=%s", tc.stock, p.ID)
		}
	}
}

func TestEngine_Query_PagesCoverFilteredSet(t *testing.T) {
	e := NewEngine(mixedSnapshot(t), Options{})
	ctx := context.Background()

	for _, key := range domain.SortKeys() {
		full, err := e.Query(ctx, params(func(p *domain.QueryParams) {
			p.Sort = key
			p.Limit = 100
		}))
		require.NoError(t, err)

		var union []string
		lastPage := domain.ListResponse{Total: full.Total, Limit: 5}.TotalPages()
		for page := 1; page <= lastPage; page++ {
			res, err := e.Query(ctx, params(func(p *domain.QueryParams) {
				p.Sort = key
				p.Limit = 5
				p.Page = page
			}))
			require.NoError(t, err)
			assert.LessOrEqual(t, len(res.Items), res.Limit)
			assert.LessOrEqual(t, len(res.Items), res.Total)
			union = append(union, ids(res.Items)...)
		}
		assert.Equal(t, ids(full.Items), union, key.String())
	}
}

func TestEngine_Query_Deterministic(t *testing.T) {
	e := NewEngine(mixedSnapshot(t), Options{})
	ctx := context.Background()

	for _, key := range domain.SortKeys() {
		p := params(func(p *domain.QueryParams) { p.Sort = key })
		first, err := e.Query(ctx, p)
		require.NoError(t, err)
		second, err := e.Query(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, first, second, key.String())
	}
}

func TestEngine_Query_StableTies(t *testing.T) {
	s, err := NewSnapshot([]domain.Product{
		{ID: "a", Name: "Mug", Price: 3, InStock: true},
		{ID: "b", Name: "Pen", Price: 3, InStock: false},
		{ID: "c", Name: "Cup", Price: 3, InStock: true},
		{ID: "d", Name: "Box", Price: 1, InStock: false},
	})
	require.NoError(t, err)
	e := NewEngine(s, Options{})
	ctx := context.Background()

	tests := []struct {
		key  domain.SortKey
		want []string
	}{
		{domain.SortPriceAsc, []string{"d", "a", "b", "c"}},
		{domain.SortPriceDesc, []string{"a", "b", "c", "d"}},
		{domain.SortStockAsc, []string{"b", "d", "a", "c"}},
		{domain.SortStockDesc, []string{"a", "c", "b", "d"}},
		{domain.SortNameAsc, []string{"d", "c", "a", "b"}},
		{domain.SortNameDesc, []string{"b", "a", "c", "d"}},
	}
	for _, tc := range tests {
		res, err := e.Query(ctx, params(func(p *domain.QueryParams) { p.Sort = tc.key }))
		require.NoError(t, err)
		assert.Equal(t, tc.want, ids(res.Items), tc.key.String())
	}
}

func TestEngine_Query_NameDescIsReverseOfNameAsc(t *testing.T) {
	e := NewEngine(mixedSnapshot(t), Options{})
	ctx := context.Background()

	asc, err := e.Query(ctx, params(func(p *domain.QueryParams) { p.Limit = 100 }))
	require.NoError(t, err)
	desc, err := e.Query(ctx, params(func(p *domain.QueryParams) {
		p.Limit = 100
		p.Sort = domain.SortNameDesc
	}))
	require.NoError(t, err)

	reversed := ids(asc.Items)
	slices.Reverse(reversed)
	assert.Equal(t, reversed, ids(desc.Items))
}

func TestEngine_Query_LocaleAwareNames(t *testing.T) {
	s, err := NewSnapshot([]domain.Product{
		{ID: "1", Name: "zebra"},
		{ID: "2", Name: "Éclair"},
		{ID: "3", Name: "apple"},
		{ID: "4", Name: "Banana"},
	})
	require.NoError(t, err)
	e := NewEngine(s, Options{})

	res, err := e.Query(context.Background(), params(nil))

	require.NoError(t, err)
	assert.Equal(t, []string{"3", "4", "2", "1"}, ids(res.Items))
}

func TestEngine_Query_UnknownSortKey(t *testing.T) {
	e := NewEngine(fruitSnapshot(t), Options{})

	_, err := e.Query(context.Background(), params(func(p *domain.QueryParams) { p.Sort = domain.SortKey(42) }))

	assert.True(t, errors.Is(err, domain.ErrUnknownSortKey))
}

func TestEngine_Query_ResultsDoNotAliasSnapshot(t *testing.T) {
	s, err := NewSnapshot([]domain.Product{
		{ID: "1", Name: "Lamp", Description: PtrTo("warm light")},
	})
	require.NoError(t, err)
	e := NewEngine(s, Options{})
	ctx := context.Background()

	res, err := e.Query(ctx, params(nil))
	require.NoError(t, err)
	res.Items[0].Name = "Changed"
	*res.Items[0].Description = "changed"

	again, err := e.Lookup(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Lamp", again.Name)
	assert.Equal(t, "warm light", *again.Description)
}

func TestEngine_Lookup(t *testing.T) {
	e := NewEngine(fruitSnapshot(t), Options{})

	p, err := e.Lookup(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "Apple", p.Name)

	p, err = e.Lookup(context.Background(), "3")
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, ErrProductNotFound))
}

func TestEngine_DelayHonoursCancellation(t *testing.T) {
	e := NewEngine(fruitSnapshot(t), Options{ListDelay: time.Minute, LookupDelay: time.Minute})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := e.Query(ctx, params(nil))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 5*time.Second)

	_, err = e.Lookup(ctx, "1")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestEngine_Facets(t *testing.T) {
	e := NewEngine(mixedSnapshot(t), Options{})

	f, err := e.Facets(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.Category{"Books", "Clothing", "Electronics", "Home"}, f.Categories)
	assert.Equal(t, 23, f.Availability.InStock+f.Availability.OutOfStock)
	assert.Equal(t, 8, f.Availability.OutOfStock)
}

func TestEngine_RepositoryError(t *testing.T) {
	repo := new(MockRepository)
	boom := errors.New("boom")
	repo.On("All", mock.Anything).Return(nil, boom).Twice()
	e := NewEngine(repo, Options{})

	_, err := e.Query(context.Background(), params(nil))
	assert.True(t, errors.Is(err, boom))
	_, err = e.Categories(context.Background())
	assert.True(t, errors.Is(err, boom))

	repo.AssertExpectations(t)
}

func TestNewSnapshot_DuplicateID(t *testing.T) {
	_, err := NewSnapshot([]domain.Product{{ID: "1"}, {ID: "1"}})
	assert.True(t, errors.Is(err, ErrDuplicateID))
}

func TestNewSnapshot_CopiesInput(t *testing.T) {
	in := []domain.Product{{ID: "1", Name: "Desk"}}
	s, err := NewSnapshot(in)
	require.NoError(t, err)

	in[0].Name = "Chair"

	p, err := s.ByID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Desk", p.Name)
	assert.Equal(t, 1, s.Len())
}

func TestLoadSnapshot_DefaultFixture(t *testing.T) {
	s, err := LoadSnapshot(context.Background(), store.NewFixtureSource(""))
	require.NoError(t, err)
	assert.Equal(t, 24, s.Len())

	e := NewEngine(s, Options{})
	res, err := e.Query(context.Background(), domain.DefaultQueryParams())
	require.NoError(t, err)
	assert.Len(t, res.Items, domain.DefaultLimit)
	assert.Equal(t, 24, res.Total)
	assert.Equal(t, 3, res.TotalPages())
	assert.Equal(t, "Atomic Habits", res.Items[0].Name)
}

func TestLoadSnapshot_SourceError(t *testing.T) {
	_, err := LoadSnapshot(context.Background(), store.NewFixtureSource("/nonexistent/catalog.json"))
	assert.Error(t, err)
}
