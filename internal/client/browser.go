package client

import (
	"context"
	"errors"
	"sync"

	"product-catalog-browser/internal/domain"
)

// ErrStale is returned by Refresh when a newer Refresh was issued before
// this one completed. Its result was discarded.
var ErrStale = errors.New("client: response superseded by a newer request")

// Lister fetches one page of products. *Client satisfies it.
type Lister interface {
	ListProducts(ctx context.Context, p domain.QueryParams) (*domain.ListResponse, error)
}

// View is the state a listing page renders.
type View struct {
	Seq        uint64 // sequence number of the request that produced this view
	Params     domain.QueryParams
	Items      []domain.Product
	Total      int
	TotalPages int
	Loading    bool
	Err        error
}

// Browser holds the filter, sort and page state of one listing view and
// applies fetch results in request order: every Refresh gets a sequence
// number, starting a Refresh cancels the one in flight, and a response whose
// sequence is not the latest is dropped.
type Browser struct {
	lister Lister

	mu     sync.Mutex
	params domain.QueryParams
	seq    uint64
	cancel context.CancelFunc
	view   View
}

// NewBrowser creates a Browser showing the first unfiltered page.
func NewBrowser(lister Lister) *Browser {
	p := domain.DefaultQueryParams()
	return &Browser{
		lister: lister,
		params: p,
		view:   View{Params: p, Items: []domain.Product{}, TotalPages: 1},
	}
}

// Params returns the parameters the next Refresh will use.
func (b *Browser) Params() domain.QueryParams {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.params
}

// View returns a copy of the most recently applied state.
func (b *Browser) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

func (b *Browser) snapshot() View {
	v := b.view
	v.Items = domain.CloneProducts(b.view.Items)
	return v
}

// SetSearch sets the name filter. Like the other filter setters it returns
// to the first page.
func (b *Browser) SetSearch(q string) {
	b.update(func(p *domain.QueryParams) { p.Query = q })
}

func (b *Browser) SetCategory(c domain.Category) {
	b.update(func(p *domain.QueryParams) { p.Category = c })
}

func (b *Browser) SetStock(s domain.StockFilter) {
	b.update(func(p *domain.QueryParams) { p.Stock = s })
}

func (b *Browser) SetSort(k domain.SortKey) {
	b.update(func(p *domain.QueryParams) { p.Sort = k })
}

func (b *Browser) update(f func(*domain.QueryParams)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f(&b.params)
	b.params.Page = domain.DefaultPage
}

// SetPage jumps to page n. Pages below 1 are clamped to 1; pages past the
// end are allowed and render as an empty list.
func (b *Browser) SetPage(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.params.Page = max(n, 1)
}

// NextPage advances one page unless the last applied view is already on the
// last page. After a filter change the page count is unknown until the next
// Refresh, so NextPage stays put. It reports whether the page changed.
func (b *Browser) NextPage() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !sameFilters(b.params, b.view.Params) || b.params.Page >= b.view.TotalPages {
		return false
	}
	b.params.Page++
	return true
}

// PrevPage goes back one page unless already on the first. It reports
// whether the page changed.
func (b *Browser) PrevPage() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.params.Page <= 1 {
		return false
	}
	b.params.Page--
	return true
}

// sameFilters reports whether a and b select the same result set.
func sameFilters(a, b domain.QueryParams) bool {
	a.Page, b.Page = 0, 0
	return a == b
}

// Refresh fetches the current parameters and applies the result. It returns
// ErrStale, leaving the view untouched, if another Refresh started meanwhile.
// A fetch failure is recorded in View.Err; the previous items and the
// parameters that produced them stay in place.
func (b *Browser) Refresh(ctx context.Context) (View, error) {
	b.mu.Lock()
	b.seq++
	seq := b.seq
	if b.cancel != nil {
		b.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	params := b.params
	b.view.Loading = true
	b.mu.Unlock()
	defer cancel()

	res, err := b.lister.ListProducts(ctx, params)

	b.mu.Lock()
	defer b.mu.Unlock()
	if seq != b.seq {
		return b.snapshot(), ErrStale
	}
	b.cancel = nil
	b.view.Seq = seq
	b.view.Loading = false
	if err != nil {
		b.view.Err = err
		return b.snapshot(), err
	}
	b.view.Err = nil
	b.view.Params = params
	b.view.Items = res.Items
	b.view.Total = res.Total
	b.view.TotalPages = max(res.TotalPages(), 1)
	return b.snapshot(), nil
}
