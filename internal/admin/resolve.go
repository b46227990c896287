// Package admin drives the product-management table: it resolves category
// names for the listed products and runs delete and publish/unpublish
// actions while tracking which request is in flight.
package admin

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain"
)

// DefaultCategoryTimeout bounds each category lookup.
const DefaultCategoryTimeout = 5 * time.Second

const (
	UnknownCategory = "Unknown Category"
	FailedCategory  = "Failed to load"
	LoadingCategory = "Loading..."
)

type CategorySource interface {
	GetCategory(ctx context.Context, id string) (domain.Category, error)
}

// Resolution maps category ids to names. Ids whose lookup failed or timed
// out are in Failed and carry UnknownCategory in Names.
type Resolution struct {
	Names  map[string]string
	Failed map[string]bool
}

// Label is the text shown for a category id.
func (r Resolution) Label(id string) string {
	if r.Failed[id] {
		return FailedCategory
	}
	if name, ok := r.Names[id]; ok {
		return name
	}
	return LoadingCategory
}

func uniqueCategoryRefs(products []domain.Product) []string {
	seen := make(map[string]bool, len(products))
	out := make([]string, 0, len(products))
	for _, p := range products {
		if seen[p.CategoryRef] {
			continue
		}
		seen[p.CategoryRef] = true
		out = append(out, p.CategoryRef)
	}
	return out
}

// ResolveCategories looks up every distinct category of products in
// parallel. Each lookup gets its own timeout; a lookup that errors, returns
// an empty name or outlives the timeout marks its id as failed. The call
// itself never fails.
func ResolveCategories(ctx context.Context, src CategorySource, products []domain.Product, timeout time.Duration) Resolution {
	if timeout <= 0 {
		timeout = DefaultCategoryTimeout
	}
	ids := uniqueCategoryRefs(products)
	names := make([]string, len(ids))
	ok := make([]bool, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			names[i], ok[i] = lookup(ctx, src, id, timeout)
		}(i, id)
	}
	wg.Wait()

	res := Resolution{Names: make(map[string]string, len(ids)), Failed: map[string]bool{}}
	for i, id := range ids {
		if !ok[i] {
			res.Names[id] = UnknownCategory
			res.Failed[id] = true
			continue
		}
		res.Names[id] = names[i]
	}
	return res
}

// lookup stops waiting once the timeout expires even if src ignores ctx.
func lookup(ctx context.Context, src CategorySource, id string, timeout time.Duration) (string, bool) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		name string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		c, err := src.GetCategory(cctx, id)
		ch <- result{name: c.Name, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil || r.name == "" {
			return "", false
		}
		return r.name, true
	case <-cctx.Done():
		return "", false
	}
}
