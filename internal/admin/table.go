package admin

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"
)

var (
	// ErrBusy is returned when the same kind of action is already running.
	ErrBusy = errors.New("another request is in flight")
	// ErrDeclined is returned when the confirmation hook refuses a delete.
	ErrDeclined = errors.New("action declined")
)

const PlaceholderThumbnail = "https://via.placeholder.com/50"

const (
	MsgDeleted      = "Product deleted"
	MsgDeleteFailed = "Failed to delete product"
	MsgPublished    = "Product is now on sale"
	MsgPaused       = "Product sales paused"
	MsgStatusFailed = "Failed to update product status"
)

type ProductAPI interface {
	RemoveProduct(ctx context.Context, id string) error
	MarkProductContinue(ctx context.Context, id string) error
	MarkProductStop(ctx context.Context, id string) error
}

// Notifier receives the user-facing outcome of each action.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type ProductTable struct {
	cats   CategorySource
	api    ProductAPI
	notify Notifier

	Timeout time.Duration
	// Confirm, when set, is asked before each delete.
	Confirm         func(productID string) bool
	OnDeleted       func(productID string)
	OnStatusChanged func(productID string, published bool)

	mu            sync.Mutex
	products      []domain.Product
	categories    Resolution
	deleting      bool
	selectedID    string
	loadingStatus string
}

func NewProductTable(products []domain.Product, cats CategorySource, api ProductAPI, notify Notifier) *ProductTable {
	return &ProductTable{
		cats:       cats,
		api:        api,
		notify:     notify,
		Timeout:    DefaultCategoryTimeout,
		products:   append([]domain.Product(nil), products...),
		categories: Resolution{Names: map[string]string{}, Failed: map[string]bool{}},
	}
}

// SetProducts replaces the listed products. Call LoadCategories afterwards
// to resolve their category names.
func (t *ProductTable) SetProducts(products []domain.Product) {
	t.mu.Lock()
	t.products = append([]domain.Product(nil), products...)
	t.mu.Unlock()
}

func (t *ProductTable) Products() []domain.Product {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Product(nil), t.products...)
}

// LoadCategories resolves category names for the current products. It does
// nothing when the table is empty.
func (t *ProductTable) LoadCategories(ctx context.Context) {
	products := t.Products()
	if len(products) == 0 {
		return
	}
	res := ResolveCategories(ctx, t.cats, products, t.Timeout)
	t.mu.Lock()
	t.categories = res
	t.mu.Unlock()
}

func (t *ProductTable) Categories() Resolution {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.categories
}

// Delete removes a product through the API. Only one delete runs at a time;
// a second call while one is in flight returns ErrBusy without touching the
// API. The in-flight flags are cleared whatever the outcome.
func (t *ProductTable) Delete(ctx context.Context, id string) error {
	t.mu.Lock()
	if t.deleting {
		t.mu.Unlock()
		return ErrBusy
	}
	t.deleting = true
	t.selectedID = id
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.deleting = false
		t.selectedID = ""
		t.mu.Unlock()
	}()

	if t.Confirm != nil && !t.Confirm(id) {
		return ErrDeclined
	}

	if err := t.api.RemoveProduct(ctx, id); err != nil {
		t.notify.Error(MsgDeleteFailed)
		return err
	}

	t.mu.Lock()
	kept := t.products[:0]
	for _, p := range t.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	t.products = kept
	t.mu.Unlock()

	t.notify.Success(MsgDeleted)
	if t.OnDeleted != nil {
		t.OnDeleted(id)
	}
	return nil
}

// SetStatus publishes (continue) or unpublishes (stop) a product. One status
// change runs at a time; overlapping calls get ErrBusy.
func (t *ProductTable) SetStatus(ctx context.Context, id string, publish bool) error {
	t.mu.Lock()
	if t.loadingStatus != "" {
		t.mu.Unlock()
		return ErrBusy
	}
	t.loadingStatus = id
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.loadingStatus = ""
		t.mu.Unlock()
	}()

	var err error
	if publish {
		err = t.api.MarkProductContinue(ctx, id)
	} else {
		err = t.api.MarkProductStop(ctx, id)
	}
	if err != nil {
		t.notify.Error(MsgStatusFailed)
		return err
	}

	t.mu.Lock()
	for i := range t.products {
		if t.products[i].ID == id {
			t.products[i].IsPublished = publish
		}
	}
	t.mu.Unlock()

	if t.OnStatusChanged != nil {
		t.OnStatusChanged(id, publish)
	}
	if publish {
		t.notify.Success(MsgPublished)
	} else {
		t.notify.Success(MsgPaused)
	}
	return nil
}

// InFlight reports the running delete (if any) and the product whose status
// is being changed ("" when idle).
func (t *ProductTable) InFlight() (deleting bool, deletingID, statusID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deleting, t.selectedID, t.loadingStatus
}

// Row is one display line of the table.
type Row struct {
	ID            string
	Name          string
	ThumbnailURL  string
	Stock         int
	Price         string
	Category      string
	Colors        string
	Sizes         string
	AddedOn       string
	Published     bool
	Deleting      bool
	StatusLoading bool
}

func (t *ProductTable) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := make([]Row, 0, len(t.products))
	for _, p := range t.products {
		thumb := p.ThumbnailURL
		if thumb == "" {
			thumb = PlaceholderThumbnail
		}
		rows = append(rows, Row{
			ID:            p.ID,
			Name:          p.Name,
			ThumbnailURL:  thumb,
			Stock:         p.TotalStock(),
			Price:         FormatVND(p.BasePrice()),
			Category:      t.categories.Label(p.CategoryRef),
			Colors:        strings.Join(p.ColorNames(), ", "),
			Sizes:         strings.Join(p.SizeNames(), ", "),
			AddedOn:       FormatDate(p.CreatedAt),
			Published:     p.IsPublished,
			Deleting:      t.deleting && t.selectedID == p.ID,
			StatusLoading: t.loadingStatus == p.ID,
		})
	}
	return rows
}
