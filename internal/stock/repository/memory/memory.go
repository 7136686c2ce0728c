// Package memory provides an in-memory implementation of the ledger
// repositories. It backs the usecase and handler tests and mirrors the
// locking discipline of the SQL implementation: Do serializes transactions
// and restores a snapshot on error, so all-or-nothing behavior can be
// asserted without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/poslink/stock-service/internal/stock/domain"
)

type Repository struct {
	mu        sync.Mutex
	lots      map[string]*domain.PurchaseLot
	stores    map[string]*domain.Store
	products  map[string]*domain.Product
	transfers map[string]*domain.Transfer
	items     []domain.TransferItem
}

func New() *Repository {
	return &Repository{
		lots:      make(map[string]*domain.PurchaseLot),
		stores:    make(map[string]*domain.Store),
		products:  make(map[string]*domain.Product),
		transfers: make(map[string]*domain.Transfer),
	}
}

// SeedStore registers a store.
func (r *Repository) SeedStore(store domain.Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := store
	r.stores[store.ID] = &s
}

// SeedProduct registers a product.
func (r *Repository) SeedProduct(product domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := product
	r.products[product.ID] = &p
}

// SeedLot inserts a lot directly into the ledger.
func (r *Repository) SeedLot(lot domain.PurchaseLot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := lot
	r.lots[lot.ID] = &l
}

// Lot returns a copy of the stored lot, or nil.
func (r *Repository) Lot(id string) *domain.PurchaseLot {
	r.mu.Lock()
	defer r.mu.Unlock()
	lot, ok := r.lots[id]
	if !ok {
		return nil
	}
	c := *lot
	return &c
}

// Lots returns copies of all lots for a (store, product), FIFO ordered.
func (r *Repository) Lots(storeID, productID string) []domain.PurchaseLot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lotsLocked(storeID, productID, false)
}

// Items returns copies of all transfer items in insertion order.
func (r *Repository) Items() []domain.TransferItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.TransferItem, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Repository) lotsLocked(storeID, productID string, availableOnly bool) []domain.PurchaseLot {
	var out []domain.PurchaseLot
	for _, lot := range r.lots {
		if lot.StoreID != storeID || lot.ProductID != productID {
			continue
		}
		if availableOnly && lot.RemainingQuantity <= 0 {
			continue
		}
		out = append(out, *lot)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ImportDate.Equal(out[j].ImportDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].ImportDate.Before(out[j].ImportDate)
	})
	return out
}

func (r *Repository) Create(ctx context.Context, lot *domain.PurchaseLot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := *lot
	r.lots[lot.ID] = &l
	return nil
}

func (r *Repository) FindByStoreAndProduct(ctx context.Context, storeID, productID string) ([]domain.PurchaseLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lotsLocked(storeID, productID, false), nil
}

func (r *Repository) FindAvailableByStoreAndProduct(ctx context.Context, storeID, productID string) ([]domain.PurchaseLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lotsLocked(storeID, productID, true), nil
}

func (r *Repository) AvailableQuantity(ctx context.Context, storeID, productID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, lot := range r.lotsLocked(storeID, productID, true) {
		total += lot.RemainingQuantity
	}
	return total, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	store, ok := r.stores[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *store
	return &c, nil
}

// Stores exposes the repository as a domain.StoreRepository.
func (r *Repository) Stores() domain.StoreRepository { return storeView{r} }

// Products exposes the repository as a domain.ProductRepository.
func (r *Repository) Products() domain.ProductRepository { return productView{r} }

// Transfers exposes the repository as a domain.TransferRepository.
func (r *Repository) Transfers() domain.TransferRepository { return transferView{r} }

type storeView struct{ r *Repository }

func (v storeView) FindByID(ctx context.Context, id string) (*domain.Store, error) {
	return v.r.FindByID(ctx, id)
}

type productView struct{ r *Repository }

func (v productView) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()
	product, ok := v.r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *product
	return &c, nil
}

type transferView struct{ r *Repository }

func (v transferView) FindByID(ctx context.Context, id string) (*domain.Transfer, error) {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()
	transfer, ok := v.r.transfers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *transfer
	return &c, nil
}

func (v transferView) FindItems(ctx context.Context, transferID string) ([]domain.TransferItem, error) {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()
	var out []domain.TransferItem
	for _, item := range v.r.items {
		if item.TransferID == transferID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (v transferView) List(ctx context.Context, limit, offset int, numberPrefix string) ([]domain.Transfer, error) {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()
	var all []domain.Transfer
	for _, transfer := range v.r.transfers {
		if numberPrefix != "" && !strings.HasPrefix(transfer.TransferNumber, numberPrefix) {
			continue
		}
		all = append(all, *transfer)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].TransferNumber > all[j].TransferNumber })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// Do runs fn against the live state under the repository lock, restoring a
// snapshot if fn fails. Mirrors the all-or-nothing contract of the SQL
// transaction.
func (r *Repository) Do(ctx context.Context, fn func(tx domain.TransferTx) error) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := r.snapshotLocked()
	defer func() {
		if p := recover(); p != nil {
			r.restoreLocked(snapshot)
			panic(p)
		}
		if err != nil {
			r.restoreLocked(snapshot)
		}
	}()

	return fn(&memoryTx{r: r})
}

type state struct {
	lots      map[string]*domain.PurchaseLot
	transfers map[string]*domain.Transfer
	items     []domain.TransferItem
}

func (r *Repository) snapshotLocked() state {
	s := state{
		lots:      make(map[string]*domain.PurchaseLot, len(r.lots)),
		transfers: make(map[string]*domain.Transfer, len(r.transfers)),
		items:     make([]domain.TransferItem, len(r.items)),
	}
	for id, lot := range r.lots {
		c := *lot
		s.lots[id] = &c
	}
	for id, transfer := range r.transfers {
		c := *transfer
		s.transfers[id] = &c
	}
	copy(s.items, r.items)
	return s
}

func (r *Repository) restoreLocked(s state) {
	r.lots = s.lots
	r.transfers = s.transfers
	r.items = s.items
}

type memoryTx struct {
	r *Repository
}

func (t *memoryTx) LockAvailableLots(storeID, productID string) ([]domain.PurchaseLot, error) {
	return t.r.lotsLocked(storeID, productID, true), nil
}

func (t *memoryTx) UpdateLotRemaining(lotID string, remaining int64) error {
	lot, ok := t.r.lots[lotID]
	if !ok {
		return domain.ErrNotFound
	}
	lot.RemainingQuantity = remaining
	lot.UpdatedAt = time.Now()
	return nil
}

func (t *memoryTx) CreateLot(lot *domain.PurchaseLot) error {
	l := *lot
	t.r.lots[lot.ID] = &l
	return nil
}

func (t *memoryTx) CreateTransfer(transfer *domain.Transfer) error {
	c := *transfer
	t.r.transfers[transfer.ID] = &c
	return nil
}

func (t *memoryTx) CreateTransferItems(items []domain.TransferItem) error {
	t.r.items = append(t.r.items, items...)
	return nil
}

func (t *memoryTx) NextTransferNumber(at time.Time) (string, error) {
	prefix := domain.TransferNumberPrefix(at)
	last := ""
	for _, transfer := range t.r.transfers {
		if strings.HasPrefix(transfer.TransferNumber, prefix) && transfer.TransferNumber > last {
			last = transfer.TransferNumber
		}
	}
	return domain.NextTransferNumber(prefix, last)
}
