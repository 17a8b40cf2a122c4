package memory

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/internal/core/ports"
)

func TestUserRepository_EmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	_, err := repo.Create(ctx, &domain.User{ID: "1", Email: "a@b.com"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{ID: "2", Email: "A@B.COM"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	u, err := repo.FindByEmail(ctx, " A@b.Com ")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)
}

func TestUserRepository_UpdateMovesEmailIndex(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	_, _ = repo.Create(ctx, &domain.User{ID: "1", Email: "a@b.com"})
	_, _ = repo.Create(ctx, &domain.User{ID: "2", Email: "c@d.com"})

	_, err := repo.Update(ctx, &domain.User{ID: "1", Email: "c@d.com"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = repo.Update(ctx, &domain.User{ID: "1", Email: "new@b.com", Name: "A"})
	require.NoError(t, err)

	_, err = repo.FindByEmail(ctx, "a@b.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	u, err := repo.FindByEmail(ctx, "new@b.com")
	require.NoError(t, err)
	assert.Equal(t, "A", u.Name)

	_, err = repo.Update(ctx, &domain.User{ID: "ghost", Email: "x@y.com"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	_, _ = repo.Create(ctx, &domain.User{ID: "1", Email: "a@b.com", Name: "A"})

	u, _ := repo.FindByID(ctx, "1")
	u.Name = "mutated"

	again, _ := repo.FindByID(ctx, "1")
	assert.Equal(t, "A", again.Name)

	users, _ := repo.List(ctx)
	require.Len(t, users, 1)
}

func product(id, category, price string) *domain.Product {
	return &domain.Product{ID: id, Name: "P" + id, Category: category, Price: decimal.RequireFromString(price), Stock: 1}
}

func TestProductRepository_ListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	for _, p := range []*domain.Product{product("c", "Mixers", "3"), product("a", "Decks", "1"), product("b", "Mixers", "2")} {
		require.NoError(t, repo.Create(ctx, p))
	}

	all, err := repo.List(ctx, ports.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, ids(all))

	mixers, _ := repo.List(ctx, ports.ProductFilter{Category: "mixers", Sort: ports.SortPriceAsc})
	assert.Equal(t, []string{"b", "c"}, ids(mixers))

	cats, _ := repo.Categories(ctx)
	assert.Equal(t, []string{"Decks", "Mixers"}, cats)

	n, _ := repo.Count(ctx)
	assert.EqualValues(t, 3, n)
}

func TestProductRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	require.NoError(t, repo.Create(ctx, product("a", "Decks", "1")))

	p, _ := repo.FindByID(ctx, "a")
	p.Stock = 9
	require.NoError(t, repo.Update(ctx, p))

	got, _ := repo.FindByID(ctx, "a")
	assert.Equal(t, 9, got.Stock)

	assert.ErrorIs(t, repo.Update(ctx, product("zz", "", "1")), domain.ErrProductNotFound)

	deleted, err := repo.Delete(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", deleted.ID)

	_, err = repo.Delete(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	all, _ := repo.List(ctx, ports.ProductFilter{})
	assert.Empty(t, all)
}

func TestProductRepository_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	require.NoError(t, repo.Create(ctx, product("a", "Decks", "1")))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			p := product("a", "Decks", fmt.Sprintf("%d", n))
			_ = repo.Update(ctx, p)
		}(i)
		go func() {
			defer wg.Done()
			_, _ = repo.List(ctx, ports.ProductFilter{})
		}()
	}
	wg.Wait()

	p, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.False(t, p.Price.IsNegative())
}

func ids(ps []*domain.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestOrderRepository_ListNewestFirstWithPaging(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	for i := 0; i < 5; i++ {
		user := "u1"
		if i%2 == 1 {
			user = "u2"
		}
		require.NoError(t, repo.Create(ctx, &domain.Order{ID: fmt.Sprintf("o%d", i), UserID: user}))
	}

	page, total, err := repo.List(ctx, ports.OrderFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "o4", page[0].ID)
	assert.Equal(t, "o3", page[1].ID)

	page, total, _ = repo.List(ctx, ports.OrderFilter{UserID: "u1", Page: 2, Limit: 2})
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, "o0", page[0].ID)

	page, total, _ = repo.List(ctx, ports.OrderFilter{Page: math.MaxInt, Limit: 100})
	assert.EqualValues(t, 5, total)
	assert.Empty(t, page)
}

func TestOrderRepository_RejectsDuplicateIDAndIsolatesItems(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	o := &domain.Order{ID: "o1", Items: []domain.OrderLine{{ProductID: "p", Quantity: 1}}}
	require.NoError(t, repo.Create(ctx, o))
	assert.Error(t, repo.Create(ctx, o))

	o.Items[0].Quantity = 99
	stored, err := repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Items[0].Quantity)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestIdempotencyStore_ReserveOnceUntilExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	id, ok, err := store.Reserve(ctx, "k", "o1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "o1", id)

	id, ok, _ = store.Reserve(ctx, "k", "o2")
	assert.False(t, ok)
	assert.Equal(t, "o1", id)

	id, found, _ := store.Lookup(ctx, "k")
	assert.True(t, found)
	assert.Equal(t, "o1", id)

	now = now.Add(time.Minute)
	_, found, _ = store.Lookup(ctx, "k")
	assert.False(t, found)

	_, ok, _ = store.Reserve(ctx, "k", "o3")
	assert.True(t, ok)
	require.NoError(t, store.Release(ctx, "k"))
	_, found, _ = store.Lookup(ctx, "k")
	assert.False(t, found)
}
