package adapters

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"courier-dispatch/internal/core/cache"
	"courier-dispatch/internal/core/target"
	"courier-dispatch/internal/features/promotions/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
promotions:
  - id: cairo-free
    name: Free delivery in Cairo
    sub_type: free_delivery
    scope:
      country_id: "1"
      city_id: "7"
    min_order_amount: 5000
    usage_limit: 1000
    start_date: 2024-05-01
    end_date: 2024-12-31T23:59:59Z
  - id: happy-hour
    sub_type: discount_delivery
    discount_percent: "25.5"
    is_active: false
  - id: coffee
    sub_type: fixed_price
    overrides:
      - target: product:espresso
        price: "2.50"
      - target: store:s1
        price: 8
  - id: combo
    sub_type: bundle
    products: [burger, fries]
    bundle_price: "9.99"
`

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "promotions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestFileRepository_List(t *testing.T) {
	repo := NewFileRepository(writeCatalog(t, sampleCatalog))

	promos, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, promos, 4)

	free := promos[0]
	assert.Equal(t, "cairo-free", free.ID)
	assert.Equal(t, domain.FreeDelivery, free.SubType)
	assert.Equal(t, domain.GeoScope{CountryID: "1", CityID: "7"}, free.Scope)
	require.NotNil(t, free.MinOrderAmount)
	assert.Equal(t, int64(5000), *free.MinOrderAmount)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), free.StartDate)
	require.NotNil(t, free.EndDate)
	assert.Equal(t, time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), free.EndDate.UTC())
	assert.True(t, free.Active)
	assert.NoError(t, free.Validate())

	happy := promos[1]
	assert.False(t, happy.Active)
	assert.True(t, decimal.RequireFromString("25.5").Equal(happy.DiscountPercent))

	coffee := promos[2]
	require.Len(t, coffee.Overrides, 2)
	assert.Equal(t, target.Product("espresso"), coffee.Overrides[0].Target)
	assert.True(t, decimal.RequireFromString("2.5").Equal(coffee.Overrides[0].Price))
	assert.Equal(t, target.Store("s1"), coffee.Overrides[1].Target)
	assert.True(t, decimal.NewFromInt(8).Equal(coffee.Overrides[1].Price))

	combo := promos[3]
	assert.Equal(t, []string{"burger", "fries"}, combo.Products)
	assert.True(t, decimal.RequireFromString("9.99").Equal(combo.BundlePrice))
}

func TestFileRepository_Errors(t *testing.T) {
	_, err := NewFileRepository(filepath.Join(t.TempDir(), "missing.yaml")).List(context.Background())
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("promotions:\n  - id: x\n    overrides:\n      - target: courier\n        price: 1\n"))
	assert.ErrorIs(t, err, target.ErrInvalidTarget)

	_, err = ParseCatalog([]byte("promotions:\n  - id: x\n    discount_percent: lots\n"))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("promotions:\n  - id: x\n    start_date: yesterday\n"))
	assert.Error(t, err)
}

type countingRepository struct {
	mu     sync.Mutex
	calls  int
	promos []domain.Promotion
	err    error
}

func (r *countingRepository) List(context.Context) ([]domain.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.promos, r.err
}

func TestCachedRepository(t *testing.T) {
	rdb, mr := newRedis(t)
	c := cache.NewRedisAdapterFromClient(rdb)
	source := &countingRepository{promos: []domain.Promotion{{
		ID:              "p1",
		SubType:         domain.DiscountDelivery,
		DiscountPercent: decimal.RequireFromString("12.5"),
		Active:          true,
		Overrides:       []domain.PriceOverride{{Target: target.Store("s1"), Price: decimal.NewFromInt(3)}},
	}}}
	repo := NewCachedRepository(source, c, time.Minute)
	ctx := context.Background()

	first, err := repo.List(ctx)
	require.NoError(t, err)
	second, err := repo.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, first[0].DiscountPercent.Equal(second[0].DiscountPercent))
	assert.Equal(t, target.Store("s1"), second[0].Overrides[0].Target)

	mr.FastForward(2 * time.Minute)
	_, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)

	require.NoError(t, repo.Invalidate(ctx))
	_, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, source.calls)
}

func TestCachedRepository_FallsThroughOnCacheFailure(t *testing.T) {
	rdb, mr := newRedis(t)
	source := &countingRepository{promos: []domain.Promotion{{ID: "p1"}}}
	repo := NewCachedRepository(source, cache.NewRedisAdapterFromClient(rdb), time.Minute)

	mr.Close()
	promos, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, promos, 1)

	source.err = errors.New("disk gone")
	_, err = repo.List(context.Background())
	assert.Error(t, err)
}

func TestCachedRepository_CorruptEntry(t *testing.T) {
	rdb, mr := newRedis(t)
	require.NoError(t, mr.Set("cache:"+catalogCacheKey, "{not json"))
	source := &countingRepository{promos: []domain.Promotion{{ID: "p1"}}}
	repo := NewCachedRepository(source, cache.NewRedisAdapterFromClient(rdb), time.Minute)

	promos, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, promos, 1)
	assert.Equal(t, 1, source.calls)
}

func limit(n int64) *int64 { return &n }

func TestRedisUsageLedger_RedeemAndUsage(t *testing.T) {
	rdb, _ := newRedis(t)
	l := NewRedisUsageLedger(rdb)
	ctx := context.Background()

	a := domain.Promotion{ID: "a", UsageLimit: limit(2)}
	b := domain.Promotion{ID: "b", UsageLimitPerUser: limit(1)}

	require.NoError(t, l.Redeem(ctx, []domain.Promotion{a, b}, "u1"))

	global, perUser, err := l.Usage(ctx, []string{"a", "b", "c"}, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"a": 1, "b": 1}, global)
	assert.Equal(t, map[string]int64{"a": 1, "b": 1}, perUser)

	// b is used up for u1, so nothing moves.
	err = l.Redeem(ctx, []domain.Promotion{a, b}, "u1")
	assert.ErrorIs(t, err, domain.ErrUserLimitReached)
	global, _, err = l.Usage(ctx, []string{"a"}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), global["a"])

	require.NoError(t, l.Redeem(ctx, []domain.Promotion{a, b}, "u2"))
	err = l.Redeem(ctx, []domain.Promotion{a}, "u3")
	assert.ErrorIs(t, err, domain.ErrUsageLimitReached)
}

func TestRedisUsageLedger_Anonymous(t *testing.T) {
	rdb, _ := newRedis(t)
	l := NewRedisUsageLedger(rdb)
	ctx := context.Background()

	p := domain.Promotion{ID: "p", UsageLimitPerUser: limit(1)}
	require.NoError(t, l.Redeem(ctx, []domain.Promotion{p}, ""))
	require.NoError(t, l.Redeem(ctx, []domain.Promotion{p}, ""))

	global, perUser, err := l.Usage(ctx, []string{"p"}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), global["p"])
	assert.Empty(t, perUser)
}

func TestRedisUsageLedger_ConcurrentRedeemNeverExceedsLimit(t *testing.T) {
	rdb, _ := newRedis(t)
	l := NewRedisUsageLedger(rdb)
	p := domain.Promotion{ID: "flash", UsageLimit: limit(5)}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Redeem(context.Background(), []domain.Promotion{p}, "") == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	global, _, err := l.Usage(context.Background(), []string{"flash"}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), global["flash"])
}

func TestShippedCatalogIsValid(t *testing.T) {
	promos, err := NewFileRepository(filepath.Join("..", "..", "..", "..", "promotions.yaml")).List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, promos)
	for _, p := range promos {
		assert.NoError(t, p.Validate(), p.ID)
	}
}
