package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"courier-dispatch/internal/core/clock"
	"courier-dispatch/internal/core/config"
	"courier-dispatch/internal/core/events"
	"courier-dispatch/internal/core/retry"
	"courier-dispatch/internal/features/dispatch/adapters"
	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// Degrees of longitude per kilometre at latitude 30.04.
const lngPerKm = 0.010389

var pickup = domain.Point{Lat: 30.04, Lng: 31.23}

func east(km float64) domain.Point {
	return domain.Point{Lat: pickup.Lat, Lng: pickup.Lng + km*lngPerKm}
}

type stubOrders struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	calls  int
}

func (s *stubOrders) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	out := *o
	return &out, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n domain.Notification) error {
	r.mu.Lock()
	r.sent = append(r.sent, n)
	r.mu.Unlock()
	return nil
}

func (r *recordingNotifier) kinds() []domain.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.NotificationKind, len(r.sent))
	for i, n := range r.sent {
		out[i] = n.Kind
	}
	return out
}

type fixture struct {
	a        *Assigner
	clk      *clock.Fake
	ledger   *adapters.MemoryLedger
	tracker  *adapters.RedisAvailabilityTracker
	geo      *adapters.RedisGeoIndex
	manual   *adapters.RedisManualQueue
	events   *events.Memory
	notifier *recordingNotifier
	orders   *stubOrders
}

func testSettings() Settings {
	return Settings{
		OfferTimeout:   120 * time.Second,
		Candidates:     5,
		MaxAttempts:    5,
		RadiusSteps:    []float64{3, 6, 10},
		WidenOnTimeout: true,
		FlowDeadline:   300 * time.Second,
		Retry:          retry.Policy{MaxAttempts: 1},
	}
}

func newFixture(t *testing.T, cfg Settings) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	clk := clock.NewFake(epoch)
	tracker := adapters.NewRedisAvailabilityTracker(rdb)
	f := &fixture{
		clk:      clk,
		ledger:   adapters.NewMemoryLedger(),
		tracker:  tracker,
		geo:      adapters.NewRedisGeoIndex(rdb, tracker, clk, 5*time.Minute),
		manual:   adapters.NewRedisManualQueue(rdb),
		events:   events.NewMemory(),
		notifier: &recordingNotifier{},
		orders:   &stubOrders{orders: map[string]*domain.Order{}},
	}
	f.a = NewAssigner(AssignerDeps{
		Geo:      f.geo,
		Tracker:  f.tracker,
		Ledger:   f.ledger,
		Orders:   f.orders,
		Notifier: f.notifier,
		Manual:   f.manual,
		Events:   f.events,
		Clock:    clk,
	}, cfg)
	return f
}

func (f *fixture) order(id string) {
	f.orders.orders[id] = &domain.Order{
		ID:      id,
		StoreID: "store-1",
		UserID:  "user-1",
		Pickup:  pickup,
		Dropoff: east(4),
	}
}

func (f *fixture) courier(t *testing.T, id string, km float64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.tracker.OpenShift(ctx, id, 1))
	require.NoError(t, f.geo.UpdateLocation(ctx, id, east(km)))
}

func (f *fixture) active(t *testing.T, orderID string) *domain.Assignment {
	t.Helper()
	a, err := f.ledger.Active(context.Background(), orderID)
	require.NoError(t, err)
	return a
}

func (f *fixture) activeCount(t *testing.T, courierID string) int {
	t.Helper()
	c, err := f.tracker.Get(context.Background(), courierID)
	require.NoError(t, err)
	return c.ActiveCount
}

func (f *fixture) history(t *testing.T, orderID string) []domain.Assignment {
	t.Helper()
	h, err := f.ledger.History(context.Background(), orderID)
	require.NoError(t, err)
	return h
}

func TestAssigner_OffersNearestCourier(t *testing.T) {
	f := newFixture(t, testSettings())
	f.order("o1")
	f.courier(t, "c-1.2", 1.2)
	f.courier(t, "c-0.8", 0.8)

	out, err := f.a.Dispatch(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeOffered, out)

	cur := f.active(t, "o1")
	require.NotNil(t, cur)
	assert.Equal(t, "c-0.8", cur.CourierID)
	assert.Equal(t, domain.StatusAssigned, cur.Status)
	assert.Equal(t, epoch.Add(120*time.Second), cur.ExpiresAt)
	assert.InDelta(t, 0.8, cur.EstimatedDistanceKm, 0.01)
	assert.Equal(t, 1, f.activeCount(t, "c-0.8"))
	assert.Equal(t, []domain.NotificationKind{domain.NotifyOffer}, f.notifier.kinds())
	assert.Equal(t, 1, f.a.ActiveFlows())
}

func TestAssigner_RejectOffersNextAndNeverRepeats(t *testing.T) {
	f := newFixture(t, testSettings())
	ctx := context.Background()
	f.order("o1")
	f.courier(t, "c-0.8", 0.8)
	f.courier(t, "c-1.2", 1.2)

	_, err := f.a.Dispatch(ctx, "o1")
	require.NoError(t, err)

	require.NoError(t, f.a.Reject(ctx, "o1", "c-0.8", "too far"))

	cur := f.active(t, "o1")
	require.NotNil(t, cur)
	assert.Equal(t, "c-1.2", cur.CourierID)
	assert.Equal(t, 0, f.activeCount(t, "c-0.8"))
	assert.Equal(t, 1, f.activeCount(t, "c-1.2"))

	require.NoError(t, f.a.Reject(ctx, "o1", "c-1.2", ""))

	assert.Nil(t, f.active(t, "o1"))
	assert.Equal(t, 0, f.activeCount(t, "c-1.2"))
	assert.Equal(t, 0, f.a.ActiveFlows())

	hist := f.history(t, "o1")
	require.Len(t, hist, 2)
	assert.Equal(t, domain.StatusRejected, hist[0].Status)
	assert.Equal(t, "too far", hist[0].Notes)
	assert.Equal(t, domain.StatusRejected, hist[1].Status)

	entries, err := f.manual.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ReasonNoCandidates, entries[0].Reason)
	assert.Len(t, f.events.Events(domain.EventOrderAssignmentFailed), 1)
}

func TestAssigner_RedispatchKeepsRejectingCourierExcluded(t *testing.T) {
	f := newFixture(t, testSettings())
	ctx := context.Background()
	f.order("o1")
	f.courier(t, "c-0.8", 0.8)

	_, err := f.a.Dispatch(ctx, "o1")
	require.NoError(t, err)
	require.NoError(t, f.a.Reject(ctx, "o1", "c-0.8", "too far"))
	assert.Nil(t, f.active(t, "o1"))

	out, err := f.a.Dispatch(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeEscalated, out)
	assert.Nil(t, f.active(t, "o1"))
	assert.Len(t, f.history(t, "o1"), 1)

	f.courier(t, "c-1.2", 1.2)
	out, err = f.a.Dispatch(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeOffered, out)
	assert.Equal(t, "c-1.2", f.active(t, "o1").CourierID)
	assert.Equal(t, 0, f.activeCount(t, "c-0.8"))
}

func TestAssigner_RejectByOtherCourier(t *testing.T) {
	f := newFixture(t, testSettings())
	f.order("o1")
	f.courier(t, "c-0.8", 0.8)
	f.courier(t, "c-1.2", 1.2)

	_, err := f.a.Dispatch(context.Background(), "o1")
	require.NoError(t, err)

	err = f.a.Reject(context.Background(), "o1", "c-1.2", "")
	assert.ErrorIs(t, err, domain.ErrNotAssignedCourier)
	assert.Equal(t, "c-0.8", f.active(t, "o1").CourierID)
}

func TestAssigner_TimeoutFiresAtDeadlineNotBefore(t *testing.T) {
	f := newFixture(t, testSettings())
	f.order("o1")
	f.courier(t, "c-0.8", 0.8)
	f.courier(t, "c-1.2", 1.2)

	_, err := f.a.Dispatch(context.Background(), "o1")
	require.NoError(t, err)
	first := f.active(t, "o1")

	f.clk.Advance(119 * time.Second)
	assert.Equal(t, first.ID, f.active(t, "o1").ID)
	assert.Equal(t, 1, f.activeCount(t, "c-0.8"))

	f.clk.Advance(time.Second)

	hist := f.history(t, "o1")
	require.Len(t, hist, 2)
	assert.Equal(t, domain.StatusTimedOut, hist[0].Status)
	assert.Equal(t, epoch.Add(120*time.Second), hist[0].UpdatedAt)
	assert.Equal(t, "c-1.2", hist[1].CourierID)
	assert.Equal(t, domain.StatusAssigned, hist[1].Status)
	assert.Equal(t, 0, f.activeCount(t, "c-0.8"))
	assert.Contains(t, f.notifier.kinds(), domain.NotifyTimedOut)
}

func TestAssigner_FlowDeadlineEscalates(t *testing.T) {
	f := newFixture(t, testSettings())
	ctx := context.Background()
	f.order("o1")
	f.courier(t, "a", 0.5)
	f.courier(t, "b", 1)
	f.courier(t, "c", 1.5)
	f.courier(t, "d", 2)

	_, err := f.a.Dispatch(ctx, "o1")
	require.NoError(t, err)

	f.clk.Advance(360 * time.Second)

	hist := f.history(t, "o1")
	require.Len(t, hist, 3)
	for _, h := range hist {
		assert.Equal(t, domain.StatusTimedOut, h.Status)
	}
	assert.Nil(t, f.active(t, "o1"))

	entries, err := f.manual.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ReasonFlowDeadline, entries[0].Reason)
	assert.Zero(t, f.clk.Pending())

	for _, id := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, 0, f.activeCount(t, id), id)
	}
}

func TestAssigner_MaxAttemptsEscalates(t *testing.T) {
	cfg := testSettings()
	cfg.MaxAttempts = 2
	f := newFixture(t, cfg)
	ctx := context.Background()
	f.order("o1")
	f.courier(t, "a", 0.5)
	f.courier(t, "b", 1)
	f.courier(t, "c", 1.5)

	_, err := f.a.Dispatch(ctx, "o1")
	require.NoError(t, err)
	require.NoError(t, f.a.Reject(ctx, "o1", "a", ""))
	require.NoError(t, f.a.Reject(ctx, "o1", "b", ""))

	assert.Len(t, f.history(t, "o1"), 2)
	assert.Nil(t, f.active(t, "o1"))

	entries, err := f.manual.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ReasonMaxAttempts, entries[0].Reason)
}

func TestAssigner_NoCouriersEscalates(t *testing.T) {
	f := newFixture(t, testSettings())
	f.order("o1")
	f.courier(t, "far", 20)

	out, err := f.a.Dispatch(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeEscalated, out)
	assert.Empty(t, f.history(t, "o1"))
}

func TestAssigner_WidensRadius(t *testing.T) {
	f := newFixture(t, testSettings())
	f.order("o1")
	f.courier(t, "c-5", 5)

	out, err := f.a.Dispatch(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeOffered, out)
	assert.Equal(t, "c-5", f.active(t, "o1").CourierID)
}

func TestAssigner_ConcurrentDispatchSingleAssignment(t *testing.T) {
	f := newFixture(t, testSettings())
	f.order("o1")
	for i := 0; i < 5; i++ {
		f.courier(t, fmt.Sprintf("c%d", i), 0.5+float64(i)*0.3)
	}

	var wg sync.WaitGroup
	offered := make(chan ports.Outcome, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := f.a.Dispatch(context.Background(), "o1")
			assert.NoError(t, err)
			offered <- out
		}()
	}
	wg.Wait()
	close(offered)

	n := 0
	for out := range offered {
		if out == ports.OutcomeOffered {
			n++
		}
	}
	assert.Equal(t, 1, n)
	assert.Len(t, f.history(t, "o1"), 1)

	reserved := 0
	for i := 0; i < 5; i++ {
		reserved += f.activeCount(t, fmt.Sprintf("c%d", i))
	}
	assert.Equal(t, 1, reserved)
}

func TestAssigner_DispatchSkipsActiveOrder(t *testing.T) {
	f := newFixture(t, testSettings())
	f.order("o1")
	f.courier(t, "c-0.8", 0.8)

	_, err := f.a.Dispatch(context.Background(), "o1")
	require.NoError(t, err)

	out, err := f.a.Dispatch(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeSkipped, out)
}

func TestAssigner_DataErrorsGoToManualQueue(t *testing.T) {
	f := newFixture(t, testSettings())
	ctx := context.Background()

	_, err := f.a.Dispatch(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	f.orders.orders["nocoords"] = &domain.Order{ID: "nocoords", Dropoff: east(1)}
	_, err = f.a.Dispatch(ctx, "nocoords")
	assert.ErrorIs(t, err, domain.ErrMissingCoordinates)

	entries, err := f.manual.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ReasonBadCoordinates, entries[0].Reason)
	assert.Equal(t, domain.ReasonOrderNotFound, entries[1].Reason)
	assert.Zero(t, f.a.ActiveFlows())
}

func TestAssigner_AcceptPickupComplete(t *testing.T) {
	f := newFixture(t, testSettings())
	ctx := context.Background()
	f.order("o1")
	f.courier(t, "c-0.8", 0.8)

	_, err := f.a.Dispatch(ctx, "o1")
	require.NoError(t, err)

	_, err = f.a.MarkPickedUp(ctx, "o1", "c-0.8")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	f.clk.Advance(30 * time.Second)
	got, err := f.a.Accept(ctx, "o1", "c-0.8")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, got.Status)
	assert.Zero(t, f.a.ActiveFlows())
	assert.Zero(t, f.clk.Pending())

	assigned := f.events.Events(domain.EventOrderAssigned)
	require.Len(t, assigned, 1)
	assert.Equal(t, "o1", assigned[0].Key)

	f.notifier.mu.Lock()
	last := f.notifier.sent[len(f.notifier.sent)-1]
	f.notifier.mu.Unlock()
	assert.Equal(t, domain.NotifyAssigned, last.Kind)
	assert.Len(t, last.Recipients, 3)

	// The original offer window passing has no effect once accepted.
	f.clk.Advance(5 * time.Minute)
	assert.Equal(t, domain.StatusAccepted, f.active(t, "o1").Status)

	_, err = f.a.Accept(ctx, "o1", "c-0.8")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err = f.a.MarkPickedUp(ctx, "o1", "c-0.8")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInTransit, got.Status)

	got, err = f.a.Complete(ctx, "o1", "c-0.8")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, got.Status)
	assert.Nil(t, f.active(t, "o1"))
	assert.Equal(t, 0, f.activeCount(t, "c-0.8"))
}

func TestAssigner_AcceptAfterExpiry(t *testing.T) {
	f := newFixture(t, testSettings())
	ctx := context.Background()
	f.order("o1")
	f.courier(t, "c-0.8", 0.8)
	require.NoError(t, f.tracker.Reserve(ctx, "c-0.8"))

	// Offer left behind by a previous process; no timer is armed for it.
	require.NoError(t, f.ledger.Create(ctx, &domain.Assignment{
		ID:        "stale",
		OrderID:   "o1",
		CourierID: "c-0.8",
		Status:    domain.StatusAssigned,
		Pickup:    pickup,
		Dropoff:   east(4),
		CreatedAt: epoch.Add(-3 * time.Minute),
		ExpiresAt: epoch.Add(-time.Minute),
		UpdatedAt: epoch.Add(-3 * time.Minute),
	}))

	_, err := f.a.Accept(ctx, "o1", "c-0.8")
	assert.ErrorIs(t, err, domain.ErrOfferExpired)
	assert.Equal(t, domain.StatusAssigned, f.active(t, "o1").Status)
}

func TestAssigner_ExpireOverdueResumesFlow(t *testing.T) {
	f := newFixture(t, testSettings())
	ctx := context.Background()
	f.order("o1")
	f.courier(t, "c-0.8", 0.8)
	f.courier(t, "c-1.2", 1.2)
	require.NoError(t, f.tracker.Reserve(ctx, "c-0.8"))

	require.NoError(t, f.ledger.Create(ctx, &domain.Assignment{
		ID:        "stale",
		OrderID:   "o1",
		CourierID: "c-0.8",
		Status:    domain.StatusAssigned,
		Pickup:    pickup,
		Dropoff:   east(4),
		CreatedAt: epoch.Add(-3 * time.Minute),
		ExpiresAt: epoch.Add(-time.Minute),
		UpdatedAt: epoch.Add(-3 * time.Minute),
	}))

	n, err := f.a.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	hist := f.history(t, "o1")
	require.Len(t, hist, 2)
	assert.Equal(t, domain.StatusTimedOut, hist[0].Status)
	assert.Equal(t, "c-1.2", hist[1].CourierID)
	assert.Equal(t, 0, f.activeCount(t, "c-0.8"))

	n, err = f.a.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAssigner_Cancel(t *testing.T) {
	f := newFixture(t, testSettings())
	ctx := context.Background()
	f.order("o1")
	f.courier(t, "c-0.8", 0.8)

	_, err := f.a.Dispatch(ctx, "o1")
	require.NoError(t, err)

	err = f.a.Cancel(ctx, domain.CapabilitiesForRole("courier"), "o1", "customer request")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, f.a.Cancel(ctx, domain.CapabilitiesForRole("support"), "o1", "customer request"))
	assert.Nil(t, f.active(t, "o1"))
	assert.Equal(t, 0, f.activeCount(t, "c-0.8"))
	assert.Zero(t, f.a.ActiveFlows())
	assert.Zero(t, f.clk.Pending())

	hist := f.history(t, "o1")
	require.Len(t, hist, 1)
	assert.Equal(t, domain.StatusCancelled, hist[0].Status)
	assert.Equal(t, "customer request", hist[0].Notes)

	err = f.a.Cancel(ctx, domain.CapabilitiesForRole("admin"), "o1", "again")
	assert.ErrorIs(t, err, domain.ErrNoActiveAssignment)
}

func TestAssigner_Reassign(t *testing.T) {
	f := newFixture(t, testSettings())
	ctx := context.Background()
	dispatcher := domain.CapabilitiesForRole("dispatcher")
	f.order("o1")
	f.courier(t, "c-0.8", 0.8)
	f.courier(t, "c-1.2", 1.2)

	_, err := f.a.Dispatch(ctx, "o1")
	require.NoError(t, err)

	_, err = f.a.Reassign(ctx, domain.CapabilitiesForRole("support"), "o1", "c-1.2", "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.a.Reassign(ctx, dispatcher, "o1", "c-0.8", "")
	assert.ErrorIs(t, err, domain.ErrAssignmentActive)

	_, err = f.a.Reassign(ctx, dispatcher, "o1", "ghost", "")
	assert.ErrorIs(t, err, domain.ErrCourierNotFound)

	got, err := f.a.Reassign(ctx, dispatcher, "o1", "c-1.2", "closer to the store")
	require.NoError(t, err)
	assert.Equal(t, "c-1.2", got.CourierID)
	assert.InDelta(t, 1.2, got.EstimatedDistanceKm, 0.01)

	hist := f.history(t, "o1")
	require.Len(t, hist, 2)
	assert.Equal(t, domain.StatusTimedOut, hist[0].Status)
	assert.True(t, strings.HasPrefix(hist[0].Notes, supersededNote))
	assert.Contains(t, hist[0].Notes, "closer to the store")
	assert.Equal(t, 0, f.activeCount(t, "c-0.8"))
	assert.Equal(t, 1, f.activeCount(t, "c-1.2"))
	assert.Equal(t, 1, f.clk.Pending())

	_, err = f.a.Accept(ctx, "o1", "c-1.2")
	require.NoError(t, err)
	_, err = f.a.MarkPickedUp(ctx, "o1", "c-1.2")
	require.NoError(t, err)

	_, err = f.a.Reassign(ctx, dispatcher, "o1", "c-0.8", "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAssigner_ReservationsBalance(t *testing.T) {
	f := newFixture(t, testSettings())
	ctx := context.Background()
	couriers := []string{"a", "b", "c"}
	for i, id := range couriers {
		f.courier(t, id, 0.5+float64(i)*0.5)
	}
	for i := 0; i < 3; i++ {
		f.order(fmt.Sprintf("o%d", i))
	}

	for i := 0; i < 3; i++ {
		_, err := f.a.Dispatch(ctx, fmt.Sprintf("o%d", i))
		require.NoError(t, err)
	}

	require.NoError(t, f.a.Reject(ctx, "o0", "a", ""))
	f.clk.Advance(2 * time.Minute)
	require.NoError(t, f.a.Cancel(ctx, domain.CapabilitiesForRole("admin"), "o1", ""))
	f.clk.Advance(10 * time.Minute)

	for _, id := range couriers {
		held := 0
		for i := 0; i < 3; i++ {
			if cur := f.active(t, fmt.Sprintf("o%d", i)); cur != nil && cur.CourierID == id {
				held++
			}
		}
		assert.Equal(t, held, f.activeCount(t, id), id)
	}
}

func TestSettingsFromConfig(t *testing.T) {
	dc := config.DispatchConfig{
		OfferTimeoutSeconds: 90,
		Candidates:          3,
		MaxAttempts:         4,
		RadiusStepsKm:       "2,5",
		WidenOnTimeout:      true,
		FlowDeadlineSeconds: 240,
	}
	rc := config.RetryConfig{MaxAttempts: 2, BaseDelayMs: 10, MaxDelayMs: 100}

	got, err := SettingsFromConfig(dc, rc)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, got.OfferTimeout)
	assert.Equal(t, []float64{2, 5}, got.RadiusSteps)
	assert.Equal(t, 240*time.Second, got.FlowDeadline)
	assert.Equal(t, 2, got.Retry.MaxAttempts)

	dc.RadiusStepsKm = "5,2"
	_, err = SettingsFromConfig(dc, rc)
	assert.Error(t, err)
}
