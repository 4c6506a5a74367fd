package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"courier-dispatch/internal/core/clock"
	"courier-dispatch/internal/core/config"
	"courier-dispatch/internal/core/events"
	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/core/metrics"
	"courier-dispatch/internal/core/retry"
	"courier-dispatch/internal/core/target"
	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// supersededNote prefixes the note written on an assignment replaced by a
// manual reassignment. Flow resumption uses it to find where the attempt
// budget was reset.
const supersededNote = "superseded by reassignment"

const callbackTimeout = 30 * time.Second

// Settings tunes the assigner.
type Settings struct {
	OfferTimeout   time.Duration
	Candidates     int
	MaxAttempts    int
	RadiusSteps    []float64
	WidenOnTimeout bool
	FlowDeadline   time.Duration
	Retry          retry.Policy
}

// SettingsFromConfig converts the dispatch configuration.
func SettingsFromConfig(cfg config.DispatchConfig, rc config.RetryConfig) (Settings, error) {
	steps, err := cfg.RadiusSteps()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		OfferTimeout:   cfg.OfferTimeout(),
		Candidates:     cfg.Candidates,
		MaxAttempts:    cfg.MaxAttempts,
		RadiusSteps:    steps,
		WidenOnTimeout: cfg.WidenOnTimeout,
		FlowDeadline:   cfg.FlowDeadline(),
		Retry:          retry.FromConfig(rc),
	}, nil
}

// AssignerDeps are the collaborators of the Assigner.
type AssignerDeps struct {
	Geo      ports.GeoIndex
	Tracker  ports.AvailabilityTracker
	Ledger   ports.AssignmentLedger
	Orders   ports.OrderSource
	Notifier ports.Notifier
	Manual   ports.ManualQueue
	Events   events.Publisher
	Clock    clock.Clock
}

// Assigner drives each order through seeking, offered and resolved states.
// Waiting for a courier holds no goroutine: an offer arms a timer and the flow
// continues from whichever of accept, reject or expiry arrives first.
type Assigner struct {
	AssignerDeps
	cfg Settings
	log *zap.Logger

	// mu guards flows only and is never held across I/O.
	mu    sync.Mutex
	flows map[string]*flow
}

// flow is the in-memory state of one order being assigned. Its mutex
// serializes every step for that order; the ledger stays authoritative.
type flow struct {
	mu        sync.Mutex
	order     domain.Order
	excluded  map[string]bool
	attempts  int
	step      int
	startedAt time.Time
	pending   *domain.Assignment
	timer     clock.Timer
	closed    bool
}

// NewAssigner creates an Assigner.
func NewAssigner(deps AssignerDeps, cfg Settings) *Assigner {
	return &Assigner{
		AssignerDeps: deps,
		cfg:          cfg,
		log:          logger.Named("assigner"),
		flows:        make(map[string]*flow),
	}
}

// ActiveFlows returns the number of orders currently being assigned.
func (a *Assigner) ActiveFlows() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.flows)
}

// Dispatch starts the assignment flow of an order. Orders that already have
// an active assignment or a running flow are skipped. Only data errors and
// failures to read the order are returned; running out of couriers is the
// Escalated outcome.
func (a *Assigner) Dispatch(ctx context.Context, orderID string) (ports.Outcome, error) {
	active, err := a.Ledger.Active(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("check active assignment: %w", err)
	}
	if active != nil || a.lookup(orderID) != nil {
		a.log.Debug("order already being dispatched", zap.String("order_id", orderID))
		return ports.OutcomeSkipped, nil
	}

	order, err := a.fetchOrder(ctx, orderID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingCoordinates):
			a.toManual(ctx, orderID, domain.ReasonBadCoordinates, err)
		case domain.IsDataError(err):
			a.toManual(ctx, orderID, domain.ReasonOrderNotFound, err)
		}
		return "", err
	}
	if err := order.Validate(); err != nil {
		a.log.Error("order cannot be dispatched", zap.String("order_id", orderID), zap.Error(err))
		a.toManual(ctx, orderID, domain.ReasonBadCoordinates, err)
		return "", err
	}

	// A fresh flow gets fresh attempts, but couriers who already turned this
	// order down stay excluded.
	hist, err := a.Ledger.History(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}

	f, created := a.register(&flow{
		order:     *order,
		excluded:  excludedCouriers(hist),
		startedAt: a.Clock.Now(),
	})
	if !created {
		return ports.OutcomeSkipped, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ports.OutcomeSkipped, nil
	}
	return a.advance(ctx, f), nil
}

// Accept records the courier's acceptance of the pending offer.
func (a *Assigner) Accept(ctx context.Context, orderID, courierID string) (*domain.Assignment, error) {
	f := a.lockFlow(orderID)
	if f != nil {
		defer f.mu.Unlock()
	}

	cur, err := a.offeredTo(ctx, orderID, courierID)
	if err != nil {
		return nil, err
	}
	if cur.Status != domain.StatusAssigned {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidTransition, cur.Status)
	}

	now := a.Clock.Now()
	if cur.Expired(now) {
		return nil, fmt.Errorf("%w: expired at %s", domain.ErrOfferExpired, cur.ExpiresAt.Format(time.RFC3339))
	}

	got, err := a.Ledger.Transition(ctx, cur.ID, []domain.AssignmentStatus{domain.StatusAssigned}, domain.StatusAccepted, "", now)
	if err != nil {
		return nil, fmt.Errorf("accept assignment: %w", err)
	}

	recipients := []target.Target{target.Courier(courierID)}
	if f != nil {
		metrics.TimeToAccept.Observe(now.Sub(f.startedAt).Seconds())
		recipients = append(recipients, target.Store(f.order.StoreID), target.User(f.order.UserID))
		a.close(f)
	}
	metrics.Offers.WithLabelValues("accepted").Inc()

	a.log.Info("offer accepted",
		zap.String("order_id", orderID),
		zap.String("courier_id", courierID),
		zap.String("assignment_id", got.ID),
	)
	a.publish(ctx, domain.EventOrderAssigned, orderID, map[string]any{
		"assignment_id": got.ID,
		"courier_id":    courierID,
		"distance_km":   got.EstimatedDistanceKm,
	})
	a.notify(ctx, domain.NotifyAssigned, got, "", recipients...)
	return got, nil
}

// Reject records a rejection, frees the courier and offers the order to the
// next candidate. The rejecting courier is never offered this order again.
func (a *Assigner) Reject(ctx context.Context, orderID, courierID, reason string) error {
	f := a.lockFlow(orderID)
	defer func() {
		if f != nil {
			a.settle(f)
			f.mu.Unlock()
		}
	}()

	cur, err := a.offeredTo(ctx, orderID, courierID)
	if err != nil {
		return err
	}
	if cur.Status != domain.StatusAssigned {
		return fmt.Errorf("%w: %s", domain.ErrInvalidTransition, cur.Status)
	}

	now := a.Clock.Now()
	if _, err := a.Ledger.Transition(ctx, cur.ID, []domain.AssignmentStatus{domain.StatusAssigned}, domain.StatusRejected, reason, now); err != nil {
		return fmt.Errorf("reject assignment: %w", err)
	}
	a.release(ctx, courierID)
	metrics.Offers.WithLabelValues("rejected").Inc()
	a.log.Info("offer rejected",
		zap.String("order_id", orderID),
		zap.String("courier_id", courierID),
		zap.String("reason", reason),
	)
	a.notify(ctx, domain.NotifyRejected, cur, reason, target.Courier(courierID))

	if f == nil {
		f, err = a.resume(ctx, orderID)
		if err != nil {
			a.log.Error("cannot resume flow after rejection", zap.String("order_id", orderID), zap.Error(err))
			a.toManual(ctx, orderID, domain.ReasonJobFailed, err)
			return nil
		}
	}

	a.clearPending(f, cur.ID)
	f.excluded[courierID] = true
	a.advance(ctx, f)
	return nil
}

// Reassign replaces the current assignment with an offer to a specific
// courier. The previous assignment is timed out with a note and its courier
// released. Orders already picked up cannot be reassigned.
func (a *Assigner) Reassign(ctx context.Context, caps domain.Capabilities, orderID, courierID, note string) (*domain.Assignment, error) {
	if !caps.Has(domain.CapDispatchOverride) {
		return nil, domain.ErrForbidden
	}

	courier, err := a.Tracker.Get(ctx, courierID)
	if err != nil {
		return nil, err
	}

	f := a.lockFlow(orderID)
	if f == nil {
		f, err = a.resume(ctx, orderID)
		if err != nil {
			return nil, err
		}
	}
	defer func() {
		a.settle(f)
		f.mu.Unlock()
	}()

	cur, err := a.Ledger.Active(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("check active assignment: %w", err)
	}
	if cur != nil {
		if cur.Status == domain.StatusInTransit {
			return nil, fmt.Errorf("%w: order %s is in transit", domain.ErrInvalidTransition, orderID)
		}
		if cur.CourierID == courierID {
			return nil, fmt.Errorf("%w: already held by %s", domain.ErrAssignmentActive, courierID)
		}
	}
	if !courier.Eligible() {
		return nil, fmt.Errorf("%w: %s", domain.ErrCourierIneligible, courierID)
	}

	now := a.Clock.Now()
	if cur != nil {
		from := []domain.AssignmentStatus{domain.StatusAssigned, domain.StatusAccepted}
		reason := supersededNote
		if note != "" {
			reason += ": " + note
		}
		if _, err := a.Ledger.Transition(ctx, cur.ID, from, domain.StatusTimedOut, reason, now); err != nil {
			return nil, fmt.Errorf("supersede assignment: %w", err)
		}
		a.release(ctx, cur.CourierID)
		a.clearPending(f, cur.ID)
		a.notify(ctx, domain.NotifyReassigned, cur, note, target.Courier(cur.CourierID))
	}

	f.attempts = 0
	f.step = 0
	f.startedAt = now
	delete(f.excluded, courierID)

	dist := 0.0
	if loc, err := a.Geo.Locate(ctx, courierID); err == nil && loc != nil {
		dist = domain.HaversineKm(f.order.Pickup, loc.Point)
	}

	a.log.Info("manual reassignment",
		zap.String("order_id", orderID),
		zap.String("courier_id", courierID),
		zap.String("note", note),
	)

	f.attempts++
	if err := a.offer(ctx, f, courierID, dist); err != nil {
		a.log.Warn("manual offer failed, resuming automatic dispatch",
			zap.String("order_id", orderID),
			zap.String("courier_id", courierID),
			zap.Error(err),
		)
		a.advance(ctx, f)
		return nil, err
	}

	out := *f.pending
	return &out, nil
}

// MarkPickedUp moves an accepted assignment to in_transit.
func (a *Assigner) MarkPickedUp(ctx context.Context, orderID, courierID string) (*domain.Assignment, error) {
	cur, err := a.offeredTo(ctx, orderID, courierID)
	if err != nil {
		return nil, err
	}

	got, err := a.Ledger.Transition(ctx, cur.ID, []domain.AssignmentStatus{domain.StatusAccepted}, domain.StatusInTransit, "", a.Clock.Now())
	if errors.Is(err, domain.ErrStaleTransition) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidTransition, cur.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("mark picked up: %w", err)
	}
	return got, nil
}

// Complete marks the order delivered and frees the courier slot.
func (a *Assigner) Complete(ctx context.Context, orderID, courierID string) (*domain.Assignment, error) {
	cur, err := a.offeredTo(ctx, orderID, courierID)
	if err != nil {
		return nil, err
	}

	from := []domain.AssignmentStatus{domain.StatusAccepted, domain.StatusInTransit}
	got, err := a.Ledger.Transition(ctx, cur.ID, from, domain.StatusDelivered, "", a.Clock.Now())
	if errors.Is(err, domain.ErrStaleTransition) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidTransition, cur.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("complete assignment: %w", err)
	}

	a.release(ctx, courierID)
	a.log.Info("order delivered", zap.String("order_id", orderID), zap.String("courier_id", courierID))
	return got, nil
}

// Cancel ends the order's active assignment and stops its flow.
func (a *Assigner) Cancel(ctx context.Context, caps domain.Capabilities, orderID, reason string) error {
	if !caps.Has(domain.CapCancelOrders) {
		return domain.ErrForbidden
	}

	f := a.lockFlow(orderID)
	if f != nil {
		defer f.mu.Unlock()
	}

	cur, err := a.Ledger.Active(ctx, orderID)
	if err != nil {
		return fmt.Errorf("check active assignment: %w", err)
	}
	if cur == nil {
		if f != nil {
			a.close(f)
		}
		return fmt.Errorf("%w: %s", domain.ErrNoActiveAssignment, orderID)
	}

	if _, err := a.Ledger.Transition(ctx, cur.ID, domain.ActiveStatuses, domain.StatusCancelled, reason, a.Clock.Now()); err != nil {
		return fmt.Errorf("cancel assignment: %w", err)
	}
	a.release(ctx, cur.CourierID)
	if f != nil {
		a.close(f)
	}

	a.log.Info("assignment cancelled", zap.String("order_id", orderID), zap.String("reason", reason))
	a.notify(ctx, domain.NotifyCancelled, cur, reason, target.Courier(cur.CourierID))
	return nil
}

// History returns every assignment attempt of the order, oldest first.
func (a *Assigner) History(ctx context.Context, orderID string) ([]domain.Assignment, error) {
	return a.Ledger.History(ctx, orderID)
}

// ExpireOverdue times out offers whose deadline passed without their timer
// firing, typically after a restart, and continues their flows.
func (a *Assigner) ExpireOverdue(ctx context.Context) (int, error) {
	now := a.Clock.Now()
	due, err := a.Ledger.ListExpired(ctx, now, 100)
	if err != nil {
		return 0, fmt.Errorf("list expired offers: %w", err)
	}

	expired := 0
	for _, asg := range due {
		f := a.lockFlow(asg.OrderID)
		if f == nil {
			f, err = a.resume(ctx, asg.OrderID)
			if err != nil {
				a.log.Error("cannot resume flow for overdue offer", zap.String("order_id", asg.OrderID), zap.Error(err))
				if a.timeoutOrphan(ctx, asg, now) {
					expired++
					a.toManual(ctx, asg.OrderID, domain.ReasonJobFailed, err)
				}
				continue
			}
		}

		if a.expire(ctx, f, asg, now) {
			expired++
		}
		a.settle(f)
		f.mu.Unlock()
	}
	return expired, nil
}

// advance runs the seeking state until an offer is out or the flow ends.
// The caller holds f.mu.
func (a *Assigner) advance(ctx context.Context, f *flow) ports.Outcome {
	for {
		switch {
		case f.closed:
			return ports.OutcomeSkipped
		case f.attempts >= a.cfg.MaxAttempts:
			return a.escalate(ctx, f, domain.ReasonMaxAttempts)
		case a.Clock.Now().Sub(f.startedAt) >= a.cfg.FlowDeadline:
			return a.escalate(ctx, f, domain.ReasonFlowDeadline)
		case f.step >= len(a.cfg.RadiusSteps):
			return a.escalate(ctx, f, domain.ReasonNoCandidates)
		}

		radius := a.cfg.RadiusSteps[f.step]
		cands, err := a.candidates(ctx, f, radius)
		if err != nil {
			f.attempts++
			a.log.Warn("candidate lookup failed",
				zap.String("order_id", f.order.ID),
				zap.Float64("radius_km", radius),
				zap.Error(err),
			)
			continue
		}
		if len(cands) == 0 {
			a.log.Debug("no candidates in radius, widening",
				zap.String("order_id", f.order.ID),
				zap.Float64("radius_km", radius),
			)
			f.step++
			continue
		}

		for _, c := range cands {
			if f.attempts >= a.cfg.MaxAttempts {
				break
			}
			f.attempts++
			err := a.offer(ctx, f, c.CourierID, c.DistanceKm)
			if err == nil {
				return ports.OutcomeOffered
			}
			if errors.Is(err, domain.ErrAssignmentActive) {
				a.log.Info("order assigned elsewhere, stopping flow", zap.String("order_id", f.order.ID))
				a.close(f)
				return ports.OutcomeSkipped
			}
			a.log.Info("offer failed, trying next candidate",
				zap.String("order_id", f.order.ID),
				zap.String("courier_id", c.CourierID),
				zap.Error(err),
			)
		}
	}
}

func (a *Assigner) candidates(ctx context.Context, f *flow, radius float64) ([]domain.Candidate, error) {
	var found []domain.Candidate
	limit := a.cfg.Candidates + len(f.excluded)
	err := retry.Do(ctx, "geo.find_nearest", a.cfg.Retry, func(ctx context.Context) error {
		var err error
		found, err = a.Geo.FindNearest(ctx, f.order.Pickup, radius, limit)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Candidate, 0, len(found))
	for _, c := range found {
		if !f.excluded[c.CourierID] {
			out = append(out, c)
		}
	}
	if len(out) > a.cfg.Candidates {
		out = out[:a.cfg.Candidates]
	}
	return out, nil
}

// offer creates the assignment row and reserves the courier as one unit:
// when the reservation fails the row is discarded.
func (a *Assigner) offer(ctx context.Context, f *flow, courierID string, distanceKm float64) error {
	now := a.Clock.Now()
	asg := &domain.Assignment{
		ID:                  uuid.NewString(),
		OrderID:             f.order.ID,
		CourierID:           courierID,
		Status:              domain.StatusAssigned,
		Pickup:              f.order.Pickup,
		Dropoff:             f.order.Dropoff,
		EstimatedDistanceKm: distanceKm,
		PriorityLevel:       f.order.PriorityLevel,
		CreatedAt:           now,
		ExpiresAt:           now.Add(a.cfg.OfferTimeout),
		UpdatedAt:           now,
	}

	err := retry.Do(ctx, "ledger.create", a.cfg.Retry, func(ctx context.Context) error {
		err := a.Ledger.Create(ctx, asg)
		if errors.Is(err, domain.ErrAssignmentActive) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		return err
	}

	err = retry.Do(ctx, "tracker.reserve", a.cfg.Retry, func(ctx context.Context) error {
		err := a.Tracker.Reserve(ctx, courierID)
		if errors.Is(err, domain.ErrCourierUnavailable) || errors.Is(err, domain.ErrCourierNotFound) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		a.discard(ctx, asg)
		return err
	}

	f.pending = asg
	a.armTimer(f, asg)
	metrics.Offers.WithLabelValues("offered").Inc()

	a.log.Info("offer created",
		zap.String("order_id", asg.OrderID),
		zap.String("courier_id", courierID),
		zap.String("assignment_id", asg.ID),
		zap.Float64("distance_km", distanceKm),
		zap.Int("attempt", f.attempts),
		zap.Time("expires_at", asg.ExpiresAt),
	)
	a.notify(ctx, domain.NotifyOffer, asg, "", target.Courier(courierID))
	return nil
}

func (a *Assigner) armTimer(f *flow, asg *domain.Assignment) {
	orderID, id := asg.OrderID, asg.ID
	f.timer = a.Clock.AfterFunc(asg.ExpiresAt.Sub(a.Clock.Now()), func() {
		a.onExpiry(orderID, id)
	})
}

func (a *Assigner) onExpiry(orderID, assignmentID string) {
	f := a.lockFlow(orderID)
	if f == nil {
		return
	}
	defer f.mu.Unlock()

	if f.pending == nil || f.pending.ID != assignmentID {
		return
	}

	now := a.Clock.Now()
	if !f.pending.Expired(now) {
		a.armTimer(f, f.pending)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
	defer cancel()
	a.expire(ctx, f, *f.pending, now)
	a.settle(f)
}

// expire times out asg if it is still assigned and past its deadline, then
// continues the flow. It reports whether this call performed the timeout.
// The caller holds f.mu.
func (a *Assigner) expire(ctx context.Context, f *flow, asg domain.Assignment, now time.Time) bool {
	if !asg.Expired(now) {
		return false
	}

	_, err := a.Ledger.Transition(ctx, asg.ID, []domain.AssignmentStatus{domain.StatusAssigned}, domain.StatusTimedOut, "offer expired", now)
	if errors.Is(err, domain.ErrStaleTransition) {
		// Resolved by another writer; the winner released the courier.
		a.clearPending(f, asg.ID)
		a.close(f)
		return false
	}
	if err != nil {
		a.log.Error("failed to time out offer",
			zap.String("order_id", asg.OrderID),
			zap.String("assignment_id", asg.ID),
			zap.Error(err),
		)
		return false
	}

	a.release(ctx, asg.CourierID)
	a.clearPending(f, asg.ID)
	f.excluded[asg.CourierID] = true
	if a.cfg.WidenOnTimeout && f.step < len(a.cfg.RadiusSteps)-1 {
		f.step++
	}
	metrics.Offers.WithLabelValues("timed_out").Inc()

	a.log.Info("offer timed out",
		zap.String("order_id", asg.OrderID),
		zap.String("courier_id", asg.CourierID),
		zap.Time("expired_at", asg.ExpiresAt),
	)
	a.notify(ctx, domain.NotifyTimedOut, &asg, "", target.Courier(asg.CourierID))

	a.advance(ctx, f)
	return true
}

// timeoutOrphan expires an assignment whose flow cannot be rebuilt.
func (a *Assigner) timeoutOrphan(ctx context.Context, asg domain.Assignment, now time.Time) bool {
	_, err := a.Ledger.Transition(ctx, asg.ID, []domain.AssignmentStatus{domain.StatusAssigned}, domain.StatusTimedOut, "offer expired", now)
	if err != nil {
		return false
	}
	a.release(ctx, asg.CourierID)
	metrics.Offers.WithLabelValues("timed_out").Inc()
	return true
}

// excludedCouriers returns the couriers whose offer for this order was
// rejected, timed out or superseded.
func excludedCouriers(hist []domain.Assignment) map[string]bool {
	out := make(map[string]bool, len(hist))
	for _, h := range hist {
		if h.Status == domain.StatusRejected || h.Status == domain.StatusTimedOut {
			out[h.CourierID] = true
		}
	}
	return out
}

// resume rebuilds a flow from the ledger when no in-memory flow exists, for
// example after a restart. Couriers that rejected or let an offer expire stay
// excluded and consumed attempts stay consumed. The returned flow is locked.
func (a *Assigner) resume(ctx context.Context, orderID string) (*flow, error) {
	order, err := a.fetchOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	hist, err := a.Ledger.History(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	nf := &flow{
		order:     *order,
		excluded:  excludedCouriers(hist),
		startedAt: a.Clock.Now(),
	}

	window := 0
	for i, h := range hist {
		if strings.HasPrefix(h.Notes, supersededNote) || strings.Contains(h.Notes, "\n"+supersededNote) {
			window = i + 1
		}
	}
	for i, h := range hist {
		if i < window {
			continue
		}
		if nf.attempts == 0 {
			nf.startedAt = h.CreatedAt
		}
		nf.attempts++
	}

	f, created := a.register(nf)
	f.mu.Lock()
	if f.closed {
		// Lost a race with a flow that finished; start over with ours.
		f.mu.Unlock()
		return a.resume(ctx, orderID)
	}
	if !created {
		return f, nil
	}

	for i := len(hist) - 1; i >= 0; i-- {
		if hist[i].Status == domain.StatusAssigned {
			pending := hist[i]
			f.pending = &pending
			a.armTimer(f, f.pending)
			break
		}
	}
	return f, nil
}

func (a *Assigner) escalate(ctx context.Context, f *flow, reason string) ports.Outcome {
	ctx = context.WithoutCancel(ctx)
	a.close(f)

	a.log.Warn("order needs manual dispatch",
		zap.String("order_id", f.order.ID),
		zap.String("reason", reason),
		zap.Int("attempts", f.attempts),
	)
	detail := fmt.Sprintf("attempts=%d excluded=%d", f.attempts, len(f.excluded))
	a.pushManual(ctx, f.order.ID, reason, detail)
	return ports.OutcomeEscalated
}

// toManual flags an order that failed with a data or job error.
func (a *Assigner) toManual(ctx context.Context, orderID, reason string, cause error) {
	a.pushManual(context.WithoutCancel(ctx), orderID, reason, cause.Error())
}

func (a *Assigner) pushManual(ctx context.Context, orderID, reason, detail string) {
	now := a.Clock.Now()
	metrics.Escalations.WithLabelValues(reason).Inc()

	entry := domain.ManualEntry{OrderID: orderID, Reason: reason, Detail: detail, At: now}
	if err := a.Manual.Push(ctx, entry); err != nil {
		a.log.Error("failed to push manual dispatch entry", zap.String("order_id", orderID), zap.Error(err))
	}
	a.publish(ctx, domain.EventOrderAssignmentFailed, orderID, map[string]any{
		"reason": reason,
		"detail": detail,
	})
}

func (a *Assigner) fetchOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var order *domain.Order
	err := retry.Do(ctx, "orders.get", a.cfg.Retry, func(ctx context.Context) error {
		o, err := a.Orders.GetOrder(ctx, orderID)
		if err != nil {
			if domain.IsDataError(err) {
				return retry.Permanent(err)
			}
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch order %s: %w", orderID, err)
	}
	return order, nil
}

// offeredTo returns the active assignment of the order held by courierID.
func (a *Assigner) offeredTo(ctx context.Context, orderID, courierID string) (*domain.Assignment, error) {
	cur, err := a.Ledger.Active(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("check active assignment: %w", err)
	}
	if cur == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoActiveAssignment, orderID)
	}
	if cur.CourierID != courierID {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotAssignedCourier, courierID)
	}
	return cur, nil
}

// release frees one courier slot. Only the writer that won the ledger
// transition calls it, so each reservation is released once.
func (a *Assigner) release(ctx context.Context, courierID string) {
	ctx = context.WithoutCancel(ctx)
	err := retry.Do(ctx, "tracker.release", a.cfg.Retry, func(ctx context.Context) error {
		err := a.Tracker.Release(ctx, courierID)
		if errors.Is(err, domain.ErrNotReserved) || errors.Is(err, domain.ErrCourierNotFound) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		a.log.Error("failed to release courier", zap.String("courier_id", courierID), zap.Error(err))
	}
}

func (a *Assigner) discard(ctx context.Context, asg *domain.Assignment) {
	ctx = context.WithoutCancel(ctx)
	err := a.Ledger.Discard(ctx, asg.ID)
	if err == nil {
		return
	}
	a.log.Warn("discard failed, cancelling row instead", zap.String("assignment_id", asg.ID), zap.Error(err))

	_, err = a.Ledger.Transition(ctx, asg.ID, []domain.AssignmentStatus{domain.StatusAssigned}, domain.StatusCancelled, "reservation failed", a.Clock.Now())
	if err != nil {
		a.log.Error("failed to cancel unreserved assignment", zap.String("assignment_id", asg.ID), zap.Error(err))
	}
}

func (a *Assigner) notify(ctx context.Context, kind domain.NotificationKind, asg *domain.Assignment, note string, to ...target.Target) {
	recipients := make([]target.Target, 0, len(to))
	for _, t := range to {
		if t.Valid() {
			recipients = append(recipients, t)
		}
	}
	n := domain.Notification{
		Kind:         kind,
		OrderID:      asg.OrderID,
		AssignmentID: asg.ID,
		Recipients:   recipients,
		Note:         note,
		At:           a.Clock.Now(),
	}
	if err := a.Notifier.Notify(ctx, n); err != nil {
		a.log.Warn("notification not sent", zap.String("order_id", asg.OrderID), zap.String("kind", string(kind)), zap.Error(err))
	}
}

func (a *Assigner) publish(ctx context.Context, eventType, orderID string, data map[string]any) {
	evt := events.Event{Type: eventType, Key: orderID, At: a.Clock.Now(), Data: data}
	if err := a.Events.Publish(context.WithoutCancel(ctx), evt); err != nil {
		a.log.Warn("event not published", zap.String("type", eventType), zap.String("order_id", orderID), zap.Error(err))
	}
}

func (a *Assigner) lookup(orderID string) *flow {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.flows[orderID]
}

// lockFlow returns the open flow of the order, locked, or nil.
func (a *Assigner) lockFlow(orderID string) *flow {
	f := a.lookup(orderID)
	if f == nil {
		return nil
	}
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	return f
}

// register inserts f unless the order already has a flow, which is returned instead.
func (a *Assigner) register(f *flow) (*flow, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if existing, ok := a.flows[f.order.ID]; ok {
		return existing, false
	}
	a.flows[f.order.ID] = f
	metrics.ActiveFlows.Inc()
	return f, true
}

// close ends the flow. The caller holds f.mu.
func (a *Assigner) close(f *flow) {
	if f.closed {
		return
	}
	f.closed = true
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}

	a.mu.Lock()
	if a.flows[f.order.ID] == f {
		delete(a.flows, f.order.ID)
		metrics.ActiveFlows.Dec()
	}
	a.mu.Unlock()
}

// settle closes a flow left without an outstanding offer.
func (a *Assigner) settle(f *flow) {
	if f.pending == nil {
		a.close(f)
	}
}

func (a *Assigner) clearPending(f *flow, assignmentID string) {
	if f.pending == nil || f.pending.ID != assignmentID {
		return
	}
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.pending = nil
}
