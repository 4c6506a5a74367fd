package adapters

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"courier-dispatch/internal/core/clock"
	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/core/metrics"
	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	geoKey  = "couriers:geo"
	seenKey = "couriers:seen"
)

// RedisGeoIndex keeps courier positions in a Redis geo set and the time of the
// last ping in a companion hash.
type RedisGeoIndex struct {
	rdb      *redis.Client
	eligible ports.EligibilityChecker
	clock    clock.Clock
	ttl      time.Duration
	log      *zap.Logger
}

// NewRedisGeoIndex creates a geo index. Locations older than ttl are ignored.
func NewRedisGeoIndex(rdb *redis.Client, eligible ports.EligibilityChecker, clk clock.Clock, ttl time.Duration) *RedisGeoIndex {
	return &RedisGeoIndex{
		rdb:      rdb,
		eligible: eligible,
		clock:    clk,
		ttl:      ttl,
		log:      logger.Named("geo_index"),
	}
}

// UpdateLocation writes the position and timestamp in one MULTI so a reader
// never sees a new position with an old stamp.
func (g *RedisGeoIndex) UpdateLocation(ctx context.Context, courierID string, p domain.Point) error {
	if courierID == "" || !p.InBounds() {
		return domain.ErrInvalidLocation
	}
	now := g.clock.Now()

	_, err := g.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.GeoAdd(ctx, geoKey, &redis.GeoLocation{Name: courierID, Longitude: p.Lng, Latitude: p.Lat})
		pipe.HSet(ctx, seenKey, courierID, now.UnixMilli())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update location of %s: %w", courierID, err)
	}
	return nil
}

// Redis measures with a 6372.797 km earth, longer than the haversine one, so
// the GEORADIUS filter is widened and haversine makes the final cut.
const redisRadiusMargin = 6372.7976 / 6371.0088 * 1.001

// FindNearest queries the geo set and keeps fresh, eligible couriers. Redis
// distances come from geohash cells, so they are recomputed with haversine.
func (g *RedisGeoIndex) FindNearest(ctx context.Context, p domain.Point, radiusKm float64, limit int) ([]domain.Candidate, error) {
	start := time.Now()
	defer func() { metrics.GeoQueryDuration.Observe(time.Since(start).Seconds()) }()

	if limit <= 0 || radiusKm <= 0 {
		return []domain.Candidate{}, nil
	}

	hits, err := g.rdb.GeoRadius(ctx, geoKey, p.Lng, p.Lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm * redisRadiusMargin,
		Unit:      "km",
		WithCoord: true,
		WithDist:  true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("geo radius query failed: %w", err)
	}
	if len(hits) == 0 {
		return []domain.Candidate{}, nil
	}

	names := make([]string, len(hits))
	for i, h := range hits {
		names[i] = h.Name
	}
	stamps, err := g.rdb.HMGet(ctx, seenKey, names...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read location stamps: %w", err)
	}

	now := g.clock.Now()
	out := make([]domain.Candidate, 0, len(hits))
	for i, h := range hits {
		seen, ok := parseStamp(stamps[i])
		if !ok || !(domain.Location{UpdatedAt: seen}).Fresh(now, g.ttl) {
			continue
		}

		d := domain.HaversineKm(p, domain.Point{Lat: h.Latitude, Lng: h.Longitude})
		if d > radiusKm {
			continue
		}

		eligible, err := g.eligible.IsEligible(ctx, h.Name)
		if err != nil {
			g.log.Warn("eligibility check failed", zap.String("courier_id", h.Name), zap.Error(err))
			continue
		}
		if !eligible {
			continue
		}
		out = append(out, domain.Candidate{CourierID: h.Name, DistanceKm: d})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm == out[j].DistanceKm {
			return out[i].CourierID < out[j].CourierID
		}
		return out[i].DistanceKm < out[j].DistanceKm
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Locate returns the stored position of one courier.
func (g *RedisGeoIndex) Locate(ctx context.Context, courierID string) (*domain.Location, error) {
	pos, err := g.rdb.GeoPos(ctx, geoKey, courierID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to locate %s: %w", courierID, err)
	}
	if len(pos) == 0 || pos[0] == nil {
		return nil, nil
	}

	raw, err := g.rdb.HGet(ctx, seenKey, courierID).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read stamp of %s: %w", courierID, err)
	}
	seen, _ := parseStamp(raw)

	return &domain.Location{
		CourierID: courierID,
		Point:     domain.Point{Lat: pos[0].Latitude, Lng: pos[0].Longitude},
		UpdatedAt: seen,
	}, nil
}

// Prune removes couriers whose last ping is older than the TTL.
func (g *RedisGeoIndex) Prune(ctx context.Context) (int, error) {
	stamps, err := g.rdb.HGetAll(ctx, seenKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list location stamps: %w", err)
	}

	now := g.clock.Now()
	var stale []string
	for id, raw := range stamps {
		seen, ok := parseStamp(raw)
		if !ok || !(domain.Location{UpdatedAt: seen}).Fresh(now, g.ttl) {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	members := make([]interface{}, len(stale))
	for i, id := range stale {
		members[i] = id
	}
	_, err = g.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, geoKey, members...)
		pipe.HDel(ctx, seenKey, stale...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune stale locations: %w", err)
	}

	g.log.Debug("pruned stale courier locations", zap.Int("count", len(stale)))
	return len(stale), nil
}

func parseStamp(v interface{}) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
