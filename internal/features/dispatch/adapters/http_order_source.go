package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"courier-dispatch/internal/core/config"
	"courier-dispatch/internal/core/httpclient"
	"courier-dispatch/internal/features/dispatch/domain"
)

// HTTPOrderSource implements ports.OrderSource against the order service REST API.
type HTTPOrderSource struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// baseURL is the order service root.
	baseURL string
}

// NewHTTPOrderSource creates a new order source from configuration.
func NewHTTPOrderSource(cfg config.OrdersConfig) *HTTPOrderSource {
	return &HTTPOrderSource{
		client:  httpclient.NewClient("orders", time.Duration(cfg.TimeoutSeconds)*time.Second),
		baseURL: cfg.URL,
	}
}

// GetOrder fetches an order and maps it to the dispatch read model.
func (s *HTTPOrderSource) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	endpoint := fmt.Sprintf("%s/orders/%s", s.baseURL, url.PathEscape(orderID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("order service returned status: %d", resp.StatusCode)
	}

	var raw orderPayload
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return raw.toDomain(orderID), nil
}

// HealthCheck verifies that the order service is reachable.
func (s *HTTPOrderSource) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("health check failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

type orderPayload struct {
	ID            string        `json:"id"`
	StoreID       string        `json:"store_id"`
	UserID        string        `json:"user_id"`
	PriorityLevel int           `json:"priority_level"`
	Pickup        *pointPayload `json:"pickup"`
	Dropoff       *pointPayload `json:"dropoff"`
	Items         []struct {
		ID string `json:"id"`
		// PrepTimeMinutes is null when the product has no prep time configured.
		PrepTimeMinutes *float64 `json:"prep_time_minutes"`
	} `json:"items"`
}

type pointPayload struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (p *pointPayload) toDomain() domain.Point {
	// Missing coordinates map to the zero point, which Validate rejects.
	if p == nil || p.Lat == nil || p.Lng == nil {
		return domain.Point{}
	}
	return domain.Point{Lat: *p.Lat, Lng: *p.Lng}
}

func (o orderPayload) toDomain(requestedID string) *domain.Order {
	id := o.ID
	if id == "" {
		id = requestedID
	}

	items := make([]domain.Item, 0, len(o.Items))
	for _, it := range o.Items {
		var prep time.Duration
		if it.PrepTimeMinutes != nil && *it.PrepTimeMinutes > 0 {
			prep = time.Duration(*it.PrepTimeMinutes * float64(time.Minute))
		}
		items = append(items, domain.Item{ID: it.ID, PrepTime: prep})
	}

	return &domain.Order{
		ID:            id,
		StoreID:       o.StoreID,
		UserID:        o.UserID,
		Pickup:        o.Pickup.toDomain(),
		Dropoff:       o.Dropoff.toDomain(),
		PriorityLevel: o.PriorityLevel,
		Items:         items,
	}
}
