package adapters

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"courier-dispatch/internal/core/target"
	"courier-dispatch/internal/features/promotions/domain"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk layout of the promotion catalog. Prices and
// percentages are strings so no precision is lost to floats.
type catalogFile struct {
	Promotions []promotionDTO `yaml:"promotions"`
}

type promotionDTO struct {
	ID                string          `yaml:"id"`
	Name              string          `yaml:"name"`
	SubType           string          `yaml:"sub_type"`
	Scope             domain.GeoScope `yaml:"scope"`
	MinOrderAmount    *int64          `yaml:"min_order_amount"`
	MaxOrderAmount    *int64          `yaml:"max_order_amount"`
	UsageLimit        *int64          `yaml:"usage_limit"`
	UsageLimitPerUser *int64          `yaml:"usage_limit_per_user"`
	StartDate         string          `yaml:"start_date"`
	EndDate           string          `yaml:"end_date"`
	Active            *bool           `yaml:"is_active"`
	DiscountPercent   string          `yaml:"discount_percent"`
	DeliveryCost      int64           `yaml:"delivery_cost"`
	Overrides         []overrideDTO   `yaml:"overrides"`
	Products          []string        `yaml:"products"`
	BundlePrice       string          `yaml:"bundle_price"`
}

type overrideDTO struct {
	Target string `yaml:"target"`
	Price  string `yaml:"price"`
}

// FileRepository reads the promotion catalog from a YAML file on every List.
// Wrap it in a CachedRepository to avoid re-reading.
type FileRepository struct {
	path string
}

// NewFileRepository creates a repository on the given path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// List returns the catalog in file order.
func (r *FileRepository) List(_ context.Context) ([]domain.Promotion, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read promotions file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog.
func ParseCatalog(data []byte) ([]domain.Promotion, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode promotions: %w", err)
	}

	promos := make([]domain.Promotion, 0, len(file.Promotions))
	for i, dto := range file.Promotions {
		p, err := dto.toDomain()
		if err != nil {
			return nil, fmt.Errorf("promotion %d (%s): %w", i, dto.ID, err)
		}
		promos = append(promos, p)
	}
	return promos, nil
}

func (d promotionDTO) toDomain() (domain.Promotion, error) {
	p := domain.Promotion{
		ID:                d.ID,
		Name:              d.Name,
		SubType:           domain.SubType(d.SubType),
		Scope:             d.Scope,
		MinOrderAmount:    d.MinOrderAmount,
		MaxOrderAmount:    d.MaxOrderAmount,
		UsageLimit:        d.UsageLimit,
		UsageLimitPerUser: d.UsageLimitPerUser,
		Active:            d.Active == nil || *d.Active,
		DeliveryCost:      d.DeliveryCost,
		Products:          d.Products,
	}

	var err error
	if p.StartDate, err = parseDate(d.StartDate); err != nil {
		return p, fmt.Errorf("start_date: %w", err)
	}
	if d.EndDate != "" {
		end, err := parseDate(d.EndDate)
		if err != nil {
			return p, fmt.Errorf("end_date: %w", err)
		}
		p.EndDate = &end
	}
	if p.DiscountPercent, err = parseDecimal(d.DiscountPercent); err != nil {
		return p, fmt.Errorf("discount_percent: %w", err)
	}
	if p.BundlePrice, err = parseDecimal(d.BundlePrice); err != nil {
		return p, fmt.Errorf("bundle_price: %w", err)
	}
	for _, o := range d.Overrides {
		t, err := target.Parse(o.Target)
		if err != nil {
			return p, err
		}
		price, err := parseDecimal(o.Price)
		if err != nil {
			return p, fmt.Errorf("override %s: %w", o.Target, err)
		}
		p.Overrides = append(p.Overrides, domain.PriceOverride{Target: t, Price: price})
	}
	return p, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// parseDate accepts RFC 3339 timestamps or plain dates, which mean midnight UTC.
// Empty means the zero time, i.e. started.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
