package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
// - min / max: inclusive numeric bounds checked after decoding
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// RedisURL is the connection string for the geo index, counters and caches.
	RedisURL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0" required:"true"`
	// DatabaseURL is the PostgreSQL DSN for the assignment ledger. Empty keeps the ledger in memory.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Orders holds the upstream order service configuration.
	Orders OrdersConfig `mapstructure:",squash"`

	// Notify holds the notification sink configuration.
	Notify NotifyConfig `mapstructure:",squash"`

	// Dispatch holds the courier assignment tuning.
	Dispatch DispatchConfig `mapstructure:",squash"`

	// Promotions holds the promotion catalog configuration.
	Promotions PromotionsConfig `mapstructure:",squash"`

	// Retry holds the bounded retry policy for transient failures.
	Retry RetryConfig `mapstructure:",squash"`
}

// OrdersConfig points at the service that owns order data.
type OrdersConfig struct {
	// URL is the base URL of the order service.
	URL string `mapstructure:"ORDERS_API_URL" required:"true"`
	// TimeoutSeconds bounds each request to the order service.
	TimeoutSeconds int `mapstructure:"ORDERS_API_TIMEOUT_SECONDS" default:"5" min:"1"`
}

// NotifyConfig configures the outbound notification webhook.
type NotifyConfig struct {
	// WebhookURL receives assignment notifications. Empty disables notifications.
	WebhookURL string `mapstructure:"NOTIFY_WEBHOOK_URL"`
	// RatePerSecond caps outbound webhook calls.
	RatePerSecond int `mapstructure:"NOTIFY_RATE_PER_SECOND" default:"20" min:"1"`
}

// DispatchConfig tunes the assigner, scheduler and sweeper.
type DispatchConfig struct {
	OfferTimeoutSeconds  int    `mapstructure:"ASSIGN_OFFER_TIMEOUT_SECONDS" default:"120" min:"30" max:"600"`
	Candidates           int    `mapstructure:"ASSIGN_CANDIDATES" default:"5" min:"1"`
	MaxAttempts          int    `mapstructure:"ASSIGN_MAX_ATTEMPTS" default:"5" min:"1"`
	RadiusStepsKm        string `mapstructure:"ASSIGN_RADIUS_STEPS_KM" default:"3,6,10"`
	WidenOnTimeout       bool   `mapstructure:"ASSIGN_WIDEN_ON_TIMEOUT" default:"true"`
	FlowDeadlineSeconds  int    `mapstructure:"ASSIGN_FLOW_DEADLINE_SECONDS" default:"300" min:"30"`
	MaxConcurrentJobs    int    `mapstructure:"ASSIGN_MAX_CONCURRENT_JOBS" default:"64" min:"1"`
	LocationTTLSeconds   int    `mapstructure:"LOCATION_TTL_SECONDS" default:"300" min:"1"`
	PrepBufferMinutes    int    `mapstructure:"DISPATCH_PREP_BUFFER_MINUTES" default:"10" min:"0"`
	DefaultPrepMinutes   int    `mapstructure:"DISPATCH_DEFAULT_PREP_MINUTES" default:"15" min:"1"`
	SweepIntervalSeconds int    `mapstructure:"SWEEP_INTERVAL_SECONDS" default:"15" min:"1"`
}

// PromotionsConfig locates the promotion catalog.
type PromotionsConfig struct {
	// File is the YAML catalog path.
	File string `mapstructure:"PROMOTIONS_FILE" default:"promotions.yaml"`
	// CacheTTLSeconds is how long the decoded catalog stays in the cache.
	CacheTTLSeconds int `mapstructure:"PROMOTIONS_CACHE_TTL_SECONDS" default:"60" min:"0"`
	// MinorUnitFactor is the number of minor units in one major unit of catalog prices.
	MinorUnitFactor int `mapstructure:"PROMOTIONS_MINOR_UNIT_FACTOR" default:"100" min:"1"`
}

// CacheTTL returns how long the decoded catalog stays cached.
func (p PromotionsConfig) CacheTTL() time.Duration {
	return time.Duration(p.CacheTTLSeconds) * time.Second
}

// RetryConfig is the policy used for lock contention and cache misses.
type RetryConfig struct {
	MaxAttempts int `mapstructure:"RETRY_MAX_ATTEMPTS" default:"3" min:"1"`
	BaseDelayMs int `mapstructure:"RETRY_BASE_DELAY_MS" default:"50" min:"1"`
	MaxDelayMs  int `mapstructure:"RETRY_MAX_DELAY_MS" default:"500" min:"1"`
}

// OfferTimeout returns the acceptance window as a duration.
func (d DispatchConfig) OfferTimeout() time.Duration {
	return time.Duration(d.OfferTimeoutSeconds) * time.Second
}

// FlowDeadline returns the outer deadline of one order's assignment flow.
func (d DispatchConfig) FlowDeadline() time.Duration {
	return time.Duration(d.FlowDeadlineSeconds) * time.Second
}

// LocationTTL returns how long a location ping stays fresh.
func (d DispatchConfig) LocationTTL() time.Duration {
	return time.Duration(d.LocationTTLSeconds) * time.Second
}

// SweepInterval returns the period of the overdue-offer sweeper.
func (d DispatchConfig) SweepInterval() time.Duration {
	return time.Duration(d.SweepIntervalSeconds) * time.Second
}

// RadiusSteps parses the comma separated radius list.
func (d DispatchConfig) RadiusSteps() ([]float64, error) {
	parts := strings.Split(d.RadiusStepsKm, ",")
	steps := make([]float64, 0, len(parts))
	prev := 0.0
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid radius step %q: %w", p, err)
		}
		if v <= prev {
			return nil, fmt.Errorf("radius steps must be positive and increasing: %s", d.RadiusStepsKm)
		}
		steps = append(steps, v)
		prev = v
	}
	if len(steps) == 0 {
		return nil, errors.New("at least one radius step is required")
	}
	return steps, nil
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if err := validateBounds(&config); err != nil {
		return nil, err
	}

	if _, err := config.Dispatch.RadiusSteps(); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("bind %s: %w", key, err)
			}
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// validateBounds enforces the min and max tags on integer fields.
func validateBounds(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateBounds(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Type.Kind() != reflect.Int {
			continue
		}

		key := field.Tag.Get("mapstructure")
		got := val.Field(i).Int()

		if raw := field.Tag.Get("min"); raw != "" {
			lo, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("bad min tag on %s: %w", key, err)
			}
			if got < lo {
				return fmt.Errorf("configuration %s=%d is below minimum %d", key, got, lo)
			}
		}

		if raw := field.Tag.Get("max"); raw != "" {
			hi, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("bad max tag on %s: %w", key, err)
			}
			if got > hi {
				return fmt.Errorf("configuration %s=%d is above maximum %d", key, got, hi)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
