package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config groups every runtime setting of the backoffice gateway.
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	REST      RESTConfig
	Security  SecurityConfig
	Kafka     KafkaConfig
	Websocket WebsocketConfig
	Views     ViewConfig
}

type ServerConfig struct {
	Port string
}

type LoggingConfig struct {
	Directory string
	Level     string
	Format    string
}

// RESTConfig points at the upstream e-commerce API.
type RESTConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SecurityConfig struct {
	JWTSecret    string
	JWTPublicKey string
	// AllowedRoles restricts staff access; empty accepts every valid token.
	AllowedRoles []string
}

// KafkaConfig lists the upstream change topics per collection.
type KafkaConfig struct {
	Brokers []string
	GroupID string
	Topics  map[string][]string
}

type WebsocketConfig struct {
	SendBuffer     int
	AllowedActions []string
	AutoLoad       bool
	// MutationsPerMinute bounds mutate commands per connected client.
	MutationsPerMinute int
}

// ViewConfig tunes the behaviour of every collection view.
type ViewConfig struct {
	SearchDelay    time.Duration
	RedirectDelay  time.Duration
	LoginPath      string
	DetailCacheTTL time.Duration
	DetailCacheMax int
}

var defaultKafkaTopics = map[string]string{
	"orders":     "backoffice.orders",
	"returns":    "backoffice.returns",
	"buybacks":   "backoffice.buybacks",
	"jobs":       "backoffice.jobs",
	"applicants": "backoffice.applicants",
	"products":   "backoffice.products",
}

// Load reads configuration from the environment, applying defaults for local runs.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envOrDefault("PORT", "8080"),
		},
		Logging: LoggingConfig{
			Directory: envOrDefault("LOG_DIR", "./logs"),
			Level:     envOrDefault("LOG_LEVEL", "info"),
			Format:    envOrDefault("LOG_FORMAT", "text"),
		},
		REST: RESTConfig{
			BaseURL: envOrDefault("REST_BASE_URL", "http://localhost:5000/api"),
		},
		Security: SecurityConfig{
			JWTSecret:    strings.TrimSpace(os.Getenv("JWT_SECRET")),
			JWTPublicKey: strings.ReplaceAll(strings.TrimSpace(os.Getenv("JWT_PUBLIC_KEY")), `\n`, "\n"),
			AllowedRoles: splitList(os.Getenv("JWT_ALLOWED_ROLES")),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(firstNonEmpty(os.Getenv("KAFKA_BROKERS"), os.Getenv("KAFKA_BROKER"))),
			GroupID: envOrDefault("KAFKA_GROUP_ID", "backoffice-ws"),
			Topics:  make(map[string][]string),
		},
		Websocket: WebsocketConfig{
			AllowedActions: splitList(envOrDefault("WS_ALLOWED_ACTIONS", "created,updated,deleted,status_changed")),
			AutoLoad:       !strings.EqualFold(envOrDefault("WS_AUTOLOAD", "true"), "false"),
		},
		Views: ViewConfig{
			LoginPath: envOrDefault("LOGIN_PATH", "/login"),
		},
	}

	var err error
	if cfg.REST.Timeout, err = durationFromEnv("REST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Views.SearchDelay, err = durationFromEnv("SEARCH_DEBOUNCE", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.Views.RedirectDelay, err = durationFromEnv("AUTH_REDIRECT_DELAY", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.Views.DetailCacheTTL, err = durationFromEnv("DETAIL_CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Views.DetailCacheMax, err = intFromEnv("DETAIL_CACHE_SIZE", 256); err != nil {
		return nil, err
	}
	if cfg.Websocket.SendBuffer, err = intFromEnv("WS_SEND_BUFFER", 16); err != nil {
		return nil, err
	}
	if cfg.Websocket.MutationsPerMinute, err = intFromEnv("WS_MUTATIONS_PER_MINUTE", 60); err != nil {
		return nil, err
	}

	for collection, fallback := range defaultKafkaTopics {
		key := "KAFKA_TOPIC_" + strings.ToUpper(collection)
		topics := splitList(envOrDefault(key, fallback))
		if len(topics) > 0 {
			cfg.Kafka.Topics[collection] = topics
		}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if parsed <= 0 {
		return fallback, nil
	}
	return parsed, nil
}

func splitList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
