package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"

	defaultAdminTokenTTL      = 12 * time.Hour
	defaultWebPushTTL         = 24 * 60 * 60
	defaultWebPushConcurrency = 16
	defaultWebPushTimeout     = 10 * time.Second
	defaultPricesTimezone     = "Asia/Tashkent"
	defaultHistoryDays        = 30
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	SecretKey struct {
		Access string `json:"access" yaml:"access"`
	} `json:"secretKey" yaml:"secretKey"`

	// Admin holds the credentials of the dashboard operator
	Admin *AdminConfig `json:"admin" yaml:"admin"`

	// WebPush holds the VAPID credentials used for browser push delivery
	WebPush *WebPushConfig `json:"webPush" yaml:"webPush"`

	// Prices configures the price ledger
	Prices *PricesConfig `json:"prices" yaml:"prices"`

	// Site describes the public storefront the notifications link to
	Site *SiteConfig `json:"site" yaml:"site"`
}

// AdminConfig defines the admin login configuration
type AdminConfig struct {
	Username     string        `json:"username" yaml:"username"`
	PasswordHash string        `json:"passwordHash" yaml:"passwordHash"`
	TokenTTL     time.Duration `json:"tokenTtl" yaml:"tokenTtl"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`

	// SlowQuery is the duration above which SQL statements are logged as slow
	SlowQuery time.Duration `json:"slowQuery" yaml:"slowQuery"`
}

// WebPushConfig defines VAPID credentials and delivery tuning for Web Push
type WebPushConfig struct {
	PublicKey  string `json:"publicKey" yaml:"publicKey"`
	PrivateKey string `json:"privateKey" yaml:"privateKey"`
	// Subject is the contact of the sender, a mailto: or https: URL
	Subject string `json:"subject" yaml:"subject"`

	// TTL in seconds the push service keeps an undelivered message
	TTL int `json:"ttl" yaml:"ttl"`

	// Concurrency bounds parallel deliveries for a single price change
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// Timeout bounds a single delivery attempt
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Enabled reports whether all three VAPID settings are present.
func (c *WebPushConfig) Enabled() bool {
	return c != nil &&
		strings.TrimSpace(c.PublicKey) != "" &&
		strings.TrimSpace(c.PrivateKey) != "" &&
		strings.TrimSpace(c.Subject) != ""
}

// PricesConfig defines price ledger settings
type PricesConfig struct {
	// Timezone used to resolve "today" when a bulk update omits the date
	Timezone string `json:"timezone" yaml:"timezone"`

	// HistoryDays is the default window returned by product history endpoints
	HistoryDays int `json:"historyDays" yaml:"historyDays"`
}

// SiteConfig defines the public storefront settings
type SiteConfig struct {
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`
	Icon    string `json:"icon" yaml:"icon"`
	Badge   string `json:"badge" yaml:"badge"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: POSTGRES_SSLMODE -> postgres.sslMode (not postgres.sslmode)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	applyDefaults(cfg)

	// Build replicas from environment variables (POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, etc.)
	if cfg.Postgres != nil {
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	return cfg, nil
}

// applyDefaults fills optional sections so that consumers never deal with nil pointers.
func applyDefaults(cfg *Config) {
	if cfg.Admin == nil {
		cfg.Admin = &AdminConfig{}
	}
	if cfg.Admin.TokenTTL <= 0 {
		cfg.Admin.TokenTTL = defaultAdminTokenTTL
	}

	if cfg.WebPush == nil {
		cfg.WebPush = &WebPushConfig{}
	}
	if cfg.WebPush.TTL <= 0 {
		cfg.WebPush.TTL = defaultWebPushTTL
	}
	if cfg.WebPush.Concurrency <= 0 {
		cfg.WebPush.Concurrency = defaultWebPushConcurrency
	}
	if cfg.WebPush.Timeout <= 0 {
		cfg.WebPush.Timeout = defaultWebPushTimeout
	}

	if cfg.Prices == nil {
		cfg.Prices = &PricesConfig{}
	}
	if strings.TrimSpace(cfg.Prices.Timezone) == "" {
		cfg.Prices.Timezone = defaultPricesTimezone
	}
	if cfg.Prices.HistoryDays <= 0 {
		cfg.Prices.HistoryDays = defaultHistoryDays
	}

	if cfg.Site == nil {
		cfg.Site = &SiteConfig{}
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv builds the replicas slice from environment variables.
// Environment variable format: POSTGRES_REPLICAS_{index}_{field}
// Example: POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, POSTGRES_REPLICAS_0_USERNAME, POSTGRES_REPLICAS_0_PASSWORD
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			// No more replicas or incomplete configuration.
			break
		}

		replica := postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		}

		replicas = append(replicas, replica)
	}

	return replicas
}
