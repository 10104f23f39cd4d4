package config

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Env      string
	Port     int
	BasePath string

	Database DatabaseConfig
	Store    StoreConfig
	Redis    RedisConfig
	Cache    CacheConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Listing  ListingConfig
	Client   ClientConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	TablePrefix  string
	QueryTimeout time.Duration
}

// StoreConfig selects the record store backing the listings.
type StoreConfig struct {
	Driver   string
	SeedFile string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig tunes response caching for suggestions and statistics.
type CacheConfig struct {
	SuggestionTTL time.Duration
	StatisticsTTL time.Duration
}

type JWTConfig struct {
	Enabled      bool
	Secret       string
	Issuer       string
	AllowedRoles []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ListingConfig bounds the list/search protocol shared by every page.
type ListingConfig struct {
	DefaultPageSize    int
	MaxPageSize        int
	PerPageOptions     []int
	SuggestionLimit    int
	SuggestionMinChars int
	ActiveWindow       time.Duration
	ExportMaxRows      int
}

// ClientConfig is handed to list controllers (browser and terminal).
type ClientConfig struct {
	Debounce       time.Duration
	BlurGrace      time.Duration
	RequestTimeout time.Duration
	// Mode is "reload" or "ajax".
	Mode string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.BasePath = "/" + strings.Trim(v.GetString("BASE_PATH"), "/")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		TablePrefix:  v.GetString("DB_TABLE_PREFIX"),
		QueryTimeout: parseDuration(v.GetString("DB_QUERY_TIMEOUT"), 5*time.Second),
	}

	cfg.Store = StoreConfig{
		Driver:   strings.ToLower(v.GetString("STORE_DRIVER")),
		SeedFile: v.GetString("STORE_SEED_FILE"),
	}
	if cfg.Store.Driver != StoreDriverMemory {
		cfg.Store.Driver = StoreDriverPostgres
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		SuggestionTTL: parseDuration(v.GetString("SUGGESTION_CACHE_TTL"), 30*time.Second),
		StatisticsTTL: parseDuration(v.GetString("STATISTICS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.JWT = JWTConfig{
		Enabled:      v.GetBool("AUTH_ENABLED"),
		Secret:       v.GetString("JWT_SECRET"),
		Issuer:       v.GetString("JWT_ISSUER"),
		AllowedRoles: splitAndTrim(v.GetString("AUTH_ALLOWED_ROLES")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Listing = ListingConfig{
		DefaultPageSize:    v.GetInt("LISTING_DEFAULT_PAGE_SIZE"),
		MaxPageSize:        v.GetInt("LISTING_MAX_PAGE_SIZE"),
		PerPageOptions:     splitInts(v.GetString("LISTING_PER_PAGE_OPTIONS")),
		SuggestionLimit:    v.GetInt("LISTING_SUGGESTION_LIMIT"),
		SuggestionMinChars: v.GetInt("LISTING_SUGGESTION_MIN_CHARS"),
		ActiveWindow:       parseDuration(v.GetString("LISTING_ACTIVE_WINDOW"), 30*24*time.Hour),
		ExportMaxRows:      v.GetInt("LISTING_EXPORT_MAX_ROWS"),
	}

	cfg.Client = ClientConfig{
		Debounce:       parseDuration(v.GetString("CLIENT_DEBOUNCE"), 300*time.Millisecond),
		BlurGrace:      parseDuration(v.GetString("CLIENT_BLUR_GRACE"), 200*time.Millisecond),
		RequestTimeout: parseDuration(v.GetString("CLIENT_REQUEST_TIMEOUT"), 8*time.Second),
		Mode:           strings.ToLower(v.GetString("CLIENT_MODE")),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("BASE_PATH", "/admin")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "moodle")
	v.SetDefault("DB_PASSWORD", "moodle")
	v.SetDefault("DB_NAME", "moodle")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_TABLE_PREFIX", "mdl_")
	v.SetDefault("DB_QUERY_TIMEOUT", "5s")

	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("STORE_SEED_FILE", "")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SUGGESTION_CACHE_TTL", "30s")
	v.SetDefault("STATISTICS_CACHE_TTL", "5m")

	v.SetDefault("AUTH_ENABLED", true)
	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("AUTH_ALLOWED_ROLES", "SUPERADMIN,ADMIN,MANAGER")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("LISTING_DEFAULT_PAGE_SIZE", 20)
	v.SetDefault("LISTING_MAX_PAGE_SIZE", 100)
	v.SetDefault("LISTING_PER_PAGE_OPTIONS", "10,20,50,100")
	v.SetDefault("LISTING_SUGGESTION_LIMIT", 10)
	v.SetDefault("LISTING_SUGGESTION_MIN_CHARS", 2)
	v.SetDefault("LISTING_ACTIVE_WINDOW", "720h")
	v.SetDefault("LISTING_EXPORT_MAX_ROWS", 5000)

	v.SetDefault("CLIENT_DEBOUNCE", "300ms")
	v.SetDefault("CLIENT_BLUR_GRACE", "200ms")
	v.SetDefault("CLIENT_REQUEST_TIMEOUT", "8s")
	v.SetDefault("CLIENT_MODE", "reload")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func splitInts(raw string) []int {
	parts := splitAndTrim(raw)
	result := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			continue
		}
		result = append(result, n)
	}
	return result
}
