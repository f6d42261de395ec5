package config

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode      Mode   `mapstructure:"mode"`
	HTTPAddr  string `mapstructure:"http_addr"`
	PublicURL string `mapstructure:"public_url"`
	SiteID    string `mapstructure:"site_id"`

	DBDriver string `mapstructure:"db_driver"`
	DBDSN    string `mapstructure:"db_dsn"`

	BlobDriver   string `mapstructure:"blob_driver"`    // fs|minio
	BlobBasePath string `mapstructure:"blob_base_path"` // for fs

	MinioEndpoint  string `mapstructure:"minio_endpoint"`
	MinioAccessKey string `mapstructure:"minio_access_key"`
	MinioSecretKey string `mapstructure:"minio_secret_key"`
	MinioBucket    string `mapstructure:"minio_bucket"`
	MinioUseSSL    bool   `mapstructure:"minio_use_ssl"`

	SessionDriver string        `mapstructure:"session_driver"` // memory|redis
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	ResumeSecret  string        `mapstructure:"resume_secret"`

	AMQPURL      string `mapstructure:"amqp_url"`
	AMQPExchange string `mapstructure:"amqp_exchange"`

	// 0 seeds the question generator from the clock.
	GeneratorSeed uint64 `mapstructure:"generator_seed"`
	MaxUploadMB   int64  `mapstructure:"max_upload_mb"`

	CORSOriginsOnline  []string `mapstructure:"-"`
	CORSOriginsOffline []string `mapstructure:"-"`
}

var defaults = map[string]any{
	"mode":                 string(ModeOffline),
	"http_addr":            ":8080",
	"public_url":           "",
	"site_id":              "local",
	"db_driver":            "sqlite",
	"db_dsn":               "",
	"blob_driver":          "fs",
	"blob_base_path":       "./data",
	"minio_endpoint":       "localhost:9000",
	"minio_access_key":     "",
	"minio_secret_key":     "",
	"minio_bucket":         "edueval",
	"minio_use_ssl":        false,
	"session_driver":       "memory",
	"session_ttl":          "24h",
	"redis_addr":           "localhost:6379",
	"redis_password":       "",
	"redis_db":             0,
	"resume_secret":        "dev-secret-change-me",
	"amqp_url":             "",
	"amqp_exchange":        "edueval.events",
	"generator_seed":       0,
	"max_upload_mb":        20,
	"cors_origins_online":  "https://edueval.example.org",
	"cors_origins_offline": "http://localhost:3000,http://localhost:8501",
}

// Load reads .env (if present), then an optional config file, then the
// environment. Environment variables win; their names are the upper-case
// keys (HTTP_ADDR, DB_DRIVER, ...).
func Load(file string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Mode = Mode(strings.ToLower(string(cfg.Mode)))
	if cfg.Mode != ModeOnline {
		cfg.Mode = ModeOffline
	}
	cfg.CORSOriginsOnline = splitCSV(v.GetString("cors_origins_online"))
	cfg.CORSOriginsOffline = splitCSV(v.GetString("cors_origins_offline"))
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return cfg, nil
}

// FromEnv is Load without a config file; it never fails.
func FromEnv() Config {
	cfg, err := Load("")
	if err != nil {
		log.Printf("config: %v", err)
	}
	return cfg
}

// CORSOrigins returns the allow-list for the configured mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
