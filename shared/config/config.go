package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	HttpPort       int      `yaml:"http_port" validate:"required,min=1,max=65535"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	LogLevel       string   `yaml:"log_level"`
	LogJSON        bool     `yaml:"log_json"`
	EnableHSTS     bool     `yaml:"enable_hsts"` // set when served over https

	MediaPath      string `yaml:"media_path" validate:"required"`
	StorageBackend string `yaml:"storage_backend" validate:"required,oneof=postgres mongo memory"`

	MaxAttachmentsPerPost  int   `yaml:"max_attachments_per_post" validate:"required,min=1"`
	MaxTotalAttachmentSize int64 `yaml:"max_total_attachment_size" validate:"required,min=1"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps"` // 0 disables limiting of mutating routes
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	MediaGCInterval        time.Duration `yaml:"media_gc_interval"` // 0 disables the collector
	MediaGCSafetyThreshold time.Duration `yaml:"media_gc_safety_threshold"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Mongo struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type Private struct {
	Pg    Pg    `yaml:"pg"`
	Mongo Mongo `yaml:"mongo"`
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic(fmt.Sprintf("can't unmarshal config file %s: %v", configPath, err))
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{Public: public, Private: private}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		panic(err.Error())
	}
	return cfg
}

func (c *Config) setDefaults() {
	if c.Public.LogLevel == "" {
		c.Public.LogLevel = "info"
	}
	if c.Public.MediaGCSafetyThreshold == 0 {
		c.Public.MediaGCSafetyThreshold = time.Hour
	}
	if c.Public.ShutdownTimeout == 0 {
		c.Public.ShutdownTimeout = 10 * time.Second
	}
	if c.Public.RateLimitRPS > 0 && c.Public.RateLimitBurst == 0 {
		c.Public.RateLimitBurst = 1
	}
	if c.Private.Mongo.Database == "" {
		c.Private.Mongo.Database = "postwall"
	}
}

func (c *Config) validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c.Public); err != nil {
		return fmt.Errorf("invalid public config: %w", err)
	}
	switch c.Public.StorageBackend {
	case BackendPostgres:
		if c.Private.Pg.Host == "" || c.Private.Pg.Dbname == "" {
			return fmt.Errorf("invalid private config: pg.host and pg.dbname are required for the %s backend", BackendPostgres)
		}
	case BackendMongo:
		if c.Private.Mongo.URI == "" {
			return fmt.Errorf("invalid private config: mongo.uri is required for the %s backend", BackendMongo)
		}
	}
	return nil
}
