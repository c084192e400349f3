package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/slidinglog/rate-limiter/slidinglog"
)

var ErrFileNotFound = errors.New("config file not found")

// Rule is one rate-limit policy: at most Capacity events per key within
// the trailing Window.
type Rule struct {
	Capacity int           `mapstructure:"capacity"`
	Window   time.Duration `mapstructure:"window"`
}

func (r Rule) Validate() error {
	if r.Capacity < 0 {
		return fmt.Errorf("%w: capacity %d is negative", slidinglog.ErrInvalidConfiguration, r.Capacity)
	}
	if r.Window <= 0 {
		return fmt.Errorf("%w: window %v is not positive", slidinglog.ErrInvalidConfiguration, r.Window)
	}
	// The limiter works at millisecond precision; reject windows that
	// would truncate to zero instead of constructing a rule that never
	// binds its capacity.
	if r.Window < time.Millisecond {
		return fmt.Errorf("%w: window %v is shorter than one millisecond", slidinglog.ErrInvalidConfiguration, r.Window)
	}
	return nil
}

type Server struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Storage struct {
	Type  string `mapstructure:"type"` // memory or redis
	Redis struct {
		Addr        string        `mapstructure:"addr"`
		Password    string        `mapstructure:"password"`
		DB          int           `mapstructure:"db"`
		DialTimeout time.Duration `mapstructure:"dial_timeout"`
	} `mapstructure:"redis"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type Limits struct {
	Default Rule            `mapstructure:"default"`
	Clients map[string]Rule `mapstructure:"clients"`
}

type Config struct {
	Server  Server  `mapstructure:"server"`
	Storage Storage `mapstructure:"storage"`
	Limits  Limits  `mapstructure:"limits"`
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.dial_timeout", "5s")
	v.SetDefault("storage.sweep_interval", "30s")
	v.SetDefault("limits.default.capacity", 100)
	v.SetDefault("limits.default.window", "1m")
}

// Load reads configuration from an optional YAML file with environment
// overrides (prefix RATELIMITER, "__" for key nesting). A missing file is
// only an error when cfgFilePath names one explicitly.
func Load(cfgFilePath string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("RATELIMITER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if cfgFilePath == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	} else {
		if !fileExists(cfgFilePath) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, cfgFilePath)
		}
		v.SetConfigFile(cfgFilePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	decoderCfg := &mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	}
	dec, err := mapstructure.NewDecoder(decoderCfg)
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(v.AllSettings()); err != nil {
		return nil, err
	}

	if err := cfg.Limits.Default.Validate(); err != nil {
		return nil, fmt.Errorf("limits.default: %w", err)
	}
	for client, rule := range cfg.Limits.Clients {
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("limits.clients.%s: %w", client, err)
		}
	}

	return &cfg, nil
}
