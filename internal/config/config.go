package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type ShuffleConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	Countdown time.Duration `mapstructure:"countdown"`
}

type JoinLimitConfig struct {
	Count    int           `mapstructure:"count"`
	Interval time.Duration `mapstructure:"interval"`
}

type SignalLimitConfig struct {
	Rate  float64 `mapstructure:"rate"`
	Burst int     `mapstructure:"burst"`
}

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	PongWait   time.Duration `mapstructure:"pong_wait"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
	SendBuffer int           `mapstructure:"send_buffer"`
	Secret     string        `mapstructure:"secret"`
	LogLevel   string        `mapstructure:"log_level"`

	Shuffle     ShuffleConfig     `mapstructure:"shuffle"`
	JoinLimit   JoinLimitConfig   `mapstructure:"join_limit"`
	SignalLimit SignalLimitConfig `mapstructure:"signal_limit"`
	ICEServers  []ICEServerConfig `mapstructure:"ice_servers"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("secret", "change-me")
	v.SetDefault("log_level", "info")
	v.SetDefault("shuffle.interval", "60s")
	v.SetDefault("shuffle.countdown", "5s")
	v.SetDefault("join_limit.count", 10)
	v.SetDefault("join_limit.interval", "1m")
	v.SetDefault("signal_limit.rate", 50)
	v.SetDefault("signal_limit.burst", 100)
	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})
}

// Load reads config/config.<CONFIG_ENV>.yaml, then SHUFFLE_* environment
// variables, then any flag set on the command line, later sources winning.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	v.SetEnvPrefix("SHUFFLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).
		Str("static", cfg.StaticPath).Dur("shuffle_interval", cfg.Shuffle.Interval).Msg("config ready")
	return &cfg, nil
}

// bindFlags maps dashed flag names onto config keys: --static-path sets
// static_path, --shuffle-interval sets shuffle.interval.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if strings.HasPrefix(key, "shuffle_") {
			key = "shuffle." + strings.TrimPrefix(key, "shuffle_")
		}
		if bindErr := v.BindPFlag(key, f); bindErr != nil && err == nil {
			err = fmt.Errorf("bind flag %s: %w", f.Name, bindErr)
		}
	})
	return err
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	switch c.Mode {
	case "release", "debug", "test":
	default:
		return fmt.Errorf("invalid mode %q", c.Mode)
	}
	if c.Shuffle.Interval <= 0 || c.Shuffle.Countdown <= 0 {
		return errors.New("shuffle interval and countdown must be positive")
	}
	if c.Shuffle.Countdown >= c.Shuffle.Interval {
		return fmt.Errorf("shuffle countdown %s must be shorter than interval %s", c.Shuffle.Countdown, c.Shuffle.Interval)
	}
	if c.PongWait <= 0 || c.PingPeriod <= 0 || c.PingPeriod >= c.PongWait {
		return fmt.Errorf("ping period %s must be positive and shorter than pong wait %s", c.PingPeriod, c.PongWait)
	}
	if c.JoinLimit.Count < 0 || c.SignalLimit.Rate < 0 || c.SignalLimit.Burst < 0 {
		return errors.New("rate limits must not be negative")
	}
	if _, err := c.WebRTCICEServers(); err != nil {
		return err
	}
	return nil
}
