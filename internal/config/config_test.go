package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test from an empty working directory so config files
// of the repository do not leak in.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)
	inTempDir(t)
	t.Setenv("CONFIG_ENV", "missing")

	cfg, err := Load(nil)
	req.NoError(err)
	req.Equal(8080, cfg.Port)
	req.Equal("release", cfg.Mode)
	req.Equal(60*time.Second, cfg.Shuffle.Interval)
	req.Equal(5*time.Second, cfg.Shuffle.Countdown)
	req.Equal(10, cfg.JoinLimit.Count)
	req.Len(cfg.ICEServers, 1)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	req := require.New(t)
	dir := inTempDir(t)
	req.NoError(os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	req.NoError(os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), []byte(`
mode: debug
port: 9000
shuffle:
  interval: 30s
  countdown: 3s
ice_servers:
  - urls: ["turn:turn.example.org:3478"]
    username: u
    credential: p
`), 0o644))
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("SHUFFLE_LOG_LEVEL", "debug")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 8080, "")
	flags.Duration("shuffle-interval", time.Minute, "")
	req.NoError(flags.Parse([]string{"--port=9100"}))

	cfg, err := Load(flags)
	req.NoError(err)
	req.Equal("debug", cfg.Mode)
	req.Equal(9100, cfg.Port, "flag wins over file")
	req.Equal(30*time.Second, cfg.Shuffle.Interval, "unset flag does not override file")
	req.Equal(3*time.Second, cfg.Shuffle.Countdown)
	req.Equal("debug", cfg.LogLevel)

	ice, err := cfg.WebRTCICEServers()
	req.NoError(err)
	req.Equal("u", ice[0].Username)
	req.Equal("p", ice[0].Credential)
}

func validConfig() Config {
	return Config{
		Mode:       "release",
		Port:       8080,
		PingPeriod: 54 * time.Second,
		PongWait:   60 * time.Second,
		Shuffle:    ShuffleConfig{Interval: time.Minute, Countdown: 5 * time.Second},
		ICEServers: []ICEServerConfig{{URLs: []string{"stun:stun.l.google.com:19302"}}},
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"port zero":             func(c *Config) { c.Port = 0 },
		"port too big":          func(c *Config) { c.Port = 70000 },
		"unknown mode":          func(c *Config) { c.Mode = "prod" },
		"zero interval":         func(c *Config) { c.Shuffle.Interval = 0 },
		"countdown >= period":   func(c *Config) { c.Shuffle.Countdown = time.Minute },
		"ping after pong":       func(c *Config) { c.PingPeriod = 2 * time.Minute },
		"negative join limit":   func(c *Config) { c.JoinLimit.Count = -1 },
		"bad ice url":           func(c *Config) { c.ICEServers[0].URLs = []string{"http://nope"} },
		"turn without secret":   func(c *Config) { c.ICEServers[0].URLs = []string{"turn:turn.example.org"} },
		"ice entry without url": func(c *Config) { c.ICEServers[0].URLs = nil },
	}

	require.NoError(t, func() error { c := validConfig(); return c.Validate() }())

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}
