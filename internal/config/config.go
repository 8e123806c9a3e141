package config

import (
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"iitb-internet/internal/model"
)

type Config struct {
	PortalHost string `yaml:"portal_host"`
	FallbackIP string `yaml:"fallback_ip"`

	// RequestInterval spaces consecutive portal requests. Zero disables pacing.
	RequestInterval time.Duration `yaml:"request_interval"`

	MetricsFile string `yaml:"metrics_file"`

	HistoryURI    string `yaml:"history_uri"`
	HistoryDB     string `yaml:"history_db"`
	HistoryCol    string `yaml:"history_collection"`
	HistoryPrefix string `yaml:"history_prefix"`
	HistoryMax    int64  `yaml:"history_max"`
}

func Load() *Config {
	return &Config{
		PortalHost: "internet.iitb.ac.in",

		HistoryDB:     "iitb_internet",
		HistoryCol:    "events",
		HistoryPrefix: "iitb-internet:",
		HistoryMax:    100,
	}
}

// LoadFile returns the defaults overlaid with the YAML file at path.
func LoadFile(path string) (*Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.PortalHost) == "" {
		return errors.New("portal_host is empty")
	}
	if c.FallbackIP != "" {
		if addr, err := netip.ParseAddr(c.FallbackIP); err != nil || !addr.Is4() {
			return errors.Errorf("fallback_ip %q is not an IPv4 address", c.FallbackIP)
		}
	}
	if c.RequestInterval < 0 {
		return errors.Errorf("request_interval %s is negative", c.RequestInterval)
	}
	if c.HistoryMax <= 0 {
		c.HistoryMax = 100
	}
	return nil
}

func (c *Config) Host() model.PortalHost {
	return model.PortalHost{Name: c.PortalHost, FallbackIP: c.FallbackIP}
}
