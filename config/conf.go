package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-yaml/yaml"
	"github.com/helpcomp/morning-bill-checker/reconcile"
)

const defaultRequestTimeout = 30 * time.Second

type appConfig struct {
	RequestTimeout string `yaml:"request_timeout"`
}

// MasterConfig is the content of config.yml.
type MasterConfig struct {
	// Roster maps each company expected to bill in every reporting period to
	// the minimum number of bills expected from it.
	Roster    map[string]int `yaml:"roster"`
	AppConfig appConfig      `yaml:"config"`
}

func InitConfig(file string) (*MasterConfig, error) {
	init := MasterConfig{}
	if err := init.getConf(file); err != nil {
		return nil, err
	}
	if err := init.Validate(); err != nil {
		return nil, err
	}
	return &init, nil
}

func (c *MasterConfig) getConf(file string) error {
	yamlFile, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(yamlFile, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", file, err)
	}
	return nil
}

// Validate checks the roster counts and the request timeout.
func (c *MasterConfig) Validate() error {
	if len(c.Roster) == 0 {
		return fmt.Errorf("config: roster is empty")
	}
	for name, count := range c.Roster {
		if name == "" {
			return fmt.Errorf("config: roster has an empty company name")
		}
		if count < 0 {
			return fmt.Errorf("config: company %q has negative expected count %d", name, count)
		}
	}
	if _, err := c.RequestTimeout(); err != nil {
		return err
	}
	return nil
}

// BuildRoster turns the configured roster into its immutable form.
func (c *MasterConfig) BuildRoster() (reconcile.Roster, error) {
	return reconcile.NewRoster(c.Roster)
}

// RequestTimeout bounds every call to the ledger API.
func (c *MasterConfig) RequestTimeout() (time.Duration, error) {
	if c.AppConfig.RequestTimeout == "" {
		return defaultRequestTimeout, nil
	}
	d, err := time.ParseDuration(c.AppConfig.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("config: invalid request_timeout %q: %w", c.AppConfig.RequestTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: request_timeout must be positive, got %s", d)
	}
	return d, nil
}
