package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/quantidexyz/levr-gov/x/gov"
	"github.com/quantidexyz/levr-gov/x/stake"
	"github.com/quantidexyz/levr-gov/x/treasury"
)

const (
	DefaultListenAddr = "localhost:26679"
	DefaultDBBackend  = "goleveldb"
)

// Config is the daemon configuration. Governance knobs live in two
// layers: Gov holds the defaults, Tokens overrides them per treasury
// asset. A token absent from Tokens governs with the defaults.
type Config struct {
	ListenAddr string `json:"listen_addr" mapstructure:"listen_addr"`
	DBBackend  string `json:"db_backend" mapstructure:"db_backend"`

	// VP normalizer, seconds of stake per unit of voting power
	StakeNormalizer int64 `json:"stake_normalizer" mapstructure:"stake_normalizer"`

	// length of the boost reward stream
	BoostPeriod time.Duration `json:"boost_period" mapstructure:"boost_period"`

	// treasury-shortfall retries before the cycle-advance escape hatch
	MaxExecutionAttempts int64 `json:"max_execution_attempts" mapstructure:"max_execution_attempts"`

	Gov    gov.GovParams            `json:"gov" mapstructure:"gov"`
	Tokens map[string]gov.GovParams `json:"tokens" mapstructure:"tokens"`
}

// DefaultConfig returns a config that runs without a config file.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:           DefaultListenAddr,
		DBBackend:            DefaultDBBackend,
		StakeNormalizer:      stake.DefaultNormalizer,
		BoostPeriod:          treasury.DefaultBoostPeriod,
		MaxExecutionAttempts: gov.DefaultMaxExecutionAttempts,
		Gov:                  gov.DefaultGovParams(),
	}
}

// Load reads <home>/config/config.toml over the defaults. A missing
// file is not an error; a malformed one is.
func Load(home string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(home + "/config")
	v.SetEnvPrefix("LEVRGOV")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "read config")
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the defaults and every per-token override.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen_addr is required")
	}
	if c.StakeNormalizer <= 0 {
		return errors.Errorf("stake_normalizer must be positive, got %d", c.StakeNormalizer)
	}
	if c.BoostPeriod <= 0 {
		return errors.Errorf("boost_period must be positive, got %s", c.BoostPeriod)
	}
	if c.MaxExecutionAttempts <= 0 {
		return errors.Errorf("max_execution_attempts must be positive, got %d", c.MaxExecutionAttempts)
	}
	if err := c.Gov.Validate(); err != nil {
		return errors.Wrap(err, "gov defaults")
	}
	for token, params := range c.Tokens {
		if err := params.Validate(); err != nil {
			return errors.Wrapf(err, "token %s", token)
		}
	}
	return nil
}

// GovParams returns the parameters governing a token, falling back to
// the defaults when the token has no override.
func (c *Config) GovParams(token string) (gov.GovParams, error) {
	if params, ok := c.Tokens[token]; ok {
		return params, nil
	}
	return c.Gov, nil
}

var _ gov.ParamSource = (*Config)(nil)
