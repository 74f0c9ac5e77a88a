// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/meshlock/warden/warden"
)

// Config carries the ledger parameters that are fixed per deployment.
type Config struct {
	// Policy names the lien aggregation policy, max or sum.
	Policy string `yaml:"policy"`
	// UnbondingPeriod is the release delay of unstakes, in seconds.
	UnbondingPeriod uint64 `yaml:"unbondingPeriod"`
	// ActivityWindow is how long the node may go without an applied
	// validator update before reporting unhealthy, in seconds.
	ActivityWindow uint64 `yaml:"activityWindow"`

	LocalStaking LocalStakingConfig `yaml:"localStaking"`
	Channel      ChannelConfig      `yaml:"channel"`
}

// LocalStakingConfig parameterizes the native staking lienholder.
type LocalStakingConfig struct {
	// Address under which the backend is registered as a lienholder.
	Address string `yaml:"address"`
	// SlashRatio is the fraction of a lien the backend may slash.
	SlashRatio string `yaml:"slashRatio"`
}

// ChannelConfig pins the only counterparty allowed to open the validator
// sync channel.
type ChannelConfig struct {
	ConnectionID string `yaml:"connectionId"`
	PortID       string `yaml:"portId"`
}

func defaultConfig() *Config {
	return &Config{
		Policy:          "max",
		UnbondingPeriod: 21 * 24 * 3600,
		ActivityWindow:  3600,
		LocalStaking: LocalStakingConfig{
			Address:    "0x00000000000000000000006c6f63616c7374616b",
			SlashRatio: "0.1",
		},
		Channel: ChannelConfig{
			ConnectionID: "connection-0",
			PortID:       "provider-port",
		},
	}
}

// loadConfig returns the defaults overlaid with the YAML file named by the
// config flag, if any. Unknown fields are rejected.
func loadConfig(ctx *cli.Context) (*Config, error) {
	cfg := defaultConfig()

	if path := ctx.String(configFlag.Name); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config")
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config [%v]", path)
		}
	}

	if _, err := cfg.stakingAddress(); err != nil {
		return nil, err
	}
	if _, err := cfg.slashRatio(); err != nil {
		return nil, err
	}
	if cfg.Channel.ConnectionID == "" || cfg.Channel.PortID == "" {
		return nil, errors.New("config: channel endpoint must be set")
	}
	return cfg, nil
}

func (c *Config) stakingAddress() (warden.Address, error) {
	addr, err := warden.ParseAddress(c.LocalStaking.Address)
	if err != nil {
		return warden.Address{}, errors.WithMessage(err, "config: localStaking.address")
	}
	return *addr, nil
}

func (c *Config) slashRatio() (decimal.Decimal, error) {
	ratio, err := decimal.NewFromString(c.LocalStaking.SlashRatio)
	if err != nil {
		return decimal.Decimal{}, errors.WithMessage(err, "config: localStaking.slashRatio")
	}
	if ratio.IsNegative() || ratio.GreaterThan(decimal.New(1, 0)) {
		return decimal.Decimal{}, errors.New("config: localStaking.slashRatio must be within [0, 1]")
	}
	return ratio, nil
}
