package main

import (
	"fmt"
	"math/big"
	"os"

	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"

	"github.com/HexSyn0x0/Synaptix/params"
)

// fileConfig is the TOML override surface. Amounts are plain integers in
// base units; absent fields keep their protocol defaults.
type fileConfig struct {
	Registry struct {
		MinimumStake              *int64  `toml:"minimum_stake"`
		WithdrawalDelay           *uint64 `toml:"withdrawal_delay"`
		MaxReputation             *uint64 `toml:"max_reputation"`
		SlashPenaltyMultiplier    *uint64 `toml:"slash_penalty_multiplier"`
		HeartbeatInterval         *uint64 `toml:"heartbeat_interval"`
		PartialWithdrawalCooldown *uint64 `toml:"partial_withdrawal_cooldown"`
	} `toml:"registry"`
	Manager struct {
		MaxAllowedDowntime *uint64 `toml:"max_allowed_downtime"`
		BaseSlashAmount    *int64  `toml:"base_slash_amount"`
	} `toml:"manager"`
}

// loadConfigs returns the registry and manager configuration, starting
// from the protocol defaults and applying the --config TOML overrides
// if given.
func loadConfigs(c *cli.Context) (params.RegistryConfig, params.ManagerConfig, error) {
	rc := params.DefaultRegistryConfig()
	mc := params.DefaultManagerConfig()

	path := c.String(configFlag.Name)
	if path == "" {
		return rc, mc, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return rc, mc, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var fc fileConfig
	if err := toml.NewDecoder(f).Decode(&fc); err != nil {
		return rc, mc, fmt.Errorf("decode config %s: %w", path, err)
	}

	if v := fc.Registry.MinimumStake; v != nil {
		rc.MinimumStake = big.NewInt(*v)
	}
	if v := fc.Registry.WithdrawalDelay; v != nil {
		rc.WithdrawalDelay = *v
	}
	if v := fc.Registry.MaxReputation; v != nil {
		rc.MaxReputation = *v
	}
	if v := fc.Registry.SlashPenaltyMultiplier; v != nil {
		rc.SlashPenaltyMultiplier = *v
	}
	if v := fc.Registry.HeartbeatInterval; v != nil {
		rc.HeartbeatInterval = *v
	}
	if v := fc.Registry.PartialWithdrawalCooldown; v != nil {
		rc.PartialWithdrawalCooldown = *v
	}
	if v := fc.Manager.MaxAllowedDowntime; v != nil {
		mc.MaxAllowedDowntime = *v
	}
	if v := fc.Manager.BaseSlashAmount; v != nil {
		mc.BaseSlashAmount = big.NewInt(*v)
	}

	if err := rc.Validate(); err != nil {
		return rc, mc, err
	}
	if err := mc.Validate(); err != nil {
		return rc, mc, err
	}
	return rc, mc, nil
}

var commandParams = &cli.Command{
	Name:   "params",
	Usage:  "print the effective registry and manager configuration",
	Action: runParams,
}

func runParams(c *cli.Context) error {
	rc, mc, err := loadConfigs(c)
	if err != nil {
		return err
	}
	fmt.Printf("registry: %s\nmanager:  %s\n", rc, mc)
	return nil
}
