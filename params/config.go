// Package params holds the Synaptix protocol constants and the
// admin-mutable configuration bundles for the node registry and the
// node manager.
package params

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	ErrNoMinimumStake   = errors.New("params: minimum stake must be positive")
	ErrNoMaxReputation  = errors.New("params: max reputation must be positive")
	ErrNoBaseSlash      = errors.New("params: base slash amount must be positive")
	ErrMultiplierTooBig = errors.New("params: slash penalty multiplier exceeds divisor")
)

// RegistryConfig is the registry's global configuration bundle.
//
// It is replaced wholesale by Registry.SetParameters and read once as a
// snapshot at the start of each operation; changes never retroactively
// recompute existing records.
type RegistryConfig struct {
	MinimumStake              *big.Int `toml:"minimum_stake"               json:"minimumStake"`
	WithdrawalDelay           uint64   `toml:"withdrawal_delay"            json:"withdrawalDelay"`
	MaxReputation             uint64   `toml:"max_reputation"              json:"maxReputation"`
	SlashPenaltyMultiplier    uint64   `toml:"slash_penalty_multiplier"    json:"slashPenaltyMultiplier"` // basis points over BPSDivisor
	HeartbeatInterval         uint64   `toml:"heartbeat_interval"          json:"heartbeatInterval"`
	PartialWithdrawalCooldown uint64   `toml:"partial_withdrawal_cooldown" json:"partialWithdrawalCooldown"`
}

// ManagerConfig is the node manager's configuration bundle.
type ManagerConfig struct {
	MaxAllowedDowntime uint64   `toml:"max_allowed_downtime" json:"maxAllowedDowntime"`
	BaseSlashAmount    *big.Int `toml:"base_slash_amount"    json:"baseSlashAmount"`
}

// DefaultRegistryConfig returns a RegistryConfig populated with the
// protocol defaults.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		MinimumStake:              new(big.Int).Set(DefaultMinimumStake),
		WithdrawalDelay:           DefaultWithdrawalDelay,
		MaxReputation:             DefaultMaxReputation,
		SlashPenaltyMultiplier:    DefaultSlashPenaltyMultiplier,
		HeartbeatInterval:         DefaultHeartbeatInterval,
		PartialWithdrawalCooldown: DefaultPartialWithdrawalCooldown,
	}
}

// DefaultManagerConfig returns a ManagerConfig populated with the
// protocol defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		MaxAllowedDowntime: DefaultMaxAllowedDowntime,
		BaseSlashAmount:    new(big.Int).Set(DefaultBaseSlashAmount),
	}
}

// Validate checks the bundle for values that would wedge the registry.
func (c *RegistryConfig) Validate() error {
	if c.MinimumStake == nil || c.MinimumStake.Sign() <= 0 {
		return ErrNoMinimumStake
	}
	if c.MaxReputation == 0 {
		return ErrNoMaxReputation
	}
	if c.SlashPenaltyMultiplier > BPSDivisor {
		return ErrMultiplierTooBig
	}
	return nil
}

// Validate checks the bundle for values that would wedge the manager.
func (c *ManagerConfig) Validate() error {
	if c.BaseSlashAmount == nil || c.BaseSlashAmount.Sign() <= 0 {
		return ErrNoBaseSlash
	}
	return nil
}

// Copy returns a deep copy so snapshots cannot alias the live bundle.
func (c RegistryConfig) Copy() RegistryConfig {
	cp := c
	if c.MinimumStake != nil {
		cp.MinimumStake = new(big.Int).Set(c.MinimumStake)
	}
	return cp
}

// Copy returns a deep copy so snapshots cannot alias the live bundle.
func (c ManagerConfig) Copy() ManagerConfig {
	cp := c
	if c.BaseSlashAmount != nil {
		cp.BaseSlashAmount = new(big.Int).Set(c.BaseSlashAmount)
	}
	return cp
}

// String implements fmt.Stringer.
func (c RegistryConfig) String() string {
	return fmt.Sprintf("{MinimumStake: %v WithdrawalDelay: %d MaxReputation: %d SlashPenaltyMultiplier: %d/%d HeartbeatInterval: %d PartialWithdrawalCooldown: %d}",
		c.MinimumStake, c.WithdrawalDelay, c.MaxReputation, c.SlashPenaltyMultiplier, BPSDivisor, c.HeartbeatInterval, c.PartialWithdrawalCooldown)
}

// String implements fmt.Stringer.
func (c ManagerConfig) String() string {
	return fmt.Sprintf("{MaxAllowedDowntime: %d BaseSlashAmount: %v}", c.MaxAllowedDowntime, c.BaseSlashAmount)
}
