package params

import "math/big"

const (
	// BPSDivisor is the fixed divisor for basis-point scaled parameters
	// such as RegistryConfig.SlashPenaltyMultiplier.
	BPSDivisor uint64 = 10_000

	// ReputationSlashStep is the fixed reputation decrement applied by
	// every slash, floored at zero.
	ReputationSlashStep uint64 = 10

	DefaultMaxReputation             uint64 = 1000  // Upper reputation bound; new nodes start at half of it.
	DefaultWithdrawalDelay           uint64 = 3600  // Seconds between requesting and finalizing a full withdrawal.
	DefaultHeartbeatInterval         uint64 = 300   // Maximum heartbeat age accepted by Registry.IsLive.
	DefaultPartialWithdrawalCooldown uint64 = 86400 // Seconds between successive partial withdrawals.
	DefaultSlashPenaltyMultiplier    uint64 = 1000  // 10% penalty on top of the base slash amount.
	DefaultMaxAllowedDowntime        uint64 = 600   // Seconds of silence before the manager deems a node inactive.
)

var (
	// DefaultMinimumStake is the minimum collateral required to register, in base units.
	DefaultMinimumStake = big.NewInt(100 * Syn)

	// DefaultBaseSlashAmount is the base amount the manager passes to
	// Registry.Slash on each detected-inactivity event, in base units.
	DefaultBaseSlashAmount = big.NewInt(10 * Syn)
)
