// Package registry implements the Synaptix node registry: the
// stake/reputation/status state machine that tracks every participant of
// the compute network.
//
// All operations execute under a single registry mutex, so one command
// always completes fully before the next begins. Time-gated checks take
// the current logical time as an explicit parameter; the registry never
// samples a clock itself.
package registry

import (
	"errors"
	"math/big"

	"github.com/HexSyn0x0/Synaptix/common"
)

// NodeStatus represents the lifecycle state of a registered node.
type NodeStatus uint8

const (
	// StatusNone is the zero value; no record exists.
	StatusNone NodeStatus = 0
	// StatusActive means the node has locked stake and must heartbeat.
	StatusActive NodeStatus = 1
	// StatusCoolingDown means a full withdrawal was requested and the
	// unlock timer is running.
	StatusCoolingDown NodeStatus = 2
	// StatusInactive is terminal: the stake was withdrawn and the record
	// removed. It is never stored, only reported transiently.
	StatusInactive NodeStatus = 3
	// StatusBanned is terminal: the stake was fully slashed. The record
	// persists with zero stake and the address can never re-register.
	StatusBanned NodeStatus = 4
)

// String implements fmt.Stringer.
func (s NodeStatus) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusActive:
		return "active"
	case StatusCoolingDown:
		return "cooling-down"
	case StatusInactive:
		return "inactive"
	case StatusBanned:
		return "banned"
	}
	return "unknown"
}

// Valid reports whether s is a defined status.
func (s NodeStatus) Valid() bool { return s <= StatusBanned }

// Node is one participant record. Snapshots returned by GetNode are
// deep copies; mutating them never touches registry state.
type Node struct {
	Operator              common.Address
	StakedAmount          *big.Int
	Reputation            uint64
	RegisteredAt          uint64
	LastRewardAt          uint64
	LastHeartbeat         uint64
	LastPartialWithdrawal uint64
	WithdrawUnlockTime    uint64
	Status                NodeStatus
}

func (n *Node) copy() Node {
	cp := *n
	cp.StakedAmount = new(big.Int).Set(n.StakedAmount)
	return cp
}

// SlashResult reports the outcome of one slash operation.
type SlashResult struct {
	// Total is the exact amount charged to the node and paid to the
	// slashing authority (base amount plus penalty, clamped to the stake).
	Total *big.Int
	// Reputation is the node's reputation after the fixed-step decrement.
	Reputation uint64
	// Banned reports whether the slash exhausted the stake and the node
	// was banned.
	Banned bool
}

// ValuePort is the escrow/payout capability of the external value
// ledger. The registry consumes it and trusts it to do its own
// bookkeeping; a port error rejects the whole enclosing operation.
//
// Port implementations must not call back into the registry.
type ValuePort interface {
	Escrow(from common.Address, amount *big.Int) error
	Payout(to common.Address, amount *big.Int) error
}

// Sentinel errors returned by registry operations.
var (
	ErrUnauthorized         = errors.New("registry: caller lacks required role")
	ErrPaused               = errors.New("registry: paused")
	ErrAlreadyRegistered    = errors.New("registry: already registered")
	ErrUnknownNode          = errors.New("registry: unknown node")
	ErrNodeBanned           = errors.New("registry: node is banned")
	ErrBelowMinimumStake    = errors.New("registry: stake below minimum")
	ErrInvalidAmount        = errors.New("registry: amount must be positive")
	ErrAmountExceedsStake   = errors.New("registry: amount exceeds staked balance")
	ErrNotActive            = errors.New("registry: node not active")
	ErrNotCoolingDown       = errors.New("registry: no withdrawal requested")
	ErrCooldownActive       = errors.New("registry: partial withdrawal cooldown active")
	ErrWithdrawalLocked     = errors.New("registry: withdrawal still locked")
	ErrReputationOutOfRange = errors.New("registry: reputation exceeds maximum")
	ErrInvalidStatus        = errors.New("registry: invalid status")
)
