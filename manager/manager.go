// Package manager implements the Synaptix node manager: the liveness
// monitor and slashing orchestrator that drives penalties through the
// node registry's capability interface.
package manager

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	log "github.com/inconshreveable/log15"

	"github.com/HexSyn0x0/Synaptix/common"
	"github.com/HexSyn0x0/Synaptix/params"
	"github.com/HexSyn0x0/Synaptix/registry"
)

// Sentinel errors returned by manager operations.
var (
	ErrPaused        = errors.New("manager: paused")
	ErrNotRegistered = errors.New("manager: caller is not a registered node")
)

// RegistryCapability is the slice of the node registry the manager
// consumes: membership checks, record lookup, enumeration and slashing.
type RegistryCapability interface {
	IsNode(addr common.Address) bool
	GetNode(addr common.Address) (registry.Node, error)
	GetAllNodes() []common.Address
	Slash(auth registry.AuthContext, node common.Address, baseAmount *big.Int) (registry.SlashResult, error)
}

// RewardsPort is the external reward-accrual capability. The manager
// forwards proxy operations unchanged after a membership check and
// performs no accounting of its own.
type RewardsPort interface {
	Stake(from common.Address, amount *big.Int) error
	Withdraw(to common.Address, amount *big.Int) error
	Claim(to common.Address) (*big.Int, error)
}

// Liveness is the result of one liveness evaluation.
type Liveness struct {
	LastActive uint64
	Downtime   uint64
	Active     bool
}

// Manager watches node liveness and orchestrates automated slashing.
//
// It keeps its own per-node activity clock, independent of the
// registry's heartbeat timestamps, and its own pause flag, independent
// of the registry's.
type Manager struct {
	mu         sync.Mutex
	registry   RegistryCapability
	rewards    RewardsPort
	cfg        params.ManagerConfig
	lastActive map[common.Address]uint64
	paused     bool
	log        log.Logger
}

// New creates a Manager over the given registry and rewards port.
func New(cfg params.ManagerConfig, reg RegistryCapability, rewards RewardsPort) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, fmt.Errorf("manager: nil registry")
	}
	if rewards == nil {
		return nil, fmt.Errorf("manager: nil rewards port")
	}
	return &Manager{
		registry:   reg,
		rewards:    rewards,
		cfg:        cfg.Copy(),
		lastActive: make(map[common.Address]uint64),
		log:        log.New("module", "manager"),
	}, nil
}

// Heartbeat records activity for the caller's node on the manager's own
// tracking clock.
func (m *Manager) Heartbeat(auth registry.AuthContext, now uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.paused {
		return ErrPaused
	}
	if !m.registry.IsNode(auth.Caller) {
		return ErrNotRegistered
	}
	m.lastActive[auth.Caller] = now
	return nil
}

// EvaluateLiveness reports node's downtime against the allowed maximum.
// A node that has never reported defaults to now, so it is considered
// live until its first missed window.
func (m *Manager) EvaluateLiveness(node common.Address, now uint64) Liveness {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evaluateLiveness(node, now)
}

func (m *Manager) evaluateLiveness(node common.Address, now uint64) Liveness {
	lastActive, ok := m.lastActive[node]
	if rec, err := m.registry.GetNode(node); err == nil {
		// A heartbeat recorded before the current registration belongs to
		// a previous life of the address. The downtime clock of a fresh
		// registration starts at its registration time.
		if !ok || lastActive < rec.RegisteredAt {
			lastActive, ok = rec.RegisteredAt, true
		}
	}
	if !ok || lastActive > now {
		lastActive = now
	}
	downtime := now - lastActive
	return Liveness{
		LastActive: lastActive,
		Downtime:   downtime,
		Active:     downtime <= m.cfg.MaxAllowedDowntime,
	}
}

// CheckAndSlash evaluates node's liveness and, if it exceeded the
// allowed downtime, slashes it through the registry. Banned nodes are
// skipped. Reports whether a slash was performed.
func (m *Manager) CheckAndSlash(auth registry.AuthContext, now uint64, node common.Address) (bool, error) {
	if !auth.Has(registry.RoleSlasher) {
		return false, registry.ErrUnauthorized
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.paused {
		return false, ErrPaused
	}
	return m.checkAndSlash(auth, now, node)
}

func (m *Manager) checkAndSlash(auth registry.AuthContext, now uint64, node common.Address) (bool, error) {
	live := m.evaluateLiveness(node, now)
	if live.Active {
		return false, nil
	}
	res, err := m.registry.Slash(auth, node, new(big.Int).Set(m.cfg.BaseSlashAmount))
	if err != nil {
		// A banned node stays in the enumerable set forever but cannot
		// be slashed again; not a sweep failure.
		if errors.Is(err, registry.ErrNodeBanned) {
			return false, nil
		}
		return false, err
	}
	m.log.Warn("slashed inactive node",
		"node", node, "downtime", live.Downtime,
		"charged", res.Total, "reputation", res.Reputation, "banned", res.Banned)
	return true, nil
}

// SweepAndSlash runs CheckAndSlash over the full registry enumeration
// and returns the number of slashes performed. Cost is linear in the
// node count, with no batching.
func (m *Manager) SweepAndSlash(auth registry.AuthContext, now uint64) (int, error) {
	if !auth.Has(registry.RoleSlasher) {
		return 0, registry.ErrUnauthorized
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.paused {
		return 0, ErrPaused
	}

	// Drop liveness entries of identities that exited the registry, so
	// the map does not keep growing with departed nodes.
	for addr := range m.lastActive {
		if !m.registry.IsNode(addr) {
			delete(m.lastActive, addr)
		}
	}

	slashed := 0
	for _, node := range m.registry.GetAllNodes() {
		ok, err := m.checkAndSlash(auth, now, node)
		if err != nil {
			return slashed, fmt.Errorf("manager: sweep at %s: %w", node, err)
		}
		if ok {
			slashed++
		}
	}
	m.log.Info("liveness sweep complete", "slashed", slashed)
	return slashed, nil
}

// Stake forwards a stake to the rewards port after a membership check.
func (m *Manager) Stake(auth registry.AuthContext, amount *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.paused {
		return ErrPaused
	}
	if !m.registry.IsNode(auth.Caller) {
		return ErrNotRegistered
	}
	return m.rewards.Stake(auth.Caller, amount)
}

// Withdraw forwards a withdrawal to the rewards port after a membership
// check.
func (m *Manager) Withdraw(auth registry.AuthContext, amount *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.paused {
		return ErrPaused
	}
	if !m.registry.IsNode(auth.Caller) {
		return ErrNotRegistered
	}
	return m.rewards.Withdraw(auth.Caller, amount)
}

// ClaimReward forwards a reward claim to the rewards port after a
// membership check.
func (m *Manager) ClaimReward(auth registry.AuthContext) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.paused {
		return nil, ErrPaused
	}
	if !m.registry.IsNode(auth.Caller) {
		return nil, ErrNotRegistered
	}
	return m.rewards.Claim(auth.Caller)
}

// Pause freezes the manager's own entry points, independent of the
// registry's pause flag.
func (m *Manager) Pause(auth registry.AuthContext) error {
	if !auth.Has(registry.RoleAdmin) {
		return registry.ErrUnauthorized
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
	m.log.Warn("manager paused", "by", auth.Caller)
	return nil
}

// Unpause re-enables the manager's entry points.
func (m *Manager) Unpause(auth registry.AuthContext) error {
	if !auth.Has(registry.RoleAdmin) {
		return registry.ErrUnauthorized
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = false
	m.log.Warn("manager unpaused", "by", auth.Caller)
	return nil
}

// SetParameters replaces the manager's configuration bundle.
func (m *Manager) SetParameters(auth registry.AuthContext, cfg params.ManagerConfig) error {
	if !auth.Has(registry.RoleAdmin) {
		return registry.ErrUnauthorized
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg.Copy()
	m.log.Info("parameters updated", "config", m.cfg)
	return nil
}

// Paused reports whether the manager is paused.
func (m *Manager) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Config returns a copy of the current configuration snapshot.
func (m *Manager) Config() params.ManagerConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.Copy()
}
