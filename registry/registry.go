package registry

import (
	"fmt"
	"math/big"
	"sync"

	log "github.com/inconshreveable/log15"

	"github.com/HexSyn0x0/Synaptix/common"
	"github.com/HexSyn0x0/Synaptix/params"
)

// Registry owns all per-node state and the enumerable node set.
//
// Mutating operations follow a fixed order: capability check, pause
// gate, domain preconditions against a config snapshot taken at entry,
// state mutation, outbound port call. The port call happens after the
// mutation is committed; if the port rejects, the mutation is
// compensated before the lock is released so the operation stays
// all-or-nothing.
type Registry struct {
	mu     sync.Mutex
	cfg    params.RegistryConfig
	nodes  map[common.Address]*Node
	set    nodeSet
	value  ValuePort
	paused bool
	log    log.Logger
}

// New creates a Registry with the given configuration and value port.
func New(cfg params.RegistryConfig, value ValuePort) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if value == nil {
		return nil, fmt.Errorf("registry: nil value port")
	}
	return &Registry{
		cfg:   cfg.Copy(),
		nodes: make(map[common.Address]*Node),
		set:   newNodeSet(),
		value: value,
		log:   log.New("module", "registry"),
	}, nil
}

// Register creates a node record for the caller, escrowing amount as
// collateral. It fails if the caller is already registered (including
// banned records, which never leave the registry) or if amount is below
// the configured minimum stake.
func (r *Registry) Register(auth AuthContext, now uint64, amount *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.paused {
		return ErrPaused
	}
	cfg := r.cfg
	if _, ok := r.nodes[auth.Caller]; ok {
		return ErrAlreadyRegistered
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if amount.Cmp(cfg.MinimumStake) < 0 {
		return ErrBelowMinimumStake
	}

	node := &Node{
		Operator:              auth.Caller,
		StakedAmount:          new(big.Int).Set(amount),
		Reputation:            cfg.MaxReputation / 2,
		RegisteredAt:          now,
		LastRewardAt:          now,
		LastHeartbeat:         now,
		LastPartialWithdrawal: now,
		Status:                StatusActive,
	}
	r.nodes[auth.Caller] = node
	r.set.add(auth.Caller)

	if err := r.value.Escrow(auth.Caller, node.StakedAmount); err != nil {
		r.set.remove(auth.Caller)
		delete(r.nodes, auth.Caller)
		return fmt.Errorf("registry: escrow: %w", err)
	}

	r.log.Info("registered node", "node", auth.Caller, "stake", amount, "reputation", node.Reputation)
	return nil
}

// IncreaseStake escrows amount and adds it to the caller's stake.
// The node's status is unchanged.
func (r *Registry) IncreaseStake(auth AuthContext, now uint64, amount *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.paused {
		return ErrPaused
	}
	node, ok := r.nodes[auth.Caller]
	if !ok {
		return ErrUnknownNode
	}
	if node.Status == StatusBanned {
		return ErrNodeBanned
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	node.StakedAmount.Add(node.StakedAmount, amount)

	if err := r.value.Escrow(auth.Caller, amount); err != nil {
		node.StakedAmount.Sub(node.StakedAmount, amount)
		return fmt.Errorf("registry: escrow: %w", err)
	}

	r.log.Debug("stake increased", "node", auth.Caller, "added", amount, "stake", node.StakedAmount)
	return nil
}

// RequestWithdrawal starts a full exit: the caller's node transitions
// from Active to CoolingDown and the unlock timer starts.
func (r *Registry) RequestWithdrawal(auth AuthContext, now uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.paused {
		return ErrPaused
	}
	cfg := r.cfg
	node, ok := r.nodes[auth.Caller]
	if !ok {
		return ErrUnknownNode
	}
	if node.Status != StatusActive {
		return ErrNotActive
	}

	node.Status = StatusCoolingDown
	node.WithdrawUnlockTime = now + cfg.WithdrawalDelay

	r.log.Info("withdrawal requested", "node", auth.Caller, "unlock", node.WithdrawUnlockTime)
	return nil
}

// RequestPartialWithdrawal pays out part of the caller's stake
// immediately, without leaving the Active status. Successive partial
// withdrawals are separated by the configured cooldown.
func (r *Registry) RequestPartialWithdrawal(auth AuthContext, now uint64, amount *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.paused {
		return ErrPaused
	}
	cfg := r.cfg
	node, ok := r.nodes[auth.Caller]
	if !ok {
		return ErrUnknownNode
	}
	if node.Status != StatusActive {
		return ErrNotActive
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if amount.Cmp(node.StakedAmount) > 0 {
		return ErrAmountExceedsStake
	}
	if now < node.LastPartialWithdrawal+cfg.PartialWithdrawalCooldown {
		return ErrCooldownActive
	}

	prevLast := node.LastPartialWithdrawal
	node.StakedAmount.Sub(node.StakedAmount, amount)
	node.LastPartialWithdrawal = now

	if err := r.value.Payout(auth.Caller, amount); err != nil {
		node.StakedAmount.Add(node.StakedAmount, amount)
		node.LastPartialWithdrawal = prevLast
		return fmt.Errorf("registry: payout: %w", err)
	}

	r.log.Info("partial withdrawal", "node", auth.Caller, "amount", amount, "remaining", node.StakedAmount)
	return nil
}

// WithdrawStake finalizes a full exit after the cooldown elapsed: the
// remaining stake is paid out, the record destroyed and the address
// removed from the enumerable set. Available even while paused so that
// an exit already in motion can always complete.
func (r *Registry) WithdrawStake(auth AuthContext, now uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[auth.Caller]
	if !ok {
		return ErrUnknownNode
	}
	if node.Status != StatusCoolingDown {
		return ErrNotCoolingDown
	}
	if now < node.WithdrawUnlockTime {
		return ErrWithdrawalLocked
	}

	amount := node.StakedAmount
	node.StakedAmount = new(big.Int)
	node.Status = StatusInactive
	r.set.remove(auth.Caller)
	delete(r.nodes, auth.Caller)

	if err := r.value.Payout(auth.Caller, amount); err != nil {
		node.StakedAmount = amount
		node.Status = StatusCoolingDown
		r.nodes[auth.Caller] = node
		r.set.add(auth.Caller)
		return fmt.Errorf("registry: payout: %w", err)
	}

	r.log.Info("stake withdrawn", "node", auth.Caller, "amount", amount)
	return nil
}

// Slash charges node the base amount plus the configured penalty,
// decrements its reputation by the fixed step and pays the total to the
// calling authority. If the total reaches the full stake, the charge is
// clamped to the stake and the node is banned. Slashing stays available
// while paused.
func (r *Registry) Slash(auth AuthContext, node common.Address, baseAmount *big.Int) (SlashResult, error) {
	if !auth.Has(RoleSlasher) {
		return SlashResult{}, ErrUnauthorized
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cfg := r.cfg
	rec, ok := r.nodes[node]
	if !ok {
		return SlashResult{}, ErrUnknownNode
	}
	if rec.Status == StatusBanned {
		return SlashResult{}, ErrNodeBanned
	}
	if baseAmount == nil || baseAmount.Sign() <= 0 {
		return SlashResult{}, ErrInvalidAmount
	}

	// penalty = baseAmount * multiplier / BPSDivisor, truncating.
	penalty := new(big.Int).Mul(baseAmount, new(big.Int).SetUint64(cfg.SlashPenaltyMultiplier))
	penalty.Div(penalty, new(big.Int).SetUint64(params.BPSDivisor))
	total := new(big.Int).Add(baseAmount, penalty)

	prevStake := new(big.Int).Set(rec.StakedAmount)
	prevStatus := rec.Status
	prevRep := rec.Reputation

	banned := false
	if total.Cmp(rec.StakedAmount) >= 0 {
		total = prevStake
		rec.StakedAmount = new(big.Int)
		rec.Status = StatusBanned
		banned = true
	} else {
		rec.StakedAmount.Sub(rec.StakedAmount, total)
	}
	if rec.Reputation > params.ReputationSlashStep {
		rec.Reputation -= params.ReputationSlashStep
	} else {
		rec.Reputation = 0
	}

	if err := r.value.Payout(auth.Caller, total); err != nil {
		rec.StakedAmount = prevStake
		rec.Status = prevStatus
		rec.Reputation = prevRep
		return SlashResult{}, fmt.Errorf("registry: payout: %w", err)
	}

	r.log.Warn("slashed node",
		"node", node, "base", baseAmount, "total", total,
		"remaining", rec.StakedAmount, "reputation", rec.Reputation, "banned", banned)
	return SlashResult{Total: total, Reputation: rec.Reputation, Banned: banned}, nil
}

// SetReputation overwrites a node's reputation, independent of the slash
// decrement path.
func (r *Registry) SetReputation(auth AuthContext, node common.Address, value uint64) error {
	if !auth.Has(RoleAdmin) {
		return ErrUnauthorized
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if value > r.cfg.MaxReputation {
		return ErrReputationOutOfRange
	}
	rec, ok := r.nodes[node]
	if !ok {
		return ErrUnknownNode
	}
	rec.Reputation = value
	r.log.Debug("reputation set", "node", node, "reputation", value)
	return nil
}

// SetStatus overwrites a node's status. This is a raw administrative
// override: it performs no transition bookkeeping, in particular it
// never removes the record from the enumerable set.
func (r *Registry) SetStatus(auth AuthContext, node common.Address, status NodeStatus) error {
	if !auth.Has(RoleAdmin) {
		return ErrUnauthorized
	}
	if !status.Valid() {
		return ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.nodes[node]
	if !ok {
		return ErrUnknownNode
	}
	rec.Status = status
	r.log.Debug("status set", "node", node, "status", status)
	return nil
}

// SetParameters replaces the configuration bundle. The new bundle only
// affects operations evaluated after the change; existing records are
// never recomputed.
func (r *Registry) SetParameters(auth AuthContext, cfg params.RegistryConfig) error {
	if !auth.Has(RoleAdmin) {
		return ErrUnauthorized
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.cfg = cfg.Copy()
	r.log.Info("parameters updated", "config", r.cfg)
	return nil
}

// Pause rejects new entry into registration, top-up and
// withdrawal-request operations. Finalizing an already-requested
// withdrawal and privileged slashing stay available.
func (r *Registry) Pause(auth AuthContext) error {
	if !auth.Has(RolePauser) {
		return ErrUnauthorized
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = true
	r.log.Warn("registry paused", "by", auth.Caller)
	return nil
}

// Unpause re-enables the gated entry points.
func (r *Registry) Unpause(auth AuthContext) error {
	if !auth.Has(RolePauser) {
		return ErrUnauthorized
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = false
	r.log.Warn("registry unpaused", "by", auth.Caller)
	return nil
}

// Heartbeat records a liveness signal for the caller's node.
func (r *Registry) Heartbeat(auth AuthContext, now uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[auth.Caller]
	if !ok {
		return ErrUnknownNode
	}
	if node.Status != StatusActive {
		return ErrNotActive
	}
	node.LastHeartbeat = now
	return nil
}

// IsNode reports whether addr has a record (banned records included).
func (r *Registry) IsNode(addr common.Address) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.nodes[addr]
	return ok
}

// GetNode returns a snapshot of addr's record.
func (r *Registry) GetNode(addr common.Address) (Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.nodes[addr]
	if !ok {
		return Node{}, ErrUnknownNode
	}
	return rec.copy(), nil
}

// GetAllNodes returns the enumerable set in swap-and-remove order
// (not registration order).
func (r *Registry) GetAllNodes() []common.Address {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.set.all()
}

// NodeCount returns the size of the enumerable set.
func (r *Registry) NodeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.set.len()
}

// IsLive reports whether addr's last heartbeat is within the configured
// heartbeat interval. Unknown addresses are never live.
func (r *Registry) IsLive(addr common.Address, now uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.nodes[addr]
	if !ok {
		return false
	}
	if now < rec.LastHeartbeat {
		return true
	}
	return now-rec.LastHeartbeat <= r.cfg.HeartbeatInterval
}

// Config returns a copy of the current configuration snapshot.
func (r *Registry) Config() params.RegistryConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg.Copy()
}

// Paused reports whether the registry is paused.
func (r *Registry) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}
