// Package rewards implements the staking-rewards port as a single
// global reward-per-share accumulator over the value ledger.
package rewards

import (
	"errors"
	"math/big"
	"sync"

	log "github.com/inconshreveable/log15"

	"github.com/HexSyn0x0/Synaptix/common"
	"github.com/HexSyn0x0/Synaptix/ledger"
	"github.com/HexSyn0x0/Synaptix/manager"
)

// Precision is the fixed-point scale for the per-share accumulator.
var Precision = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Sentinel errors returned by pool operations.
var (
	ErrInvalidAmount     = errors.New("rewards: amount must be positive")
	ErrInsufficientStake = errors.New("rewards: amount exceeds staked balance")
	ErrNoStake           = errors.New("rewards: nothing staked")
)

// Pool is an in-memory staking-rewards pool. Funding is spread over the
// current total stake via a per-share accumulator; stakers settle their
// accrued share into a pending pot whenever their stake changes, and
// Claim pays the pot out through the ledger.
type Pool struct {
	mu          sync.Mutex
	ledger      *ledger.Ledger
	account     common.Address
	stakes      map[common.Address]*big.Int
	rewardDebt  map[common.Address]*big.Int // accumulator snapshot at last settle
	pending     map[common.Address]*big.Int
	accPerShare *big.Int
	totalStaked *big.Int
	log         log.Logger
}

var _ manager.RewardsPort = (*Pool)(nil)

// NewPool creates a Pool holding staked value and undistributed rewards
// in account on l.
func NewPool(l *ledger.Ledger, account common.Address) *Pool {
	return &Pool{
		ledger:      l,
		account:     account,
		stakes:      make(map[common.Address]*big.Int),
		rewardDebt:  make(map[common.Address]*big.Int),
		pending:     make(map[common.Address]*big.Int),
		accPerShare: new(big.Int),
		totalStaked: new(big.Int),
		log:         log.New("module", "rewards"),
	}
}

// Stake locks amount from from into the pool.
func (p *Pool) Stake(from common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ledger.Transfer(from, p.account, amount); err != nil {
		return err
	}
	p.settle(from)
	stake := p.stake(from)
	stake.Add(stake, amount)
	p.totalStaked.Add(p.totalStaked, amount)
	p.log.Debug("staked", "from", from, "amount", amount, "total", p.totalStaked)
	return nil
}

// Withdraw unlocks amount of to's stake and returns it via the ledger.
func (p *Pool) Withdraw(to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	stake := p.stake(to)
	if stake.Cmp(amount) < 0 {
		return ErrInsufficientStake
	}
	p.settle(to)
	stake.Sub(stake, amount)
	p.totalStaked.Sub(p.totalStaked, amount)
	if err := p.ledger.Transfer(p.account, to, amount); err != nil {
		stake.Add(stake, amount)
		p.totalStaked.Add(p.totalStaked, amount)
		return err
	}
	p.log.Debug("withdrawn", "to", to, "amount", amount, "total", p.totalStaked)
	return nil
}

// Claim pays out to's pending rewards and returns the amount paid.
func (p *Pool) Claim(to common.Address) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.settle(to)
	pot, ok := p.pending[to]
	if !ok || pot.Sign() == 0 {
		return new(big.Int), nil
	}
	amount := new(big.Int).Set(pot)
	pot.SetInt64(0)
	if err := p.ledger.Transfer(p.account, to, amount); err != nil {
		pot.Set(amount)
		return nil, err
	}
	p.log.Debug("claimed", "to", to, "amount", amount)
	return amount, nil
}

// Fund pulls amount from funder and spreads it over the current total
// stake. Funding an empty pool is rejected rather than burned.
func (p *Pool) Fund(funder common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.totalStaked.Sign() == 0 {
		return ErrNoStake
	}
	if err := p.ledger.Transfer(funder, p.account, amount); err != nil {
		return err
	}
	delta := new(big.Int).Mul(amount, Precision)
	delta.Div(delta, p.totalStaked)
	p.accPerShare.Add(p.accPerShare, delta)
	p.log.Debug("funded", "amount", amount, "accPerShare", p.accPerShare)
	return nil
}

// StakeOf returns a copy of addr's locked stake.
func (p *Pool) StakeOf(addr common.Address) *big.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return new(big.Int).Set(p.stake(addr))
}

// PendingReward returns the reward addr could claim right now.
func (p *Pool) PendingReward(addr common.Address) *big.Int {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := new(big.Int)
	if pot, ok := p.pending[addr]; ok {
		total.Set(pot)
	}
	return total.Add(total, p.accrued(addr))
}

// TotalStaked returns a copy of the pool-wide locked stake.
func (p *Pool) TotalStaked() *big.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return new(big.Int).Set(p.totalStaked)
}

func (p *Pool) stake(addr common.Address) *big.Int {
	s, ok := p.stakes[addr]
	if !ok {
		s = new(big.Int)
		p.stakes[addr] = s
	}
	return s
}

// accrued computes the unsettled earnings of addr since its last settle.
func (p *Pool) accrued(addr common.Address) *big.Int {
	stake, ok := p.stakes[addr]
	if !ok || stake.Sign() == 0 {
		return new(big.Int)
	}
	debt := p.rewardDebt[addr]
	if debt == nil {
		debt = new(big.Int)
	}
	diff := new(big.Int).Sub(p.accPerShare, debt)
	if diff.Sign() <= 0 {
		return new(big.Int)
	}
	earned := new(big.Int).Mul(stake, diff)
	return earned.Div(earned, Precision)
}

// settle moves accrued earnings into the pending pot and re-snapshots
// the accumulator.
func (p *Pool) settle(addr common.Address) {
	earned := p.accrued(addr)
	if earned.Sign() > 0 {
		pot, ok := p.pending[addr]
		if !ok {
			pot = new(big.Int)
			p.pending[addr] = pot
		}
		pot.Add(pot, earned)
	}
	p.rewardDebt[addr] = new(big.Int).Set(p.accPerShare)
}
