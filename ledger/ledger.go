// Package ledger implements the conventional transfer/approve/balance
// value ledger consumed by the node registry, plus the escrow adapter
// that exposes it through the registry's value port.
package ledger

import (
	"errors"
	"math/big"
	"sync"

	log "github.com/inconshreveable/log15"

	"github.com/HexSyn0x0/Synaptix/common"
	"github.com/HexSyn0x0/Synaptix/registry"
)

// Sentinel errors returned by ledger operations.
var (
	ErrInvalidAmount         = errors.New("ledger: amount must not be negative")
	ErrInsufficientBalance   = errors.New("ledger: insufficient balance")
	ErrInsufficientAllowance = errors.New("ledger: insufficient allowance")
)

// Ledger is an in-memory fungible value ledger. Balances never go
// negative; zero-amount movements are accepted as no-ops.
type Ledger struct {
	mu         sync.RWMutex
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
	log        log.Logger
}

// New creates an empty Ledger.
func New() *Ledger {
	return &Ledger{
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
		log:        log.New("module", "ledger"),
	}
}

// Mint credits amount to addr out of thin air. Test and genesis helper.
func (l *Ledger) Mint(addr common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(addr, amount)
	return nil
}

// BalanceOf returns a copy of addr's balance.
func (l *Ledger) BalanceOf(addr common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if b, ok := l.balances[addr]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Transfer moves amount from one account to another.
func (l *Ledger) Transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.debit(from, amount); err != nil {
		return err
	}
	l.credit(to, amount)
	return nil
}

// Approve lets spender move up to amount out of owner's account.
func (l *Ledger) Approve(owner, spender common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.allowances[owner]
	if !ok {
		m = make(map[common.Address]*big.Int)
		l.allowances[owner] = m
	}
	m[spender] = new(big.Int).Set(amount)
	return nil
}

// Allowance returns a copy of the remaining allowance.
func (l *Ledger) Allowance(owner, spender common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if m, ok := l.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return new(big.Int).Set(a)
		}
	}
	return new(big.Int)
}

// TransferFrom moves amount from owner to to, charged against spender's
// allowance.
func (l *Ledger) TransferFrom(spender, owner, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	allowance := l.allowances[owner][spender]
	if allowance == nil || allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := l.debit(owner, amount); err != nil {
		return err
	}
	allowance.Sub(allowance, amount)
	l.credit(to, amount)
	return nil
}

// TotalSupply returns the sum of all balances.
func (l *Ledger) TotalSupply() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := new(big.Int)
	for _, b := range l.balances {
		total.Add(total, b)
	}
	return total
}

func (l *Ledger) credit(addr common.Address, amount *big.Int) {
	if b, ok := l.balances[addr]; ok {
		b.Add(b, amount)
		return
	}
	l.balances[addr] = new(big.Int).Set(amount)
}

func (l *Ledger) debit(addr common.Address, amount *big.Int) error {
	b, ok := l.balances[addr]
	if !ok || b.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	b.Sub(b, amount)
	return nil
}

// Escrow binds a ledger to a designated escrow account and implements
// the registry's value port: Escrow moves collateral from the
// participant into the escrow account, Payout the other way.
type Escrow struct {
	ledger  *Ledger
	account common.Address
}

var _ registry.ValuePort = (*Escrow)(nil)

// NewEscrow creates an Escrow over l holding funds in account.
func NewEscrow(l *Ledger, account common.Address) *Escrow {
	return &Escrow{ledger: l, account: account}
}

// Account returns the escrow holding account.
func (e *Escrow) Account() common.Address { return e.account }

// Escrow implements registry.ValuePort.
func (e *Escrow) Escrow(from common.Address, amount *big.Int) error {
	return e.ledger.Transfer(from, e.account, amount)
}

// Payout implements registry.ValuePort.
func (e *Escrow) Payout(to common.Address, amount *big.Int) error {
	return e.ledger.Transfer(e.account, to, amount)
}
