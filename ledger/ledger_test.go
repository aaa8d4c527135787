package ledger

import (
	"math/big"
	"testing"

	"github.com/HexSyn0x0/Synaptix/common"
)

func tAddr(b byte) common.Address { return common.Address{b} }

func TestMintAndTransfer(t *testing.T) {
	l := New()
	a, b := tAddr(1), tAddr(2)

	if err := l.Mint(a, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := l.Transfer(a, b, big.NewInt(40)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := l.BalanceOf(a); got.Cmp(big.NewInt(60)) != 0 {
		t.Errorf("balance a: want 60, got %v", got)
	}
	if got := l.BalanceOf(b); got.Cmp(big.NewInt(40)) != 0 {
		t.Errorf("balance b: want 40, got %v", got)
	}
	if got := l.TotalSupply(); got.Cmp(big.NewInt(100)) != 0 {
		t.Errorf("supply: want 100, got %v", got)
	}

	if err := l.Transfer(a, b, big.NewInt(61)); err != ErrInsufficientBalance {
		t.Errorf("overdraft: want ErrInsufficientBalance, got %v", err)
	}
	if got := l.BalanceOf(a); got.Cmp(big.NewInt(60)) != 0 {
		t.Errorf("balance changed by failed transfer: %v", got)
	}
	if err := l.Transfer(a, b, big.NewInt(-1)); err != ErrInvalidAmount {
		t.Errorf("negative: want ErrInvalidAmount, got %v", err)
	}
	// Zero transfers are accepted no-ops (slashing a zero-stake node
	// pays out zero).
	if err := l.Transfer(a, b, new(big.Int)); err != nil {
		t.Errorf("zero transfer: %v", err)
	}
}

func TestApproveAndTransferFrom(t *testing.T) {
	l := New()
	owner, spender, dst := tAddr(1), tAddr(2), tAddr(3)
	if err := l.Mint(owner, big.NewInt(100)); err != nil {
		t.Fatal(err)
	}

	if err := l.TransferFrom(spender, owner, dst, big.NewInt(10)); err != ErrInsufficientAllowance {
		t.Fatalf("no allowance: want ErrInsufficientAllowance, got %v", err)
	}
	if err := l.Approve(owner, spender, big.NewInt(30)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := l.TransferFrom(spender, owner, dst, big.NewInt(20)); err != nil {
		t.Fatalf("transferFrom: %v", err)
	}
	if got := l.Allowance(owner, spender); got.Cmp(big.NewInt(10)) != 0 {
		t.Errorf("allowance: want 10, got %v", got)
	}
	if got := l.BalanceOf(dst); got.Cmp(big.NewInt(20)) != 0 {
		t.Errorf("balance dst: want 20, got %v", got)
	}
	if err := l.TransferFrom(spender, owner, dst, big.NewInt(11)); err != ErrInsufficientAllowance {
		t.Errorf("over allowance: want ErrInsufficientAllowance, got %v", err)
	}
}

func TestEscrowAdapter(t *testing.T) {
	l := New()
	hold := tAddr(0xee)
	node := tAddr(1)
	e := NewEscrow(l, hold)
	if err := l.Mint(node, big.NewInt(500)); err != nil {
		t.Fatal(err)
	}

	if err := e.Escrow(node, big.NewInt(200)); err != nil {
		t.Fatalf("escrow: %v", err)
	}
	if got := l.BalanceOf(hold); got.Cmp(big.NewInt(200)) != 0 {
		t.Errorf("escrow balance: want 200, got %v", got)
	}
	if err := e.Payout(node, big.NewInt(50)); err != nil {
		t.Fatalf("payout: %v", err)
	}
	if got := l.BalanceOf(node); got.Cmp(big.NewInt(350)) != 0 {
		t.Errorf("node balance: want 350, got %v", got)
	}
	// Escrow rejects what the participant doesn't hold, and payout what
	// the escrow account doesn't hold.
	if err := e.Escrow(node, big.NewInt(351)); err != ErrInsufficientBalance {
		t.Errorf("over-escrow: want ErrInsufficientBalance, got %v", err)
	}
	if err := e.Payout(node, big.NewInt(151)); err != ErrInsufficientBalance {
		t.Errorf("over-payout: want ErrInsufficientBalance, got %v", err)
	}
	// Conservation: total supply never changes.
	if got := l.TotalSupply(); got.Cmp(big.NewInt(500)) != 0 {
		t.Errorf("supply: want 500, got %v", got)
	}
}

func TestBalanceOfReturnsCopy(t *testing.T) {
	l := New()
	a := tAddr(1)
	if err := l.Mint(a, big.NewInt(100)); err != nil {
		t.Fatal(err)
	}
	l.BalanceOf(a).SetInt64(0)
	if got := l.BalanceOf(a); got.Cmp(big.NewInt(100)) != 0 {
		t.Error("BalanceOf leaked a mutable reference")
	}
}
