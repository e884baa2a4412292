// Package demo is a worked example of an introduction: a lock mixin is
// introduced onto an account proxy and vetoes deposits while locked.
package demo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/Sentinel-Gate/introgate/internal/domain/introduction"
	"github.com/Sentinel-Gate/introgate/internal/domain/proxy"
)

// ErrLocked is returned by mutating account calls while the account is locked.
var ErrLocked = errors.New("account is locked")

// ErrInsufficientFunds is returned by Withdraw when the balance is too low.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Account is the interface the proxied target implements.
type Account interface {
	Owner() string
	Balance(ctx context.Context) (int, error)
	Deposit(ctx context.Context, amount int) error
	Withdraw(ctx context.Context, amount int) error
}

// Lockable is introduced by LockMixin.
type Lockable interface {
	// Lock locks and returns the locked object, for chaining.
	Lock() Lockable
	Unlock()
	Locked() bool
}

// Describer is implemented by LockMixin but usually suppressed.
type Describer interface {
	Describe() string
}

// NewCatalog returns a catalog holding the demo interfaces.
func NewCatalog() (*introduction.Catalog, error) {
	return introduction.NewCatalog(
		reflect.TypeFor[Account](),
		reflect.TypeFor[Lockable](),
		reflect.TypeFor[Describer](),
	)
}

// BankAccount is a plain Account.
type BankAccount struct {
	mu      sync.Mutex
	owner   string
	balance int
}

// NewBankAccount creates an account with an opening balance.
func NewBankAccount(owner string, balance int) *BankAccount {
	return &BankAccount{owner: owner, balance: balance}
}

// Owner returns the account owner.
func (a *BankAccount) Owner() string { return a.owner }

// Balance returns the current balance.
func (a *BankAccount) Balance(ctx context.Context) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance, nil
}

// Deposit adds amount to the balance.
func (a *BankAccount) Deposit(ctx context.Context, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("deposit amount must be positive, got %d", amount)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance += amount
	return nil
}

// Withdraw removes amount from the balance.
func (a *BankAccount) Withdraw(ctx context.Context, amount int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if amount > a.balance {
		return ErrInsufficientFunds
	}
	a.balance -= amount
	return nil
}

// LockMixin implements Lockable for any proxied target.
type LockMixin struct {
	locked atomic.Bool
}

// Lock locks the mixin.
func (m *LockMixin) Lock() Lockable {
	m.locked.Store(true)
	return m
}

// Unlock unlocks the mixin.
func (m *LockMixin) Unlock() { m.locked.Store(false) }

// Locked reports whether the mixin is locked.
func (m *LockMixin) Locked() bool { return m.locked.Load() }

// Describe implements Describer.
func (m *LockMixin) Describe() string {
	return fmt.Sprintf("lock mixin (locked=%t)", m.Locked())
}

// Guard is the forwarder for non-introduced calls: while locked, calls
// to Deposit and Withdraw are rejected before they reach the target.
func (m *LockMixin) Guard() introduction.Forwarder {
	return introduction.ForwarderFunc(func(ctx context.Context, inv proxy.Invocation) ([]any, error) {
		switch inv.Method().Name {
		case "Deposit", "Withdraw":
			if m.Locked() {
				proxy.LoggerFromContext(ctx, slog.New(slog.DiscardHandler)).
					Info("call rejected while locked")
				return nil, ErrLocked
			}
		}
		return inv.Proceed(ctx)
	})
}
