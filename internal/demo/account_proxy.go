package demo

import (
	"context"

	"github.com/Sentinel-Gate/introgate/internal/domain/proxy"
)

var (
	methodOwner    = proxy.MustMethod[Account]("Owner")
	methodBalance  = proxy.MustMethod[Account]("Balance")
	methodDeposit  = proxy.MustMethod[Account]("Deposit")
	methodWithdraw = proxy.MustMethod[Account]("Withdraw")

	methodLock   = proxy.MustMethod[Lockable]("Lock")
	methodUnlock = proxy.MustMethod[Lockable]("Unlock")
	methodLocked = proxy.MustMethod[Lockable]("Locked")

	methodDescribe = proxy.MustMethod[Describer]("Describe")
)

// AccountProxy is the typed stub callers hold. Every method goes through
// the proxy chain. Methods without an error result panic if the chain
// fails, since the failure cannot be reported otherwise.
type AccountProxy struct {
	p *proxy.Proxy
}

// NewAccountProxy wraps p and exposes the stub as the proxy handle.
func NewAccountProxy(p *proxy.Proxy) *AccountProxy {
	s := &AccountProxy{p: p}
	p.Expose(s)
	return s
}

func (s *AccountProxy) mustInvoke(m proxy.Method, args ...any) []any {
	results, err := s.p.Invoke(context.Background(), m, args...)
	if err != nil {
		panic(err)
	}
	return results
}

// Owner implements Account.
func (s *AccountProxy) Owner() string {
	return proxy.Result[string](s.mustInvoke(methodOwner), 0)
}

// Balance implements Account.
func (s *AccountProxy) Balance(ctx context.Context) (int, error) {
	results, err := s.p.Invoke(ctx, methodBalance, ctx)
	return proxy.Result[int](results, 0), err
}

// Deposit implements Account.
func (s *AccountProxy) Deposit(ctx context.Context, amount int) error {
	_, err := s.p.Invoke(ctx, methodDeposit, ctx, amount)
	return err
}

// Withdraw implements Account.
func (s *AccountProxy) Withdraw(ctx context.Context, amount int) error {
	_, err := s.p.Invoke(ctx, methodWithdraw, ctx, amount)
	return err
}

// Lock implements Lockable.
func (s *AccountProxy) Lock() Lockable {
	return proxy.Result[Lockable](s.mustInvoke(methodLock), 0)
}

// Unlock implements Lockable.
func (s *AccountProxy) Unlock() {
	s.mustInvoke(methodUnlock)
}

// Locked implements Lockable.
func (s *AccountProxy) Locked() bool {
	return proxy.Result[bool](s.mustInvoke(methodLocked), 0)
}

// Describe implements Describer.
func (s *AccountProxy) Describe() string {
	return proxy.Result[string](s.mustInvoke(methodDescribe), 0)
}

// Compile-time checks that AccountProxy implements the demo interfaces.
var (
	_ Account   = (*AccountProxy)(nil)
	_ Lockable  = (*AccountProxy)(nil)
	_ Describer = (*AccountProxy)(nil)
)
