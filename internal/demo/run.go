package demo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/Sentinel-Gate/introgate/internal/domain/introduction"
	"github.com/Sentinel-Gate/introgate/internal/domain/proxy"
	"github.com/Sentinel-Gate/introgate/internal/service"
)

// IntroductionName is the configured introduction the demo binds its mixin to.
const IntroductionName = "lockable"

// Run builds a locked-account proxy with factory and prints what each call does.
func Run(ctx context.Context, factory *service.ProxyFactory, w io.Writer) error {
	mixin := &LockMixin{}
	advisor, err := factory.IntroductionAdvisor(IntroductionName, mixin, introduction.WithForwarder(mixin.Guard()))
	if err != nil {
		return err
	}

	target := NewBankAccount("ada", 100)
	p, err := factory.NewServiceProxy(reflect.TypeFor[Account](), target, []proxy.Advisor{advisor})
	if err != nil {
		return err
	}
	account := NewAccountProxy(p)

	fmt.Fprintf(w, "proxy interfaces: %v\n", p.Interfaces())
	fmt.Fprintf(w, "owner: %s\n", account.Owner())

	if err := account.Deposit(ctx, 50); err != nil {
		return fmt.Errorf("deposit while unlocked: %w", err)
	}
	balance, err := account.Balance(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "balance after deposit: %d\n", balance)

	locked := account.Lock()
	fmt.Fprintf(w, "lock returned the proxy: %t\n", locked == Lockable(account))
	fmt.Fprintf(w, "locked: %t\n", account.Locked())

	if err := account.Deposit(ctx, 10); errors.Is(err, ErrLocked) {
		fmt.Fprintln(w, "deposit while locked: rejected")
	} else {
		return fmt.Errorf("deposit while locked: got %v, want %v", err, ErrLocked)
	}

	if p.Implements(reflect.TypeFor[Describer]()) {
		fmt.Fprintf(w, "describe: %s\n", account.Describe())
	} else {
		fmt.Fprintln(w, "describe: suppressed")
	}

	account.Unlock()
	if err := account.Withdraw(ctx, 1000); errors.Is(err, ErrInsufficientFunds) {
		fmt.Fprintf(w, "withdraw 1000: %v\n", err)
	} else {
		return fmt.Errorf("withdraw 1000: got %v, want %v", err, ErrInsufficientFunds)
	}

	balance, err = account.Balance(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "final balance: %d\n", balance)
	return nil
}
