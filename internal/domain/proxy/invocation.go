package proxy

import (
	"context"

	"github.com/google/uuid"
)

// reflectiveInvocation walks an interceptor chain and ends with a
// reflective call on the target. Proceed does not mutate the receiver,
// so an interceptor may proceed more than once.
type reflectiveInvocation struct {
	id     string
	proxy  any
	target any
	method Method
	args   []any
	chain  []MethodInterceptor
	index  int
}

func newReflectiveInvocation(proxy, target any, m Method, args []any, chain []MethodInterceptor) *reflectiveInvocation {
	return &reflectiveInvocation{
		id:     uuid.New().String(),
		proxy:  proxy,
		target: target,
		method: m,
		args:   args,
		chain:  chain,
	}
}

func (r *reflectiveInvocation) ID() string       { return r.id }
func (r *reflectiveInvocation) Method() Method   { return r.method }
func (r *reflectiveInvocation) Arguments() []any { return r.args }
func (r *reflectiveInvocation) Target() any      { return r.target }
func (r *reflectiveInvocation) Proxy() any       { return r.proxy }

// Proceed invokes the next interceptor, or the target once the chain is exhausted.
func (r *reflectiveInvocation) Proceed(ctx context.Context) ([]any, error) {
	if r.index >= len(r.chain) {
		return InvokeJoinpoint(r.target, r.method, r.args)
	}
	next := *r
	next.index++
	return r.chain[r.index].Invoke(ctx, &next)
}

var _ ProxyInvocation = (*reflectiveInvocation)(nil)
