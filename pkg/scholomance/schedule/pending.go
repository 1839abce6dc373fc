package schedule

import (
	"context"
	"sync"

	"github.com/cognicore/scholomance/pkg/scholomance/result"
)

// Pending is the handle for one enrichment request. Every caller that
// asks for the same token while it is queued or running gets the same
// *Pending.
type Pending struct {
	token string
	done  chan struct{}
	once  sync.Once
	res   *result.Result
}

func newPending(token string) *Pending {
	return &Pending{token: token, done: make(chan struct{})}
}

// Resolved returns an already-settled handle.
func Resolved(token string, r *result.Result) *Pending {
	p := newPending(token)
	p.resolve(r)
	return p
}

// Token returns the normalized token this handle is for.
func (p *Pending) Token() string { return p.token }

// Done is closed once the request settles.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Result returns the settled result, or nil if the request has not
// settled or produced nothing.
func (p *Pending) Result() *result.Result {
	select {
	case <-p.done:
		return p.res
	default:
		return nil
	}
}

// Wait blocks until the request settles or ctx is done.
func (p *Pending) Wait(ctx context.Context) (*result.Result, error) {
	select {
	case <-p.done:
		return p.res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pending) resolve(r *result.Result) {
	p.once.Do(func() {
		p.res = r
		close(p.done)
	})
}
