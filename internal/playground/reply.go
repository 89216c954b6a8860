package playground

import (
	"context"
	"fmt"
	"sync"

	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
)

// ReplyStatus is the lifecycle state of a pending reply.
type ReplyStatus string

const (
	ReplyPending  ReplyStatus = "pending"
	ReplyResolved ReplyStatus = "resolved"
	ReplyCanceled ReplyStatus = "canceled"
	// ReplyFailed means the responder returned an error other than cancellation.
	ReplyFailed ReplyStatus = "failed"
)

// Reply is the handle of one in-flight assistant answer. It leaves
// ReplyPending exactly once.
type Reply struct {
	mu     sync.Mutex
	status ReplyStatus
	msg    Message
	err    error
	done   chan struct{}
	cancel context.CancelFunc
}

func newReply(cancel context.CancelFunc) *Reply {
	return &Reply{
		status: ReplyPending,
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// Status returns the current state.
func (r *Reply) Status() ReplyStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Done is closed when the reply leaves ReplyPending.
func (r *Reply) Done() <-chan struct{} { return r.done }

// Result returns the message and error once the reply is settled.
func (r *Reply) Result() (Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.status {
	case ReplyPending:
		return Message{}, fmt.Errorf("%w: reply is still pending", deckerrors.ErrInvalid)
	case ReplyCanceled:
		return Message{}, deckerrors.ErrCanceled
	}
	return r.msg, r.err
}

// Wait blocks until the reply settles or ctx is done. Giving up on the wait
// does not cancel the reply.
func (r *Reply) Wait(ctx context.Context) (Message, error) {
	select {
	case <-r.done:
		return r.Result()
	case <-ctx.Done():
		return Message{}, fmt.Errorf("%w: %v", deckerrors.ErrCanceled, ctx.Err())
	}
}

// Cancel abandons a pending reply. It reports whether the reply was still
// pending; settled replies are left as they are.
func (r *Reply) Cancel() bool {
	r.cancel()
	return r.settle(ReplyCanceled, Message{}, nil)
}

// settle moves a pending reply to status. Only the first call wins.
func (r *Reply) settle(status ReplyStatus, msg Message, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != ReplyPending {
		return false
	}
	r.status = status
	r.msg = msg
	r.err = err
	close(r.done)
	return true
}
