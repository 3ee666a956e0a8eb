package mqtt

import (
	"context"
	"sync"
)

// Token tracks an in-flight operation that completes when the broker
// acknowledges it. Wait on Done() or call Wait() with a context, then check
// Err() for the outcome.
type Token struct {
	done chan struct{}
	once sync.Once

	mu  sync.Mutex
	err error
}

func newToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Done returns a channel that closes when the operation completes.
func (t *Token) Done() <-chan struct{} {
	return t.done
}

// Err returns the outcome of the operation. It is nil until Done() closes
// and nil afterwards when the operation succeeded.
func (t *Token) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.err
}

// Wait blocks until the operation completes or the context expires.
func (t *Token) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()

	case <-ctx.Done():
		return ctx.Err()
	}
}

// complete resolves the token. Only the first call takes effect.
func (t *Token) complete(err error) {
	t.once.Do(func() {
		t.mu.Lock()
		t.err = err
		t.mu.Unlock()

		close(t.done)
	})
}

// SubscribeToken is the Token for a subscribe operation. After completion it
// additionally carries the granted QoS levels from the SUBACK.
type SubscribeToken struct {
	Token

	mu      sync.Mutex
	granted []byte
}

func newSubscribeToken() *SubscribeToken {
	return &SubscribeToken{Token: Token{done: make(chan struct{})}}
}

// GrantedQoS returns the per-topic return codes from the SUBACK, in request
// order. Entries equal to SubackFailure mark rejected topics. It returns nil
// before the token completes.
func (t *SubscribeToken) GrantedQoS() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.granted
}

func (t *SubscribeToken) completeGranted(granted []byte, err error) {
	t.mu.Lock()
	t.granted = granted
	t.mu.Unlock()

	t.complete(err)
}
