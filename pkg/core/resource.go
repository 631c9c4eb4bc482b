package core

import (
	"context"
	"sync"
)

// resourceState the lifecycle of one lazily fetched detail resource.
type resourceState int

const (
	unrequested resourceState = iota
	loading
	loaded
	failed
)

// resource is one lazily fetched piece of a plugin detail page. A fetch
// runs only from the unrequested or failed states: a loaded value,
// including the empty-string and empty-sequence sentinels, is final for
// the process lifetime.
type resource[T any] struct {
	mu    sync.Mutex
	state resourceState
	value T
	err   error
}

// peek returns the value without triggering a fetch.
func (r *resource[T]) peek() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != loaded {
		var zero T
		return zero, false
	}

	return r.value, true
}

// fetch returns the loaded value, running fn at most once per successful
// load. A result arriving after ctx is done is discarded and the resource
// returns to unrequested, so a later caller retries.
func (r *resource[T]) fetch(ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == loaded {
		return r.value, nil
	}

	r.state = loading

	value, err := fn(ctx)
	if err != nil {
		r.state = failed
		r.err = err

		var zero T
		return zero, err
	}

	if ctx.Err() != nil {
		r.state = unrequested

		var zero T
		return zero, ctx.Err()
	}

	r.state = loaded
	r.value = value
	r.err = nil

	return value, nil
}
