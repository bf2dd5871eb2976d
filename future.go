package rtcoro

// futureState is the lifecycle of a Future/Promise pair (spec §4.3).
type futureState uint8

const (
	// stateBusy is the initial state: the Promise has not yet set a value,
	// and the peer back-pointers are live.
	stateBusy futureState = iota
	// stateHasValue means SetValue completed; both endpoints are detached.
	stateHasValue
	// stateBrokenPromise means the Promise was dropped while Busy; both
	// endpoints are detached.
	stateBrokenPromise
)

// Future is the read side of a single-assignment channel between a
// suspended task and whatever sets its result — a completed I/O operation,
// an interrupt handler, or another task. A Future is awaited at most once
// and is not safe for concurrent use by more than one reader.
type Future[T any] struct {
	lock  endpointLock
	state futureState
	value T
	peer  *Promise[T]
}

// Promise is the write side of a Future/Promise pair.
type Promise[T any] struct {
	lock  endpointLock
	state futureState
	peer  *Future[T]
}

// NewFuture creates a connected Future/Promise pair in the Busy state.
func NewFuture[T any]() (*Future[T], *Promise[T]) {
	f := &Future[T]{state: stateBusy}
	p := &Promise[T]{state: stateBusy}
	f.peer = p
	p.peer = f
	return f, p
}

// AwaitReady reports whether f is not Busy, i.e. whether awaiting it would
// not suspend. This is the runtime's await_ready.
func (f *Future[T]) AwaitReady() bool {
	if f.peer == nil {
		return true
	}
	c := enterCritFuture(&f.lock, &f.peer.lock)
	defer c.exit()
	return f.state != stateBusy
}

// AwaitResume returns the Promise's value and true if it was set, or the
// zero value and false if the Promise was dropped without one. This is the
// runtime's await_resume.
func (f *Future[T]) AwaitResume() (T, bool) {
	if f.peer != nil {
		c := enterCritFuture(&f.lock, &f.peer.lock)
		c.exit()
	}
	if f.state == stateHasValue {
		return f.value, true
	}
	var zero T
	return zero, false
}

// Get blocks the calling goroutine, spinning without channels until the
// Promise sets a value or is dropped. Inside a coroutine, await a Future
// through [Await] instead, which suspends the task rather than spinning.
// Get is for use outside a coroutine (e.g. a host shim bridging a callback
// into rtcoro) and returns ErrBrokenPromise if the Promise was dropped.
func (f *Future[T]) Get() (T, error) {
	for !f.AwaitReady() {
	}
	v, ok := f.AwaitResume()
	if !ok {
		var zero T
		return zero, ErrBrokenPromise
	}
	return v, nil
}

// moveFuture relocates f's state into dst, re-pointing the Promise's
// back-pointer to dst, and invalidates f. Used when a Future is returned
// by value or stored into longer-lived memory (spec §4.3 move semantics).
func moveFuture[T any](dst, f *Future[T]) {
	if f.peer == nil {
		// Detached: a move of an already-settled, detached endpoint is a
		// plain copy, no locking required.
		*dst = *f
		*f = Future[T]{}
		return
	}
	c := enterCritFuture(&f.lock, &f.peer.lock)
	dst.state = f.state
	dst.value = f.value
	dst.peer = f.peer
	dst.peer.peer = dst
	c.exit()
	*f = Future[T]{}
}

// movePromise relocates p's state into dst, symmetric to moveFuture.
func movePromise[T any](dst, p *Promise[T]) {
	if p.peer == nil {
		*dst = *p
		*p = Promise[T]{}
		return
	}
	c := enterCritPromise(&p.lock, &p.peer.lock)
	dst.state = p.state
	dst.peer = p.peer
	dst.peer.peer = dst
	c.exit()
	*p = Promise[T]{}
}

// SetValue resolves the Promise with v; the Future reports ready from then
// on, and a task awaiting it is moved back to running by the scheduler's
// next promote step. Calling
// SetValue twice on the same Promise is a caller error (spec §4.3: "double
// set_value is a caller error and fails loudly").
func (p *Promise[T]) SetValue(v T) {
	if p.peer == nil {
		raisePrecondition("Promise.SetValue", "promise already settled or detached")
		return
	}
	c := enterCritPromise(&p.lock, &p.peer.lock)
	if p.state != stateBusy {
		c.exit()
		raisePrecondition("Promise.SetValue", "double set_value")
		return
	}
	f := p.peer
	f.state = stateHasValue
	f.value = v
	f.peer = nil
	p.state = stateHasValue
	p.peer = nil
	c.exit()
}

// Drop releases the Promise without setting a value. If the pair was still
// Busy, the Future transitions to BrokenPromise; its AwaitResume then
// yields (zero, false). Dropping an already-settled or already-dropped
// Promise is a no-op.
func (p *Promise[T]) Drop() {
	if p.peer == nil {
		return
	}
	c := enterCritPromise(&p.lock, &p.peer.lock)
	if p.state == stateBusy {
		f := p.peer
		f.state = stateBrokenPromise
		f.peer = nil
	}
	p.peer = nil
	c.exit()
}
