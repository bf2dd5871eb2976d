//go:build multicore

package rtcoro

import "sync/atomic"

// This file implements the Future/Promise critical section for the
// multi-core build, where the peer endpoint may live on another core and
// run concurrently with ours. Each endpoint owns a lock flag; the protocol
// is a dual-lock acquisition requiring both flags held before a move,
// SetValue, or Drop may proceed (spec §4.3).
//
// The two endpoints use asymmetric acquisition strategies to avoid
// livelock: the Future, which has the weaker invariant to preserve (it is
// only ever a reader of the Promise's value), forces the issue by spinning
// on the peer lock once it holds its own. The Promise retries fairly,
// releasing its own lock between attempts, yielding priority to a Future
// that is mid-teardown.

// endpointLock is the per-endpoint lock state a Future/Promise carries.
type endpointLock struct {
	v atomic.Bool
}

func (l *endpointLock) tryLock() bool { return l.v.CompareAndSwap(false, true) }

func (l *endpointLock) lock() {
	for !l.tryLock() {
	}
}

func (l *endpointLock) unlock() { l.v.Store(false) }

type critSection struct {
	own  *endpointLock
	peer *endpointLock
}

// enterCritFuture acquires own then forces peer, spinning until it
// succeeds. The Future never backs off: it is the reader, and a stalled
// Promise writer must eventually release.
func enterCritFuture(own, peer *endpointLock) critSection {
	own.lock()
	for !peer.tryLock() {
	}
	return critSection{own: own, peer: peer}
}

// enterCritPromise acquires own, then attempts peer once; on failure it
// releases own and retries from scratch, yielding to a Future that may be
// mid-teardown and spinning on this same peer lock.
func enterCritPromise(own, peer *endpointLock) critSection {
	for {
		own.lock()
		if peer.tryLock() {
			return critSection{own: own, peer: peer}
		}
		own.unlock()
	}
}

func (c critSection) exit() {
	c.peer.unlock()
	c.own.unlock()
}
