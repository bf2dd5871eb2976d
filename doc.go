// Package rtcoro implements a cooperative, single-threaded real-time runtime
// for deeply embedded microcontrollers.
//
// # Architecture
//
// Three subsystems form the core, in dependency order:
//
//   - Tick, Duration and TimePoint: overflow-aware time arithmetic modeling
//     a free-running hardware timer. See [Clock].
//   - Future/Promise: a single-producer single-consumer value channel used
//     by coroutines and interrupt handlers to rendezvous without locks on
//     single-core targets. See [NewFuture].
//   - Coroutine chain and [Scheduler]: a priority- and deadline-based
//     cooperative scheduler driving a tree of nested coroutines, each
//     rooted in a [Task].
//
// A task's root coroutine is resumed by the scheduler. The root may await a
// child coroutine, which becomes the new leaf; a leaf that suspends either
// awaits a primitive (raising [SignalAwait]) or yields a scheduling
// directive ([SignalNextCycle], [SignalImplicitDelay],
// [SignalExplicitDelay]). Control returns to the [Scheduler], which reacts
// to the signal and re-files the task into the waiting, running, or
// awaiting collection.
//
// # Non-goals
//
// Preemptive multitasking, fair time-slicing, multi-core work-stealing,
// dynamic heap allocation in the scheduling hot path, POSIX signal
// handling, virtual-memory protection.
//
// # Host hooks
//
// The runtime consumes exactly four kinds of host collaborator, installed
// via [SetHooks]: a clock ([Hooks.Now]), an optional sleep hook
// ([Hooks.SleepUntil]), nested interrupt enable/disable
// ([Hooks.DisableInterrupts]/[Hooks.EnableInterrupts]), and memcpy-style
// copy hooks ([Hooks.Memcpy]/[Hooks.AsyncMemcpy]), which are stored but
// not called by this package. Logging is a separate concern, see [Logger].
package rtcoro
