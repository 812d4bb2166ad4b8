// Package signals provides an in-process, type-safe broadcast primitive:
// a single publisher fans typed values out to many independently-lifetimed
// subscribers, with replay of recent values to late joiners, throttled and
// debounced emission, and automatic cleanup of dead subscribers.
//
// # Architecture
//
// A Signal owns a subscriber registry and a three-state lifecycle
// (active, completed, failed). All registry and state mutations are
// serialized by a single mutex per signal; handler invocation is decoupled
// from that exclusion, so a slow handler never blocks the publisher or
// other subscribers.
//
// # Usage
//
// Basic broadcasting:
//
//	sig := signals.New[int]()
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	token := sig.Subscribe(ctx, func(v int) {
//	    fmt.Println("received:", v)
//	})
//	defer sig.Unsubscribe(token)
//
//	sig.Emit(1)
//	sig.Emit(2)
//	sig.Complete()
//
// The context passed to Subscribe is the subscription's liveness witness:
// once it is cancelled the subscriber is considered dead and is removed
// lazily on the next emission, termination, or count. WithOwner adds a
// weak-pointer witness on top, tying the subscription to an object's
// reachability without keeping that object alive.
//
// # Events
//
// Value subscribers receive emitted values only. Event subscribers
// (SubscribeEvent) additionally observe termination:
//
//	sig.SubscribeEvent(ctx, func(ev signals.Event[int]) {
//	    switch ev.Kind {
//	    case signals.KindNext:
//	        fmt.Println("value:", ev.Value)
//	    case signals.KindCompleted:
//	        fmt.Println("done")
//	    case signals.KindFailed:
//	        fmt.Println("failed:", ev.Err)
//	    }
//	})
//
// Completion and failure are terminal and mutually exclusive; the first
// transition wins and every later Emit, Complete, or Fail call is a logged
// no-op. The terminal event is delivered exactly once per live event
// subscriber.
//
// # Replay
//
// NewReplay buffers the last N emitted values and replays them,
// synchronously and in order, to each new subscriber before it joins live
// fan-out. The buffer append and the registry insert share the signal's
// exclusion, so a value emitted concurrently with a subscribe call is seen
// exactly once, through either the replay or the live path:
//
//	sig := signals.NewReplay[int](2)
//	sig.Emit(1)
//	sig.Emit(2)
//	sig.Emit(3)
//	sig.Subscribe(ctx, handler) // handler sees 2, then 3
//
// Because replay runs under the signal's exclusion, a replay handler must
// not call back into the signal.
//
// # Throttle and Debounce
//
// EmitThrottled is leading-edge: the first call emits immediately and opens
// a cooldown of the given interval; calls during the cooldown are dropped
// outright. EmitDebounced is trailing-edge: each call replaces the pending
// emission, so a burst collapses into a single emission of the last value,
// delay after the burst ends. Terminating the signal cancels any pending
// debounce timer.
//
// # Executors
//
// By default handlers run synchronously on the emitting goroutine, after
// the signal's lock has been released. WithExecutor moves a subscriber's
// handler invocations onto another execution context: Async spawns a
// goroutine per invocation, and NewSerialQueue provides an asynchronous
// FIFO that preserves per-subscriber delivery order. Emit returns once
// dispatch has been scheduled, not once handlers have run; scheduling
// failures are joined into the returned error.
//
// # Streams
//
// Stream bridges a signal into a receive-only channel, the native Go sink:
//
//	st := sig.Stream(ctx)
//	for v := range st.Values() {
//	    fmt.Println(v)
//	}
//	if err := st.Err(); err != nil {
//	    // the signal failed
//	}
//
// Values are forwarded with non-blocking sends; a consumer that does not
// keep up loses values (counted by Dropped) rather than blocking the
// publisher. The channel closes when the signal terminates, the stream's
// context is cancelled, or Close is called.
//
// # Thread Safety
//
// All operations on a Signal are safe for concurrent use. Handlers may
// re-entrantly subscribe, unsubscribe, and emit from within live fan-out;
// the registry snapshot taken before dispatch keeps iteration immune to
// such mutations.
package signals
