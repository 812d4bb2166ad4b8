package signals

import "context"

// handlerKind is the tag of the subscriber's handler variant. Records are
// built only through the constructors below, so a record always carries at
// least one handler.
type handlerKind uint8

const (
	handlesValue handlerKind = 1 << iota
	handlesEvent
)

// subscriberRecord ties a token to its handlers, target executor, and
// liveness witness. The context is the primary witness; alive, when set,
// is an additional weak-owner witness. Neither is ever used to reach the
// owner.
type subscriberRecord[T any] struct {
	token Token
	ctx   context.Context
	alive func() bool // may be nil
	exec  Executor    // nil means synchronous delivery
	kind  handlerKind
	value func(T)
	event func(Event[T])
}

func valueRecord[T any](ctx context.Context, fn func(T)) *subscriberRecord[T] {
	return &subscriberRecord[T]{ctx: ctx, kind: handlesValue, value: fn}
}

func eventRecord[T any](ctx context.Context, fn func(Event[T])) *subscriberRecord[T] {
	return &subscriberRecord[T]{ctx: ctx, kind: handlesEvent, event: fn}
}

func dualRecord[T any](ctx context.Context, vfn func(T), efn func(Event[T])) *subscriberRecord[T] {
	return &subscriberRecord[T]{ctx: ctx, kind: handlesValue | handlesEvent, value: vfn, event: efn}
}

// live reports whether the subscriber's owner is still alive.
func (r *subscriberRecord[T]) live() bool {
	if r.ctx.Err() != nil {
		return false
	}
	if r.alive != nil && !r.alive() {
		return false
	}
	return true
}

// registry owns the token to record mapping. It carries no lock of its own;
// the owning Signal serializes all access.
type registry[T any] struct {
	issuer  tokenIssuer
	order   []*subscriberRecord[T] // insertion order
	byToken map[Token]*subscriberRecord[T]
}

func newRegistry[T any]() *registry[T] {
	return &registry[T]{byToken: make(map[Token]*subscriberRecord[T])}
}

// insert allocates a token for the record and stores it. It never fails.
func (g *registry[T]) insert(rec *subscriberRecord[T]) Token {
	rec.token = g.issuer.next()
	g.order = append(g.order, rec)
	g.byToken[rec.token] = rec
	return rec.token
}

// remove deletes the entry if present. Unknown tokens are a no-op.
func (g *registry[T]) remove(token Token) {
	if _, ok := g.byToken[token]; !ok {
		return
	}
	delete(g.byToken, token)
	for i, rec := range g.order {
		if rec.token == token {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// pruneDead drops every record whose liveness witness reports dead and
// returns how many were removed.
func (g *registry[T]) pruneDead() int {
	removed := 0
	kept := g.order[:0]
	for _, rec := range g.order {
		if rec.live() {
			kept = append(kept, rec)
			continue
		}
		delete(g.byToken, rec.token)
		removed++
	}
	for i := len(kept); i < len(g.order); i++ {
		g.order[i] = nil
	}
	g.order = kept
	return removed
}

// snapshot returns a copy of the records in insertion order, so fan-out
// iteration is immune to re-entrant registry mutation. Callers prune first;
// the copy then holds only live records.
func (g *registry[T]) snapshot() []*subscriberRecord[T] {
	snap := make([]*subscriberRecord[T], len(g.order))
	copy(snap, g.order)
	return snap
}

func (g *registry[T]) count() int {
	return len(g.order)
}
