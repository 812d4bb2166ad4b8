package signals

import "sync/atomic"

// Token identifies a single subscription on a signal. Tokens are unique per
// signal, ordered by subscription time, and never reused. The zero Token is
// never issued; unsubscribing it is a no-op.
type Token uint64

// tokenIssuer hands out monotonically increasing tokens.
type tokenIssuer struct {
	last atomic.Uint64
}

func (i *tokenIssuer) next() Token {
	return Token(i.last.Add(1))
}
