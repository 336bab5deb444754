package arena

// Scope is a LIFO marker on a chain: closing it restores the chain's
// position and tag counters to the values captured when it was opened.
// Scopes nest freely; an inner Scope.End must leave the chain exactly at
// the inner scope's saved position, and outer scopes see a consistent view
// thereafter (spec.md §4.3).
type Scope struct {
	chain *Chain
	saved uint64
	ended bool
}

// BeginScope opens a scratch scope on chain. It is an error to begin a
// scope on a chain marked persistent: a later End could reclaim storage
// allocated by unrelated code that never opened a scope of its own.
func BeginScope(chain *Chain) (*Scope, error) {
	if chain.persistent {
		return nil, ScopeOnPersistentError{}
	}
	return &Scope{chain: chain, saved: chain.Pos()}, nil
}

// End closes the scope, rewinding the chain to the position captured at
// Begin and subtracting the reclaimed bytes from tag's counter. Calling End
// more than once is a no-op.
func (s *Scope) End(tag Tag) {
	if s.ended {
		return
	}
	s.chain.ResetTo(s.saved, tag)
	s.ended = true
}

// Pos returns the position this scope will rewind to on End.
func (s *Scope) Pos() uint64 {
	return s.saved
}
