/*
Package arena provides a region-based allocator: reserve/commit blocks
chained together, LIFO scratch scopes, and per-tag byte accounting.

Core Concepts:

  - Block: a contiguous virtual reservation with a page-committed prefix,
    bump-allocated with alignment.
  - Chain: blocks linked tail-to-head; the head allocates, overflow grows a
    new block, and reclaimed blocks are kept on a free list keyed by their
    reservation size.
  - Scope: a LIFO marker that, on End, rewinds a chain's position and tag
    counters to the values captured at Begin.
  - Tag: a closed accounting category (array, string, struct, buffer, ...)
    used to track live bytes for diagnostics.

Basic Usage:

	chain, _ := arena.NewChain()
	alloc := arena.NewArenaAllocator(chain, false)

	scope, _ := alloc.ScopeBegin()
	p, _ := alloc.Alloc(256, arena.TagBuffer)
	// ... use p ...
	alloc.ScopeEnd(scope, arena.TagBuffer)

Arenas are not safe for concurrent use; each cooperative task that needs
scratch space should receive its own chain.
*/
package arena
