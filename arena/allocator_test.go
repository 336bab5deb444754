package arena

import (
	"testing"
)

func TestArenaAllocatorScopeGuard(t *testing.T) {
	ch, err := NewChain(WithReserve(1 << 16))
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}
	t.Cleanup(func() { _ = ch.Release() })

	persistent := NewArenaAllocator(ch, true)
	if persistent.ScopeSupported() {
		t.Errorf("ScopeSupported() on persistent allocator = true, want false")
	}
	if _, err := persistent.ScopeBegin(); err == nil {
		t.Errorf("ScopeBegin() on persistent allocator: want error, got nil")
	}
}

func TestArenaAllocatorReallocGrows(t *testing.T) {
	ch, err := NewChain(WithReserve(1 << 16))
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}
	t.Cleanup(func() { _ = ch.Release() })
	a := NewArenaAllocator(ch, false)

	p, err := a.Alloc(4, TagStruct)
	if err != nil {
		t.Fatalf("Alloc() error = %v", err)
	}
	*(*uint32)(p) = 0xDEADBEEF

	p2, err := a.Realloc(p, 4, 16, TagStruct)
	if err != nil {
		t.Fatalf("Realloc() error = %v", err)
	}
	if got := *(*uint32)(p2); got != 0xDEADBEEF {
		t.Errorf("Realloc() lost data: got %x, want %x", got, 0xDEADBEEF)
	}
}

func TestDynamicAllocatorScopeFreesSinceMark(t *testing.T) {
	d := NewDynamicAllocator()

	if _, err := d.Alloc(64, TagArray); err != nil {
		t.Fatalf("Alloc() error = %v", err)
	}

	scope, err := d.ScopeBegin()
	if err != nil {
		t.Fatalf("ScopeBegin() error = %v", err)
	}
	if _, err := d.Alloc(128, TagBuffer); err != nil {
		t.Fatalf("Alloc() error = %v", err)
	}
	if got := d.Stats().Bytes(TagBuffer); got != 128 {
		t.Fatalf("TagBuffer bytes = %d, want 128", got)
	}

	d.ScopeEnd(scope, TagBuffer)

	if got := d.Stats().Bytes(TagBuffer); got != 0 {
		t.Errorf("TagBuffer bytes after ScopeEnd = %d, want 0", got)
	}
	if got := d.Stats().Bytes(TagArray); got != 64 {
		t.Errorf("TagArray bytes after ScopeEnd = %d, want 64 (pre-scope alloc must survive)", got)
	}
	if len(d.allocs) != 1 {
		t.Errorf("allocs after ScopeEnd = %d, want 1", len(d.allocs))
	}
}

func TestDynamicAllocatorFree(t *testing.T) {
	d := NewDynamicAllocator()

	p, err := d.Alloc(32, TagString)
	if err != nil {
		t.Fatalf("Alloc() error = %v", err)
	}
	d.Free(p, 32, TagString)

	if got := d.Stats().Bytes(TagString); got != 0 {
		t.Errorf("TagString bytes after Free = %d, want 0", got)
	}
	if len(d.allocs) != 0 {
		t.Errorf("allocs after Free = %d, want 0", len(d.allocs))
	}
}

func TestFormatStatisticsUnits(t *testing.T) {
	var s tagStats
	s.add(TagArray, 512)
	s.add(TagStruct, 10*1024)
	s.add(TagBuffer, 5*1024*1024)

	out := FormatStatistics(&s)
	for _, want := range []string{"array: 512 Bytes", "struct: 10.00 KB", "buffer: 5.00 MB"} {
		if !containsLine(out, want) {
			t.Errorf("FormatStatistics() = %q, want line %q", out, want)
		}
	}
}

func containsLine(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
