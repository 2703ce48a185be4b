// allocator.go — pluggable allocator binding for ledgercore.
//
// Scope:
//   - A value-type struct holding alloc/free function pointers and an
//     opaque user value, the way the spec's C ancestor does.
//   - A default heap-backed implementation used whenever the caller
//     passes a zero Allocator (or a nil Alloc/Free).
//
// Go-native adaptation:
//   - There is no raw pointer arithmetic here; "allocation" hands back a
//     []byte of the requested length and "free" is the bookkeeping hook an
//     instrumented allocator uses to balance alloc/free counts (Testable
//     Property 3 in spec.md §8). The Go garbage collector owns actual
//     reclamation; Free exists so tests can observe a leak-free teardown
//     and so the allocator contract itself stays faithful to the source
//     spec rather than being erased.
package ledgercore

// Allocator is a value-type binding of an alloc/free pair plus an opaque
// user value, snapshotted by value wherever it is stored (Context,
// Error). Both Alloc and Free are expected to be non-nil after
// normalization; see NewContext / DefaultAllocator.
type Allocator struct {
	// Alloc returns a byte slice of length n, or nil to signal allocation
	// failure. The returned slice is "owned" by the caller until passed
	// back to Free.
	Alloc func(user any, n int) []byte
	// Free releases a slice previously returned by Alloc. Free must be a
	// no-op when p is nil (the null sentinel).
	Free func(user any, p []byte)
	// User is an opaque value forwarded verbatim to Alloc and Free.
	User any
}

// IsValid reports whether both callbacks are set.
func (a Allocator) IsValid() bool {
	return a.Alloc != nil && a.Free != nil
}

// alloc invokes a.Alloc if present; otherwise it behaves like an invalid
// allocator and returns nil.
func (a Allocator) alloc(n int) []byte {
	if a.Alloc == nil {
		return nil
	}
	return a.Alloc(a.User, n)
}

// free invokes a.Free if present and p is non-nil; a no-op otherwise.
func (a Allocator) free(p []byte) {
	if a.Free == nil || p == nil {
		return
	}
	a.Free(a.User, p)
}

// DefaultAllocator returns the heap-backed allocator substituted whenever
// a caller passes a zero-value or partially-nil Allocator to NewContext.
// It ignores User.
func DefaultAllocator() Allocator {
	return Allocator{
		Alloc: func(_ any, n int) []byte {
			if n < 0 {
				return nil
			}
			return make([]byte, n)
		},
		Free: func(_ any, _ []byte) {
			// The Go garbage collector reclaims heap allocations; there is
			// nothing to do beyond letting the slice become unreachable.
		},
	}
}

// normalizeAllocator substitutes the default allocator when alloc is the
// zero value or missing either callback, per spec.md §4.2 "Create".
func normalizeAllocator(alloc *Allocator) Allocator {
	if alloc == nil || !alloc.IsValid() {
		return DefaultAllocator()
	}
	return *alloc
}
