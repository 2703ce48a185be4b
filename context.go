// context.go — reference-counted Context: allocator owner, generation
// counter, and weak registry of tracked Errors.
//
// Ownership:
//   - A Context does NOT own the Errors tracked in its list; tracking is a
//     weak registry used only to detect leaks at teardown and to reach
//     Errors for detachment (spec.md §3).
//   - Released is terminal: after a successful Release, valid flips to
//     false and any further call through the same *Context is a caller
//     bug. Go's GC still owns the backing memory — there is no
//     use-after-free, only a behavioral "invalid handle" contract, per
//     spec.md §4.2's validity-marker discipline.
package ledgercore

import "sync/atomic"

// ReleaseResult is the outcome of TryRelease.
type ReleaseResult int

const (
	// ReleaseStillAlive means the refcount did not reach zero.
	ReleaseStillAlive ReleaseResult = iota
	// ReleaseReleased means the Context was torn down and freed.
	ReleaseReleased
	// ReleaseRefused means the refcount reached zero but Errors were still
	// tracked; the Context remains live (release-build behavior).
	ReleaseRefused
	// ReleaseInvalid means ctx was nil or already released.
	ReleaseInvalid
)

// trackNode is the intrusive registry list's node. Nodes are allocated
// and freed outside the spinlock's critical section; only list-pointer
// manipulation happens under the lock.
type trackNode struct {
	err  *Error
	next *trackNode
}

// Context owns an allocator binding, a monotonically increasing
// generation counter, a reference count, and a weak registry of tracked
// Errors guarded by a spinlock.
type Context struct {
	allocator  Allocator
	generation atomic.Uint32
	refcount   atomic.Uint32
	valid      atomic.Bool

	mu   spinlock
	head *trackNode

	sink DiagnosticSink
}

// NewContext creates a Context with refcount=1 and generation=1. A nil
// alloc (or one with a nil Alloc/Free) substitutes DefaultAllocator, per
// spec.md §4.2.
func NewContext(alloc *Allocator) *Context {
	ctx := &Context{
		allocator: normalizeAllocator(alloc),
		sink:      defaultDiagnosticSink,
	}
	ctx.refcount.Store(1)
	ctx.generation.Store(1)
	ctx.valid.Store(true)
	return ctx
}

// WithDiagnosticSink overrides the sink used for teardown-refusal and
// leaked-error diagnostics. Must be called before any concurrent use of
// ctx; it is not itself synchronized against Release.
func (ctx *Context) WithDiagnosticSink(sink DiagnosticSink) *Context {
	if ctx == nil || sink == nil {
		return ctx
	}
	ctx.sink = sink
	return ctx
}

// Retain increments the reference count. Relaxed ordering suffices: the
// count only needs to be monotonic with respect to itself, not to
// publish any other state.
func (ctx *Context) Retain() {
	if ctx == nil {
		return
	}
	ctx.refcount.Add(1)
}

// TryRelease decrements the reference count and reports the outcome.
//
//   - If the count did not reach zero, returns ReleaseStillAlive.
//   - If it reached zero but Errors remain tracked, this is a
//     lifecycle-contract violation: in DebugMode, it panics after
//     reporting the violation; otherwise it re-increments the refcount to
//     one, reports the violation, and returns ReleaseRefused. The Context
//     remains live either way.
//   - Otherwise it bumps the generation (invalidating any JSON caches a
//     detached Error might still hold a race against), detaches the
//     registry nodes, zeroes the validity marker, and returns
//     ReleaseReleased.
func (ctx *Context) TryRelease() ReleaseResult {
	if ctx == nil || !ctx.valid.Load() {
		return ReleaseInvalid
	}

	if ctx.refcount.Add(^uint32(0)) != 0 { // atomic decrement by 1
		return ReleaseStillAlive
	}

	if live := ctx.liveCount(); live > 0 {
		ctx.reportTeardownRefusal(live)
		if DebugMode {
			panic("ledgercore: context released with live tracked errors")
		}
		ctx.refcount.Store(1)
		return ReleaseRefused
	}

	ctx.bumpGeneration()
	ctx.detachAll()
	ctx.valid.Store(false)
	return ReleaseReleased
}

// Release drops TryRelease's return value; semantics are identical.
func (ctx *Context) Release() {
	ctx.TryRelease()
}

func (ctx *Context) reportTeardownRefusal(live int) {
	sink := ctx.sink
	if sink == nil {
		sink = defaultDiagnosticSink
	}
	sink.TeardownRefused(ctx, live)
}

// AllocatorOf returns a read-only copy of ctx's bound allocator.
func (ctx *Context) AllocatorOf() Allocator {
	if ctx == nil {
		return Allocator{}
	}
	return ctx.allocator
}

// Alloc delegates to ctx's allocator; returns nil when ctx is invalid.
func (ctx *Context) Alloc(n int) []byte {
	if ctx == nil || !ctx.valid.Load() {
		return nil
	}
	return ctx.allocator.alloc(n)
}

// Free delegates to ctx's allocator; a no-op when ctx is invalid.
func (ctx *Context) Free(p []byte) {
	if ctx == nil || !ctx.valid.Load() {
		return
	}
	ctx.allocator.free(p)
}

// IsValid reports whether ctx is a live, non-torn-down Context.
func (ctx *Context) IsValid() bool {
	return ctx != nil && ctx.valid.Load()
}

// trackError registers err with ctx's weak registry. It consults ctx's
// allocator (a one-byte probe) and builds the registry node OUTSIDE the
// spinlock, then prepends the node under the lock — spec.md §4.2 requires
// allocation to happen outside the critical section. Returns false when
// the allocator refuses the probe (caller must detach err).
func (ctx *Context) trackError(err *Error) bool {
	if ctx == nil || !ctx.valid.Load() {
		return false
	}
	// The node itself is a plain Go value; we still probe the allocator so
	// allocator-exhaustion tests (spec.md §8 property 5) can force a
	// registration failure deterministically. The probe is freed right
	// back: it exists only to consult the allocator, not to back any
	// retained storage.
	probe := ctx.allocator.alloc(1)
	if probe == nil {
		return false
	}
	ctx.allocator.free(probe)
	node := &trackNode{err: err}

	ctx.mu.lock()
	node.next = ctx.head
	ctx.head = node
	ctx.mu.unlock()
	return true
}

// untrackError removes the node referencing err, if any. Silent no-op if
// not found, per spec.md §4.2.
func (ctx *Context) untrackError(err *Error) {
	if ctx == nil {
		return
	}
	ctx.mu.lock()
	defer ctx.mu.unlock()

	var prev *trackNode
	for n := ctx.head; n != nil; n = n.next {
		if n.err == err {
			if prev == nil {
				ctx.head = n.next
			} else {
				prev.next = n.next
			}
			return
		}
		prev = n
	}
}

// liveCount returns the number of currently tracked Errors.
func (ctx *Context) liveCount() int {
	ctx.mu.lock()
	defer ctx.mu.unlock()
	n := 0
	for node := ctx.head; node != nil; node = node.next {
		n++
	}
	return n
}

// detachAll walks the registry under the lock, nulling out each tracked
// Error's back-pointer (detaching it) and freeing the registry nodes —
// but never the Errors themselves, which the caller still owns.
func (ctx *Context) detachAll() {
	ctx.mu.lock()
	node := ctx.head
	ctx.head = nil
	ctx.mu.unlock()

	for node != nil {
		next := node.next
		node.err.detach()
		node = next
	}
}

// generationSnapshot is an acquire-load of the generation counter.
func (ctx *Context) generationSnapshot() uint32 {
	return ctx.generation.Load()
}

// bumpGeneration is a release-increment of the generation counter.
func (ctx *Context) bumpGeneration() {
	ctx.generation.Add(1)
}
