package ledgercore

import (
	"strings"
	"sync"
	"testing"
)

// TestScenarioGitCommitFailureChain reproduces spec.md §8 scenario A: a
// Git-domain error wrapping an IO-domain cause renders as nested JSON with
// the cause's RETRYABLE flag intact and no flags on the wrapper.
func TestScenarioGitCommitFailureChain(t *testing.T) {
	ctx := NewContext(nil)
	defer ctx.Release()

	cause := New(ctx, DomainIO, CodeIOError, Here(), "write failed: no space left on device")
	defer cause.Release()
	top := NewWithCause(ctx, DomainGit, CodeDependencyMissing, cause, Here(), "failed to commit tree")
	defer top.Release()

	got := top.JSON()
	if !strings.HasPrefix(got, `{"domain":"GIT","code":"DEPENDENCY_MISSING","flags":[],"message":"failed to commit tree"`) {
		t.Fatalf("unexpected top-level rendering: %s", got)
	}
	if !strings.Contains(got, `"cause":{"domain":"IO","code":"IO_ERROR","flags":["RETRYABLE"]`) {
		t.Fatalf("unexpected cause rendering: %s", got)
	}
}

// TestScenarioRoundTripDeterminism reproduces property 1: rendering the
// same Error twice (uncached) yields byte-identical output.
func TestScenarioRoundTripDeterminism(t *testing.T) {
	ctx := NewContext(nil)
	defer ctx.Release()

	err := New(ctx, DomainTrust, CodePolicyViolation, Here(), "signature mismatch")
	defer err.Release()

	a := err.JSON()
	b := err.JSON()
	if a != b {
		t.Fatalf("JSON() not deterministic across calls:\n  %s\nvs\n  %s", a, b)
	}
}

// TestScenarioCausalWalkBound reproduces property 2: Walk over an
// arbitrarily long chain visits at most MaxWalkDepth nodes.
func TestScenarioCausalWalkBound(t *testing.T) {
	ctx := NewContext(nil)
	defer ctx.Release()

	var top *Error
	for i := 0; i < MaxWalkDepth*3; i++ {
		next := NewWithCause(ctx, DomainGeneric, CodeUnknown, top, SourceLocation{}, "l%d", i)
		if top != nil {
			top.Release()
		}
		top = next
	}
	defer top.Release()

	visited := 0
	Walk(top, func(*Error, any) bool { visited++; return true }, nil)
	if visited != MaxWalkDepth {
		t.Fatalf("Walk visited %d nodes, want %d", visited, MaxWalkDepth)
	}
}

// TestScenarioAllocatorBalanceAcrossConstructionAndRelease reproduces
// property 3 across a richer shape than allocator_test.go's basic case: a
// three-level chain, one JSON render per level, and full release.
func TestScenarioAllocatorBalanceAcrossConstructionAndRelease(t *testing.T) {
	ia := &instrumentedAllocator{budget: -1}
	alloc := ia.bind()
	ctx := NewContext(&alloc)

	leaf := New(ctx, DomainIO, CodeIOError, SourceLocation{}, "disk full")
	mid := NewWithCause(ctx, DomainGit, CodeDependencyMissing, leaf, SourceLocation{}, "write failed")
	top := NewWithCause(ctx, DomainPolicy, CodePolicyViolation, mid, SourceLocation{}, "push rejected")

	_ = leaf.JSON()
	_ = mid.JSONCached()
	_ = top.JSONCached()
	_ = top.JSONCached() // exercise the cache-hit path too

	top.Release()
	mid.Release()
	leaf.Release()
	ctx.Release()

	if ia.allocated != ia.freed {
		t.Fatalf("unbalanced allocator across a 3-level chain: allocated=%d freed=%d", ia.allocated, ia.freed)
	}
}

// TestScenarioChainReleaseNoStackBlowUp reproduces property 4 at a larger
// depth than error_test.go's baseline, confirming Release's loop-based
// walk handles very deep chains.
func TestScenarioChainReleaseNoStackBlowUp(t *testing.T) {
	ctx := NewContext(nil)

	const depth = 50000
	var top *Error
	for i := 0; i < depth; i++ {
		next := NewWithCause(ctx, DomainGeneric, CodeUnknown, top, SourceLocation{}, "")
		if top != nil {
			top.Release()
		}
		top = next
	}
	top.Release()

	if got := ctx.TryRelease(); got != ReleaseReleased {
		t.Fatalf("TryRelease after releasing a %d-deep chain = %v, want ReleaseReleased", depth, got)
	}
}

// TestScenarioDetachmentSurvivesTeardown reproduces property 5: an Error
// whose registration with its Context failed at birth is detached, so the
// Context tears down immediately, and the Error remains readable (Message,
// Domain, uncached JSON) and releasable afterwards.
func TestScenarioDetachmentSurvivesTeardown(t *testing.T) {
	ia := &instrumentedAllocator{budget: 2} // construction's probe + message buffer succeed; tracking's probe does not
	alloc := ia.bind()
	ctx := NewContext(&alloc)
	err := New(ctx, DomainIO, CodeIOError, Here(), "disk full")
	if err == nil {
		t.Fatal("New returned nil; expected a detached (but non-nil) Error")
	}

	if got := ctx.TryRelease(); got != ReleaseReleased {
		t.Fatalf("TryRelease with only a detached error = %v, want ReleaseReleased", got)
	}

	if err.IsAttached() {
		t.Fatal("error should be detached")
	}
	if err.Domain() != DomainIO || err.Message() != "disk full" {
		t.Fatal("detached error lost its own fields")
	}
	if got := string(err.JSONCached()); got != "{}" {
		t.Fatalf("JSONCached() on a post-teardown detached error = %q, want {}", got)
	}
	if !strings.Contains(err.JSON(), `"message":"disk full"`) {
		t.Fatal("uncached JSON() should still render a detached error fully")
	}

	err.Release()
}

// TestScenarioTeardownRefusalThenSuccess reproduces property 6: releasing
// every tracked error after a refusal allows a subsequent release to
// succeed.
func TestScenarioTeardownRefusalThenSuccess(t *testing.T) {
	ctx := NewContext(nil)
	e1 := New(ctx, DomainIO, CodeIOError, SourceLocation{}, "a")
	e2 := New(ctx, DomainIO, CodeIOError, SourceLocation{}, "b")

	if got := ctx.TryRelease(); got != ReleaseRefused {
		t.Fatalf("TryRelease with two live errors = %v, want ReleaseRefused", got)
	}

	e1.Release()
	if got := ctx.TryRelease(); got != ReleaseRefused {
		t.Fatalf("TryRelease with one live error = %v, want ReleaseRefused", got)
	}

	e2.Release()
	if got := ctx.TryRelease(); got != ReleaseReleased {
		t.Fatalf("TryRelease with zero live errors = %v, want ReleaseReleased", got)
	}
}

// TestScenarioCacheInvalidationRace reproduces property 7: concurrent
// JSONCached readers racing a generation bump never observe a freed
// buffer, and every reader's result parses as either the live rendering or
// the detached "{}" constant.
func TestScenarioCacheInvalidationRace(t *testing.T) {
	ctx := NewContext(nil)
	err := New(ctx, DomainIO, CodeIOError, SourceLocation{}, "disk full")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if got := string(err.JSONCached()); got != "{}" && !strings.Contains(got, `"message":"disk full"`) {
					t.Errorf("JSONCached() during a generation bump = %s", got)
				}
			}
		}()
	}
	ctx.bumpGeneration()
	wg.Wait()

	final := err.JSONCached()
	if !strings.Contains(string(final), `"message":"disk full"`) {
		t.Fatalf("final JSONCached() after racing bumps = %s", final)
	}

	err.Release()
	ctx.Release()
}

// TestScenarioFlagDefaultsTable reproduces property 8: the domain/code
// default-flags policy table end to end
// through construction, not just DefaultFlags in isolation.
func TestScenarioFlagDefaultsTable(t *testing.T) {
	ctx := NewContext(nil)
	defer ctx.Release()

	cases := []struct {
		domain Domain
		code   Code
		want   string
	}{
		{DomainIO, CodeOK, "RETRYABLE"},
		{DomainPolicy, CodeOK, "PERMANENT"},
		{DomainTrust, CodeOK, "PERMANENT"},
		{DomainGeneric, CodeOOM, "RETRYABLE"},
		{DomainGeneric, CodeInvalidArgument, "PERMANENT"},
		{DomainGeneric, CodeNotFound, ""},
	}
	for _, c := range cases {
		err := New(ctx, c.domain, c.code, SourceLocation{}, "")
		if got := err.FlagsVal().String(); got != c.want {
			t.Errorf("domain=%v code=%v flags=%q, want %q", c.domain, c.code, got, c.want)
		}
		err.Release()
	}
}

// TestScenarioFormatFlagsCombination reproduces spec.md §8 scenario F
// verbatim: PERMANENT|AUTH formatted with a 32-byte buffer.
func TestScenarioFormatFlagsCombination(t *testing.T) {
	buf := make([]byte, 32)
	n := FormatFlags(FlagPermanent|FlagAuth, buf, 32)
	if n != 14 {
		t.Fatalf("FormatFlags required size = %d, want 14", n)
	}
	if got := string(buf[:14]); got != "PERMANENT|AUTH" {
		t.Fatalf("FormatFlags wrote %q, want \"PERMANENT|AUTH\"", got)
	}
	if buf[14] != 0 {
		t.Fatalf("FormatFlags should NUL-terminate at byte 14")
	}
}
