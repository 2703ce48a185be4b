// Copyright (c) 2025.
// SPDX-License-Identifier: MIT
//
// See the LICENSE file in the project root for license information.

// Package ledgercore is the foundation layer of libgitledger: a
// reference-counted Context that owns a pluggable allocator, and a
// reference-counted Error value with a causal chain, domain/code
// taxonomy, flags, source-location capture, and deterministic JSON
// rendering with a memoized, generation-keyed cache.
//
// Design tenets:
//   - Values are immutable once constructed; only refcount, the JSON
//     cache, and the context generation snapshot ever change after
//     creation.
//   - Ownership is explicit: New and NewWithCause return one owning reference;
//     Retain adds one; every Retain is balanced by exactly one Release.
//   - No hidden global state. Everything hangs off a Context the caller
//     creates and eventually releases.
//   - No policy: no HTTP status mapping, no retry scheduling, no logging
//     beyond one diagnostic line when a Context refuses teardown or an
//     Error is detached at birth.
//
// # Lifecycle
//
// Create a Context, then build Errors against it, optionally chaining
// causes:
//
//	ctx := ledgercore.NewContext(nil) // nil -> default heap allocator
//	defer ctx.Release()
//
//	err := ledgercore.New(ctx, ledgercore.DomainIO, ledgercore.CodeIOError,
//	        ledgercore.Here(), "disk full")
//	defer err.Release()
//
// Errors are registered with the Context at birth. If registration fails
// (allocator exhaustion), the Error comes back detached: it has no back
// pointer to the Context and frees itself via its own allocator snapshot
// whenever it is released, Context or no Context.
//
// # Rendering
//
// JSON rendering is deterministic and iterative (no recursion over the
// causal chain), bounded at MaxWalkDepth causes:
//
//	buf := err.JSON()
//
// Cached JSON ([Error.JSONCached]) is memoized against the owning
// Context's generation counter; [Context.bumpGeneration] (invoked on
// teardown) invalidates every outstanding cache pointer a detached Error
// might still be holding a race against.
//
// # Concurrency
//
// A single Context may be used concurrently for creation, release, and
// registration by multiple goroutines; a single Error may be retained and
// released concurrently and its JSON cache read concurrently. Mutating an
// Error's content after construction is not supported — there is no API
// surface for it.
package ledgercore
