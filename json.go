// json.go — deterministic JSON rendering of an Error and its causal
// chain, plus a generation-keyed memoized cache.
//
// The renderer never recurses over the chain (spec.md §1 Non-goals: "no
// recursive algorithms over chains"): it first walks the chain into a
// bounded slice (the top-level Error plus up to MaxWalkDepth causes; the
// last collected node's cause pointer tells whether the chain continues),
// then emits nested "cause" objects by writing opening
// fragments forward and closing braces in a flat trailing loop — the
// Go-native equivalent of the spec's "iterative, stack-based serializer
// ... with an explicit frame stack."
package ledgercore

import (
	"bytes"
	"strconv"
)

// maxChainRender is MaxWalkDepth plus the top-level Error itself: up to
// this many nodes render as nested objects before a {"truncated":true}
// marker replaces the remainder (spec.md §4.4, scenario E).
const maxChainRender = MaxWalkDepth + 1

// RenderTooLarge is the sentinel RenderInto/RenderSize return when the
// required size overflows what a caller-supplied capacity can ever
// express (spec.md §4.4 "A required size overflow returns a sentinel
// 'too large' value").
const RenderTooLarge = -1

// maxRenderSize bounds what RenderSize/RenderInto will report before
// falling back to RenderTooLarge.
const maxRenderSize = 1<<31 - 1

// collectChain walks err's causal chain into up to maxChainRender nodes
// and reports whether the chain continues beyond what was collected.
func collectChain(err *Error) (nodes []*Error, truncated bool) {
	node := err
	for node != nil && len(nodes) < maxChainRender {
		nodes = append(nodes, node)
		node = node.cause
	}
	return nodes, node != nil
}

// encodeJSON renders err (and its chain) with no trailing NUL. A nil err
// renders as the two-byte object "{}".
func encodeJSON(err *Error) []byte {
	var buf bytes.Buffer
	if err == nil {
		buf.WriteString("{}")
		return buf.Bytes()
	}

	nodes, truncated := collectChain(err)
	for i, node := range nodes {
		buf.WriteByte('{')
		writeErrorFields(&buf, node)
		switch {
		case i < len(nodes)-1:
			buf.WriteString(`,"cause":`)
		case truncated:
			buf.WriteString(`,"cause":{"truncated":true}`)
		}
	}
	for range nodes {
		buf.WriteByte('}')
	}
	return buf.Bytes()
}

// writeErrorFields writes domain, code, flags, message, and the optional
// file/line/func fields for a single node, in the fixed key order
// spec.md §4.4 mandates. It writes no surrounding braces and no trailing
// comma.
func writeErrorFields(buf *bytes.Buffer, node *Error) {
	buf.WriteString(`"domain":"`)
	buf.WriteString(DomainName(node.domain))
	buf.WriteString(`","code":"`)
	buf.WriteString(CodeName(node.code))
	buf.WriteString(`","flags":[`)
	for i, name := range node.flags.names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(name)
		buf.WriteByte('"')
	}
	buf.WriteString(`],"message":"`)
	writeEscapedJSONString(buf, node.Message())
	buf.WriteByte('"')

	if !node.loc.IsZero() {
		buf.WriteString(`,"file":"`)
		writeEscapedJSONString(buf, node.loc.File)
		buf.WriteString(`","line":`)
		buf.WriteString(strconv.Itoa(node.loc.Line))
	}
	if node.loc.Func != "" {
		buf.WriteString(`,"func":"`)
		writeEscapedJSONString(buf, node.loc.Func)
		buf.WriteByte('"')
	}
}

// writeEscapedJSONString writes s into buf with RFC 8259 escaping:
// backslash, quote, and the named control escapes get their short form;
// other control bytes below 0x20 get \u00xx; everything else (including
// high bytes) passes through unchanged, matching the byte-oriented
// contract of spec.md §4.4 rather than a full Unicode-aware encoder.
func writeEscapedJSONString(buf *bytes.Buffer, s string) {
	const hex = "0123456789abcdef"
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			buf.WriteString(`\\`)
		case '"':
			buf.WriteString(`\"`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if c < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hex[c>>4])
				buf.WriteByte(hex[c&0xf])
			} else {
				buf.WriteByte(c)
			}
		}
	}
}

// RenderSize returns the number of bytes the full rendering of err would
// require, including a terminating NUL byte, mirroring the C sizing-pass
// contract (spec.md §4.4). Go callers that just want a string should use
// Error.JSON instead.
func RenderSize(err *Error) int {
	n := len(encodeJSON(err)) + 1
	if n > maxRenderSize {
		return RenderTooLarge
	}
	return n
}

// RenderInto writes up to capacity-1 bytes of err's JSON rendering into
// buffer, followed by a NUL terminator, and always returns the number of
// bytes the FULL rendering would require (NUL included) — regardless of
// whether it fit. buffer may be nil (capacity is then ignored) to just
// measure the size, matching Render(err, null, 0) in the source contract.
func RenderInto(err *Error, buffer []byte, capacity int) int {
	body := encodeJSON(err)
	required := len(body) + 1
	if required > maxRenderSize {
		return RenderTooLarge
	}
	if buffer != nil && capacity > 0 {
		n := capacity - 1
		if n > len(body) {
			n = len(body)
		}
		if n > len(buffer) {
			n = len(buffer)
		}
		if n > 0 {
			copy(buffer[:n], body[:n])
		}
		if n < len(buffer) {
			buffer[n] = 0
		}
	}
	return required
}

// Render returns the full byte rendering of err, NUL-terminated, matching
// the source library's Render(err, buffer, capacity) contract when given
// an unbounded buffer. Most Go callers want Error.JSON instead.
func Render(err *Error) []byte {
	body := encodeJSON(err)
	out := make([]byte, len(body)+1)
	copy(out, body)
	return out
}

// JSON returns err's deterministic JSON rendering as a plain Go string,
// with no NUL terminator — the idiomatic entry point for most callers.
func (e *Error) JSON() string {
	return string(encodeJSON(e))
}

// JSONCached returns e's memoized JSON rendering.
//
//   - A detached Error (no back-pointer, including one that lost its
//     Context at birth) always returns the constant "{}": memoization
//     requires a Context to invalidate against and allocate from
//     (spec.md §4.4, §7; spec.md §8 property 5).
//   - Otherwise, if the Context's generation has moved past e's
//     snapshot, the existing cache (if any) is discarded and the
//     snapshot is republished before anything is read.
//   - The returned slice is owned by e and only valid until the next
//     generation bump or e's own Release; callers needing a durable copy
//     must use JSONCopy.
func (e *Error) JSONCached() []byte {
	if e == nil || e.ctx == nil {
		return []byte("{}")
	}

	currentGen := e.ctx.generationSnapshot()
	if e.ctxGeneration.Swap(currentGen) != currentGen {
		if old := e.jsonCache.Swap(nil); old != nil {
			e.ctxAllocator.free(*old)
		}
	}

	if p := e.jsonCache.Load(); p != nil {
		return *p
	}

	body := encodeJSON(e)
	buf := e.ctxAllocator.alloc(len(body))
	if buf == nil {
		// Allocator exhaustion: degrade to an unmemoized render rather
		// than fail outright; nothing in the spec requires JSONCached to
		// be fallible.
		return body
	}
	copy(buf, body)

	if !e.jsonCache.CompareAndSwap(nil, &buf) {
		// Lost the publication race: free our scratch buffer and return
		// the winner's.
		e.ctxAllocator.free(buf)
		if p := e.jsonCache.Load(); p != nil {
			return *p
		}
		return body
	}
	return buf
}

// JSONCopy returns a caller-owned copy of err's current JSON rendering,
// allocated via ctx. Returns nil on allocation failure or an invalid ctx.
func JSONCopy(ctx *Context, err *Error) []byte {
	if ctx == nil || !ctx.IsValid() {
		return nil
	}
	body := err.JSONCached()
	buf := ctx.allocator.alloc(len(body))
	if buf == nil {
		return nil
	}
	copy(buf, body)
	return buf
}

// MessageCopy returns a caller-owned copy of err's plain message,
// allocated via ctx. Returns nil on allocation failure or an invalid ctx.
func MessageCopy(ctx *Context, err *Error) []byte {
	if ctx == nil || !ctx.IsValid() {
		return nil
	}
	msg := err.Message()
	buf := ctx.allocator.alloc(len(msg))
	if buf == nil {
		return nil
	}
	copy(buf, msg)
	return buf
}
