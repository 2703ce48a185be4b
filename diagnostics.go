// diagnostics.go — the foundation's one implicit side effect: a single
// diagnostic line on teardown refusal (spec.md §5, §7) or on an Error
// detached at birth, plus the DebugMode switch that turns refusal into an
// abort.
//
// The teacher repos in the retrieval pack reach for a real logging
// library rather than fmt.Println for anything diagnostic
// (evalgo-org-eve wires github.com/sirupsen/logrus end to end in
// common/logger.go and coordinator/loghook.go); this repo does the same
// for its one log line, behind a narrow interface so embedders can
// redirect or silence it entirely.
package ledgercore

import "github.com/sirupsen/logrus"

// DebugMode selects the spec's two teardown-contract behaviors: false
// (the default) is the release build's "refuse and diagnose"; true is
// the debug build's "abort". Go has no compile-time NDEBUG switch ambient
// to the language, so this is a package variable rather than a build
// tag — an explicit Open Question resolution recorded in DESIGN.md.
var DebugMode = false

// DiagnosticSink receives the foundation's two possible diagnostic
// events. Implementations must not block indefinitely; they are invoked
// synchronously from TryRelease and error construction.
type DiagnosticSink interface {
	// TeardownRefused is invoked when a Context's refcount reached zero
	// while liveErrors were still tracked against it.
	TeardownRefused(ctx *Context, liveErrors int)
	// ErrorDetached is invoked when an Error fails to register with its
	// Context at birth and is returned in the detached state.
	ErrorDetached(err *Error)
}

// logrusDiagnosticSink is the default DiagnosticSink, backed by a
// *logrus.Logger.
type logrusDiagnosticSink struct {
	logger *logrus.Logger
}

// NewLogrusDiagnosticSink wraps logger (or a new default logrus.Logger,
// if nil) as a DiagnosticSink.
func NewLogrusDiagnosticSink(logger *logrus.Logger) DiagnosticSink {
	if logger == nil {
		logger = logrus.New()
	}
	return &logrusDiagnosticSink{logger: logger}
}

func (s *logrusDiagnosticSink) TeardownRefused(ctx *Context, liveErrors int) {
	gen := uint32(0)
	if ctx != nil {
		gen = ctx.generationSnapshot()
	}
	s.logger.WithFields(logrus.Fields{
		"generation":  gen,
		"live_errors": liveErrors,
	}).Warn("ledgercore: context release refused, errors still tracked")
}

func (s *logrusDiagnosticSink) ErrorDetached(err *Error) {
	s.logger.WithFields(logrus.Fields{
		"domain": DomainName(err.Domain()),
		"code":   CodeName(err.CodeVal()),
	}).Warn("ledgercore: error detached from context at birth")
}

// defaultDiagnosticSink is used by every Context created without an
// explicit WithDiagnosticSink call.
var defaultDiagnosticSink DiagnosticSink = NewLogrusDiagnosticSink(nil)
