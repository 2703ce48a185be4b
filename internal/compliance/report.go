// Package compliance is an independent reporting harness: a fixed status
// enum and a JSON (and, for operator tooling, YAML) writer over it.
//
// spec.md §1 treats this harness as an external collaborator, not part of
// the foundation: it may *consume* a *ledgercore.Error to describe why a
// check failed, but the foundation never imports compliance back. Keeping
// the dependency one-directional mirrors the spec's framing exactly.
package compliance

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/flyingrobots/libgitledger-go"
)

// Status is the fixed outcome enum a compliance check reports.
type Status string

const (
	StatusPass          Status = "pass"
	StatusFail          Status = "fail"
	StatusWarn          Status = "warn"
	StatusNotApplicable Status = "not_applicable"
)

// Finding is a single check result. Detail is a free-form human message;
// Cause, if set, is the foundation error (if any) that produced the
// finding — its domain/code/message ride along via the public Error()
// string rather than any private field access.
type Finding struct {
	Check  string `json:"check" yaml:"check"`
	Status Status `json:"status" yaml:"status"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
	Cause  string `json:"cause,omitempty" yaml:"cause,omitempty"`
}

// Report is a timestamped, identified collection of Findings.
type Report struct {
	ID        string    `json:"id" yaml:"id"`
	Generated time.Time `json:"generated" yaml:"generated"`
	Findings  []Finding `json:"findings" yaml:"findings"`
}

// NewReport creates an empty Report with a fresh UUID and the given
// generation timestamp (callers supply "now" so report generation stays
// deterministic in tests).
func NewReport(generated time.Time) *Report {
	return &Report{
		ID:        uuid.NewString(),
		Generated: generated,
		Findings:  nil,
	}
}

// AddFinding appends a finding. If cause is non-nil, its Error() string
// ("DOMAIN/CODE: message") is stored in Finding.Cause.
func (r *Report) AddFinding(check string, status Status, detail string, cause *ledgercore.Error) {
	f := Finding{Check: check, Status: status, Detail: detail}
	if cause != nil {
		f.Cause = cause.Error() // "DOMAIN/CODE: message", per ledgercore.Error.Error
	}
	r.Findings = append(r.Findings, f)
}

// JSON renders the report as JSON.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// YAML renders the report as YAML, for operator tooling that prefers it
// over JSON (marcohefti-zero-context-lab's config/report tooling in the
// retrieval pack follows the same pattern of offering both).
func (r *Report) YAML() ([]byte, error) {
	return yaml.Marshal(r)
}
