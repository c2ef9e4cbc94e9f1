package domain

import "strings"

// Issue is one coded, user-renderable problem attached to a Result.
type Issue struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// Result is the uniform outcome every orchestrator operation produces.
// An operation that completed fully carries a status description and no
// errors; an operation that was reported but not fully applied carries one
// issue per failed step. Warnings record conditions that did not stop the
// operation (e.g. a skipped best-effort lookup).
//
// Operation-specific payloads embed Result rather than stuffing values into
// an untyped bag.
type Result struct {
	StatusDescription string   `json:"status_description,omitempty"`
	Errors            []Issue  `json:"errors,omitempty"`
	Warnings          []string `json:"warnings,omitempty"`
}

// OK returns a successful Result with a status description.
func OK(description string) Result {
	return Result{StatusDescription: description}
}

// Failed returns a Result carrying a single issue.
func Failed(code, detail string) Result {
	r := Result{}
	r.AddError(code, detail)
	return r
}

func (r *Result) AddError(code, detail string) {
	r.Errors = append(r.Errors, Issue{Code: code, Detail: detail})
}

func (r *Result) AddWarning(detail string) {
	r.Warnings = append(r.Warnings, detail)
}

// Succeeded reports whether the operation completed with no recorded errors.
func (r Result) Succeeded() bool { return len(r.Errors) == 0 }

// FirstCode returns the code of the first recorded issue, or "" on success.
// Issue order is meaningful: eligibility gates report the first violated
// gate, sagas report step failures in execution order.
func (r Result) FirstCode() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Code
}

// ErrorDetails joins all issue details into one renderable string.
func (r Result) ErrorDetails() string {
	if len(r.Errors) == 0 {
		return ""
	}
	details := make([]string, 0, len(r.Errors))
	for _, issue := range r.Errors {
		details = append(details, issue.Detail)
	}
	return strings.Join(details, "; ")
}
