package application

import (
	"errors"
	"time"

	"zdguide/internal/domain"
)

// Level categorizes an outcome for display
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Code classifies why an outcome was recorded
type Code string

const (
	CodeConnected           Code = "connected"
	CodeSynced              Code = "synced"
	CodeConfiguration       Code = "configuration"
	CodeTransport           Code = "transport"
	CodeUpstreamStatus      Code = "upstream_status"
	CodeStore               Code = "store"
	CodeEmptyResult         Code = "empty_result"
	CodePrerequisiteMissing Code = "prerequisite_missing"
)

// Outcome is one operator-facing notice
type Outcome struct {
	Level   Level  `json:"level"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// RunReport collects the outcomes of one triggered run
type RunReport struct {
	Intent    Intent           `json:"intent"`
	Outcomes  []Outcome        `json:"outcomes"`
	Stats     domain.SyncStats `json:"stats"`
	StartedAt time.Time        `json:"started_at"`
}

// NewRunReport starts a report for intent
func NewRunReport(intent Intent) *RunReport {
	return &RunReport{Intent: intent, StartedAt: time.Now()}
}

// Success records a success outcome
func (r *RunReport) Success(code Code, message string) {
	r.Outcomes = append(r.Outcomes, Outcome{Level: LevelSuccess, Code: code, Message: message})
}

// Warning records a warning outcome
func (r *RunReport) Warning(code Code, message string) {
	r.Outcomes = append(r.Outcomes, Outcome{Level: LevelWarning, Code: code, Message: message})
}

// Error records an error outcome
func (r *RunReport) Error(code Code, message string) {
	r.Outcomes = append(r.Outcomes, Outcome{Level: LevelError, Code: code, Message: message})
}

// Fail records err as an error outcome, classifying it by type
func (r *RunReport) Fail(prefix string, err error) {
	r.Error(ClassifyError(err), prefix+ErrorMessage(err))
}

// Failed reports whether any error outcome was recorded
func (r *RunReport) Failed() bool {
	for _, o := range r.Outcomes {
		if o.Level == LevelError {
			return true
		}
	}
	return false
}

// Has reports whether an outcome with code was recorded
func (r *RunReport) Has(code Code) bool {
	for _, o := range r.Outcomes {
		if o.Code == code {
			return true
		}
	}
	return false
}

// Finish stamps the run duration
func (r *RunReport) Finish() *RunReport {
	r.Stats.Duration = time.Since(r.StartedAt)
	return r
}

// ClassifyError maps an error onto an outcome code
func ClassifyError(err error) Code {
	var (
		configErr     *ConfigurationError
		validationErr *ValidationError
		statusErr     *UpstreamStatusError
		transportErr  *TransportError
	)
	switch {
	case errors.As(err, &configErr), errors.As(err, &validationErr):
		return CodeConfiguration
	case errors.As(err, &statusErr):
		return CodeUpstreamStatus
	case errors.As(err, &transportErr):
		return CodeTransport
	default:
		return CodeStore
	}
}
