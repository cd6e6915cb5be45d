package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies workflow rejections so handlers can map them to
// HTTP codes and the client can render an actionable message.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"     // bad input, correct and retry
	KindState          ErrorKind = "state"          // transition not legal from current status
	KindResource       ErrorKind = "resource"       // inventory missing or insufficient
	KindInfrastructure ErrorKind = "infrastructure" // db/tx failure, full rollback done, safe to retry
)

// WorkflowError is a structured rejection from the job workflow. Every
// rejection carries enough detail (current status, required vs available)
// for the caller to act on; silent failures are not allowed.
type WorkflowError struct {
	Kind    ErrorKind
	Message string
}

func (e *WorkflowError) Error() string {
	return e.Message
}

func validationErrf(format string, args ...interface{}) *WorkflowError {
	return &WorkflowError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func stateErrf(format string, args ...interface{}) *WorkflowError {
	return &WorkflowError{Kind: KindState, Message: fmt.Sprintf(format, args...)}
}

func resourceErrf(format string, args ...interface{}) *WorkflowError {
	return &WorkflowError{Kind: KindResource, Message: fmt.Sprintf(format, args...)}
}

// KindOf classifies any error returned by the workflow services.
// Anything that is not a WorkflowError is an infrastructure failure.
func KindOf(err error) ErrorKind {
	var wf *WorkflowError
	if errors.As(err, &wf) {
		return wf.Kind
	}
	return KindInfrastructure
}
