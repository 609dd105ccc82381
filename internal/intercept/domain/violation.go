package domain

import (
	"errors"
	"fmt"
)

type ViolationKind string

const (
	KindRegionDenied         ViolationKind = "RegionDenied"
	KindInsuredCountTooLow   ViolationKind = "InsuredCountTooLow"
	KindAgeOutOfRange        ViolationKind = "AgeOutOfRange"
	KindDuplicateApplication ViolationKind = "DuplicateApplication"
	KindPolicyLimitExceeded  ViolationKind = "PolicyLimitExceeded"
)

// Violation is returned when an application fails an interception rule.
// Subject names the offending region or person when there is one.
type Violation struct {
	Kind    ViolationKind `json:"error"`
	Message string        `json:"message"`
	Subject string        `json:"subject,omitempty"`
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Message)
}

// Code returns the client-facing error code.
func (v *Violation) Code() string {
	return string(v.Kind)
}

func newViolation(kind ViolationKind, subject, format string, args ...any) *Violation {
	return &Violation{Kind: kind, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// AsViolation unwraps err into a *Violation when it is one.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) && v != nil {
		return v, true
	}
	return nil, false
}
