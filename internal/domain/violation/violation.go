// Package violation defines the closed set of constraint violations returned by
// property validators.
//
// Validators never panic or return errors; they return exactly one Violation.
// A Violation of kind None means the checked value is acceptable. Mutators turn
// a failing Violation into an error at their boundary via Err.
package violation

import (
	"errors"
	"fmt"
)

// Kind identifies why a candidate value was rejected.
type Kind int

const (
	// None means the value passed validation.
	None Kind = iota

	// MandatoryValue means a required value is missing or blank.
	MandatoryValue

	// Range means the value is not of the property's value space
	// (for example "abc" for an integer property).
	Range

	// StringLength means a string is shorter or longer than allowed.
	StringLength

	// Interval means a numeric, date, or length value lies outside its bounds.
	Interval

	// Pattern means a string does not match the required pattern.
	Pattern

	// Uniqueness means the value is already taken by another instance.
	Uniqueness

	// ReferentialIntegrity means a reference does not resolve to an existing instance.
	ReferentialIntegrity

	// FrozenValue means the property must not change after it was first assigned.
	FrozenValue
)

var kindNames = [...]string{
	None:                 "NoConstraintViolation",
	MandatoryValue:       "MandatoryValueConstraintViolation",
	Range:                "RangeConstraintViolation",
	StringLength:         "StringLengthConstraintViolation",
	Interval:             "IntervalConstraintViolation",
	Pattern:              "PatternConstraintViolation",
	Uniqueness:           "UniquenessConstraintViolation",
	ReferentialIntegrity: "ReferentialIntegrityConstraintViolation",
	FrozenValue:          "FrozenValueConstraintViolation",
}

// String returns the violation class name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsValid returns true if k is one of the nine known kinds.
func (k Kind) IsValid() bool {
	return k >= None && k <= FrozenValue
}

// Violation is the result of a property check.
type Violation struct {
	Kind    Kind
	Message string

	// Value optionally carries the normalized value that passed the check.
	Value any
}

// OK returns a passing result with no checked value.
func OK() Violation {
	return Violation{Kind: None}
}

// OKWith returns a passing result that carries the normalized checked value.
func OKWith(v any) Violation {
	return Violation{Kind: None, Value: v}
}

// New returns a violation of the given kind. A None kind always has an empty message.
func New(kind Kind, format string, args ...any) Violation {
	if kind == None {
		return OK()
	}
	return Violation{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Mandatory is shorthand for New(MandatoryValue, ...).
func Mandatory(format string, args ...any) Violation {
	return New(MandatoryValue, format, args...)
}

// OutOfRange is shorthand for New(Range, ...).
func OutOfRange(format string, args ...any) Violation {
	return New(Range, format, args...)
}

// OutOfInterval is shorthand for New(Interval, ...).
func OutOfInterval(format string, args ...any) Violation {
	return New(Interval, format, args...)
}

// NotUnique is shorthand for New(Uniqueness, ...).
func NotUnique(format string, args ...any) Violation {
	return New(Uniqueness, format, args...)
}

// Dangling is shorthand for New(ReferentialIntegrity, ...).
func Dangling(format string, args ...any) Violation {
	return New(ReferentialIntegrity, format, args...)
}

// Frozen is shorthand for New(FrozenValue, ...).
func Frozen(format string, args ...any) Violation {
	return New(FrozenValue, format, args...)
}

// Ok reports whether the value passed validation.
func (v Violation) Ok() bool {
	return v.Kind == None
}

// Error implements error.
func (v Violation) Error() string {
	if v.Message == "" {
		return v.Kind.String()
	}
	return v.Kind.String() + ": " + v.Message
}

// Err converts the result into an error, returning nil when the value passed.
func (v Violation) Err() error {
	if v.Ok() {
		return nil
	}
	return v
}

// Is matches another Violation of the same kind, so that
// errors.Is(err, violation.Violation{Kind: violation.Interval}) works.
func (v Violation) Is(target error) bool {
	var t Violation
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == v.Kind
}

// KindOf extracts the violation kind from err. It returns None and false when
// err does not wrap a Violation.
func KindOf(err error) (Kind, bool) {
	var v Violation
	if errors.As(err, &v) {
		return v.Kind, true
	}
	return None, false
}
