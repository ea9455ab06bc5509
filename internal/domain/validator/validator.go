// Package validator composes single-rule business checks into the two-phase
// pipeline every write operation runs before mutating an aggregate.
package validator

import (
	"slices"

	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// Validator checks one rule. It is built with the exact data it needs and
// never mutates state nor performs I/O.
type Validator interface {
	Validate() error
}

// Func adapts a function to the Validator interface.
type Func func() error

// Validate implements Validator.
func (f Func) Validate() error {
	return f()
}

// Check fails with err when ok is false.
func Check(ok bool, err *shared.BusinessError) Validator {
	return Func(func() error {
		if ok {
			return nil
		}
		return err
	})
}

// NotBlank fails with err when value is empty.
func NotBlank(value string, err *shared.BusinessError) Validator {
	return Check(value != "", err)
}

// StatusIn fails with err unless current is one of allowed.
func StatusIn[S comparable](current S, err *shared.BusinessError, allowed ...S) Validator {
	return Check(slices.Contains(allowed, current), err)
}

// List is the validator list of one operation.
//
// Data-contract validators run first and stop at the first failure.
// Invariant validators then all run; their business failures are collected
// into a single *shared.MultipleBusinessErrors. A non-business error from
// either phase is returned as is.
type List struct {
	DataContract []Validator
	Invariants   []Validator
}

// Validate runs the pipeline.
func (l List) Validate() error {
	if err := RunStrict(l.DataContract...); err != nil {
		return err
	}
	return RunCollect(l.Invariants...)
}

// RunStrict runs validators in order and returns the first failure.
func RunStrict(validators ...Validator) error {
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RunCollect runs every validator and aggregates their business failures.
func RunCollect(validators ...Validator) error {
	var collected []*shared.BusinessError
	for _, v := range validators {
		err := v.Validate()
		if err == nil {
			continue
		}
		businessErrs := shared.BusinessErrors(err)
		if len(businessErrs) == 0 {
			return err
		}
		collected = append(collected, businessErrs...)
	}
	if len(collected) == 0 {
		return nil
	}
	return &shared.MultipleBusinessErrors{Errors: collected}
}
