// Copyright (c) 2026 Urban Atelier. All rights reserved.

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// The facade runs a validator over every incoming record before the write
// path starts, so stores only ever operate on semantically valid data.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/urbanatelier/catalog/internal/platform/apperr"
)

// listingIDRegex matches catalog listing ids: uppercase letters and digits,
// 2 to 10 characters (e.g. "UA01", "UA8971").
var listingIDRegex = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)

// Validator collects field-level validation errors via a fluent, chainable
// API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// Min fails if the value is below min.
func (v *Validator) Min(field string, value, min int) *Validator {
	if value < min {
		v.add(field, fmt.Sprintf("Must be at least %d", min))
	}
	return v
}

// ListingID fails if the value is not a valid listing id.
//
// # Format
//
// Listing ids are short uppercase alphanumeric codes, matching the
// VARCHAR(10) key columns of the listing tables.
func (v *Validator) ListingID(field, value string) *Validator {
	if !listingIDRegex.MatchString(value) {
		v.add(field, "Must be 2-10 uppercase letters or digits")
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a VALIDATION_ERROR if any rules failed, or nil if all passed.
//
// This is the only output method — call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.Validation("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}
