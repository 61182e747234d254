// Copyright (c) 2026 Urban Atelier. All rights reserved.

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanatelier/catalog/internal/platform/apperr"
	"github.com/urbanatelier/catalog/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "name", "Loft Light", false},
		{"empty_string", "name", "", true},
		{"whitespace_only", "name", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, apperr.CodeValidation, ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_ListingID checks the listing id format rule.
*/
func TestValidator_ListingID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		isValid bool
	}{
		{"short_code", "UA01", true},
		{"long_code", "UA89715432", true},
		{"digits_only", "42", true},
		{"lowercase", "ua01", false},
		{"too_short", "U", false},
		{"too_long", "UA897154321", false},
		{"punctuation", "UA-01", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.ListingID("id", tt.id)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
			}
		})
	}
}

/*
TestValidator_Min checks the numeric lower-bound rule.
*/
func TestValidator_Min(t *testing.T) {
	v := &validate.Validator{}
	v.Min("price", 100, 0)
	assert.False(t, v.HasErrors())

	v = &validate.Validator{}
	v.Min("price", -1, 0)
	assert.True(t, v.HasErrors())
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		ListingID("id", "UA8971").
		Required("name", "Urban Torch").
		MaxLen("name", "Urban Torch", 255).
		Min("price", 1250, 0).
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("name", "").       // Fails
		ListingID("id", "bad id").  // Fails
		Min("price", -5, 0).        // Fails
		Custom("extension", true, "Unknown extension"). // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	assert.Len(t, ae.Details, 4)
}
