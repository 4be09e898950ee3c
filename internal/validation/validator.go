// RustFS - S3-Compatible Distributed Object Storage
// Copyright 2026 RustFS Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alimy/rustfs

// Package validation provides struct validation using go-playground/validator v10.
// It provides a thread-safe singleton validator instance with custom validators
// for IAM-specific rules.
//
// Features:
//   - Singleton validator instance (thread-safe, caches struct info)
//   - Custom validators for access keys, policy names and S3 resource ARNs
//   - Uses WithRequiredStructEnabled option (v11+ compatibility)
//
// Example usage:
//
//	type CreateUserRequest struct {
//	    AccessKey string `validate:"required,accesskey"`
//	    SecretKey string `validate:"required,min=8,max=128"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    return fmt.Errorf("invalid request: %w", err)
//	}
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

var (
	// accessKeyRe matches IAM access keys and user names: 3-128 characters
	// drawn from the portable identifier set.
	accessKeyRe = regexp.MustCompile(`^[a-zA-Z0-9_.=,@:-]{3,128}$`)

	// policyNameRe matches policy, group and role names.
	policyNameRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,128}$`)
)

// ValidationError represents a single field validation error.
type ValidationError struct {
	field string
	tag   string
	param string
}

// Field returns the struct field name that failed validation.
func (e *ValidationError) Field() string { return e.field }

// Tag returns the validation tag that failed.
func (e *ValidationError) Tag() string { return e.tag }

func (e *ValidationError) Error() string {
	if e.param != "" {
		return fmt.Sprintf("field %q failed validation %q (param %q)", e.field, e.tag, e.param)
	}
	return fmt.Sprintf("field %q failed validation %q", e.field, e.tag)
}

// Errors aggregates every field failure from one ValidateStruct call.
type Errors []*ValidationError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// instance returns the singleton validator, creating it on first use.
func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Custom validators. Registration errors only occur for empty tag
		// names, which is a programming error.
		mustRegister("accesskey", validAccessKey)
		mustRegister("policyname", validPolicyName)
		mustRegister("s3arn", validS3ARN)
	})
	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// validAccessKey validates IAM access keys and user names.
func validAccessKey(fl validator.FieldLevel) bool {
	return accessKeyRe.MatchString(fl.Field().String())
}

// validPolicyName validates policy, group and role names.
func validPolicyName(fl validator.FieldLevel) bool {
	return policyNameRe.MatchString(fl.Field().String())
}

// validS3ARN validates S3 resource ARNs of the form
// arn:aws:s3:::bucket, arn:aws:s3:::bucket/key or a bare "*".
func validS3ARN(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "*" {
		return true
	}
	const prefix = "arn:aws:s3:::"
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	return len(s) > len(prefix)
}

// ValidateStruct validates a struct using its `validate` tags.
// Returns nil on success, or an Errors value listing each field failure.
func ValidateStruct(s interface{}) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("validation called with invalid value: %w", err)
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, &ValidationError{
			field: fe.Field(),
			tag:   fe.Tag(),
			param: fe.Param(),
		})
	}
	return out
}

// ValidateVar validates a single variable against a tag expression.
//
//	validation.ValidateVar(name, "required,policyname")
func ValidateVar(v interface{}, tag string) error {
	return instance().Var(v, tag)
}
