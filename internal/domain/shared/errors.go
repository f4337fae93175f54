// Package shared contains common domain types and errors that are used
// across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrStateTransition  = errors.New("invalid state transition")
	ErrAlreadyProcessed = errors.New("already processed")
	ErrExpired          = errors.New("expired")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Business rule errors
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotEligible       = errors.New("not eligible")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "user", "task", "reward"
	Op      string // Operation that failed, e.g., "Create", "Complete"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// User domain errors
var (
	ErrUserNotFound       = NewDomainError("user", "Find", ErrNotFound, "user not found")
	ErrUserAlreadyExists  = NewDomainError("user", "Create", ErrAlreadyExists, "user already exists")
	ErrInvalidTelegramID  = NewDomainError("user", "Validate", ErrInvalidID, "invalid Telegram ID")
	ErrInsufficientPoints = NewDomainError("user", "Spend", ErrInsufficientFunds, "not enough points")
	ErrShieldAlreadyOn    = NewDomainError("user", "ActivateShield", ErrInvalidState, "shield is already active")
	ErrPepperAlreadyOn    = NewDomainError("user", "ActivatePepper", ErrInvalidState, "pepper mode is already active")
)

// Task domain errors
var (
	ErrTaskNotFound         = NewDomainError("task", "Find", ErrNotFound, "task not found")
	ErrTaskAlreadyCompleted = NewDomainError("task", "Complete", ErrAlreadyProcessed, "task already completed")
	ErrInvalidCategory      = NewDomainError("task", "Validate", ErrInvalidInput, "invalid task category")
	ErrInvalidReminderTime  = NewDomainError("task", "Validate", ErrInvalidFormat, "invalid reminder time")
	ErrEmptyTitle           = NewDomainError("task", "Validate", ErrEmptyValue, "title cannot be empty")
)

// Reward domain errors
var (
	ErrRewardNotFound       = NewDomainError("reward", "Find", ErrNotFound, "reward not found")
	ErrRewardAlreadyClaimed = NewDomainError("reward", "Claim", ErrAlreadyProcessed, "reward already claimed")
	ErrClaimWindowClosed    = NewDomainError("reward", "Claim", ErrNotEligible, "rewards can only be claimed on Sunday")
	ErrCompletionRateTooLow = NewDomainError("reward", "Claim", ErrNotEligible, "weekly completion rate below threshold")
	ErrInvalidCost          = NewDomainError("reward", "Validate", ErrValueOutOfRange, "cost must be positive")
)

// Idea domain errors
var (
	ErrIdeaNotFound     = NewDomainError("idea", "Find", ErrNotFound, "idea not found")
	ErrCategoryNotFound = NewDomainError("idea", "FindCategory", ErrNotFound, "category not found")
)

// Access control errors
var (
	ErrNotWhitelisted = NewDomainError("whitelist", "Check", ErrForbidden, "user is not whitelisted")
)

// External service errors
var (
	ErrTelegramAPIFailed = NewDomainError("telegram", "Send", ErrExternalService, "Telegram API request failed")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}
