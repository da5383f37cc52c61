package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInternal           = errors.New("internal error")
	ErrEncoding           = errors.New("encoding error")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Duplicate fields reported by DuplicateAccountError.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
)

// Reasons reported by InvalidTokenError.
const (
	ReasonExpired      = "expired"
	ReasonBadSignature = "bad-signature"
	ReasonMalformed    = "malformed"
)

type DuplicateAccountError struct {
	Field string
}

func (e *DuplicateAccountError) Error() string {
	return fmt.Sprintf("account with this %s already exists", e.Field)
}

func (e *DuplicateAccountError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// UserNotFoundError is returned both for unknown usernames and for wrong
// passwords, so callers cannot tell the two apart.
type UserNotFoundError struct {
	Username string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user %q not found", e.Username)
}

func (e *UserNotFoundError) Is(target error) bool {
	return target == ErrInvalidCredentials
}

type InvalidTokenError struct {
	Reason string
}

func (e *InvalidTokenError) Error() string {
	return "invalid token: " + e.Reason
}

func (e *InvalidTokenError) Is(target error) bool {
	return target == ErrInvalidToken
}

type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool {
	return target == ErrInternal
}

type EncodingError struct {
	Op  string
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding: %s: %v", e.Op, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding
}

func NewInvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

func WrapInternal(err error, context string) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, context, err)
}

func WrapStorage(err error, op string) error {
	return &StorageError{Op: op, Err: err}
}

func WrapEncoding(err error, op string) error {
	return &EncodingError{Op: op, Err: err}
}

func NewInvalidToken(reason string) error {
	return &InvalidTokenError{Reason: reason}
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}

func IsEncoding(err error) bool {
	return errors.Is(err, ErrEncoding)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

// DuplicateField returns the offending field of a DuplicateAccountError.
func DuplicateField(err error) (string, bool) {
	var dup *DuplicateAccountError
	if errors.As(err, &dup) {
		return dup.Field, true
	}
	return "", false
}

// TokenReason returns the reason of an InvalidTokenError.
func TokenReason(err error) (string, bool) {
	var inv *InvalidTokenError
	if errors.As(err, &inv) {
		return inv.Reason, true
	}
	return "", false
}
