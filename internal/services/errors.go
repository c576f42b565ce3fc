package services

import "fmt"

// ErrorKind identifies why a user flow was rejected.
type ErrorKind string

const (
	KindEmailAlreadyTaken   ErrorKind = "EMAIL_ALREADY_TAKEN"
	KindInvalidPassword     ErrorKind = "INVALID_PASSWORD"
	KindUnprocessableEntity ErrorKind = "UNPROCESSABLE_ENTITY"
	KindNameMismatch        ErrorKind = "NAME_MISMATCH"
	KindEmailMismatch       ErrorKind = "EMAIL_MISMATCH"
	KindInvalidCredentials  ErrorKind = "INVALID_CREDENTIALS"
	KindPatchFailed         ErrorKind = "PATCH_FAILED"
	KindStorageUnavailable  ErrorKind = "STORAGE_UNAVAILABLE"
	KindTimeout             ErrorKind = "TIMEOUT"
	KindCanceled            ErrorKind = "CANCELED"
)

// Retryable reports whether a caller may safely repeat the request.
// Business rejections are never retryable.
func (k ErrorKind) Retryable() bool {
	return k == KindStorageUnavailable || k == KindTimeout
}

// GuardError is the failure outcome of a user flow.
type GuardError struct {
	Kind    ErrorKind
	Message string
	Err     error // underlying cause, if any
}

func (e *GuardError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *GuardError) Unwrap() error {
	return e.Err
}

// Is matches any GuardError of the same kind, so callers can use errors.Is with the sentinels below.
func (e *GuardError) Is(target error) bool {
	t, ok := target.(*GuardError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrEmailAlreadyTaken   = &GuardError{Kind: KindEmailAlreadyTaken, Message: "email already taken"}
	ErrInvalidPassword     = &GuardError{Kind: KindInvalidPassword, Message: "password confirmation does not match"}
	ErrUnprocessableEntity = &GuardError{Kind: KindUnprocessableEntity, Message: "unprocessable entity"}
	ErrNameMismatch        = &GuardError{Kind: KindNameMismatch, Message: "wrong name"}
	ErrEmailMismatch       = &GuardError{Kind: KindEmailMismatch, Message: "wrong email"}
	ErrInvalidCredentials  = &GuardError{Kind: KindInvalidCredentials, Message: "wrong email or password"}
	ErrPatchFailed         = &GuardError{Kind: KindPatchFailed, Message: "failed to patch user"}
	ErrStorageUnavailable  = &GuardError{Kind: KindStorageUnavailable, Message: "storage unavailable"}
	ErrTimeout             = &GuardError{Kind: KindTimeout, Message: "storage call timed out"}
	ErrCanceled            = &GuardError{Kind: KindCanceled, Message: "request canceled"}
)

func newGuardError(kind ErrorKind, message string, cause error) *GuardError {
	return &GuardError{Kind: kind, Message: message, Err: cause}
}
