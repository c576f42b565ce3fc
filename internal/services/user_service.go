package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"usermgmt/internal/models"
	"usermgmt/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// GuardOptions tune the checks UserService runs before it mutates an account.
// The zero value keeps the legacy observable behavior except for PatchFailed.
type GuardOptions struct {
	// CallTimeout bounds every store and verifier call. Zero disables the bound.
	CallTimeout time.Duration
	// StrictPasswordPairs rejects a patch when either confirmation pair mismatches,
	// instead of only when both do.
	StrictPasswordPairs bool
	// AllowSelfEmail lets an update keep the account's own email.
	AllowSelfEmail bool
	// LegacyPatchFailureKind reports a failed credential write as EMAIL_ALREADY_TAKEN.
	LegacyPatchFailureKind bool
}

// CreateUserInput is the shape-validated input of the create flow.
type CreateUserInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// UpdateUserInput is the shape-validated input of the update flow.
type UpdateUserInput struct {
	ID    string
	Name  string
	Email string
}

// PatchUserInput is the shape-validated input of the self-service credential change.
type PatchUserInput struct {
	ID                 string
	Name               string
	Email              string
	OldPassword        string
	OldPasswordConfirm string
	NewPassword        string
	NewPasswordConfirm string
}

type CreateResult struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UpdateResult struct {
	ID string `json:"id"`
}

type PatchResult struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type DeleteResult struct {
	ID string `json:"id"`
}

// UserService runs the user flows. Every precondition is checked in a fixed
// order and the first failure aborts the flow before anything is written.
type UserService struct {
	repo     repositories.UserRepository
	verifier CredentialVerifier
	hasher   PasswordHasher
	events   EventPublisher
	opts     GuardOptions
}

// NewUserService creates a new UserService. events may be nil.
func NewUserService(repo repositories.UserRepository, verifier CredentialVerifier, hasher PasswordHasher, events EventPublisher, opts GuardOptions) *UserService {
	return &UserService{
		repo:     repo,
		verifier: verifier,
		hasher:   hasher,
		events:   events,
		opts:     opts,
	}
}

// ListUsers retrieves all users.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	cctx, cancel := s.bound(ctx)
	defer cancel()

	users, err := s.repo.GetAll(cctx)
	if err != nil {
		return nil, callFailure("list users", err)
	}
	return users, nil
}

// GetUser retrieves a single user by its ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	cctx, cancel := s.bound(ctx)
	defer cancel()

	user, err := s.repo.GetByID(cctx, id)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, newGuardError(KindUnprocessableEntity, "unknown user", err)
	}
	if err != nil {
		return nil, callFailure("get user", err)
	}
	return user, nil
}

// CreateUser registers a new account.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (CreateResult, error) {
	if err := s.checkEmailFree(ctx, in.Email, ""); err != nil {
		return CreateResult{}, err
	}
	if in.Password != in.PasswordConfirm {
		return CreateResult{}, newGuardError(KindInvalidPassword, "password confirmation does not match", nil)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return CreateResult{}, hashFailure(KindUnprocessableEntity, "failed to create user", err)
	}
	user := &models.User{Name: in.Name, Email: in.Email, Password: hash}

	cctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.repo.Create(cctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return CreateResult{}, newGuardError(KindEmailAlreadyTaken, "email already taken", err)
		}
		return CreateResult{}, writeFailure(KindUnprocessableEntity, "failed to create user", err)
	}

	s.publish(ctx, EventUserCreated, user.ID, user.Name, user.Email)
	return CreateResult{Name: in.Name, Email: in.Email}, nil
}

// UpdateUser changes the name and email of an account.
func (s *UserService) UpdateUser(ctx context.Context, in UpdateUserInput) (UpdateResult, error) {
	if err := s.checkEmailFree(ctx, in.Email, in.ID); err != nil {
		return UpdateResult{}, err
	}

	cctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.repo.Update(cctx, in.ID, in.Name, in.Email); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return UpdateResult{}, newGuardError(KindEmailAlreadyTaken, "email already taken", err)
		}
		return UpdateResult{}, writeFailure(KindUnprocessableEntity, "failed to update user", err)
	}

	s.publish(ctx, EventUserUpdated, in.ID, in.Name, in.Email)
	return UpdateResult{ID: in.ID}, nil
}

// PatchUser replaces the password of an account after re-checking the
// stored profile and the old password.
func (s *UserService) PatchUser(ctx context.Context, in PatchUserInput) (PatchResult, error) {
	if s.confirmationsMismatch(in) {
		return PatchResult{}, newGuardError(KindInvalidPassword, "password confirmation does not match", nil)
	}

	user, err := s.findForPatch(ctx, in.ID)
	if err != nil {
		return PatchResult{}, err
	}

	// Verification runs before the profile comparison; its outcome is only
	// reported after name and email have been checked.
	vctx, vcancel := s.bound(ctx)
	verified, err := s.verifier.Verify(vctx, in.Email, in.OldPassword)
	vcancel()
	if err != nil {
		return PatchResult{}, callFailure("verify credentials", err)
	}

	if user.Name != in.Name {
		return PatchResult{}, newGuardError(KindNameMismatch, "wrong name", nil)
	}
	if user.Email != in.Email {
		return PatchResult{}, newGuardError(KindEmailMismatch, "wrong email", nil)
	}
	if !verified {
		return PatchResult{}, newGuardError(KindInvalidCredentials, "wrong email or password", nil)
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return PatchResult{}, hashFailure(s.patchFailureKind(), "failed to patch user", err)
	}

	cctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.repo.UpdatePassword(cctx, in.ID, hash); err != nil {
		return PatchResult{}, writeFailure(s.patchFailureKind(), "failed to patch user", err)
	}

	s.publish(ctx, EventUserPasswordChanged, in.ID, user.Name, user.Email)
	return PatchResult{ID: in.ID, Email: in.Email}, nil
}

// DeleteUser removes an account.
func (s *UserService) DeleteUser(ctx context.Context, id string) (DeleteResult, error) {
	cctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.repo.Delete(cctx, id); err != nil {
		return DeleteResult{}, writeFailure(KindUnprocessableEntity, "failed to delete user", err)
	}

	s.publish(ctx, EventUserDeleted, id, "", "")
	return DeleteResult{ID: id}, nil
}

// checkEmailFree fails with EMAIL_ALREADY_TAKEN when any account owns email.
// selfID is only honored with AllowSelfEmail.
func (s *UserService) checkEmailFree(ctx context.Context, email, selfID string) error {
	cctx, cancel := s.bound(ctx)
	defer cancel()

	existing, err := s.repo.GetByEmail(cctx, email)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return callFailure("email lookup", err)
	}
	if existing == nil {
		return nil
	}
	if s.opts.AllowSelfEmail && selfID != "" && existing.ID == selfID {
		return nil
	}
	return newGuardError(KindEmailAlreadyTaken, fmt.Sprintf("email %s is already taken", email), nil)
}

func (s *UserService) findForPatch(ctx context.Context, id string) (*models.User, error) {
	cctx, cancel := s.bound(ctx)
	defer cancel()

	user, err := s.repo.GetByID(cctx, id)
	if errors.Is(err, repositories.ErrUserNotFound) || (err == nil && user == nil) {
		return nil, newGuardError(KindUnprocessableEntity, "unknown user", err)
	}
	if err != nil {
		return nil, callFailure("get user", err)
	}
	return user, nil
}

func (s *UserService) confirmationsMismatch(in PatchUserInput) bool {
	oldBad := in.OldPassword != in.OldPasswordConfirm
	newBad := in.NewPassword != in.NewPasswordConfirm
	if s.opts.StrictPasswordPairs {
		return oldBad || newBad
	}
	return oldBad && newBad
}

func (s *UserService) patchFailureKind() ErrorKind {
	if s.opts.LegacyPatchFailureKind {
		return KindEmailAlreadyTaken
	}
	return KindPatchFailed
}

func (s *UserService) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.CallTimeout)
}

// callFailure classifies an error from a call that has no business outcome of its own.
func callFailure(op string, err error) *GuardError {
	if errors.Is(err, context.Canceled) {
		return newGuardError(KindCanceled, op+" canceled", err)
	}
	if isTimeout(err) {
		return newGuardError(KindTimeout, op+" timed out", err)
	}
	return newGuardError(KindStorageUnavailable, op+" failed", err)
}

// writeFailure keeps kind for rejected writes and separates out transient faults.
func writeFailure(kind ErrorKind, message string, err error) *GuardError {
	switch {
	case errors.Is(err, context.Canceled):
		return newGuardError(KindCanceled, message+": canceled", err)
	case isTimeout(err):
		return newGuardError(KindTimeout, message+": timed out", err)
	case errors.Is(err, repositories.ErrStorageUnavailable):
		return newGuardError(KindStorageUnavailable, message, err)
	}
	return newGuardError(kind, message, err)
}

// hashFailure reports a password bcrypt refuses as INVALID_PASSWORD.
func hashFailure(kind ErrorKind, message string, err error) *GuardError {
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return newGuardError(KindInvalidPassword, fmt.Sprintf("password must not exceed %d bytes", MaxPasswordBytes), err)
	}
	return newGuardError(kind, message, err)
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
