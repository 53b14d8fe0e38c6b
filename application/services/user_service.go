// Package services holds the application layer: each service resolves
// the caller's team role through the Authorizer, validates and sanitizes
// input, drives the entity stores, and appends domain events to the
// outbox after successful writes.
package services

import (
	"context"

	"go.uber.org/zap"

	"teamcal-backend/application/ports"
	"teamcal-backend/domain/config"
	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/validators"
	"teamcal-backend/domain/core/valueobjects"
	pkgerrors "teamcal-backend/pkg/errors"
)

// RegisterUserInput is the payload for registering a user
type RegisterUserInput struct {
	Email string
	Name  string
}

// UpdateUserInput is the partial payload for updating a user profile
type UpdateUserInput struct {
	Email *string
	Name  *string
}

// UserService manages user accounts
type UserService struct {
	users     ports.UserStore
	outbox    ports.DomainEventStore
	validator *validators.UserValidator
	sanitizer *validators.Sanitizer
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	users ports.UserStore,
	outbox ports.DomainEventStore,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *UserService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &UserService{
		users:     users,
		outbox:    outbox,
		validator: validators.NewUserValidator(),
		sanitizer: validators.NewSanitizer(),
		cfg:       cfg,
		logger:    logger,
	}
}

// Register creates a new user account. Email uniqueness is checked
// before the write and enforced best-effort; the identifier condition
// still guarantees at most one row per user ID.
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (*entities.User, error) {
	if err := s.validator.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateName(input.Name); err != nil {
		return nil, err
	}

	email, err := valueobjects.NewEmail(s.sanitizer.Email(input.Email))
	if err != nil {
		return nil, pkgerrors.NewDomainError(
			pkgerrors.DomainValidationError,
			"INVALID_EMAIL",
			"Email address is invalid",
		).WithCause(err)
	}

	user, err := entities.NewUserWithConfig(email, s.sanitizer.Text(input.Name), s.cfg)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.commitEvents(ctx, user)

	s.logger.Info("User registered",
		zap.String("user_id", user.ID().String()),
	)
	return user, nil
}

// GetByID returns the user with the given identifier
func (s *UserService) GetByID(ctx context.Context, userID string) (*entities.User, error) {
	id, err := valueobjects.NewUserIDFromString(userID)
	if err != nil {
		return nil, malformedID("userId", err)
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, userNotFound(userID)
	}
	return user, nil
}

// GetByEmail returns the user registered under the given email
func (s *UserService) GetByEmail(ctx context.Context, rawEmail string) (*entities.User, error) {
	email, err := valueobjects.NewEmail(rawEmail)
	if err != nil {
		return nil, pkgerrors.NewDomainError(
			pkgerrors.DomainValidationError,
			"INVALID_EMAIL",
			"Email address is invalid",
		).WithCause(err)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.NewDomainError(
			pkgerrors.DomainNotFoundError,
			"USER_NOT_FOUND",
			"The requested user does not exist",
		).WithDetail("email", email.String())
	}
	return user, nil
}

// Update applies a partial profile update. Only the account holder may
// change their own profile; handlers enforce that the path user is the
// authenticated principal.
func (s *UserService) Update(ctx context.Context, userID string, input UpdateUserInput) (*entities.User, error) {
	if input.Email == nil && input.Name == nil {
		validationErrors := pkgerrors.NewValidationErrors()
		validationErrors.Add("payload", "update requires at least one field")
		return nil, validationErrors
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := s.validator.ValidateName(*input.Name); err != nil {
			return nil, err
		}
		if err := user.RenameWithConfig(s.sanitizer.Text(*input.Name), s.cfg); err != nil {
			return nil, err
		}
	}

	if input.Email != nil {
		if err := s.validator.ValidateEmail(*input.Email); err != nil {
			return nil, err
		}
		email, err := valueobjects.NewEmail(s.sanitizer.Email(*input.Email))
		if err != nil {
			return nil, pkgerrors.NewDomainError(
				pkgerrors.DomainValidationError,
				"INVALID_EMAIL",
				"Email address is invalid",
			).WithCause(err)
		}
		// A taken address surfaces as EMAIL_TAKEN before any write
		existing, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil && !existing.ID().Equals(user.ID()) {
			return nil, pkgerrors.NewDomainError(
				pkgerrors.DomainConflictError,
				"EMAIL_TAKEN",
				"A user with this email already exists",
			).WithDetail("email", email.String())
		}
		if err := user.ChangeEmail(email); err != nil {
			return nil, err
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.commitEvents(ctx, user)

	s.logger.Info("User updated",
		zap.String("user_id", user.ID().String()),
	)
	return user, nil
}

// Delete removes the user account. Memberships the user holds stay in
// place; team owners remove them through the membership operations.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	id, err := valueobjects.NewUserIDFromString(userID)
	if err != nil {
		return malformedID("userId", err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("User deleted",
		zap.String("user_id", userID),
	)
	return nil
}

// commitEvents appends the entity's uncommitted events to the outbox.
// The write already succeeded; an outbox failure is logged, not returned.
func (s *UserService) commitEvents(ctx context.Context, user *entities.User) {
	uncommitted := user.GetUncommittedEvents()
	if len(uncommitted) == 0 {
		return
	}
	if err := s.outbox.SaveEvents(ctx, uncommitted); err != nil {
		s.logger.Warn("Failed to store domain events",
			zap.Error(err),
			zap.String("user_id", user.ID().String()),
		)
		return
	}
	user.MarkEventsAsCommitted()
}

func malformedID(field string, cause error) error {
	return pkgerrors.NewDomainError(
		pkgerrors.DomainValidationError,
		"MALFORMED_IDENTIFIER",
		"Identifier is not a valid UUID",
	).WithDetail("field", field).WithCause(cause)
}

func userNotFound(userID string) error {
	return pkgerrors.NewDomainError(
		pkgerrors.DomainNotFoundError,
		"USER_NOT_FOUND",
		"The requested user does not exist",
	).WithDetail("userId", userID)
}
