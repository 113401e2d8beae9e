package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"apartmani/internal/common"
	"apartmani/internal/metrics"
	"apartmani/internal/models"
	"apartmani/internal/repositories"

	"github.com/google/uuid"
)

const (
	// DefaultPasswordResetTTL is how long a password reset token stays valid.
	DefaultPasswordResetTTL = 10 * time.Minute

	minPasswordLength = 3

	// PasswordResetRequestedMessage is returned whether or not the address exists.
	PasswordResetRequestedMessage = "Password reset link sent!"

	msgInvalidCredentials = "Incorrect email or password!"
	msgAccountGone        = "That user no longer exists!"
)

// AccountNotifier delivers account emails. Calls return immediately and
// delivery failures never reach the caller.
type AccountNotifier interface {
	SendAccountActivation(email, token string)
	SendPasswordReset(email, token string)
}

// AccountService runs signup, activation, login and password flows.
type AccountService interface {
	Signup(ctx context.Context, req *SignupRequest) (*models.Profile, error)
	Activate(ctx context.Context, token string) error
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password, passwordConfirm string) error
	ChangePassword(ctx context.Context, accountID uuid.UUID, password, passwordConfirm string) error
	UpdateProfile(ctx context.Context, accountID uuid.UUID, username string) (*models.Profile, error)
	GetProfile(ctx context.Context, accountID uuid.UUID) (*models.Profile, error)
}

// SignupRequest represents the signup request payload
type SignupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type accountService struct {
	accountRepo repositories.AccountRepository
	credentials CredentialService
	tokens      TokenService
	notifier    AccountNotifier
	clock       Clock
	resetTTL    time.Duration
	logger      *slog.Logger
}

// AccountServiceConfig carries the collaborators of the account service.
type AccountServiceConfig struct {
	Accounts    repositories.AccountRepository
	Credentials CredentialService
	Tokens      TokenService
	Notifier    AccountNotifier
	Clock       Clock
	ResetTTL    time.Duration
	Logger      *slog.Logger
}

func NewAccountService(cfg AccountServiceConfig) AccountService {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = DefaultPasswordResetTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &accountService{
		accountRepo: cfg.Accounts,
		credentials: cfg.Credentials,
		tokens:      cfg.Tokens,
		notifier:    cfg.Notifier,
		clock:       cfg.Clock,
		resetTTL:    cfg.ResetTTL,
		logger:      cfg.Logger,
	}
}

func validateNewPassword(password, passwordConfirm string) error {
	if password == "" || passwordConfirm == "" {
		return common.ValidationError("Please provide valid password and password confirm!")
	}
	if password != passwordConfirm {
		return common.ValidationError("Password and password confirm do not match")
	}
	if len(password) < minPasswordLength {
		return common.ValidationError("Password must be at least 3 characters long")
	}
	return nil
}

func (s *accountService) Signup(ctx context.Context, req *SignupRequest) (profile *models.Profile, err error) {
	defer func() { metrics.ObserveAccountOperation("signup", err) }()

	email := common.NormalizeEmail(req.Email)
	if req.Username == "" || email == "" || req.Password == "" || req.PasswordConfirm == "" {
		return nil, common.ValidationError("Please fill all required fields")
	}
	if err := validateNewPassword(req.Password, req.PasswordConfirm); err != nil {
		return nil, err
	}

	_, err = s.accountRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ConflictError("User already exists")
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, common.InternalError("find account by email", err)
	}

	hash, err := s.credentials.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	activationToken, err := s.tokens.NewOneShotToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	account := &models.Account{
		ID:              uuid.New(),
		Email:           email,
		Username:        req.Username,
		PasswordHash:    hash,
		ActivationToken: &activationToken,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, common.ConflictError("User already exists")
		}
		return nil, common.InternalError("create account", err)
	}

	// Delivery failure does not roll back the account.
	s.notifier.SendAccountActivation(account.Email, activationToken)
	s.logger.InfoContext(ctx, "account created", "account_id", account.ID)

	return account.Profile(), nil
}

func (s *accountService) Activate(ctx context.Context, token string) (err error) {
	defer func() { metrics.ObserveAccountOperation("activate", err) }()

	if token == "" {
		return common.NotFoundError("Activation token does not exist!")
	}

	account, err := s.accountRepo.Activate(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return common.NotFoundError("Activation token does not exist!")
		}
		return common.InternalError("activate account", err)
	}

	s.logger.InfoContext(ctx, "account activated", "account_id", account.ID)
	return nil
}

func (s *accountService) Login(ctx context.Context, email, password string) (result *models.LoginResult, err error) {
	defer func() { metrics.ObserveAccountOperation("login", err) }()

	email = common.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.ValidationError("Please provide email and password!")
	}

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.UnauthorizedError(msgInvalidCredentials)
		}
		return nil, common.InternalError("find account by email", err)
	}

	if !s.credentials.Verify(password, account.PasswordHash) {
		return nil, common.UnauthorizedError(msgInvalidCredentials)
	}

	if !account.IsActive() {
		return nil, common.ForbiddenError("Please activate your account!")
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, err
	}

	return &models.LoginResult{TokenResponse: *token, User: account.Profile()}, nil
}

// RequestPasswordReset answers the same way whether or not the email is
// registered. Only a registered account gets a token and an email.
func (s *accountService) RequestPasswordReset(ctx context.Context, email string) (err error) {
	defer func() { metrics.ObserveAccountOperation("request_password_reset", err) }()

	email = common.NormalizeEmail(email)
	if email == "" {
		return common.ValidationError("Please provide valid email!")
	}

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return common.InternalError("find account by email", err)
	}

	resetToken, err := s.tokens.NewOneShotToken()
	if err != nil {
		return err
	}

	expiresAt := s.clock.Now().Add(s.resetTTL)
	if err := s.accountRepo.SetPasswordReset(ctx, account.ID, resetToken, expiresAt); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return common.InternalError("store password reset token", err)
	}

	s.notifier.SendPasswordReset(account.Email, resetToken)
	return nil
}

func (s *accountService) ResetPassword(ctx context.Context, token, password, passwordConfirm string) (err error) {
	defer func() { metrics.ObserveAccountOperation("reset_password", err) }()

	if token == "" {
		return common.UnauthorizedError("Request is not valid")
	}

	account, err := s.accountRepo.GetByPasswordResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return common.UnauthorizedError("Request is not valid")
		}
		return common.InternalError("find account by reset token", err)
	}

	if password == "" || passwordConfirm == "" || account.PasswordResetToken == nil || account.PasswordResetExpiresAt == nil {
		return common.UnauthorizedError("Request is not valid")
	}

	now := s.clock.Now()
	if account.PasswordResetExpired(now) {
		return common.UnauthorizedError("Reset token expired")
	}

	if err := validateNewPassword(password, passwordConfirm); err != nil {
		return err
	}

	hash, err := s.credentials.Hash(password)
	if err != nil {
		return err
	}

	if err := s.accountRepo.ResetPassword(ctx, account.ID, token, hash, now); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Consumed by a concurrent reset.
			return common.UnauthorizedError("Request is not valid")
		}
		return common.InternalError("reset password", err)
	}

	s.logger.InfoContext(ctx, "password reset", "account_id", account.ID)
	return nil
}

func (s *accountService) ChangePassword(ctx context.Context, accountID uuid.UUID, password, passwordConfirm string) (err error) {
	defer func() { metrics.ObserveAccountOperation("change_password", err) }()

	if err := validateNewPassword(password, passwordConfirm); err != nil {
		return err
	}

	hash, err := s.credentials.Hash(password)
	if err != nil {
		return err
	}

	if err := s.accountRepo.UpdatePassword(ctx, accountID, hash, s.clock.Now()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return common.UnauthorizedError(msgAccountGone)
		}
		return common.InternalError("update password", err)
	}
	return nil
}

func (s *accountService) UpdateProfile(ctx context.Context, accountID uuid.UUID, username string) (profile *models.Profile, err error) {
	defer func() { metrics.ObserveAccountOperation("update_profile", err) }()

	if err := common.ValidateRequiredString(username, "username"); err != nil {
		return nil, common.ValidationError("Please provide username")
	}

	if err := s.accountRepo.UpdateUsername(ctx, accountID, username); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.UnauthorizedError(msgAccountGone)
		}
		return nil, common.InternalError("update username", err)
	}

	return s.GetProfile(ctx, accountID)
}

func (s *accountService) GetProfile(ctx context.Context, accountID uuid.UUID) (*models.Profile, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.UnauthorizedError(msgAccountGone)
		}
		return nil, common.InternalError("find account", err)
	}
	return account.Profile(), nil
}
