package impl

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"

	"qimat/config"
	deliverycontext "qimat/internal/delivery/context"
	domainerrors "qimat/internal/domain/errors"
	"qimat/internal/domain/service"
	"qimat/internal/usecase"

	"go.uber.org/fx"
)

// adminAuthService implements the AdminAuthUsecase interface against the configured operator account.
type adminAuthService struct {
	username     string
	passwordHash string
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// AdminAuthServiceParams holds dependencies for AdminAuthService, injected by Fx.
type AdminAuthServiceParams struct {
	fx.In

	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAdminAuthService is the constructor for adminAuthService.
func NewAdminAuthService(params AdminAuthServiceParams) usecase.AdminAuthUsecase {
	srv := &adminAuthService{
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
	if params.Config != nil && params.Config.Admin != nil {
		srv.username = strings.TrimSpace(params.Config.Admin.Username)
		srv.passwordHash = strings.TrimSpace(params.Config.Admin.PasswordHash)
	}

	return srv
}

// Login verifies the operator credentials and issues an admin access token.
// An unconfigured account rejects every attempt.
func (srv *adminAuthService) Login(ctx context.Context, username, password string) (*usecase.LoginOutput, error) {
	logger := deliverycontext.LoggerOr(ctx, srv.logger)

	if srv.username == "" || srv.passwordHash == "" {
		logger.Warn("Admin login attempted but no admin account is configured")

		return nil, domainerrors.ErrInvalidCredentials
	}

	userMatch := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(srv.username)) == 1
	passwordMatch := srv.hasher.Check(password, srv.passwordHash)
	if !userMatch || !passwordMatch {
		logger.Warn("Admin login failed", slog.String("username", username))

		return nil, domainerrors.ErrInvalidCredentials
	}

	token, expiresAt, err := srv.tokenService.GenerateAccessToken(srv.username, []string{service.RoleAdmin})
	if err != nil {
		logger.Error("Failed to issue admin token", slog.Any("error", err))

		return nil, domainerrors.ErrTokenIssueFailed.WrapMessage(err.Error())
	}

	logger.Info("Admin logged in", slog.String("username", srv.username))

	return &usecase.LoginOutput{AccessToken: token, ExpiresAt: expiresAt}, nil
}
