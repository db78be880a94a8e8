package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/zekret/vault/internal/auth/domain"
	authService "github.com/zekret/vault/internal/auth/service"
	"github.com/zekret/vault/internal/database"
	apperrors "github.com/zekret/vault/internal/errors"
	userDomain "github.com/zekret/vault/internal/user/domain"
)

// TokenUseCaseConfig holds the dependencies of the token use case.
type TokenUseCaseConfig struct {
	TxManager          database.TxManager
	Policy             database.OperationPolicy
	UserRepo           UserRepository
	TokenRepo          TokenRepository
	PasswordService    authService.PasswordService
	TokenService       authService.TokenService
	AccessTokenService authService.AccessTokenService
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

type tokenUseCase struct {
	txManager       database.TxManager
	policy          database.OperationPolicy
	userRepo        UserRepository
	tokenRepo       TokenRepository
	passwords       authService.PasswordService
	tokens          authService.TokenService
	accessTokens    authService.AccessTokenService
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	now             func() time.Time

	// decoyHash is compared against on unknown logins so both branches pay for one
	// Argon2id verification.
	decoyHash func() string
}

// NewTokenUseCase creates a new TokenUseCase.
func NewTokenUseCase(cfg TokenUseCaseConfig) TokenUseCase {
	return &tokenUseCase{
		txManager:       cfg.TxManager,
		policy:          cfg.Policy,
		userRepo:        cfg.UserRepo,
		tokenRepo:       cfg.TokenRepo,
		passwords:       cfg.PasswordService,
		tokens:          cfg.TokenService,
		accessTokens:    cfg.AccessTokenService,
		accessTokenTTL:  cfg.AccessTokenTTL,
		refreshTokenTTL: cfg.RefreshTokenTTL,
		now:             func() time.Time { return time.Now().UTC() },
		decoyHash: sync.OnceValue(func() string {
			hash, err := cfg.PasswordService.Hash(uuid.NewString())
			if err != nil {
				return ""
			}
			return hash
		}),
	}
}

// Login authenticates a user by e-mail or username.
//
// The password is checked before the enabled flag so a disabled account is only
// revealed to someone who knows its password.
func (t *tokenUseCase) Login(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.TokenPair, error) {
	if input == nil || input.Login == "" || input.Password == "" {
		return nil, authDomain.ErrInvalidCredentials
	}

	var user *userDomain.User
	err := t.policy.Run(ctx, func(ctx context.Context) error {
		var err error
		user, err = t.userRepo.GetByLogin(ctx, input.Login)
		return err
	})
	if err != nil {
		if errors.Is(err, userDomain.ErrUserNotFound) {
			_ = t.passwords.Compare(input.Password, t.decoyHash())
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !t.passwords.Compare(input.Password, user.PasswordHash) {
		return nil, authDomain.ErrInvalidCredentials
	}

	if !user.Enabled {
		return nil, authDomain.ErrUserDisabled
	}

	var pair *authDomain.TokenPair
	err = t.policy.Run(ctx, func(ctx context.Context) error {
		return t.txManager.WithTx(ctx, func(ctx context.Context) error {
			now := t.now()
			if _, err := t.tokenRepo.RevokeByUserID(ctx, user.ID, now); err != nil {
				return err
			}

			var err error
			pair, err = t.issuePair(ctx, user, now)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// Refresh rotates a token pair.
func (t *tokenUseCase) Refresh(ctx context.Context, refreshToken string) (*authDomain.TokenPair, error) {
	if refreshToken == "" {
		return nil, authDomain.ErrInvalidToken
	}

	tokenHash := t.tokens.HashToken(refreshToken)

	var pair *authDomain.TokenPair
	err := t.policy.Run(ctx, func(ctx context.Context) error {
		return t.txManager.WithTx(ctx, func(ctx context.Context) error {
			now := t.now()

			record, err := t.tokenRepo.GetByTokenHash(ctx, authDomain.TokenKindRefresh, tokenHash)
			if err != nil {
				return err
			}
			if !record.IsActive(now) {
				return authDomain.ErrInvalidToken
			}

			user, err := t.userRepo.GetByID(ctx, record.UserID)
			if err != nil {
				return err
			}
			if !user.Enabled {
				return authDomain.ErrUserDisabled
			}

			// Revoke consumes the token; a concurrent refresh with the same value
			// finds it already revoked.
			if err := t.tokenRepo.Revoke(ctx, record.ID, now); err != nil {
				return err
			}
			if _, err := t.tokenRepo.RevokeByUserID(ctx, user.ID, now); err != nil {
				return err
			}

			pair, err = t.issuePair(ctx, user, now)
			return err
		})
	})
	if err != nil {
		if errors.Is(err, authDomain.ErrTokenNotFound) || errors.Is(err, userDomain.ErrUserNotFound) {
			return nil, authDomain.ErrInvalidToken
		}
		return nil, err
	}

	return pair, nil
}

// Logout revokes all tokens of the user.
func (t *tokenUseCase) Logout(ctx context.Context, userID uuid.UUID) error {
	return t.policy.Run(ctx, func(ctx context.Context) error {
		return t.txManager.WithTx(ctx, func(ctx context.Context) error {
			_, err := t.tokenRepo.RevokeByUserID(ctx, userID, t.now())
			return err
		})
	})
}

// Authenticate verifies the JWT, then checks the server-side record and the user.
// Every failure short of a store error is reported as ErrInvalidToken or
// ErrUserDisabled so callers cannot probe which check failed.
func (t *tokenUseCase) Authenticate(ctx context.Context, accessToken string) (*authDomain.Identity, error) {
	claims, err := t.accessTokens.Parse(accessToken)
	if err != nil {
		return nil, authDomain.ErrInvalidToken
	}

	tokenID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, authDomain.ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, authDomain.ErrInvalidToken
	}

	var record *authDomain.Token
	var user *userDomain.User
	err = t.policy.Run(ctx, func(ctx context.Context) error {
		var err error
		record, err = t.tokenRepo.GetByID(ctx, tokenID)
		if err != nil {
			return err
		}
		user, err = t.userRepo.GetByID(ctx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, authDomain.ErrTokenNotFound) || errors.Is(err, userDomain.ErrUserNotFound) {
			return nil, authDomain.ErrInvalidToken
		}
		return nil, err
	}

	if record.Kind != authDomain.TokenKindAccess ||
		record.UserID != userID ||
		!record.IsActive(t.now()) ||
		subtle.ConstantTimeCompare([]byte(record.TokenHash), []byte(t.tokens.HashToken(accessToken))) != 1 {
		return nil, authDomain.ErrInvalidToken
	}

	if !user.Enabled {
		return nil, authDomain.ErrUserDisabled
	}

	return &authDomain.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		TokenID:  tokenID,
	}, nil
}

// CleanupExpired deletes tokens that expired more than the given number of days ago.
func (t *tokenUseCase) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must be non-negative")
	}

	cutoff := t.now().AddDate(0, 0, -days)

	var count int64
	err := t.policy.Run(ctx, func(ctx context.Context) error {
		var err error
		if dryRun {
			count, err = t.tokenRepo.CountExpired(ctx, cutoff)
		} else {
			count, err = t.tokenRepo.DeleteExpired(ctx, cutoff)
		}
		return err
	})
	return count, err
}

// issuePair signs a new access token and generates a refresh token, persisting both
// records. Must run inside a transaction.
func (t *tokenUseCase) issuePair(
	ctx context.Context,
	user *userDomain.User,
	now time.Time,
) (*authDomain.TokenPair, error) {
	jti := uuid.Must(uuid.NewV7())
	accessExpiresAt := now.Add(t.accessTokenTTL)
	refreshExpiresAt := now.Add(t.refreshTokenTTL)

	accessToken, err := t.accessTokens.Sign(authService.AccessTokenSubject{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, jti, now, accessExpiresAt)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshHash, err := t.tokens.GenerateToken()
	if err != nil {
		return nil, err
	}

	records := []*authDomain.Token{
		{
			ID:        jti,
			UserID:    user.ID,
			Kind:      authDomain.TokenKindAccess,
			TokenHash: t.tokens.HashToken(accessToken),
			ExpiresAt: accessExpiresAt,
			CreatedAt: now,
		},
		{
			ID:        uuid.Must(uuid.NewV7()),
			UserID:    user.ID,
			Kind:      authDomain.TokenKindRefresh,
			TokenHash: refreshHash,
			ExpiresAt: refreshExpiresAt,
			CreatedAt: now,
		},
	}
	for _, record := range records {
		if err := t.tokenRepo.Create(ctx, record); err != nil {
			return nil, err
		}
	}

	return &authDomain.TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}
