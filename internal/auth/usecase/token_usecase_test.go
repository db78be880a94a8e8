package usecase_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/zekret/vault/internal/auth/domain"
	authService "github.com/zekret/vault/internal/auth/service"
	"github.com/zekret/vault/internal/auth/usecase"
	"github.com/zekret/vault/internal/auth/usecase/mocks"
	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
	"github.com/zekret/vault/internal/database"
	databaseMocks "github.com/zekret/vault/internal/database/mocks"
	apperrors "github.com/zekret/vault/internal/errors"
	userDomain "github.com/zekret/vault/internal/user/domain"
)

type tokenFixture struct {
	tx        *databaseMocks.MockTxManager
	users     *mocks.MockUserRepository
	tokens    *mocks.MockTokenRepository
	passwords *mocks.MockPasswordService
	hasher    authService.TokenService
	access    authService.AccessTokenService
	uc        usecase.TokenUseCase
	user      *userDomain.User
}

func newTokenFixture(t *testing.T) *tokenFixture {
	t.Helper()

	chain, err := cryptoDomain.NewMasterKeyChain("mk-1", &cryptoDomain.MasterKey{
		ID:  "mk-1",
		Key: bytes.Repeat([]byte{7}, cryptoDomain.KeySize),
	})
	require.NoError(t, err)
	t.Cleanup(chain.Close)

	f := &tokenFixture{
		tx:        &databaseMocks.MockTxManager{},
		users:     &mocks.MockUserRepository{},
		tokens:    &mocks.MockTokenRepository{},
		passwords: &mocks.MockPasswordService{},
		hasher:    authService.NewTokenService(),
		access:    authService.NewAccessTokenService("https://zekret.io/issuer", chain),
		user: &userDomain.User{
			ID:           uuid.Must(uuid.NewV7()),
			Email:        "ana@example.com",
			Username:     "ana",
			PasswordHash: "stored-hash",
			Enabled:      true,
		},
	}
	f.tx.On("WithTx", mock.Anything).Return(nil).Maybe()

	f.uc = usecase.NewTokenUseCase(usecase.TokenUseCaseConfig{
		TxManager:          f.tx,
		Policy:             database.NewOperationPolicy(time.Second, time.Millisecond),
		UserRepo:           f.users,
		TokenRepo:          f.tokens,
		PasswordService:    f.passwords,
		TokenService:       f.hasher,
		AccessTokenService: f.access,
		AccessTokenTTL:     time.Hour,
		RefreshTokenTTL:    24 * time.Hour,
	})
	return f
}

// login performs a successful login and returns the pair and the stored records.
func (f *tokenFixture) login(t *testing.T) (*authDomain.TokenPair, []*authDomain.Token) {
	t.Helper()

	var created []*authDomain.Token
	f.users.On("GetByLogin", mock.Anything, "ana").Return(f.user, nil).Once()
	f.passwords.On("Compare", "Sup3rSecret", "stored-hash").Return(true).Once()
	f.tokens.On("RevokeByUserID", mock.Anything, f.user.ID, mock.Anything).Return(int64(0), nil).Once()
	f.tokens.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = append(created, args.Get(1).(*authDomain.Token))
	}).Return(nil).Twice()

	pair, err := f.uc.Login(context.Background(), &authDomain.LoginInput{Login: "ana", Password: "Sup3rSecret"})
	require.NoError(t, err)
	require.Len(t, created, 2)
	return pair, created
}

func TestTokenUseCase_Login(t *testing.T) {
	t.Run("issues a pair and records both tokens", func(t *testing.T) {
		f := newTokenFixture(t)
		pair, created := f.login(t)

		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))

		access, refresh := created[0], created[1]
		assert.Equal(t, authDomain.TokenKindAccess, access.Kind)
		assert.Equal(t, f.hasher.HashToken(pair.AccessToken), access.TokenHash)
		assert.Equal(t, authDomain.TokenKindRefresh, refresh.Kind)
		assert.Equal(t, f.hasher.HashToken(pair.RefreshToken), refresh.TokenHash)

		claims, err := f.access.Parse(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, access.ID.String(), claims.ID)
		assert.Equal(t, f.user.ID.String(), claims.Subject)
		f.tokens.AssertExpectations(t)
	})

	t.Run("unknown user and wrong password look the same", func(t *testing.T) {
		f := newTokenFixture(t)
		f.users.On("GetByLogin", mock.Anything, "ghost").Return(nil, userDomain.ErrUserNotFound)
		f.users.On("GetByLogin", mock.Anything, "ana").Return(f.user, nil)
		f.passwords.On("Compare", "wrong", "stored-hash").Return(false)
		f.passwords.On("Hash", mock.AnythingOfType("string")).Return("decoy-hash", nil).Once()
		f.passwords.On("Compare", "wrong", "decoy-hash").Return(false)

		_, errUnknown := f.uc.Login(context.Background(), &authDomain.LoginInput{Login: "ghost", Password: "wrong"})
		_, errWrong := f.uc.Login(context.Background(), &authDomain.LoginInput{Login: "ana", Password: "wrong"})

		assert.ErrorIs(t, errUnknown, authDomain.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, authDomain.ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
		f.tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown user still verifies a password", func(t *testing.T) {
		f := newTokenFixture(t)
		f.users.On("GetByLogin", mock.Anything, "ghost").Return(nil, userDomain.ErrUserNotFound)
		f.passwords.On("Hash", mock.AnythingOfType("string")).Return("decoy-hash", nil).Once()
		f.passwords.On("Compare", "Sup3rSecret", "decoy-hash").Return(true).Twice()

		for range 2 {
			_, err := f.uc.Login(context.Background(), &authDomain.LoginInput{Login: "ghost", Password: "Sup3rSecret"})
			assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		}

		// The decoy hash is computed once and reused.
		f.passwords.AssertNumberOfCalls(t, "Hash", 1)
		f.passwords.AssertNumberOfCalls(t, "Compare", 2)
	})

	t.Run("unknown user against the real hasher", func(t *testing.T) {
		passwords, err := authService.NewPasswordService()
		require.NoError(t, err)

		users := &mocks.MockUserRepository{}
		users.On("GetByLogin", mock.Anything, "ghost").Return(nil, userDomain.ErrUserNotFound)

		uc := usecase.NewTokenUseCase(usecase.TokenUseCaseConfig{
			Policy:          database.NewOperationPolicy(time.Second, time.Millisecond),
			UserRepo:        users,
			PasswordService: passwords,
		})

		_, err = uc.Login(context.Background(), &authDomain.LoginInput{Login: "ghost", Password: "Sup3rSecret"})
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
	})

	t.Run("disabled user", func(t *testing.T) {
		f := newTokenFixture(t)
		f.user.Enabled = false
		f.users.On("GetByLogin", mock.Anything, "ana").Return(f.user, nil)
		f.passwords.On("Compare", "Sup3rSecret", "stored-hash").Return(true)

		_, err := f.uc.Login(context.Background(), &authDomain.LoginInput{Login: "ana", Password: "Sup3rSecret"})
		assert.ErrorIs(t, err, authDomain.ErrUserDisabled)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("empty input", func(t *testing.T) {
		f := newTokenFixture(t)
		_, err := f.uc.Login(context.Background(), &authDomain.LoginInput{})
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
	})
}

func TestTokenUseCase_Authenticate(t *testing.T) {
	t.Run("resolves identity", func(t *testing.T) {
		f := newTokenFixture(t)
		pair, created := f.login(t)
		access := created[0]

		f.tokens.On("GetByID", mock.Anything, access.ID).Return(access, nil)
		f.users.On("GetByID", mock.Anything, f.user.ID).Return(f.user, nil)

		identity, err := f.uc.Authenticate(context.Background(), pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, f.user.ID, identity.UserID)
		assert.Equal(t, "ana", identity.Username)
		assert.Equal(t, access.ID, identity.TokenID)
	})

	t.Run("revoked record", func(t *testing.T) {
		f := newTokenFixture(t)
		pair, created := f.login(t)
		access := *created[0]
		revokedAt := time.Now().UTC()
		access.RevokedAt = &revokedAt

		f.tokens.On("GetByID", mock.Anything, access.ID).Return(&access, nil)
		f.users.On("GetByID", mock.Anything, f.user.ID).Return(f.user, nil)

		_, err := f.uc.Authenticate(context.Background(), pair.AccessToken)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("record missing", func(t *testing.T) {
		f := newTokenFixture(t)
		pair, created := f.login(t)

		f.tokens.On("GetByID", mock.Anything, created[0].ID).Return(nil, authDomain.ErrTokenNotFound)

		_, err := f.uc.Authenticate(context.Background(), pair.AccessToken)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("user disabled after login", func(t *testing.T) {
		f := newTokenFixture(t)
		pair, created := f.login(t)
		disabled := *f.user
		disabled.Enabled = false

		f.tokens.On("GetByID", mock.Anything, created[0].ID).Return(created[0], nil)
		f.users.On("GetByID", mock.Anything, f.user.ID).Return(&disabled, nil)

		_, err := f.uc.Authenticate(context.Background(), pair.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		f := newTokenFixture(t)
		pair, _ := f.login(t)

		_, err := f.uc.Authenticate(context.Background(), pair.RefreshToken)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		f := newTokenFixture(t)
		_, err := f.uc.Authenticate(context.Background(), "not-a-jwt")
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})
}

func TestTokenUseCase_Refresh(t *testing.T) {
	t.Run("rotates the pair", func(t *testing.T) {
		f := newTokenFixture(t)
		pair, created := f.login(t)
		refresh := created[1]

		f.tokens.On("GetByTokenHash", mock.Anything, authDomain.TokenKindRefresh, refresh.TokenHash).
			Return(refresh, nil)
		f.users.On("GetByID", mock.Anything, f.user.ID).Return(f.user, nil)
		f.tokens.On("Revoke", mock.Anything, refresh.ID, mock.Anything).Return(nil)
		f.tokens.On("RevokeByUserID", mock.Anything, f.user.ID, mock.Anything).Return(int64(1), nil)
		f.tokens.On("Create", mock.Anything, mock.Anything).Return(nil).Twice()

		next, err := f.uc.Refresh(context.Background(), pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)
		f.tokens.AssertCalled(t, "Revoke", mock.Anything, refresh.ID, mock.Anything)
	})

	t.Run("replayed token", func(t *testing.T) {
		f := newTokenFixture(t)
		pair, created := f.login(t)
		refresh := created[1]

		f.tokens.On("GetByTokenHash", mock.Anything, authDomain.TokenKindRefresh, refresh.TokenHash).
			Return(refresh, nil)
		f.users.On("GetByID", mock.Anything, f.user.ID).Return(f.user, nil)
		f.tokens.On("Revoke", mock.Anything, refresh.ID, mock.Anything).Return(authDomain.ErrTokenNotFound)

		_, err := f.uc.Refresh(context.Background(), pair.RefreshToken)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		f := newTokenFixture(t)
		expired := &authDomain.Token{
			ID:        uuid.Must(uuid.NewV7()),
			UserID:    f.user.ID,
			Kind:      authDomain.TokenKindRefresh,
			ExpiresAt: time.Now().UTC().Add(-time.Minute),
		}
		f.tokens.On("GetByTokenHash", mock.Anything, authDomain.TokenKindRefresh, mock.Anything).Return(expired, nil)

		_, err := f.uc.Refresh(context.Background(), "stale")
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("unknown", func(t *testing.T) {
		f := newTokenFixture(t)
		f.tokens.On("GetByTokenHash", mock.Anything, authDomain.TokenKindRefresh, mock.Anything).
			Return(nil, authDomain.ErrTokenNotFound)

		_, err := f.uc.Refresh(context.Background(), "whatever")
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})
}

func TestTokenUseCase_Logout(t *testing.T) {
	f := newTokenFixture(t)
	f.tokens.On("RevokeByUserID", mock.Anything, f.user.ID, mock.Anything).Return(int64(2), nil)

	require.NoError(t, f.uc.Logout(context.Background(), f.user.ID))
	f.tokens.AssertExpectations(t)
}

func TestTokenUseCase_CleanupExpired(t *testing.T) {
	t.Run("dry run counts", func(t *testing.T) {
		f := newTokenFixture(t)
		f.tokens.On("CountExpired", mock.Anything, mock.Anything).Return(int64(4), nil)

		count, err := f.uc.CleanupExpired(context.Background(), 7, true)
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
		f.tokens.AssertNotCalled(t, "DeleteExpired", mock.Anything, mock.Anything)
	})

	t.Run("deletes with cutoff in the past", func(t *testing.T) {
		f := newTokenFixture(t)
		f.tokens.On("DeleteExpired", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
			return cutoff.Before(time.Now().UTC().AddDate(0, 0, -6))
		})).Return(int64(3), nil)

		count, err := f.uc.CleanupExpired(context.Background(), 7, false)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("negative days", func(t *testing.T) {
		f := newTokenFixture(t)
		_, err := f.uc.CleanupExpired(context.Background(), -1, false)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
