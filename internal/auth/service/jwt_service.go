package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/zekret/vault/internal/auth/domain"
	cryptoDomain "github.com/zekret/vault/internal/crypto/domain"
	cryptoService "github.com/zekret/vault/internal/crypto/service"
	apperrors "github.com/zekret/vault/internal/errors"
)

type jwtService struct {
	issuer     string
	masterKeys *cryptoDomain.MasterKeyChain
	now        func() time.Time
}

// Sign issues an access token signed with a key derived from the active master key.
func (j *jwtService) Sign(
	subject AccessTokenSubject,
	jti uuid.UUID,
	issuedAt, expiresAt time.Time,
) (string, error) {
	mk := j.masterKeys.Active()

	key, err := cryptoService.DeriveKey(mk.Key, cryptoService.AccessTokenSigningInfo)
	if err != nil {
		return "", err
	}
	defer cryptoDomain.Zero(key)

	claims := AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   subject.UserID.String(),
			ID:        jti.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UPN:      subject.Email,
		Username: subject.Username,
		Groups:   []string{authDomain.GroupUser},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = mk.ID

	signed, err := token.SignedString(key)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign access token")
	}
	return signed, nil
}

// Parse verifies a token. Every failure is ErrInvalidToken.
func (j *jwtService) Parse(tokenString string) (*AccessTokenClaims, error) {
	var key []byte
	defer func() { cryptoDomain.Zero(key) }()

	keyFunc := func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		mk, ok := j.masterKeys.Get(kid)
		if !ok {
			return nil, fmt.Errorf("unknown signing key %q", kid)
		}

		var err error
		key, err = cryptoService.DeriveKey(mk.Key, cryptoService.AccessTokenSigningInfo)
		return key, err
	}

	var claims AccessTokenClaims
	_, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authDomain.ErrInvalidToken, err)
	}

	return &claims, nil
}

// NewAccessTokenService creates an AccessTokenService.
func NewAccessTokenService(issuer string, masterKeys *cryptoDomain.MasterKeyChain) AccessTokenService {
	return &jwtService{issuer: issuer, masterKeys: masterKeys, now: time.Now}
}
