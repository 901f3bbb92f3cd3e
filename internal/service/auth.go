package service

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
)

const DefaultIdentityClaim = "telegramId"

var ErrMissingSecret = errors.New("jwt secret key is empty")

type AuthService interface {
	// Verify returns the identity carried by credential.
	Verify(credential string) (string, error)
}

type authServiceImpl struct {
	secretKey     []byte
	identityClaim string
	parser        *jwt.Parser
}

func NewAuthService(secretKey, identityClaim string) (AuthService, error) {
	if secretKey == "" {
		return nil, ErrMissingSecret
	}

	if identityClaim == "" {
		identityClaim = DefaultIdentityClaim
	}

	return &authServiceImpl{
		secretKey:     []byte(secretKey),
		identityClaim: identityClaim,
		parser:        jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}, nil
}

func (that *authServiceImpl) Verify(credential string) (string, error) {
	claims := jwt.MapClaims{}

	_, err := that.parser.ParseWithClaims(credential, claims, func(*jwt.Token) (interface{}, error) {
		return that.secretKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperror.ErrAuthInvalid, err)
	}

	identity, err := identityFromClaim(claims[that.identityClaim])
	if err != nil {
		return "", fmt.Errorf("%w: claim %q: %w", apperror.ErrAuthInvalid, that.identityClaim, err)
	}

	return identity, nil
}

var (
	errClaimMissing = errors.New("claim is missing or empty")
	errClaimType    = errors.New("claim is neither a string nor a number")
)

// identityFromClaim - accepts string ids and the numeric ids some issuers emit.
func identityFromClaim(value interface{}) (string, error) {
	switch claim := value.(type) {
	case nil:
		return "", errClaimMissing
	case string:
		if claim == "" {
			return "", errClaimMissing
		}
		return claim, nil
	case float64:
		return strconv.FormatFloat(claim, 'f', -1, 64), nil
	default:
		return "", errClaimType
	}
}
