package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const LocalUserID = "user_id"

var ErrMissingToken = errors.New("missing bearer token")

// TokenVerifier resolves the identity-provider user id carried by a bearer
// token. RS256 is used when a public key is configured, HS256 otherwise.
type TokenVerifier struct {
	keyFunc jwt.Keyfunc
	methods []string
}

func NewTokenVerifier(hmacSecret, rsaPublicKeyPEM string) (*TokenVerifier, error) {
	if rsaPublicKeyPEM != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(rsaPublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse jwt public key: %w", err)
		}
		return &TokenVerifier{
			keyFunc: func(*jwt.Token) (interface{}, error) { return key, nil },
			methods: []string{jwt.SigningMethodRS256.Alg()},
		}, nil
	}
	if hmacSecret == "" {
		return nil, errors.New("either AUTH_JWT_PUBLIC_KEY or AUTH_JWT_SECRET must be set")
	}
	return &TokenVerifier{
		keyFunc: func(*jwt.Token) (interface{}, error) { return []byte(hmacSecret), nil },
		methods: []string{jwt.SigningMethodHS256.Alg()},
	}, nil
}

// Verify returns the user id from the "sub" claim, or "user_id" when sub is absent.
func (v *TokenVerifier) Verify(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", ErrMissingToken
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, v.keyFunc, jwt.WithValidMethods(v.methods))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}

	if sub, _ := claims["sub"].(string); sub != "" {
		return sub, nil
	}
	if uid, _ := claims["user_id"].(string); uid != "" {
		return uid, nil
	}
	return "", errors.New("token carries no user id")
}

func BearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}

// JwtMiddleware rejects requests without a resolvable identity and stores the
// user id in ctx.Locals(LocalUserID).
func (v *TokenVerifier) JwtMiddleware(ctx *fiber.Ctx) error {
	userId, err := v.Verify(BearerToken(ctx))
	if err != nil {
		if errors.Is(err, ErrMissingToken) {
			return Unauthenticated("User not authenticated")
		}
		return &AppError{Code: fiber.StatusUnauthorized, Kind: KindUnauthenticated, Message: "Invalid token", Err: err}
	}
	ctx.Locals(LocalUserID, userId)
	return ctx.Next()
}

// UserID reads the identity stored by JwtMiddleware.
func UserID(ctx *fiber.Ctx) (string, error) {
	userId, ok := ctx.Locals(LocalUserID).(string)
	if !ok || userId == "" {
		return "", Unauthenticated("User not authenticated")
	}
	return userId, nil
}
