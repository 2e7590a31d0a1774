package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	types "github.com/yungbote/placeshare-backend/internal/domain"
	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/platform/ctxutil"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

const defaultAccessTTL = time.Hour

type AuthService interface {
	IssueToken(user *types.User) (string, error)
	ParseToken(tokenString string) (*JWTClaims, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type JWTClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

type authService struct {
	log       *logger.Logger
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewAuthService(log *logger.Logger, secret string, accessTTL time.Duration) (AuthService, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("missing JWT_SECRET")
	}
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	return &authService{
		log:       log.With("service", "AuthService"),
		secret:    []byte(secret),
		accessTTL: accessTTL,
		now:       time.Now,
	}, nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func (as *authService) IssueToken(user *types.User) (string, error) {
	if user == nil || user.ID == uuid.Nil {
		return "", domainagg.NewError(domainagg.CodeInternal, "AuthService.IssueToken", "Signing up failed, please try again later.", nil)
	}
	now := as.now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: user.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(as.secret)
	if err != nil {
		return "", domainagg.NewError(domainagg.CodeInternal, "AuthService.IssueToken", "Signing up failed, please try again later.", err)
	}
	return signed, nil
}

func (as *authService) ParseToken(tokenString string) (*JWTClaims, error) {
	const op = "AuthService.ParseToken"
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return as.secret, nil
	}, jwt.WithTimeFunc(as.now))
	if err != nil {
		msg := "Authentication failed!"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "Token expired."
		}
		return nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, msg, err)
	}
	if !token.Valid {
		return nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, "Authentication failed!", nil)
	}
	return claims, nil
}

// SetContextFromToken verifies tokenString and stores the caller in ctx.
// An empty token leaves ctx untouched.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	claims, err := as.ParseToken(tokenString)
	if err != nil {
		return ctx, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, domainagg.NewError(domainagg.CodeUnauthenticated, "AuthService.SetContextFromToken", "Authentication failed!", err)
	}
	rd := &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Email:       claims.Email,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}
