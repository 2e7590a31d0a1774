package services

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/placeshare-backend/internal/data/aggregates"
	types "github.com/yungbote/placeshare-backend/internal/domain"
	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstorage"
)

const (
	defaultBcryptCost = 12
	minPasswordLength = 6
)

type SignupInput struct {
	Name      string
	Email     string
	Password  string
	Image     []byte
	ImageName string
}

// AuthResult is what signup and login hand back to the client.
type AuthResult struct {
	User  *types.User
	Token string
}

type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	List(ctx context.Context) ([]*types.User, error)
}

type UserServiceDeps struct {
	Store      domainagg.EntityStore
	Hooks      aggregates.Hooks
	Auth       AuthService
	Assets     AssetService
	Janitor    AssetJanitor
	Avatars    AvatarService
	BcryptCost int
}

type userService struct {
	log        *logger.Logger
	store      domainagg.EntityStore
	hooks      aggregates.Hooks
	auth       AuthService
	assets     AssetService
	janitor    AssetJanitor
	avatars    AvatarService
	bcryptCost int
}

func NewUserService(log *logger.Logger, deps UserServiceDeps) UserService {
	cost := deps.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultBcryptCost
	}
	return &userService{
		log:        log.With("service", "UserService"),
		store:      deps.Store,
		hooks:      deps.Hooks,
		auth:       deps.Auth,
		assets:     deps.Assets,
		janitor:    deps.Janitor,
		avatars:    deps.Avatars,
		bcryptCost: cost,
	}
}

func (us *userService) List(ctx context.Context) ([]*types.User, error) {
	users, err := us.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		u.ImageURL = us.assets.PublicURL(objectstorage.BucketCategoryAvatar, u.ImageKey)
	}
	return users, nil
}

func (us *userService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	const op = "UserService.Signup"
	name := strings.TrimSpace(in.Name)
	email, err := normalizeEmail(in.Email)
	if name == "" || err != nil || len(in.Password) < minPasswordLength {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "Invalid inputs passed, please check your data.", nil)
	}

	existing, err := us.store.FindUserByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "That email is already in use.", nil)
	case err != nil && !domainagg.IsCode(err, domainagg.CodeNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), us.bcryptCost)
	if err != nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "Could not create user, please try again.", err)
	}

	user := &types.User{
		ID:       uuid.New(),
		Name:     name,
		Email:    email,
		Password: string(hash),
		Places:   []uuid.UUID{},
	}

	avatar, err := us.renderAvatar(user, in.Image)
	if err != nil {
		return nil, err
	}
	key, err := us.assets.Store(ctx, objectstorage.BucketCategoryAvatar, avatar, in.ImageName)
	if err != nil {
		return nil, err
	}
	user.ImageKey = key

	err = aggregates.Execute(ctx, aggregates.BaseDeps{Store: us.store, Hooks: us.hooks}, op, func(tx domainagg.Tx) error {
		return tx.InsertUser(user)
	})
	if err != nil {
		committed, known := lookupCommitted(ctx, err, func(ctx context.Context) error {
			_, ferr := us.store.FindUserByID(ctx, user.ID)
			return ferr
		})
		switch {
		case committed:
			us.log.Warn("signup reported failure after commit", "user_id", user.ID, "error", err)
		case !known:
			us.log.Error("signup outcome unknown, avatar kept", "user_id", user.ID, "key", key, "error", err)
			return nil, err
		default:
			us.janitor.Schedule(ctx, objectstorage.BucketCategoryAvatar, key, types.AssetCleanupReasonSignupAborted, map[string]any{"user_id": user.ID.String()})
			if aggregates.UniqueViolationOn(err, types.User{}.TableName(), "email") {
				return nil, domainagg.NewError(domainagg.CodeValidation, op, "That email is already in use.", err)
			}
			return nil, err
		}
	}
	user.ImageURL = us.assets.PublicURL(objectstorage.BucketCategoryAvatar, key)

	token, err := us.auth.IssueToken(user)
	if err != nil {
		return nil, err
	}
	us.log.Info("User signed up", "user_id", user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

func (us *userService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	const op = "UserService.Login"
	invalid := domainagg.NewError(domainagg.CodeUnauthenticated, op, "Invalid credentials, could not log you in.", nil)

	normalized, err := normalizeEmail(email)
	if err != nil || password == "" {
		return nil, invalid
	}
	user, err := us.store.FindUserByEmail(ctx, normalized)
	if domainagg.IsCode(err, domainagg.CodeNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, invalid
	}
	token, err := us.auth.IssueToken(user)
	if err != nil {
		return nil, err
	}
	user.ImageURL = us.assets.PublicURL(objectstorage.BucketCategoryAvatar, user.ImageKey)
	return &AuthResult{User: user, Token: token}, nil
}

func (us *userService) renderAvatar(user *types.User, upload []byte) ([]byte, error) {
	if len(upload) > 0 {
		return us.avatars.FromUpload(upload)
	}
	out, err := us.avatars.GenerateInitials(user.Name, user.ID.String())
	if err != nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, "UserService.Signup", "Signing up failed, please try again later.", err)
	}
	return out, nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(addr.Address), nil
}
