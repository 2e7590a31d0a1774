package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/placeshare-backend/internal/domain"
	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
)

func signupInput(email string) SignupInput {
	return SignupInput{Name: "Max Schwarz", Email: email, Password: "supersecret"}
}

func TestSignupIssuesTokenAndStoresAvatar(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.users.Signup(ctx, signupInput(" Max@Test.com "))
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if res.User.Email != "max@test.com" {
		t.Fatalf("email: want=%q got=%q", "max@test.com", res.User.Email)
	}
	if res.User.Password == "supersecret" {
		t.Fatalf("password stored in clear")
	}
	if !strings.HasPrefix(res.User.ImageKey, "avatar/") || !h.bucket.has(res.User.ImageKey) {
		t.Fatalf("avatar not stored: key=%q", res.User.ImageKey)
	}
	claims, err := h.auth.ParseToken(res.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != res.User.ID.String() {
		t.Fatalf("subject: want=%s got=%s", res.User.ID, claims.Subject)
	}

	users, err := h.users.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 || users[0].ImageURL == "" || users[0].Places == nil || len(users[0].Places) != 0 {
		t.Fatalf("users: got=%+v", users)
	}
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.users.Signup(ctx, signupInput("max@test.com")); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	_, err := h.users.Signup(ctx, signupInput("MAX@test.com"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("want validation got %v", err)
	}
	if domainagg.MessageOf(err) != "That email is already in use." {
		t.Fatalf("message: got=%q", domainagg.MessageOf(err))
	}
	if h.bucket.count() != 1 {
		t.Fatalf("duplicate signup stored an avatar: %d objects", h.bucket.count())
	}
}

func TestSignupValidation(t *testing.T) {
	h := newHarness(t)
	cases := []SignupInput{
		{Name: "", Email: "a@test.com", Password: "supersecret"},
		{Name: "A", Email: "not-an-email", Password: "supersecret"},
		{Name: "A", Email: "a@test.com", Password: "short"},
		{Name: "A", Email: "a@test.com", Password: "supersecret", Image: []byte("GIF89a nope")},
	}
	for _, in := range cases {
		if _, err := h.users.Signup(context.Background(), in); !domainagg.IsCode(err, domainagg.CodeValidation) {
			t.Fatalf("input %+v: want validation got %v", in, err)
		}
	}
	if h.bucket.count() != 0 {
		t.Fatalf("invalid signup stored assets")
	}
}

func TestSignupCleansUpAvatarWhenInsertFails(t *testing.T) {
	h := newHarness(t)
	h.store.FailInsertUser = errBoom
	if _, err := h.users.Signup(context.Background(), signupInput("max@test.com")); err == nil {
		t.Fatalf("expected signup failure")
	}
	if h.bucket.count() != 0 {
		t.Fatalf("avatar left behind: %d objects", h.bucket.count())
	}
	done := h.cleanupRows(t, types.AssetCleanupStatusDone)
	if len(done) != 1 || done[0].Reason != types.AssetCleanupReasonSignupAborted {
		t.Fatalf("cleanup rows: got=%+v", done)
	}
	if _, err := h.store.FindUserByEmail(context.Background(), "max@test.com"); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("user visible after failed signup: %v", err)
	}
}

func TestSignupWithUploadedAvatar(t *testing.T) {
	h := newHarness(t)
	in := signupInput("max@test.com")
	in.Image = pngBytes(t, 300, 200)
	in.ImageName = "me.png"
	res, err := h.users.Signup(context.Background(), in)
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if !strings.HasSuffix(res.User.ImageKey, ".png") {
		t.Fatalf("avatar key: got=%q", res.User.ImageKey)
	}
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	signed, err := h.users.Signup(ctx, signupInput("max@test.com"))
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	res, err := h.users.Login(ctx, "Max@Test.com", "supersecret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.User.ID != signed.User.ID || res.Token == "" {
		t.Fatalf("login result: got=%+v", res)
	}

	for _, tc := range []struct{ email, password string }{
		{"max@test.com", "wrongpassword"},
		{"nobody@test.com", "supersecret"},
		{"max@test.com", ""},
	} {
		_, err := h.users.Login(ctx, tc.email, tc.password)
		if !domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
			t.Fatalf("login(%q): want unauthenticated got %v", tc.email, err)
		}
	}
}

func TestListUsersIncludesPlaceSets(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	res, err := h.users.Signup(ctx, signupInput("max@test.com"))
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	p, err := h.places.CreatePlace(ctx, h.createInput(t, res.User.ID, "Mine"))
	if err != nil {
		t.Fatalf("CreatePlace: %v", err)
	}
	users, err := h.users.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 || len(users[0].Places) != 1 || users[0].Places[0] != p.ID {
		t.Fatalf("users: got=%+v", users)
	}
	if users[0].ID == uuid.Nil {
		t.Fatalf("user id missing")
	}
}

func TestSignupKeepsAvatarWhenCommitLandsDespiteError(t *testing.T) {
	h := newHarness(t)
	h.store.FailAfterCommit = errBoom

	res, err := h.users.Signup(context.Background(), signupInput("max@test.com"))
	if err != nil {
		t.Fatalf("committed signup reported failure: %v", err)
	}
	if res.Token == "" || !h.bucket.has(res.User.ImageKey) {
		t.Fatalf("signup result incomplete: token=%q avatar=%v", res.Token, h.bucket.has(res.User.ImageKey))
	}
	if h.bucket.deleteCount() != 0 {
		t.Fatalf("avatar of a committed user was deleted")
	}
	if _, err := h.store.FindUserByEmail(context.Background(), "max@test.com"); err != nil {
		t.Fatalf("FindUserByEmail: %v", err)
	}
}

func TestSignupCleansUpAvatarAfterRequestCancelled(t *testing.T) {
	h := newHarness(t)
	h.bucket.honorCtx = true
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.store.BeforeCommit = cancel

	if _, err := h.users.Signup(ctx, signupInput("max@test.com")); !domainagg.IsCode(err, domainagg.CodeUnavailable) {
		t.Fatalf("want unavailable got %v", err)
	}
	if h.bucket.count() != 0 {
		t.Fatalf("avatar left behind: %d objects", h.bucket.count())
	}
	done := h.cleanupRows(t, types.AssetCleanupStatusDone)
	if len(done) != 1 || done[0].Reason != types.AssetCleanupReasonSignupAborted {
		t.Fatalf("cleanup rows: got=%+v", done)
	}
}

// staleEmailStore misses existing emails on lookup, as a concurrent signup
// for the same address would.
type staleEmailStore struct {
	domainagg.EntityStore
}

func (staleEmailStore) FindUserByEmail(context.Context, string) (*types.User, error) {
	return nil, domainagg.NewError(domainagg.CodeNotFound, "EntityStore.FindUserByEmail", "could not find a user for the provided email", nil)
}

func TestSignupDuplicateEmailFromUniqueIndex(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.users.Signup(ctx, signupInput("max@test.com")); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	avatars, err := NewAvatarService(testLogger(t), AvatarConfig{})
	if err != nil {
		t.Fatalf("NewAvatarService: %v", err)
	}
	users := NewUserService(testLogger(t), UserServiceDeps{
		Store:      staleEmailStore{EntityStore: h.store},
		Hooks:      h.hooks,
		Auth:       h.auth,
		Assets:     h.assets,
		Janitor:    h.janitor,
		Avatars:    avatars,
		BcryptCost: 4,
	})

	_, err = users.Signup(ctx, signupInput("max@test.com"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) || domainagg.MessageOf(err) != "That email is already in use." {
		t.Fatalf("want duplicate email validation got %v", err)
	}
	if h.bucket.count() != 1 {
		t.Fatalf("losing signup kept its avatar: %d objects", h.bucket.count())
	}
}

func TestSignupOtherConflictIsNotDuplicateEmail(t *testing.T) {
	h := newHarness(t)
	h.store.FailInsertUser = domainagg.NewError(domainagg.CodeConflict, "EntityStore.InsertUser", "email index busy, please try again", errBoom)

	_, err := h.users.Signup(context.Background(), signupInput("max@test.com"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("want conflict got %v", err)
	}
}
