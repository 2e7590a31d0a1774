package http

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"github.com/yungbote/placeshare-backend/internal/data/aggregates"
	"github.com/yungbote/placeshare-backend/internal/data/repos"
	repotestutil "github.com/yungbote/placeshare-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/placeshare-backend/internal/http/handlers"
	httpMW "github.com/yungbote/placeshare-backend/internal/http/middleware"
	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/geocode"
	"github.com/yungbote/placeshare-backend/internal/platform/localfs"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstorage"
	"github.com/yungbote/placeshare-backend/internal/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := repotestutil.Logger(t)
	db := repotestutil.DB(t)
	metrics := observability.New()

	store := aggregates.NewEntityStore(aggregates.EntityStoreDeps{DB: db, Log: log})
	hooks := aggregates.NewObservabilityHooks(metrics, log, 0)
	bucket := localfs.NewBucketServiceWithFs(log, objectstorage.Config{Mode: objectstorage.ModeLocal, PublicBaseURL: "http://localhost:5000"}, afero.NewMemMapFs())
	assets := services.NewAssetService(log, bucket, metrics)
	janitor := services.NewAssetJanitor(log, repos.NewAssetCleanupRepo(db, log), assets, metrics, services.AssetJanitorConfig{})
	auth, err := services.NewAuthService(log, "router-secret", 0)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	avatars, err := services.NewAvatarService(log, services.AvatarConfig{})
	if err != nil {
		t.Fatalf("NewAvatarService: %v", err)
	}
	users := services.NewUserService(log, services.UserServiceDeps{
		Store: store, Hooks: hooks, Auth: auth, Assets: assets, Janitor: janitor, Avatars: avatars, BcryptCost: 4,
	})
	places := services.NewPlaceService(log, services.PlaceServiceDeps{
		Store: store, Hooks: hooks, Assets: assets, Janitor: janitor, Geocoder: geocode.NewStaticGeocoder(),
	})
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	return NewRouter(RouterConfig{
		Log:            log,
		Metrics:        metrics,
		AuthHandler:    httpH.NewAuthHandler(users),
		AuthMiddleware: httpMW.NewAuthMiddleware(log, auth),
		UserHandler:    httpH.NewUserHandler(users),
		PlaceHandler:   httpH.NewPlaceHandler(places),
		HealthHandler:  httpH.NewHealthHandler(sqlDB),
	})
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	for x := 0; x < 40; x++ {
		img.Set(x, x%30, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, image []byte, token string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if image != nil {
		fw, err := w.CreateFormFile("image", "photo.png")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		_, _ = fw.Write(image)
	}
	_ = w.Close()
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func jsonRequest(method, target, body, token string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func serve(t *testing.T, r *gin.Engine, req *http.Request, want int) map[string]any {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != want {
		t.Fatalf("%s %s: status want=%d got=%d body=%s", req.Method, req.URL.Path, want, rec.Code, rec.Body.String())
	}
	out := map[string]any{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return out
}

type session struct {
	userID string
	token  string
}

func signup(t *testing.T, r *gin.Engine, email string) session {
	t.Helper()
	out := serve(t, r, multipartRequest(t, http.MethodPost, "/api/users/signup", map[string]string{
		"name": "Max Schwarz", "email": email, "password": "supersecret",
	}, nil, ""), http.StatusCreated)
	return session{userID: out["userId"].(string), token: out["token"].(string)}
}

func TestPlaceLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	owner := signup(t, r, "owner@test.com")
	other := signup(t, r, "other@test.com")

	fields := map[string]string{
		"title":       "Empire State Building",
		"description": "One of the most famous sky scrapers in the world!",
		"address":     "20 W 34th St, New York, NY 10001",
	}
	serve(t, r, multipartRequest(t, http.MethodPost, "/api/places", fields, testPNG(t), ""), http.StatusUnauthorized)

	created := serve(t, r, multipartRequest(t, http.MethodPost, "/api/places", fields, testPNG(t), owner.token), http.StatusCreated)
	place := created["place"].(map[string]any)
	pid := place["id"].(string)
	if place["creator"] != owner.userID {
		t.Fatalf("creator: got=%v", place["creator"])
	}
	if img, _ := place["image"].(string); !strings.HasPrefix(img, "http://localhost:5000/uploads/place/") {
		t.Fatalf("image url: got=%q", img)
	}
	loc := place["location"].(map[string]any)
	if loc["lat"].(float64) != geocode.EmpireState.Lat {
		t.Fatalf("location: got=%v", loc)
	}

	serve(t, r, httptest.NewRequest(http.MethodGet, "/api/places/"+pid, nil), http.StatusOK)
	listed := serve(t, r, httptest.NewRequest(http.MethodGet, "/api/places/user/"+owner.userID, nil), http.StatusOK)
	if n := len(listed["places"].([]any)); n != 1 {
		t.Fatalf("places: want=1 got=%d", n)
	}

	denied := serve(t, r, jsonRequest(http.MethodDelete, "/api/places/"+pid, "", other.token), http.StatusForbidden)
	if denied["error"].(map[string]any)["code"] != "authorization" {
		t.Fatalf("denied envelope: got=%v", denied)
	}
	serve(t, r, jsonRequest(http.MethodPatch, "/api/places/"+pid, `{"title":"Empire","description":"abc"}`, owner.token), http.StatusUnprocessableEntity)
	updated := serve(t, r, jsonRequest(http.MethodPatch, "/api/places/"+pid, `{"title":"Empire","description":"Still tall"}`, owner.token), http.StatusOK)
	if updated["place"].(map[string]any)["title"] != "Empire" {
		t.Fatalf("updated: got=%v", updated)
	}

	deleted := serve(t, r, jsonRequest(http.MethodDelete, "/api/places/"+pid, "", owner.token), http.StatusOK)
	if deleted["message"] != "Deleted Place." {
		t.Fatalf("delete body: got=%v", deleted)
	}
	serve(t, r, httptest.NewRequest(http.MethodGet, "/api/places/"+pid, nil), http.StatusNotFound)
	serve(t, r, httptest.NewRequest(http.MethodGet, "/api/places/user/"+owner.userID, nil), http.StatusNotFound)
	serve(t, r, jsonRequest(http.MethodDelete, "/api/places/"+pid, "", owner.token), http.StatusNotFound)
}

func TestUserRoutes(t *testing.T) {
	r := newTestRouter(t)
	s := signup(t, r, "max@test.com")

	dup := serve(t, r, multipartRequest(t, http.MethodPost, "/api/users/signup", map[string]string{
		"name": "Max", "email": "max@test.com", "password": "supersecret",
	}, nil, ""), http.StatusUnprocessableEntity)
	if dup["error"].(map[string]any)["message"] != "That email is already in use." {
		t.Fatalf("dup: got=%v", dup)
	}

	login := serve(t, r, jsonRequest(http.MethodPost, "/api/users/login", `{"email":"max@test.com","password":"supersecret"}`, ""), http.StatusOK)
	if login["userId"] != s.userID || login["token"] == "" {
		t.Fatalf("login: got=%v", login)
	}
	serve(t, r, jsonRequest(http.MethodPost, "/api/users/login", `{"email":"max@test.com","password":"nope"}`, ""), http.StatusUnauthorized)

	list := serve(t, r, httptest.NewRequest(http.MethodGet, "/api/users", nil), http.StatusOK)
	users := list["users"].([]any)
	if len(users) != 1 {
		t.Fatalf("users: got=%v", users)
	}
	u := users[0].(map[string]any)
	if _, leaked := u["password"]; leaked {
		t.Fatalf("password exposed: %v", u)
	}
	if places, ok := u["places"].([]any); !ok || len(places) != 0 {
		t.Fatalf("places: got=%v", u["places"])
	}
}

func TestMiscRoutes(t *testing.T) {
	r := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
	serve(t, r, httptest.NewRequest(http.MethodGet, "/api/places/not-a-uuid", nil), http.StatusNotFound)
	serve(t, r, httptest.NewRequest(http.MethodGet, "/api/nothing", nil), http.StatusNotFound)
}
