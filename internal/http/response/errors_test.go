package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/platform/apierr"
)

func render(t *testing.T, err error) (int, ErrorEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	Error(c, err)
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rec.Code, env
}

func TestErrorMapsCodes(t *testing.T) {
	cases := []struct {
		code   domainagg.ErrorCode
		status int
	}{
		{domainagg.CodeValidation, http.StatusUnprocessableEntity},
		{domainagg.CodeNotFound, http.StatusNotFound},
		{domainagg.CodeAuthorization, http.StatusForbidden},
		{domainagg.CodeUnauthenticated, http.StatusUnauthorized},
		{domainagg.CodeConflict, http.StatusInternalServerError},
		{domainagg.CodeUnavailable, http.StatusServiceUnavailable},
		{domainagg.CodeIO, http.StatusInternalServerError},
		{domainagg.CodeUpstream, http.StatusBadGateway},
	}
	for _, tc := range cases {
		status, env := render(t, domainagg.NewError(tc.code, "op", "detail", nil))
		if status != tc.status {
			t.Fatalf("%s: want=%d got=%d", tc.code, tc.status, status)
		}
		if env.Error.Code != string(tc.code) || env.Error.Message != "detail" {
			t.Fatalf("%s: envelope=%+v", tc.code, env)
		}
	}
}

func TestErrorHidesInternalDetail(t *testing.T) {
	status, env := render(t, errors.New("pq: password authentication failed"))
	if status != http.StatusInternalServerError || env.Error.Code != "internal" {
		t.Fatalf("status=%d envelope=%+v", status, env)
	}
	if env.Error.Message != "Something went wrong, please try again later." {
		t.Fatalf("message leaked: %q", env.Error.Message)
	}
}

func TestErrorUsesTransportStatus(t *testing.T) {
	err := fmt.Errorf("read upload: %w", apierr.New(http.StatusRequestEntityTooLarge, apierr.CodePayloadTooLarge, "Image is too large.", nil))
	status, env := render(t, err)
	if status != http.StatusRequestEntityTooLarge {
		t.Fatalf("status: want=%d got=%d", http.StatusRequestEntityTooLarge, status)
	}
	if env.Error.Code != apierr.CodePayloadTooLarge || env.Error.Message != "Image is too large." {
		t.Fatalf("envelope=%+v", env)
	}
}
