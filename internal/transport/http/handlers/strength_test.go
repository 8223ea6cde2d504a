package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/arklim/passmeter/internal/core/domain"
	"github.com/arklim/passmeter/internal/transport/http/middleware"
	"github.com/arklim/passmeter/internal/usecase"
)

type stubEvaluationRepository struct {
	counts map[domain.StrengthLevel]int
	since  time.Time
}

func (s *stubEvaluationRepository) Save(context.Context, domain.EvaluationRecord) error { return nil }

func (s *stubEvaluationRepository) CountByLevel(_ context.Context, since time.Time) (map[domain.StrengthLevel]int, error) {
	s.since = since
	return s.counts, nil
}

func newTestRouter(t *testing.T, service *usecase.StrengthService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	handler := NewStrengthHandler(service)
	handler.RegisterRoutes(router.Group("/api/v1/password"), nil, nil)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestStrengthHandlerEvaluate(t *testing.T) {
	service := usecase.NewStrengthService(nil, nil, nil, zaptest.NewLogger(t))
	router := newTestRouter(t, service)

	rr := postJSON(t, router, "/api/v1/password/strength", StrengthRequest{Password: "P@ssw0rd!2023"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp StrengthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Level != "very_strong" || resp.Score != 80 {
		t.Fatalf("unexpected result %s/%d", resp.Level, resp.Score)
	}
	if resp.Counts.Length != 13 || resp.Breakdown.Symbols != 20 {
		t.Fatalf("unexpected counts/breakdown %+v %+v", resp.Counts, resp.Breakdown)
	}
	if strings.Contains(rr.Body.String(), "P@ssw0rd") {
		t.Fatalf("response must not echo the password")
	}
}

func TestStrengthHandlerEvaluateEmptyPassword(t *testing.T) {
	router := newTestRouter(t, usecase.NewStrengthService(nil, nil, nil, zaptest.NewLogger(t)))

	rr := postJSON(t, router, "/api/v1/password/strength", map[string]any{})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp StrengthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Level != "very_weak" || resp.Score != 0 {
		t.Fatalf("unexpected result for empty password %+v", resp)
	}
}

func TestStrengthHandlerEvaluateErrors(t *testing.T) {
	service := usecase.NewStrengthService(nil, nil, nil, zaptest.NewLogger(t)).WithMaxLength(4)
	router := newTestRouter(t, service)

	rr := postJSON(t, router, "/api/v1/password/strength", StrengthRequest{Password: "toolong"})
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/password/strength", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	bad := httptest.NewRecorder()
	router.ServeHTTP(bad, req)
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed json, got %d", bad.Code)
	}
}

func TestStrengthHandlerEvaluateStreamedBodyTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewStrengthHandler(usecase.NewStrengthService(nil, nil, nil, zaptest.NewLogger(t)))
	handler.RegisterRoutes(router.Group("/api/v1/password", middleware.BodyLimit(64)), nil, nil)

	payload := `{"password":"` + strings.Repeat("x", 128) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/password/strength", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != codeRequestTooLarge {
		t.Fatalf("unexpected code %q", resp.Code)
	}
}

func TestRequestBodyLimitCoversMaximumPayload(t *testing.T) {
	req := StrengthRequest{Password: strings.Repeat("\u2603", 256)}
	for i := 0; i < usecase.MaxUserInputs; i++ {
		req.UserInputs = append(req.UserInputs, strings.Repeat("\u2603", usecase.MaxUserInputLength))
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if int64(len(body)) > RequestBodyLimit(256) {
		t.Fatalf("maximum payload of %d bytes exceeds limit %d", len(body), RequestBodyLimit(256))
	}
}

func TestStrengthHandlerValidate(t *testing.T) {
	router := newTestRouter(t, usecase.NewStrengthService(nil, nil, nil, zaptest.NewLogger(t)))

	rr := postJSON(t, router, "/api/v1/password/validate", ValidateRequest{Password: "C0mplex!Passphrase#2025", Username: "alice"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var ok ValidateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &ok); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !ok.Valid || ok.Level == "" {
		t.Fatalf("unexpected validate response %+v", ok)
	}

	rr = postJSON(t, router, "/api/v1/password/validate", ValidateRequest{Password: "short"})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	var rejected ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &rejected); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if rejected.Code != "min_length" || rejected.Error == "" {
		t.Fatalf("unexpected rejection %+v", rejected)
	}
}

func TestStrengthHandlerLevels(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/password/levels", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp LevelsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Levels) != 7 {
		t.Fatalf("expected 7 levels, got %d", len(resp.Levels))
	}
	top := resp.Levels[len(resp.Levels)-1]
	if top.Level != "very_secure" || top.MinScore != 100 || top.MaxScore != nil {
		t.Fatalf("unexpected top band %+v", top)
	}
}

func TestStrengthHandlerStats(t *testing.T) {
	repo := &stubEvaluationRepository{counts: map[domain.StrengthLevel]int{
		domain.StrengthWeak:       2,
		domain.StrengthVeryStrong: 3,
	}}
	service := usecase.NewStrengthService(nil, nil, nil, zaptest.NewLogger(t)).WithRepository(repo, true)
	router := newTestRouter(t, service)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/password/stats?since=2025-10-01T00:00:00Z", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp StatsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 5 || resp.Distribution["weak"] != 2 || resp.Distribution["very_strong"] != 3 {
		t.Fatalf("unexpected stats %+v", resp)
	}
	if _, ok := resp.Distribution["very_secure"]; !ok {
		t.Fatalf("expected zero entries for every level")
	}
	if resp.Since == nil || !repo.since.Equal(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("since not forwarded: %v", repo.since)
	}

	bad := httptest.NewRecorder()
	router.ServeHTTP(bad, httptest.NewRequest(http.MethodGet, "/api/v1/password/stats?since=yesterday", nil))
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid since, got %d", bad.Code)
	}
}
