package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/terravia/terravia-backend/internal/domain"
	"github.com/terravia/terravia-backend/internal/service"
	"github.com/terravia/terravia-backend/internal/util"
)

type memFavoriteRepo struct {
	sets map[uuid.UUID][]string
}

func newMemFavoriteRepo() *memFavoriteRepo {
	return &memFavoriteRepo{sets: make(map[uuid.UUID][]string)}
}

func (m *memFavoriteRepo) Add(_ context.Context, userID uuid.UUID, tripID string) (bool, error) {
	for _, id := range m.sets[userID] {
		if id == tripID {
			return false, nil
		}
	}
	m.sets[userID] = append(m.sets[userID], tripID)
	return true, nil
}

func (m *memFavoriteRepo) Remove(_ context.Context, userID uuid.UUID, tripID string) (bool, error) {
	current := m.sets[userID]
	next := make([]string, 0, len(current))
	removed := false
	for _, id := range current {
		if id == tripID {
			removed = true
			continue
		}
		next = append(next, id)
	}
	m.sets[userID] = next
	return removed, nil
}

func (m *memFavoriteRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]string, error) {
	return append([]string(nil), m.sets[userID]...), nil
}

func (m *memFavoriteRepo) CountByTrip(_ context.Context, tripID string) (int64, error) {
	var count int64
	for _, tripIDs := range m.sets {
		for _, id := range tripIDs {
			if id == tripID {
				count++
			}
		}
	}
	return count, nil
}

type memLocalStore struct {
	blobs map[string][]string
}

func newMemLocalStore() *memLocalStore {
	return &memLocalStore{blobs: make(map[string][]string)}
}

func (m *memLocalStore) Get(_ context.Context, deviceID string) ([]string, error) {
	return append([]string(nil), m.blobs[deviceID]...), nil
}

func (m *memLocalStore) Put(_ context.Context, deviceID string, tripIDs []string) error {
	m.blobs[deviceID] = append([]string(nil), tripIDs...)
	return nil
}

type memReviewRepo struct {
	reviews []domain.Review
}

func (m *memReviewRepo) Create(_ context.Context, review *domain.Review) (*domain.Review, error) {
	stored := *review
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	m.reviews = append(m.reviews, stored)
	return &stored, nil
}

func (m *memReviewRepo) ListByTrip(_ context.Context, tripID string) ([]domain.Review, error) {
	out := make([]domain.Review, 0)
	for i := len(m.reviews) - 1; i >= 0; i-- {
		if m.reviews[i].TripID == tripID {
			out = append(out, m.reviews[i])
		}
	}
	return out, nil
}

type memStorage struct {
	uploads int
}

func (m *memStorage) Upload(_ context.Context, _ string, objectName, _ string, reader io.Reader, _ int64) (string, error) {
	if _, err := io.ReadAll(reader); err != nil {
		return "", err
	}
	m.uploads++
	return "https://cdn.test/" + objectName, nil
}

type testEnv struct {
	e            *echo.Echo
	jwt          *util.JWTManager
	favoriteRepo *memFavoriteRepo
	localStore   *memLocalStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	jwtManager := util.NewJWTManager("test-secret", time.Hour)
	identitySvc := service.NewIdentityService(jwtManager)

	favoriteRepo := newMemFavoriteRepo()
	localStore := newMemLocalStore()
	favoriteSvc := service.NewFavoriteService(favoriteRepo, localStore, nil)

	reviewSvc := service.NewReviewService(&memReviewRepo{}, &memStorage{}, nil, service.ReviewServiceConfig{
		Bucket: "terravia-reviews",
	})

	e := NewRouter([]string{"*"})
	RegisterFavorites(e, identitySvc, favoriteSvc)
	RegisterReviews(e, identitySvc, reviewSvc)

	return &testEnv{
		e:            e,
		jwt:          jwtManager,
		favoriteRepo: favoriteRepo,
		localStore:   localStore,
	}
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := map[string]any{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestToggleFavorite_AnonymousRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/favorites/trip-42/toggle", nil)
	req.Header.Set(deviceIDHeader, "device-1")
	rec := env.do(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	tripIDs, _ := body["trip_ids"].([]any)
	if len(tripIDs) != 1 || tripIDs[0] != "trip-42" {
		t.Fatalf("expected [trip-42], got %v", body["trip_ids"])
	}

	// No remote row for an anonymous toggle.
	if len(env.favoriteRepo.sets) != 0 {
		t.Fatalf("anonymous toggle created remote rows: %v", env.favoriteRepo.sets)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/favorites/trip-42/toggle", nil)
	req.Header.Set(deviceIDHeader, "device-1")
	rec = env.do(req)
	body = decodeBody(t, rec)
	tripIDs, _ = body["trip_ids"].([]any)
	if len(tripIDs) != 0 {
		t.Fatalf("expected empty set after second toggle, got %v", body["trip_ids"])
	}
}

func TestToggleFavorite_AuthenticatedUsesRemoteStore(t *testing.T) {
	env := newTestEnv(t)

	userID := uuid.New()
	token, _, err := env.jwt.Generate(userID)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/favorites/trip-7/toggle", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(deviceIDHeader, "device-1")
	rec := env.do(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if got := env.favoriteRepo.sets[userID]; len(got) != 1 || got[0] != "trip-7" {
		t.Fatalf("expected remote row for trip-7, got %v", got)
	}
	if len(env.localStore.blobs) != 0 {
		t.Fatalf("authenticated toggle touched the local blob: %v", env.localStore.blobs)
	}
}

func TestToggleFavorite_IssuesDeviceCookie(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/favorites/trip-1/toggle", nil)
	rec := env.do(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	found := false
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == deviceCookieName && cookie.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a device cookie on first anonymous request")
	}
}

func TestSubmitReview_AnonymousWithName(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	_ = form.WriteField("stars", "5")
	_ = form.WriteField("review_comment", "Great trip")
	_ = form.WriteField("name", "Maria")
	_ = form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/trips/t1/reviews", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := env.do(req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Fatalf("expected success envelope, got %v", body)
	}
	data, _ := body["data"].(map[string]any)
	if data["verified"] != false || data["name"] != "Maria" {
		t.Fatalf("expected unverified review by Maria, got %v", data)
	}
}

func TestSubmitReview_ValidationFailureShape(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	_ = form.WriteField("stars", "9")
	_ = form.WriteField("review_comment", "Great trip")
	_ = form.WriteField("name", "Maria")
	_ = form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/trips/t1/reviews", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := env.do(req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != false {
		t.Fatalf("expected failure envelope, got %v", body)
	}
	if body["error"] == nil || body["error"] == "" {
		t.Fatalf("expected an error reason, got %v", body)
	}
}

func TestListReviews_EmptyTripIsOK(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trips/t1/reviews", nil)
	rec := env.do(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	data, ok := body["data"].([]any)
	if !ok || len(data) != 0 {
		t.Fatalf("expected empty data array, got %v", body)
	}
}
