package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cogniplay/internal/localstore"
	"cogniplay/internal/security"
	"cogniplay/internal/service"
)

func newTestAPI(t *testing.T) http.Handler {
	t.Helper()
	db := localstore.NewDatabase(localstore.NewMemoryStore())
	tokens := security.NewTokenManager("test-secret", time.Hour)
	authService := service.NewAuthService(db, tokens, db, nil, nil)
	progressService := service.NewProgressService(db)
	leaderboardService := service.NewLeaderboardService(db)

	limiter := security.NewRateLimiter(1000, time.Minute)
	middleware := NewMiddleware(authService, limiter, nil)
	authHandler := NewAuthHandler(authService, AuthHandlerConfig{}, nil)
	progressHandler := NewProgressHandler(progressService, nil)
	leaderboardHandler := NewLeaderboardHandler(leaderboardService, nil)
	gamesHandler := NewGamesHandler(progressService, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("GET /api/games", gamesHandler.Catalog)
	mux.HandleFunc("GET /api/games/{id}", gamesHandler.Game)
	mux.HandleFunc("GET /api/progress", middleware.RequireAuth(progressHandler.Progress))
	mux.HandleFunc("POST /api/progress/sessions", middleware.RequireAuth(progressHandler.SubmitSession))
	mux.HandleFunc("GET /api/leaderboard", leaderboardHandler.Leaderboard)
	return mux
}

func doJSON(t *testing.T, h http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("response is not JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return rec, envelope
}

func registerAndToken(t *testing.T, h http.Handler) string {
	t.Helper()
	rec, envelope := doJSON(t, h, http.MethodPost, "/api/auth/register", "",
		`{"email":"ana@example.com","password":"secret1","name":"Ana"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(envelope["data"], &data); err != nil {
		t.Fatalf("decode register data: %v", err)
	}
	if data.Token == "" {
		t.Fatal("register returned no token")
	}
	return data.Token
}

func TestRegisterLoginMe(t *testing.T) {
	api := newTestAPI(t)
	token := registerAndToken(t, api)

	rec, envelope := doJSON(t, api, http.MethodGet, "/api/auth/me", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d", rec.Code)
	}
	var me struct {
		Email        string `json:"email"`
		PasswordHash string `json:"passwordHash"`
	}
	if err := json.Unmarshal(envelope["data"], &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Email != "ana@example.com" {
		t.Errorf("email = %q", me.Email)
	}
	if me.PasswordHash != "" {
		t.Error("credential material must never be returned")
	}

	rec, _ = doJSON(t, api, http.MethodPost, "/api/auth/login", "",
		`{"email":"ana@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", rec.Code)
	}

	// Unknown email must not be distinguishable from a wrong password
	rec, _ = doJSON(t, api, http.MethodPost, "/api/auth/login", "",
		`{"email":"nobody@example.com","password":"secret1"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown email login status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	api := newTestAPI(t)

	rec, envelope := doJSON(t, api, http.MethodGet, "/api/progress", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var success bool
	if err := json.Unmarshal(envelope["success"], &success); err != nil || success {
		t.Error("expected success=false envelope")
	}
}

func TestSubmitSessionEndpoint(t *testing.T) {
	api := newTestAPI(t)
	token := registerAndToken(t, api)

	end := time.Now().Format(time.RFC3339)
	start := time.Now().Add(-time.Minute).Format(time.RFC3339)
	body := `{
		"id": "memory_t1",
		"gameType": "memory",
		"startTime": "` + start + `",
		"endTime": "` + end + `",
		"score": 950,
		"maxScore": 1000,
		"accuracy": 100,
		"timeSpent": 60,
		"completed": true,
		"performanceRating": "excellent"
	}`

	rec, envelope := doJSON(t, api, http.MethodPost, "/api/progress/sessions", token, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body.String())
	}

	var result struct {
		Progress struct {
			TotalScore   int `json:"totalScore"`
			CurrentLevel int `json:"currentLevel"`
		} `json:"progress"`
		Outcome struct {
			NewAchievements []struct {
				ID string `json:"id"`
			} `json:"newAchievements"`
		} `json:"outcome"`
	}
	if err := json.Unmarshal(envelope["data"], &result); err != nil {
		t.Fatalf("decode submit data: %v", err)
	}
	if result.Progress.TotalScore != 950 {
		t.Errorf("totalScore = %d", result.Progress.TotalScore)
	}
	ids := map[string]bool{}
	for _, a := range result.Outcome.NewAchievements {
		ids[a.ID] = true
	}
	for _, want := range []string{"first_game", "excellent_performance", "perfect_accuracy"} {
		if !ids[want] {
			t.Errorf("expected achievement %s in %v", want, ids)
		}
	}

	// An unfinished session is rejected
	rec, _ = doJSON(t, api, http.MethodPost, "/api/progress/sessions", token,
		`{"id":"memory_t2","gameType":"memory","completed":false}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unfinished submit status = %d, want 400", rec.Code)
	}
}

func TestGamesEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec, envelope := doJSON(t, api, http.MethodGet, "/api/games", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("catalog status = %d", rec.Code)
	}
	var catalog []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(envelope["data"], &catalog); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if len(catalog) == 0 {
		t.Fatal("catalog is empty")
	}

	rec, _ = doJSON(t, api, http.MethodGet, "/api/games/no-such-game", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown game status = %d, want 404", rec.Code)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	api := newTestAPI(t)
	registerAndToken(t, api)

	rec, envelope := doJSON(t, api, http.MethodGet, "/api/leaderboard", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("leaderboard status = %d", rec.Code)
	}
	var entries []struct {
		Rank int    `json:"rank"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(envelope["data"], &entries); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	if len(entries) != 1 || entries[0].Rank != 1 {
		t.Errorf("entries = %+v", entries)
	}

	rec, _ = doJSON(t, api, http.MethodGet, "/api/leaderboard?sort=elo", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad metric status = %d, want 400", rec.Code)
	}
}
