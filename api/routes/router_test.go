package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kolschhq/kolsch-backend/internal/auth"
	"github.com/kolschhq/kolsch-backend/internal/storage"
	"github.com/kolschhq/kolsch-backend/pkg/config"
	"github.com/kolschhq/kolsch-backend/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		DB:  config.DBConfig{Driver: config.DriverMemory},
		Session: config.SessionConfig{
			CookieName:    "kolsch_sid",
			TTL:           time.Hour,
			SweepInterval: time.Minute,
		},
		Password: config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()
	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	store := storage.NewMemoryStore(storage.Options{})
	svc, err := auth.NewService(auth.ServiceParams{
		Store:          store,
		PasswordConfig: cfg.Password,
		SessionConfig:  cfg.Session,
	})
	if err != nil {
		t.Fatalf("build auth service: %v", err)
	}
	return NewRouter(cfg, logg, store, svc, nil), cfg
}

func doJSON(t *testing.T, router http.Handler, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func signup(t *testing.T, router http.Handler, username string) []*http.Cookie {
	t.Helper()
	body := fmt.Sprintf(`{
		"username": %q,
		"email": "%s@example.com",
		"password": "super-secret",
		"firstName": "Sam",
		"lastName": "Brewer",
		"breweryName": "%s brewing",
		"breweryType": "microbrewery",
		"breweryLocation": "Portland, OR"
	}`, username, username, username)
	resp := doJSON(t, router, http.MethodPost, "/api/signup", body, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for signup got %d: %s", resp.Code, resp.Body.String())
	}
	cookies := resp.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie on signup")
	}
	return cookies
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error.Code
}

func TestProtectedRoutesRejectMissingSession(t *testing.T) {
	router, _ := newTestRouter(t)
	for _, path := range []string{"/api/inventory/", "/api/stats"} {
		resp := doJSON(t, router, http.MethodGet, path, "", nil)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s without cookie got %d", path, resp.Code)
		}
	}
}

func TestSignupLoginLogoutFlow(t *testing.T) {
	router, _ := newTestRouter(t)
	cookies := signup(t, router, "sam")

	resp := doJSON(t, router, http.MethodGet, "/api/auth/user", "", cookies)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for current user got %d: %s", resp.Code, resp.Body.String())
	}
	var current struct {
		User *struct {
			Username  string  `json:"username"`
			Role      string  `json:"role"`
			BreweryID *string `json:"breweryId"`
		} `json:"user"`
		Brewery *struct {
			Name string `json:"name"`
		} `json:"brewery"`
	}
	decodeData(t, resp, &current)
	if current.User == nil || current.User.Username != "sam" || current.User.Role != "owner" || current.User.BreweryID == nil {
		t.Fatalf("unexpected current user: %+v", current.User)
	}
	if current.Brewery == nil || current.Brewery.Name != "sam brewing" {
		t.Fatalf("unexpected brewery: %+v", current.Brewery)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/logout", "", cookies)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for logout got %d", resp.Code)
	}

	// Anonymous auth checks answer with null data, not 401.
	resp = doJSON(t, router, http.MethodGet, "/api/auth/user", "", cookies)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 after logout got %d", resp.Code)
	}
	var nulled struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &nulled); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if string(nulled.Data) != "null" {
		t.Fatalf("expected null data after logout got %s", nulled.Data)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/login", `{"username":"sam","password":"super-secret"}`, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for login got %d: %s", resp.Code, resp.Body.String())
	}
	if len(resp.Result().Cookies()) == 0 {
		t.Fatal("expected session cookie on login")
	}

	resp = doJSON(t, router, http.MethodPost, "/api/login", `{"username":"sam","password":"wrong"}`, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password got %d", resp.Code)
	}
}

func TestInventoryCRUDOverHTTP(t *testing.T) {
	router, _ := newTestRouter(t)
	cookies := signup(t, router, "sam")

	create := `{"name":"Cascade Hops","quantity":50,"currentQuantity":50,"minimumQuantity":10,"unit":"kg"}`
	resp := doJSON(t, router, http.MethodPost, "/api/inventory/", create, cookies)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for create got %d: %s", resp.Code, resp.Body.String())
	}
	var item struct {
		ID     int    `json:"id"`
		Name   string `json:"name"`
		Status string `json:"status"`
	}
	decodeData(t, resp, &item)
	if item.ID == 0 || item.Name != "Cascade Hops" || item.Status != "good" {
		t.Fatalf("unexpected created item: %+v", item)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/inventory/", "", cookies)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for list got %d", resp.Code)
	}
	var items []json.RawMessage
	decodeData(t, resp, &items)
	if len(items) != 1 {
		t.Fatalf("expected 1 item got %d", len(items))
	}

	patch := `{"currentQuantity":5}`
	resp = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/inventory/%d", item.ID), patch, cookies)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for patch got %d: %s", resp.Code, resp.Body.String())
	}
	var updated struct {
		CurrentQuantity int `json:"currentQuantity"`
	}
	decodeData(t, resp, &updated)
	if updated.CurrentQuantity != 5 {
		t.Fatalf("expected currentQuantity 5 got %d", updated.CurrentQuantity)
	}

	resp = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/inventory/%d", item.ID), "", cookies)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for delete got %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/inventory/%d", item.ID), "", cookies)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete got %d", resp.Code)
	}
}

func TestValidationErrorsSurfaceAsBadRequest(t *testing.T) {
	router, _ := newTestRouter(t)
	cookies := signup(t, router, "sam")

	resp := doJSON(t, router, http.MethodPost, "/api/inventory/", `{"quantity":-1}`, cookies)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
	if code := errorCode(t, resp); code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR got %q", code)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/inventory/", "{", cookies)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON got %d", resp.Code)
	}
}

func TestTenantIsolationOverHTTP(t *testing.T) {
	router, _ := newTestRouter(t)
	samCookies := signup(t, router, "sam")
	rivalCookies := signup(t, router, "rival")

	create := `{"name":"Pilsner Malt","quantity":100,"currentQuantity":100,"minimumQuantity":20,"unit":"kg"}`
	resp := doJSON(t, router, http.MethodPost, "/api/inventory/", create, samCookies)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	var item struct {
		ID int `json:"id"`
	}
	decodeData(t, resp, &item)

	resp = doJSON(t, router, http.MethodGet, "/api/inventory/", "", rivalCookies)
	var items []json.RawMessage
	decodeData(t, resp, &items)
	if len(items) != 0 {
		t.Fatalf("expected rival to see 0 items got %d", len(items))
	}

	// Cross-tenant reads are indistinguishable from missing rows.
	resp = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/inventory/%d", item.ID), "", rivalCookies)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for cross-tenant read got %d", resp.Code)
	}
	resp = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/inventory/%d", item.ID), "", rivalCookies)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for cross-tenant delete got %d", resp.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	cookies := signup(t, router, "sam")

	low := `{"name":"Saaz Hops","quantity":5,"currentQuantity":2,"minimumQuantity":10,"unit":"kg"}`
	if resp := doJSON(t, router, http.MethodPost, "/api/inventory/", low, cookies); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	stocked := `{"name":"Wheat Malt","quantity":80,"currentQuantity":80,"minimumQuantity":20,"unit":"kg"}`
	if resp := doJSON(t, router, http.MethodPost, "/api/inventory/", stocked, cookies); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	if resp := doJSON(t, router, http.MethodPost, "/api/equipment/", `{"name":"Fermenter 1","type":"fermenter","status":"active"}`, cookies); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if resp := doJSON(t, router, http.MethodPost, "/api/equipment/", `{"name":"Kettle","type":"kettle"}`, cookies); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	today := time.Now().Format(time.RFC3339)
	nextWeek := time.Now().AddDate(0, 0, 10).Format(time.RFC3339)
	inProgress := fmt.Sprintf(`{"title":"IPA batch","startDate":%q,"endDate":%q,"status":"in-progress"}`, today, today)
	if resp := doJSON(t, router, http.MethodPost, "/api/schedules/", inProgress, cookies); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	upcoming := fmt.Sprintf(`{"title":"Stout batch","startDate":%q,"endDate":%q}`, nextWeek, nextWeek)
	if resp := doJSON(t, router, http.MethodPost, "/api/schedules/", upcoming, cookies); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	resp := doJSON(t, router, http.MethodGet, "/api/stats", "", cookies)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for stats got %d", resp.Code)
	}
	var stats struct {
		BatchesInProcess     int `json:"batchesInProcess"`
		TotalInventoryItems  int `json:"totalInventoryItems"`
		LowStockItems        int `json:"lowStockItems"`
		EquipmentUtilization int `json:"equipmentUtilization"`
		ScheduledBrews       int `json:"scheduledBrews"`
		ThisWeekBrews        int `json:"thisWeekBrews"`
	}
	decodeData(t, resp, &stats)
	if stats.BatchesInProcess != 1 {
		t.Fatalf("expected 1 batch in process got %d", stats.BatchesInProcess)
	}
	if stats.TotalInventoryItems != 2 || stats.LowStockItems != 1 {
		t.Fatalf("unexpected inventory stats: %+v", stats)
	}
	if stats.EquipmentUtilization != 50 {
		t.Fatalf("expected 50%% utilization got %d", stats.EquipmentUtilization)
	}
	if stats.ScheduledBrews != 1 {
		t.Fatalf("expected 1 scheduled brew got %d", stats.ScheduledBrews)
	}
	if stats.ThisWeekBrews != 1 {
		t.Fatalf("expected 1 brew this week got %d", stats.ThisWeekBrews)
	}
}

func TestPriceHistoryRoutes(t *testing.T) {
	router, _ := newTestRouter(t)
	cookies := signup(t, router, "sam")

	create := `{"name":"Centennial Hops","quantity":30,"currentQuantity":30,"minimumQuantity":5,"unit":"kg"}`
	resp := doJSON(t, router, http.MethodPost, "/api/inventory/", create, cookies)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	var item struct {
		ID int `json:"id"`
	}
	decodeData(t, resp, &item)

	entry := fmt.Sprintf(`{"ingredientId":%d,"price":"14.50","date":%q}`, item.ID, time.Now().Format(time.RFC3339))
	resp = doJSON(t, router, http.MethodPost, "/api/price-history/", entry, cookies)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for price entry got %d: %s", resp.Code, resp.Body.String())
	}

	ghost := fmt.Sprintf(`{"ingredientId":999,"price":"1.00","date":%q}`, time.Now().Format(time.RFC3339))
	resp = doJSON(t, router, http.MethodPost, "/api/price-history/", ghost, cookies)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for ghost ingredient got %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/price-history/ingredient/%d", item.ID), "", cookies)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for ingredient series got %d", resp.Code)
	}
	var entries []json.RawMessage
	decodeData(t, resp, &entries)
	if len(entries) != 1 {
		t.Fatalf("expected 1 price entry got %d", len(entries))
	}
}

func TestHealthRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, http.MethodGet, "/health/live", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live got %d", resp.Code)
	}
	resp = doJSON(t, router, http.MethodGet, "/health/ready", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for ready got %d", resp.Code)
	}
}

func TestSignupValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/signup", `{"username":"x"}`, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for incomplete signup got %d", resp.Code)
	}
	if code := errorCode(t, resp); code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR got %q", code)
	}
}

// A user whose brewery was removed keeps a live session but no tenant.
// Every list and aggregate endpoint must treat that session as empty,
// never as a view over other tenants' rows.
func TestDetachedUserSeesNoTenantData(t *testing.T) {
	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	store := storage.NewMemoryStore(storage.Options{CascadeDelete: true})
	svc, err := auth.NewService(auth.ServiceParams{
		Store:          store,
		PasswordConfig: cfg.Password,
		SessionConfig:  cfg.Session,
	})
	if err != nil {
		t.Fatalf("build auth service: %v", err)
	}
	router := NewRouter(cfg, logg, store, svc, nil)

	aliceCookies := signup(t, router, "alice")
	resp := doJSON(t, router, http.MethodPost, "/api/inventory/", `{
		"name": "Secret Hops",
		"quantity": 10,
		"currentQuantity": 10,
		"minimumQuantity": 2,
		"unit": "kg"
	}`, aliceCookies)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for alice's item got %d: %s", resp.Code, resp.Body.String())
	}

	bobCookies := signup(t, router, "bob")
	resp = doJSON(t, router, http.MethodGet, "/api/auth/user", "", bobCookies)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for current user got %d", resp.Code)
	}
	var current struct {
		User *struct {
			BreweryID *string `json:"breweryId"`
		} `json:"user"`
	}
	decodeData(t, resp, &current)
	if current.User == nil || current.User.BreweryID == nil {
		t.Fatalf("expected bob to start with a brewery, got %+v", current.User)
	}

	// Cascade delete detaches bob's account from its brewery.
	deleted, err := store.DeleteBrewery(context.Background(), *current.User.BreweryID)
	if err != nil || !deleted {
		t.Fatalf("delete brewery: deleted=%v err=%v", deleted, err)
	}

	for _, path := range []string{
		"/api/inventory/",
		"/api/equipment/",
		"/api/recipes/",
		"/api/schedules/",
		"/api/ingredient-sources/",
		"/api/price-history/",
	} {
		resp = doJSON(t, router, http.MethodGet, path, "", bobCookies)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d: %s", path, resp.Code, resp.Body.String())
		}
		var rows []json.RawMessage
		decodeData(t, resp, &rows)
		if len(rows) != 0 {
			t.Fatalf("expected empty list for detached user on %s, got %d rows", path, len(rows))
		}
	}

	resp = doJSON(t, router, http.MethodGet, "/api/stats", "", bobCookies)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for stats got %d: %s", resp.Code, resp.Body.String())
	}
	var stats struct {
		TotalInventoryItems int `json:"totalInventoryItems"`
		BatchesInProcess    int `json:"batchesInProcess"`
	}
	decodeData(t, resp, &stats)
	if stats.TotalInventoryItems != 0 || stats.BatchesInProcess != 0 {
		t.Fatalf("expected zeroed stats for detached user, got %+v", stats)
	}
}
