package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joseph-ayodele/fieldops/internal/cache"
	"github.com/joseph-ayodele/fieldops/internal/common"
	"github.com/joseph-ayodele/fieldops/internal/entity"
	"github.com/joseph-ayodele/fieldops/internal/estimate"
	"github.com/joseph-ayodele/fieldops/internal/export"
	"github.com/joseph-ayodele/fieldops/internal/gamification"
	"github.com/joseph-ayodele/fieldops/internal/geo"
	"github.com/joseph-ayodele/fieldops/internal/repository"
	"github.com/joseph-ayodele/fieldops/internal/services/estimates"
	gamesvc "github.com/joseph-ayodele/fieldops/internal/services/gamification"
	"github.com/joseph-ayodele/fieldops/internal/services/timesheet"
)

var yard = common.BusinessConfig{Latitude: 36.6484, Longitude: -80.2737, GeofenceRadiusMeters: 804.672}

func newTestHandler(t *testing.T, limit common.RateLimitConfig) http.Handler {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := repository.OpenSQLite(ctx, filepath.Join(t.TempDir(), "api.db"), logger)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { repository.Close(db, logger) })
	if err := repository.Migrate(db, logger); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	c, err := cache.New(common.CacheConfig{Size: 128, TTL: time.Minute}, logger)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}

	employees := repository.NewEmployeeRepository(db, logger)
	timesheets := repository.NewTimesheetRepository(db, logger)
	estimateRepo := repository.NewEstimateRepository(db, logger)
	store := repository.NewKVStore(db, logger)
	composer := estimate.NewComposer(estimate.DefaultSettings(), geo.Point{Latitude: yard.Latitude, Longitude: yard.Longitude})

	deps := Deps{
		Timesheets:   timesheet.NewService(employees, timesheets, yard, logger),
		Estimates:    estimates.NewService(composer, estimateRepo, logger),
		Gamification: gamesvc.NewService(store, employees, c, logger),
		Flags:        gamification.NewFlags(store, nil, logger),
		Export:       export.NewService(timesheets, estimateRepo, employees, logger),
		Cache:        c,
		Health: func(ctx context.Context) error {
			return repository.HealthCheck(ctx, db, time.Second, logger)
		},
	}
	return NewServer(deps, limit, logger).Handler()
}

type call struct {
	method   string
	path     string
	body     string
	employee string
}

func do(t *testing.T, h http.Handler, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if c.body != "" {
		body = strings.NewReader(c.body)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if c.employee != "" {
		req.Header.Set(HeaderEmployeeID, c.employee)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t, common.RateLimitConfig{})
	rec := do(t, h, call{method: http.MethodGet, path: "/healthz"})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("healthz = %d %s", rec.Code, rec.Body)
	}
	if rec.Header().Get(HeaderRequestID) == "" {
		t.Fatal("missing request id header")
	}
}

func TestMaterialsAndWeather(t *testing.T) {
	h := newTestHandler(t, common.RateLimitConfig{})

	rec := do(t, h, call{method: http.MethodPost, path: "/api/materials/calc",
		body: `{"sealcoat":{"areaSqFt":10000,"coats":2,"coverageSqFtPerGallon":100},"crack":{"linearFeet":500,"poundsPerLinearFoot":0.12},"striping":{"linearFeet":1000,"coverageLfPerGallon":250}}`})
	if rec.Code != http.StatusOK {
		t.Fatalf("materials = %d %s", rec.Code, rec.Body)
	}
	var mat map[string]float64
	decodeBody(t, rec, &mat)
	if mat["sealcoatGallons"] != 200 || mat["crackFillerPounds"] != 60 || mat["stripingGallons"] != 4 {
		t.Fatalf("materials = %v", mat)
	}

	rec = do(t, h, call{method: http.MethodPost, path: "/api/materials/calc", body: `{"sealcoat":{"areaSqFt":-5,"coats":1,"coverageSqFtPerGallon":100}}`})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative area = %d", rec.Code)
	}
	var eb errorBody
	decodeBody(t, rec, &eb)
	if len(eb.Fields) == 0 || eb.Fields[0].Field != "sealcoat.areaSqFt" {
		t.Fatalf("error body = %+v", eb)
	}

	rec = do(t, h, call{method: http.MethodPost, path: "/api/weather/classify", body: `{"tempF":30,"condition":"Clear","windMph":0}`})
	if !strings.Contains(rec.Body.String(), `"DELAY"`) {
		t.Fatalf("30F = %s", rec.Body)
	}
	rec = do(t, h, call{method: http.MethodPost, path: "/api/weather/classify", body: `{"tempF":70,"condition":"Clear","windMph":20}`})
	if !strings.Contains(rec.Body.String(), `"CAUTION"`) {
		t.Fatalf("windy = %s", rec.Body)
	}

	rec = do(t, h, call{method: http.MethodPost, path: "/api/weather/recommendation",
		body: `{"forecast":[{"time":"2026-06-01T08:00:00Z","tempF":45,"precipitationIn":0,"windMph":5},{"time":"2026-06-01T11:00:00Z","tempF":65,"precipitationIn":0,"windMph":5}]}`})
	var win windowResponse
	decodeBody(t, rec, &win)
	if win.Window == nil || win.Window.Start.Hour() != 11 || win.Window.End.Hour() != 15 {
		t.Fatalf("window = %+v", win.Window)
	}
	rec = do(t, h, call{method: http.MethodPost, path: "/api/weather/recommendation", body: `{"forecast":[]}`})
	if strings.TrimSpace(rec.Body.String()) != `{"window":null}` {
		t.Fatalf("empty forecast = %s", rec.Body)
	}
}

func TestGeoEndpoints(t *testing.T) {
	h := newTestHandler(t, common.RateLimitConfig{})

	rec := do(t, h, call{method: http.MethodPost, path: "/api/geo/fences",
		body: `{"point":{"latitude":36.6484,"longitude":-80.2737},"fences":[{"id":"yard","name":"Yard","center":{"latitude":36.6484,"longitude":-80.2737},"radiusMeters":100},{"id":"north","center":{"latitude":36.7,"longitude":-80.2737},"radiusMeters":1000}]}`})
	if rec.Code != http.StatusOK {
		t.Fatalf("fences = %d %s", rec.Code, rec.Body)
	}
	var fences fenceCheckResponse
	decodeBody(t, rec, &fences)
	if len(fences.Checks) != 2 || fences.Checks[0].FenceID != "yard" || !fences.Checks[0].Inside {
		t.Fatalf("checks = %+v", fences.Checks)
	}
	if fences.Checks[1].Inside || fences.Checks[1].DistanceMeters < 5700 || fences.Checks[1].DistanceMeters > 5800 {
		t.Fatalf("north = %+v", fences.Checks[1])
	}

	rec = do(t, h, call{method: http.MethodPost, path: "/api/geo/fences", body: `{"point":{"latitude":91,"longitude":0},"fences":[]}`})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad latitude = %d", rec.Code)
	}

	rec = do(t, h, call{method: http.MethodPost, path: "/api/geo/route",
		body: `{"path":[{"latitude":36.6484,"longitude":-80.2737},{"latitude":36.7,"longitude":-80.2737},{"latitude":36.6484,"longitude":-80.2737}]}`})
	var route routeResponse
	decodeBody(t, rec, &route)
	if route.Legs != 2 || route.Miles != 7.13 {
		t.Fatalf("route = %+v", route)
	}
	rec = do(t, h, call{method: http.MethodPost, path: "/api/geo/route", body: `{"path":[]}`})
	decodeBody(t, rec, &route)
	if route.Legs != 0 || route.Miles != 0 {
		t.Fatalf("empty route = %+v", route)
	}
}

func TestTimesheetFlow(t *testing.T) {
	h := newTestHandler(t, common.RateLimitConfig{})

	rec := do(t, h, call{method: http.MethodPost, path: "/api/employees", body: `{"name":"Dana","hourlyRate":20,"role":"FOREMAN"}`})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create employee = %d %s", rec.Code, rec.Body)
	}
	var emp entity.Employee
	decodeBody(t, rec, &emp)
	id := emp.ID.String()

	clockIn := `{"action":"clock_in","latitude":36.6484,"longitude":-80.2737}`
	rec = do(t, h, call{method: http.MethodPost, path: "/api/timesheets", body: clockIn})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing employee header = %d", rec.Code)
	}

	rec = do(t, h, call{method: http.MethodPost, path: "/api/timesheets", body: clockIn, employee: id})
	if rec.Code != http.StatusCreated {
		t.Fatalf("clock in = %d %s", rec.Code, rec.Body)
	}
	var res timesheet.ClockResult
	decodeBody(t, rec, &res)
	if !res.LocationValid || res.Timesheet == nil {
		t.Fatalf("clock in result = %+v", res)
	}

	rec = do(t, h, call{method: http.MethodPost, path: "/api/timesheets", body: clockIn, employee: id})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "already clocked in") {
		t.Fatalf("double clock in = %d %s", rec.Code, rec.Body)
	}

	rec = do(t, h, call{method: http.MethodGet, path: "/api/timesheets/status", employee: id})
	if !strings.Contains(rec.Body.String(), `"clockedIn":true`) {
		t.Fatalf("status = %s", rec.Body)
	}

	rec = do(t, h, call{method: http.MethodPost, path: "/api/timesheets", body: `{"action":"clock_out","latitude":36.6484,"longitude":-80.2737}`, employee: id})
	if rec.Code != http.StatusOK {
		t.Fatalf("clock out = %d %s", rec.Code, rec.Body)
	}

	rec = do(t, h, call{method: http.MethodGet, path: "/api/timesheets?employeeId=" + id})
	var list []entity.Timesheet
	decodeBody(t, rec, &list)
	if len(list) != 1 || list[0].ClockOut == nil {
		t.Fatalf("list = %s", rec.Body)
	}

	rec = do(t, h, call{method: http.MethodGet, path: "/api/exports/timesheets.xlsx"})
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != xlsxContentType || rec.Body.Len() == 0 {
		t.Fatalf("export = %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Fatal("export is not a zip container")
	}
}

func TestEstimateEndpoints(t *testing.T) {
	h := newTestHandler(t, common.RateLimitConfig{})

	rec := do(t, h, call{method: http.MethodPost, path: "/api/estimates", body: `{"jobType":"SEALCOATING","squareFootage":10000,"jobAddress":"12 Main St"}`})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rec.Code, rec.Body)
	}
	var created createEstimateResponse
	decodeBody(t, rec, &created)
	if created.Estimate.Number != "EST-0001" || created.Breakdown.Total != 1318.11 {
		t.Fatalf("created = %+v", created.Estimate)
	}

	rec = do(t, h, call{method: http.MethodGet, path: "/api/estimates/" + created.Estimate.ID.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("get = %d %s", rec.Code, rec.Body)
	}
	rec = do(t, h, call{method: http.MethodGet, path: "/api/estimates/6f1c0b2e-7d3a-4b8e-9a51-0c2d4e6f8a10"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing = %d", rec.Code)
	}
	rec = do(t, h, call{method: http.MethodGet, path: "/api/estimates/nope"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id = %d", rec.Code)
	}

	rec = do(t, h, call{method: http.MethodPost, path: "/api/estimates", body: `{"jobType":"SEALCOTING","squareFootage":100}`})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "did you mean") {
		t.Fatalf("typo job type = %d %s", rec.Code, rec.Body)
	}

	rec = do(t, h, call{method: http.MethodGet, path: "/api/estimates?limit=5"})
	var list []entity.Estimate
	decodeBody(t, rec, &list)
	if len(list) != 1 {
		t.Fatalf("list = %s", rec.Body)
	}
}

func TestGamificationEndpoints(t *testing.T) {
	h := newTestHandler(t, common.RateLimitConfig{})
	rec := do(t, h, call{method: http.MethodPost, path: "/api/employees", body: `{"name":"Sam","hourlyRate":18}`})
	var emp entity.Employee
	decodeBody(t, rec, &emp)
	id := emp.ID.String()

	rec = do(t, h, call{method: http.MethodPost, path: "/api/gamification/xp", body: `{"amount":250}`, employee: id})
	if rec.Code != http.StatusOK {
		t.Fatalf("award = %d %s", rec.Code, rec.Body)
	}
	var view gamesvc.XPView
	decodeBody(t, rec, &view)
	if view.Level != 3 || view.XP != 0 {
		t.Fatalf("view = %+v", view)
	}

	rec = do(t, h, call{method: http.MethodPost, path: "/api/gamification/xp", body: `{"amount":0}`, employee: id})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("zero award = %d", rec.Code)
	}

	rec = do(t, h, call{method: http.MethodPost, path: "/api/gamification/jobs/complete", body: `{"totalCost":1000,"completedOnTime":true}`, employee: id})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"employeeXP":60`) {
		t.Fatalf("complete job = %d %s", rec.Code, rec.Body)
	}

	rec = do(t, h, call{method: http.MethodGet, path: "/api/gamification/leaderboard"})
	var board []gamification.LeaderboardEntry
	decodeBody(t, rec, &board)
	if len(board) != 1 || board[0].EmployeeID != id || board[0].TotalXP != 310 {
		t.Fatalf("board = %s", rec.Body)
	}

	rec = do(t, h, call{method: http.MethodPut, path: "/api/flags", body: `{"game_mode":true}`})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"game_mode":true`) {
		t.Fatalf("set flags = %d %s", rec.Code, rec.Body)
	}
	rec = do(t, h, call{method: http.MethodPut, path: "/api/flags", body: `{"dark_mode":true}`})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown flag = %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestHandler(t, common.RateLimitConfig{Window: time.Minute, Max: 2})
	for i := 0; i < 2; i++ {
		if rec := do(t, h, call{method: http.MethodGet, path: "/healthz"}); rec.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, rec.Code)
		}
	}
	rec := do(t, h, call{method: http.MethodGet, path: "/healthz"})
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Fatalf("third request = %d", rec.Code)
	}
}

func TestRecover(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }), RequestContext(logger), Recover(logger))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "boom") {
		t.Fatalf("recover = %d %s", rec.Code, rec.Body)
	}
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	h := newTestHandler(t, common.RateLimitConfig{Window: time.Minute, Max: 2})
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		last = httptest.NewRecorder()
		h.ServeHTTP(last, req)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third request with rotated X-Forwarded-For = %d, want 429", last.Code)
	}
}

func TestRateLimitBehindTrustedProxy(t *testing.T) {
	h := newTestHandler(t, common.RateLimitConfig{Window: time.Minute, Max: 1, TrustedProxies: []string{"192.0.2.0/24"}})
	send := func(xff string) int {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "192.0.2.10:4411"
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	if code := send("198.51.100.1"); code != http.StatusOK {
		t.Fatalf("first client = %d", code)
	}
	if code := send("198.51.100.2"); code != http.StatusOK {
		t.Fatalf("second client = %d, want its own window", code)
	}
	// a spoofed leftmost hop does not hide the address the proxy saw
	if code := send("10.9.9.9, 198.51.100.1"); code != http.StatusTooManyRequests {
		t.Fatalf("repeat client = %d, want 429", code)
	}
}

func TestClientIP(t *testing.T) {
	ps := newProxySet([]string{"10.0.0.0/8", "192.0.2.1", "not-an-ip"})
	tests := []struct {
		remote, xff, want string
	}{
		{"198.51.100.7:1000", "1.2.3.4", "198.51.100.7"},
		{"10.0.0.5:1000", "", "10.0.0.5"},
		{"10.0.0.5:1000", "1.2.3.4", "1.2.3.4"},
		{"10.0.0.5:1000", "1.2.3.4, 10.1.1.1", "1.2.3.4"},
		{"10.0.0.5:1000", "10.2.2.2, 10.1.1.1", "10.2.2.2"},
		{"192.0.2.1:1000", "bogus, 5.6.7.8", "5.6.7.8"},
		{"192.0.2.1:1000", "5.6.7.8, bogus", "192.0.2.1"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remote
		if tt.xff != "" {
			req.Header.Set("X-Forwarded-For", tt.xff)
		}
		if got := ps.clientIP(req); got != tt.want {
			t.Errorf("clientIP(%s, %q) = %s, want %s", tt.remote, tt.xff, got, tt.want)
		}
	}
}
