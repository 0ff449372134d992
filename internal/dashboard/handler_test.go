package dashboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/KI7MT/ki7mt-sunspot-dash/internal/common"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	stats := common.NewStats()
	d := NewDefaultDispatcher(testDataset(t, 1975, 2015), stats)
	return SetupRouter(NewHandler(d, stats, "test"))
}

func doRequest(r http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Invalid JSON %q: %v", w.Body.String(), err)
	}
	return env
}

func TestHealthAndIndex(t *testing.T) {
	r := setupTestRouter(t)

	if w := doRequest(r, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200 from /health, got %d", w.Code)
	}

	w := doRequest(r, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Historical Sunspot Activity", "LASCO C2", "Last Updated:", `id="year_min"`} {
		if !strings.Contains(body, want) {
			t.Errorf("Index page missing %q", want)
		}
	}
}

func TestGetSunspot(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/v1/sunspot?year_min=1980&year_max=1985&window=3", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var view SunspotView
	if err := json.Unmarshal(decode(t, w).Data, &view); err != nil {
		t.Fatalf("Invalid view: %v", err)
	}
	if len(view.Rows) != 72 || len(view.Smoothed) != 70 {
		t.Errorf("Expected 72 rows and 70 smoothed, got %d and %d", len(view.Rows), len(view.Smoothed))
	}
}

func TestGetSunspotRejectsBadControls(t *testing.T) {
	r := setupTestRouter(t)

	for _, target := range []string{
		"/api/v1/sunspot?window=0",
		"/api/v1/sunspot?year_min=1900",
		"/api/v1/sunspot?year_min=abc",
		"/api/v1/cycle?cycle=25",
	} {
		w := doRequest(r, http.MethodGet, target, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, w.Code)
		}
	}
}

func TestGetImage(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/v1/image?image=LASCO+C2", nil)
	var view ImageView
	if err := json.Unmarshal(decode(t, w).Data, &view); err != nil {
		t.Fatalf("Invalid view: %v", err)
	}
	if len(view.Images) != 1 || view.Images[0].Title != "LASCO C2" {
		t.Errorf("Expected LASCO C2, got %+v", view.Images)
	}

	w = doRequest(r, http.MethodGet, "/api/v1/image?image=nonexistent", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for unknown image, got %d", w.Code)
	}
	if err := json.Unmarshal(decode(t, w).Data, &view); err != nil {
		t.Fatalf("Invalid view: %v", err)
	}
	if len(view.Images) != 0 {
		t.Errorf("Expected no images, got %d", len(view.Images))
	}
}

func TestPostDispatch(t *testing.T) {
	r := setupTestRouter(t)

	body := []byte(`{"input":"cycle_tune","controls":{"year_min":1980,"year_max":1981,"month_min":1,"month_max":2,"cycle":11}}`)
	w := doRequest(r, http.MethodPost, "/api/v1/dispatch", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var outputs map[string]json.RawMessage
	if err := json.Unmarshal(decode(t, w).Data, &outputs); err != nil {
		t.Fatalf("Invalid outputs: %v", err)
	}
	if len(outputs) != 1 {
		t.Fatalf("Expected only spt_cycle, got %d outputs", len(outputs))
	}

	var view CycleView
	if err := json.Unmarshal(outputs["spt_cycle"], &view); err != nil {
		t.Fatalf("Invalid cycle view: %v", err)
	}
	if len(view.Points) != 4 {
		t.Errorf("Expected 4 points, got %d", len(view.Points))
	}

	w = doRequest(r, http.MethodPost, "/api/v1/dispatch", []byte(`{"input":"bogus"}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown input, got %d", w.Code)
	}

	w = doRequest(r, http.MethodPost, "/api/v1/dispatch", []byte(`{}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing input, got %d", w.Code)
	}
}

func TestCharts(t *testing.T) {
	r := setupTestRouter(t)

	for _, target := range []string{
		"/charts/sunspot.png?year_min=1980&year_max=1990&window=6",
		"/charts/cycle.png?year_min=1980&year_max=2010&month_min=2&month_max=5&cycle=11",
	} {
		w := doRequest(r, http.MethodGet, target, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", target, w.Code, w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("%s: expected image/png, got %q", target, ct)
		}
		if !bytes.HasPrefix(w.Body.Bytes(), pngMagic) {
			t.Errorf("%s: body is not a PNG", target)
		}
	}

	// One year, one month: a single point
	w := doRequest(r, http.MethodGet, "/charts/cycle.png?year_min=1980&year_max=1980&month_min=3&month_max=3", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for a single point, got %d", w.Code)
	}
}

func TestDatasetAndStats(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/v1/dataset", nil)
	var info DatasetInfo
	if err := json.Unmarshal(decode(t, w).Data, &info); err != nil {
		t.Fatalf("Invalid dataset info: %v", err)
	}
	if info.Records != 41*12 || info.FirstYear != 1975 || info.LastYear != 2015 || info.Source != "test" {
		t.Errorf("Unexpected dataset info: %+v", info)
	}

	doRequest(r, http.MethodGet, "/api/v1/sunspot", nil)

	w = doRequest(r, http.MethodGet, "/api/v1/stats", nil)
	var snap common.Snapshot
	if err := json.Unmarshal(decode(t, w).Data, &snap); err != nil {
		t.Fatalf("Invalid stats: %v", err)
	}
	if snap.Outputs["sunspot"].Count != 1 {
		t.Errorf("Expected one sunspot recompute, got %+v", snap.Outputs)
	}
}
