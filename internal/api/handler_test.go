package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/unw4/TrustChain/internal/assets"
	"github.com/unw4/TrustChain/internal/fanout"
	"github.com/unw4/TrustChain/internal/scheduler"
	"github.com/unw4/TrustChain/internal/sui"
)

// fakeGateway scripts ledger behavior for endpoint tests.
type fakeGateway struct {
	submitErr error
	result    *sui.TxResult
	objects   map[string]*sui.ObjectData
	owned     map[string][]sui.ObjectData
}

var _ assets.Gateway = (*fakeGateway)(nil)

func (f *fakeGateway) Submit(_ context.Context, block *sui.TxBuilder) (*sui.TxResult, error) {
	if err := block.Validate(); err != nil {
		return nil, err
	}
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return &sui.TxResult{Digest: "0xdigest"}, nil
}

func (f *fakeGateway) GetObject(_ context.Context, objectID string) (*sui.ObjectData, error) {
	obj, ok := f.objects[objectID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", sui.ErrNotFound, objectID)
	}
	return obj, nil
}

func (f *fakeGateway) GetOwnedObjects(_ context.Context, _, structType string) ([]sui.ObjectData, error) {
	return f.owned[structType], nil
}

func (f *fakeGateway) QueryEvents(_ context.Context, _ string, _ int) ([]sui.Event, error) {
	return nil, nil
}

func (f *fakeGateway) Target(module, function string) string {
	return "0xpkg::" + module + "::" + function
}

func (f *fakeGateway) Address() string { return "0xservice" }

func newTestRouter(t *testing.T) (http.Handler, *fakeGateway) {
	t.Helper()
	gw := &fakeGateway{
		objects: make(map[string]*sui.ObjectData),
		owned:   make(map[string][]sui.ObjectData),
	}
	hub := fanout.NewHub()
	sched, err := scheduler.New(scheduler.Config{
		Store:  scheduler.NewMemoryStore(),
		Ledger: gw,
		Hub:    hub,
	})
	if err != nil {
		t.Fatalf("scheduler.New: %v", err)
	}
	svc := assets.New(gw, hub, sched, nil)
	return NewRouter(svc, nil), gw
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCreateAircraftEndpoint(t *testing.T) {
	h, gw := newTestRouter(t)
	gw.result = &sui.TxResult{
		Digest: "0xdigest",
		ObjectChanges: []sui.ObjectChange{
			{Type: "created", ObjectType: "0xpkg::aircraft::Aircraft", ObjectID: "0xplane"},
		},
	}

	rec := doJSON(t, h, http.MethodPost, "/api/aircraft", map[string]interface{}{
		"tailNumber":      "N12345",
		"model":           "A320neo",
		"manufacturer":    "Airbus",
		"manufactureDate": 1_600_000_000_000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result assets.CommandResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.ObjectID != "0xplane" {
		t.Fatalf("object id = %s", result.ObjectID)
	}
}

func TestCreateAircraftRejectsUnknownFields(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doJSON(t, h, http.MethodPost, "/api/aircraft", map[string]interface{}{
		"tailNumber": "N12345",
		"bogus":      true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid parameter", fmt.Errorf("%w: bad", sui.ErrInvalidParameter), http.StatusBadRequest},
		{"rejected", fmt.Errorf("%w: MoveAbort", sui.ErrTransactionRejected), http.StatusUnprocessableEntity},
		{"transport", fmt.Errorf("%w: node down", sui.ErrTransport), http.StatusBadGateway},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		h, gw := newTestRouter(t)
		gw.submitErr = tc.err
		rec := doJSON(t, h, http.MethodPost, "/api/parts/0xpart/activate", nil)
		if rec.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
	}
}

func TestGetAircraftNotFound(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doJSON(t, h, http.MethodGet, "/api/aircraft/0xmissing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListPartsByOwner(t *testing.T) {
	h, gw := newTestRouter(t)
	gw.owned["part::Part"] = []sui.ObjectData{
		{
			ObjectID: "0xpart1",
			Type:     "0xpkg::part::Part",
			Content: &sui.ObjectContent{
				Fields: json.RawMessage(`{"serial_number": "SN-001", "status": "active"}`),
			},
		},
	}

	rec := doJSON(t, h, http.MethodGet, "/api/parts/owner/0xowner", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); !bytes.Contains([]byte(body), []byte("SN-001")) {
		t.Fatalf("body missing part: %s", body)
	}
}

func TestCompleteFlightEndpoint(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doJSON(t, h, http.MethodPost, "/api/aircraft/0xplane/complete-flight",
		map[string]interface{}{"flightHours": 5})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestStartSimulationEndpoint(t *testing.T) {
	h, gw := newTestRouter(t)
	gw.objects["0xpart"] = &sui.ObjectData{ObjectID: "0xpart", Type: "0xpkg::part::Part"}

	rec := doJSON(t, h, http.MethodPost, "/api/sensors/simulate/0xpart",
		map[string]interface{}{"kind": "temperature"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var job scheduler.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.IntervalMillis != defaultSimIntervalMillis {
		t.Fatalf("interval = %d, want default", job.IntervalMillis)
	}
	if job.TargetModule != "part" {
		t.Fatalf("target module = %s", job.TargetModule)
	}
}

func TestStartSimulationIntervalSeconds(t *testing.T) {
	h, gw := newTestRouter(t)
	gw.objects["0xpart"] = &sui.ObjectData{ObjectID: "0xpart", Type: "0xpkg::part::Part"}

	rec := doJSON(t, h, http.MethodPost, "/api/sensors/simulate/0xpart",
		map[string]interface{}{"kind": "pressure", "intervalSeconds": 30})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}

	var job scheduler.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.IntervalMillis != 30_000 {
		t.Fatalf("interval = %d", job.IntervalMillis)
	}
}

func TestStartSimulationZeroProbability(t *testing.T) {
	h, gw := newTestRouter(t)
	gw.objects["0xpart"] = &sui.ObjectData{ObjectID: "0xpart", Type: "0xpkg::part::Part"}

	rec := doJSON(t, h, http.MethodPost, "/api/sensors/simulate/0xpart",
		map[string]interface{}{"kind": "temperature", "anomalyProbability": 0})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}

	var job scheduler.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.AnomalyProbability != 0 {
		t.Fatalf("anomaly probability = %v, want 0", job.AnomalyProbability)
	}
}

func TestStopSimulationEndpoint(t *testing.T) {
	h, gw := newTestRouter(t)
	gw.objects["0xpart"] = &sui.ObjectData{ObjectID: "0xpart", Type: "0xpkg::part::Part"}

	rec := doJSON(t, h, http.MethodPost, "/api/sensors/simulate/0xpart",
		map[string]interface{}{"kind": "temperature"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/sensors/simulate/0xpart/temperature", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("stop status = %d", rec.Code)
	}

	// Stopping again still succeeds.
	rec = doJSON(t, h, http.MethodDelete, "/api/sensors/simulate/0xpart/temperature", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("repeat stop status = %d", rec.Code)
	}
}

func TestPartReadingsBadLimit(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doJSON(t, h, http.MethodGet, "/api/sensors/part/0xpart/readings?limit=zero", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
