package fiber_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "site-analytics-service/internal/alerts/adapters/http/fiber"
	"site-analytics-service/internal/alerts/core/domain"
	"site-analytics-service/internal/alerts/core/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Fake usecase implementing the interface that handler depends on.
type fakeAlertUseCase struct {
	ListFn       func() []usecase.Alert
	RegisterFn   func(def domain.Definition) (uuid.UUID, error)
	UnregisterFn func(id uuid.UUID) error
	lastDef      domain.Definition
	lastID       uuid.UUID
	called       bool
}

func (f *fakeAlertUseCase) ListAlerts() []usecase.Alert {
	f.called = true
	if f.ListFn != nil {
		return f.ListFn()
	}
	return nil
}

func (f *fakeAlertUseCase) RegisterDefinition(def domain.Definition) (uuid.UUID, error) {
	f.called = true
	f.lastDef = def
	if f.RegisterFn != nil {
		return f.RegisterFn(def)
	}
	return uuid.New(), nil
}

func (f *fakeAlertUseCase) UnregisterAlert(id uuid.UUID) error {
	f.called = true
	f.lastID = id
	if f.UnregisterFn != nil {
		return f.UnregisterFn(id)
	}
	return nil
}

func setupApp(t *testing.T, uc httpadapter.AlertUseCase) *fiber.App {
	t.Helper()
	app := fiber.New()
	h := httpadapter.NewAlertHandler(uc)
	app.Get("/alerts", h.ListAlerts)
	app.Post("/alerts", h.CreateAlert)
	app.Delete("/alerts/:id", h.DeleteAlert)
	return app
}

const definitionBody = `{
	"name": "blog-traffic-drop",
	"domain": "example.com",
	"interval": "5m",
	"window": "1h",
	"property": "page",
	"metric": "views",
	"match": {"glob": "/blog/*"},
	"condition": {"op": "below", "threshold": 10}
}`

// ------------------------------------------------------------
// CREATE
// ------------------------------------------------------------

func TestCreateAlert_Success(t *testing.T) {
	id := uuid.New()
	uc := &fakeAlertUseCase{
		RegisterFn: func(def domain.Definition) (uuid.UUID, error) { return id, nil },
	}
	app := setupApp(t, uc)

	req := httptest.NewRequest(http.MethodPost, "/alerts", strings.NewReader(definitionBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.StatusCode)
	}

	var body httpadapter.CreateAlertResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != id.String() {
		t.Fatalf("expected id %s, got %s", id, body.ID)
	}

	def := uc.lastDef
	if def.Name != "blog-traffic-drop" || def.Domain != "example.com" || def.Match.Glob != "/blog/*" {
		t.Fatalf("unexpected definition: %+v", def)
	}
	if def.Condition.Op != domain.OpBelow || def.Condition.Threshold != 10 {
		t.Fatalf("unexpected condition: %+v", def.Condition)
	}
}

func TestCreateAlert_InvalidDefinition(t *testing.T) {
	errs := []error{
		fmt.Errorf("%w: name is required", usecase.ErrInvalidDefinition),
		fmt.Errorf("alert %q: %w", "x", usecase.ErrInvalidInterval),
		fmt.Errorf("alert %q: %w", "x", usecase.ErrInvalidDomain),
	}
	for _, e := range errs {
		uc := &fakeAlertUseCase{
			RegisterFn: func(def domain.Definition) (uuid.UUID, error) { return uuid.Nil, e },
		}
		app := setupApp(t, uc)

		req := httptest.NewRequest(http.MethodPost, "/alerts", strings.NewReader(definitionBody))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test error: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%v: expected status 400, got %d", e, resp.StatusCode)
		}
	}
}

func TestCreateAlert_InvalidJSON(t *testing.T) {
	uc := &fakeAlertUseCase{}
	app := setupApp(t, uc)

	req := httptest.NewRequest(http.MethodPost, "/alerts", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}
	if uc.called {
		t.Fatalf("usecase should not be called for invalid json")
	}
}

// ------------------------------------------------------------
// LIST
// ------------------------------------------------------------

func TestListAlerts(t *testing.T) {
	id := uuid.New()
	created := time.Date(2025, 12, 7, 10, 0, 0, 0, time.UTC)
	uc := &fakeAlertUseCase{
		ListFn: func() []usecase.Alert {
			return []usecase.Alert{{
				Registration: domain.Registration{
					ID:        id,
					Name:      "blog-traffic-drop",
					Domain:    "example.com",
					Interval:  5 * time.Minute,
					State:     domain.StateRunning,
					CreatedAt: created,
				},
				Definition: &domain.Definition{Name: "blog-traffic-drop", Metric: "views"},
			}}
		},
	}
	app := setupApp(t, uc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/alerts", nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var body []httpadapter.AlertResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(body))
	}
	a := body[0]
	if a.ID != id.String() || a.Interval != "5m0s" || a.State != "running" {
		t.Fatalf("unexpected alert: %+v", a)
	}
	if a.LastDispatch != nil {
		t.Fatalf("expected no last dispatch, got %v", a.LastDispatch)
	}
	if a.Definition == nil || a.Definition.Metric != "views" {
		t.Fatalf("expected definition in response, got %+v", a.Definition)
	}
}

// ------------------------------------------------------------
// DELETE
// ------------------------------------------------------------

func TestDeleteAlert(t *testing.T) {
	id := uuid.New()
	uc := &fakeAlertUseCase{}
	app := setupApp(t, uc)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/alerts/"+id.String(), nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.StatusCode)
	}
	if uc.lastID != id {
		t.Fatalf("expected id %s, got %s", id, uc.lastID)
	}
}

func TestDeleteAlert_NotFound(t *testing.T) {
	uc := &fakeAlertUseCase{
		UnregisterFn: func(id uuid.UUID) error {
			return fmt.Errorf("%w: %s", usecase.ErrRegistrationNotFound, id)
		},
	}
	app := setupApp(t, uc)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/alerts/"+uuid.NewString(), nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.StatusCode)
	}
}

func TestDeleteAlert_BadID(t *testing.T) {
	uc := &fakeAlertUseCase{}
	app := setupApp(t, uc)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/alerts/not-a-uuid", nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}
	if uc.called {
		t.Fatalf("usecase should not be called for a malformed id")
	}
}
