package visit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/homevisit/homevisit/internal/platform/docstore"
	"github.com/homevisit/homevisit/internal/platform/notification"
)

func newTestHandler(t *testing.T) (*Handler, *Ledger, *notification.Recorder) {
	t.Helper()
	rec := notification.NewRecorder()
	l, err := NewLedger(context.Background(), docstore.NewMemStore(), rec)
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	return NewHandler(l, rec), l, rec
}

func doRequest(t *testing.T, h echo.HandlerFunc, method, target, body string, setup func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestCreateVisit(t *testing.T) {
	h, l, _ := newTestHandler(t)
	l.now = func() time.Time { return time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC) }

	body := `{
		"patientName": "Ana Souza",
		"birthDate": "1990-06-01",
		"visitDate": "2024-06-01",
		"subjective": "headache for two days",
		"objective": "BP within range",
		"assessment": "tension headache",
		"plan": "hydration and rest",
		"vitalSigns": {"temperature": "36.5", "bloodPressure": "120/80"}
	}`
	rec := doRequest(t, h.CreateVisit, http.MethodPost, "/api/v1/visits", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created Visit
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if created.ID == "" {
		t.Error("expected assigned id")
	}
	if created.Age != 34 {
		t.Errorf("expected captured age 34, got %d", created.Age)
	}
	if created.VitalSigns == nil || created.VitalSigns.Temperature != "36.5" {
		t.Errorf("expected vital signs to survive, got %+v", created.VitalSigns)
	}
}

func TestCreateVisit_MissingFields(t *testing.T) {
	h, _, notifications := newTestHandler(t)

	body := `{"patientName": "Ana Souza", "birthDate": "1990-06-01"}`
	rec := doRequest(t, h.CreateVisit, http.MethodPost, "/api/v1/visits", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if notifications.Last().Kind != "error" {
		t.Errorf("expected visible error notification, got %+v", notifications.Last())
	}
}

func TestCreateVisit_DefaultsVisitDate(t *testing.T) {
	h, l, _ := newTestHandler(t)
	l.now = func() time.Time { return time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC) }

	body := `{
		"patientName": "Ana Souza",
		"birthDate": "1990-06-01",
		"subjective": "s", "objective": "o", "assessment": "a", "plan": "p"
	}`
	rec := doRequest(t, h.CreateVisit, http.MethodPost, "/api/v1/visits", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var created Visit
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !created.VisitDate.Equal(NewDate(2024, time.June, 3)) {
		t.Errorf("expected visit date to default to today, got %s", created.VisitDate)
	}
}

func TestListVisits_SortedAndFiltered(t *testing.T) {
	h, l, _ := newTestHandler(t)
	seedVisit(t, l, "Ana Souza", NewDate(1990, time.June, 1), NewDate(2024, time.June, 1))
	seedVisit(t, l, "João Lima", NewDate(1950, time.December, 25), NewDate(2024, time.June, 5))
	seedVisit(t, l, "Ana Souza", NewDate(1990, time.June, 1), NewDate(2024, time.June, 3))

	rec := doRequest(t, h.ListVisits, http.MethodGet, "/api/v1/visits?patient=ana", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data  []Visit `json:"data"`
		Total int     `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("expected 2 matches, got %d", resp.Total)
	}
	// Most recent first.
	if !resp.Data[0].VisitDate.Equal(NewDate(2024, time.June, 3)) {
		t.Errorf("expected June 3 visit first, got %s", resp.Data[0].VisitDate)
	}
}

func TestListVisits_DateFilter(t *testing.T) {
	h, l, _ := newTestHandler(t)
	seedVisit(t, l, "Ana Souza", NewDate(1990, time.June, 1), NewDate(2024, time.June, 1))
	seedVisit(t, l, "João Lima", NewDate(1950, time.December, 25), NewDate(2024, time.June, 5))

	rec := doRequest(t, h.ListVisits, http.MethodGet, "/api/v1/visits?date=2024-06-05", "", nil)
	var resp struct {
		Data []Visit `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].PatientName != "João Lima" {
		t.Fatalf("expected only the June 5 visit, got %+v", resp.Data)
	}
}

func TestDeleteVisit(t *testing.T) {
	h, l, _ := newTestHandler(t)
	v := seedVisit(t, l, "Ana Souza", NewDate(1990, time.June, 1), NewDate(2024, time.June, 1))

	rec := doRequest(t, h.DeleteVisit, http.MethodDelete, "/api/v1/visits/"+v.ID, "", func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues(v.ID)
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := l.List(context.Background()); len(got) != 0 {
		t.Fatalf("expected visit removed, got %d", len(got))
	}
}

func TestListPatients(t *testing.T) {
	h, l, _ := newTestHandler(t)
	seedVisit(t, l, "Ana Souza", NewDate(1990, time.June, 1), NewDate(2024, time.June, 1))
	seedVisit(t, l, "Ana Souza", NewDate(1990, time.June, 1), NewDate(2024, time.June, 2))

	rec := doRequest(t, h.ListPatients, http.MethodGet, "/api/v1/patients", "", nil)
	var resp struct {
		Data []PatientSummary `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Visits != 2 {
		t.Fatalf("expected one patient with 2 visits, got %+v", resp.Data)
	}
}
