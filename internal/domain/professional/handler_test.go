package professional

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/homevisit/homevisit/internal/platform/docstore"
	"github.com/homevisit/homevisit/internal/platform/notification"
)

func newTestHandler(t *testing.T) (*Handler, *Directory) {
	t.Helper()
	rec := notification.NewRecorder()
	d, err := NewDirectory(context.Background(), docstore.NewMemStore(), rec)
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}
	return NewHandler(d, rec), d
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

func TestCreateProfessional(t *testing.T) {
	h, d := newTestHandler(t)

	rec := doRequest(t, h.CreateProfessional, http.MethodPost, "/api/v1/professionals",
		`{"name":"Maria Silva","specialty":"Nursing","active":true}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var p Professional
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.ID == "" || p.Name != "Maria Silva" {
		t.Errorf("unexpected response: %+v", p)
	}
	if len(d.List(context.Background())) != 1 {
		t.Error("expected entry in roster")
	}
}

func TestCreateProfessional_Validation(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(t, h.CreateProfessional, http.MethodPost, "/api/v1/professionals",
		`{"name":"","specialty":"Nursing"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListProfessionals_ActiveFilter(t *testing.T) {
	h, d := newTestHandler(t)
	d.Add(context.Background(), "Maria Silva", "Nursing", true)
	d.Add(context.Background(), "Pedro Santos", "Medicine", false)

	rec := doRequest(t, h.ListProfessionals, http.MethodGet, "/api/v1/professionals?active=true", "", nil)
	var resp struct {
		Data  []Professional `json:"data"`
		Total int            `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 1 || resp.Data[0].Name != "Maria Silva" {
		t.Fatalf("expected only active entry, got %+v", resp)
	}
}

func TestUpdateProfessional_RoundTrip(t *testing.T) {
	h, d := newTestHandler(t)
	p, _ := d.Add(context.Background(), "Maria Silva", "Nursing", true)

	rec := doRequest(t, h.UpdateProfessional, http.MethodPut, "/api/v1/professionals/"+p.ID,
		`{"name":"Maria Silva","specialty":"Geriatrics","active":false}`, func(c echo.Context) {
			c.SetParamNames("id")
			c.SetParamValues(p.ID)
		})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	got, _ := d.Get(context.Background(), p.ID)
	if got.Specialty != "Geriatrics" || got.Active {
		t.Errorf("expected updated entry, got %+v", got)
	}
}

func TestDeleteProfessional(t *testing.T) {
	h, d := newTestHandler(t)
	p, _ := d.Add(context.Background(), "Maria Silva", "Nursing", true)

	rec := doRequest(t, h.DeleteProfessional, http.MethodDelete, "/api/v1/professionals/"+p.ID, "", func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues(p.ID)
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(d.List(context.Background())) != 0 {
		t.Error("expected empty roster")
	}
}
