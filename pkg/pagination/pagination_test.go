package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/visits"+query, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext_Defaults(t *testing.T) {
	p := paramsFor(t, "")
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected offset 0, got %d", p.Offset)
	}
}

func TestFromContext_Explicit(t *testing.T) {
	p := paramsFor(t, "?limit=5&offset=10")
	if p.Limit != 5 || p.Offset != 10 {
		t.Errorf("expected 5/10, got %d/%d", p.Limit, p.Offset)
	}
}

func TestFromContext_ClampsLimit(t *testing.T) {
	p := paramsFor(t, "?limit=9999")
	if p.Limit != MaxLimit {
		t.Errorf("expected clamped limit %d, got %d", MaxLimit, p.Limit)
	}
}

func TestSlice_Clamps(t *testing.T) {
	p := Params{Limit: 10, Offset: 5}
	start, end := p.Slice(8)
	if start != 5 || end != 8 {
		t.Errorf("expected [5,8), got [%d,%d)", start, end)
	}

	start, end = p.Slice(3)
	if start != 3 || end != 3 {
		t.Errorf("expected empty window [3,3), got [%d,%d)", start, end)
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	r := NewResponse(nil, 50, 20, 0)
	if !r.HasMore {
		t.Error("expected has_more for first page of 50")
	}
	r = NewResponse(nil, 50, 20, 40)
	if r.HasMore {
		t.Error("expected no more after last page")
	}
}
