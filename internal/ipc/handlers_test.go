package ipc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matjam/deskpaper/internal/wallpaper"
	"github.com/pkg/errors"
)

type fakeManager struct {
	status     wallpaper.Status
	refreshErr error
	refreshes  int
	stops      int
}

func (m *fakeManager) Status() wallpaper.Status { return m.status }

func (m *fakeManager) Refresh() error {
	m.refreshes++
	return m.refreshErr
}

func (m *fakeManager) Stop() { m.stops++ }

func serve(t *testing.T, m ManagerInterface, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	e := NewServer(m)
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestStatusHandler(t *testing.T) {
	m := &fakeManager{status: wallpaper.Status{Directory: "/walls", Desktop: "work", Cycles: 3}}

	rec := serve(t, m, http.MethodGet, "/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}

	var got StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != "ok" || got.PID == 0 {
		t.Errorf("response = %+v", got)
	}
	if got.Wallpaper.Desktop != "work" || got.Wallpaper.Cycles != 3 {
		t.Errorf("wallpaper = %+v", got.Wallpaper)
	}
}

func TestRefreshHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"ok", nil, http.StatusOK},
		{"marker write fails", errors.New("connection closed"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeManager{refreshErr: tt.err}
			rec := serve(t, m, http.MethodPost, "/refresh")
			if rec.Code != tt.code {
				t.Errorf("status code = %d, want %d", rec.Code, tt.code)
			}
			if m.refreshes != 1 {
				t.Errorf("Refresh called %d times", m.refreshes)
			}
		})
	}
}

func TestStopHandler(t *testing.T) {
	m := &fakeManager{}
	rec := serve(t, m, http.MethodPost, "/stop")
	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d", rec.Code)
	}
	if m.stops != 1 {
		t.Errorf("Stop called %d times", m.stops)
	}
}

func TestUnknownRoute(t *testing.T) {
	rec := serve(t, &fakeManager{}, http.MethodGet, "/nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status code = %d, want 404", rec.Code)
	}
}
