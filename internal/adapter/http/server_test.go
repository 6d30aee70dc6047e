package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/couchcryptid/climate-risk-engine/internal/adapter/http"
	"github.com/couchcryptid/climate-risk-engine/internal/assess"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockService struct {
	err error

	gotLoc    domain.Location
	gotHazard domain.Hazard
	gotStart  string
	gotEnd    string
	gotYears  int
}

func (m *mockService) Assess(_ context.Context, hazard domain.Hazard, loc domain.Location) (domain.RiskAssessment, error) {
	m.gotHazard, m.gotLoc = hazard, loc
	if m.err != nil {
		return domain.RiskAssessment{}, m.err
	}
	return domain.RiskAssessment{Hazard: hazard, Location: loc, RiskScore: 0.42, RiskLevel: domain.LevelModerate}, nil
}

func (m *mockService) AssessAll(_ context.Context, loc domain.Location) ([]domain.RiskAssessment, error) {
	m.gotLoc = loc
	if m.err != nil {
		return nil, m.err
	}
	return []domain.RiskAssessment{
		{Hazard: domain.HazardFlood, Location: loc},
		{Hazard: domain.HazardDrought, Location: loc},
		{Hazard: domain.HazardLandslide, Location: loc},
	}, nil
}

func (m *mockService) Events(_ context.Context, loc domain.Location, start, end string) (assess.EventReport, error) {
	m.gotLoc, m.gotStart, m.gotEnd = loc, start, end
	if m.err != nil {
		return assess.EventReport{}, m.err
	}
	return assess.EventReport{Location: loc, Start: start, End: end, DataQuality: domain.QualityOK}, nil
}

func (m *mockService) Indices(_ context.Context, loc domain.Location) (assess.IndexReport, error) {
	m.gotLoc = loc
	if m.err != nil {
		return assess.IndexReport{}, m.err
	}
	return assess.IndexReport{Location: loc, Date: "2024-07-31", DataQuality: domain.QualityOK}, nil
}

func (m *mockService) History(_ context.Context, hazard domain.Hazard, loc domain.Location, years int) (history.Analysis, error) {
	m.gotHazard, m.gotLoc, m.gotYears = hazard, loc, years
	if m.err != nil {
		return history.Analysis{}, m.err
	}
	return history.Analysis{Hazard: hazard, Location: loc}, nil
}

func newTestServer(svc *mockService, readyErr error) *httpadapter.Server {
	return httpadapter.NewServer(":0", svc, &mockReadiness{err: readyErr}, slog.Default())
}

func get(t *testing.T, srv *httpadapter.Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(&mockService{}, nil), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(t, newTestServer(&mockService{}, nil), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(t, newTestServer(&mockService{}, fmt.Errorf("not ready yet")), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&mockService{}, nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAssessEndpoint(t *testing.T) {
	svc := &mockService{}
	rec := get(t, newTestServer(svc, nil), "/v1/risk/drought?lat=35.5&lon=-97.25")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, domain.HazardDrought, svc.gotHazard)
	assert.Equal(t, domain.Location{Lat: 35.5, Lon: -97.25}, svc.gotLoc)

	var body domain.RiskAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.HazardDrought, body.Hazard)
	assert.Equal(t, domain.LevelModerate, body.RiskLevel)
	assert.InDelta(t, 0.42, body.RiskScore, 1e-9)
}

func TestAssessAllEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&mockService{}, nil), "/v1/risk?lat=1&lon=2")

	require.Equal(t, http.StatusOK, rec.Code)
	var body []domain.RiskAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 3)
}

func TestEventsEndpoint(t *testing.T) {
	svc := &mockService{}
	rec := get(t, newTestServer(svc, nil), "/v1/events?lat=1&lon=2&start=2024-06-01&end=2024-06-30")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-06-01", svc.gotStart)
	assert.Equal(t, "2024-06-30", svc.gotEnd)
}

func TestIndicesEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&mockService{}, nil), "/v1/indices?lat=1&lon=2")

	require.Equal(t, http.StatusOK, rec.Code)
	var body assess.IndexReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2024-07-31", body.Date)
}

func TestHistoryEndpoint(t *testing.T) {
	svc := &mockService{}
	rec := get(t, newTestServer(svc, nil), "/v1/history/flood?lat=1&lon=2&years=5")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.HazardFlood, svc.gotHazard)
	assert.Equal(t, 5, svc.gotYears)

	rec = get(t, newTestServer(svc, nil), "/v1/history/flood?lat=1&lon=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, svc.gotYears)
}

func TestBadRequests(t *testing.T) {
	tests := []struct {
		name   string
		target string
		svcErr error
	}{
		{"missing lat", "/v1/risk?lon=2", nil},
		{"bad lon", "/v1/indices?lat=1&lon=east", nil},
		{"unknown hazard", "/v1/risk/tsunami?lat=1&lon=2", nil},
		{"unknown history hazard", "/v1/history/tsunami?lat=1&lon=2", nil},
		{"bad years", "/v1/history/flood?lat=1&lon=2&years=many", nil},
		{"too many years", "/v1/history/flood?lat=1&lon=2&years=500", fmt.Errorf("history: %w", domain.ErrInvalidWindow)},
		{"invalid location", "/v1/risk/flood?lat=95&lon=2", domain.ErrInvalidLocation},
		{"invalid window", "/v1/events?lat=1&lon=2&start=2024-07-01&end=2024-06-01", fmt.Errorf("events: %w", domain.ErrInvalidWindow)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(&mockService{err: tt.svcErr}, nil), tt.target)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestInternalError(t *testing.T) {
	rec := get(t, newTestServer(&mockService{err: errors.New("boom")}, nil), "/v1/risk?lat=1&lon=2")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "boom")
}
