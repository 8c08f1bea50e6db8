package e2e

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/kairadc/poker-standings/internal/app"
	"github.com/kairadc/poker-standings/internal/config"
)

// DashboardFlowTestSuite drives the assembled application over a real
// listener: snapshot load, every dashboard table, both CSV exports,
// refresh, and the problem responses for bad input. It runs against the
// bundled sample dataset so it needs no network or credentials.
type DashboardFlowTestSuite struct {
	suite.Suite
	server *httptest.Server
	client *http.Client
}

func (s *DashboardFlowTestSuite) SetupSuite() {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Source.Kind = "sample"
	cfg.Logging.Level = "error"
	cfg.Telemetry.MetricsEnabled = false
	cfg.Telemetry.TraceExporter = "none"
	cfg.Security.RateLimit.Enabled = false

	application, err := app.NewApplicationWithConfig(cfg)
	s.Require().NoError(err)

	s.server = httptest.NewServer(application.Router)
	s.client = &http.Client{Timeout: 10 * time.Second}
}

func (s *DashboardFlowTestSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
}

// get fetches a path and decodes the success envelope.
func (s *DashboardFlowTestSuite) get(path string) (map[string]any, *http.Response) {
	resp, err := s.client.Get(s.server.URL + path)
	s.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	var payload map[string]any
	if len(body) > 0 && strings.Contains(resp.Header.Get("Content-Type"), "json") {
		s.Require().NoError(json.Unmarshal(body, &payload), "body: %s", body)
	}
	return payload, resp
}

func (s *DashboardFlowTestSuite) TestHealthAndVersion() {
	payload, resp := s.get("/api/health")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("ok", payload["status"])

	payload, resp = s.get("/api/version")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.NotEmpty(payload["version"])
}

func (s *DashboardFlowTestSuite) TestOverviewServesSampleData() {
	payload, resp := s.get("/api/overview")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	s.Equal("success", payload["status"])

	quality, ok := payload["data_quality"].(map[string]any)
	s.Require().True(ok, "overview must carry data_quality")
	s.Equal("sample", quality["source"])
	s.Equal(true, quality["demo_mode"])
	s.NotZero(quality["row_count"])

	data, ok := payload["data"].(map[string]any)
	s.Require().True(ok)
	s.NotZero(data["total_sessions"])
	s.NotZero(data["total_results"])
	s.NotEmpty(data["top_winner"])
}

func (s *DashboardFlowTestSuite) TestStandingsThenPlayerProfile() {
	payload, resp := s.get("/api/standings")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	rows, ok := payload["data"].([]any)
	s.Require().True(ok)
	s.Require().NotEmpty(rows)

	first, ok := rows[0].(map[string]any)
	s.Require().True(ok)
	name, _ := first["player"].(string)
	s.Require().NotEmpty(name)

	profile, resp := s.get("/api/players/" + name)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	data, ok := profile["data"].(map[string]any)
	s.Require().True(ok)
	standing, ok := data["standing"].(map[string]any)
	s.Require().True(ok)
	s.Equal(name, standing["player"])
	s.NotEmpty(data["cumulative"])
}

func (s *DashboardFlowTestSuite) TestStandingsHonorsFilters() {
	payload, resp := s.get("/api/standings?season=2025-winter&venue=Garage")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.NotZero(payload["count"])

	payload, resp = s.get("/api/standings?venue=NoSuchPlace")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.EqualValues(0, payload["count"])
}

func (s *DashboardFlowTestSuite) TestLeaderboards() {
	payload, resp := s.get("/api/leaderboards/season")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("season", payload["dimension"])
	s.NotEmpty(payload["data"])

	_, resp = s.get("/api/leaderboards/stakes")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Contains(resp.Header.Get("Content-Type"), "application/problem+json")
}

func (s *DashboardFlowTestSuite) TestCSVExports() {
	for _, path := range []string{"/api/standings/export", "/api/sessions/export"} {
		resp, err := s.client.Get(s.server.URL + path)
		s.Require().NoError(err)

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		s.Require().NoError(err)

		s.Equal(http.StatusOK, resp.StatusCode, path)
		s.Contains(resp.Header.Get("Content-Type"), "text/csv", path)
		s.Contains(resp.Header.Get("Content-Disposition"), "attachment", path)

		// Strip the BOM and make sure the payload parses as CSV.
		trimmed := bytes.TrimPrefix(body, []byte{0xEF, 0xBB, 0xBF})
		records, err := csv.NewReader(bytes.NewReader(trimmed)).ReadAll()
		s.Require().NoError(err, path)
		s.Greater(len(records), 1, "%s should have a header and data rows", path)
	}
}

func (s *DashboardFlowTestSuite) TestRefreshAndSourceStatus() {
	resp, err := s.client.Post(s.server.URL+"/api/refresh", "application/json", nil)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	payload, statusResp := s.get("/api/source/status")
	s.Require().Equal(http.StatusOK, statusResp.StatusCode)

	data, ok := payload["data"].(map[string]any)
	s.Require().True(ok)
	s.Equal("sample", data["kind"])
}

func (s *DashboardFlowTestSuite) TestUnknownPlayerReturnsProblem() {
	resp, err := s.client.Get(s.server.URL + "/api/players/nobody-here")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Contains(resp.Header.Get("Content-Type"), "application/problem+json")

	var problem map[string]any
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&problem))
	s.EqualValues(http.StatusNotFound, problem["status"])
	s.Contains(problem["type"], "/errors/players/not-found")
}

func (s *DashboardFlowTestSuite) TestUnknownRouteReturnsProblem() {
	resp, err := s.client.Get(s.server.URL + "/api/does-not-exist")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Contains(resp.Header.Get("Content-Type"), "application/problem+json")

	var problem map[string]any
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&problem))
	s.Contains(problem["type"], "/errors/not-found")
}

func (s *DashboardFlowTestSuite) TestClientLogIngestion() {
	body := strings.NewReader(`{"level":"info","message":"dashboard loaded","source":"dashboard"}`)
	resp, err := s.client.Post(s.server.URL+"/api/logs", "application/json", body)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
}

func TestDashboardFlowTestSuite(t *testing.T) {
	suite.Run(t, new(DashboardFlowTestSuite))
}
