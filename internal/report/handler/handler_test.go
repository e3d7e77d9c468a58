package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"bizverify/internal/dataset"
	"bizverify/internal/report"
	"bizverify/internal/report/handler/mocks"
	runmodels "bizverify/internal/runs/models"
	"bizverify/internal/submission/models"
	id "bizverify/pkg/domain"
	dErrors "bizverify/pkg/domain-errors"
	"bizverify/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type ReportHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestReportHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReportHandlerSuite))
}

func (s *ReportHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.router = chi.NewRouter()
	New(s.service, logger).Register(s.router)
}

func (s *ReportHandlerSuite) do(method, path string) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, testutil.NewRequest(s.T(), method, path))
}

func (s *ReportHandlerSuite) TestSummary() {
	s.Run("passes the parsed filter", func() {
		s.SetupTest()
		runID := id.NewRunID()
		s.service.EXPECT().Summary(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, f report.Filter) (*report.Summary, error) {
				s.Require().NotNil(f.From)
				s.Equal("2025-09-01", f.From.Format("2006-01-02"))
				s.Nil(f.To)
				s.Equal([]string{"Nairobi", "Kiambu"}, f.Counties)
				return &report.Summary{RunID: runID, Totals: report.Totals{Submissions: 3}}, nil
			})

		rr := s.do(http.MethodGet, "/summary?from=2025-09-01&county=nairobi,kiambu&county=Nairobi")

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
		s.Equal(runID.String(), (*resp)["run_id"])
		s.Equal(3.0, (*resp)["totals"].(map[string]any)["submissions"])
	})

	s.Run("bad date is rejected before the service", func() {
		s.SetupTest()
		rr := s.do(http.MethodGet, "/summary?from=yesterday")
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("unknown county is rejected", func() {
		s.SetupTest()
		rr := s.do(http.MethodGet, "/summary?county=Gotham")
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("source failure is 503 with a description", func() {
		s.SetupTest()
		cause := dataset.NewSourceError(dataset.ErrorTimeout, "src", "request timed out", nil)
		s.service.EXPECT().Summary(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.Wrap(cause, dErrors.CodeUnavailable, "the submissions export did not respond in time; try again shortly"))

		rr := s.do(http.MethodGet, "/summary")

		testutil.AssertStatus(s.T(), rr, http.StatusServiceUnavailable)
		body := testutil.UnmarshalErrorResponse(s.T(), rr)
		s.Equal("source_unavailable", body["error"])
		s.Contains(body["error_description"], "did not respond in time")
	})
}

func (s *ReportHandlerSuite) TestRecords() {
	s.Run("converts submissions", func() {
		s.SetupTest()
		ts := time.Date(2025, 9, 15, 8, 0, 0, 0, time.UTC)
		s.service.EXPECT().Records(gomock.Any(), report.Filter{}, report.ViewDuplicates).Return(&report.RecordSet{
			RunID: id.NewRunID(),
			View:  report.ViewDuplicates,
			Submissions: []models.Submission{{
				Record:          models.Record{ID: 4, County: "nairobi", NationalID: "123", Phone: "0712345678"},
				NormalizedID:    "123",
				NormalizedPhone: "254712345678",
				PhoneWellFormed: true,
				County:          models.CountyMatch{Name: "Nairobi", Canonical: true},
				Timestamp:       models.Timestamp{Time: ts, Valid: true},
				DuplicateStrict: true,
			}},
		}, nil)

		rr := s.do(http.MethodGet, "/records?view=duplicates")

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[RecordsResponse](s.T(), rr)
		s.Equal("duplicates", resp.View)
		s.Equal(1, resp.Count)
		rec := resp.Records[0]
		s.Equal(id.RecordID(4), rec.ID)
		s.Equal("nairobi", rec.Record.County)
		s.Equal("Nairobi", rec.County.Name)
		s.Equal("254712345678", rec.NormalizedPhone)
		s.True(rec.DuplicateStrict)
		s.Require().NotNil(rec.SubmittedAt)
		s.True(ts.Equal(*rec.SubmittedAt))
	})

	s.Run("unknown view", func() {
		s.SetupTest()
		rr := s.do(http.MethodGet, "/records?view=everything")
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *ReportHandlerSuite) TestMap() {
	s.SetupTest()
	s.service.EXPECT().MapPoints(gomock.Any(), gomock.Any()).Return([]report.MapPoint{
		{RecordID: 1, County: "Nairobi", Lat: -1.28, Lon: 36.82},
	}, nil)

	rr := s.do(http.MethodGet, "/map")

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[MapResponse](s.T(), rr)
	s.Equal(1, resp.Count)
	s.Equal(36.82, resp.Points[0].Lon)
}

func (s *ReportHandlerSuite) TestExport() {
	s.Run("streams csv as an attachment", func() {
		s.SetupTest()
		s.service.EXPECT().ExportCSV(gomock.Any(), gomock.Any(), gomock.Any(), report.ViewKept).DoAndReturn(
			func(_ context.Context, w io.Writer, _ report.Filter, _ report.View) error {
				_, err := io.WriteString(w, "Timestamp,County\n")
				return err
			})

		rr := s.do(http.MethodGet, "/export.csv?view=kept")

		testutil.AssertStatusOK(s.T(), rr)
		s.Contains(rr.Header().Get("Content-Disposition"), `filename="submissions-kept.csv"`)
		s.Equal([][]string{{"Timestamp", "County"}}, testutil.ReadCSV(s.T(), rr))
	})

	s.Run("failure is a json error, not a partial file", func() {
		s.SetupTest()
		s.service.EXPECT().ExportCSV(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, w io.Writer, _ report.Filter, _ report.View) error {
				_, _ = io.WriteString(w, "Timestamp,County\n")
				return dErrors.New(dErrors.CodeUnavailable, "the submissions export could not be reached")
			})

		rr := s.do(http.MethodGet, "/export.csv")

		testutil.AssertStatusAndError(s.T(), rr, http.StatusServiceUnavailable, "source_unavailable")
		s.Equal("application/json", rr.Header().Get("Content-Type"))
	})
}

func (s *ReportHandlerSuite) TestRefresh() {
	s.SetupTest()
	runID := id.NewRunID()
	s.service.EXPECT().Reload(gomock.Any()).Return(&report.Snapshot{
		RunID:       runID,
		Submissions: make([]models.Submission, 7),
	}, nil)

	rr := s.do(http.MethodPost, "/refresh")

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[RefreshResponse](s.T(), rr)
	s.Equal(runID, resp.RunID)
	s.Equal(7, resp.Submissions)
	s.False(resp.CacheHit)
}

func (s *ReportHandlerSuite) TestRuns() {
	s.Run("default limit", func() {
		s.SetupTest()
		s.service.EXPECT().Runs(gomock.Any(), defaultRunsLimit).Return([]runmodels.RunSummary{}, nil)
		rr := s.do(http.MethodGet, "/runs")
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONHasKey(s.T(), rr, "runs")
	})

	s.Run("limit is capped", func() {
		s.SetupTest()
		s.service.EXPECT().Runs(gomock.Any(), maxRunsLimit).Return(nil, nil)
		rr := s.do(http.MethodGet, "/runs?limit=5000")
		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("invalid limit", func() {
		s.SetupTest()
		rr := s.do(http.MethodGet, "/runs?limit=-1")
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func TestRunsResponseJSON(t *testing.T) {
	run := runmodels.RunSummary{RunID: id.NewRunID(), Status: runmodels.StatusSucceeded, Total: 2}
	body, err := json.Marshal(RunsResponse{Runs: []runmodels.RunSummary{run}})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"run_id":"`+run.RunID.String()+`"`)
	assert.Contains(t, string(body), `"status":"succeeded"`)
}
