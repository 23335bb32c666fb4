package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"stafflink/internal/applications/service"
	"stafflink/internal/applications/store"
	candstore "stafflink/internal/candidates/store"
	"stafflink/internal/events"
	jobmodels "stafflink/internal/jobs/models"
	jobstore "stafflink/internal/jobs/store"
	"stafflink/internal/notification"
	"stafflink/internal/objectstore"
	"stafflink/pkg/requestcontext"
)

type PipelineHandlerSuite struct {
	suite.Suite
	router chi.Router

	employerID    uuid.UUID
	jobID         uuid.UUID
	applicationID uuid.UUID

	// callerID is the account the fake auth middleware injects.
	callerID uuid.UUID
}

func TestPipelineHandlerSuite(t *testing.T) {
	suite.Run(t, new(PipelineHandlerSuite))
}

func (s *PipelineHandlerSuite) SetupTest() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jobs := jobstore.NewInMemory()
	svc := service.New(store.NewInMemory(), store.NewInMemoryPendingLinks(),
		candstore.NewInMemory(), jobs, notification.Noop{}, events.Noop{}, nil, logger)
	h := New(svc, objectstore.NewInMemory(), 5<<20, 50<<20, logger)

	s.employerID = uuid.New()
	job, err := jobmodels.NewJob(uuid.New(), s.employerID, "Backend Engineer", "Pune", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(jobs.Create(ctx, job))
	s.jobID = job.ID

	app, err := svc.Apply(ctx, service.ApplyInput{
		JobID:     job.ID,
		FullName:  "Meera Shah",
		Email:     "meera@example.com",
		ResumeURL: "https://files/resume.pdf",
	})
	s.Require().NoError(err)
	s.applicationID = app.ID

	s.callerID = s.employerID
	s.router = chi.NewRouter()
	s.router.Route("/employee", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(requestcontext.WithAccountID(r.Context(), s.callerID)))
			})
		})
		h.RegisterEmployee(r)
	})
}

func (s *PipelineHandlerSuite) request(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *PipelineHandlerSuite) envelope(rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *PipelineHandlerSuite) TestListByJob() {
	s.Run("owner sees the pipeline", func() {
		rec := s.request(http.MethodGet, "/employee/jobs/"+s.jobID.String()+"/applications", "")
		s.Require().Equal(http.StatusOK, rec.Code)
		body := s.envelope(rec)
		s.Equal(true, body["success"])
		s.Len(body["data"], 1)
	})

	s.Run("another employer is forbidden", func() {
		s.callerID = uuid.New()
		defer func() { s.callerID = s.employerID }()

		rec := s.request(http.MethodGet, "/employee/jobs/"+s.jobID.String()+"/applications", "")
		s.Require().Equal(http.StatusForbidden, rec.Code)
		s.Equal(false, s.envelope(rec)["success"])
	})
}

func (s *PipelineHandlerSuite) TestSetStatus() {
	s.Run("another employer cannot move the application", func() {
		s.callerID = uuid.New()
		defer func() { s.callerID = s.employerID }()

		rec := s.request(http.MethodPut, "/employee/applications/"+s.applicationID.String()+"/status",
			`{"status":"Rejected"}`)
		s.Require().Equal(http.StatusForbidden, rec.Code)

		s.callerID = s.employerID
		rec = s.request(http.MethodGet, "/employee/applications/"+s.applicationID.String(), "")
		s.Require().Equal(http.StatusOK, rec.Code)
		data := s.envelope(rec)["data"].(map[string]any)
		s.Equal("Applied", data["status"])
	})

	s.Run("owner moves the application", func() {
		rec := s.request(http.MethodPut, "/employee/applications/"+s.applicationID.String()+"/status",
			`{"status":"Shortlisted","note":"good fit"}`)
		s.Require().Equal(http.StatusOK, rec.Code)
		data := s.envelope(rec)["data"].(map[string]any)
		s.Equal("Shortlisted", data["status"])
	})
}
