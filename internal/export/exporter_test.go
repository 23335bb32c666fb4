package export

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"

	candmodels "stafflink/internal/candidates/models"
	candstore "stafflink/internal/candidates/store"
	dErrors "stafflink/pkg/domain-errors"
)

type ExportSuite struct {
	suite.Suite
	ctx        context.Context
	candidates *candstore.InMemory
	service    *Service
}

func TestExportSuite(t *testing.T) {
	suite.Run(t, new(ExportSuite))
}

func (s *ExportSuite) SetupTest() {
	s.ctx = context.Background()
	s.candidates = candstore.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = NewService(s.candidates, nil, logger)
}

func (s *ExportSuite) newCandidate(name, email string) *candmodels.Candidate {
	var education candmodels.FlexList
	s.Require().NoError(json.Unmarshal([]byte(`[{"degree":"B.Tech","institution":"IIT Bombay"},"online courses"]`), &education))

	candidate := &candmodels.Candidate{
		ID:             uuid.New(),
		FullName:       name,
		Email:          email,
		Phone:          "+919000000000",
		Education:      education,
		Skills:         []string{"Go", "Postgres"},
		CurrentCompany: "Acme",
		ResumeURL:      "https://files/resume.pdf",
		Status:         candmodels.StatusApplied,
	}
	s.Require().NoError(s.candidates.Create(s.ctx, candidate))
	return candidate
}

func (s *ExportSuite) open(data []byte) *excelize.File {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	s.Require().NoError(err)
	s.T().Cleanup(func() { f.Close() })
	return f
}

func (s *ExportSuite) TestSingleCandidate() {
	candidate := s.newCandidate("Meera Shah", "meera@example.com")

	data, err := s.service.Candidate(s.ctx, candidate.ID)
	s.Require().NoError(err)

	f := s.open(data)
	rows, err := f.GetRows(sheet)
	s.Require().NoError(err)
	s.Require().NotEmpty(rows)
	s.Equal([]string{"Field", "Value"}, rows[0][:2])

	// Every field lands as its own Field/Value row.
	byField := map[string]string{}
	for _, row := range rows[1:] {
		if len(row) >= 2 {
			byField[row[0]] = row[1]
		} else if len(row) == 1 {
			byField[row[0]] = ""
		}
	}
	s.Equal("Meera Shah", byField["Full Name"])
	s.Equal("Go, Postgres", byField["Skills"])
	s.Contains(byField["Education"], "degree: B.Tech")
	s.Contains(byField["Education"], "online courses")
}

func (s *ExportSuite) TestSingleCandidateNotFound() {
	_, err := s.service.Candidate(s.ctx, uuid.New())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ExportSuite) TestBulkExport() {
	s.Run("one row per candidate with a styled header", func() {
		first := s.newCandidate("Meera Shah", "meera@example.com")
		second := s.newCandidate("Ravi Kumar", "ravi@example.com")

		data, err := s.service.Candidates(s.ctx, []uuid.UUID{first.ID, second.ID})
		s.Require().NoError(err)

		f := s.open(data)
		rows, err := f.GetRows(sheet)
		s.Require().NoError(err)
		s.Require().Len(rows, 3)
		s.Equal("Candidate ID", rows[0][0])
		s.Equal("Meera Shah", rows[1][1])
		s.Equal("Ravi Kumar", rows[2][1])

		styleID, err := f.GetCellStyle(sheet, "A1")
		s.Require().NoError(err)
		style, err := f.GetStyle(styleID)
		s.Require().NoError(err)
		s.Require().NotNil(style.Font)
		s.True(style.Font.Bold)
	})

	s.Run("unknown ids are skipped", func() {
		candidate := s.newCandidate("Solo Kumar", "solo@example.com")

		data, err := s.service.Candidates(s.ctx, []uuid.UUID{uuid.New(), candidate.ID, uuid.New()})
		s.Require().NoError(err)

		f := s.open(data)
		rows, err := f.GetRows(sheet)
		s.Require().NoError(err)
		s.Len(rows, 2)
	})

	s.Run("empty resolved set fails", func() {
		_, err := s.service.Candidates(s.ctx, []uuid.UUID{uuid.New()})
		s.Require().Error(err)
		s.Equal("no valid candidates selected", dErrors.MessageOf(err))
	})

	s.Run("no ids at all is a validation error", func() {
		_, err := s.service.Candidates(s.ctx, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ExportSuite) TestColumnWidths() {
	long := s.newCandidate("A Very Long Candidate Name Indeed", "long@example.com")
	long.Notes = "short line\n" + "a considerably longer second line that should set the width"
	s.Require().NoError(s.candidates.Update(s.ctx, long))

	data, err := s.service.Candidates(s.ctx, []uuid.UUID{long.ID})
	s.Require().NoError(err)

	f := s.open(data)
	nameWidth, err := f.GetColWidth(sheet, "B")
	s.Require().NoError(err)
	s.Greater(nameWidth, float64(len("A Very Long Candidate Name Indeed")))
}
