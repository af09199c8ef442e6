package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"vaxtrack/internal/subject/handler/mocks"
	"vaxtrack/internal/subject/models"
	"vaxtrack/internal/subject/service"
	id "vaxtrack/pkg/domain"
	dErrors "vaxtrack/pkg/domain-errors"
)

type HandlerSuite struct {
	suite.Suite
	router      http.Handler
	ctrl        *gomock.Controller
	mockService *mocks.MockService
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	h := New(s.mockService, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	s.router = r
}

func (s *HandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestRegister() {
	s.Run("creates dependent", func() {
		owner := id.UserID(uuid.New())
		dob := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		created := &models.Subject{ID: id.NewSubjectID(), Kind: models.KindDependent, OwnerID: owner, DateOfBirth: &dob, Country: "NG"}

		s.mockService.EXPECT().
			Register(gomock.Any(), service.RegisterCommand{Kind: models.KindDependent, DateOfBirth: &dob, Country: "NG"}).
			Return(created, nil)

		rec := s.do(http.MethodPost, "/subjects", `{"kind":"Dependent","date_of_birth":"2024-01-01","country":"NG"}`)
		s.Equal(http.StatusCreated, rec.Code)

		var resp SubjectResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal(created.ID.String(), resp.ID)
		s.Require().NotNil(resp.DateOfBirth)
		s.Equal("2024-01-01", *resp.DateOfBirth)
	})

	s.Run("rejects malformed date", func() {
		rec := s.do(http.MethodPost, "/subjects", `{"kind":"user","date_of_birth":"01/01/2024"}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("rejects unknown kind", func() {
		rec := s.do(http.MethodPost, "/subjects", `{"kind":"pet"}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("maps conflicts", func() {
		s.mockService.EXPECT().Register(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "subject already registered"))
		rec := s.do(http.MethodPost, "/subjects", `{"kind":"user"}`)
		s.Equal(http.StatusConflict, rec.Code)
	})
}

func (s *HandlerSuite) TestGet() {
	s.Run("invalid id", func() {
		rec := s.do(http.MethodGet, "/subjects/not-a-uuid", "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("not found", func() {
		subjectID := id.NewSubjectID()
		s.mockService.EXPECT().Get(gomock.Any(), subjectID).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "subject not found"))
		rec := s.do(http.MethodGet, "/subjects/"+subjectID.String(), "")
		s.Equal(http.StatusNotFound, rec.Code)
	})
}
