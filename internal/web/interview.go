package web

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mentorai/mentorai/internal/errorz"
	"github.com/mentorai/mentorai/internal/interview"
)

func (s *Server) saveInterview(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromCtx(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	in, err := decodeJSON[interview.NewRecord](r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	record, err := s.deps.InterviewService.Save(r.Context(), session.UserID, in)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeSuccess(w, http.StatusCreated, "Interview saved successfully", record)
}

func (s *Server) interviewHistory(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromCtx(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	records, err := s.deps.InterviewService.History(r.Context(), session.UserID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if records == nil {
		records = []interview.Record{}
	}

	s.writeSuccess(w, http.StatusOK, "Get history successfully", records)
}

func (s *Server) interviewByID(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromCtx(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		// Malformed ids can't match a record.
		s.handleError(w, r, errorz.ErrNotFound)
		return
	}

	record, err := s.deps.InterviewService.ByID(r.Context(), session.UserID, id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeSuccess(w, http.StatusOK, "Get interview detail successfully", record)
}
