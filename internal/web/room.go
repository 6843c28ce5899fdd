package web

import (
	"net/http"
)

type roomTokenRequest struct {
	RoomName        string `json:"roomName"`
	ParticipantName string `json:"participantName"`
}

type roomTokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) roomToken(w http.ResponseWriter, r *http.Request) {
	if _, err := sessionFromCtx(r.Context()); err != nil {
		s.handleError(w, r, err)
		return
	}

	req, err := decodeJSON[roomTokenRequest](r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	token, err := s.deps.RoomTokens.Mint(req.RoomName, req.ParticipantName)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeSuccess(w, http.StatusOK, "Room token generated", roomTokenResponse{Token: token})
}
