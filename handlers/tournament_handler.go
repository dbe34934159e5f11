package handlers

import (
	"net/http"

	"github.com/clashcup/clanwar-tournament/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	boardService      services.BoardService
}

func NewTournamentHandler(
	tournamentService services.TournamentService,
	boardService services.BoardService,
) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
		boardService:      boardService,
	}
}

func (h *TournamentHandler) CreateGroupStage(w http.ResponseWriter, r *http.Request) {
	var input services.CreateGroupStageInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	created, err := h.tournamentService.CreateGroupStage(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"count":   len(created),
		"created": created,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GroupStandings(w http.ResponseWriter, r *http.Request) {
	group := queryParam(r, "group", "")

	rows, err := h.tournamentService.GroupStandings(r.Context(), group)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, rows, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) SeedKnockout(w http.ResponseWriter, r *http.Request) {
	var input services.SeedKnockoutInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	created, err := h.tournamentService.SeedKnockoutFromGroup(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"count":   len(created),
		"created": created,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) PredesignKnockout(w http.ResponseWriter, r *http.Request) {
	var input services.PredesignKnockoutInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.tournamentService.PredesignKnockout(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) AdvanceKnockout(w http.ResponseWriter, r *http.Request) {
	var input services.AdvanceKnockoutInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.tournamentService.AdvanceKnockout(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GenerateRound(w http.ResponseWriter, r *http.Request) {
	var input services.GenerateRoundInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	created, err := h.tournamentService.GenerateRound(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"count":   len(created),
		"created": created,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Bracket(w http.ResponseWriter, r *http.Request) {
	bracketID := queryParam(r, "bracketId", "main")

	view, err := h.boardService.Bracket(r.Context(), bracketID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := h.boardService.Leaderboard(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, rows, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := jsonResponse{"status": "ok"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
