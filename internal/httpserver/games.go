package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/bowling/apps/go-server/internal/bowling"
)

// gameSummary is the list representation of a game.
type gameSummary struct {
	ID         int64              `json:"id"`
	Status     bowling.GameStatus `json:"status"`
	TotalScore int                `json:"total_score"`
	Timestamp  string             `json:"timestamp"`
}

// gameDetail adds frames and throws to the summary.
type gameDetail struct {
	gameSummary
	Frames []frameView `json:"frames"`
}

type frameView struct {
	Status     bowling.FrameStatus `json:"status"`
	Number     int                 `json:"number"`
	TotalScore int                 `json:"total_score"`
	Throws     []throwView         `json:"throws"`
}

type throwView struct {
	Score  int `json:"score"`
	Number int `json:"number"`
}

// throwReq is the body of POST /api/games/{id}/throws.
type throwReq struct {
	Throw *struct {
		Score *int `json:"score"`
	} `json:"throw"`
}

func summaryOf(g *bowling.Game) gameSummary {
	return gameSummary{
		ID:         g.ID,
		Status:     g.Status,
		TotalScore: g.TotalScore,
		Timestamp:  g.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func detailOf(g *bowling.Game) gameDetail {
	d := gameDetail{gameSummary: summaryOf(g), Frames: make([]frameView, 0, len(g.Frames))}
	for _, f := range g.Frames {
		fv := frameView{
			Status:     f.Status,
			Number:     f.Number,
			TotalScore: f.TotalScore,
			Throws:     make([]throwView, 0, len(f.Throws)),
		}
		for _, t := range f.Throws {
			fv.Throws = append(fv.Throws, throwView{Score: t.Score, Number: t.Number})
		}
		d.Frames = append(d.Frames, fv)
	}
	return d
}

// gameID parses a path parameter; unparsable ids are reported as missing games.
func gameID(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	return id, err == nil && id > 0
}

// GET /api/games
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.tracker.Games(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]gameSummary, 0, len(games))
	for i := range games {
		out = append(out, summaryOf(&games[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /api/games
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.tracker.CreateGame(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, detailOf(g))
}

// GET /api/games/{id}
func (s *Server) handleShowGame(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(r, "id")
	if !ok {
		writeError(w, r, bowling.ErrGameNotFound)
		return
	}
	g, err := s.tracker.Game(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detailOf(g))
}

// POST /api/games/{id}/throws
func (s *Server) handleCreateThrow(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(r, "id")
	if !ok {
		writeError(w, r, bowling.ErrGameNotFound)
		return
	}
	var req throwReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrors(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Throw == nil || req.Throw.Score == nil {
		writeErrors(w, http.StatusBadRequest, "Throw score is required")
		return
	}
	if err := s.tracker.RegisterThrow(r.Context(), id, *req.Throw.Score); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
