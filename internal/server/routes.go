package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/verte-zerg/quickten/internal/model"
	"github.com/verte-zerg/quickten/internal/score"
)

const maxRankingLimit = 100

type bestResponse struct {
	PlayerID  string `json:"playerId"`
	BestScore int    `json:"bestScore"`
}

type commitRequest struct {
	Score *int `json:"score"`
}

type commitResponse struct {
	Updated bool `json:"updated"`
}

type rankingResponse struct {
	Entries []model.RankingEntry `json:"entries"`
}

func addRoutes(r chi.Router, sync *score.Synchronizer, health Pinger) {
	r.Get("/healthz", handleHealth(health))
	r.Route("/v1", func(r chi.Router) {
		r.Get("/scores/{playerID}", handleGetScore(sync))
		r.Put("/scores/{playerID}", handleCommitScore(sync))
		r.Get("/ranking", handleRanking(sync))
	})
}

func handleHealth(health Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health.Ping(r.Context()); err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("health check failed")
				writeError(w, http.StatusServiceUnavailable, "store unavailable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleGetScore(sync *score.Synchronizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := chi.URLParam(r, "playerID")
		best, ok, err := sync.FetchBest(r.Context(), playerID)
		if err != nil {
			writeSyncError(w, r, err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "no score for player")
			return
		}
		writeJSON(w, http.StatusOK, bestResponse{PlayerID: playerID, BestScore: best})
	}
}

func handleCommitScore(sync *score.Synchronizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := chi.URLParam(r, "playerID")
		var req commitRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Score == nil {
			writeError(w, http.StatusBadRequest, "score is required")
			return
		}
		updated, err := sync.CommitIfBest(r.Context(), playerID, *req.Score)
		if err != nil {
			writeSyncError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, commitResponse{Updated: updated})
	}
}

func handleRanking(sync *score.Synchronizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := model.DefaultRankingLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "limit must be an integer")
				return
			}
			limit = n
		}
		if limit > maxRankingLimit {
			limit = maxRankingLimit
		}
		entries, err := sync.FetchTopRanking(r.Context(), limit)
		if err != nil {
			writeSyncError(w, r, err)
			return
		}
		if entries == nil {
			entries = []model.RankingEntry{}
		}
		writeJSON(w, http.StatusOK, rankingResponse{Entries: entries})
	}
}

func writeSyncError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, score.ErrNotAuthenticated):
		writeError(w, http.StatusBadRequest, "player id is required")
	case errors.Is(err, score.ErrInvalidScore):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("score store failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent.
		_ = err
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer func() {
		if cerr := r.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
