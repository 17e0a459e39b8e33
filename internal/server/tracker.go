package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"buckler-tracker/internal/constants"
	"buckler-tracker/internal/domain"
	"buckler-tracker/internal/service"
	"buckler-tracker/internal/worker"

	"github.com/rs/zerolog"
)

type TrackerServer struct {
	playerSvc *service.PlayerService
	matchSvc  *service.MatchService
	statsSvc  *service.StatsService
	statusSvc *service.StatusService
}

func NewTrackerServer(playerSvc *service.PlayerService, matchSvc *service.MatchService, statsSvc *service.StatsService, statusSvc *service.StatusService) *TrackerServer {
	return &TrackerServer{playerSvc: playerSvc, matchSvc: matchSvc, statsSvc: statsSvc, statusSvc: statusSvc}
}

func (s *TrackerServer) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.GetStatus)
	mux.HandleFunc("GET /api/stats", s.GetStats)
	mux.HandleFunc("POST /api/refresh", s.Refresh)
	mux.HandleFunc("POST /api/collect", s.Collect)
	mux.HandleFunc("GET /api/matches", s.GetMatches)
	mux.HandleFunc("GET /api/stats/summary", s.GetSummary)
	mux.HandleFunc("GET /api/stats/opponents", s.GetOpponents)
	mux.HandleFunc("GET /api/stats/opponents/{name}", s.GetOpponentRecord)
	mux.HandleFunc("GET /api/stats/rating-history", s.GetRatingHistory)
	mux.HandleFunc("DELETE /api/data", s.DeleteData)
	mux.HandleFunc("GET /api/config/subject", s.GetSubject)
	mux.HandleFunc("PUT /api/config/subject", s.SetSubject)
	return mux
}

func (s *TrackerServer) GetStatus(w http.ResponseWriter, r *http.Request) {
	st := s.statusSvc.Status(r.Context())
	resp := StatusResponse{AuthExists: st.AuthReady, DBExists: st.DBReady}
	if st.Player != nil {
		p := toPlayerResponse(st.Player)
		resp.LatestPlayer = &p
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetStats returns the latest profile, or a placeholder before the first refresh.
func (s *TrackerServer) GetStats(w http.ResponseWriter, r *http.Request) {
	player, err := s.playerSvc.Latest(r.Context())
	if errors.Is(err, domain.ErrPlayerNotFound) {
		writeJSON(w, http.StatusOK, PlayerResponse{
			Name:      constants.NoDataName,
			Rank:      constants.UnrankedTier,
			Character: constants.NoCharacter,
		})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlayerResponse(player))
}

func (s *TrackerServer) Refresh(w http.ResponseWriter, r *http.Request) {
	player, err := s.playerSvc.Refresh(r.Context())
	if errors.Is(err, domain.ErrUnresolvedIdentity) && player != nil {
		p := toPlayerResponse(player)
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Data: &p})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	p := toPlayerResponse(player)
	writeJSON(w, http.StatusOK, RefreshResponse{Status: "success", Data: p})
}

func (s *TrackerServer) Collect(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := s.matchSvc.Collect(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CollectResponse{
		Status:        "success",
		CanonicalID:   result.CanonicalID,
		Scraped:       result.Scraped,
		Inserted:      result.Inserted,
		Ambiguous:     result.Ambiguous,
		DateFallbacks: result.DateFallbacks,
	})
}

func (s *TrackerServer) GetMatches(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	matches, err := s.matchSvc.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := make([]MatchResponse, len(matches))
	for i, m := range matches {
		resp[i] = MatchResponse{
			ID:                m.ID,
			Date:              m.OccurredAt.Format(time.RFC3339),
			OpponentName:      m.OpponentName,
			OpponentCharacter: m.OpponentCharacter,
			OpponentMR:        m.OpponentRatingScore,
			OpponentLP:        m.OpponentRatingPoints,
			MyCharacter:       m.SubjectCharacter,
			MyMR:              m.SubjectRatingScore,
			MyLP:              m.SubjectRatingPoints,
			Result:            string(m.Outcome),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *TrackerServer) GetSummary(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := s.statsSvc.Summary(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := SummaryResponse{
		Total:       toRecordResponse(summary.Total),
		Recent:      toRecordResponse(summary.Recent),
		MyCharacter: summary.SubjectCharacter,
	}
	if rec := summary.LastOpponent; rec != nil {
		resp.LastOpponentName = &NamedRecordResponse{Name: rec.Opponent, RecordResponse: toRecordResponse(*rec)}
	}
	if rec := summary.LastOpponentChar; rec != nil {
		resp.LastOpponentChar = &CharacterRecordResponse{Character: rec.Opponent, RecordResponse: toRecordResponse(*rec)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *TrackerServer) GetOpponentRecord(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	rec, err := s.statsSvc.OpponentRecord(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OpponentRecordResponse{OpponentName: name, RecordResponse: toRecordResponse(rec)})
}

func (s *TrackerServer) GetOpponents(w http.ResponseWriter, r *http.Request) {
	names, err := s.statsSvc.Opponents(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := make([]OpponentResponse, 0, len(names))
	for _, n := range names {
		if n != "" {
			resp = append(resp, OpponentResponse{Name: n})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *TrackerServer) GetRatingHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	points, err := s.statsSvc.RatingHistory(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := make([]RatingPointResponse, len(points))
	for i, p := range points {
		resp[i] = RatingPointResponse{Date: p.Date.Format(time.RFC3339), MR: p.Score, Result: string(p.Outcome)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *TrackerServer) DeleteData(w http.ResponseWriter, r *http.Request) {
	matches, players, err := s.statsSvc.Wipe(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Status: "success", DeletedMatches: matches, DeletedPlayers: players})
}

func (s *TrackerServer) GetSubject(w http.ResponseWriter, r *http.Request) {
	id, err := s.playerSvc.SubjectID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SubjectResponse{SubjectID: id})
}

func (s *TrackerServer) SetSubject(w http.ResponseWriter, r *http.Request) {
	var req SubjectResponse
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<12)).Decode(&req); err != nil {
		writeError(w, r, &badRequestError{msg: "invalid JSON body"})
		return
	}
	if err := s.playerSvc.SetSubjectID(r.Context(), req.SubjectID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &badRequestError{msg: key + " must be a non-negative integer"}
	}
	return n, nil
}

func statusFor(err error) int {
	var bad *badRequestError
	switch {
	case errors.As(err, &bad), errors.Is(err, service.ErrInvalidSubjectID):
		return http.StatusBadRequest
	case domain.IsAuthError(err):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnresolvedIdentity), errors.Is(err, domain.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, worker.ErrQueueFull), errors.Is(err, worker.ErrQueueClosed):
		return http.StatusServiceUnavailable
	case domain.IsTransient(err):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		logger.Warn().Err(err).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), AuthRequired: domain.IsAuthError(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
