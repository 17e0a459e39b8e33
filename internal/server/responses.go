package server

import (
	"time"

	"buckler-tracker/internal/domain"
)

// Field names keep the JSON shape the dashboard and overlay already read.

type PlayerResponse struct {
	CanonicalID string `json:"user_code,omitempty"`
	Name        string `json:"name"`
	LP          int    `json:"lp"`
	Rank        string `json:"rank"`
	MR          *int   `json:"mr,omitempty"`
	Character   string `json:"character"`
	LastUpdated string `json:"last_updated,omitempty"`
}

type StatusResponse struct {
	AuthExists   bool            `json:"auth_exists"`
	DBExists     bool            `json:"db_exists"`
	LatestPlayer *PlayerResponse `json:"latest_player"`
}

type RefreshResponse struct {
	Status string         `json:"status"`
	Data   PlayerResponse `json:"data"`
}

type CollectResponse struct {
	Status        string `json:"status"`
	CanonicalID   string `json:"user_code"`
	Scraped       int    `json:"scraped"`
	Inserted      int    `json:"inserted"`
	Ambiguous     int    `json:"ambiguous"`
	DateFallbacks int    `json:"date_fallbacks"`
}

type MatchResponse struct {
	ID                string `json:"id"`
	Date              string `json:"date"`
	OpponentName      string `json:"opponent_name"`
	OpponentCharacter string `json:"opponent_character"`
	OpponentMR        *int   `json:"opponent_mr"`
	OpponentLP        *int   `json:"opponent_lp"`
	MyCharacter       string `json:"my_character"`
	MyMR              *int   `json:"my_mr"`
	MyLP              *int   `json:"my_lp"`
	Result            string `json:"result"`
}

type RecordResponse struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Total  int `json:"total"`
}

type NamedRecordResponse struct {
	Name string `json:"name"`
	RecordResponse
}

type CharacterRecordResponse struct {
	Character string `json:"character"`
	RecordResponse
}

type OpponentRecordResponse struct {
	OpponentName string `json:"opponent_name"`
	RecordResponse
}

type SummaryResponse struct {
	Total            RecordResponse           `json:"total"`
	Recent           RecordResponse           `json:"recent"`
	MyCharacter      string                   `json:"my_character"`
	LastOpponentName *NamedRecordResponse     `json:"last_opponent_name"`
	LastOpponentChar *CharacterRecordResponse `json:"last_opponent_char"`
}

type OpponentResponse struct {
	Name string `json:"name"`
}

type RatingPointResponse struct {
	Date   string `json:"date"`
	MR     int    `json:"mr"`
	Result string `json:"result"`
}

type DeleteResponse struct {
	Status         string `json:"status"`
	DeletedMatches int64  `json:"deleted_matches"`
	DeletedPlayers int64  `json:"deleted_players"`
}

type SubjectResponse struct {
	SubjectID string `json:"subject_id"`
}

type ErrorResponse struct {
	Error        string          `json:"error"`
	AuthRequired bool            `json:"auth_required,omitempty"`
	Data         *PlayerResponse `json:"data,omitempty"`
}

func toPlayerResponse(p *domain.Player) PlayerResponse {
	resp := PlayerResponse{
		CanonicalID: p.CanonicalID,
		Name:        p.DisplayName,
		LP:          p.RatingPoints,
		Rank:        p.RankTier,
		MR:          p.RatingScore,
		Character:   p.MainCharacter,
	}
	if !p.LastRefreshed.IsZero() {
		resp.LastUpdated = p.LastRefreshed.Format(time.RFC3339)
	}
	return resp
}

func toRecordResponse(r domain.Record) RecordResponse {
	return RecordResponse{Wins: r.Wins, Losses: r.Losses, Total: r.Total}
}
