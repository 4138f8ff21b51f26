// Package types contains read shapes shared by the service and the HTTP layer.
package types

// Standing is one row of the points table.
type Standing struct {
	Rank          int    `json:"rank"`
	ParticipantID string `json:"participant_id"`
	Username      string `json:"username"`
	Points        int    `json:"points"`
	Wins          int    `json:"wins"`
	MVPs          int    `json:"mvps"`
	GamesPlayed   int    `json:"games_played"`
}
