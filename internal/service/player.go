package service

import "github.com/benbeisheim/squarechess-backend/internal/model"

// Player is a participant known only by the ID the client sends.
type Player struct {
	ID string
}

// ClientPlayer is a seat as reported to clients. TimeLeft is in tenths of a
// second.
type ClientPlayer struct {
	ID       string      `json:"id"`
	Color    model.Color `json:"color"`
	TimeLeft int         `json:"timeLeft"`
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

// MatchFoundEvent is delivered to a queued player once paired.
type MatchFoundEvent struct {
	GameID string      `json:"gameId"`
	Color  model.Color `json:"color"`
}
