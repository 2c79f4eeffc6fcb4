package ws

import (
	"encoding/json"

	"github.com/benbeisheim/squarechess-backend/internal/model"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	MessageTypeSelect          MessageType = "select"
	MessageTypePromote         MessageType = "promote"
	MessageTypeCancelPromotion MessageType = "cancelPromotion"
	MessageTypeGameState       MessageType = "gameState"
	MessageTypeMatchFound      MessageType = "matchFound"
	MessageTypeError           MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SelectPayload is a click on (rank, file), both 1..8.
type SelectPayload struct {
	Rank int `json:"rank"`
	File int `json:"file"`
}

type PromotePayload struct {
	Piece model.PieceKind `json:"piece"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

func NewMessage(t MessageType, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: data}, nil
}

func ErrorMessage(err error) Message {
	msg, _ := NewMessage(MessageTypeError, ErrorPayload{Error: err.Error()})
	return msg
}
