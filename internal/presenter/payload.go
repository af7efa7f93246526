package presenter

import (
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

// OutcomePayload is an outcome as it goes over the wire, with the rejection
// reason flattened to text.
type OutcomePayload struct {
	entity.Outcome
	Reason string `json:"reason,omitempty"`
}

// SessionPayload is what the network frontends send back for a session.
type SessionPayload struct {
	SessionID string          `json:"session_id"`
	Round     int             `json:"round"`
	State     entity.State    `json:"state"`
	Score     entity.Score    `json:"score"`
	View      View            `json:"view"`
	Outcome   *OutcomePayload `json:"outcome,omitempty"`
}

func NewSessionPayload(session *entity.Session, outcome *entity.Outcome) SessionPayload {
	payload := SessionPayload{
		SessionID: session.ID,
		Round:     session.Round,
		State:     session.State,
		Score:     session.Score,
		View:      Render(session.State, session.Score, outcome),
	}

	if outcome != nil {
		payload.Outcome = &OutcomePayload{Outcome: *outcome}
		if outcome.Reason != nil {
			payload.Outcome.Reason = outcome.Reason.Error()
		}
	}

	return payload
}

func NewResetPayload(session *entity.Session) SessionPayload {
	payload := NewSessionPayload(session, nil)
	payload.View = RenderReset(session.State, session.Score)

	return payload
}
