// Package interview provides storage and retrieval of completed
// interview sessions. Records are always scoped to the user that
// owns them.
package interview

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mentorai/mentorai/internal/errorz"
)

// Mode indicates the kind of interview session a record came from.
type Mode string

const (
	ModeAnalysis Mode = "ANALYSIS"
	ModeQuick    Mode = "QUICK"
)

// ParseMode parses raw into a Mode.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case ModeAnalysis, ModeQuick:
		return Mode(raw), nil
	}
	return "", fmt.Errorf("unknown mode %q", raw)
}

// Sender indicates which side of the conversation a message came from.
type Sender string

const (
	SenderAI   Sender = "ai"
	SenderUser Sender = "user"
)

// Message is a single transcript entry.
type Message struct {
	From    Sender    `json:"from"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Record is a completed interview session.
type Record struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"userId"`
	Mode       Mode      `json:"mode"`
	Score      float64   `json:"score"`
	Strengths  []string  `json:"strengths"`
	Weaknesses []string  `json:"weaknesses"`
	Transcript []Message `json:"transcript"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewRecord is the input to save an interview session.
type NewRecord struct {
	Mode       Mode      `json:"mode"`
	Score      float64   `json:"score"`
	Strengths  []string  `json:"strengths"`
	Weaknesses []string  `json:"weaknesses"`
	Transcript []Message `json:"transcript"`
}

func (n NewRecord) validate() error {
	var errs errorz.InvalidInput

	if _, err := ParseMode(string(n.Mode)); err != nil {
		errs = append(errs, errorz.Keyed{Key: "mode", Err: err})
	}

	for i, msg := range n.Transcript {
		switch msg.From {
		case SenderAI, SenderUser:
		default:
			errs = append(errs, errorz.Keyed{
				Key: fmt.Sprintf("transcript[%d].from", i),
				Err: fmt.Errorf("unknown sender %q", msg.From),
			})
		}

		if msg.Message == "" {
			errs = append(errs, errorz.Keyed{
				Key: fmt.Sprintf("transcript[%d].message", i),
				Err: errors.New("message is empty"),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
