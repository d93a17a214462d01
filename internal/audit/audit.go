package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vedicroots/vedicroots/backend/cms-services/pkg/logger"
)

// Event actions recorded on the auth path.
const (
	ActionLogin          = "login"
	ActionLoginFailed    = "login_failed"
	ActionRefresh        = "refresh"
	ActionLogout         = "logout"
	ActionPasswordChange = "password_change"
)

// Event is one audit record. Subject may be an email on failed logins when no
// user id is known.
type Event struct {
	ID      string    `bson:"_id"`
	Action  string    `bson:"action"`
	Subject string    `bson:"subject"`
	IP      string    `bson:"ip,omitempty"`
	At      time.Time `bson:"at"`
}

// Logger writes auth events to a Mongo collection from a background goroutine.
// Record is fire-and-forget: it never blocks the request path and drops events
// when the buffer is full or no sink is configured.
type Logger struct {
	ch chan Event
}

// NewLogger starts the background writer. A nil collection yields a logger
// that discards everything.
func NewLogger(col *mongo.Collection) *Logger {
	l := &Logger{ch: make(chan Event, 128)}
	go l.run(col)
	return l
}

func (l *Logger) run(col *mongo.Collection) {
	for ev := range l.ch {
		if col == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := col.InsertOne(ctx, ev); err != nil {
			logger.Warnf("audit write failed (action=%s): %v", ev.Action, err)
		}
		cancel()
	}
}

// Record enqueues an event, dropping it when the buffer is saturated.
func (l *Logger) Record(action, subject, ip string) {
	if l == nil {
		return
	}
	ev := Event{
		ID:      uuid.NewString(),
		Action:  action,
		Subject: subject,
		IP:      ip,
		At:      time.Now().UTC(),
	}
	select {
	case l.ch <- ev:
	default:
		logger.Debugf("audit buffer full, dropping %s event", action)
	}
}
