package analytics

import "time"

type EventType string

const (
	EventSearch      EventType = "search"
	EventZeroResult  EventType = "zero_result"
	EventRegister    EventType = "register"
	EventLogin       EventType = "login"
	EventLoginFailed EventType = "login_failed"
	EventLogout      EventType = "logout"
	EventDeleteUser  EventType = "account_deleted"
	EventContact     EventType = "contact"
)

// Event is anything the collector can publish. The type doubles as the
// Kafka message key.
type Event interface {
	EventType() EventType
}

type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Words     []string  `json:"words"`
	TotalHits int       `json:"total_hits"`
	Returned  int       `json:"returned"`
	Page      int       `json:"page"`
	LatencyUs int64     `json:"latency_us"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

func (e SearchEvent) EventType() EventType { return e.Type }

// UserEvent records account and contact activity. UserID is empty for
// failed logins and anonymous contact messages.
type UserEvent struct {
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

func (e UserEvent) EventType() EventType { return e.Type }

type envelope struct {
	Type EventType `json:"type"`
}
