package visits

import "time"

// Topic names on the event bus.
const (
	TopicVisitRecorded = "site.visit.recorded"
	TopicMessagePosted = "guestboard.message.posted"
)

// VisitEvent is emitted when a short link redirect is served.
type VisitEvent struct {
	VisitorID  string    `json:"visitorId"`
	Word       string    `json:"word"`
	TargetURL  string    `json:"targetUrl"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	Referrer   string    `json:"referrer,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// MessagePostedEvent is emitted when a guestboard message is stored.
type MessagePostedEvent struct {
	MessageID string    `json:"messageId"`
	VisitorID string    `json:"visitorId"`
	ClientIP  string    `json:"clientIp"`
	PostedAt  time.Time `json:"postedAt"`
}
