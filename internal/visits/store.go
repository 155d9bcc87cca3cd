package visits

import "context"

// Store persists visit and post events consumed from the bus.
type Store interface {
	SaveVisit(ctx context.Context, event *VisitEvent) error
	SaveMessagePosted(ctx context.Context, event *MessagePostedEvent) error
}
