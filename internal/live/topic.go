// Package live pushes change notifications for house-scoped collections to
// subscribers, which re-query and receive the full current result set.
package live

import "context"

// Kind names a house-scoped collection that can be watched.
type Kind string

const (
	KindChores        Kind = "chores"
	KindExpenses      Kind = "expenses"
	KindAnnouncements Kind = "announcements"
	KindMembers       Kind = "members"
)

// Kinds lists every watchable collection in dashboard order.
var Kinds = []Kind{KindChores, KindExpenses, KindAnnouncements, KindMembers}

// Topic is the notification channel for one collection of one house.
func Topic(kind Kind, houseID string) string {
	return string(kind) + ":" + houseID
}

// ProfileTopic fires when a user's profile, most importantly its active
// house, changes.
func ProfileTopic(userID string) string {
	return "profile:" + userID
}

// Notifier fans change signals out to topic listeners. A signal carries no
// payload; listeners re-read the data themselves.
type Notifier interface {
	// Subscribe returns a channel that receives a value after each Publish to
	// topic. Bursts may coalesce into one signal. The returned func stops the
	// subscription and closes the channel; it is safe to call more than once.
	Subscribe(topic string) (<-chan struct{}, func())
	Publish(ctx context.Context, topic string) error
}

// Publisher is the write half of Notifier, used by the services.
type Publisher interface {
	Publish(ctx context.Context, topic string) error
}
