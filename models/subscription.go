package models

import "time"

// Subscription registers an email for notification when new articles appear.
// AuthorID and EventID are both optional; a subscription with neither set is
// a general subscription covering every new article.
type Subscription struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	Email string `json:"email" gorm:"index;not null"`

	AuthorID *uint   `json:"author_id,omitempty"`
	Author   *Author `json:"-"`

	EventID *uint  `json:"event_id,omitempty"`
	Event   *Event `json:"-"`
}

// TableName sets the explicit table name for GORM.
func (Subscription) TableName() string {
	return "subscriptions"
}
