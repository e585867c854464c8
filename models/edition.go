package models

import "time"

// Edition is one year's instance of an Event.
type Edition struct {
	ID      uint  `json:"id" gorm:"primaryKey"`
	EventID uint  `json:"-" gorm:"index:idx_editions_event_year;not null"`
	Event   Event `json:"event"`

	Year      int        `json:"year" gorm:"index:idx_editions_event_year;not null"`
	Location  string     `json:"location,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	Articles []Article `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName sets the explicit table name for GORM.
func (Edition) TableName() string {
	return "editions"
}
