package models

// Event represents a recurring conference or workshop series.
type Event struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;not null"` // e.g. "SBES"
	Description string `json:"description" gorm:"type:text"`

	Editions []Edition `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName sets the explicit table name for GORM.
func (Event) TableName() string {
	return "events"
}
