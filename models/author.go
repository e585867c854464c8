package models

// Author represents a person who wrote one or more articles.
// Authors are deduplicated by exact name match, no normalization.
type Author struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"uniqueIndex;not null"`
	Email string `json:"email,omitempty"`

	Articles []*Article `json:"-" gorm:"many2many:article_authors;"`
}

// TableName sets the explicit table name for GORM.
func (Author) TableName() string {
	return "authors"
}
