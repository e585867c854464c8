package models

import "time"

// Article represents a published academic article and its metadata.
type Article struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	Title    string `json:"title" gorm:"type:varchar(500);not null"`
	Abstract string `json:"abstract,omitempty" gorm:"type:text"`

	// PDFURL is an external link supplied with the record; PDFKey is the
	// storage key of an uploaded attachment. PDFKey wins when both are set.
	PDFURL string `json:"pdf_url,omitempty"`
	PDFKey string `json:"-"`

	EditionID uint    `json:"-" gorm:"index;not null"`
	Edition   Edition `json:"edition"`

	Authors []*Author `json:"authors" gorm:"many2many:article_authors;"`

	// Bibtex keeps the raw source record the article was imported from.
	Bibtex string `json:"bibtex,omitempty" gorm:"type:text"`
}

// TableName sets the explicit table name for GORM.
func (Article) TableName() string {
	return "articles"
}
