package models

import "time"

// Storage rows. Column names follow the hosted schema (snake_case); the
// assembler maps them onto Article.

type ArticleRow struct {
	ID           string    `gorm:"primarykey;type:varchar(36)"`
	Title        string    `gorm:"not null"`
	Summary      string    `gorm:"type:text;not null"`
	Author       string    `gorm:"not null"`
	AuthorTitle  *string   `gorm:"column:author_title"`
	Category     string    `gorm:"not null;index"`
	Status       string    `gorm:"not null;index;default:'draft'"`
	PublishedAt  time.Time `gorm:"not null;index"`
	CoverImage   string    `gorm:"not null;default:''"`
	ImageCaption *string
	ReadingTime  *int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (ArticleRow) TableName() string { return "articles" }

type ContentRow struct {
	ID        string      `gorm:"primarykey;type:varchar(36)"`
	ArticleID string      `gorm:"type:varchar(36);not null;index"`
	Article   *ArticleRow `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE"`
	English   string      `gorm:"type:text;not null"`
	Chinese   *string     `gorm:"type:text"`
	Position  int         `gorm:"not null"`
	CreatedAt time.Time
}

func (ContentRow) TableName() string { return "article_content" }

type KeyTermRow struct {
	ID         string      `gorm:"primarykey;type:varchar(36)"`
	ArticleID  string      `gorm:"type:varchar(36);not null;index"`
	Article    *ArticleRow `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE"`
	Term       string      `gorm:"not null"`
	Definition string      `gorm:"type:text;not null"`
	CreatedAt  time.Time
}

func (KeyTermRow) TableName() string { return "key_terms" }

type ComplexSentenceRow struct {
	ID        string      `gorm:"primarykey;type:varchar(36)"`
	ArticleID string      `gorm:"type:varchar(36);not null;index"`
	Article   *ArticleRow `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE"`
	English   string      `gorm:"type:text;not null"`
	Chinese   string      `gorm:"type:text;not null"`
	Analysis  string      `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (ComplexSentenceRow) TableName() string { return "complex_sentences" }
