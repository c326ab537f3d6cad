package models

import (
	"strings"
	"time"
)

type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusPublished ArticleStatus = "published"
)

func (s ArticleStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Category is one of the fixed sections of the site. Values are stored as-is.
type Category string

const (
	CategoryOpinion    Category = "观点"
	CategoryTechnology Category = "科技"
	CategoryHumanities Category = "人文"
)

// DefaultCategory is preselected for new articles.
const DefaultCategory = CategoryTechnology

var Categories = []Category{CategoryOpinion, CategoryTechnology, CategoryHumanities}

var categorySlugs = map[string]Category{
	"opinions":   CategoryOpinion,
	"technology": CategoryTechnology,
	"humanities": CategoryHumanities,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Slug returns the URL segment used by the category routes.
func (c Category) Slug() string {
	for slug, category := range categorySlugs {
		if category == c {
			return slug
		}
	}
	return ""
}

// ParseCategory accepts either a URL slug ("technology") or a stored name ("科技").
func ParseCategory(value string) (Category, bool) {
	value = strings.TrimSpace(value)
	if category, ok := categorySlugs[strings.ToLower(value)]; ok {
		return category, true
	}
	category := Category(value)
	return category, category.Valid()
}

// Paragraph is one English block and its optional Chinese counterpart.
type Paragraph struct {
	English string  `json:"english"`
	Chinese *string `json:"chinese,omitempty"`
}

// HasTranslation reports whether the paragraph carries non-blank Chinese text.
func (p Paragraph) HasTranslation() bool {
	return p.Chinese != nil && strings.TrimSpace(*p.Chinese) != ""
}

type KeyTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

type ComplexSentence struct {
	English  string `json:"english"`
	Chinese  string `json:"chinese"`
	Analysis string `json:"analysis"`
}

// Article is the assembled document: the article row plus its three owned collections.
type Article struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Summary          string            `json:"summary"`
	Author           string            `json:"author"`
	AuthorTitle      *string           `json:"author_title,omitempty"`
	Category         Category          `json:"category"`
	Status           ArticleStatus     `json:"status"`
	PublishedAt      time.Time         `json:"published_at"`
	CoverImage       string            `json:"cover_image"`
	ImageCaption     *string           `json:"image_caption,omitempty"`
	ReadingTime      *int              `json:"reading_time,omitempty"`
	Content          []Paragraph       `json:"content"`
	KeyTerms         []KeyTerm         `json:"key_terms"`
	ComplexSentences []ComplexSentence `json:"complex_sentences"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (a *Article) IsDraft() bool {
	return a.Status == StatusDraft
}

type CategoryCount struct {
	Category Category `json:"category"`
	Slug     string   `json:"slug"`
	Count    int      `json:"count"`
}

type DashboardStats struct {
	TotalArticles     int             `json:"total_articles"`
	PublishedArticles int             `json:"published_articles"`
	DraftArticles     int             `json:"draft_articles"`
	Categories        []CategoryCount `json:"categories"`
	RecentArticles    []Article       `json:"recent_articles"`
}
