package models

import "time"

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ChangePasswordRequest is checked rule by rule in the auth service.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type CreateArticleRequest struct {
	Title            string            `json:"title" validate:"required,max=255"`
	Summary          string            `json:"summary"`
	Author           string            `json:"author" validate:"required,max=255"`
	AuthorTitle      *string           `json:"author_title"`
	Category         Category          `json:"category" validate:"required,oneof=观点 科技 人文"`
	Status           ArticleStatus     `json:"status" validate:"omitempty,oneof=draft published"`
	PublishedAt      *time.Time        `json:"published_at"`
	CoverImage       string            `json:"cover_image"`
	ImageCaption     *string           `json:"image_caption"`
	ReadingTime      *int              `json:"reading_time" validate:"omitempty,min=1"`
	Content          []Paragraph       `json:"content"`
	KeyTerms         []KeyTerm         `json:"key_terms"`
	ComplexSentences []ComplexSentence `json:"complex_sentences"`
}

// UpdateArticleRequest is a partial update: nil means "leave as is". A
// non-nil collection pointer, even to an empty slice, replaces that collection.
// Clear names optional fields to reset to absent.
type UpdateArticleRequest struct {
	Title            *string            `json:"title" validate:"omitempty,min=1,max=255"`
	Summary          *string            `json:"summary"`
	Author           *string            `json:"author" validate:"omitempty,min=1,max=255"`
	AuthorTitle      *string            `json:"author_title"`
	Category         *Category          `json:"category" validate:"omitempty,oneof=观点 科技 人文"`
	Status           *ArticleStatus     `json:"status" validate:"omitempty,oneof=draft published"`
	PublishedAt      *time.Time         `json:"published_at"`
	CoverImage       *string            `json:"cover_image"`
	ImageCaption     *string            `json:"image_caption"`
	ReadingTime      *int               `json:"reading_time" validate:"omitempty,min=1"`
	Content          *[]Paragraph       `json:"content"`
	KeyTerms         *[]KeyTerm         `json:"key_terms"`
	ComplexSentences *[]ComplexSentence `json:"complex_sentences"`
	Clear            []string           `json:"clear" validate:"omitempty,dive,oneof=author_title image_caption reading_time"`
}

// ClearableFields lists the optional article fields an update may reset.
var ClearableFields = []string{"author_title", "image_caption", "reading_time"}

type ArticleListParams struct {
	Status   string `form:"status"`
	Category string `form:"category"`
	Query    string `form:"q"`
}

type APISettingsRequest struct {
	APIKey      string       `json:"api_key"`
	APIEndpoint string       `json:"api_endpoint"`
	Model       string       `json:"model"`
	UseProxy    *bool        `json:"use_proxy"`
	Provider    ProviderKind `json:"provider"`
}

type ConnectionTestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type AutoFillResult struct {
	ItemID  string `json:"item_id"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	Applied bool   `json:"applied"`
}
