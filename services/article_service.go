package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"zhiyi-cms/metrics"
	"zhiyi-cms/models"
	"zhiyi-cms/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/go-playground/validator.v9"
	"gorm.io/gorm"
)

const recentArticlesLimit = 5

type ArticleService interface {
	ListPublished(ctx context.Context) ([]models.Article, error)
	ListAll(ctx context.Context, params models.ArticleListParams) ([]models.Article, error)
	ListByCategory(ctx context.Context, category string) ([]models.Article, error)
	GetByID(ctx context.Context, id string, includeDrafts bool) (*models.Article, error)
	Search(ctx context.Context, query string) ([]models.Article, error)
	SearchAll(ctx context.Context, query string) ([]models.Article, error)
	Create(ctx context.Context, req models.CreateArticleRequest) (*models.Article, error)
	Update(ctx context.Context, id string, req models.UpdateArticleRequest) (*models.Article, error)
	Delete(ctx context.Context, id string) error
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
}

type articleService struct {
	articleRepo repositories.ArticleRepository
	assembler   *Assembler
	validate    *validator.Validate
	log         zerolog.Logger
}

func NewArticleService(articleRepo repositories.ArticleRepository, validate *validator.Validate, log zerolog.Logger) ArticleService {
	return &articleService{
		articleRepo: articleRepo,
		assembler:   NewAssembler(articleRepo),
		validate:    validate,
		log:         log.With().Str("component", "article_service").Logger(),
	}
}

func (s *articleService) ListPublished(ctx context.Context) ([]models.Article, error) {
	return s.list(ctx, repositories.ArticleFilter{Status: models.StatusPublished})
}

func (s *articleService) ListAll(ctx context.Context, params models.ArticleListParams) ([]models.Article, error) {
	filter := repositories.ArticleFilter{Query: params.Query}

	if params.Status != "" {
		status := models.ArticleStatus(params.Status)
		if !status.Valid() {
			return nil, models.ErrorValidation{Field: "status", Message: "status must be draft or published"}
		}
		filter.Status = status
	}

	if params.Category != "" {
		category, ok := models.ParseCategory(params.Category)
		if !ok {
			return nil, models.ErrorValidation{Field: "category", Message: "unknown category"}
		}
		filter.Category = category
	}

	return s.list(ctx, filter)
}

// ListByCategory accepts a slug or a stored category name.
func (s *articleService) ListByCategory(ctx context.Context, category string) ([]models.Article, error) {
	parsed, ok := models.ParseCategory(category)
	if !ok {
		return nil, models.ErrorNotFound{Message: "category not found"}
	}
	return s.list(ctx, repositories.ArticleFilter{Status: models.StatusPublished, Category: parsed})
}

// GetByID hides drafts from readers by reporting them as not found.
func (s *articleService) GetByID(ctx context.Context, id string, includeDrafts bool) (*models.Article, error) {
	article, err := s.assembler.Assemble(ctx, id)
	if err != nil {
		if !errors.Is(err, models.ErrArticleNotFound) {
			s.log.Error().Err(err).Str("article_id", id).Msg("Failed to load article")
		}
		return nil, err
	}

	if !includeDrafts && article.IsDraft() {
		return nil, models.ErrArticleNotFound
	}

	return article, nil
}

func (s *articleService) Search(ctx context.Context, query string) ([]models.Article, error) {
	return s.search(ctx, query, models.StatusPublished)
}

func (s *articleService) SearchAll(ctx context.Context, query string) ([]models.Article, error) {
	return s.search(ctx, query, "")
}

func (s *articleService) search(ctx context.Context, query string, status models.ArticleStatus) ([]models.Article, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Article{}, nil
	}
	return s.list(ctx, repositories.ArticleFilter{Status: status, Query: query})
}

func (s *articleService) Create(ctx context.Context, req models.CreateArticleRequest) (*models.Article, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	now := time.Now()
	row := &models.ArticleRow{
		ID:           uuid.New().String(),
		Title:        req.Title,
		Summary:      req.Summary,
		Author:       req.Author,
		AuthorTitle:  req.AuthorTitle,
		Category:     string(req.Category),
		Status:       string(models.StatusDraft),
		PublishedAt:  now,
		CoverImage:   req.CoverImage,
		ImageCaption: req.ImageCaption,
		ReadingTime:  req.ReadingTime,
	}
	if req.Status != "" {
		row.Status = string(req.Status)
	}
	if req.PublishedAt != nil {
		row.PublishedAt = *req.PublishedAt
	}

	content := contentRows(req.Content)
	terms := keyTermRows(req.KeyTerms)
	sentences := complexSentenceRows(req.ComplexSentences)

	err := s.articleRepo.Create(ctx, row, repositories.SubCollections{
		Content:          &content,
		KeyTerms:         &terms,
		ComplexSentences: &sentences,
	})
	metrics.ArticleWritesTotal.WithLabelValues("create", metrics.Result(err)).Inc()
	if err != nil {
		s.log.Error().Err(err).Str("title", req.Title).Msg("Failed to create article")
		return nil, err
	}

	s.log.Info().Str("article_id", row.ID).Int("paragraphs", len(content)).Msg("Article created")
	return s.assembler.Assemble(ctx, row.ID)
}

func (s *articleService) Update(ctx context.Context, id string, req models.UpdateArticleRequest) (*models.Article, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	fields, err := updateFields(req)
	if err != nil {
		return nil, err
	}

	var children repositories.SubCollections
	if req.Content != nil {
		rows := contentRows(*req.Content)
		children.Content = &rows
	}
	if req.KeyTerms != nil {
		rows := keyTermRows(*req.KeyTerms)
		children.KeyTerms = &rows
	}
	if req.ComplexSentences != nil {
		rows := complexSentenceRows(*req.ComplexSentences)
		children.ComplexSentences = &rows
	}

	err = s.articleRepo.Update(ctx, id, fields, children)
	metrics.ArticleWritesTotal.WithLabelValues("update", metrics.Result(err)).Inc()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrArticleNotFound
	}
	if err != nil {
		s.log.Error().Err(err).Str("article_id", id).Msg("Failed to update article")
		return nil, err
	}

	return s.assembler.Assemble(ctx, id)
}

func (s *articleService) Delete(ctx context.Context, id string) error {
	err := s.articleRepo.Delete(ctx, id)
	metrics.ArticleWritesTotal.WithLabelValues("delete", metrics.Result(err)).Inc()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrArticleNotFound
	}
	if err != nil {
		s.log.Error().Err(err).Str("article_id", id).Msg("Failed to delete article")
		return err
	}
	return nil
}

func (s *articleService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	rows, err := s.articleRepo.ListRows(ctx, repositories.ArticleFilter{})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load dashboard")
		return nil, err
	}

	stats := &models.DashboardStats{TotalArticles: len(rows)}
	perCategory := make(map[models.Category]int, len(models.Categories))
	for _, row := range rows {
		if models.ArticleStatus(row.Status) == models.StatusPublished {
			stats.PublishedArticles++
		} else {
			stats.DraftArticles++
		}
		perCategory[models.Category(row.Category)]++
	}

	for _, category := range models.Categories {
		stats.Categories = append(stats.Categories, models.CategoryCount{
			Category: category,
			Slug:     category.Slug(),
			Count:    perCategory[category],
		})
	}

	recent := rows
	if len(recent) > recentArticlesLimit {
		recent = recent[:recentArticlesLimit]
	}
	stats.RecentArticles, err = s.assembler.AssembleRows(ctx, recent)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to assemble recent articles")
		return nil, err
	}

	return stats, nil
}

func (s *articleService) list(ctx context.Context, filter repositories.ArticleFilter) ([]models.Article, error) {
	rows, err := s.articleRepo.ListRows(ctx, filter)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list articles")
		return nil, err
	}

	articles, err := s.assembler.AssembleRows(ctx, rows)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to assemble articles")
		return nil, err
	}
	return articles, nil
}

// updateFields maps supplied fields to columns. A cleared field is written as
// NULL and may not also carry a value.
func updateFields(req models.UpdateArticleRequest) (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Summary != nil {
		fields["summary"] = *req.Summary
	}
	if req.Author != nil {
		fields["author"] = *req.Author
	}
	if req.AuthorTitle != nil {
		fields["author_title"] = *req.AuthorTitle
	}
	if req.Category != nil {
		fields["category"] = string(*req.Category)
	}
	if req.Status != nil {
		fields["status"] = string(*req.Status)
	}
	if req.PublishedAt != nil {
		fields["published_at"] = *req.PublishedAt
	}
	if req.CoverImage != nil {
		fields["cover_image"] = *req.CoverImage
	}
	if req.ImageCaption != nil {
		fields["image_caption"] = *req.ImageCaption
	}
	if req.ReadingTime != nil {
		fields["reading_time"] = *req.ReadingTime
	}
	for _, name := range req.Clear {
		if _, set := fields[name]; set {
			return nil, models.ErrorValidation{Field: name, Message: name + " cannot be set and cleared at once"}
		}
		fields[name] = nil
	}
	return fields, nil
}

// contentRows assigns positions 1..N in input order.
func contentRows(paragraphs []models.Paragraph) []models.ContentRow {
	rows := make([]models.ContentRow, 0, len(paragraphs))
	for i, p := range paragraphs {
		rows = append(rows, models.ContentRow{
			ID:       uuid.New().String(),
			English:  p.English,
			Chinese:  p.Chinese,
			Position: i + 1,
		})
	}
	return rows
}

func keyTermRows(terms []models.KeyTerm) []models.KeyTermRow {
	rows := make([]models.KeyTermRow, 0, len(terms))
	for _, t := range terms {
		rows = append(rows, models.KeyTermRow{
			ID:         uuid.New().String(),
			Term:       t.Term,
			Definition: t.Definition,
		})
	}
	return rows
}

func complexSentenceRows(sentences []models.ComplexSentence) []models.ComplexSentenceRow {
	rows := make([]models.ComplexSentenceRow, 0, len(sentences))
	for _, cs := range sentences {
		rows = append(rows, models.ComplexSentenceRow{
			ID:       uuid.New().String(),
			English:  cs.English,
			Chinese:  cs.Chinese,
			Analysis: cs.Analysis,
		})
	}
	return rows
}
