package services

import (
	"context"
	"errors"
	"fmt"

	"zhiyi-cms/models"
	"zhiyi-cms/repositories"

	"gorm.io/gorm"
)

// Assembler merges an article row and its three owned collections into one
// Article. It never returns a partially populated document.
type Assembler struct {
	repo repositories.ArticleRepository
}

func NewAssembler(repo repositories.ArticleRepository) *Assembler {
	return &Assembler{repo: repo}
}

// Assemble returns models.ErrArticleNotFound when no row has the id.
func (a *Assembler) Assemble(ctx context.Context, id string) (*models.Article, error) {
	row, err := a.repo.GetRow(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrArticleNotFound
		}
		return nil, fmt.Errorf("assemble article %s: %w", id, err)
	}
	return a.AssembleRow(ctx, row)
}

func (a *Assembler) AssembleRow(ctx context.Context, row *models.ArticleRow) (*models.Article, error) {
	content, err := a.repo.GetContent(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("assemble article %s: content: %w", row.ID, err)
	}

	terms, err := a.repo.GetKeyTerms(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("assemble article %s: key terms: %w", row.ID, err)
	}

	sentences, err := a.repo.GetComplexSentences(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("assemble article %s: complex sentences: %w", row.ID, err)
	}

	article := articleFromRow(row)
	article.Content = make([]models.Paragraph, 0, len(content))
	for _, c := range content {
		article.Content = append(article.Content, models.Paragraph{English: c.English, Chinese: c.Chinese})
	}

	article.KeyTerms = make([]models.KeyTerm, 0, len(terms))
	for _, t := range terms {
		article.KeyTerms = append(article.KeyTerms, models.KeyTerm{Term: t.Term, Definition: t.Definition})
	}

	article.ComplexSentences = make([]models.ComplexSentence, 0, len(sentences))
	for _, s := range sentences {
		article.ComplexSentences = append(article.ComplexSentences, models.ComplexSentence{
			English:  s.English,
			Chinese:  s.Chinese,
			Analysis: s.Analysis,
		})
	}

	return article, nil
}

// AssembleRows is fail-fast: one failing article fails the whole list.
func (a *Assembler) AssembleRows(ctx context.Context, rows []models.ArticleRow) ([]models.Article, error) {
	articles := make([]models.Article, 0, len(rows))
	for i := range rows {
		article, err := a.AssembleRow(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		articles = append(articles, *article)
	}
	return articles, nil
}

func articleFromRow(row *models.ArticleRow) *models.Article {
	return &models.Article{
		ID:           row.ID,
		Title:        row.Title,
		Summary:      row.Summary,
		Author:       row.Author,
		AuthorTitle:  row.AuthorTitle,
		Category:     models.Category(row.Category),
		Status:       models.ArticleStatus(row.Status),
		PublishedAt:  row.PublishedAt,
		CoverImage:   row.CoverImage,
		ImageCaption: row.ImageCaption,
		ReadingTime:  row.ReadingTime,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
