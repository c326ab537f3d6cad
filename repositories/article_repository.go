package repositories

import (
	"context"
	"strings"
	"time"

	"zhiyi-cms/models"

	"gorm.io/gorm"
)

// ArticleFilter narrows ListRows. Zero values mean "no filter".
type ArticleFilter struct {
	Status   models.ArticleStatus
	Category models.Category
	Query    string
}

// SubCollections holds replacement sets for an update. A nil pointer leaves
// the stored rows untouched; a pointer to an empty slice clears them.
type SubCollections struct {
	Content          *[]models.ContentRow
	KeyTerms         *[]models.KeyTermRow
	ComplexSentences *[]models.ComplexSentenceRow
}

type ArticleRepository interface {
	GetRow(ctx context.Context, id string) (*models.ArticleRow, error)
	ListRows(ctx context.Context, filter ArticleFilter) ([]models.ArticleRow, error)
	GetContent(ctx context.Context, articleID string) ([]models.ContentRow, error)
	GetKeyTerms(ctx context.Context, articleID string) ([]models.KeyTermRow, error)
	GetComplexSentences(ctx context.Context, articleID string) ([]models.ComplexSentenceRow, error)
	Create(ctx context.Context, article *models.ArticleRow, children SubCollections) error
	Update(ctx context.Context, id string, fields map[string]interface{}, children SubCollections) error
	Delete(ctx context.Context, id string) error
}

type articleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) GetRow(ctx context.Context, id string) (*models.ArticleRow, error) {
	var row models.ArticleRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *articleRepository) ListRows(ctx context.Context, filter ArticleFilter) ([]models.ArticleRow, error) {
	var rows []models.ArticleRow

	query := r.db.WithContext(ctx).Model(&models.ArticleRow{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		query = query.Where("(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(summary) LIKE ? ESCAPE '\\')", pattern, pattern)
	}

	err := query.Order("published_at desc").Order("id").Find(&rows).Error
	return rows, err
}

func (r *articleRepository) GetContent(ctx context.Context, articleID string) ([]models.ContentRow, error) {
	var rows []models.ContentRow
	err := r.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("position asc").
		Find(&rows).Error
	return rows, err
}

func (r *articleRepository) GetKeyTerms(ctx context.Context, articleID string) ([]models.KeyTermRow, error) {
	var rows []models.KeyTermRow
	err := r.db.WithContext(ctx).Where("article_id = ?", articleID).Find(&rows).Error
	return rows, err
}

func (r *articleRepository) GetComplexSentences(ctx context.Context, articleID string) ([]models.ComplexSentenceRow, error) {
	var rows []models.ComplexSentenceRow
	err := r.db.WithContext(ctx).Where("article_id = ?", articleID).Find(&rows).Error
	return rows, err
}

// Create inserts the article row and every non-empty sub-collection in one transaction.
func (r *articleRepository) Create(ctx context.Context, article *models.ArticleRow, children SubCollections) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(article).Error; err != nil {
			return err
		}
		return replaceChildren(tx, article.ID, children, false)
	})
}

// Update writes the given columns and replaces each supplied sub-collection.
// Everything commits together or not at all.
func (r *articleRepository) Update(ctx context.Context, id string, fields map[string]interface{}, children SubCollections) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ArticleRow
		if err := tx.Select("id").Where("id = ?", id).First(&existing).Error; err != nil {
			return err
		}

		if len(fields) > 0 {
			fields["updated_at"] = time.Now()
			if err := tx.Model(&models.ArticleRow{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				return err
			}
		}

		return replaceChildren(tx, id, children, true)
	})
}

// Delete removes the article row; owned rows go with it through ON DELETE CASCADE.
func (r *articleRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ArticleRow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func replaceChildren(tx *gorm.DB, articleID string, children SubCollections, clear bool) error {
	if children.Content != nil {
		if clear {
			if err := tx.Where("article_id = ?", articleID).Delete(&models.ContentRow{}).Error; err != nil {
				return err
			}
		}
		if rows := *children.Content; len(rows) > 0 {
			for i := range rows {
				rows[i].ArticleID = articleID
			}
			if err := tx.CreateInBatches(rows, 100).Error; err != nil {
				return err
			}
		}
	}

	if children.KeyTerms != nil {
		if clear {
			if err := tx.Where("article_id = ?", articleID).Delete(&models.KeyTermRow{}).Error; err != nil {
				return err
			}
		}
		if rows := *children.KeyTerms; len(rows) > 0 {
			for i := range rows {
				rows[i].ArticleID = articleID
			}
			if err := tx.CreateInBatches(rows, 100).Error; err != nil {
				return err
			}
		}
	}

	if children.ComplexSentences != nil {
		if clear {
			if err := tx.Where("article_id = ?", articleID).Delete(&models.ComplexSentenceRow{}).Error; err != nil {
				return err
			}
		}
		if rows := *children.ComplexSentences; len(rows) > 0 {
			for i := range rows {
				rows[i].ArticleID = articleID
			}
			if err := tx.CreateInBatches(rows, 100).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
