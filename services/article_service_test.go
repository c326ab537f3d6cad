package services

import (
	"context"
	"testing"
	"time"

	"zhiyi-cms/metrics"
	"zhiyi-cms/models"
	"zhiyi-cms/repositories"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"gopkg.in/go-playground/validator.v9"
)

type ArticleServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	repo    repositories.ArticleRepository
	service ArticleService
}

func (suite *ArticleServiceTestSuite) SetupTest() {
	db := newTestDB(suite.T())
	suite.ctx = context.Background()
	suite.repo = repositories.NewArticleRepository(db)
	suite.service = NewArticleService(suite.repo, validator.New(), zerolog.Nop())
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func (suite *ArticleServiceTestSuite) create(title string, category models.Category, status models.ArticleStatus, publishedAt time.Time) *models.Article {
	article, err := suite.service.Create(suite.ctx, models.CreateArticleRequest{
		Title:       title,
		Summary:     "summary of " + title,
		Author:      "Lin",
		Category:    category,
		Status:      status,
		PublishedAt: &publishedAt,
		Content:     []models.Paragraph{{English: "Body of " + title}},
	})
	suite.Require().NoError(err)
	return article
}

func (suite *ArticleServiceTestSuite) TestCreate_RoundTrip() {
	published := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	created, err := suite.service.Create(suite.ctx, models.CreateArticleRequest{
		Title:        "Quantum Computing",
		Summary:      "Why qubits matter",
		Author:       "Dr. Wang",
		AuthorTitle:  strPtr("Professor"),
		Category:     models.CategoryTechnology,
		Status:       models.StatusPublished,
		PublishedAt:  &published,
		CoverImage:   "https://img.example.com/q.png",
		ImageCaption: strPtr("A dilution refrigerator"),
		ReadingTime:  intPtr(7),
		Content: []models.Paragraph{
			{English: "First.", Chinese: strPtr("第一。")},
			{English: "Second."},
			{English: "Third.", Chinese: strPtr("第三。")},
		},
		ComplexSentences: []models.ComplexSentence{
			{English: "Although it is hard, it works.", Chinese: "虽然很难，但它有效。", Analysis: "concessive clause"},
		},
	})
	suite.Require().NoError(err)
	suite.NotEmpty(created.ID)

	got, err := suite.service.GetByID(suite.ctx, created.ID, false)
	suite.Require().NoError(err)

	suite.Equal("Quantum Computing", got.Title)
	suite.Equal("Professor", *got.AuthorTitle)
	suite.Equal(models.CategoryTechnology, got.Category)
	suite.Equal(7, *got.ReadingTime)
	suite.True(published.Equal(got.PublishedAt))

	suite.Require().Len(got.Content, 3)
	suite.Equal("First.", got.Content[0].English)
	suite.Equal("第一。", *got.Content[0].Chinese)
	suite.Nil(got.Content[1].Chinese)
	suite.Equal("Third.", got.Content[2].English)

	suite.NotNil(got.KeyTerms)
	suite.Empty(got.KeyTerms)
	suite.Require().Len(got.ComplexSentences, 1)
	suite.Equal("concessive clause", got.ComplexSentences[0].Analysis)

	rows, err := suite.repo.GetContent(suite.ctx, created.ID)
	suite.Require().NoError(err)
	positions := make([]int, 0, len(rows))
	for _, row := range rows {
		positions = append(positions, row.Position)
	}
	suite.Equal([]int{1, 2, 3}, positions)
}

func (suite *ArticleServiceTestSuite) TestCreate_Defaults() {
	before := time.Now().Add(-time.Second)
	article, err := suite.service.Create(suite.ctx, models.CreateArticleRequest{
		Title:    "Untitled idea",
		Author:   "Lin",
		Category: models.CategoryOpinion,
	})
	suite.Require().NoError(err)

	suite.Equal(models.StatusDraft, article.Status)
	suite.True(article.PublishedAt.After(before))
	suite.NotNil(article.Content)
	suite.Empty(article.Content)
}

func (suite *ArticleServiceTestSuite) TestCreate_Invalid() {
	_, err := suite.service.Create(suite.ctx, models.CreateArticleRequest{
		Title:    "No category",
		Author:   "Lin",
		Category: "sports",
	})
	suite.Error(err)
	suite.IsType(validator.ValidationErrors{}, err)
}

func (suite *ArticleServiceTestSuite) TestGetByID_HidesDrafts() {
	draft := suite.create("Draft piece", models.CategoryHumanities, models.StatusDraft, time.Now())

	_, err := suite.service.GetByID(suite.ctx, draft.ID, false)
	suite.ErrorIs(err, models.ErrArticleNotFound)

	got, err := suite.service.GetByID(suite.ctx, draft.ID, true)
	suite.Require().NoError(err)
	suite.Equal(draft.ID, got.ID)

	_, err = suite.service.GetByID(suite.ctx, "missing-id", true)
	suite.ErrorIs(err, models.ErrArticleNotFound)
}

func (suite *ArticleServiceTestSuite) TestListPublished_NewestFirst() {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.create("Older", models.CategoryTechnology, models.StatusPublished, base)
	suite.create("Newer", models.CategoryOpinion, models.StatusPublished, base.Add(48*time.Hour))
	suite.create("Hidden", models.CategoryOpinion, models.StatusDraft, base.Add(96*time.Hour))

	articles, err := suite.service.ListPublished(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(articles, 2)
	suite.Equal("Newer", articles[0].Title)
	suite.Equal("Older", articles[1].Title)
	suite.Len(articles[0].Content, 1)
}

func (suite *ArticleServiceTestSuite) TestListByCategory() {
	now := time.Now()
	suite.create("Tech one", models.CategoryTechnology, models.StatusPublished, now)
	suite.create("Opinion one", models.CategoryOpinion, models.StatusPublished, now)
	suite.create("Tech draft", models.CategoryTechnology, models.StatusDraft, now)

	bySlug, err := suite.service.ListByCategory(suite.ctx, "technology")
	suite.Require().NoError(err)
	suite.Require().Len(bySlug, 1)
	suite.Equal("Tech one", bySlug[0].Title)

	byName, err := suite.service.ListByCategory(suite.ctx, "观点")
	suite.Require().NoError(err)
	suite.Len(byName, 1)

	_, err = suite.service.ListByCategory(suite.ctx, "sports")
	suite.IsType(models.ErrorNotFound{}, err)
}

func (suite *ArticleServiceTestSuite) TestListAll_Filters() {
	now := time.Now()
	suite.create("Published tech", models.CategoryTechnology, models.StatusPublished, now)
	suite.create("Draft tech", models.CategoryTechnology, models.StatusDraft, now)
	suite.create("Draft opinion", models.CategoryOpinion, models.StatusDraft, now)

	all, err := suite.service.ListAll(suite.ctx, models.ArticleListParams{})
	suite.Require().NoError(err)
	suite.Len(all, 3)

	drafts, err := suite.service.ListAll(suite.ctx, models.ArticleListParams{Status: "draft", Category: "technology"})
	suite.Require().NoError(err)
	suite.Require().Len(drafts, 1)
	suite.Equal("Draft tech", drafts[0].Title)

	_, err = suite.service.ListAll(suite.ctx, models.ArticleListParams{Status: "archived"})
	suite.IsType(models.ErrorValidation{}, err)
}

func (suite *ArticleServiceTestSuite) TestSearch() {
	now := time.Now()
	suite.create("Neural Networks", models.CategoryTechnology, models.StatusPublished, now)
	suite.create("Neural draft", models.CategoryTechnology, models.StatusDraft, now)
	suite.create("100% growth", models.CategoryOpinion, models.StatusPublished, now)

	found, err := suite.service.Search(suite.ctx, "neural")
	suite.Require().NoError(err)
	suite.Require().Len(found, 1)
	suite.Equal("Neural Networks", found[0].Title)

	all, err := suite.service.SearchAll(suite.ctx, "NEURAL")
	suite.Require().NoError(err)
	suite.Len(all, 2)

	bySummary, err := suite.service.Search(suite.ctx, "summary of neural")
	suite.Require().NoError(err)
	suite.Len(bySummary, 1)

	literal, err := suite.service.Search(suite.ctx, "0%")
	suite.Require().NoError(err)
	suite.Require().Len(literal, 1)
	suite.Equal("100% growth", literal[0].Title)

	blank, err := suite.service.Search(suite.ctx, "   ")
	suite.Require().NoError(err)
	suite.NotNil(blank)
	suite.Empty(blank)
}

func (suite *ArticleServiceTestSuite) TestUpdate_ReplacesOnlySuppliedCollections() {
	created, err := suite.service.Create(suite.ctx, models.CreateArticleRequest{
		Title:    "Before",
		Author:   "Lin",
		Category: models.CategoryTechnology,
		Content: []models.Paragraph{
			{English: "One"}, {English: "Two"}, {English: "Three"},
		},
		KeyTerms: []models.KeyTerm{
			{Term: "qubit", Definition: "量子比特"},
		},
		ComplexSentences: []models.ComplexSentence{
			{English: "s", Chinese: "句", Analysis: "a"},
		},
	})
	suite.Require().NoError(err)

	empty := []models.KeyTerm{}
	updated, err := suite.service.Update(suite.ctx, created.ID, models.UpdateArticleRequest{
		Title:    strPtr("After"),
		KeyTerms: &empty,
	})
	suite.Require().NoError(err)

	suite.Equal("After", updated.Title)
	suite.Equal("Lin", updated.Author)
	suite.Len(updated.Content, 3)
	suite.Empty(updated.KeyTerms)
	suite.Len(updated.ComplexSentences, 1)
}

func (suite *ArticleServiceTestSuite) TestUpdate_RewritesPositions() {
	created := suite.create("Positions", models.CategoryTechnology, models.StatusPublished, time.Now())

	content := []models.Paragraph{{English: "B"}, {English: "A"}}
	_, err := suite.service.Update(suite.ctx, created.ID, models.UpdateArticleRequest{Content: &content})
	suite.Require().NoError(err)

	rows, err := suite.repo.GetContent(suite.ctx, created.ID)
	suite.Require().NoError(err)
	suite.Require().Len(rows, 2)
	suite.Equal(1, rows[0].Position)
	suite.Equal("B", rows[0].English)
	suite.Equal(2, rows[1].Position)
}

func (suite *ArticleServiceTestSuite) TestUpdate_Missing() {
	_, err := suite.service.Update(suite.ctx, "missing-id", models.UpdateArticleRequest{Title: strPtr("x")})
	suite.ErrorIs(err, models.ErrArticleNotFound)
}

func (suite *ArticleServiceTestSuite) TestUpdate_ClearsOptionalFields() {
	published := time.Now()
	created, err := suite.service.Create(suite.ctx, models.CreateArticleRequest{
		Title:        "Optional",
		Author:       "Lin",
		Category:     models.CategoryHumanities,
		PublishedAt:  &published,
		AuthorTitle:  strPtr("Professor"),
		ImageCaption: strPtr("A lab"),
		ReadingTime:  intPtr(9),
		Content:      []models.Paragraph{{English: "Body"}},
	})
	suite.Require().NoError(err)

	updated, err := suite.service.Update(suite.ctx, created.ID, models.UpdateArticleRequest{
		Clear: []string{"image_caption", "reading_time"},
	})
	suite.Require().NoError(err)
	suite.Nil(updated.ImageCaption)
	suite.Nil(updated.ReadingTime)
	suite.Require().NotNil(updated.AuthorTitle)
	suite.Equal("Professor", *updated.AuthorTitle)

	reloaded, err := suite.service.GetByID(suite.ctx, created.ID, true)
	suite.Require().NoError(err)
	suite.Nil(reloaded.ImageCaption)
	suite.Nil(reloaded.ReadingTime)
}

func (suite *ArticleServiceTestSuite) TestUpdate_ClearRejectsConflictsAndUnknownFields() {
	created := suite.create("Conflict", models.CategoryTechnology, models.StatusPublished, time.Now())

	_, err := suite.service.Update(suite.ctx, created.ID, models.UpdateArticleRequest{
		ImageCaption: strPtr("new"),
		Clear:        []string{"image_caption"},
	})
	validationErr, ok := err.(models.ErrorValidation)
	suite.Require().True(ok, "got %v", err)
	suite.Equal("image_caption", validationErr.Field)

	_, err = suite.service.Update(suite.ctx, created.ID, models.UpdateArticleRequest{Clear: []string{"title"}})
	suite.Error(err)

	got, err := suite.service.GetByID(suite.ctx, created.ID, true)
	suite.Require().NoError(err)
	suite.Equal("Conflict", got.Title)
}

func (suite *ArticleServiceTestSuite) TestWriteMetrics_CountNotFound() {
	updateErrors := metrics.ArticleWritesTotal.WithLabelValues("update", "error")
	deleteErrors := metrics.ArticleWritesTotal.WithLabelValues("delete", "error")
	updatesBefore := testutil.ToFloat64(updateErrors)
	deletesBefore := testutil.ToFloat64(deleteErrors)

	_, err := suite.service.Update(suite.ctx, "missing-id", models.UpdateArticleRequest{Title: strPtr("x")})
	suite.ErrorIs(err, models.ErrArticleNotFound)
	suite.ErrorIs(suite.service.Delete(suite.ctx, "missing-id"), models.ErrArticleNotFound)

	suite.Equal(updatesBefore+1, testutil.ToFloat64(updateErrors))
	suite.Equal(deletesBefore+1, testutil.ToFloat64(deleteErrors))
}

func (suite *ArticleServiceTestSuite) TestDelete_CascadesChildren() {
	created := suite.create("Doomed", models.CategoryTechnology, models.StatusPublished, time.Now())

	suite.Require().NoError(suite.service.Delete(suite.ctx, created.ID))

	_, err := suite.service.GetByID(suite.ctx, created.ID, true)
	suite.ErrorIs(err, models.ErrArticleNotFound)

	rows, err := suite.repo.GetContent(suite.ctx, created.ID)
	suite.Require().NoError(err)
	suite.Empty(rows)

	suite.ErrorIs(suite.service.Delete(suite.ctx, created.ID), models.ErrArticleNotFound)
}

func (suite *ArticleServiceTestSuite) TestDashboard() {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		suite.create("Tech", models.CategoryTechnology, models.StatusPublished, base.Add(time.Duration(i)*time.Hour))
	}
	suite.create("Latest draft", models.CategoryHumanities, models.StatusDraft, base.Add(24*time.Hour))

	stats, err := suite.service.Dashboard(suite.ctx)
	suite.Require().NoError(err)

	suite.Equal(7, stats.TotalArticles)
	suite.Equal(6, stats.PublishedArticles)
	suite.Equal(1, stats.DraftArticles)
	suite.Require().Len(stats.Categories, 3)
	suite.Equal(models.CategoryCount{Category: models.CategoryOpinion, Slug: "opinions", Count: 0}, stats.Categories[0])
	suite.Equal(6, stats.Categories[1].Count)
	suite.Equal(1, stats.Categories[2].Count)
	suite.Require().Len(stats.RecentArticles, recentArticlesLimit)
	suite.Equal("Latest draft", stats.RecentArticles[0].Title)
}

func TestArticleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ArticleServiceTestSuite))
}
