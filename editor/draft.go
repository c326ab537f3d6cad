// Package editor keeps in-memory article drafts for the admin editor.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"zhiyi-cms/models"

	"github.com/google/uuid"
)

const defaultReadingTime = 5

var (
	ErrLastParagraph     = errors.New("an article must keep at least one paragraph")
	ErrItemNotFound      = errors.New("item not found")
	ErrEmptySource       = errors.New("the source text is empty")
	ErrUnknownCollection = errors.New("unknown collection")
)

// Generator produces the text auto-fill writes into an item.
type Generator interface {
	Translate(ctx context.Context, text string) (string, error)
	DefineTerm(ctx context.Context, term string) (string, error)
	AnalyzeSentence(ctx context.Context, sentence string) (string, error)
}

// Saver persists a draft.
type Saver interface {
	Create(ctx context.Context, req models.CreateArticleRequest) (*models.Article, error)
	Update(ctx context.Context, id string, req models.UpdateArticleRequest) (*models.Article, error)
}

// Header holds the scalar article fields of a draft.
type Header struct {
	Title        string               `json:"title"`
	Summary      string               `json:"summary"`
	Author       string               `json:"author"`
	AuthorTitle  *string              `json:"author_title,omitempty"`
	Category     models.Category      `json:"category"`
	Status       models.ArticleStatus `json:"status"`
	PublishedAt  *time.Time           `json:"published_at,omitempty"`
	CoverImage   string               `json:"cover_image"`
	ImageCaption *string              `json:"image_caption,omitempty"`
	ReadingTime  *int                 `json:"reading_time,omitempty"`
}

// HeaderPatch changes only the non-nil fields. Clear resets the named
// optional fields (author_title, image_caption, reading_time) to absent.
type HeaderPatch struct {
	Title        *string               `json:"title"`
	Summary      *string               `json:"summary"`
	Author       *string               `json:"author"`
	AuthorTitle  *string               `json:"author_title"`
	Category     *models.Category      `json:"category"`
	Status       *models.ArticleStatus `json:"status"`
	PublishedAt  *time.Time            `json:"published_at"`
	CoverImage   *string               `json:"cover_image"`
	ImageCaption *string               `json:"image_caption"`
	ReadingTime  *int                  `json:"reading_time"`
	Clear        []string              `json:"clear"`
}

// View is a copy of a draft that is safe to serialize.
type View struct {
	ID        string `json:"id"`
	ArticleID string `json:"article_id,omitempty"`
	Header
	Content          []ParagraphItem `json:"content"`
	KeyTerms         []KeyTermItem   `json:"key_terms"`
	ComplexSentences []SentenceItem  `json:"complex_sentences"`
}

// Draft is one article being edited. Items are addressed by id, so a slow
// auto-fill result can never land on an item that replaced a removed one.
type Draft struct {
	mu        sync.Mutex
	id        string
	articleID string
	header    Header
	content   []*ParagraphItem
	keyTerms  []*KeyTermItem
	sentences []*SentenceItem
}

// New returns an empty draft with one blank paragraph.
func New() *Draft {
	readingTime := defaultReadingTime
	return &Draft{
		id: uuid.New().String(),
		header: Header{
			Category:    models.DefaultCategory,
			Status:      models.StatusDraft,
			ReadingTime: &readingTime,
		},
		content: []*ParagraphItem{newParagraph(models.Paragraph{})},
	}
}

// FromArticle starts a draft for editing a stored article.
func FromArticle(article *models.Article) *Draft {
	publishedAt := article.PublishedAt
	d := &Draft{
		id:        uuid.New().String(),
		articleID: article.ID,
		header: Header{
			Title:        article.Title,
			Summary:      article.Summary,
			Author:       article.Author,
			AuthorTitle:  article.AuthorTitle,
			Category:     article.Category,
			Status:       article.Status,
			PublishedAt:  &publishedAt,
			CoverImage:   article.CoverImage,
			ImageCaption: article.ImageCaption,
			ReadingTime:  article.ReadingTime,
		},
	}

	for _, p := range article.Content {
		d.content = append(d.content, newParagraph(p))
	}
	if len(d.content) == 0 {
		d.content = append(d.content, newParagraph(models.Paragraph{}))
	}
	for _, t := range article.KeyTerms {
		d.keyTerms = append(d.keyTerms, newKeyTerm(t))
	}
	for _, s := range article.ComplexSentences {
		d.sentences = append(d.sentences, newSentence(s))
	}
	return d
}

func (d *Draft) ID() string {
	return d.id
}

func (d *Draft) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view()
}

func (d *Draft) view() View {
	v := View{
		ID:               d.id,
		ArticleID:        d.articleID,
		Header:           d.header,
		Content:          make([]ParagraphItem, 0, len(d.content)),
		KeyTerms:         make([]KeyTermItem, 0, len(d.keyTerms)),
		ComplexSentences: make([]SentenceItem, 0, len(d.sentences)),
	}
	for _, p := range d.content {
		v.Content = append(v.Content, *p)
	}
	for _, t := range d.keyTerms {
		v.KeyTerms = append(v.KeyTerms, *t)
	}
	for _, s := range d.sentences {
		v.ComplexSentences = append(v.ComplexSentences, *s)
	}
	return v
}

func (d *Draft) ApplyHeader(patch HeaderPatch) error {
	for _, name := range patch.Clear {
		if !clearable(name) {
			return fmt.Errorf("%w %q for header", ErrUnknownField, name)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	h := &d.header
	if patch.Title != nil {
		h.Title = *patch.Title
	}
	if patch.Summary != nil {
		h.Summary = *patch.Summary
	}
	if patch.Author != nil {
		h.Author = *patch.Author
	}
	if patch.AuthorTitle != nil {
		h.AuthorTitle = patch.AuthorTitle
	}
	if patch.Category != nil {
		h.Category = *patch.Category
	}
	if patch.Status != nil {
		h.Status = *patch.Status
	}
	if patch.PublishedAt != nil {
		h.PublishedAt = patch.PublishedAt
	}
	if patch.CoverImage != nil {
		h.CoverImage = *patch.CoverImage
	}
	if patch.ImageCaption != nil {
		h.ImageCaption = patch.ImageCaption
	}
	if patch.ReadingTime != nil {
		h.ReadingTime = patch.ReadingTime
	}
	for _, name := range patch.Clear {
		switch name {
		case "author_title":
			h.AuthorTitle = nil
		case "image_caption":
			h.ImageCaption = nil
		case "reading_time":
			h.ReadingTime = nil
		}
	}
	return nil
}

func clearable(name string) bool {
	for _, f := range models.ClearableFields {
		if f == name {
			return true
		}
	}
	return false
}

// Append adds a blank item at the end of the collection and returns its id.
func (d *Draft) Append(c Collection) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch c {
	case Content:
		p := newParagraph(models.Paragraph{})
		d.content = append(d.content, p)
		return p.ID, nil
	case KeyTerms:
		t := newKeyTerm(models.KeyTerm{})
		d.keyTerms = append(d.keyTerms, t)
		return t.ID, nil
	case ComplexSentences:
		s := newSentence(models.ComplexSentence{})
		d.sentences = append(d.sentences, s)
		return s.ID, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCollection, c)
}

// UpdateItem sets the given fields. Nothing changes when any field name is unknown.
func (d *Draft) UpdateItem(c Collection, itemID string, fields map[string]string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	it, err := d.lookup(c, itemID)
	if err != nil {
		return err
	}

	for field := range fields {
		if _, ok := it.get(field); !ok {
			return fmt.Errorf("%w %q for %s", ErrUnknownField, field, c)
		}
	}
	for field, value := range fields {
		if err := it.set(field, value); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes the item. The last remaining paragraph cannot be removed.
func (d *Draft) Remove(c Collection, itemID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var removed bool
	switch c {
	case Content:
		if _, ok := find(d.content, itemID); ok && len(d.content) == 1 {
			return ErrLastParagraph
		}
		d.content, removed = remove(d.content, itemID)
	case KeyTerms:
		d.keyTerms, removed = remove(d.keyTerms, itemID)
	case ComplexSentences:
		d.sentences, removed = remove(d.sentences, itemID)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}

	if !removed {
		return ErrItemNotFound
	}
	return nil
}

// AutoFill generates the item's target field from its source field. The
// draft is unlocked while the generator runs, so other edits proceed. If the
// item was removed in the meantime the result is dropped and Applied is false.
// On a generator error the item is left unchanged.
func (d *Draft) AutoFill(ctx context.Context, gen Generator, c Collection, itemID string) (models.AutoFillResult, error) {
	fields, ok := autoFill[c]
	if !ok {
		return models.AutoFillResult{}, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}

	d.mu.Lock()
	it, err := d.lookup(c, itemID)
	if err != nil {
		d.mu.Unlock()
		return models.AutoFillResult{}, err
	}
	source, _ := it.get(fields.source)
	d.mu.Unlock()

	if strings.TrimSpace(source) == "" {
		return models.AutoFillResult{}, ErrEmptySource
	}

	var text string
	switch c {
	case Content:
		text, err = gen.Translate(ctx, source)
	case KeyTerms:
		text, err = gen.DefineTerm(ctx, source)
	case ComplexSentences:
		text, err = gen.AnalyzeSentence(ctx, source)
	}
	if err != nil {
		return models.AutoFillResult{}, err
	}

	result := models.AutoFillResult{ItemID: itemID, Field: fields.target, Value: text}

	d.mu.Lock()
	defer d.mu.Unlock()
	it, err = d.lookup(c, itemID)
	if err != nil {
		return result, nil
	}
	if err := it.set(fields.target, text); err != nil {
		return result, err
	}
	result.Applied = true
	return result, nil
}

// Save creates the article, or updates it when the draft came from a stored
// article or was saved before. On failure the draft is left as it was.
func (d *Draft) Save(ctx context.Context, saver Saver) (*models.Article, error) {
	d.mu.Lock()
	v := d.view()
	d.mu.Unlock()

	var (
		article *models.Article
		err     error
	)
	if v.ArticleID == "" {
		article, err = saver.Create(ctx, createRequest(v))
	} else {
		article, err = saver.Update(ctx, v.ArticleID, updateRequest(v))
	}
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.articleID = article.ID
	d.mu.Unlock()
	return article, nil
}

func (d *Draft) lookup(c Collection, itemID string) (item, error) {
	var (
		it item
		ok bool
	)
	switch c {
	case Content:
		it, ok = find(d.content, itemID)
	case KeyTerms:
		it, ok = find(d.keyTerms, itemID)
	case ComplexSentences:
		it, ok = find(d.sentences, itemID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}
	if !ok {
		return nil, ErrItemNotFound
	}
	return it, nil
}

func collections(v View) ([]models.Paragraph, []models.KeyTerm, []models.ComplexSentence) {
	content := make([]models.Paragraph, 0, len(v.Content))
	for _, p := range v.Content {
		content = append(content, models.Paragraph{English: p.English, Chinese: p.Chinese})
	}
	terms := make([]models.KeyTerm, 0, len(v.KeyTerms))
	for _, t := range v.KeyTerms {
		terms = append(terms, models.KeyTerm{Term: t.Term, Definition: t.Definition})
	}
	sentences := make([]models.ComplexSentence, 0, len(v.ComplexSentences))
	for _, s := range v.ComplexSentences {
		sentences = append(sentences, models.ComplexSentence{English: s.English, Chinese: s.Chinese, Analysis: s.Analysis})
	}
	return content, terms, sentences
}

func createRequest(v View) models.CreateArticleRequest {
	content, terms, sentences := collections(v)
	return models.CreateArticleRequest{
		Title:            v.Title,
		Summary:          v.Summary,
		Author:           v.Author,
		AuthorTitle:      v.AuthorTitle,
		Category:         v.Category,
		Status:           v.Status,
		PublishedAt:      v.PublishedAt,
		CoverImage:       v.CoverImage,
		ImageCaption:     v.ImageCaption,
		ReadingTime:      v.ReadingTime,
		Content:          content,
		KeyTerms:         terms,
		ComplexSentences: sentences,
	}
}

// updateRequest replaces every field and all three collections. Absent
// optional fields are sent as cleared.
func updateRequest(v View) models.UpdateArticleRequest {
	content, terms, sentences := collections(v)
	h := v.Header

	var clear []string
	if h.AuthorTitle == nil {
		clear = append(clear, "author_title")
	}
	if h.ImageCaption == nil {
		clear = append(clear, "image_caption")
	}
	if h.ReadingTime == nil {
		clear = append(clear, "reading_time")
	}

	return models.UpdateArticleRequest{
		Title:            &h.Title,
		Summary:          &h.Summary,
		Author:           &h.Author,
		AuthorTitle:      h.AuthorTitle,
		Category:         &h.Category,
		Status:           &h.Status,
		PublishedAt:      h.PublishedAt,
		CoverImage:       &h.CoverImage,
		ImageCaption:     h.ImageCaption,
		ReadingTime:      h.ReadingTime,
		Content:          &content,
		KeyTerms:         &terms,
		ComplexSentences: &sentences,
		Clear:            clear,
	}
}
