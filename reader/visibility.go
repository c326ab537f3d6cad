// Package reader holds the per-article translation visibility state of the reading view.
package reader

import "zhiyi-cms/models"

// Visibility maps paragraph positions (1-based) to a "translation shown" flag.
// allVisible is the last value commanded through SetAll; it is not derived
// from the individual flags.
type Visibility struct {
	perParagraph map[int]bool
	allVisible   bool
}

// NewVisibility returns state initialized for article.
func NewVisibility(article *models.Article) *Visibility {
	v := &Visibility{}
	v.Initialize(article)
	return v
}

// Initialize shows every paragraph's translation.
func (v *Visibility) Initialize(article *models.Article) {
	v.perParagraph = make(map[int]bool, len(article.Content))
	for i := range article.Content {
		v.perParagraph[i+1] = true
	}
	v.allVisible = true
}

// ToggleOne flips exactly one entry. Unknown positions are ignored.
func (v *Visibility) ToggleOne(position int) {
	if shown, ok := v.perParagraph[position]; ok {
		v.perParagraph[position] = !shown
	}
}

// SetAll overwrites every entry, including paragraphs without a translation.
func (v *Visibility) SetAll(visible bool) {
	v.allVisible = visible
	for position := range v.perParagraph {
		v.perParagraph[position] = visible
	}
}

func (v *Visibility) AllVisible() bool {
	return v.allVisible
}

func (v *Visibility) Flag(position int) bool {
	return v.perParagraph[position]
}

func (v *Visibility) Len() int {
	return len(v.perParagraph)
}

// ShowsTranslation is the rendering rule: non-blank Chinese text and a true flag.
func (v *Visibility) ShowsTranslation(position int, p models.Paragraph) bool {
	return p.HasTranslation() && v.perParagraph[position]
}

// ParagraphView is one paragraph as the reading view renders it.
type ParagraphView struct {
	Position        int     `json:"position"`
	English         string  `json:"english"`
	Chinese         *string `json:"chinese,omitempty"`
	HasTranslation  bool    `json:"has_translation"`
	TranslationOpen bool    `json:"translation_open"`
}

// ReadingView is an article plus the effective visibility of each translation.
type ReadingView struct {
	Article    *models.Article `json:"article"`
	AllVisible bool            `json:"all_visible"`
	Paragraphs []ParagraphView `json:"paragraphs"`
}

// Render applies the visibility rule to every paragraph. Hidden translations are omitted.
func (v *Visibility) Render(article *models.Article) ReadingView {
	view := ReadingView{
		Article:    article,
		AllVisible: v.allVisible,
		Paragraphs: make([]ParagraphView, 0, len(article.Content)),
	}

	for i, p := range article.Content {
		position := i + 1
		pv := ParagraphView{
			Position:       position,
			English:        p.English,
			HasTranslation: p.HasTranslation(),
		}
		if v.ShowsTranslation(position, p) {
			pv.Chinese = p.Chinese
			pv.TranslationOpen = true
		}
		view.Paragraphs = append(view.Paragraphs, pv)
	}

	return view
}
