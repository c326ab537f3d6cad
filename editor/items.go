package editor

import (
	"errors"
	"fmt"
	"strings"

	"zhiyi-cms/models"

	"github.com/google/uuid"
)

// Collection names one of the three editable lists of a draft.
type Collection string

const (
	Content          Collection = "content"
	KeyTerms         Collection = "key_terms"
	ComplexSentences Collection = "complex_sentences"
)

var ErrUnknownField = errors.New("unknown field")

func ParseCollection(value string) (Collection, error) {
	switch c := Collection(strings.ToLower(value)); c {
	case Content, KeyTerms, ComplexSentences:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCollection, value)
}

// item is an entry addressed by a stable id assigned when it was appended.
type item interface {
	itemID() string
	get(field string) (string, bool)
	set(field, value string) error
}

type ParagraphItem struct {
	ID      string  `json:"id"`
	English string  `json:"english"`
	Chinese *string `json:"chinese,omitempty"`
}

func newParagraph(p models.Paragraph) *ParagraphItem {
	return &ParagraphItem{ID: uuid.New().String(), English: p.English, Chinese: p.Chinese}
}

func (p *ParagraphItem) itemID() string { return p.ID }

func (p *ParagraphItem) get(field string) (string, bool) {
	switch field {
	case "english":
		return p.English, true
	case "chinese":
		if p.Chinese == nil {
			return "", true
		}
		return *p.Chinese, true
	}
	return "", false
}

func (p *ParagraphItem) set(field, value string) error {
	switch field {
	case "english":
		p.English = value
	case "chinese":
		p.Chinese = &value
	default:
		return fmt.Errorf("%w %q for content", ErrUnknownField, field)
	}
	return nil
}

type KeyTermItem struct {
	ID         string `json:"id"`
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

func newKeyTerm(t models.KeyTerm) *KeyTermItem {
	return &KeyTermItem{ID: uuid.New().String(), Term: t.Term, Definition: t.Definition}
}

func (t *KeyTermItem) itemID() string { return t.ID }

func (t *KeyTermItem) get(field string) (string, bool) {
	switch field {
	case "term":
		return t.Term, true
	case "definition":
		return t.Definition, true
	}
	return "", false
}

func (t *KeyTermItem) set(field, value string) error {
	switch field {
	case "term":
		t.Term = value
	case "definition":
		t.Definition = value
	default:
		return fmt.Errorf("%w %q for key_terms", ErrUnknownField, field)
	}
	return nil
}

type SentenceItem struct {
	ID       string `json:"id"`
	English  string `json:"english"`
	Chinese  string `json:"chinese"`
	Analysis string `json:"analysis"`
}

func newSentence(s models.ComplexSentence) *SentenceItem {
	return &SentenceItem{ID: uuid.New().String(), English: s.English, Chinese: s.Chinese, Analysis: s.Analysis}
}

func (s *SentenceItem) itemID() string { return s.ID }

func (s *SentenceItem) get(field string) (string, bool) {
	switch field {
	case "english":
		return s.English, true
	case "chinese":
		return s.Chinese, true
	case "analysis":
		return s.Analysis, true
	}
	return "", false
}

func (s *SentenceItem) set(field, value string) error {
	switch field {
	case "english":
		s.English = value
	case "chinese":
		s.Chinese = value
	case "analysis":
		s.Analysis = value
	default:
		return fmt.Errorf("%w %q for complex_sentences", ErrUnknownField, field)
	}
	return nil
}

func find[T item](items []T, id string) (T, bool) {
	for _, it := range items {
		if it.itemID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func remove[T item](items []T, id string) ([]T, bool) {
	for i, it := range items {
		if it.itemID() == id {
			return append(items[:i:i], items[i+1:]...), true
		}
	}
	return items, false
}

// autoFill names, per collection, the field the prompt is built from and the field the result lands in.
var autoFill = map[Collection]struct{ source, target string }{
	Content:          {"english", "chinese"},
	KeyTerms:         {"term", "definition"},
	ComplexSentences: {"english", "analysis"},
}
