package core

import (
	"context"
	"path/filepath"

	"github.com/agenthands/docket/internal/core/model"
)

type stubExtractor struct {
	texts map[string]string
}

func (s *stubExtractor) ExtractText(ctx context.Context, path string) string {
	return s.texts[filepath.Base(path)]
}

func (s *stubExtractor) PageCount(path string) (int, bool) {
	return 1, true
}

type savedDocument struct {
	Doc   model.DocFragment
	Text  string
	Ents  model.Entities
	Edges []model.Edge
}

type MockStore struct {
	Saved []savedDocument
	Err   error
}

func (m *MockStore) SaveDocument(ctx context.Context, doc model.DocFragment, text string, ents model.Entities) error {
	if m.Err != nil {
		return m.Err
	}
	m.Saved = append(m.Saved, savedDocument{Doc: doc, Text: text, Ents: ents})
	return nil
}

type MockGraph struct {
	Saved []savedDocument
	Err   error
}

func (m *MockGraph) SaveDocument(ctx context.Context, doc model.DocFragment, people []model.PersonRecord, orgs []model.OrgRecord, edges []model.Edge) error {
	if m.Err != nil {
		return m.Err
	}
	m.Saved = append(m.Saved, savedDocument{Doc: doc, Edges: edges})
	return nil
}
