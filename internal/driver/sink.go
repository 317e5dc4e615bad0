package driver

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agenthands/docket/internal/core/model"
)

// GraphSink mirrors canonical documents and their entities into a property
// graph. Every write is a MERGE, so saving the same document twice leaves the
// graph unchanged.
type GraphSink struct {
	driver GraphDriver
	logger zerolog.Logger
}

func NewGraphSink(driver GraphDriver, logger zerolog.Logger) *GraphSink {
	return &GraphSink{driver: driver, logger: logger}
}

func (s *GraphSink) BuildIndices(ctx context.Context) error {
	return s.driver.BuildIndices(ctx)
}

// SaveDocument writes the document node, its person and organization
// mentions and the co-mention edges between its people.
func (s *GraphSink) SaveDocument(ctx context.Context, doc model.DocFragment, people []model.PersonRecord, orgs []model.OrgRecord, edges []model.Edge) error {
	grouped := make([]string, 0, len(doc.GroupedFiles))
	for _, f := range doc.GroupedFiles {
		grouped = append(grouped, f.Path)
	}

	_, err := s.driver.ExecuteQuery(ctx, SaveDocumentQuery, map[string]interface{}{
		"id":            doc.ID,
		"title":         doc.Title,
		"sha256":        doc.SHA256,
		"file_path":     doc.FilePath,
		"source":        doc.Source,
		"group_kind":    string(doc.GroupKind),
		"grouped_files": grouped,
	})
	if err != nil {
		return fmt.Errorf("failed to save document %s: %w", doc.ID, err)
	}

	for _, p := range people {
		_, err := s.driver.ExecuteQuery(ctx, SavePersonMentionQuery, map[string]interface{}{
			"document_id": doc.ID,
			"id":          p.ID,
			"name":        p.Name,
			"confidence":  p.Confidence,
		})
		if err != nil {
			return fmt.Errorf("failed to save person %s: %w", p.ID, err)
		}
	}

	for _, o := range orgs {
		_, err := s.driver.ExecuteQuery(ctx, SaveOrganizationMentionQuery, map[string]interface{}{
			"document_id": doc.ID,
			"id":          o.ID,
			"name":        o.Name,
		})
		if err != nil {
			return fmt.Errorf("failed to save organization %s: %w", o.ID, err)
		}
	}

	for _, e := range edges {
		_, err := s.driver.ExecuteQuery(ctx, SaveCoMentionQuery, map[string]interface{}{
			"source_id":   e.Source,
			"target_id":   e.Target,
			"document_id": doc.ID,
			"uuid":        uuid.New().String(),
			"weight":      e.Weight,
		})
		if err != nil {
			return fmt.Errorf("failed to save edge %s-%s: %w", e.Source, e.Target, err)
		}
	}

	s.logger.Debug().
		Str("document_id", doc.ID).
		Int("people", len(people)).
		Int("organizations", len(orgs)).
		Int("edges", len(edges)).
		Msg("document saved to graph")
	return nil
}

// Mentions returns the ids of people linked to a document.
func (s *GraphSink) Mentions(ctx context.Context, documentID string) ([]string, error) {
	res, err := s.driver.ExecuteQuery(ctx, GetDocumentMentionsQuery, map[string]interface{}{"id": documentID})
	if err != nil {
		return nil, fmt.Errorf("failed to read mentions of %s: %w", documentID, err)
	}

	var ids []string
	for _, record := range res.Records {
		if id, ok := record.Get("id"); ok {
			if s, ok := id.(string); ok {
				ids = append(ids, s)
			}
		}
	}
	return ids, nil
}
