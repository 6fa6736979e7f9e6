package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/basegraph/salesassist/core/db/sqlc"
	"github.com/basegraph/salesassist/internal/domain"
)

type nuggetStore struct {
	queries *sqlc.Queries
}

func newNuggetStore(queries *sqlc.Queries) NuggetStore {
	return &nuggetStore{queries: queries}
}

func (s *nuggetStore) Upsert(ctx context.Context, nugget domain.KnowledgeNugget) (*domain.KnowledgeNugget, error) {
	tags, err := json.Marshal(nugget.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshalling nugget tags: %w", err)
	}

	row, err := s.queries.CreateKnowledgeNugget(ctx, sqlc.CreateKnowledgeNuggetParams{
		ID:        nugget.ID,
		Title:     nugget.Title,
		Body:      nugget.Body,
		Keywords:  nugget.Keywords,
		Language:  string(nugget.Language),
		Type:      nugget.Type,
		Tags:      tags,
		Embedding: nugget.Embedding,
	})
	if err != nil {
		return nil, err
	}
	return toNuggetModel(row)
}

func (s *nuggetStore) ListByLanguage(ctx context.Context, lang domain.Language) ([]domain.KnowledgeNugget, error) {
	rows, err := s.queries.ListKnowledgeNuggetsByLanguage(ctx, string(lang))
	if err != nil {
		return nil, err
	}
	return toNuggetModels(rows)
}

func (s *nuggetStore) ListAll(ctx context.Context) ([]domain.KnowledgeNugget, error) {
	rows, err := s.queries.ListAllKnowledgeNuggets(ctx)
	if err != nil {
		return nil, err
	}
	return toNuggetModels(rows)
}

func toNuggetModels(rows []sqlc.KnowledgeNugget) ([]domain.KnowledgeNugget, error) {
	nuggets := make([]domain.KnowledgeNugget, 0, len(rows))
	for _, row := range rows {
		n, err := toNuggetModel(row)
		if err != nil {
			return nil, err
		}
		nuggets = append(nuggets, *n)
	}
	return nuggets, nil
}

func toNuggetModel(row sqlc.KnowledgeNugget) (*domain.KnowledgeNugget, error) {
	tags := map[string]string{}
	if len(row.Tags) > 0 {
		if err := json.Unmarshal(row.Tags, &tags); err != nil {
			return nil, fmt.Errorf("unmarshalling nugget tags: %w", err)
		}
	}
	return &domain.KnowledgeNugget{
		ID:        row.ID,
		Title:     row.Title,
		Body:      row.Body,
		Keywords:  row.Keywords,
		Language:  domain.Language(row.Language),
		Type:      row.Type,
		Tags:      tags,
		Embedding: row.Embedding,
	}, nil
}
