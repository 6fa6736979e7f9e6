package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/typesense/typesense-go/v4/typesense"
	"github.com/typesense/typesense-go/v4/typesense/api"
	"github.com/typesense/typesense-go/v4/typesense/api/pointer"

	"github.com/basegraph/salesassist/common/logger"
	"github.com/basegraph/salesassist/internal/domain"
)

const collectionName = "knowledge_nuggets"

type Config struct {
	Host       string
	Port       string
	Protocol   string
	APIKey     string
	Dimensions int
}

type typesenseStore struct {
	client     *typesense.Client
	dimensions int
}

// NewTypesenseStore builds a VectorStore backed by a Typesense collection
// of dimension cfg.Dimensions (the embedding model's output width).
func NewTypesenseStore(cfg Config) VectorStore {
	url := fmt.Sprintf("%s://%s:%s", cfg.Protocol, cfg.Host, cfg.Port)
	client := typesense.NewClient(
		typesense.WithServer(url),
		typesense.WithAPIKey(cfg.APIKey),
	)

	dims := cfg.Dimensions
	if dims <= 0 {
		dims = 1536
	}

	return &typesenseStore{client: client, dimensions: dims}
}

func (s *typesenseStore) EnsureCollection(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "salesassist.vectorstore"})

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "title", Type: "string"},
			{Name: "body", Type: "string"},
			{Name: "keywords", Type: "string[]", Facet: pointer.True()},
			{Name: "language", Type: "string", Facet: pointer.True()},
			{Name: "nugget_type", Type: "string", Facet: pointer.True()},
			{Name: "embedding", Type: "float[]", NumDim: pointer.Int(s.dimensions)},
		},
	}

	if _, err := s.client.Collections().Create(ctx, schema); err != nil {
		if isAlreadyExists(err) {
			slog.DebugContext(ctx, "knowledge nugget collection already exists")
			return nil
		}
		return fmt.Errorf("create collection: %w", err)
	}

	slog.InfoContext(ctx, "created knowledge nugget collection", "dimensions", s.dimensions)
	return nil
}

func (s *typesenseStore) Upsert(ctx context.Context, nugget domain.KnowledgeNugget) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "salesassist.vectorstore"})

	doc := map[string]any{
		"id":          nugget.ID,
		"title":       nugget.Title,
		"body":        nugget.Body,
		"keywords":    nugget.Keywords,
		"language":    string(nugget.Language),
		"nugget_type": nugget.Type,
		"embedding":   nugget.Embedding,
	}

	if _, err := s.client.Collection(collectionName).Documents().Upsert(ctx, doc); err != nil {
		return fmt.Errorf("upsert nugget %s: %w", nugget.ID, err)
	}

	slog.DebugContext(ctx, "upserted nugget into vector store", "nugget_id", nugget.ID)
	return nil
}

func (s *typesenseStore) Search(ctx context.Context, query []float32, lang domain.Language, topK int) ([]domain.ScoredNugget, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "salesassist.vectorstore"})

	if topK <= 0 {
		topK = 5
	}

	vectorQuery := fmt.Sprintf("embedding:(%s, k:%d)", formatVector(query), topK)
	filterBy := fmt.Sprintf("language:=%s", string(lang))

	params := &api.SearchCollectionParams{
		Q:           pointer.String("*"),
		VectorQuery: pointer.String(vectorQuery),
		FilterBy:    pointer.String(filterBy),
		PerPage:     pointer.Int(topK),
	}

	result, err := s.client.Collection(collectionName).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	if result.Hits == nil {
		return nil, nil
	}

	scored := make([]domain.ScoredNugget, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		nugget, ok := decodeHit(hit)
		if !ok {
			continue
		}
		score := 0.0
		if hit.VectorDistance != nil {
			score = 1 - float64(*hit.VectorDistance)
		}
		scored = append(scored, domain.ScoredNugget{Nugget: nugget, Score: score})
	}

	slog.DebugContext(ctx, "vector store search completed", "hits", len(scored), "language", lang)
	return scored, nil
}

func (s *typesenseStore) Delete(ctx context.Context, id string) error {
	if _, err := s.client.Collection(collectionName).Document(id).Delete(ctx, &api.DocumentDeleteParams{}); err != nil {
		return fmt.Errorf("delete nugget %s: %w", id, err)
	}
	return nil
}

func formatVector(vec []float32) string {
	parts := make([]string, len(vec))
	for i, f := range vec {
		parts[i] = fmt.Sprintf("%f", f)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func decodeHit(hit api.SearchResultHit) (domain.KnowledgeNugget, bool) {
	if hit.Document == nil {
		return domain.KnowledgeNugget{}, false
	}
	doc := *hit.Document

	id, _ := doc["id"].(string)
	if id == "" {
		return domain.KnowledgeNugget{}, false
	}

	title, _ := doc["title"].(string)
	body, _ := doc["body"].(string)
	lang, _ := doc["language"].(string)
	nuggetType, _ := doc["nugget_type"].(string)

	var keywords []string
	if raw, ok := doc["keywords"].([]any); ok {
		for _, k := range raw {
			if s, ok := k.(string); ok {
				keywords = append(keywords, s)
			}
		}
	}

	return domain.KnowledgeNugget{
		ID:       id,
		Title:    title,
		Body:     body,
		Keywords: keywords,
		Language: domain.Language(lang),
		Type:     nuggetType,
	}, true
}

func isAlreadyExists(err error) bool {
	return strings.Contains(err.Error(), "already exists")
}
