package sqlc

import "context"

const createKnowledgeNugget = `
INSERT INTO knowledge_nuggets (id, title, body, keywords, language, type, tags, embedding)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
	title = EXCLUDED.title, body = EXCLUDED.body, keywords = EXCLUDED.keywords,
	language = EXCLUDED.language, type = EXCLUDED.type, tags = EXCLUDED.tags, embedding = EXCLUDED.embedding
RETURNING id, title, body, keywords, language, type, tags, embedding
`

type CreateKnowledgeNuggetParams struct {
	ID        string
	Title     string
	Body      string
	Keywords  []string
	Language  string
	Type      string
	Tags      []byte
	Embedding []float32
}

func (q *Queries) CreateKnowledgeNugget(ctx context.Context, arg CreateKnowledgeNuggetParams) (KnowledgeNugget, error) {
	row := q.db.QueryRow(ctx, createKnowledgeNugget,
		arg.ID, arg.Title, arg.Body, arg.Keywords, arg.Language, arg.Type, arg.Tags, arg.Embedding)
	var n KnowledgeNugget
	err := row.Scan(&n.ID, &n.Title, &n.Body, &n.Keywords, &n.Language, &n.Type, &n.Tags, &n.Embedding)
	return n, err
}

const listKnowledgeNuggetsByLanguage = `
SELECT id, title, body, keywords, language, type, tags, embedding
FROM knowledge_nuggets
WHERE language = $1
ORDER BY id ASC
`

func (q *Queries) ListKnowledgeNuggetsByLanguage(ctx context.Context, language string) ([]KnowledgeNugget, error) {
	rows, err := q.db.Query(ctx, listKnowledgeNuggetsByLanguage, language)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nuggets []KnowledgeNugget
	for rows.Next() {
		var n KnowledgeNugget
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.Keywords, &n.Language, &n.Type, &n.Tags, &n.Embedding); err != nil {
			return nil, err
		}
		nuggets = append(nuggets, n)
	}
	return nuggets, rows.Err()
}

const listAllKnowledgeNuggets = `
SELECT id, title, body, keywords, language, type, tags, embedding
FROM knowledge_nuggets
ORDER BY id ASC
`

func (q *Queries) ListAllKnowledgeNuggets(ctx context.Context) ([]KnowledgeNugget, error) {
	rows, err := q.db.Query(ctx, listAllKnowledgeNuggets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nuggets []KnowledgeNugget
	for rows.Next() {
		var n KnowledgeNugget
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.Keywords, &n.Language, &n.Type, &n.Tags, &n.Embedding); err != nil {
			return nil, err
		}
		nuggets = append(nuggets, n)
	}
	return nuggets, rows.Err()
}
