// Package embed turns seller notes and knowledge nugget bodies into
// vectors for the Vector Store, caching by content hash so repeat text
// never pays for a second embedding call.
package embed

import "context"

// Embedder is the contract the Retrieval Layer and ingestion path
// depend on; the Redis-cached decorator and the raw LLM-backed client
// both satisfy it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
