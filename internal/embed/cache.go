package embed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/basegraph/salesassist/common/llmclient"
	"github.com/basegraph/salesassist/common/logger"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "embed:cache:"

// cachedEmbedder wraps an llmclient.Embedder with a Redis cache keyed
// by a content hash of (model, text). Embeddings are deterministic for
// a given model, so the hash alone is a safe cache key.
type cachedEmbedder struct {
	client   *redis.Client
	embedder llmclient.Embedder
	ttl      time.Duration
}

// NewCachedEmbedder wraps embedder with a Redis content-hash cache. A
// ttl of zero means entries never expire.
func NewCachedEmbedder(client *redis.Client, embedder llmclient.Embedder, ttl time.Duration) Embedder {
	return &cachedEmbedder{client: client, embedder: embedder, ttl: ttl}
}

func (c *cachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "salesassist.embed"})

	key := c.cacheKey(text)

	if cached, err := c.get(ctx, key); err == nil && cached != nil {
		slog.DebugContext(ctx, "embedding cache hit", "key", key)
		return cached, nil
	}

	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	if err := c.set(ctx, key, vec); err != nil {
		slog.WarnContext(ctx, "failed to cache embedding", "error", err, "key", key)
	}

	return vec, nil
}

func (c *cachedEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(c.embedder.Model() + "\x00" + text))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *cachedEmbedder) get(ctx context.Context, key string) ([]float32, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return decodeVector(raw), nil
}

func (c *cachedEmbedder) set(ctx context.Context, key string, vec []float32) error {
	return c.client.Set(ctx, key, encodeVector(vec), c.ttl).Err()
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
