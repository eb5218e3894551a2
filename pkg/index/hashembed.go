package index

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// HashEmbedder is a deterministic, dependency-free embedder: character
// trigrams of the lowercased input are hashed into a fixed number of buckets
// and the counts normalized to unit length. Strings sharing many trigrams
// land close under cosine similarity, so misspellings and paraphrases of a
// name still rank its entity highly. Used by tests and as the offline
// fallback when no model adapter is configured.
type HashEmbedder struct {
	dims int
}

const defaultHashDims = 256

func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = defaultHashDims
	}
	return &HashEmbedder{dims: dims}
}

func (h *HashEmbedder) GenerateEmbedding(_ context.Context, input []byte) ([]float32, error) {
	vec := make([]float32, h.dims)

	text := strings.ToLower(strings.TrimSpace(string(input)))
	if text == "" {
		return vec, nil
	}

	// Padding lets leading and trailing characters form trigrams too, which
	// weights word boundaries the same as word interiors.
	padded := "  " + text + "  "
	for i := 0; i+3 <= len(padded); i++ {
		hasher := fnv.New32a()
		hasher.Write([]byte(padded[i : i+3]))
		vec[int(hasher.Sum32())%h.dims]++
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec, nil
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}
