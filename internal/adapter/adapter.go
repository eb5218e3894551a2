// Package adapter selects the model backend from the environment, shared by
// the server and the CLI entry points.
package adapter

import (
	"fmt"

	"chainsight/internal/util"
	"chainsight/pkg/ai"
	oai "chainsight/pkg/ai/ollama"
	gai "chainsight/pkg/ai/openai"
	"chainsight/pkg/index"
	"chainsight/pkg/logger"
)

// NewClientFromEnv builds the ai.Client selected by AI_ADAPTER ("ollama" or
// "openai"). It returns nil without error when AI_ADAPTER is unset, which
// means no model backend is available and callers should run offline.
func NewClientFromEnv() (ai.Client, error) {
	switch adapter := util.GetEnv("AI_ADAPTER"); adapter {
	case "":
		return nil, nil

	case "ollama":
		client, err := oai.NewClient(oai.NewClientParams{
			EmbeddingModel: util.GetEnvString("AI_EMBED_MODEL", "nomic-embed-text"),
			ChatModel:      util.GetEnvString("AI_CHAT_MODEL", "llama3.1"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 4)),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return client, nil

	case "openai":
		return gai.NewClient(gai.NewClientParams{
			EmbeddingModel: util.GetEnvString("AI_EMBED_MODEL", "text-embedding-3-small"),
			ChatModel:      util.GetEnvString("AI_CHAT_MODEL", "gpt-4o-mini"),

			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnvString("AI_EMBED_KEY", util.GetEnv("AI_CHAT_KEY")),
			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentEmbeddings: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 8)),
		}), nil

	default:
		return nil, fmt.Errorf("unknown AI_ADAPTER %q", adapter)
	}
}

// EmbedderFromClient picks the embedder for index building: the model client
// when one is configured, the deterministic hash embedder otherwise.
func EmbedderFromClient(client ai.Client) index.Embedder {
	if client == nil {
		logger.Info("no model adapter configured, using hash embeddings")
		return index.NewHashEmbedder(0)
	}
	return client
}
