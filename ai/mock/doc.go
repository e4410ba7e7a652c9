// Package mock provides a test double for the ai.Embedder interface.
//
// The mock defaults to the offline deterministic embedder and supports
// behavior injection for failure testing:
//
//	embedder := mock.NewEmbedder(64)
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) (*ai.Result, error) {
//	    return nil, &ai.ProviderError{Failed: len(texts), Attempts: 3, Err: errors.New("boom")}
//	}
package mock
