package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalItem(t *testing.T) {
	tests := []struct {
		name string
		item Item
	}{
		{
			"full item",
			Item{
				ID:     "a1b2c3",
				Vector: []float32{0.25, -0.5, 1.0},
				Payload: Payload{
					DocumentID:  "doc-1",
					Title:       "Caching with Redis",
					Ordinal:     2,
					TotalChunks: 5,
					Text:        "Redis is often used as a cache in front of a database.",
					TokenCount:  13,
				},
			},
		},
		{
			"empty vector",
			Item{ID: "x", Payload: Payload{DocumentID: "doc-2", TotalChunks: 1}},
		},
		{
			"unicode text",
			Item{
				ID:      "y",
				Vector:  []float32{1},
				Payload: Payload{DocumentID: "doc-3", Text: "café ☕ résumé", TokenCount: 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalItem(tt.item)
			require.NotEmpty(t, data)
			assert.Len(t, data, ItemMUS.Size(tt.item))

			decoded, err := UnmarshalItem(data)
			require.NoError(t, err)
			assert.Equal(t, tt.item.ID, decoded.ID)
			assert.Equal(t, tt.item.Payload, decoded.Payload)
			assert.Equal(t, len(tt.item.Vector), len(decoded.Vector))
			for i := range tt.item.Vector {
				assert.Equal(t, tt.item.Vector[i], decoded.Vector[i])
			}
		})
	}
}

func TestUnmarshalItem_Invalid(t *testing.T) {
	_, err := UnmarshalItem([]byte{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalMeta(t *testing.T) {
	meta := CollectionMeta{Name: "wiki-page", VectorDim: 768}

	data := MarshalMeta(meta)
	require.NotEmpty(t, data)
	assert.Len(t, data, MetaMUS.Size(meta))

	decoded, err := UnmarshalMeta(data)
	require.NoError(t, err)
	assert.Equal(t, meta, decoded)
}

func TestUnmarshalMeta_Invalid(t *testing.T) {
	_, err := UnmarshalMeta([]byte{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
