package badger

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/quillon/findry/storage"
)

// Upsert stores the items in one transaction, replacing existing chunks
// with the same ID. The whole batch is validated against the collection
// dimension before any key is written.
func (b *Backend) Upsert(ctx context.Context, collection string, items []storage.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.WithTx(func(tx *badger.Txn) error {
		meta, err := readMeta(tx, collection)
		if err != nil {
			return err
		}
		if meta == nil {
			return storage.ErrCollectionNotFound
		}
		for _, item := range items {
			if len(item.Vector) != meta.VectorDim {
				return &storage.DimensionMismatchError{
					Collection: collection,
					Expected:   meta.VectorDim,
					Actual:     len(item.Vector),
				}
			}
		}
		for _, item := range items {
			if err := tx.Set(makeItemKey(collection, item.ID), storage.MarshalItem(item)); err != nil {
				return err
			}
			docKey := makeDocIndexKey(collection, item.Payload.DocumentID, item.ID)
			if err := tx.Set(docKey, makeItemKey(collection, item.ID)); err != nil {
				return err
			}
		}
		return nil
	}, true)
}

// Get retrieves items by chunk ID. Missing IDs are skipped.
func (b *Backend) Get(ctx context.Context, collection string, ids []string) ([]storage.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := make([]storage.Item, 0, len(ids))
	err := b.WithTx(func(tx *badger.Txn) error {
		meta, err := readMeta(tx, collection)
		if err != nil {
			return err
		}
		if meta == nil {
			return storage.ErrCollectionNotFound
		}
		for _, id := range ids {
			entry, err := tx.Get(makeItemKey(collection, id))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			err = entry.Value(func(val []byte) error {
				item, err := storage.UnmarshalItem(val)
				if err != nil {
					return err
				}
				items = append(items, item)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteByDocument removes every chunk of a document together with its
// index entries. A document with no stored chunks is a no-op.
func (b *Backend) DeleteByDocument(ctx context.Context, collection, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.WithTx(func(tx *badger.Txn) error {
		// Collect first; badger iterators must not observe writes from
		// the same loop.
		var indexKeys, itemKeys [][]byte
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeDocIndexPrefix(collection, documentID)
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			entry := iter.Item()
			indexKeys = append(indexKeys, entry.KeyCopy(nil))
			itemKey, err := entry.ValueCopy(nil)
			if err != nil {
				iter.Close()
				return err
			}
			itemKeys = append(itemKeys, itemKey)
		}
		iter.Close()

		for _, key := range itemKeys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		for _, key := range indexKeys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return nil
	}, true)
}

// Query scans the collection's chunks and returns the topK closest to the
// vector by normalized cosine similarity. Ties break by chunk ID ascending.
func (b *Backend) Query(ctx context.Context, collection string, vector []float32, topK int, filter *storage.Filter) ([]storage.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var hits []storage.Hit
	err := b.WithTx(func(tx *badger.Txn) error {
		meta, err := readMeta(tx, collection)
		if err != nil {
			return err
		}
		if meta == nil {
			return storage.ErrCollectionNotFound
		}
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeItemPrefix(collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var item storage.Item
			err := iter.Item().Value(func(val []byte) error {
				var err error
				item, err = storage.UnmarshalItem(val)
				return err
			})
			if err != nil {
				return err
			}
			if !matchesFilter(filter, item.Payload.DocumentID) {
				continue
			}
			hits = append(hits, storage.Hit{
				ID:      item.ID,
				Score:   storage.CosineScore(storage.Cosine(vector, item.Vector)),
				Payload: item.Payload,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, nil
	}
	slices.SortFunc(hits, func(a, b storage.Hit) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func matchesFilter(f *storage.Filter, documentID string) bool {
	if f == nil {
		return true
	}
	if slices.Contains(f.ExcludeDocumentIDs, documentID) {
		return false
	}
	if len(f.DocumentIDs) == 0 {
		return true
	}
	return slices.Contains(f.DocumentIDs, documentID)
}
