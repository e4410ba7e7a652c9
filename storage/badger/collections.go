package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/quillon/findry/storage"
)

// EnsureCollection creates the collection metadata record if missing.
// An existing collection with a different vector dimension yields a
// *storage.DimensionMismatchError.
func (b *Backend) EnsureCollection(ctx context.Context, name string, vectorDim int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.WithTx(func(tx *badger.Txn) error {
		meta, err := readMeta(tx, name)
		if err != nil {
			return err
		}
		if meta != nil {
			if meta.VectorDim != vectorDim {
				return &storage.DimensionMismatchError{
					Collection: name,
					Expected:   meta.VectorDim,
					Actual:     vectorDim,
				}
			}
			return nil
		}
		record := storage.CollectionMeta{Name: name, VectorDim: vectorDim}
		return tx.Set(makeMetaKey(name), storage.MarshalMeta(record))
	}, true)
}

// DeleteCollection drops the metadata record and every item and index
// entry under the collection's prefixes. Missing collections are a no-op.
func (b *Backend) DeleteCollection(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.WithTx(func(tx *badger.Txn) error {
		return tx.Delete(makeMetaKey(name))
	}, true)
	if err != nil {
		return err
	}
	if err := b.db.DropPrefix(makeItemPrefix(name)); err != nil {
		return translateErr(err)
	}
	if err := b.db.DropPrefix(makeDocIndexCollectionPrefix(name)); err != nil {
		return translateErr(err)
	}
	return nil
}

// CollectionInfo reports existence, vector dimension and the number of
// stored chunks. Counting scans keys only, never values.
func (b *Backend) CollectionInfo(ctx context.Context, name string) (*storage.CollectionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info := &storage.CollectionInfo{Name: name}
	err := b.WithTx(func(tx *badger.Txn) error {
		meta, err := readMeta(tx, name)
		if err != nil {
			return err
		}
		if meta == nil {
			return nil
		}
		info.Exists = true
		info.VectorDim = meta.VectorDim

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeItemPrefix(name)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			info.ChunkCount++
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// ListCollections scans every metadata record and reports each stored
// collection with its vector dimension and live chunk count.
func (b *Backend) ListCollections(ctx context.Context) ([]storage.CollectionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var infos []storage.CollectionInfo
	err := b.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeMetaPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var meta storage.CollectionMeta
			err := iter.Item().Value(func(val []byte) error {
				var err error
				meta, err = storage.UnmarshalMeta(val)
				return err
			})
			if err != nil {
				return err
			}
			infos = append(infos, storage.CollectionInfo{
				Name:      meta.Name,
				Exists:    true,
				VectorDim: meta.VectorDim,
			})
		}
		for i := range infos {
			countOpts := badger.DefaultIteratorOptions
			countOpts.Prefix = makeItemPrefix(infos[i].Name)
			countOpts.PrefetchValues = false
			countIter := tx.NewIterator(countOpts)
			for countIter.Rewind(); countIter.Valid(); countIter.Next() {
				infos[i].ChunkCount++
			}
			countIter.Close()
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// readMeta loads a collection's metadata within tx, nil when absent.
func readMeta(tx *badger.Txn, name string) (*storage.CollectionMeta, error) {
	item, err := tx.Get(makeMetaKey(name))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var meta storage.CollectionMeta
	err = item.Value(func(val []byte) error {
		var err error
		meta, err = storage.UnmarshalMeta(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &meta, nil
}
