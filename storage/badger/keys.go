package badger

import "fmt"

// Key prefixes for different data types
const (
	collectionMetaPrefix = "colmeta"
	itemPrefix           = "item"
	itemDocPrefix        = "itemdoc"
)

// makeMetaKey generates the key holding a collection's metadata.
func makeMetaKey(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s", collectionMetaPrefix, collection))
}

// makeMetaPrefix generates the scan prefix covering every collection's
// metadata record.
func makeMetaPrefix() []byte {
	return []byte(collectionMetaPrefix + ":")
}

// makeItemKey generates the key for a stored chunk.
func makeItemKey(collection, chunkID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", itemPrefix, collection, chunkID))
}

// makeItemPrefix generates the scan prefix covering all chunks of a collection.
func makeItemPrefix(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", itemPrefix, collection))
}

// makeDocIndexKey generates the document index key for one chunk. The
// value stored under it is the chunk's item key, so deletion never has
// to parse document IDs back out of composite keys.
func makeDocIndexKey(collection, documentID, chunkID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:%s", itemDocPrefix, collection, documentID, chunkID))
}

// makeDocIndexPrefix generates the scan prefix covering all index entries
// of one document.
func makeDocIndexPrefix(collection, documentID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:", itemDocPrefix, collection, documentID))
}

// makeDocIndexCollectionPrefix covers every document index entry of a collection.
func makeDocIndexCollectionPrefix(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", itemDocPrefix, collection))
}
