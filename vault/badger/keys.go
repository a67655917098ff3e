package badger

// Key prefixes for different record types
const (
	documentPrefix  = "docrec"
	docTypePrefix   = "doctyp"
	embeddingPrefix = "docemb"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id string) []byte {
	return []byte(documentPrefix + ":" + id)
}

// makeTypeIndexKey generates a composite key for the type index.
// Format: prefix:type:id
func makeTypeIndexKey(docType, id string) []byte {
	return []byte(docTypePrefix + ":" + docType + ":" + id)
}

// makeEmbeddingKey generates a composite key for a stored embedding.
// Format: prefix:id:model
func makeEmbeddingKey(id, modelName string) []byte {
	return []byte(embeddingPrefix + ":" + id + ":" + modelName)
}

// makePartialEmbeddingKey generates a prefix matching every embedding stored
// for a document, regardless of model.
func makePartialEmbeddingKey(id string) []byte {
	return []byte(embeddingPrefix + ":" + id + ":")
}
