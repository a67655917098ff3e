package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/vault"
)

// CreateDocument stores a new document. The ID is content-derived, so
// re-creating an identical document overwrites the previous record rather
// than accumulating duplicates.
func (s *Store) CreateDocument(ctx context.Context, docType, title, observedAt, body string, tags []string) (*core.Document, error) {
	doc := &core.Document{
		ID:         core.DocumentID(docType, title, observedAt, body),
		Type:       docType,
		Title:      title,
		ObservedAt: observedAt,
		Body:       body,
		Tags:       tags,
		CreatedAt:  time.Now().UTC(),
	}

	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	err := s.withTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeDocumentKey(doc.ID), vault.MarshalDocument(doc)); err != nil {
			return err
		}
		if err := tx.Set(makeTypeIndexKey(doc.Type, doc.ID), []byte(doc.ID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("created document", "id", doc.ID, "type", doc.Type)
	return doc, nil
}

// ReadDocument retrieves a document by ID. A non-empty docType must match
// the stored document's type; a mismatch reports vault.ErrNotFound.
func (s *Store) ReadDocument(ctx context.Context, docType, id string) (*core.Document, error) {
	var doc *core.Document

	err := s.withTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocumentKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return vault.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			doc, err = vault.UnmarshalDocument(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}

	if docType != "" && doc.Type != docType {
		return nil, vault.ErrNotFound
	}
	return doc, nil
}

// QueryAll returns every document in the vault.
func (s *Store) QueryAll(ctx context.Context) ([]*core.Document, error) {
	var docs []*core.Document

	err := s.withTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				doc, err := vault.UnmarshalDocument(val)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
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

	return docs, nil
}
