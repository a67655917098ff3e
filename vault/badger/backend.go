package badger

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/docent/vault"
)

const defaultEmbeddingDim = 1536

// Store is a BadgerDB-backed vault.Vault.
type Store struct {
	db           *badger.DB
	embeddingDim int
	logger       *slog.Logger
}

var _ vault.Vault = (*Store)(nil)

// badgerLoggerAdapter adapts slog.Logger to the badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	inMemory     bool
	embeddingDim int
	logger       *slog.Logger
}

// WithInMemory opens the store in memory, without touching disk.
func WithInMemory() Option {
	return func(o *storeOptions) {
		o.inMemory = true
	}
}

// WithEmbeddingDim sets the vault's embedding dimensionality.
// Default is 1536. Vectors of any other length are rejected by
// StoreEmbedding.
func WithEmbeddingDim(dim int) Option {
	return func(o *storeOptions) {
		if dim > 0 {
			o.embeddingDim = dim
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *storeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open opens a BadgerDB-backed vault at the specified path, creating the
// directory if it does not exist.
func Open(filePath string, opts ...Option) (*Store, error) {
	so := &storeOptions{
		embeddingDim: defaultEmbeddingDim,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(so)
	}

	var badgerOpts badger.Options

	if so.inMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		badgerOpts = badger.DefaultOptions(filePath)
	}

	badgerOpts.Logger = &badgerLoggerAdapter{logger: so.logger}
	badgerOpts.Compression = options.None

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:           db,
		embeddingDim: so.embeddingDim,
		logger:       so.logger,
	}, nil
}

// Close closes the underlying BadgerDB database.
func (s *Store) Close() error {
	return s.db.Close()
}

// EmbeddingDim returns the configured embedding dimensionality.
func (s *Store) EmbeddingDim() int {
	return s.embeddingDim
}

// withTx executes a function within a BadgerDB transaction. The transaction
// is discarded automatically if fn returns an error.
func (s *Store) withTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	if s.db.IsClosed() {
		return vault.ErrVaultClosed
	}
	tx := s.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}
