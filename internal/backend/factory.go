package backend

import (
	"context"
	"fmt"

	"budget/internal/amqp"
	"budget/internal/cache"
	"budget/internal/log"
	"budget/internal/services"
	"budget/internal/storage"
	"budget/internal/store"
	"budget/internal/store/jsonfile"
	"budget/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	raw, err := f.openStore(config)
	if err != nil {
		return nil, err
	}

	s := raw
	if config.CacheSize > 0 {
		s = store.NewCached(raw, cache.NewLRUCache[[]store.StoredItem](config.CacheSize, config.CacheTTL))
	}

	var events services.EventPublisher
	if client := f.connectEvents(ctx, config); client != nil {
		events = client
	}

	service := services.NewItemService(s, events, f.logger)

	f.logger.InfoContext(ctx, "Initialized backend",
		log.FieldBackend, config.Type.String(),
		"cache_size", config.CacheSize,
		"amqp_enabled", events != nil)

	return &BackendResult{
		Store:   s,
		Service: service,
		Cleanup: service.Close,
	}, nil
}

func (f *DefaultFactory) openStore(config Config) (store.Store, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Debug("Opened SQLite store", "db_path", config.SQLiteDBPath)
		return repo, nil

	case JSONBackend:
		s, err := jsonfile.Open(config.ItemsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open items file: %w", err)
		}
		f.logger.Debug("Opened JSON store", "path", config.ItemsFile)
		return s, nil

	case MemoryBackend:
		if config.SeedFile == "" {
			return memory.New(), nil
		}
		s, err := memory.NewFromFile(config.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to seed memory store: %w", err)
		}
		f.logger.Debug("Seeded memory store", "seed_file", config.SeedFile)
		return s, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// connectEvents returns nil when events are disabled or the broker is
// unreachable; the CLI works without them.
func (f *DefaultFactory) connectEvents(ctx context.Context, config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without item events", log.FieldError, err)
		return nil
	}

	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"routing_key", config.AMQPRoutingKey)
	return client
}
