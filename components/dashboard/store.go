package dashboard

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultStorageKey is the key holding the serialized configuration collection.
const DefaultStorageKey = "crm_dashboard_configs"

// StoreOptions configures a CollectionStore.
type StoreOptions struct {
	Key    string
	Logger *zap.Logger
	Clock  Clock
	IDs    *IDGenerator
}

// CollectionStore keeps every DashboardConfig in one JSON array stored under a
// single key. Each save or delete is a whole-collection read-modify-write
// guarded by a mutex, so writers within one process never interleave.
type CollectionStore struct {
	kv     KeyValue
	key    string
	logger *zap.Logger
	clock  Clock
	ids    *IDGenerator

	mu sync.Mutex
}

var _ ConfigStore = (*CollectionStore)(nil)

// NewCollectionStore wraps a key-value backend.
func NewCollectionStore(kv KeyValue, opts StoreOptions) *CollectionStore {
	if opts.Key == "" {
		opts.Key = DefaultStorageKey
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = systemClock
	}
	if opts.IDs == nil {
		opts.IDs = NewIDGenerator(opts.Clock)
	}
	return &CollectionStore{
		kv:     kv,
		key:    opts.Key,
		logger: opts.Logger,
		clock:  opts.Clock,
		ids:    opts.IDs,
	}
}

// List returns every configuration in storage order.
func (s *CollectionStore) List(ctx context.Context) ([]DashboardConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readDegraded(ctx), nil
}

// GetByID looks up a configuration by id.
func (s *CollectionStore) GetByID(ctx context.Context, id string) (DashboardConfig, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cfg := range s.readDegraded(ctx) {
		if cfg.ID == id {
			return cfg, true, nil
		}
	}
	return DashboardConfig{}, false, nil
}

// GetDefault returns the configuration flagged as default, if any.
func (s *CollectionStore) GetDefault(ctx context.Context) (DashboardConfig, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cfg := range s.readDegraded(ctx) {
		if cfg.IsDefault {
			return cfg, true, nil
		}
	}
	return DashboardConfig{}, false, nil
}

// Save creates or replaces a configuration and returns the stored record.
// An id that is not present in storage yields ErrNotFound and nothing is written.
func (s *CollectionStore) Save(ctx context.Context, cfg DashboardConfig) (DashboardConfig, error) {
	if s.kv == nil {
		return DashboardConfig{}, errMissingStore
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.load(ctx)
	if err != nil {
		return DashboardConfig{}, storageWriteError("load collection", err)
	}

	cfg = cfg.Clone()
	normalizeConfig(&cfg)
	now := s.now()

	idx := -1
	if cfg.ID == "" {
		cfg.ID = s.newConfigID(configs)
		cfg.CreatedAt = now
		cfg.UpdatedAt = now
	} else {
		idx = indexOfConfig(configs, cfg.ID)
		if idx < 0 {
			return DashboardConfig{}, notFoundError(cfg.ID)
		}
		prev := configs[idx]
		cfg.CreatedAt = prev.CreatedAt
		if cfg.CreatedAt.IsZero() {
			cfg.CreatedAt = now
		}
		if !now.After(prev.UpdatedAt) {
			now = prev.UpdatedAt.Add(time.Millisecond)
		}
		cfg.UpdatedAt = now
	}

	if cfg.IsDefault {
		for i := range configs {
			if configs[i].ID != cfg.ID {
				configs[i].IsDefault = false
			}
		}
	}

	if idx < 0 {
		configs = append(configs, cfg)
		idx = len(configs) - 1
	} else {
		configs[idx] = cfg
	}

	stored, err := s.persist(ctx, configs)
	if err != nil {
		return DashboardConfig{}, err
	}
	s.logger.Debug("dashboard config saved",
		zap.String("id", cfg.ID),
		zap.Bool("is_default", cfg.IsDefault),
		zap.Int("items", len(cfg.Items)),
	)
	return stored[idx], nil
}

// SetDefault flags one stored configuration as default and clears the flag
// everywhere else in a single write. Items are stored as found so records
// written by older versions stay untouched.
func (s *CollectionStore) SetDefault(ctx context.Context, id string) (DashboardConfig, error) {
	if s.kv == nil {
		return DashboardConfig{}, errMissingStore
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.load(ctx)
	if err != nil {
		return DashboardConfig{}, storageWriteError("load collection", err)
	}
	idx := indexOfConfig(configs, id)
	if idx < 0 {
		return DashboardConfig{}, notFoundError(id)
	}
	now := s.now()
	if !now.After(configs[idx].UpdatedAt) {
		now = configs[idx].UpdatedAt.Add(time.Millisecond)
	}
	for i := range configs {
		configs[i].IsDefault = i == idx
	}
	configs[idx].UpdatedAt = now

	stored, err := s.persist(ctx, configs)
	if err != nil {
		return DashboardConfig{}, err
	}
	s.logger.Debug("dashboard default changed", zap.String("id", id))
	return stored[idx], nil
}

// Delete removes a configuration. Deleting an absent id succeeds.
func (s *CollectionStore) Delete(ctx context.Context, id string) (bool, error) {
	if s.kv == nil {
		return false, errMissingStore
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.load(ctx)
	if err != nil {
		return false, storageWriteError("load collection", err)
	}
	idx := indexOfConfig(configs, id)
	if idx < 0 {
		return true, nil
	}
	configs = append(configs[:idx], configs[idx+1:]...)
	if _, err := s.persist(ctx, configs); err != nil {
		return false, err
	}
	s.logger.Debug("dashboard config deleted", zap.String("id", id))
	return true, nil
}

// readDegraded never fails: backend errors are logged and read as empty.
func (s *CollectionStore) readDegraded(ctx context.Context) []DashboardConfig {
	configs, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("dashboard config read failed", zap.String("key", s.key), zap.Error(err))
		return []DashboardConfig{}
	}
	return configs
}

// load returns backend errors; an absent or unparsable payload reads as empty.
func (s *CollectionStore) load(ctx context.Context) ([]DashboardConfig, error) {
	if s.kv == nil {
		return nil, errMissingStore
	}
	data, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return []DashboardConfig{}, nil
	}
	configs, err := decodeCollection(data)
	if err != nil {
		s.logger.Warn("dashboard config collection is unparsable, treating as empty",
			zap.String("key", s.key),
			zap.Error(err),
		)
		return []DashboardConfig{}, nil
	}
	return configs, nil
}

// persist writes the collection in one Set and returns it as a reader would see it.
func (s *CollectionStore) persist(ctx context.Context, configs []DashboardConfig) ([]DashboardConfig, error) {
	data, err := json.Marshal(configs)
	if err != nil {
		return nil, storageWriteError("encode collection", err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return nil, storageWriteError("persist collection", err)
	}
	stored, err := decodeCollection(data)
	if err != nil {
		return nil, storageWriteError("decode collection", err)
	}
	return stored, nil
}

func (s *CollectionStore) now() time.Time {
	return s.clock().UTC().Truncate(time.Millisecond)
}

func (s *CollectionStore) newConfigID(configs []DashboardConfig) string {
	for {
		id := s.ids.ConfigID()
		if indexOfConfig(configs, id) < 0 {
			return id
		}
	}
}

func decodeCollection(data []byte) ([]DashboardConfig, error) {
	var configs []DashboardConfig
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, err
	}
	if configs == nil {
		configs = []DashboardConfig{}
	}
	for i := range configs {
		normalizeConfig(&configs[i])
	}
	return configs, nil
}

func indexOfConfig(configs []DashboardConfig, id string) int {
	for i, cfg := range configs {
		if cfg.ID == id {
			return i
		}
	}
	return -1
}
