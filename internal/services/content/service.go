package content

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ijo-project/ijo-backend/internal/dependencies/clock"
	"github.com/ijo-project/ijo-backend/internal/model"
	"github.com/ijo-project/ijo-backend/internal/storage"
)

//go:embed defaults.json
var defaultsJSON []byte

// Service serves the landing page CMS blocks
type Service struct {
	storage  storage.Storage
	clock    clock.Clock
	logger   *slog.Logger
	defaults map[string]json.RawMessage
}

// New creates a new content Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage:  storage,
		clock:    clock,
		logger:   logger,
		defaults: mustParseDefaults(defaultsJSON),
	}
}

func mustParseDefaults(raw []byte) map[string]json.RawMessage {
	var defaults map[string]json.RawMessage
	if err := json.Unmarshal(raw, &defaults); err != nil {
		panic(fmt.Sprintf("content: parsing embedded defaults: %v", err))
	}
	return defaults
}

// Keys returns the known content keys in sorted order
func (s *Service) Keys() []string {
	keys := make([]string, 0, len(s.defaults))
	for k := range s.defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Public returns every known block. A stored entry replaces the default for its key;
// stored entries under keys without a default are not published.
func (s *Service) Public(ctx context.Context) (map[string]json.RawMessage, error) {
	entries, err := s.storage.ListContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing content: %w", err)
	}

	result := make(map[string]json.RawMessage, len(s.defaults))
	for k, v := range s.defaults {
		result[k] = v
	}
	for _, e := range entries {
		if _, known := s.defaults[e.Key]; known {
			result[e.Key] = e.Value
		}
	}
	return result, nil
}

// Update stores value under key, replacing any previous entry
func (s *Service) Update(ctx context.Context, key string, value json.RawMessage) (*model.ContentEntry, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, model.ErrInvalidContentKey
	}
	if len(value) == 0 || !json.Valid(value) {
		return nil, model.ErrInvalidContentValue
	}

	entry := &model.ContentEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: s.clock.Now(),
	}
	if err := s.storage.SaveContent(ctx, entry); err != nil {
		return nil, fmt.Errorf("saving content %q: %w", key, err)
	}

	if _, known := s.defaults[key]; !known {
		s.logger.Warn("content stored under unknown key", slog.String("key", key))
	}
	s.logger.Info("content updated", slog.String("key", key))
	return entry, nil
}
