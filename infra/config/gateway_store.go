package config

import (
	"fmt"
	"sync"
)

// GatewayStore manages operator-supplied gateway configurations: an in-memory
// map for the request path, optionally backed by SQLite persistence. The
// configuration handed to a provider is a copy; providers treat it as
// immutable for the lifetime of a pay/notify call.
type GatewayStore struct {
	configs map[string]map[string]string
	storage *SQLiteStorage
	mu      sync.RWMutex
}

// NewGatewayStore creates a gateway configuration store. storage may be nil
// for memory-only operation (tests, ephemeral deployments).
func NewGatewayStore(storage *SQLiteStorage) *GatewayStore {
	store := &GatewayStore{
		configs: make(map[string]map[string]string),
		storage: storage,
	}

	if storage != nil {
		configs, err := storage.LoadAllConfigs()
		if err == nil {
			store.configs = configs
		}
	}
	return store
}

// SetConfig stores the configuration for a provider
func (s *GatewayStore) SetConfig(providerName string, config map[string]string) error {
	if providerName == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if len(config) == 0 {
		return fmt.Errorf("config cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.storage != nil {
		if err := s.storage.SaveConfig(providerName, config); err != nil {
			return fmt.Errorf("failed to persist config: %w", err)
		}
	}

	s.configs[providerName] = cloneConfig(config)
	return nil
}

// GetConfig returns a copy of the configuration for a provider
func (s *GatewayStore) GetConfig(providerName string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	config, ok := s.configs[providerName]
	if !ok {
		return nil, fmt.Errorf("no configuration for provider '%s'", providerName)
	}
	return cloneConfig(config), nil
}

// DeleteConfig removes the configuration for a provider
func (s *GatewayStore) DeleteConfig(providerName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.storage != nil {
		if err := s.storage.DeleteConfig(providerName); err != nil {
			return fmt.Errorf("failed to delete persisted config: %w", err)
		}
	}

	delete(s.configs, providerName)
	return nil
}

// Providers returns the names of all configured providers
func (s *GatewayStore) Providers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.configs))
	for name := range s.configs {
		names = append(names, name)
	}
	return names
}

func cloneConfig(config map[string]string) map[string]string {
	clone := make(map[string]string, len(config))
	for k, v := range config {
		clone[k] = v
	}
	return clone
}
