package config

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorage persists operator gateway configurations. The gateway core
// itself owns no state; this is the surrounding configuration store the
// admin surface writes into.
type SQLiteStorage struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStorage opens (and if needed creates) the configuration database
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_timeout=20000", dbPath)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	storage := &SQLiteStorage{
		db:   db,
		path: dbPath,
	}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema creates the necessary tables
func (s *SQLiteStorage) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS gateway_configs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		provider_name TEXT NOT NULL UNIQUE,
		config_data TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TRIGGER IF NOT EXISTS update_gateway_configs_updated_at
		AFTER UPDATE ON gateway_configs
	BEGIN
		UPDATE gateway_configs SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
	END;
	`
	_, err := s.db.Exec(query)
	return err
}

// retryOperation executes a database operation with retry logic for SQLITE_BUSY errors
func (s *SQLiteStorage) retryOperation(operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		if strings.Contains(err.Error(), "SQLITE_BUSY") || strings.Contains(err.Error(), "database is locked") {
			lastErr = err
			if attempt < maxRetries {
				backoff := time.Duration(10*(1<<attempt)) * time.Millisecond
				log.Printf("SQLite busy, retrying in %v (attempt %d/%d)", backoff, attempt+1, maxRetries+1)
				time.Sleep(backoff)
				continue
			}
		} else {
			return err
		}
	}

	return fmt.Errorf("operation failed after %d retries, last error: %w", maxRetries+1, lastErr)
}

// SaveConfig stores or replaces the configuration of a provider
func (s *SQLiteStorage) SaveConfig(providerName string, config map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return s.retryOperation(func() error {
		_, err := s.db.Exec(`
			INSERT INTO gateway_configs (provider_name, config_data) VALUES (?, ?)
			ON CONFLICT(provider_name) DO UPDATE SET config_data = excluded.config_data
		`, providerName, string(data))
		return err
	}, 3)
}

// LoadConfig returns the stored configuration of a provider
func (s *SQLiteStorage) LoadConfig(providerName string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data string
	err := s.db.QueryRow(
		"SELECT config_data FROM gateway_configs WHERE provider_name = ?", providerName,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no configuration stored for provider '%s'", providerName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var config map[string]string
	if err := json.Unmarshal([]byte(data), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return config, nil
}

// LoadAllConfigs returns every stored provider configuration keyed by name
func (s *SQLiteStorage) LoadAllConfigs() (map[string]map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT provider_name, config_data FROM gateway_configs")
	if err != nil {
		return nil, fmt.Errorf("failed to query configs: %w", err)
	}
	defer rows.Close()

	configs := make(map[string]map[string]string)
	for rows.Next() {
		var name, data string
		if err := rows.Scan(&name, &data); err != nil {
			return nil, fmt.Errorf("failed to scan config row: %w", err)
		}
		var config map[string]string
		if err := json.Unmarshal([]byte(data), &config); err != nil {
			log.Printf("Warning: skipping undecodable config for provider %s: %v", name, err)
			continue
		}
		configs[name] = config
	}
	return configs, rows.Err()
}

// DeleteConfig removes the stored configuration of a provider
func (s *SQLiteStorage) DeleteConfig(providerName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.retryOperation(func() error {
		_, err := s.db.Exec("DELETE FROM gateway_configs WHERE provider_name = ?", providerName)
		return err
	}, 3)
}

// Close closes the underlying database
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
