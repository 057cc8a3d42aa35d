package storage

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"gopkg.in/yaml.v3"
)

// DriverFactory builds an adapter from a disk's configuration. The
// configuration map is the disk entry as loaded, including its "driver" key.
type DriverFactory func(config map[string]any, logger *slog.Logger) (Adapter, error)

// ManagerConfig describes the configured disks
type ManagerConfig struct {
	// Default names the disk returned by Manager.Default.
	Default string `yaml:"default"`

	// Disks maps a disk name to its driver configuration. Every entry needs
	// a "driver" key naming a registered driver.
	Disks map[string]map[string]any `yaml:"disks"`
}

// LoadConfig decodes a YAML disk configuration
func LoadConfig(r io.Reader) (ManagerConfig, error) {
	var cfg ManagerConfig
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return ManagerConfig{}, fmt.Errorf("parsing storage config: %w", err)
	}
	return cfg, nil
}

// Manager resolves named disks through registered driver factories. Disks
// are built on first use and cached.
type Manager struct {
	config  ManagerConfig
	logger  *slog.Logger
	mu      sync.Mutex
	drivers map[string]DriverFactory
	disks   map[string]*Disk
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithLogger sets the logger handed to drivers and disks
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a manager for the given configuration
func NewManager(cfg ManagerConfig, opts ...ManagerOption) *Manager {
	m := &Manager{
		config:  cfg,
		logger:  slog.New(slog.DiscardHandler),
		drivers: make(map[string]DriverFactory),
		disks:   make(map[string]*Disk),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Extend registers a driver factory under name, replacing any previous one
func (m *Manager) Extend(driver string, factory DriverFactory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver] = factory
}

// Disk returns the named disk, building it on first use
func (m *Manager) Disk(name string) (*Disk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d, ok := m.disks[name]; ok {
		return d, nil
	}

	cfg, ok := m.config.Disks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDisk, name)
	}
	driver, _ := cfg["driver"].(string)
	factory, ok := m.drivers[driver]
	if !ok {
		return nil, fmt.Errorf("disk %s: %w: %q", name, ErrUnknownDriver, driver)
	}

	adapter, err := factory(cfg, m.logger.With("disk", name))
	if err != nil {
		return nil, fmt.Errorf("disk %s: %w", name, err)
	}

	d := NewDisk(name, adapter, m.logger)
	m.disks[name] = d
	m.logger.Debug("disk resolved", "disk", name, "driver", driver)
	return d, nil
}

// Default returns the default disk
func (m *Manager) Default() (*Disk, error) {
	return m.Disk(m.config.Default)
}

// Forget drops a cached disk so the next lookup rebuilds it
func (m *Manager) Forget(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.disks, name)
}
