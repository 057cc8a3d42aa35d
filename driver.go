package vfsadapter

import (
	"log/slog"

	"github.com/absfs/vfsadapter/storage"
)

// DriverName is the manager driver name of the virtual adapter
const DriverName = "vfs"

// Factory builds a virtual adapter from a disk configuration. The "driver"
// key is dropped; every other key is passed through as adapter configuration.
func Factory(cfg map[string]any, logger *slog.Logger) (storage.Adapter, error) {
	config := make(map[string]any, len(cfg))
	for k, v := range cfg {
		if k == "driver" {
			continue
		}
		config[k] = v
	}
	return New(config, WithLogger(logger))
}

// Register makes the vfs driver available to m
func Register(m *storage.Manager) {
	m.Extend(DriverName, Factory)
}
