package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# tradedesk configuration

[store]
# Storage driver: "sqlite" or "memory"
driver = "sqlite"
# SQLite database file (defaults to tradedesk.db next to this file)
# path = "/home/me/.config/tradedesk/tradedesk.db"

[quote]
# Chart API used for watchlist lookups
base_url = "https://query1.finance.yahoo.com"
# Request timeout (e.g., "10s", "1m")
timeout = "10s"
# Attempts per lookup; only connection failures are retried
max_attempts = 1

[analytics]
# Month shown by the weekly heatmap and calendar (YYYY-MM)
heatmap_month = "2025-06"

[server]
# Address the HTTP API listens on
listen = "127.0.0.1:8080"
# Prefix for shared watchlist links
base_url = "http://localhost:8080"

[logging]
# Log level: debug, info, warn, error
level = "info"
console = true
file = true
# Rotation limits
max_size = 100
max_backups = 7
max_age = 30

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "02-Jan-2006"
`

// createTemplateConfig writes the commented template unless a config file
// already exists.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, FileName+".toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}
