package common

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Store configuration struct
// --------------------------------------------------------------------------

type MediumType string

const (
	MediumMemory MediumType = "memory"
	MediumSQLite MediumType = "sqlite"
)

// ParseMediumType converts a string to a MediumType
func ParseMediumType(s string) (MediumType, error) {
	switch MediumType(strings.ToLower(strings.TrimSpace(s))) {
	case MediumMemory:
		return MediumMemory, nil
	case MediumSQLite:
		return MediumSQLite, nil
	default:
		return "", fmt.Errorf("invalid medium %s (expected one of: memory, sqlite)", s)
	}
}

// StoreConfig holds all configuration parameters for a store instance.
type StoreConfig struct {
	// the storage medium backing the store
	Medium MediumType
	// path of the sqlite database (ignored for the memory medium)
	DataPath string

	// tenant to activate on startup, empty keeps the persisted one
	Tenant string

	// Logging configuration
	LogLevel string
	// Verbose enables the store's per-operation trace
	Verbose bool
}

// DefaultStoreConfig returns the configuration used when nothing is set
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Medium:   MediumSQLite,
		DataPath: "data/localdb.sqlite",
		LogLevel: "info",
	}
}

// Validate checks the configuration for obvious mistakes
func (c *StoreConfig) Validate() error {
	if _, err := ParseMediumType(string(c.Medium)); err != nil {
		return err
	}
	if c.Medium == MediumSQLite && c.DataPath == "" {
		return fmt.Errorf("data path is required for the sqlite medium")
	}
	if strings.Contains(c.Tenant, ":") {
		return fmt.Errorf("tenant %q must not contain ':'", c.Tenant)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// String returns a formatted string representation of the configuration
func (c *StoreConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// Storage
	addSection("Storage")
	addField("Medium", string(c.Medium))
	if c.Medium == MediumSQLite {
		addField("Data Path", c.DataPath)
	}

	// Tenant
	addSection("Tenant")
	if c.Tenant == "" {
		addField("Tenant", "(persisted)")
	} else {
		addField("Tenant", c.Tenant)
	}

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)
	addField("Verbose", fmt.Sprintf("%t", c.Verbose))

	return sb.String()
}
