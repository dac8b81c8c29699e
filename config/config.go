// Package config resolves tracker settings from environment variables with
// sensible defaults. Every knob can be set as LIBRARY_<NAME>.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Backend selects where the collection is persisted.
type Backend string

const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
)

// Config holds the tracker configuration.
type Config struct {
	DataPath           string  // snapshot path (JSON file or SQLite archive)
	LogPath            string  // optional log file, "" = stderr only
	Backend            Backend // json or sqlite
	FeePerDay          float64 // late fee per charged day
	LoanDays           int     // default loan length offered by the CLI
	MaxRenewalDays     int     // renewal cap passed to Renew
	DisallowDuplicates bool    // reject duplicate title+author pairs
	Renderer           string  // plain, color, or auto
	Seed               bool    // seed the demo inventory when starting empty
	Verbose            bool    // debug-level logging
}

// New reads the configuration from the environment.
func New() *Config {
	v := viper.New()
	v.SetEnvPrefix("library")
	v.AutomaticEnv()

	v.SetDefault("data_path", "books_pro.json")
	v.SetDefault("log_path", "library_log.txt")
	v.SetDefault("backend", string(BackendJSON))
	v.SetDefault("fee_per_day", 1.5)
	v.SetDefault("loan_days", 14)
	v.SetDefault("max_renewal_days", 28)
	v.SetDefault("disallow_duplicates", true)
	v.SetDefault("renderer", "auto")
	v.SetDefault("seed", true)
	v.SetDefault("verbose", false)

	return &Config{
		DataPath:           v.GetString("data_path"),
		LogPath:            v.GetString("log_path"),
		Backend:            Backend(strings.ToLower(v.GetString("backend"))),
		FeePerDay:          v.GetFloat64("fee_per_day"),
		LoanDays:           v.GetInt("loan_days"),
		MaxRenewalDays:     v.GetInt("max_renewal_days"),
		DisallowDuplicates: v.GetBool("disallow_duplicates"),
		Renderer:           strings.ToLower(v.GetString("renderer")),
		Seed:               v.GetBool("seed"),
		Verbose:            v.GetBool("verbose"),
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.DataPath == "" {
		return fmt.Errorf("data path cannot be empty")
	}
	switch c.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q (want json or sqlite)", c.Backend)
	}
	if c.FeePerDay < 0 {
		return fmt.Errorf("fee per day cannot be negative")
	}
	if c.LoanDays <= 0 {
		return fmt.Errorf("loan days must be positive")
	}
	if c.MaxRenewalDays <= 0 {
		return fmt.Errorf("max renewal days must be positive")
	}
	switch c.Renderer {
	case "plain", "color", "auto":
	default:
		return fmt.Errorf("unknown renderer %q (want plain, color, or auto)", c.Renderer)
	}
	return nil
}
