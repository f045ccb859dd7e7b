// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string // listen address
	DataDir     string // snapshot directory (file backend)
	StaticDir   string // client UI root
	SnapshotDSN string // non-empty selects the Postgres snapshot backend
	MembersFile string
	TermsFile   string
	GroupsFile  string
}

// Load reads .env if present, then the BINGO_* variables with defaults.
func Load() Config {
	_ = godotenv.Load()

	dataDir := getenv("BINGO_DATA_DIR", "data")
	return Config{
		Addr:        getenv("BINGO_ADDR", ":8080"),
		DataDir:     dataDir,
		StaticDir:   getenv("BINGO_STATIC_DIR", "public"),
		SnapshotDSN: os.Getenv("BINGO_SNAPSHOT_DSN"),
		MembersFile: getenv("BINGO_MEMBERS_FILE", filepath.Join(dataDir, "members.txt")),
		TermsFile:   getenv("BINGO_TERMS_FILE", filepath.Join(dataDir, "terms.txt")),
		GroupsFile:  getenv("BINGO_GROUPS_FILE", filepath.Join(dataDir, "groups.txt")),
	}
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("empty listen address")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
