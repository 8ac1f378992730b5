package main

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/abelbrown/nexttogo/internal/config"
	"github.com/abelbrown/nexttogo/internal/race"
	"github.com/abelbrown/nexttogo/internal/store"
)

// loadConfig loads the config from the data directory or fatals.
func loadConfig() *config.Config {
	cfg, err := config.Load(config.DefaultDataDir())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	return cfg
}

// openDB opens the preference store or fatals.
func openDB(cfg *config.Config) *store.Store {
	st, err := store.Open(cfg.DBPath())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	return st
}

// parseCategoryArg accepts a category id, a label ("Harness") or a
// 1-based position in display order.
func parseCategoryArg(s string) (race.Category, bool) {
	if c, ok := race.ParseCategory(s); ok {
		return c, true
	}
	for i, c := range race.Categories {
		if strings.EqualFold(s, c.Label()) || s == strconv.Itoa(i+1) {
			return c, true
		}
	}
	return "", false
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
