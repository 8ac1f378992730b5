package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/abelbrown/nexttogo/internal/race"
	"github.com/abelbrown/nexttogo/internal/store"
)

func runPrefs() {
	fs := flag.NewFlagSet("prefs", flag.ExitOnError)
	set := fs.String("set", "", "Store this category (id, label or 1-3)")
	reset := fs.Bool("reset", false, "Forget the stored category")
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	st := openDB(cfg)
	defer st.Close()

	switch {
	case *reset:
		if err := st.DeletePreference(store.KeySelectedCategory); err != nil {
			log.Fatalf("reset failed: %v", err)
		}
		fmt.Printf("Stored category cleared; %s will be used.\n", race.DefaultCategory.Label())
		return

	case *set != "":
		c, ok := parseCategoryArg(*set)
		if !ok {
			log.Fatalf("unknown category %q", *set)
		}
		if err := st.SetPreference(store.KeySelectedCategory, string(c)); err != nil {
			log.Fatalf("save failed: %v", err)
		}
		fmt.Printf("Stored category: %s\n", c.Label())
		return
	}

	value, ok, err := st.Preference(store.KeySelectedCategory)
	if err != nil {
		log.Fatalf("read failed: %v", err)
	}
	fmt.Printf("Database:  %s\n", cfg.DBPath())
	switch c, valid := race.ParseCategory(value); {
	case !ok:
		fmt.Printf("Category:  (none stored, %s used)\n", race.DefaultCategory.Label())
	case !valid:
		fmt.Printf("Category:  %q is unknown, %s used\n", value, race.DefaultCategory.Label())
	default:
		fmt.Printf("Category:  %s (%s)\n", c.Label(), c)
	}
}
