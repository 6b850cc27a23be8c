package main

import (
	"context"
	"fmt"

	"github.com/eringen/spacetraveling"
)

func runSeed(path string, prune bool) error {
	cfg := spacetraveling.LoadConfig().WithDefaults()

	store, err := spacetraveling.NewStore(cfg.DatabasePath, cfg.PreviewSecret)
	if err != nil {
		return err
	}
	defer store.Close()

	seeder := &spacetraveling.Seeder{
		Store:     store,
		StaticDir: spacetraveling.EnvOr("STATIC_DIR", "public"),
		Prune:     prune,
	}
	rep, err := seeder.SeedFile(context.Background(), path)
	if err != nil {
		return fmt.Errorf("seed %s after %d documents: %w", path, rep.Imported, err)
	}
	fmt.Printf("Imported %d documents into %s\n", rep.Imported, cfg.DatabasePath)
	if prune {
		fmt.Printf("Removed %d documents not in %s\n", rep.Pruned, path)
	}
	return nil
}
