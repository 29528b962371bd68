// Command cachebuild triggers pathfinder.BuildCache over a configured
// rectangle and saves the result (spec §4.3 Precomputation).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"transitcore/config"
	"transitcore/pathfinder"
	"transitcore/storage"
)

func main() {
	var configPath string
	var workerCount int
	var minX, maxX, minY, maxY int
	flag.StringVar(&configPath, "config", "./config.json", "path to the config document")
	flag.IntVar(&workerCount, "workers", 4, "worker goroutines")
	flag.IntVar(&minX, "min-x", 0, "rectangle min x (defaults to the world border)")
	flag.IntVar(&maxX, "max-x", 0, "rectangle max x (defaults to the world border)")
	flag.IntVar(&minY, "min-y", 0, "rectangle min y (defaults to the world border)")
	flag.IntVar(&maxY, "max-y", 0, "rectangle max y (defaults to the world border)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fail("load config: %v", err)
	}

	mapPath := stringField(cfg.StorageProviderConfig, "path", "./data.json")
	mapStorage, err := storage.LoadJSONMapStorage(mapPath, cfg.WorldBorder)
	if err != nil {
		fail("load map: %v", err)
	}

	rect := cfg.WorldBorder
	if flagSet("min-x") {
		rect.MinX = minX
	}
	if flagSet("max-x") {
		rect.MaxX = maxX
	}
	if flagSet("min-y") {
		rect.MinY = minY
	}
	if flagSet("max-y") {
		rect.MaxY = maxY
	}

	cacheStore := storage.NewGzipCacheStore()
	cachePath := stringField(cfg.StorageProviderConfig, "cache_path", "./heuristic_cache.json.gz")
	cache := pathfinder.NewCache(cacheStore)
	oracle := pathfinder.NewOracle(mapStorage, cache, nil)

	progress := func(completed, total int64) {
		fmt.Printf("\r%d/%d cells", completed, total)
	}

	if err := pathfinder.BuildCache(context.Background(), oracle, cache, rect, workerCount, progress); err != nil {
		fail("\nbuild cache: %v", err)
	}
	fmt.Println()

	if err := cache.Save(cachePath); err != nil {
		fail("save cache: %v", err)
	}
}

func flagSet(names ...string) bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, n := range names {
		if set[n] {
			return true
		}
	}
	return false
}

func stringField(m map[string]any, key, fallback string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
