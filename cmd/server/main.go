// Command server boots the route-planning network interface: load config,
// take the single-instance lock, open storage, construct the planner, and
// serve the one-shot TCP/JSON route protocol (spec §6). Bootstrap shape
// grounds on the teacher's main.go (flags → lock → load config/state →
// construct collaborators → serve).
package main

import (
	"flag"
	"fmt"
	"os"

	"transitcore/api"
	"transitcore/config"
	"transitcore/logging"
	"transitcore/pathfinder"
	"transitcore/routeplan"
	"transitcore/storage"
	"transitcore/typedef"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./config.json", "path to the config document")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	lock, err := storage.AcquireLock("server.lock")
	if err != nil {
		fmt.Fprintf(os.Stderr, "acquire instance lock: %v\n", err)
		os.Exit(1)
	}
	defer lock.Release()
	if !lock.Owned() {
		fmt.Fprintln(os.Stderr, "another server instance is already running against this data directory")
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{
		Kind: logging.Kind(cfg.LoggerType),
		Path: stringField(cfg.LoggerConfig, "db_path", "./log.db"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "construct logger: %v\n", err)
		os.Exit(1)
	}

	mapPath := stringField(cfg.StorageProviderConfig, "path", "./data.json")
	mapStorage, err := storage.LoadJSONMapStorage(mapPath, cfg.WorldBorder)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load map: %v\n", err)
		os.Exit(1)
	}

	cacheStore := storage.NewGzipCacheStore()
	cachePath := stringField(cfg.StorageProviderConfig, "cache_path", "./heuristic_cache.json.gz")
	if err := cacheStore.Load(cachePath); err != nil {
		logger.Log(typedef.LogWarning, "no heuristic cache loaded: "+err.Error())
	}

	planner := routeplan.NewPlanner(mapStorage, pathfinder.NewCache(cacheStore), logger, nil)
	server := api.NewServer(planner, logger)

	address := fmt.Sprintf("%s:%d", cfg.NetworkAddress, cfg.NetworkPort)
	if err := server.ListenAndServe(address); err != nil {
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		os.Exit(1)
	}
}

func stringField(m map[string]any, key, fallback string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}
