// Command editor is the CLI map-editing surface (spec §6's "editor
// collaborator", out of core scope): add, move and delete a Location, add
// and delete a Connection, undo the last mutation, then save. Optionally serves the
// websocket change feed (api.EditorHub) for a GUI editor to observe, per
// SPEC_FULL's editor change-feed component.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"transitcore/api"
	"transitcore/config"
	"transitcore/logging"
	"transitcore/storage"
	"transitcore/typedef"
)

func main() {
	var configPath string
	var serve bool
	var serveAddress string
	flag.StringVar(&configPath, "config", "./config.json", "path to the config document")
	flag.BoolVar(&serve, "serve", false, "serve the websocket change feed instead of running one command")
	flag.StringVar(&serveAddress, "serve-address", "127.0.0.1:28582", "address to serve the change feed on")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fail("load config: %v", err)
	}
	logger, err := logging.New(logging.Config{Kind: logging.Kind(cfg.LoggerType), Path: "./editor-log.db"})
	if err != nil {
		fail("construct logger: %v", err)
	}

	mapPath := stringField(cfg.StorageProviderConfig, "path", "./data.json")
	mapStorage, err := storage.LoadJSONMapStorage(mapPath, cfg.WorldBorder)
	if err != nil {
		fail("load map: %v", err)
	}

	hub := api.NewEditorHub(mapStorage.Map, logger)
	go hub.Run()

	if serve {
		http.Handle("/ws", hub)
		fmt.Printf("serving editor change feed on %s\n", serveAddress)
		if err := http.ListenAndServe(serveAddress, nil); err != nil {
			fail("serve: %v", err)
		}
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		fail("usage: editor [-config path] <command> [args...]")
	}

	if err := runCommand(hub, mapStorage, args); err != nil {
		fail("%v", err)
	}
}

func runCommand(hub *api.EditorHub, mapStorage *storage.JSONMapStorage, args []string) error {
	switch args[0] {
	case "add-location":
		if len(args) != 5 {
			return fmt.Errorf("usage: add-location <id> <x> <y> <label>")
		}
		x, y, err := parseXY(args[2], args[3])
		if err != nil {
			return err
		}
		_, err = hub.AddLocation(args[1], args[4], typedef.Position{X: x, Y: y}, "")
		if err != nil {
			return err
		}
	case "move-location":
		if len(args) != 4 {
			return fmt.Errorf("usage: move-location <id> <x> <y>")
		}
		loc, ok := mapStorage.LocationByID(args[1])
		if !ok {
			return fmt.Errorf("no such location %q", args[1])
		}
		x, y, err := parseXY(args[2], args[3])
		if err != nil {
			return err
		}
		if err := hub.MoveLocation(loc, loc.ID, typedef.Position{X: x, Y: y}, loc.Label, loc.Description); err != nil {
			return err
		}
	case "delete-location":
		if len(args) != 2 {
			return fmt.Errorf("usage: delete-location <id>")
		}
		loc, ok := mapStorage.LocationByID(args[1])
		if !ok {
			return fmt.Errorf("no such location %q", args[1])
		}
		if err := hub.RemoveLocation(loc); err != nil {
			return err
		}
	case "add-connection":
		if len(args) != 6 {
			return fmt.Errorf("usage: add-connection <weight> <is_train> <from_id> <to_id> <label>")
		}
		weight, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid weight: %w", err)
		}
		isTrain := strings.EqualFold(args[2], "true")
		if _, err := hub.AddConnection(weight, isTrain, args[5], "", args[3], args[4]); err != nil {
			return err
		}
	case "delete-connection":
		if len(args) != 3 {
			return fmt.Errorf("usage: delete-connection <from_id> <to_id>")
		}
		from, ok := mapStorage.LocationByID(args[1])
		if !ok {
			return fmt.Errorf("no such location %q", args[1])
		}
		var found *typedef.Connection
		for _, c := range from.Connections {
			if c.OtherSide(from) != nil && c.OtherSide(from).ID == args[2] {
				found = c
				break
			}
		}
		if found == nil {
			return fmt.Errorf("no connection between %q and %q", args[1], args[2])
		}
		if err := hub.RemoveConnection(found); err != nil {
			return err
		}
	case "undo":
		if len(args) != 1 {
			return fmt.Errorf("usage: undo")
		}
		if err := hub.Undo(); err != nil {
			return err
		}
	case "save":
		// handled below regardless of command
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}

	return mapStorage.Save()
}

func parseXY(xs, ys string) (int, int, error) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid x: %w", err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid y: %w", err)
	}
	return x, y, nil
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
