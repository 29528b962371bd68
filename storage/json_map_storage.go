package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gookit/goutil/arrutil"

	"transitcore/typedef"
	"transitcore/worldmap"
)

// currentMapVersion is the version written by Save; supportedMapVersions
// are the versions Load accepts.
const currentMapVersion = 1

var supportedMapVersions = []int{1}

// mapDocument is the persisted map's on-disk shape (spec §6): a JSON object
// with version, locations, and connections, and nothing else — unknown
// top-level keys are rejected.
type mapDocument struct {
	Version     *int                     `json:"version"`
	Locations   []worldmap.LocationDoc   `json:"locations"`
	Connections []worldmap.ConnectionDoc `json:"connections"`
}

// JSONMapStorage implements typedef.Storage over a *worldmap.Map loaded
// from / saved to the spec §6 persisted JSON document. Grounds on
// original_source/src/StorageProvider.py's JsonStorageProvider's key
// checks. Here json.Decoder.DisallowUnknownFields rejects unknown keys; a
// missing "locations" or "connections" key is not rejected and loads as an
// empty list.
type JSONMapStorage struct {
	*worldmap.Map
	path string
}

// LoadJSONMapStorage reads and parses the map document at path. A missing
// "version" key is treated as pre-versioned and upgraded to
// currentMapVersion with default-filled fields (spec §6).
//
// A bare filename (no directory component, e.g. "data.json") is resolved
// the way the teacher's guild manager resolves "guilds.json": through
// ReadDataFile, which checks the platform data directory first and falls
// back to a legacy copy in the working directory, migrating it forward.
// Saves then go to the same resolved location. A path with a directory
// component (relative or absolute) is read and written literally, for
// operators who configure an explicit location.
func LoadJSONMapStorage(path string, border typedef.Rect) (*JSONMapStorage, error) {
	resolvedPath := path
	var raw []byte
	var err error
	if filepath.Base(path) == path {
		resolvedPath = DataFile(path)
		raw, err = ReadDataFile(path)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, typedef.WrapRouteError(typedef.ErrStorageInconsistency, "read map file", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var doc mapDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, typedef.WrapRouteError(typedef.ErrStorageInconsistency, "decode map json", err)
	}

	version := currentMapVersion
	if doc.Version != nil {
		version = *doc.Version
	}
	if !arrutil.Contains(supportedMapVersions, version) {
		return nil, typedef.NewRouteError(typedef.ErrStorageInconsistency, "unsupported map version")
	}

	m, err := worldmap.NewFromDocument(border, worldmap.Document{
		Locations:   doc.Locations,
		Connections: doc.Connections,
	})
	if err != nil {
		return nil, typedef.WrapRouteError(typedef.ErrStorageInconsistency, "build map from document", err)
	}

	return &JSONMapStorage{Map: m, path: resolvedPath}, nil
}

// NewJSONMapStorage wraps an already-built Map for saving to path (used by
// the editor collaborator when creating a brand-new map).
func NewJSONMapStorage(m *worldmap.Map, path string) *JSONMapStorage {
	return &JSONMapStorage{Map: m, path: path}
}

// Save serializes the current Map contents to s.path, write-to-temp-then-
// rename (spec §5).
func (s *JSONMapStorage) Save() error {
	version := currentMapVersion
	doc := s.Map.ToDocument()
	payload, err := json.Marshal(mapDocument{
		Version:     &version,
		Locations:   doc.Locations,
		Connections: doc.Connections,
	})
	if err != nil {
		return typedef.WrapRouteError(typedef.ErrStorageInconsistency, "encode map json", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return typedef.WrapRouteError(typedef.ErrStorageInconsistency, "create map directory", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return typedef.WrapRouteError(typedef.ErrStorageInconsistency, "create temp map file", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return typedef.WrapRouteError(typedef.ErrStorageInconsistency, "write temp map file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return typedef.WrapRouteError(typedef.ErrStorageInconsistency, "close temp map file", err)
	}
	return os.Rename(tmpPath, s.path)
}
