package worldmap

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pierrec/lz4"
)

// Snapshot captures the Map's current contents as an lz4-compressed JSON
// blob, for the editor collaborator to stash before a batch of mutations
// and hand back to RestoreSnapshot if the batch needs to be undone. Adapted
// from the teacher's compressLZ4 helper (eruntime/state_manager.go), which
// compressed whole-game-state snapshots for the same purpose.
func (m *Map) Snapshot() ([]byte, error) {
	raw, err := json.Marshal(m.ToDocument())
	if err != nil {
		return nil, err
	}
	return compressLZ4(raw)
}

// RestoreSnapshot replaces the Map's contents with a blob produced by
// Snapshot.
func (m *Map) RestoreSnapshot(blob []byte) error {
	raw, err := decompressLZ4(blob)
	if err != nil {
		return err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return m.ReplaceFrom(doc)
}

func compressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := lz4.NewWriter(&buf)
	writer.CompressionLevel = 4
	writer.WithConcurrency(-1)

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressLZ4(data []byte) ([]byte, error) {
	reader := lz4.NewReader(bytes.NewReader(data))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
