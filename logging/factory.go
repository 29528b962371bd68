package logging

import (
	"fmt"

	"transitcore/typedef"
)

// Kind selects a Logger implementation at construction time (spec §9's
// "provider" design note: logger_type/logger_config in the persisted
// configuration, spec §6).
type Kind string

const (
	KindStd    Kind = "std"
	KindSQLite Kind = "sqlite"
)

// Config is the logger_config shape read alongside logger_type.
type Config struct {
	Kind Kind
	// Path is the sqlite database path; only used when Kind == KindSQLite.
	Path string
}

// New constructs a typedef.Logger from cfg.
func New(cfg Config) (typedef.Logger, error) {
	switch cfg.Kind {
	case KindStd, "":
		return NewStdLogger(nil), nil
	case KindSQLite:
		return NewSQLiteLogger(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown logger kind %q", cfg.Kind)
	}
}
