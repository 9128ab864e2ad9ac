// Package backend builds the record store the web server runs on.
package backend

import (
	"context"
	"errors"
	"fmt"

	"homefin/internal/config"
	"homefin/internal/ports"
	"homefin/internal/services"
)

// Backend is the store the HTTP handlers use. Writes through it are
// published for mirroring and fire change hooks.
type Backend interface {
	ports.Store
	Ping(ctx context.Context) error
}

// Type names a storage engine.
type Type string

const (
	SQLite Type = config.BackendSQLite
	Memory Type = config.BackendMemory
)

func (t Type) valid() bool { return t == SQLite || t == Memory }

// Config selects and parameterises a backend.
type Config struct {
	Type         Type
	SQLiteDBPath string
	// DemoData loads the seed set into a memory backend.
	DemoData bool

	// Publishing is enabled when AMQPURL is set.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func FromAppConfig(c *config.Config) (Config, error) {
	if c == nil {
		return Config{}, errors.New("backend: nil app config")
	}
	bc := Config{
		Type:         Type(c.DataBackend),
		SQLiteDBPath: c.SQLiteDBPath,
		DemoData:     c.DemoData,
		AMQPURL:      c.AMQPURL,
		AMQPExchange: c.AMQPExchange,
		AMQPQueue:    c.AMQPQueue,
	}
	return bc, bc.Validate()
}

func (c Config) Validate() error {
	switch {
	case !c.Type.valid():
		return fmt.Errorf("backend: unknown type %q", c.Type)
	case c.Type == SQLite && c.SQLiteDBPath == "":
		return errors.New("backend: sqlite needs a database path")
	}
	return nil
}

// Result is a ready backend. Records is the write service behind Backend,
// exposed so callers can subscribe to changes. Cleanup closes the publisher.
type Result struct {
	Backend Backend
	Records *services.RecordService
	Cleanup func() error
}
