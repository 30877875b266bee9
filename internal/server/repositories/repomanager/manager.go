// Package repomanager opens the configured storage engine and vends the
// repositories backed by it. The engine is chosen by the DSN scheme:
// postgres:// or postgresql:// for PostgreSQL, mongodb:// or mongodb+srv://
// for MongoDB, and memory:// for a process-local store.
package repomanager

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/eventgraph/internal/server/repositories/comments"
	"github.com/dmitrijs2005/eventgraph/internal/server/repositories/events"
	"github.com/dmitrijs2005/eventgraph/internal/server/repositories/users"
)

// Engine names reported by RepositoryManager.Engine.
const (
	EnginePostgres = "postgres"
	EngineMongo    = "mongodb"
	EngineMemory   = "memory"
)

// ErrUnsupportedDSN is returned for a DSN whose scheme maps to no engine.
var ErrUnsupportedDSN = errors.New("unsupported database dsn")

type RepositoryManager interface {
	Users() users.Repository
	Events() events.Repository
	Comments() comments.Repository
	// RunMigrations brings the schema (tables or indexes) up to date.
	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	Engine() string
}

// EngineFor maps a DSN to an engine name.
func EngineFor(dsn string) (string, error) {
	scheme, _, found := strings.Cut(dsn, "://")
	if !found {
		return "", fmt.Errorf("%w: missing scheme", ErrUnsupportedDSN)
	}
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return EnginePostgres, nil
	case "mongodb", "mongodb+srv":
		return EngineMongo, nil
	case "memory":
		return EngineMemory, nil
	default:
		return "", fmt.Errorf("%w: scheme %q", ErrUnsupportedDSN, scheme)
	}
}

// New connects to the engine named by dsn and verifies the connection.
func New(ctx context.Context, dsn string) (RepositoryManager, error) {
	engine, err := EngineFor(dsn)
	if err != nil {
		return nil, err
	}

	switch engine {
	case EnginePostgres:
		return OpenPostgres(ctx, dsn)
	case EngineMongo:
		return OpenMongo(ctx, dsn)
	default:
		return NewMemoryRepositoryManager(), nil
	}
}
