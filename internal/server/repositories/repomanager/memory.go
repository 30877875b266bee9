package repomanager

import (
	"context"

	"github.com/dmitrijs2005/eventgraph/internal/server/repositories/comments"
	"github.com/dmitrijs2005/eventgraph/internal/server/repositories/events"
	"github.com/dmitrijs2005/eventgraph/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory; data is lost
// on restart. Used by tests and memory:// DSNs.
type MemoryRepositoryManager struct {
	users    *users.MemoryRepository
	events   *events.MemoryRepository
	comments *comments.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:    users.NewMemoryRepository(),
		events:   events.NewMemoryRepository(),
		comments: comments.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Users() users.Repository       { return m.users }
func (m *MemoryRepositoryManager) Events() events.Repository     { return m.events }
func (m *MemoryRepositoryManager) Comments() comments.Repository { return m.comments }
func (m *MemoryRepositoryManager) Engine() string                { return EngineMemory }

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }
func (m *MemoryRepositoryManager) Ping(context.Context) error          { return nil }
func (m *MemoryRepositoryManager) Close(context.Context) error         { return nil }
