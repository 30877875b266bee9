package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/eventgraph/internal/logging"
	"github.com/dmitrijs2005/eventgraph/internal/server/config"
	"github.com/dmitrijs2005/eventgraph/internal/server/models"
	"github.com/dmitrijs2005/eventgraph/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/eventgraph/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:             "k",
		TokenValidityDuration: time.Hour,
		BcryptCost:            bcrypt.MinCost,
		DefaultPageSize:       10,
		MaxPageSize:           100,
	}
}

// tickingClock advances by one second on every call.
func tickingClock(start time.Time) Clock {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Second)
		return cur
	}
}

type fixture struct {
	repos    *repomanager.MemoryRepositoryManager
	users    *UserService
	events   *EventService
	comments *CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := repomanager.NewMemoryRepositoryManager()
	cfg := testConfig()
	clock := tickingClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	return &fixture{
		repos:    repos,
		users:    NewUserService(repos, cfg, logging.Nop{}).WithClock(clock),
		events:   NewEventService(repos, cfg, logging.Nop{}).WithClock(clock),
		comments: NewCommentService(repos, logging.Nop{}).WithClock(clock),
	}
}

func (f *fixture) register(t *testing.T, name, email string) *AuthPayload {
	t.Helper()
	p, err := f.users.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "pw1234", ConfirmPassword: "pw1234"})
	if err != nil {
		t.Fatalf("Register(%s) error: %v", email, err)
	}
	return p
}

// brokenUsers fails every call with a driver-level error.
type brokenUsers struct{ users.Repository }

var errDriver = errors.New("connection reset")

func (brokenUsers) Create(context.Context, *models.User) (*models.User, error) { return nil, errDriver }
func (brokenUsers) GetByEmail(context.Context, string) (*models.User, error)   { return nil, errDriver }
func (brokenUsers) GetByID(context.Context, string) (*models.User, error)      { return nil, errDriver }

type brokenManager struct {
	*repomanager.MemoryRepositoryManager
}

func (brokenManager) Users() users.Repository { return brokenUsers{} }
