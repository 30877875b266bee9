package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/eventgraph/internal/common"
	"github.com/dmitrijs2005/eventgraph/internal/logging"
	"github.com/dmitrijs2005/eventgraph/internal/server/auth"
	"github.com/dmitrijs2005/eventgraph/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	f := newFixture(t)

	p := f.register(t, "Alice", "  Alice@X.com ")
	assert.NotEmpty(t, p.Token)
	assert.Equal(t, "alice@x.com", p.User.Email)
	assert.Equal(t, "Alice", p.User.Name)
	assert.NotEqual(t, "pw1234", p.User.PasswordHash)
	assert.True(t, auth.VerifyPassword(p.User.PasswordHash, "pw1234"))

	id, err := auth.GetUserIDFromToken(p.Token, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, p.User.ID, id)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   RegisterInput
		msg  string
	}{
		{"missing name", RegisterInput{Email: "a@x.com", Password: "p", ConfirmPassword: "p"}, "all fields are required"},
		{"blank email", RegisterInput{Name: "A", Email: "  ", Password: "p", ConfirmPassword: "p"}, "all fields are required"},
		{"missing confirmation", RegisterInput{Name: "A", Email: "a@x.com", Password: "p"}, "all fields are required"},
		{"mismatch", RegisterInput{Name: "A", Email: "a@x.com", Password: "p1", ConfirmPassword: "p2"}, "passwords do not match"},
		{"too long", RegisterInput{Name: "A", Email: "a@x.com", Password: strings.Repeat("p", 80), ConfirmPassword: strings.Repeat("p", 80)}, "password is too long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.users.Register(ctx, tt.in)
			assert.ErrorIs(t, err, common.ErrorValidation)
			assert.EqualError(t, err, tt.msg)
		})
	}
}

func TestRegister_PasswordEdges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	longest := strings.Repeat("p", auth.MaxPasswordBytes)
	p, err := f.users.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: longest, ConfirmPassword: longest})
	require.NoError(t, err)
	assert.True(t, auth.VerifyPassword(p.User.PasswordHash, longest))

	// passwords are not trimmed, so whitespace is a valid password
	p, err = f.users.Register(ctx, RegisterInput{Name: "B", Email: "b@x.com", Password: "   ", ConfirmPassword: "   "})
	require.NoError(t, err)
	assert.True(t, auth.VerifyPassword(p.User.PasswordHash, "   "))
}

func TestRegister_DuplicateEmailDifferentCase(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Alice", "alice@x.com")

	_, err := f.users.Register(context.Background(), RegisterInput{Name: "Other", Email: "ALICE@x.com", Password: "pw", ConfirmPassword: "pw"})
	assert.ErrorIs(t, err, common.ErrorConflict)
	assert.EqualError(t, err, "email already registered")
}

func TestRegister_StoreFailureIsInternal(t *testing.T) {
	m := brokenManager{repomanager.NewMemoryRepositoryManager()}
	s := NewUserService(m, testConfig(), logging.Nop{})

	_, err := s.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "p", ConfirmPassword: "p"})
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.register(t, "Alice", "alice@x.com")

	t.Run("success", func(t *testing.T) {
		p, err := f.users.Login(ctx, "ALICE@x.com", "pw1234")
		require.NoError(t, err)
		assert.Equal(t, reg.User.ID, p.User.ID)

		id, err := auth.GetUserIDFromToken(p.Token, []byte("k"))
		require.NoError(t, err)
		u, err := f.users.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, reg.User.ID, u.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.users.Login(ctx, "alice@x.com", "nope")
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
		assert.EqualError(t, err, "invalid password")
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.users.Login(ctx, "bob@x.com", "pw1234")
		assert.ErrorIs(t, err, common.ErrorNotFound)
		assert.EqualError(t, err, "user not found")
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := f.users.Login(ctx, "", "pw")
		assert.ErrorIs(t, err, common.ErrorValidation)
	})

	t.Run("store failure", func(t *testing.T) {
		s := NewUserService(brokenManager{repomanager.NewMemoryRepositoryManager()}, testConfig(), logging.Nop{})
		_, err := s.Login(ctx, "alice@x.com", "pw1234")
		assert.ErrorIs(t, err, common.ErrorInternal)
	})
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.register(t, "Alice", "alice@x.com")

	u := f.users.Authenticate(ctx, reg.Token)
	require.NotNil(t, u)
	assert.Equal(t, reg.User.ID, u.ID)

	assert.Nil(t, f.users.Authenticate(ctx, "garbage"))

	expired, err := auth.GenerateToken(reg.User.ID, []byte("k"), -time.Minute)
	require.NoError(t, err)
	assert.Nil(t, f.users.Authenticate(ctx, expired))

	foreign, err := auth.GenerateToken(reg.User.ID, []byte("other"), time.Hour)
	require.NoError(t, err)
	assert.Nil(t, f.users.Authenticate(ctx, foreign))

	ghost, err := auth.GenerateToken("no-such-user", []byte("k"), time.Hour)
	require.NoError(t, err)
	assert.Nil(t, f.users.Authenticate(ctx, ghost))

	broken := NewUserService(brokenManager{repomanager.NewMemoryRepositoryManager()}, testConfig(), logging.Nop{})
	assert.Nil(t, broken.Authenticate(ctx, reg.Token))
}

func TestUsersList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, n := range []string{"a", "b", "c"} {
		f.register(t, strings.ToUpper(n), n+"@x.com")
	}

	all, err := f.users.List(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := f.users.List(ctx, common.Ptr(1), common.Ptr(2))
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "C", page[0].Name)

	batch, err := f.users.GetByIDs(ctx, []string{all[0].ID, all[2].ID})
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}
