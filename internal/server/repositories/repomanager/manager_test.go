package repomanager

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineFor(t *testing.T) {
	tests := []struct {
		dsn     string
		want    string
		wantErr bool
	}{
		{dsn: "postgres://u:p@localhost:5432/db?sslmode=disable", want: EnginePostgres},
		{dsn: "postgresql://localhost/db", want: EnginePostgres},
		{dsn: "mongodb://localhost:27017/eventgraph", want: EngineMongo},
		{dsn: "mongodb+srv://cluster.example.net/db", want: EngineMongo},
		{dsn: "memory://", want: EngineMemory},
		{dsn: "mysql://localhost/db", wantErr: true},
		{dsn: "host=localhost dbname=db", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			got, err := EngineFor(tt.dsn)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnsupportedDSN), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_Memory(t *testing.T) {
	ctx := context.Background()

	m, err := New(ctx, "memory://")
	require.NoError(t, err)
	assert.Equal(t, EngineMemory, m.Engine())
	assert.NoError(t, m.RunMigrations(ctx))
	assert.NoError(t, m.Ping(ctx))
	assert.NotNil(t, m.Users())
	assert.NotNil(t, m.Events())
	assert.NotNil(t, m.Comments())
	assert.NoError(t, m.Close(ctx))
}

func TestNew_Unsupported(t *testing.T) {
	_, err := New(context.Background(), "sqlite://file.db")
	assert.ErrorIs(t, err, ErrUnsupportedDSN)
}
