package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskglitch/internal/shared/infrastructure/database"
)

func TestOpen_RequiresURL(t *testing.T) {
	_, err := Open(context.Background(), database.Config{})
	assert.ErrorIs(t, err, ErrURLRequired)
}

func TestOpen_InvalidURL(t *testing.T) {
	_, err := Open(context.Background(), database.Config{URL: "postgres://%zz"})
	assert.Error(t, err)
}

func TestOpen_Integration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	conn, err := database.NewConnection(ctx, database.Config{URL: url, MaxConns: 2})
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, database.DriverPostgres, conn.Driver())
	assert.NoError(t, conn.Ping(ctx))

	var one int
	require.NoError(t, conn.QueryRow(ctx, "SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}
