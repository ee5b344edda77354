package grpc_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	daemon "github.com/andrescamacho/colonybot-go/internal/adapters/grpc"
)

func TestDaemonServer_HealthCheckFollowsServingState(t *testing.T) {
	dir, err := os.MkdirTemp("", "cb")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	socket := filepath.Join(dir, "d.sock")

	server, err := daemon.NewDaemonServer(socket)
	require.NoError(t, err)
	server.Start()
	t.Cleanup(server.Stop)

	info, err := os.Stat(socket)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	client, err := daemon.NewHealthClient(socket)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := client.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, "NOT_SERVING", status)

	server.SetServing(true)
	status, err = client.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SERVING", status)
}

func TestHealthClient_NoDaemon(t *testing.T) {
	client, err := daemon.NewHealthClient(filepath.Join(t.TempDir(), "missing.sock"))
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = client.Check(ctx)
	assert.Error(t, err)
}
