package events

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	size   atomic.Int32
	purged atomic.Int32
}

func (c *countingStore) Len() int { return int(c.size.Load()) }

func (c *countingStore) Purge() {
	c.size.Store(0)
	c.purged.Add(1)
}

// startNATSServer runs an in-process broker on a random port for the test.
func startNATSServer(t *testing.T) *server.Server {
	t.Helper()

	s, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: -1, NoLog: true, NoSigs: true})
	require.NoError(t, err)
	go s.Start()
	require.True(t, s.ReadyForConnections(4*time.Second), "nats server did not start")
	t.Cleanup(s.Shutdown)
	return s
}

func TestInvalidator_PurgesOnDBUpdate(t *testing.T) {
	url := startNATSServer(t).ClientURL()

	nc, err := Connect(slog.Default(), url)
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	store := &countingStore{}
	store.size.Store(3)
	inv := NewInvalidator(slog.Default(), store, nc)
	require.NoError(t, inv.Start(context.Background()))
	t.Cleanup(inv.Stop)

	pub, err := nats.Connect(url)
	require.NoError(t, err)
	t.Cleanup(pub.Close)

	require.NoError(t, pub.Publish(SubjectDBUpdated, []byte("{}")))
	require.NoError(t, pub.FlushTimeout(2*time.Second))

	require.Eventually(t, func() bool {
		return store.purged.Load() == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, store.Len())
}

func TestInvalidator_StopEndsSubscription(t *testing.T) {
	url := startNATSServer(t).ClientURL()

	nc, err := Connect(slog.Default(), url)
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	store := &countingStore{}
	inv := NewInvalidator(slog.Default(), store, nc)
	require.NoError(t, inv.Start(context.Background()))
	inv.Stop()

	require.NoError(t, nc.Publish(SubjectDBUpdated, nil))
	require.NoError(t, nc.Flush())
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, store.purged.Load())
}

func TestInvalidator_NilDependency(t *testing.T) {
	inv := NewInvalidator(slog.Default(), nil, nil)
	require.Error(t, inv.Start(context.Background()))
	inv.Stop()
}

func TestConnect_Unreachable(t *testing.T) {
	s := startNATSServer(t)
	url := s.ClientURL()
	s.Shutdown()

	_, err := Connect(slog.Default(), url)
	require.Error(t, err)
}
