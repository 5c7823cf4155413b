package dial

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventually(t *testing.T) {
	t.Run("connects to listening port", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()

		conn, err := Eventually(context.Background(), TCP(ln.Addr().String()), time.Second, 0)

		require.NoError(t, err)
		require.NotNil(t, conn)
		conn.Close()
	})

	t.Run("retries until dial succeeds", func(t *testing.T) {
		attempts := 0
		client, server := net.Pipe()
		defer server.Close()

		conn, err := Eventually(context.Background(), func(context.Context) (net.Conn, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("connection refused")
			}
			return client, nil
		}, time.Second, 10*time.Millisecond)

		require.NoError(t, err)
		assert.Same(t, client, conn)
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives up at the deadline", func(t *testing.T) {
		start := time.Now()

		conn, err := Eventually(context.Background(), func(context.Context) (net.Conn, error) {
			return nil, errors.New("connection refused")
		}, 100*time.Millisecond, 0)

		elapsed := time.Since(start)
		assert.Nil(t, conn)
		assert.ErrorIs(t, err, ErrGaveUp)
		assert.Contains(t, err.Error(), "connection refused")
		assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
		assert.Less(t, elapsed, 500*time.Millisecond)
	})

	t.Run("honors parent cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Eventually(ctx, func(context.Context) (net.Conn, error) {
			t.Fatal("dial should not run")
			return nil, nil
		}, time.Second, 0)

		assert.ErrorIs(t, err, ErrGaveUp)
	})
}
