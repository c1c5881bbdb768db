package kv

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestOpen(t *testing.T) {
	t.Run("connects and pings", func(t *testing.T) {
		mr := miniredis.RunT(t)

		client, err := Open(Options{Addr: mr.Addr()}, nil)
		require.NoError(t, err)
		require.NotNil(t, client)
		defer client.Close()

		require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
		val, err := client.Get(context.Background(), "k").Result()
		require.NoError(t, err)
		assert.Equal(t, "v", val)
	})

	t.Run("fails when nothing is listening", func(t *testing.T) {
		client, err := Open(Options{Addr: "localhost:1"}, nil)
		assert.Error(t, err)
		assert.Nil(t, client)
	})

	t.Run("accepts a logger", func(t *testing.T) {
		mr := miniredis.RunT(t)

		client, err := Open(Options{Addr: mr.Addr()}, zaptest.NewLogger(t).Sugar())
		require.NoError(t, err)
		defer client.Close()
	})
}
