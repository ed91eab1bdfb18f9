package hub

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clognichain/clogni/internal/payload"
)

func TestRegisterAndCall(t *testing.T) {
	h := New()
	h.Register("echo", func(_ context.Context, args payload.Object) (payload.Value, error) {
		return payload.Object{"echo": args["msg"]}, nil
	})

	res, err := h.Call(context.Background(), "echo", payload.Object{"msg": payload.String("hi")})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, payload.Object{"echo": payload.String("hi")}, res.Value)
}

func TestCallUnknownFunction(t *testing.T) {
	h := New()

	_, err := h.Call(context.Background(), "missing", payload.Object{})
	require.Error(t, err)

	var unknown *UnknownFunctionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "missing", unknown.Name)
}

func TestCallPropagatesFunctionError(t *testing.T) {
	h := New()
	boom := errors.New("boom")
	h.Register("fail", func(context.Context, payload.Object) (payload.Value, error) {
		return nil, boom
	})

	_, err := h.Call(context.Background(), "fail", payload.Object{})
	assert.ErrorIs(t, err, boom)
}

func TestCallIDsAreUnique(t *testing.T) {
	h := New()
	h.Register("ping", func(context.Context, payload.Object) (payload.Value, error) {
		return payload.String("pong"), nil
	})

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		res, err := h.Call(context.Background(), "ping", payload.Object{})
		require.NoError(t, err)
		assert.False(t, seen[res.ID], "duplicate call ID %s", res.ID)
		seen[res.ID] = true
	}
}

func TestRegisterReplacesBinding(t *testing.T) {
	h := New()
	h.Register("fn", func(context.Context, payload.Object) (payload.Value, error) {
		return payload.Int(1), nil
	})
	h.Register("fn", func(context.Context, payload.Object) (payload.Value, error) {
		return payload.Int(2), nil
	})

	res, err := h.Call(context.Background(), "fn", payload.Object{})
	require.NoError(t, err)
	assert.Equal(t, payload.Int(2), res.Value)
}

func TestListSorted(t *testing.T) {
	h := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		h.Register(name, func(context.Context, payload.Object) (payload.Value, error) {
			return payload.Null{}, nil
		})
	}

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, h.List())
}

func TestConcurrentRegisterAndCall(t *testing.T) {
	h := New()
	h.Register("ping", func(context.Context, payload.Object) (payload.Value, error) {
		return payload.String("pong"), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := h.Call(context.Background(), "ping", payload.Object{}); err != nil {
					t.Errorf("Call() failed: %v", err)
					return
				}
				h.Register("ping", func(context.Context, payload.Object) (payload.Value, error) {
					return payload.String("pong"), nil
				})
			}
		}()
	}
	wg.Wait()
}
