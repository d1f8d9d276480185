// SPDX-License-Identifier: MIT
package gatewaytest_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/dashboard/internal/gateway"
	"github.com/ManuGH/dashboard/internal/gateway/gatewaytest"
)

const token = "gw-token"

func newClient(url, tok string) *gateway.Client {
	return gateway.New(gateway.Config{
		URL:        url,
		Credential: gateway.Credential{ClientName: "dashboard-test", Token: tok},
	}, gateway.WithLogger(zerolog.Nop()))
}

func TestClientAgainstMockServer_CronList(t *testing.T) {
	srv := gatewaytest.NewMockServer(token)
	defer srv.Close()

	raw, err := newClient(srv.URL(), token).Call(context.Background(), "cron.list", map[string]any{"all": true}, 5*time.Second)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jobs":[{"id":"j1","name":"daily-report"}]}`, string(raw))

	received := srv.Received()
	require.Len(t, received, 2)
	assert.Equal(t, gateway.MethodConnect, received[0].Method)
	assert.Equal(t, "cron.list", received[1].Method)
	assert.JSONEq(t, `{"all":true}`, string(received[1].Params))

	var connect gateway.ConnectParams
	require.NoError(t, json.Unmarshal(received[0].Params, &connect))
	assert.Equal(t, gateway.ConnectParams{ClientType: "api", Token: token, Name: "dashboard-test"}, connect)
}

func TestClientAgainstMockServer_WrongToken(t *testing.T) {
	srv := gatewaytest.NewMockServer(token)
	defer srv.Close()

	_, err := newClient(srv.URL(), "nope").Call(context.Background(), "cron.list", nil, 5*time.Second)
	require.ErrorIs(t, err, gateway.ErrAuthentication)

	var ce *gateway.CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "INVALID_TOKEN", ce.Code)
	assert.Len(t, srv.Received(), 1)
}

func TestClientAgainstMockServer_DropAfterChallenge(t *testing.T) {
	srv := gatewaytest.NewMockServer(token)
	defer srv.Close()
	srv.DropAfterChallenge()

	_, err := newClient(srv.URL(), token).Call(context.Background(), "cron.list", nil, 5*time.Second)
	require.ErrorIs(t, err, gateway.ErrAuthentication)
	assert.NotErrorIs(t, err, gateway.ErrTimeout)
}

func TestClientAgainstMockServer_Timeouts(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*gatewaytest.MockServer)
		phase gateway.State
	}{
		{name: "no challenge", setup: func(s *gatewaytest.MockServer) { s.SkipChallenge() }, phase: gateway.StateAuthenticating},
		{name: "silent method", setup: func(s *gatewaytest.MockServer) { s.SetSilent("cron.list") }, phase: gateway.StateReady},
		{name: "slow method", setup: func(s *gatewaytest.MockServer) { s.SetDelay("cron.list", 2*time.Second) }, phase: gateway.StateReady},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := gatewaytest.NewMockServer(token)
			defer srv.Close()
			tt.setup(srv)

			start := time.Now()
			_, err := newClient(srv.URL(), token).Call(context.Background(), "cron.list", nil, 200*time.Millisecond)
			require.ErrorIs(t, err, gateway.ErrTimeout)
			assert.Less(t, time.Since(start), 2*time.Second)

			var ce *gateway.CallError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.phase, ce.Phase)
		})
	}
}

func TestClientAgainstMockServer_UpstreamError(t *testing.T) {
	srv := gatewaytest.NewMockServer(token)
	defer srv.Close()
	srv.Handle("cron.list", func(json.RawMessage) (any, *gatewaytest.Error) {
		return nil, &gatewaytest.Error{Code: "SCHEDULER_DOWN", Message: "scheduler unavailable"}
	})

	_, err := newClient(srv.URL(), token).Call(context.Background(), "cron.list", nil, 5*time.Second)
	require.ErrorIs(t, err, gateway.ErrUpstream)
	var ce *gateway.CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "SCHEDULER_DOWN", ce.Code)
}

func TestClientAgainstMockServer_UnknownMethod(t *testing.T) {
	srv := gatewaytest.NewMockServer(token)
	defer srv.Close()

	_, err := newClient(srv.URL(), token).Call(context.Background(), "does.not.exist", nil, 5*time.Second)
	require.ErrorIs(t, err, gateway.ErrUpstream)
}

func TestClientAgainstMockServer_JunkBeforeChallenge(t *testing.T) {
	srv := gatewaytest.NewMockServer(token)
	defer srv.Close()
	srv.SetPreamble(`garbage`, `{"type":"tick"}`, `{"type":"event","event":"presence"}`)

	list, err := newClient(srv.URL(), token).ListCronJobs(context.Background(), 5*time.Second)
	require.NoError(t, err)
	require.Len(t, list.Jobs, 1)
	assert.Equal(t, "daily-report", list.Jobs[0].Name)
}

func TestClientAgainstMockServer_Unreachable(t *testing.T) {
	srv := gatewaytest.NewMockServer(token)
	url := srv.URL()
	srv.Close()

	_, err := newClient(url, token).Call(context.Background(), "cron.list", nil, 5*time.Second)
	require.ErrorIs(t, err, gateway.ErrTransport)
}

func TestClientAgainstMockServer_ConcurrentCallsOwnConnections(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := gatewaytest.NewMockServer(token)
	defer srv.Close()
	client := newClient(srv.URL(), token)

	const calls = 5
	var wg sync.WaitGroup
	errs := make(chan error, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Call(context.Background(), "cron.list", map[string]any{"all": true}, 5*time.Second)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(calls), srv.Connections())
}
