package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"MatchLens/game"
	"MatchLens/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL + "/", HeaderTimeout: 0})
	require.NoError(t, err)
	return c
}

func TestInitializeSession(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/session", r.URL.Path)
		_, _ = w.Write([]byte(`{"connected":true,"region":"eu"}`))
	}))

	s, err := c.InitializeSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session.Session{Connected: true, Region: "eu"}, s)
}

func TestInitializeSessionRefused(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"connected":false,"region":"eu","message":"client not running"}`))
	}))

	s, err := c.InitializeSession(context.Background())
	assert.ErrorIs(t, err, session.ErrProviderUnreachable)
	assert.Contains(t, err.Error(), "client not running")
	assert.False(t, s.Connected)
}

func TestTransportErrorIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: url})
	require.NoError(t, err)

	_, err = c.InitializeSession(context.Background())
	assert.ErrorIs(t, err, session.ErrProviderUnreachable)
	_, err = c.FetchMatchState(context.Background())
	assert.ErrorIs(t, err, session.ErrProviderUnreachable)
}

func TestServerErrorIsUnreachable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "lockfile missing", http.StatusServiceUnavailable)
	}))

	_, err := c.FetchMatchState(context.Background())
	assert.ErrorIs(t, err, session.ErrProviderUnreachable)
	assert.Contains(t, err.Error(), "lockfile missing")
}

func TestFetchMatchStateDecodesPregame(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/state", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"state": "pregame",
			"match_id": "m-1",
			"map_name": "Ascent",
			"mode_name": "Competitive",
			"side": "Attack",
			"allies": [{"puuid":"a","name":"Me","agent":"Sova","locked":true,"is_me":true,"rank_tier":21,"level":120}],
			"enemies": []
		}`))
	}))

	st, err := c.FetchMatchState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, game.KindPregame, st.Kind)
	assert.Equal(t, "Ascent", st.Map)
	require.Len(t, st.Allies, 1)
	assert.True(t, st.Allies[0].IsMe)
	assert.Equal(t, 21, st.Allies[0].RankTier)
}

func TestFetchMatchStateRejectsUnknownKind(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"state":"spectating"}`))
	}))

	_, err := c.FetchMatchState(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrProviderUnreachable)
}

func TestSetAutoLockAgent(t *testing.T) {
	var bodies []map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/autolock", r.URL.Path)
		var b map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&b))
		bodies = append(bodies, b)
		w.WriteHeader(http.StatusNoContent)
	}))

	agent := "Jett"
	require.NoError(t, c.SetAutoLockAgent(context.Background(), &agent))
	require.NoError(t, c.SetAutoLockAgent(context.Background(), nil))

	require.Len(t, bodies, 2)
	assert.Equal(t, "Jett", bodies[0]["agent"])
	v, ok := bodies[1]["agent"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestHTTP2OverTLS(t *testing.T) {
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, 2, r.ProtoMajor)
		_, _ = w.Write([]byte(`{"state":"idle"}`))
	}))
	srv.EnableHTTP2 = true
	srv.StartTLS()
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL, InsecureTLS: true})
	require.NoError(t, err)

	st, err := c.FetchMatchState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, game.KindIdle, st.Kind)
}
