package overfast_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/overfastsite/internal/foundation/errors"
	"git.home.luguber.info/inful/overfastsite/internal/overfast"
	"git.home.luguber.info/inful/overfastsite/internal/overfast/overfasttest"
)

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestFetch_ReturnsRawBody(t *testing.T) {
	api := overfasttest.NewServer(t)
	client := overfast.NewClient(api.URL)

	result := client.Fetch(t.Context(), overfast.EndpointRoles)
	require.True(t, result.IsOk())

	var roles []overfast.Role
	require.NoError(t, json.Unmarshal(result.Unwrap(), &roles))
	require.Equal(t, overfasttest.SampleRoles, roles)
	require.Equal(t, 1, api.Hits(overfast.EndpointRoles))
}

func TestFetch_SendsUserAgentAndAccept(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	result := overfast.NewClient(server.URL).Fetch(t.Context(), "heroes")
	require.True(t, result.IsOk())
	require.Equal(t, "application/json", got.Get("Accept"))
	require.Contains(t, got.Get("User-Agent"), "overfastsite/")
}

func TestFetch_Non2xxIsLoggedAndErr(t *testing.T) {
	api := overfasttest.NewServer(t)
	api.Fail(overfast.EndpointHeroes, http.StatusInternalServerError)

	var logs bytes.Buffer
	client := overfast.NewClient(api.URL, overfast.WithLogger(newLogger(&logs)))

	result := client.Fetch(t.Context(), overfast.EndpointHeroes)
	require.True(t, result.IsErr())
	require.True(t, ferrors.HasCategory(result.UnwrapErr(), ferrors.CategoryNetwork))
	require.Contains(t, result.UnwrapErr().Error(), "HTTP 500")
	require.Contains(t, logs.String(), "endpoint=heroes")
	require.Contains(t, logs.String(), "status=500")
}

func TestFetch_UnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	var logs bytes.Buffer
	client := overfast.NewClient(url, overfast.WithLogger(newLogger(&logs)), overfast.WithTimeout(2*time.Second))

	result := client.Fetch(t.Context(), overfast.EndpointMaps)
	require.True(t, result.IsErr())
	require.Contains(t, logs.String(), "endpoint=maps")
}

func TestClient_URLJoinsWithoutDoubleSlash(t *testing.T) {
	client := overfast.NewClient("https://overfast-api.tekrop.fr/")
	require.Equal(t, "https://overfast-api.tekrop.fr", client.BaseURL())
	require.Equal(t, "https://overfast-api.tekrop.fr/heroes/ana", client.URL("/heroes/ana"))
}

func TestTypedFetch_DecodeFailureIsUpstreamErr(t *testing.T) {
	api := overfasttest.NewServer(t)
	api.SetRaw(overfast.EndpointGamemodes, `{"not":"a list"}`)

	var logs bytes.Buffer
	client := overfast.NewClient(api.URL, overfast.WithLogger(newLogger(&logs)))

	result := client.Gamemodes(t.Context())
	require.True(t, result.IsErr())
	require.True(t, ferrors.HasCategory(result.UnwrapErr(), ferrors.CategoryUpstream))
	require.Contains(t, logs.String(), "endpoint=gamemodes")
}

func TestFetchAll_SettlesEveryEndpoint(t *testing.T) {
	api := overfasttest.NewServer(t)
	api.Fail(overfast.EndpointMaps, http.StatusServiceUnavailable)

	client := overfast.NewClient(api.URL, overfast.WithLogger(newLogger(&bytes.Buffer{})))
	all := client.FetchAll(t.Context())

	require.Equal(t, overfasttest.SampleHeroes, all.Heroes.Unwrap())
	require.Equal(t, overfasttest.SampleRoles, all.Roles.Unwrap())
	require.Equal(t, overfasttest.SampleGamemodes, all.Gamemodes.Unwrap())
	require.True(t, all.Maps.IsErr())

	failures := all.Failures()
	require.Len(t, failures, 1)
	require.Contains(t, failures, overfast.EndpointMaps)

	for _, endpoint := range overfast.Endpoints {
		require.Equal(t, 1, api.Hits(endpoint), endpoint)
	}
}
