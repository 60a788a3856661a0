package overfast

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"git.home.luguber.info/inful/overfastsite/internal/foundation"
	ferrors "git.home.luguber.info/inful/overfastsite/internal/foundation/errors"
	"git.home.luguber.info/inful/overfastsite/internal/logfields"
)

// Endpoints fetched at generation time.
const (
	EndpointHeroes    = "heroes"
	EndpointRoles     = "roles"
	EndpointGamemodes = "gamemodes"
	EndpointMaps      = "maps"
)

// Endpoints lists the collections in page order.
var Endpoints = []string{EndpointHeroes, EndpointRoles, EndpointGamemodes, EndpointMaps}

// Collections holds the outcome of every generation-time fetch.
type Collections struct {
	Heroes    foundation.Result[[]Hero, error]
	Roles     foundation.Result[[]Role, error]
	Gamemodes foundation.Result[[]Gamemode, error]
	Maps      foundation.Result[[]Map, error]
}

// Failures returns the failure reason per endpoint; empty when all succeeded.
func (c Collections) Failures() map[string]error {
	out := make(map[string]error)
	add := func(endpoint string, failed bool, err func() error) {
		if failed {
			out[endpoint] = err()
		}
	}
	add(EndpointHeroes, c.Heroes.IsErr(), c.Heroes.UnwrapErr)
	add(EndpointRoles, c.Roles.IsErr(), c.Roles.UnwrapErr)
	add(EndpointGamemodes, c.Gamemodes.IsErr(), c.Gamemodes.UnwrapErr)
	add(EndpointMaps, c.Maps.IsErr(), c.Maps.UnwrapErr)
	return out
}

// Heroes fetches GET /heroes.
func (c *Client) Heroes(ctx context.Context) foundation.Result[[]Hero, error] {
	return fetchList[Hero](ctx, c, EndpointHeroes)
}

// Roles fetches GET /roles.
func (c *Client) Roles(ctx context.Context) foundation.Result[[]Role, error] {
	return fetchList[Role](ctx, c, EndpointRoles)
}

// Gamemodes fetches GET /gamemodes.
func (c *Client) Gamemodes(ctx context.Context) foundation.Result[[]Gamemode, error] {
	return fetchList[Gamemode](ctx, c, EndpointGamemodes)
}

// Maps fetches GET /maps.
func (c *Client) Maps(ctx context.Context) foundation.Result[[]Map, error] {
	return fetchList[Map](ctx, c, EndpointMaps)
}

// FetchAll fetches the four collections concurrently and returns once every
// request has settled. Individual failures are carried in the results.
func (c *Client) FetchAll(ctx context.Context) Collections {
	var (
		out Collections
		wg  sync.WaitGroup
	)
	wg.Add(4)
	go func() { defer wg.Done(); out.Heroes = c.Heroes(ctx) }()
	go func() { defer wg.Done(); out.Roles = c.Roles(ctx) }()
	go func() { defer wg.Done(); out.Gamemodes = c.Gamemodes(ctx) }()
	go func() { defer wg.Done(); out.Maps = c.Maps(ctx) }()
	wg.Wait()
	return out
}

func fetchList[T any](ctx context.Context, c *Client, endpoint string) foundation.Result[[]T, error] {
	start := time.Now()
	result := foundation.FlatMap(c.Fetch(ctx, endpoint), func(raw json.RawMessage) foundation.Result[[]T, error] {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			decodeErr := ferrors.UpstreamError(fmt.Sprintf("decode %s", endpoint)).
				WithCause(err).
				WithContext("endpoint", endpoint).
				Build()
			c.logger.Error("Error decoding endpoint",
				logfields.Endpoint(endpoint),
				logfields.Error(decodeErr))
			return foundation.Err[[]T, error](decodeErr)
		}
		return foundation.Ok[[]T, error](items)
	})

	elapsed := time.Since(start)
	c.recorder.ObserveFetchDuration(endpoint, elapsed, result.IsOk())
	c.recorder.IncFetchResult(endpoint, result.IsOk())
	if result.IsOk() {
		c.logger.Debug("Fetched endpoint",
			logfields.Endpoint(endpoint),
			logfields.Count(len(result.Unwrap())),
			logfields.Duration(elapsed))
	}
	return result
}
