// Package routestest serves handlers from the routes subpackages against an in-memory replica.
package routestest

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/pkg/middleware"
	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/mutations"
	"github.com/Ramsey-B/kitchin/pkg/replica"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// Logger discards everything.
var Logger = ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

// Registrar is any handler that mounts its routes on a group.
type Registrar interface {
	Register(g *echo.Group)
}

type API struct {
	Echo     *echo.Echo
	Store    *replica.Store
	Backend  *replica.MemoryBackend
	Contract *mutations.Contract
}

// New builds an API over a fresh in-memory backend seeded with catalog. Handlers are built by
// mount once the store and contract exist.
func New(t *testing.T, mount func(api *API) []Registrar, catalog ...models.CommonGroceryItem) *API {
	t.Helper()

	backend := replica.NewMemoryBackend(catalog...)
	store := replica.NewStore(backend, Logger, replica.DefaultConfig())
	t.Cleanup(store.Close)

	api := &API{
		Echo:     echo.New(),
		Store:    store,
		Backend:  backend,
		Contract: mutations.NewContract(store, Logger),
	}
	api.Echo.HTTPErrorHandler = middleware.Error(Logger)
	api.Echo.Use(middleware.Context())

	g := api.Echo.Group("/api/v1")
	for _, r := range mount(api) {
		r.Register(g)
	}
	return api
}

// Do sends body as JSON to /api/v1+path.
func (a *API) Do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload string
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		payload = string(data)
	}

	req := httptest.NewRequest(method, "/api/v1"+path, strings.NewReader(payload))
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func Decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
