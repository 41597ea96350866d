package sync

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/tracing"
	"github.com/labstack/echo/v4"
)

// Service is the authoritative store replicas push to and pull from.
type Service interface {
	Push(ctx context.Context, mutation models.Mutation) error
	Pull(ctx context.Context) (models.Snapshot, error)
}

type Handler struct {
	service Service
	hub     *Hub
}

// NewHandler builds the sync routes. hub may be nil, which disables /sync/watch.
func NewHandler(service Service, hub *Hub) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
	}
}

func (h *Handler) Register(g *echo.Group) {
	g.POST("/sync/push", h.Push)
	g.GET("/sync/pull", h.Pull)
	if h.hub != nil {
		g.GET("/sync/watch", h.hub.ServeWS)
	}
}

type PushResponse struct {
	MutationID string `json:"mutation_id"`
}

// Push handles POST /sync/push. Replayed mutations are acknowledged like new ones.
func (h *Handler) Push(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "sync.Push")
	defer span.End()

	var mutation models.Mutation
	if err := c.Bind(&mutation); err != nil {
		return httperror.WrapError(http.StatusBadRequest, err)
	}

	if err := h.service.Push(ctx, mutation); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, PushResponse{MutationID: mutation.ID})
}

// Pull handles GET /sync/pull
func (h *Handler) Pull(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "sync.Pull")
	defer span.End()

	snapshot, err := h.service.Pull(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, snapshot)
}
