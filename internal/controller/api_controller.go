// FILE: internal/controller/api_controller.go
package controller

import (
	"finance-dashboard/internal/dto"
	"finance-dashboard/internal/pkg/serverutils"
	"finance-dashboard/internal/store"
	"finance-dashboard/pkg/analysis"

	"github.com/gofiber/fiber/v2"
)

type IApiController interface {
	RegisterRoutes(r fiber.Router)
	GetState(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type apiController struct {
	visitors VisitorStores
	backend  analysis.Backend
}

func NewApiController(visitors VisitorStores, backend analysis.Backend) IApiController {
	return &apiController{visitors: visitors, backend: backend}
}

func (c *apiController) RegisterRoutes(r fiber.Router) {
	r.Get("/api/state", c.GetState)
	r.Get("/healthz", c.Health)
}

// GetState exposes the visitor's session handle and per-resource status.
func (c *apiController) GetState(ctx *fiber.Ctx) error {
	snap := c.visitors.GetOrCreate(serverutils.VisitorID(ctx).String()).Snapshot()

	res := dto.StateResponse{
		SessionID:  snap.SessionID,
		Generation: snap.Generation,
		Resources:  make(map[string]dto.ResourceStatusResponse, len(snap.Status)),
	}
	for _, r := range store.Resources {
		st := snap.Status[r]
		item := dto.ResourceStatusResponse{State: string(st.State), Error: st.Error}
		if !st.UpdatedAt.IsZero() {
			t := st.UpdatedAt
			item.UpdatedAt = &t
		}
		res.Resources[string(r)] = item
	}
	return ctx.JSON(serverutils.SuccessResponse("Analysis state", res))
}

func (c *apiController) Health(ctx *fiber.Ctx) error {
	if err := c.backend.Health(ctx.UserContext()); err != nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(dto.HealthResponse{
			Status:  "degraded",
			Backend: "unavailable",
			Error:   err.Error(),
		})
	}
	return ctx.JSON(dto.HealthResponse{Status: "ok", Backend: "ok"})
}
