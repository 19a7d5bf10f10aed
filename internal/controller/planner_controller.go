package controller

import (
	"adaptive-rag-core/internal/dto"
	"adaptive-rag-core/internal/pkg/serverutils"
	"adaptive-rag-core/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPlannerController interface {
	RegisterRoutes(r fiber.Router)
	Classify(ctx *fiber.Ctx) error
	Plan(ctx *fiber.Ctx) error
}

type plannerController struct {
	plannerService *service.PlannerService
}

func NewPlannerController(plannerService *service.PlannerService) IPlannerController {
	return &plannerController{
		plannerService: plannerService,
	}
}

func (c *plannerController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/planner/v1")
	h.Post("classify", c.Classify)
	h.Post("plan", c.Plan)
}

func (c *plannerController) Classify(ctx *fiber.Ctx) error {
	var req dto.ClassifyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.plannerService.Classify(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success classify query", res))
}

func (c *plannerController) Plan(ctx *fiber.Ctx) error {
	var req dto.PlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.plannerService.Plan(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success build plan", res))
}
