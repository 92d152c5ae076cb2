package controller

import (
	"ai-sales-assistant-be/internal/pkg/serverutils"
	"ai-sales-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISalesRepController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Reload(ctx *fiber.Ctx) error
}

type salesRepController struct {
	assistantService service.IAssistantService
}

func NewSalesRepController(assistantService service.IAssistantService) ISalesRepController {
	return &salesRepController{
		assistantService: assistantService,
	}
}

func (c *salesRepController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sales-reps/v1")
	h.Get("", c.List)
	h.Post("reload", c.Reload)
}

func (c *salesRepController) List(ctx *fiber.Ctx) error {
	data := c.assistantService.GetSalesData(ctx.Context())

	return ctx.JSON(serverutils.SuccessResponse("Success get sales reps", data.SalesReps))
}

func (c *salesRepController) Reload(ctx *fiber.Ctx) error {
	res, err := c.assistantService.Reload(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reload sales data", res))
}
