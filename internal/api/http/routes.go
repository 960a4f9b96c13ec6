package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/mzielinski/imgw-weather/internal/geo"
	"github.com/mzielinski/imgw-weather/internal/imgw"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *imgw.Service) {
	api := app.Group("/api")

	api.Get("/weather/current", func(c *fiber.Ctx) error {
		return c.JSON(service.CurrentView(c.Context()))
	})

	api.Get("/weather/historical", func(c *fiber.Ctx) error {
		var req historicalQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		view, err := service.HistoricalView(c.Context(), req.Days)
		if err != nil {
			if errors.Is(err, imgw.ErrLookbackTooLong) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch historical data")
		}
		return c.JSON(view)
	})

	api.Post("/weather/refresh", func(c *fiber.Ctx) error {
		service.Refresh()
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"message": "refresh started in background",
		})
	})

	api.Get("/health", func(c *fiber.Ctx) error {
		health := service.Health(c.Context())
		status := fiber.StatusOK
		if health.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(health)
	})

	api.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(service.StatsView(c.Context()))
	})

	api.Get("/stations", func(c *fiber.Ctx) error {
		return c.JSON(geo.AllStations())
	})
}

// historicalQuery holds query parameters for the historical endpoint.
// The upper bound on days is enforced by the service.
type historicalQuery struct {
	Days int `validate:"min=1"`
}

func (h *historicalQuery) bind(c *fiber.Ctx) error {
	h.Days = c.QueryInt("days", 7)
	return validate.Struct(h)
}
