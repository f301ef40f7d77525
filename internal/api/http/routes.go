package httpapi

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-battle/internal/battle"
)

var validate = validator.New()

// Battler runs a battle between two cities.
type Battler interface {
	Battle(ctx context.Context, cityA, cityB string) (battle.Result, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. defaults are the
// configured cities, used when a query parameter is omitted.
func RegisterRoutes(app *fiber.App, service Battler, defaults [2]string) {
	v1 := app.Group("/api/v1")

	v1.Get("/battle", func(c *fiber.Ctx) error {
		q, err := parseBattleQuery(c, defaults)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := service.Battle(c.UserContext(), q.City1, q.City2)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}

		return c.JSON(res)
	})

	v1.Get("/battle/report", func(c *fiber.Ctx) error {
		q, err := parseBattleQuery(c, defaults)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := service.Battle(c.UserContext(), q.City1, q.City2)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}

		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(res.Report)
	})
}

// battleQuery holds query parameters naming the two contenders.
type battleQuery struct {
	City1 string `validate:"required,max=100"`
	City2 string `validate:"required,max=100"`
}

func parseBattleQuery(c *fiber.Ctx, defaults [2]string) (battleQuery, error) {
	q := battleQuery{
		City1: strings.TrimSpace(c.Query("city1", defaults[0])),
		City2: strings.TrimSpace(c.Query("city2", defaults[1])),
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// statusFor maps battle error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, battle.ErrInvalidConfiguration):
		return fiber.StatusBadRequest
	case errors.Is(err, battle.ErrLocationNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, battle.ErrMissingData), errors.Is(err, battle.ErrMismatchedLengths):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, battle.ErrUpstream):
		return fiber.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}
