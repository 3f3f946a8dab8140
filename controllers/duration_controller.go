package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"backend/config"
	"backend/services/hls"
	"backend/utils"
)

type DurationController struct {
	Cfg      *config.Config
	Resolver *hls.Resolver
	Logger   *log.Logger
}

func NewDurationController(cfg *config.Config, logger *log.Logger) *DurationController {
	return &DurationController{
		Cfg:      cfg,
		Resolver: hls.NewResolver(cfg.HTTPTimeout),
		Logger:   logger,
	}
}

// ResolveDuration probes an HLS playlist URL and returns the total media
// duration. A zero result means the duration could not be detected; the
// caller should fall back to manual entry.
func (dc *DurationController) ResolveDuration(c *fiber.Ctx) error {
	var input struct {
		URL string `json:"url"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "BAD_REQUEST", "Cannot parse JSON")
	}
	if input.URL == "" {
		return utils.Fail(c, fiber.StatusBadRequest, "BAD_REQUEST", "url is required")
	}

	duration, err := dc.Resolver.ResolveDuration(input.URL)
	if err != nil {
		var fetchErr *hls.FetchError
		switch {
		case errors.As(err, &fetchErr):
			dc.Logger.Printf("resolve duration: %v", err)
			return utils.Fail(c, fiber.StatusBadGateway, "FETCH_ERROR",
				"Could not fetch playlist", fiber.Map{"status": fetchErr.Status})
		case errors.Is(err, hls.ErrNoVariantFound):
			dc.Logger.Printf("resolve duration: %s: %v", input.URL, err)
			return utils.Fail(c, fiber.StatusUnprocessableEntity, "NO_VARIANT_FOUND",
				"Master playlist has no variant URL")
		default:
			dc.Logger.Printf("resolve duration: %s: %v", input.URL, err)
			return utils.Fail(c, fiber.StatusInternalServerError, "INTERNAL_ERROR",
				"Could not resolve duration")
		}
	}

	return utils.Success(c, fiber.StatusOK, duration)
}
