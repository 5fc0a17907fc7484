// utils/http.go - Fiber request and response helpers
package utils

import (
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"

	"taskhub/apperrors"
)

// Success sends {"success": true, ...data} with the given status.
func Success(c *fiber.Ctx, status int, data fiber.Map) error {
	response := fiber.Map{"success": true}
	for k, v := range data {
		response[k] = v
	}
	return c.Status(status).JSON(response)
}

// ParamID parses a positive numeric route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.Validation("invalid %s", name)
	}
	return uint(id), nil
}

// ParseBody decodes the request body, reporting failures as validation errors.
func ParseBody(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return apperrors.Validation("invalid request body")
	}
	return nil
}

// Location reads the caller's IANA zone from ?tz= or the X-Timezone header.
// An empty value means UTC.
func Location(c *fiber.Ctx) (*time.Location, error) {
	name := c.Query("tz")
	if name == "" {
		name = c.Get("X-Timezone")
	}
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, apperrors.Validation("unknown time zone %q", name)
	}
	return loc, nil
}
