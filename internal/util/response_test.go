package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prakkhar03/skillbridge/internal/model"
)

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, fiber.StatusOK, StatusFromError(nil))
	assert.Equal(t, fiber.StatusBadRequest, StatusFromError(fmt.Errorf("%w: bad", model.ErrValidation)))
	assert.Equal(t, fiber.StatusBadRequest, StatusFromError(NewFormError("invalid", nil)))
	assert.Equal(t, fiber.StatusNotFound, StatusFromError(fmt.Errorf("%w: gone", model.ErrNotFound)))
	assert.Equal(t, fiber.StatusForbidden, StatusFromError(model.ErrForbidden))
	assert.Equal(t, fiber.StatusConflict, StatusFromError(model.ErrConflict))
	assert.Equal(t, fiber.StatusInternalServerError, StatusFromError(errors.New("boom")))
}

func TestHandleError(t *testing.T) {
	app := fiber.New()
	app.Get("/form", func(c *fiber.Ctx) error {
		return HandleError(c, "failed", NewFormError("answers must be a list", map[string]string{"answers": "must be a list"}))
	})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return HandleError(c, "failed", errors.New("pq: connection refused"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/form", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, "answers must be a list", body.Message)
	assert.False(t, body.Success)

	resp, err = app.Test(httptest.NewRequest("GET", "/internal", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body = decode(t, resp.Body)
	assert.Equal(t, "Internal Server Error", body.Message)
}

func decode(t *testing.T, r io.Reader) OrderedErrorResponse {
	t.Helper()
	var out OrderedErrorResponse
	require.NoError(t, json.NewDecoder(r).Decode(&out))
	return out
}
