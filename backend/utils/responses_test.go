package utils

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponses(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error {
		return Success(c, fiber.StatusOK, fiber.Map{"n": 1})
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return NotFound(c, "Course not found")
	})
	app.Get("/file", func(c *fiber.Ctx) error {
		return Download(c, "usage.csv", "text/csv", []byte("a,b\n"))
	})

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/ok", fiber.StatusOK, `{"success":true,"data":{"n":1}}`},
		{"/missing", fiber.StatusNotFound, `{"success":false,"error":"Not Found","message":"Course not found"}`},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, tt.wantStatus, resp.StatusCode)
		assert.JSONEq(t, tt.wantBody, string(body))
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/file", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, `attachment; filename="usage.csv"`, resp.Header.Get(fiber.HeaderContentDisposition))
}
