package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })
	return &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &m), l)
		out = append(out, m)
	}
	return out
}

func TestEntriesWithoutRequest(t *testing.T) {
	buf := capture(t)

	Info(nil, "seed.catalog", nil)
	Audit(nil, "product.delete", map[string]any{"product_id": "p1"})
	Security(nil, "csrf.fail", nil)
	Error(nil, "db.fail", errors.New("disk full"), nil)

	got := lines(t, buf)
	require.Len(t, got, 4)

	assert.Equal(t, "seed.catalog", got[0]["action"])
	assert.Equal(t, "info", got[0]["level"])
	assert.NotContains(t, got[0], "kind")
	assert.NotEmpty(t, got[0]["ts"])

	assert.Equal(t, "audit", got[1]["kind"])
	assert.Equal(t, map[string]any{"product_id": "p1"}, got[1]["fields"])

	assert.Equal(t, "security", got[2]["kind"])
	assert.Equal(t, "warn", got[2]["level"])

	assert.Equal(t, "error", got[3]["level"])
	assert.Equal(t, "disk full", got[3]["err"])
}

func TestEntriesCarryRequestContext(t *testing.T) {
	buf := capture(t)

	app := fiber.New()
	app.Get("/api/cart", func(c *fiber.Ctx) error {
		c.Locals("requestid", "rid-1")
		c.Status(fiber.StatusTeapot)
		Info(c, "cart.view", nil)
		return nil
	})
	_, err := app.Test(httptest.NewRequest("GET", "/api/cart", nil))
	require.NoError(t, err)

	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "GET", got[0]["method"])
	assert.Equal(t, "/api/cart", got[0]["path"])
	assert.EqualValues(t, fiber.StatusTeapot, got[0]["status"])
	assert.Equal(t, "rid-1", got[0]["req_id"])
}
