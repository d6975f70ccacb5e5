package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/public/:slug", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNotFound) })
	app.Get("/metrics", m.Handler())

	for _, slug := range []string{"alex", "sam"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/public/"+slug, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
	m.SettingWrite("visibility", OutcomeRolledBack)
	m.Import(true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.settings.WithLabelValues("visibility", OutcomeRolledBack)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.imports.WithLabelValues("ok")))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, `nodalcv_http_request_duration_seconds_count{method="GET",route="/public/:slug",status="404"} 2`)
	assert.Contains(t, text, `nodalcv_setting_writes_total{field="visibility",outcome="rolled_back"} 1`)
	assert.NotContains(t, text, "alex")
}
