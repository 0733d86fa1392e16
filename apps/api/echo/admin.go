package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/mtihani/core/gateway"
)

// adminApi exposes the gateway audit surface. Origin gating happens in the
// gateway middleware (access gate); no extra auth layer here.
type adminApi struct {
	denials *gateway.DenialLog
}

func registerAdminAPI(g *echo.Group, denials *gateway.DenialLog) {
	api := adminApi{denials: denials}
	g.GET("/gateway/denials", api.recentDenials)
}

func (api *adminApi) recentDenials(ctx echo.Context) error {
	var limit int
	if raw := ctx.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}
	return jsonSuccess(ctx, http.StatusOK, "", map[string]interface{}{
		"denials": api.denials.Recent(limit),
	})
}
