package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ibadah-companion-backend/internal/qibla"
)

// GetQibla handles GET /api/qibla?lat=&lon=[&heading=].
func (h *Handler) GetQibla(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon must be decimal degrees"})
		return
	}

	var heading qibla.HeadingProvider
	if raw, ok := c.GetQuery("heading"); ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "heading must be degrees clockwise from north"})
			return
		}
		heading = qibla.FixedHeading{Value: &v}
	}

	observer := qibla.FixedLocation{Latitude: lat, Longitude: lon}
	reading, err := qibla.Locate(c.Request.Context(), observer, heading, h.cfg.Qibla.Target)
	if err != nil {
		if errors.Is(err, qibla.ErrInvalidCoordinate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, reading)
}
