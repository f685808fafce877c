package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lightcurve-monitor/internal/lightcurve"
)

// GetObject handles the GET /api/objects/{object_id} request.
func (h *Handler) GetObject(c *gin.Context) {
	objectID, err := strconv.ParseInt(c.Param("object_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid object ID"})
		return
	}

	obj, err := h.store.ObjectByID(c.Request.Context(), objectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Object not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve object"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"object_id": obj.ObjectID, "ra": obj.RA, "dec": obj.Dec})
}

// GetObjectLightCurve handles the GET /api/objects/{object_id}/lightcurve
// request.
func (h *Handler) GetObjectLightCurve(c *gin.Context) {
	objectID, err := strconv.ParseInt(c.Param("object_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid object ID"})
		return
	}

	h.assembleAndRespond(c, lightcurve.BuildOpts{ObjectID: &objectID})
}

// GetLightCurveByPosition handles the GET /api/lightcurve request with
// ra/dec/tol query parameters.
func (h *Handler) GetLightCurveByPosition(c *gin.Context) {
	ra, errRA := strconv.ParseFloat(c.Query("ra"), 64)
	dec, errDec := strconv.ParseFloat(c.Query("dec"), 64)
	if errRA != nil || errDec != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "ra and dec are required numeric parameters"})
		return
	}

	tol := 0.005
	if tolParam := c.Query("tol"); tolParam != "" {
		var err error
		if tol, err = strconv.ParseFloat(tolParam, 64); err != nil || tol <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "tol must be a positive number"})
			return
		}
	}

	h.assembleAndRespond(c, lightcurve.BuildOpts{RA: &ra, Dec: &dec, Tol: tol})
}

func (h *Handler) assembleAndRespond(c *gin.Context, opts lightcurve.BuildOpts) {
	// Database assembly never touches the per-visit table tree; a configured
	// fp_table_dir is for the file-mode CLI and may not exist on this host.
	lcCfg := h.cfg.LightCurve
	lcCfg.FPTableDir = ""
	lc, err := lightcurve.New(h.store, lcCfg, h.cfg.Phot.Filters)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := lc.BuildFromDB(c.Request.Context(), opts); err != nil {
		switch {
		case errors.Is(err, lightcurve.ErrInvalidSelector):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, lightcurve.ErrNoMatch), errors.Is(err, gorm.ErrRecordNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "No matching object"})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to assemble light curve"})
		}
		return
	}

	points, err := lc.Points()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points, "count": len(points)})
}
