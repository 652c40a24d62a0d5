package router

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/DjordjeVuckovic/pref-assess/internal/apperr"
	"github.com/DjordjeVuckovic/pref-assess/internal/judgment"
	"github.com/DjordjeVuckovic/pref-assess/internal/storage"
	"github.com/labstack/echo/v4"
)

const (
	mimeYAML = "application/yaml"
	// maxPoolBytes bounds an uploaded pool file.
	maxPoolBytes = 16 << 20
)

var errPoolTooLarge = errors.New("pool file too large")

// PoolRouter uploads query pools and downloads recorded judgments as YAML.
type PoolRouter struct {
	e     *echo.Echo
	store storage.Store
	now   func() time.Time
}

func NewPoolRouter(e *echo.Echo, store storage.Store) *PoolRouter {
	return &PoolRouter{
		e:     e,
		store: store,
		now:   time.Now,
	}
}

func (r *PoolRouter) Bind() {
	r.e.POST("/queries", r.importPool)
	r.e.GET("/judgments", r.exportJudgments)
}

func (r *PoolRouter) importPool(c echo.Context) error {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPoolBytes+1))
	if err != nil {
		return apperr.NewValidationWrap("failed to read pool file", err)
	}
	if len(data) > maxPoolBytes {
		return apperr.NewValidationWrap(fmt.Sprintf("pool file exceeds %d bytes", maxPoolBytes), errPoolTooLarge)
	}

	pf, err := judgment.ParsePool(data)
	if err != nil {
		return apperr.NewValidationWrap("invalid pool file", err)
	}
	saved, err := judgment.ImportPool(c.Request().Context(), r.store, pf)
	if err != nil {
		return err
	}

	slog.Info("Pool imported", "pool", pf.Name, "queries", len(pf.Queries), "saved", saved)
	return c.JSON(http.StatusCreated, importResponse{Pool: pf.Name, Queries: len(pf.Queries), Saved: saved})
}

func (r *PoolRouter) exportJudgments(c echo.Context) error {
	jf, err := judgment.Export(c.Request().Context(), r.store, r.now().UTC())
	if err != nil {
		return err
	}
	data, err := jf.Marshal()
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="judgments.yaml"`)
	return c.Blob(http.StatusOK, mimeYAML, data)
}
