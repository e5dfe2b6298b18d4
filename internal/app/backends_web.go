//go:build !noweb

package app

import (
	"github.com/gin-gonic/gin"

	"github.com/five82/minerui/internal/backend"
	"github.com/five82/minerui/internal/config"
	"github.com/five82/minerui/internal/web"
)

func registerWeb(f *backend.Factory, d deps) {
	if !d.dev {
		gin.SetMode(gin.ReleaseMode)
	}
	f.Register(config.KindWeb, func() (backend.Backend, error) {
		return web.New(web.Options{
			Store:        d.store,
			Prefs:        d.prefs,
			Logger:       d.logger.Named("web"),
			Metrics:      d.metrics,
			OnClose:      d.onClose,
			PushInterval: uiRefresh,
		}), nil
	})
}
