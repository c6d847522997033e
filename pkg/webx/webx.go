package webx

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/hertz-contrib/cors"
)

// WebConfig configures the keep-alive web server.
type WebConfig struct {
	Host            string `json:"host" yaml:"host" mapstructure:"host"`
	Port            int    `json:"port" yaml:"port" mapstructure:"port"`
	ReadTimeout     int    `json:"readTimeout" yaml:"read-timeout" mapstructure:"read-timeout"`
	WriteTimeout    int    `json:"writeTimeout" yaml:"write-timeout" mapstructure:"write-timeout"`
	IdleTimeout     int    `json:"idleTimeout" yaml:"idle-timeout" mapstructure:"idle-timeout"`
	ShutdownTimeout int    `json:"shutdownTimeout" yaml:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

func (cfg *WebConfig) Prepare() {
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * 1000
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * 1000
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 2 * 60 * 1000
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * 1000
	}
}

// WebEngine builds the hertz engine with cors and the health route. The
// health endpoint exists only to keep the hosting platform from idling the
// process out.
func WebEngine(cfg WebConfig) *server.Hertz {
	cfg.Prepare()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	opts := []config.Option{
		server.WithHostPorts(addr),
		server.WithReadTimeout(time.Duration(cfg.ReadTimeout) * time.Millisecond),
		server.WithWriteTimeout(time.Duration(cfg.WriteTimeout) * time.Millisecond),
		server.WithIdleTimeout(time.Duration(cfg.IdleTimeout) * time.Millisecond),
		server.WithExitWaitTime(time.Duration(cfg.ShutdownTimeout) * time.Millisecond),
	}
	hertz := server.Default(opts...)

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"*"}
	hertz.Use(cors.New(corsCfg))

	hertz.GET("/healthz", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(http.StatusOK, utils.H{"status": "ok"})
	})
	return hertz
}
