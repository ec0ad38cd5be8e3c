package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/config"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// 各handlerの RegisterRoutes
type Registrar interface {
	RegisterRoutes(e *echo.Echo, cfg config.Config)
}

// New はミドルウェアとルートを積んだ echo を返す
func New(cfg config.Config, handlers ...Registrar) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(LogLevel(cfg.LogLevel))

	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := log.JSON{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			}
			// otelhttp が張ったspanとログを突き合わせる
			if sc := trace.SpanContextFromContext(c.Request().Context()); sc.IsValid() {
				fields["trace_id"] = sc.TraceID().String()
			}
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				fields["error"] = errString(v.Error)
				c.Logger().Errorj(fields)
				return nil
			}
			c.Logger().Infoj(fields)
			return nil
		},
	}))
	e.Use(echomw.ContextTimeout(cfg.RequestTimeout))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	for _, h := range handlers {
		h.RegisterRoutes(e, cfg)
	}
	return e
}

// Start は ctx が終わるまで待ち受け、終わったら graceful shutdown する
func Start(ctx context.Context, cfg config.Config, e *echo.Echo) error {
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           otelhttp.NewHandler(e, cfg.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.Logger.Infof("listening on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	e.Logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// LogLevel は設定の文字列を gommon のレベルにする
func LogLevel(s string) log.Lvl {
	switch s {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	default:
		return log.INFO
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
