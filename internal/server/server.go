package server

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// Server はechoとその停止処理をまとめる
type Server struct {
	e    *echo.Echo
	addr string
	log  *logrus.Entry
}

func New(cfg config.Config, log *logrus.Entry, userRepo repository.UserRepository, h Handlers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(log.WithField("component", "http"))

	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(metrics.Middleware())
	e.Use(middleware.RequestLogger(log.WithField("component", "http")))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FEURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Cache-Control", "Expires", "Pragma"},
		AllowCredentials: true,
	}))

	RegisterRoutes(e, cfg, userRepo, h)

	return &Server{e: e, addr: ":" + cfg.Port, log: log.WithField("component", "server")}
}

// テストからルートを叩く用
func (s *Server) Echo() *echo.Echo { return s.e }

// Start はShutdownされるまで戻らない
func (s *Server) Start() error {
	s.log.WithField("addr", s.addr).Info("listening")
	if err := s.e.Start(s.addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.e.Shutdown(ctx)
}
