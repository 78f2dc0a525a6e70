package server

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/piyol1998/stokcer-sub001/internal/handler"
	appmw "github.com/piyol1998/stokcer-sub001/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	Cart     *handler.CartHandler
	Catalog  *handler.CatalogHandler
	Checkout *handler.CheckoutHandler
	Webhook  *handler.WebhookHandler
}

type Options struct {
	Logger       *zap.Logger
	Gatherer     prometheus.Gatherer
	SessionTTL   time.Duration
	SecureCookie bool
}

type Server struct {
	echo     *echo.Echo
	handlers Handlers
	opts     Options
}

func NewServer(handlers Handlers, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.NewErrorHandler(opts.Logger)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			opts.Logger.Info("request", fields...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:     e,
		handlers: handlers,
		opts:     opts,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	api.GET("/products", s.handlers.Catalog.ListProducts)
	api.GET("/plans", s.handlers.Catalog.ListPlans)

	// -------- webhooks --------
	webhooks := api.Group("/webhooks")
	webhooks.POST("/midtrans", s.handlers.Webhook.Midtrans)
	webhooks.POST("/stripe", s.handlers.Webhook.Stripe)

	// -------- storefront --------
	shop := api.Group("", appmw.SessionMiddleware(s.opts.SessionTTL, s.opts.SecureCookie), appmw.AuthMiddleware())

	shop.GET("/cart", s.handlers.Cart.GetCart)
	shop.POST("/cart/items", s.handlers.Cart.AddItem)
	shop.PATCH("/cart/items/:variantID", s.handlers.Cart.UpdateItem)
	shop.DELETE("/cart/items/:variantID", s.handlers.Cart.RemoveItem)
	shop.DELETE("/cart", s.handlers.Cart.Clear)

	shop.POST("/checkout/plan", s.handlers.Checkout.CheckoutPlan)
	shop.POST("/checkout/cart", s.handlers.Checkout.CheckoutCart)
	shop.GET("/checkout/:orderID", s.handlers.Checkout.GetSession)
	shop.POST("/checkout/:orderID/charge", s.handlers.Checkout.Charge)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() *echo.Echo {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
