package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ticket-etl/core/loader"
	"ticket-etl/core/logger"
	"ticket-etl/core/middleware/auth"
	"ticket-etl/core/middleware/rayid"
	"ticket-etl/feature/executions"
	"ticket-etl/feature/refdata"
)

// serveCmd starts the HTTP surface: sync status, on-demand runs and the
// execution history.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ETL HTTP server",
	Long:  `Starts the HTTP server exposing sync status, on-demand runs and execution history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()
		logg := a.logger

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// RayID first so every request is traceable
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		})

		app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))

		mgr := loader.NewManager(logg)
		mgr.Register(refdata.NewFeature(a.service))
		mgr.Register(executions.NewFeature(a.ledger, logg))
		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		go func() {
			logg.Info("Starting server", zap.String("port", a.cfg.Server.Port))
			if err := app.Listen(":" + a.cfg.Server.Port); err != nil {
				logg.Error("Server stopped", zap.Error(err))
				stop()
			}
		}()

		<-ctx.Done()
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
		return nil
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
