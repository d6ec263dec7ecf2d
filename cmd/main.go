package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "blog_api/docs"
	"blog_api/internal/handlers"
	"blog_api/internal/logger"
	"blog_api/internal/metrics"
	"blog_api/internal/repository"
	"blog_api/internal/repository/db"
	"blog_api/internal/server"
	"blog_api/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
)

// @title                       Blog API
// @version                     1.0
// @description                 Posts and comments with ownership-based authorization.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

func main() {
	// load config.yml; missing file is fine, env and defaults still apply
	cfgErr := loadConfig()

	// init logger
	log := logger.Get(viper.GetString("log.level"), viper.GetString("log.format"))
	if cfgErr != nil {
		log.Warnw("config file not loaded; using defaults and environment", "err", cfgErr)
	}

	signingKey := viper.GetString("auth.signing_key")
	if strings.TrimSpace(signingKey) == "" {
		log.Fatalw("auth.signing_key is required (set BLOG_AUTH_SIGNING_KEY)")
	}

	// open DB
	conn, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// metrics registry
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, []byte(signingKey), log)
	apiHandler := handlers.NewHandler(services, log,
		handlers.WithMetrics(collector, reg),
		handlers.WithStreamInterval(viper.GetDuration("ws.interval")),
	)

	// start HTTP server
	srv := server.New(viper.GetString("port"), apiHandler.InitRoutes())
	runHTTPServer(srv, log)

	// graceful shutdown
	waitForShutdown(srv, log)
}

func loadConfig() error {
	viper.SetDefault("port", "8080")
	viper.SetDefault("db.path", "blog.db")
	viper.SetDefault("log.level", logger.InfoLevel)
	viper.SetDefault("log.format", logger.ConsoleFormat)
	viper.SetDefault("ws.interval", "2s")

	viper.SetEnvPrefix("BLOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	log.Infow("opening sqlite", "path", dbPath)
	return db.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "addr", srv.Addr())
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
