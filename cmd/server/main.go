package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"repairdesk/internal/adapters/web"
	"repairdesk/internal/app"
	"repairdesk/internal/db"
	"repairdesk/internal/remote"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	servicePool, err := db.NewServicePool(ctx)
	if err != nil {
		logger.Fatal("service database connection failed", zap.Error(err))
	}
	defer servicePool.Close()

	companies := remote.NewCompanyService(pool)
	inventory := remote.NewInventoryService(pool)
	jobs := remote.NewJobService(pool)
	queue := remote.NewQueueService(pool)
	reports := remote.NewReportService(pool, jobs, queue, inventory)
	svc := app.NewRemoteService(companies, inventory, jobs, queue, reports)

	members := remote.NewMemberService(servicePool)
	admin := remote.NewAdminService(pool, servicePool)

	var origins []string
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			origins = append(origins, strings.TrimSpace(o))
		}
	}

	handler := web.NewHandler(web.Config{
		Service:        svc,
		Members:        members,
		Admin:          admin,
		JWTSecret:      jwtSecret,
		AllowedOrigins: origins,
		Logger:         logger,
	})

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
