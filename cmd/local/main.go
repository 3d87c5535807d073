package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"repairdesk/internal/adapters/cli"
	"repairdesk/internal/adapters/web"
	"repairdesk/internal/app"
	"repairdesk/internal/store"
)

// The local binary runs the whole app against a single JSON file, no
// database and no login. Useful for a one-person workshop or for poking
// at an exported ledger. With a subcommand it runs one-shot instead of
// serving HTTP: local -data ledger.json jobs <company-id>.
func main() {
	dataPath := flag.String("data", "repairdesk.json", "path to the ledger file")
	demo := flag.Bool("demo", false, "seed demo data when the ledger file is empty")
	addr := flag.String("addr", "127.0.0.1:8080", "listen address")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	st := store.NewFileStore(*dataPath)
	svc, err := app.NewLocalService(st, *demo)
	if err != nil {
		logger.Fatal("failed to load ledger", zap.String("path", *dataPath), zap.Error(err))
	}

	if args := flag.Args(); len(args) > 0 {
		cli.Run(context.Background(), svc, args)
		return
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           web.NewLocalHandler(svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("local server starting", zap.String("addr", *addr), zap.String("data", *dataPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
