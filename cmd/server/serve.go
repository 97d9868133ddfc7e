package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-account-api/accountmanager"
	"github.com/jrsteele09/go-account-api/attributes"
	"github.com/jrsteele09/go-account-api/authrequests"
	"github.com/jrsteele09/go-account-api/downstream"
	"github.com/jrsteele09/go-account-api/internal/config"
	"github.com/jrsteele09/go-account-api/oidcclient"
	"github.com/jrsteele09/go-account-api/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	displayAppname(cfg.GetAppName())
	return run(cmd.Context(), cfg)
}

func run(ctx context.Context, cfg *config.Settings) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()
	stores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	handler, err := newHandler(ctx, cfg, stores)
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: cfg.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(srv) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

func newHandler(ctx context.Context, cfg *config.Settings, stores *storeSet) (*server.Server, error) {
	registry, err := attributes.LoadRegistry(cfg.GetAttributeRegistryPath())
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.GetDownstreamTimeout()}
	tokens, err := oidcclient.New(ctx, cfg, oidcclient.Options{HTTPClient: httpClient})
	if err != nil {
		return nil, err
	}
	exec := downstream.NewExecutor(httpClient, tokens)

	return server.New(cfg, server.Deps{
		AuthRequests:   authrequests.NewStore(stores.authRequests, cfg.GetAuthRequestTTL(), cfg.GetRandomTokenLength()),
		Users:          stores.users,
		Tokens:         tokens,
		Attributes:     attributes.NewClient(cfg.GetAttributeServiceURL(), registry, exec),
		AccountManager: accountmanager.NewClient(cfg.GetAccountManagerURL(), exec),
		Ready:          stores.Ping,
	})
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
