package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"taskboard/internal/cascade"
	"taskboard/internal/config"
	"taskboard/internal/logging"
	"taskboard/internal/project"
	"taskboard/internal/registry"
	"taskboard/internal/server"
	"taskboard/internal/storage"
	"taskboard/internal/task"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, storage.Options{
		Driver:          cfg.Store.Driver,
		DSN:             cfg.Store.DSN,
		Database:        cfg.Store.Database,
		ProjectID:       cfg.Store.ProjectID,
		CredentialsFile: cfg.Store.CredentialsFile,
		ConnectTimeout:  cfg.Store.Timeout,
	})
	if err != nil {
		log.Error("store open", zap.String("driver", cfg.Store.Driver), zap.Error(err))
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("store close", zap.Error(err))
		}
	}()
	log.Info("store ready", zap.String("driver", cfg.Store.Driver))

	srv := build(cfg.Server, store, log)
	if err := srv.users.EnsureSeed(ctx, registry.SeedUser{
		Name:     cfg.Seed.Name,
		Email:    cfg.Seed.Email,
		Password: cfg.Seed.Password,
	}); err != nil {
		log.Error("seed user", zap.Error(err))
		return err
	}

	errc := make(chan error, 1)
	go func() {
		if err := srv.http.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			log.Error("listen", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.http.Shutdown(shCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
		return err
	}
	return nil
}

type app struct {
	http  *server.Server
	users *registry.Users
}

// build wires the services over one store.
func build(cfg config.ServerConfig, store storage.Store, log *zap.Logger) app {
	d := server.Deps{
		Categories: registry.NewCategories(store),
		Tags:       registry.NewTags(store),
		Users:      registry.NewUsers(store),
	}
	d.Projects = project.NewRegistry(store, d.Categories)
	d.Tasks = task.NewEngine(store, d.Projects, d.Categories, d.Tags, d.Users)
	d.Cascade = cascade.New(d.Categories, d.Tags, d.Users, d.Projects, d.Tasks, log.Named("cascade"))
	return app{
		http:  server.New(cfg, d, log.Named("http")),
		users: d.Users,
	}
}
