package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/wardenbot/warden/internal/config"
	"github.com/wardenbot/warden/internal/lifecycle"
	"github.com/wardenbot/warden/internal/moderation"
	"github.com/wardenbot/warden/internal/notify"
	"github.com/wardenbot/warden/internal/observability"
	"github.com/wardenbot/warden/internal/platform"
	"github.com/wardenbot/warden/internal/policy/access"
	"github.com/wardenbot/warden/internal/server"
	"github.com/wardenbot/warden/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.WithError(err).Fatalln("cant load config")
	}
	log.SetFormatter(&config.WdFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.Level(cfg.LogLevel))

	if err := observability.Init(cfg.MetricsAddr); err != nil {
		log.WithError(err).Fatalln("cant init observability")
	}

	kv, err := store.NewClient(cfg.RedisURL, cfg.Moderation.StoreTimeout)
	if err != nil {
		log.WithError(err).Fatalln("cant connect to store")
	}
	defer kv.Close()
	if err := kv.Ping(ctx); err != nil {
		log.WithError(err).Fatalln("store unreachable")
	}

	gateway := platform.NewGateway(cfg.Gateway)
	dispatcher := notify.NewDispatcher(gateway, gateway)
	gate := access.NewGate(kv)

	svc := moderation.NewService(
		cfg.Moderation,
		gate,
		moderation.NewWarningLedger(kv, cfg.Moderation),
		moderation.NewSanctionStore(kv),
		moderation.NewCaseLedger(kv),
		moderation.NewNoteBook(kv),
		gateway,
		dispatcher,
	)
	reconciler := moderation.NewReconciler(
		moderation.NewSanctionStore(kv),
		gateway,
		moderation.RoleMap(cfg.Moderation),
		cfg.Moderation.ReconcileInterval,
	)

	runtime := lifecycle.NewRuntime(dispatcher, reconciler)
	if err := runtime.Start(ctx); err != nil {
		log.WithError(err).Fatalln("cant start runtime")
	}

	srv := server.New(cfg, svc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", cfg.ListenAddr).Info("moderation api listening")
		return srv.Listen()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := runtime.Stop(shutdownCtx); err != nil {
			log.WithError(err).Error("runtime stop failed")
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatalln("exited with error")
	}
	log.Info("shutdown complete")
}
