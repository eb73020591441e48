package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudcrate/filegate/internal/logger"
	"github.com/cloudcrate/filegate/pkg/config"
	"github.com/cloudcrate/filegate/pkg/driver"
	"github.com/cloudcrate/filegate/pkg/driver/local"
	"github.com/cloudcrate/filegate/pkg/driver/onedrive"
	"github.com/cloudcrate/filegate/pkg/driver/s3"
	"github.com/cloudcrate/filegate/pkg/driver/webdav"
	"github.com/cloudcrate/filegate/pkg/drivercache"
	"github.com/cloudcrate/filegate/pkg/filesystem"
	"github.com/cloudcrate/filegate/pkg/httpapi"
	"github.com/cloudcrate/filegate/pkg/linkservice"
	"github.com/cloudcrate/filegate/pkg/mount"
	"github.com/cloudcrate/filegate/pkg/objectstore"
	"github.com/cloudcrate/filegate/pkg/policy"
	"github.com/cloudcrate/filegate/pkg/principal"
	"github.com/cloudcrate/filegate/pkg/proxysig"
	"github.com/cloudcrate/filegate/pkg/share"
	"github.com/cloudcrate/filegate/pkg/storageconfig"
	"github.com/cloudcrate/filegate/pkg/store"
	"github.com/cloudcrate/filegate/pkg/uploadledger"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the gateway's HTTP API",
	Long: `Start gatewayd's HTTP API: mount resolution, driver dispatch,
front-end-driven multipart uploads, links, and shares.

Use --config to point at a config file, or rely on the default location at
$XDG_CONFIG_HOME/filegate/config.yaml.`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("starting gatewayd", "environment", cfg.Environment, logger.KeyOperation, "startup")

	db, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	encryptor, err := storageconfig.NewEncryptor(cfg.Encryption.Secret)
	if err != nil {
		return fmt.Errorf("failed to initialize credential encryption: %w", err)
	}

	factory := driver.NewFactory()
	factory.Register(local.Registration())
	factory.Register(s3.Registration())
	factory.Register(webdav.Registration())
	factory.Register(onedrive.Registration())

	// storageconfig.Service needs the cache as its Invalidator, and the
	// cache needs a Lookup bound to a Service; build an uninvalidated
	// lookup-only instance first to break the cycle, then the real one.
	scLookup := storageconfig.New(db, encryptor, nil)
	cache := drivercache.New(factory, scLookup.Lookup)
	storageConfigs := storageconfig.New(db, encryptor, cache)

	mounts := mount.New(db, db)
	engine := policy.New()
	objects := objectstore.New(cache.Get)
	fs := filesystem.New(mounts, db, cache.Get, cache, engine)
	uploads := uploadledger.New(db, cache.Get, 24*time.Hour)

	var jwtSvc *principal.JWTService
	if cfg.JWT.Secret != "" {
		jwtSvc, err = principal.NewJWTService(principal.JWTConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
		if err != nil {
			return fmt.Errorf("failed to initialize JWT verification: %w", err)
		}
	} else {
		logger.Warn("GATEWAY_JWT_SECRET not set; every request will be treated as anonymous")
	}

	signer := proxysig.NewSigner(cfg.Encryption.Secret)
	links := linkservice.New(cache.Get, signer, "")
	limitGuard := share.NewLimitGuard(db, db)
	shares := share.New(db, limitGuard)

	router := httpapi.NewRouter(httpapi.Dependencies{
		FS:             fs,
		Objects:        objects,
		Links:          links,
		Uploads:        uploads,
		Shares:         shares,
		StorageConfigs: storageConfigs,
		Signer:         signer,
		JWT:            jwtSvc,
		Resolve:        cache.Get,
		Invalidate:     cache,
		Tester:         factory.Test,
		RequestTimeout: cfg.HTTP.ReadTimeout,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serverDone := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
			return
		}
		serverDone <- nil
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, draining connections")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", logger.KeyError, err.Error())
			return err
		}
		logger.Info("gatewayd stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("HTTP server error", logger.KeyError, err.Error())
			return err
		}
	}

	return nil
}
