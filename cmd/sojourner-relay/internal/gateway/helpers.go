package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/tinyland-inc/sojourner-relay/cmd/sojourner-relay/internal"
	"github.com/tinyland-inc/sojourner-relay/pkg/channels"
	"github.com/tinyland-inc/sojourner-relay/pkg/health"
	"github.com/tinyland-inc/sojourner-relay/pkg/logger"
	"github.com/tinyland-inc/sojourner-relay/pkg/registry"
	"github.com/tinyland-inc/sojourner-relay/pkg/sojourner"
	"github.com/tinyland-inc/sojourner-relay/pkg/workflow"
)

func gatewayCmd(debug bool) error {
	if debug {
		logger.SetLevel(logger.DEBUG)
		fmt.Println("🔍 Debug mode enabled")
	}

	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := sojourner.NewS3Client(ctx, sojourner.S3Config{
		Endpoint:  cfg.Sojourner.Endpoint,
		Region:    cfg.Sojourner.Region,
		Bucket:    cfg.Sojourner.Bucket,
		AccessKey: cfg.Sojourner.AccessKey,
		SecretKey: cfg.Sojourner.SecretKey,
	})
	if err != nil {
		return fmt.Errorf("error creating sojourner client: %w", err)
	}

	clients, err := registry.New(registry.NewFileStore(cfg.RegistryPath()), cfg.Registry.FuzzyThreshold)
	if err != nil {
		return fmt.Errorf("error loading client registry: %w", err)
	}
	fmt.Printf("✓ Client registry loaded (%d clients)\n", len(clients.List()))

	seedRegistry(ctx, store, clients)

	channel := channels.NewSlackChannel(cfg.Slack.BotToken, cfg.Slack.AppToken, cfg.Slack.UploadPolicy)
	conv := channels.NewSlackConversation(channel.API())
	fetcher := channels.NewSlackFileFetcher(channel.API(), cfg.Slack.BotToken)
	wf := workflow.New(conv, fetcher, store, clients, cfg.Slack.SuggestLimit)
	channel.SetWorkflow(wf)

	if err := channel.Start(ctx); err != nil {
		return fmt.Errorf("error starting slack channel: %w", err)
	}
	fmt.Printf("✓ Slack channel started (policy: %s)\n", cfg.Slack.UploadPolicy)

	healthServer := health.NewServer(cfg.Gateway.Host, cfg.Gateway.Port)
	go func() {
		if err := healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorCF("health", "Health server error", map[string]any{"error": err.Error()})
		}
	}()
	healthServer.SetReady(true)
	fmt.Printf("✓ Health endpoints available at http://%s:%d/health and /ready\n",
		cfg.Gateway.Host, cfg.Gateway.Port)

	fmt.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	<-sigChan

	fmt.Println("\nShutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	healthServer.Stop(shutdownCtx)
	channel.Stop(shutdownCtx)
	fmt.Println("✓ Gateway stopped")

	return nil
}

// seedRegistry merges client directories already present in the storage
// bucket into the in-memory registry. Discovery failures are not fatal: the
// persisted registry still serves suggestions.
func seedRegistry(ctx context.Context, store sojourner.Client, clients *registry.Registry) {
	listCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	dirs, err := store.ListAllDirectories(listCtx)
	if err != nil {
		logger.WarnCF("gateway", "client directory discovery failed", map[string]any{
			"error": err.Error(),
		})
		return
	}
	clients.Seed(dirs...)
	logger.InfoCF("gateway", "registry seeded from storage", map[string]any{
		"discovered": len(dirs),
	})
}
