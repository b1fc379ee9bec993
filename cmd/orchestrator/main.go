// Command orchestrator runs the multi-agent orchestration HTTP server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashfrnndz21/agentmesh/catalog"
	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/ashfrnndz21/agentmesh/invoker"
	"github.com/ashfrnndz21/agentmesh/llmclient"
	"github.com/ashfrnndz21/agentmesh/orchestrator"
	"github.com/ashfrnndz21/agentmesh/resilience"
	"github.com/ashfrnndz21/agentmesh/server"
	"github.com/ashfrnndz21/agentmesh/telemetry"
	"github.com/ashfrnndz21/agentmesh/tracer"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := core.NewConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := core.NoOpLogger{}

	otelProvider, err := telemetry.NewOTelProvider(cfg.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		log.Printf("telemetry disabled: %v", err)
		otelProvider = nil
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelProvider.Shutdown(shutdownCtx); err != nil {
				log.Printf("telemetry shutdown: %v", err)
			}
		}()
	}

	store := catalog.NewStore()
	store.SetLogger(logger)

	var sink tracer.Sink = tracer.NoOpSink{}
	if cfg.RedisAddr != "" {
		sink = tracer.NewRedisSink(cfg.RedisAddr, logger)
	}
	trc := tracer.New(sink, logger)

	// Worker-agent HTTP calls carry otelhttp spans the same way the
	// reasoning LLM's own calls do below.
	agentInvoker := invoker.NewHTTPInvoker(store, telemetry.NewTracedHTTPClient(nil), logger)
	agentInvoker.SetMetrics(resilience.NewOTelMetricsCollector(context.Background()))

	var llm core.ReasoningLLM
	if os.Getenv("OPENAI_API_KEY") != "" {
		oaClient := llmclient.NewOpenAIClient("", logger)
		oaClient.SetHTTPClient(telemetry.NewTracedHTTPClient(nil))
		if otelProvider != nil {
			oaClient.SetTracer(otelProvider)
		}
		llm = oaClient
	}

	orch := orchestrator.New(store, trc, agentInvoker, llm, cfg, logger)
	handler := server.New(orch, store, trc, logger)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("orchestration server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
		log.Print("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
