package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nathanyu/limitbook/internal/gateway"
	"github.com/nathanyu/limitbook/internal/handler"
	"github.com/nathanyu/limitbook/internal/marketdata"
	"github.com/nathanyu/limitbook/internal/matching"
	"github.com/nathanyu/limitbook/internal/middleware"
	"github.com/nathanyu/limitbook/internal/sequencer"
)

const channelBufferSize = 4096

func main() {
	log.Println("Starting limitbook...")

	// --- Core components ---

	// Matching engine (the single-instrument book and matching algorithm)
	engine := matching.NewEngine()

	// Sequencer (single-writer wrapper, stamps outbound sequence IDs)
	seq := sequencer.NewSequencer(engine, channelBufferSize)

	// Gateway (assigns client order ids, translates HTTP requests to domain orders)
	gw := gateway.NewGateway(channelBufferSize)

	// Market data publisher (candlesticks, price history, websocket feed)
	publisher := marketdata.NewPublisher(channelBufferSize)

	// --- Wire channels ---
	//
	// API Handler → Gateway → [OrderOut] → Sequencer [OrderIn]
	//                                         ↓
	// Market Data Publisher ← [ExecutionOut] ← Sequencer
	//
	// The sequencer is the sole caller of the engine's mutating methods;
	// everything upstream and downstream of it only ever touches channels.

	go func() {
		for event := range gw.OrderOut {
			seq.OrderIn <- event
		}
	}()

	go func() {
		for event := range seq.ExecutionOut {
			select {
			case publisher.ExecutionIn <- event:
			default:
				log.Println("[main] WARN: market data execution channel full")
			}
		}
	}()

	seq.Start()
	publisher.Start()

	// --- HTTP Server ---
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	r := gin.Default()
	r.Use(middleware.PrometheusMiddleware())

	h := handler.NewHandler(gw, engine, publisher)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// --- Metrics Server ---
	metricsPort := os.Getenv("METRICS_PORT")
	if metricsPort == "" {
		metricsPort = "9090"
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    ":" + metricsPort,
		Handler: metricsMux,
	}

	// Start servers
	go func() {
		log.Printf("Metrics server listening on :%s", metricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server error: %v", err)
		}
	}()

	go func() {
		log.Printf("HTTP server listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seq.Stop()
	publisher.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	if err := metricsSrv.Shutdown(ctx); err != nil {
		log.Printf("Metrics server shutdown error: %v", err)
	}

	log.Println("limitbook stopped.")
}
