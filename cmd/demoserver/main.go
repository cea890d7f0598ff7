// Command demoserver runs a coreconf request handler behind a WebSocket
// listener, the illustrative transport substitute described in
// transportclient's package doc. It loads a YANG SID catalog and an
// optional initial datastore snapshot, then serves GET/FETCH/iPATCH/POST
// requests framed as transportclient.Frame/ResponseFrame CBOR messages.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samsirohi11/coreconf/coreconf"
	"github.com/samsirohi11/coreconf/datastore"
	"github.com/samsirohi11/coreconf/internal/coreconfig"
	"github.com/samsirohi11/coreconf/internal/coreconflog"
	"github.com/samsirohi11/coreconf/internal/coreconfmetrics"
	"github.com/samsirohi11/coreconf/sidcat"
	"github.com/samsirohi11/coreconf/transportclient"
)

func main() {
	help := flag.Bool("help", false, "display help message")
	configFile := flag.String("config", "", "path to a YAML config override file")
	flag.Parse()

	if *help {
		fmt.Println("coreconf demo server")
		fmt.Println()
		fmt.Println("Usage: demoserver [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := coreconfig.Load(*configFile)
	if len(errs) != 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config error:", err)
		}
		os.Exit(1)
	}

	logger := coreconflog.New(cfg.Env)
	logger.Info("starting coreconf demo server", "config", cfg.LogSummary())

	catalog, err := sidcat.LoadFile(cfg.SidFilePath)
	if err != nil {
		logger.Error("failed to load SID catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("loaded SID catalog", "module", catalog.ModuleName)

	var ds *datastore.Datastore
	if cfg.DatastorePath != "" {
		raw, err := os.ReadFile(cfg.DatastorePath)
		if err != nil {
			logger.Error("failed to read datastore file", "error", err)
			os.Exit(1)
		}
		var data any
		if err := json.Unmarshal(raw, &data); err != nil {
			logger.Error("failed to parse datastore JSON", "error", err)
			os.Exit(1)
		}
		ds = datastore.WithData(catalog, data)
	} else {
		ds = datastore.New(catalog)
	}

	var metrics *coreconfmetrics.Metrics
	promRegistry := prometheus.NewRegistry()
	if cfg.MetricsEnabled {
		metrics = coreconfmetrics.NewMetrics()
		if err := metrics.Register(promRegistry); err != nil {
			logger.Error("failed to register metrics", "error", err)
			os.Exit(1)
		}
	}

	handlerOpts := []coreconf.HandlerOption{
		coreconf.WithLogger(logger),
		coreconf.WithTransactional(cfg.Transactional),
	}
	if metrics != nil {
		handlerOpts = append(handlerOpts, coreconf.WithMetrics(metrics))
	}
	server := coreconf.NewServer(coreconf.NewHandler(ds, handlerOpts...))

	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(_ *http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/coreconf", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()
		serveConn(r.Context(), conn, server, logger)
	})
	if cfg.MetricsEnabled {
		mux.Handle("/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
}

// serveConn reads frames from conn until it closes, dispatching each to
// server and writing back the encoded response.
func serveConn(ctx context.Context, conn *websocket.Conn, server *coreconf.Server, logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		request, err := transportclient.DecodeFrame(payload)
		if err != nil {
			logger.Warn("failed to decode frame", "error", err)
			continue
		}

		response := server.Handle(ctx, request)

		encoded, err := transportclient.EncodeResponseFrame(response)
		if err != nil {
			logger.Error("failed to encode response frame", "error", err)
			continue
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, encoded); err != nil {
			return
		}
	}
}
