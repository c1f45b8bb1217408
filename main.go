// Command landmines starts the landmines board game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, config directory, results database, debug logging,
// version output, and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/landmines/api"
	"github.com/wricardo/mcp-training/landmines/game/config"
	"github.com/wricardo/mcp-training/landmines/game/results"
	"github.com/wricardo/mcp-training/landmines/game/service"
	"github.com/wricardo/mcp-training/landmines/game/session"
	"github.com/wricardo/mcp-training/landmines/transport/mcp"
	"github.com/wricardo/mcp-training/landmines/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Landmines Board Game Server"
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	configDir    = flag.String("config-dir", envDefault("CONFIG_DIR", "configs"), "Directory containing game configurations")
	resultsDB    = flag.String("results-db", envDefault("RESULTS_DB", "results.db"), "SQLite file for finished match results (empty disables recording)")
	sessionTTL   = flag.Duration("session-ttl", 24*time.Hour, "Remove sessions not accessed for this long")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// envDefault returns the environment variable key, or fallback when unset.
func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                    # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -port 9090         # Run HTTP server on port 9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp          # Run MCP stdio server\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s mcp -port 9090     # Run MCP stdio server with internal HTTP on port 9090\n", os.Args[0])
	}
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn("error loading .env file", "err", err)
		}
	} else {
		log.Info("loaded environment variables from .env file")
	}

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	log.SetReportTimestamp(true)
	if *debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportCaller(true)
	}

	args := flag.Args()
	mode := "server"
	if len(args) > 0 {
		mode = args[0]
	}

	log.Info("starting", "app", AppName, "version", Version, "mode", mode)

	svc, err := initializeServices()
	if err != nil {
		log.Fatal("failed to initialize services", "err", err)
	}
	defer svc.Close()

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCPWithInternalServer(svc)

	case "server", "http":
		runHTTPServer(svc)

	default:
		log.Fatal("unknown mode, use 'server' (default) or 'stdio-mcp'", "mode", mode)
	}
}

// services bundles everything the run modes need
type services struct {
	game     service.GameService
	sessions *session.Manager
	hub      *websocket.Hub
	results  results.Store

	stopCleanup context.CancelFunc
}

// Close stops background work and releases the results database
func (s *services) Close() {
	s.stopCleanup()
	s.sessions.Close()
	s.hub.Close()
	if s.results != nil {
		if err := s.results.Close(); err != nil {
			log.Warn("failed to close results store", "err", err)
		}
	}
}

// initializeServices wires config, session and results stores, the websocket
// hub and the game service. It also starts a background routine that prunes
// stale sessions.
func initializeServices() (*services, error) {
	configManager, err := config.NewManager(*configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	opts := []service.Option{service.WithPublisher(hub)}

	var store results.Store
	if *resultsDB != "" {
		sqlite, err := results.NewSQLiteStore(*resultsDB)
		if err != nil {
			hub.Close()
			return nil, fmt.Errorf("failed to open results database: %w", err)
		}
		store = sqlite
		opts = append(opts, service.WithResults(store))
		log.Info("recording match results", "db", *resultsDB)
	}

	sessionManager := session.NewManager()
	gameService := service.NewGameService(sessionManager, configManager, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	go sessionCleanupRoutine(ctx, sessionManager, time.Hour, *sessionTTL)

	return &services{
		game:        gameService,
		sessions:    sessionManager,
		hub:         hub,
		results:     store,
		stopCleanup: cancel,
	}, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within maxAge.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, every, maxAge time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.Info("cleaned up expired sessions", "removed", removed, "active", manager.Count())
			}
		}
	}
}

// mcpHandler serves single JSON-RPC messages against the MCP server
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newRouter combines the REST API, WebSocket and /mcp endpoints
func newRouter(svc *services, baseURL string) http.Handler {
	apiServer := api.NewServer(svc.game, svc.hub)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcp.NewClient(baseURL)))
	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(svc *services) {
	addr := fmt.Sprintf("%s:%d", *host, *port)
	mainRouter := newRouter(svc, fmt.Sprintf("http://%s", addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info("HTTP server listening", "addr", addr)
		log.Info("endpoints",
			"api", fmt.Sprintf("http://%s/api", addr),
			"ws", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp", fmt.Sprintf("http://%s/mcp", addr))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", "err", err)
		}
	}()

	ngrokShouldRun := *ngrokEnabled
	if !ngrokShouldRun {
		if envEnabled := os.Getenv("NGROK_ENABLED"); envEnabled == "true" || envEnabled == "1" {
			ngrokShouldRun = true
		}
	}

	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, mainRouter)
		}()
	}

	sig := <-stop
	log.Info("shutting down", "signal", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "err", err)
	}

	wg.Wait()
	log.Info("server stopped")
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done
func runNgrokTunnel(ctx context.Context, handler http.Handler) {
	// Support both naming conventions for the token
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTHTOKEN")
		if authToken == "" {
			authToken = os.Getenv("NGROK_AUTH_TOKEN")
		}
	}

	if authToken == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Info("starting ngrok tunnel")

	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Info("using custom ngrok domain", "domain", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error("failed to start ngrok tunnel", "err", err)
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Warn("failed to close ngrok tunnel", "err", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Info("🚀 ngrok tunnel established", "url", ngrokURL,
		"api", ngrokURL+"/api", "ws", ngrokURL+"/ws?session=<session_id>", "mcp", ngrokURL+"/mcp")

	go func() {
		<-ctx.Done()
		tun.Close()
	}()

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Debug("ngrok server stopped", "err", err)
	}
	log.Info("ngrok tunnel closed")
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at http://localhost:<port>; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(svc *services) {
	var baseURL string

	externalURL := fmt.Sprintf("http://localhost:%d", *port)
	log.Info("checking for external API server", "url", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil && resp.StatusCode == http.StatusOK {
		resp.Body.Close()
		log.Info("external API server found, using it for MCP", "url", externalURL)
		baseURL = externalURL
	} else {
		if resp != nil {
			resp.Body.Close()
		}
		log.Info("no external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.Fatal("failed to get available port", "err", err)
		}

		internalAddr := listener.Addr().String()
		log.Info("starting internal HTTP server for MCP stdio", "addr", internalAddr)

		httpServer := &http.Server{
			Handler: api.NewServer(svc.game, svc.hub),
		}
		defer httpServer.Close()

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Error("internal HTTP server error", "err", err)
			}
		}()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready", "api", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.Error("MCP stdio server error", "err", err)
	}
}
