package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/figura/internal/asset"
	"github.com/inamate/figura/internal/auth"
	"github.com/inamate/figura/internal/collab"
	"github.com/inamate/figura/internal/config"
	"github.com/inamate/figura/internal/db"
	"github.com/inamate/figura/internal/document"
	mw "github.com/inamate/figura/internal/middleware"
	"github.com/inamate/figura/internal/project"
	"github.com/inamate/figura/internal/render"
)

// The playground drawing is shared, anonymous and never stored.
const playgroundDrawingID = "drw_playground"

const autosaveInterval = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		slog.Error("migrate database", "error", err)
		os.Exit(1)
	}
	store := db.NewSnapshotStore(pool)

	fonts, err := render.NewFonts()
	if err != nil {
		slog.Error("load fonts", "error", err)
		os.Exit(1)
	}

	assetStore, err := asset.NewStore(cfg.AssetDir)
	if err != nil {
		slog.Error("open asset store", "error", err)
		os.Exit(1)
	}
	assetHandler := asset.NewHandler(assetStore)

	authService := auth.NewService(cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	projectService := project.NewService(store, assetStore, fonts, cfg.Settings())
	projectHandler := project.NewHandler(projectService, cfg.PreviewSize)

	// Document loader for the collaboration hub
	docLoader := func(ctx context.Context, drawingID string) (*document.Document, error) {
		if drawingID == playgroundDrawingID {
			return document.NewSampleDocument(drawingID), nil
		}
		return projectService.LatestDocument(ctx, drawingID)
	}

	// Document saver for the collaboration hub
	docSaver := func(ctx context.Context, drawingID string, doc *document.Document) (int, error) {
		if drawingID == playgroundDrawingID {
			return 0, nil
		}
		return projectService.SaveDocument(ctx, drawingID, doc)
	}

	hub := collab.NewHub(collab.Config{
		Settings:         cfg.Settings(),
		Measurer:         fonts,
		Load:             docLoader,
		Save:             docSaver,
		Assets:           asset.NewLoader(assetStore),
		AutosaveInterval: autosaveInterval,
	})
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Auth routes (public)
	r.HandleFunc("/auth/guest", authHandler.Guest).Methods("POST", "OPTIONS")
	r.Handle("/auth/me", authService.AuthMiddleware(http.HandlerFunc(authHandler.Me))).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Stored assets are public; their ids are unguessable
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST")
	api.HandleFunc("/assets/{id}", assetHandler.Delete).Methods("DELETE")
	projectHandler.Routes(api)

	// WebSocket endpoint
	r.HandleFunc("/ws/drawing/{drawingId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, projectService, cfg.Origins())
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first to save all dirty drawings
		slog.Info("saving all drawings...")
		cancel()
		<-hubDone

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, projects *project.Service, origins []string) {
	drawingID := mux.Vars(r)["drawingId"]

	var userID string
	var displayName string

	if drawingID == playgroundDrawingID {
		// Anonymous user for playground
		userID = "anon-" + uuid.New().String()[:8]
		displayName = "Anonymous"
	} else {
		// Auth via query param for stored drawings
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		user, err := authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		userID, displayName = user.ID, user.DisplayName

		if _, err := projects.Get(r.Context(), drawingID); err != nil {
			if errors.Is(err, project.ErrNotFound) {
				http.Error(w, "drawing not found", http.StatusNotFound)
				return
			}
			slog.Error("websocket drawing lookup", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := collab.NewClient(hub, conn, collab.Identity{
		UserID:      userID,
		DisplayName: displayName,
		DrawingID:   drawingID,
		ClientID:    uuid.New().String(),
	})

	if err := hub.Register(client); err != nil {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
