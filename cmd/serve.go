package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/eddm-planner/internal/model"
	"github.com/sells-group/eddm-planner/internal/optimizer"
	"github.com/sells-group/eddm-planner/internal/roi"
	"github.com/sells-group/eddm-planner/internal/session"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the planning JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPlanner(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the API router. Factored out of the command so tests can
// mount it on an httptest server.
func newRouter(env *plannerEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/quote", env.handleQuote)
		r.Post("/optimize", env.handleOptimize)
		r.Post("/roi", env.handleROI)
		r.Get("/routes", env.handleRoutes)
	})
	return r
}

func (e *plannerEnv) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int    `json:"quantity"`
		Product  string `json:"product"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity < 0 {
		writeJSONError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}

	table, err := e.table(req.Product)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, table.PriceFor(req.Quantity))
}

func (e *plannerEnv) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ZIPs     []string `json:"zips"`
		Budget   float64  `json:"budget"`
		Delivery string   `json:"delivery"`
		Product  string   `json:"product"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.ZIPs) == 0 {
		writeJSONError(w, http.StatusBadRequest, "zips is required")
		return
	}
	if req.Budget <= 0 {
		writeJSONError(w, http.StatusBadRequest, "budget must be positive")
		return
	}
	dt, err := model.ParseDeliveryType(req.Delivery)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	table, err := e.table(req.Product)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	routesByZIP, err := e.fetchRoutes(r.Context(), req.ZIPs)
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}

	sess := session.New()
	sess.SetDeliveryType(dt)
	for zip, routes := range routesByZIP {
		sess.MergeRoutes(zip, routes)
	}

	writeJSON(w, http.StatusOK, optimizer.Optimize(sess.InScope(), dt, table, req.Budget))
}

func (e *plannerEnv) handleROI(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Addresses int     `json:"addresses"`
		Cost      float64 `json:"cost"`
		Industry  string  `json:"industry"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := e.profile(req.Industry)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, roi.Project(req.Addresses, req.Cost, profile))
}

func (e *plannerEnv) handleRoutes(w http.ResponseWriter, r *http.Request) {
	zips := splitParam(r.URL.Query().Get("zips"))
	if len(zips) == 0 {
		writeJSONError(w, http.StatusBadRequest, "zips query parameter is required")
		return
	}

	routesByZIP, err := e.fetchRoutes(r.Context(), zips)
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, routesByZIP)
}

func splitParam(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
