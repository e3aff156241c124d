package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/soaringjerry/tuneup/internal/api"
	"github.com/soaringjerry/tuneup/internal/middleware"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API, print view and frontend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			a, err := newApp(ctx, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); cerr != nil {
					opts.logger.Warn("close app", zap.Error(cerr))
				}
			}()
			return serve(ctx, a)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default :8080)")
	cmd.Flags().String("static-dir", "", "Serve the built frontend from this directory")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	handler, err := newHandler(a)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("tuneup server listening", zap.String("addr", a.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownGrace)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		a.svc.Flush()
		a.logger.Info("tuneup server stopped")
		return err
	})
	return g.Wait()
}

// newHandler builds the full middleware chain around the API and frontend.
func newHandler(a *app) (http.Handler, error) {
	cfg := a.cfg
	mux := http.NewServeMux()
	router := api.NewRouter(a.svc, api.RouterOptions{
		Radar:        a.radarOptions(),
		SVGCacheSize: cfg.Radar.SVGCacheSize,
		Recorder:     a.metrics,
		Logger:       a.logger.Named("api"),
	})
	router.Register(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{
			"ok":         true,
			"name":       "tuneup",
			"commit":     cfg.Commit,
			"build_time": cfg.BuildTime,
			"storage":    cfg.Storage.Driver,
		}
		status := http.StatusOK
		if a.ping != nil {
			if err := a.ping(r.Context()); err != nil {
				body["ok"] = false
				body["error"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     cfg.Commit,
			"build_time": cfg.BuildTime,
		})
	})
	mux.Handle("/metrics", a.metrics.Handler())

	// Frontend: static files when configured, else a dev proxy.
	switch {
	case cfg.StaticDir != "":
		mux.Handle("/", router.HydrateShareLinks(http.FileServer(http.Dir(cfg.StaticDir))))
	case cfg.DevFrontendURL != "":
		u, err := url.Parse(cfg.DevFrontendURL)
		if err != nil {
			return nil, fmt.Errorf("invalid dev_frontend_url %q: %w", cfg.DevFrontendURL, err)
		}
		rp := httputil.NewSingleHostReverseProxy(u)
		rp.ModifyResponse = func(res *http.Response) error {
			middleware.SetNoStore(res.Header)
			return nil
		}
		mux.Handle("/", router.HydrateShareLinks(rp))
	}

	var h http.Handler = mux
	h = middleware.AccessLog(a.logger.Named("http"), a.metrics)(h)
	h = middleware.RequestID(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)
	h = middleware.SecureHeaders(h)
	h = middleware.NoStore(h)
	return h, nil
}
