package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/strataviz/stratum/pkg/pipeline"
)

// serveCommand creates the serve command for exposing scenes over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var flags buildFlags
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a built scene and its previews over HTTP",
		Long: `Serve a built scene and its previews over HTTP.

The scene is assembled once at startup from the configured source and kept
in memory. Endpoints:

  GET /            interactive HTML layout preview
  GET /scene.json  full scene description
  GET /scene.dot   connectivity projection (DOT)
  GET /scene.svg   connectivity projection (rendered SVG)
  GET /healthz     liveness probe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(c)
			if err != nil {
				return err
			}
			opts.Formats = []string{
				pipeline.FormatJSON,
				pipeline.FormatDOT,
				pipeline.FormatSVG,
				pipeline.FormatHTML,
			}
			return c.runServe(cmd.Context(), opts, &flags, addr)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8420", "listen address")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts pipeline.Options, flags *buildFlags, addr string) error {
	runner, err := c.newRunner(ctx, flags.noCache, flags.redisAddr)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Assembled %d neurons, %d edges", result.Stats.NeuronCount, result.Stats.EdgeCount))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(loggerFromContext(ctx)))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Get("/", artifactHandler(result.Artifacts[pipeline.FormatHTML], "text/html; charset=utf-8"))
	router.Get("/scene.json", artifactHandler(result.Artifacts[pipeline.FormatJSON], "application/json"))
	router.Get("/scene.dot", artifactHandler(result.Artifacts[pipeline.FormatDOT], "text/vnd.graphviz"))
	router.Get("/scene.svg", artifactHandler(result.Artifacts[pipeline.FormatSVG], "image/svg+xml"))

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	printSuccess("Serving scene")
	printDetail("address: http://localhost%s", addr)
	printDetail("build:   %s", result.Scene.BuildID)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// artifactHandler serves a pre-rendered artifact from memory.
func artifactHandler(data []byte, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(data)
	}
}

// requestLogger logs completed requests at debug level.
func requestLogger(l *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			l.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).Round(time.Millisecond))
		})
	}
}
