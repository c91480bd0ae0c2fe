package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-zoe"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(flags *rootFlags) *cobra.Command {
	var (
		addr  string
		build bool
	)

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the output directory over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withModule(flags, func(res *moduleResources) error {
				if build {
					msg := zoe.BuildSiteCommand{ResultCallback: func(env zoe.ResultEnvelope) {
						printBuild(cmd.OutOrStdout(), env.Result)
					}}
					if err := res.handlers.build.Execute(cmd.Context(), msg); err != nil {
						return err
					}
				}

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				server := &http.Server{
					Addr:              addr,
					Handler:           newSiteRouter(res.outputDir),
					ReadHeaderTimeout: 10 * time.Second,
				}
				fmt.Fprintf(cmd.OutOrStdout(), "serving %s on http://%s\n", res.outputDir, addr)
				return listen(ctx, server)
			})
		},
	}

	c.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	c.Flags().BoolVar(&build, "build", true, "build the site before serving")
	return c
}

// newSiteRouter serves dir as a static site. Extensionless paths fall back
// to "<path>.html", which is where pages land when trailing slashes are off.
// Unknown paths get the rendered 404 page when one exists.
func newSiteRouter(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	notFound := notFoundHandler(dir)

	serve := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		name, ok := resolveSiteFile(dir, ps.ByName("filepath"))
		if !ok {
			notFound.ServeHTTP(w, r)
			return
		}
		if name != r.URL.Path {
			r = r.Clone(r.Context())
			r.URL.Path = name
			r.URL.RawPath = ""
		}
		files.ServeHTTP(w, r)
	}

	router := httprouter.New()
	router.GET("/*filepath", serve)
	router.HEAD("/*filepath", serve)
	router.NotFound = notFound
	return router
}

// resolveSiteFile maps a request path to the URL path of the file to serve.
func resolveSiteFile(dir, name string) (string, bool) {
	clean := path.Clean("/" + name)
	target := filepath.Join(dir, filepath.FromSlash(clean))
	if info, err := os.Stat(target); err == nil {
		if !info.IsDir() {
			return "/" + strings.TrimPrefix(name, "/"), true
		}
		if _, err := os.Stat(filepath.Join(target, "index.html")); err == nil {
			return "/" + strings.TrimPrefix(name, "/"), true
		}
	}
	if clean == "/" || path.Ext(clean) != "" {
		return "", false
	}
	if info, err := os.Stat(target + ".html"); err == nil && !info.IsDir() {
		return clean + ".html", true
	}
	return "", false
}

func notFoundHandler(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := os.ReadFile(filepath.Join(dir, "404.html"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write(page)
	})
}

func listen(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
