package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codigovinario/vinario/internal/cli"
	"github.com/codigovinario/vinario/internal/watcher"
	"github.com/codigovinario/vinario/internal/web"
)

func serveCmd() *cobra.Command {
	var (
		addr     string
		watch    bool
		openFlag bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reviews site",
		Long: `Start the web server for the reviews section.

Examples:
  vinario serve                       # http://127.0.0.1:3000/resenas
  vinario serve --addr :8080          # Custom address
  vinario serve --watch --open        # Reload on edits and open a browser`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadRuntime()
			if err != nil {
				return err
			}
			defer env.close()

			if cmd.Flags().Changed("addr") {
				env.cfg.Web.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				env.cfg.Web.Watch = watch
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, env, openFlag)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on (default from config, 127.0.0.1:3000)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload reviews when content files change")
	cmd.Flags().BoolVar(&openFlag, "open", false, "Auto-open browser")
	return cmd
}

func runServe(ctx context.Context, env *runtimeEnv, openFlag bool) error {
	handler, err := web.NewHandler(env.store, web.OptionsFromConfig(env.cfg, Version), env.logger.Named("web"))
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", env.cfg.Web.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", env.cfg.Web.Addr, err)
	}

	url := fmt.Sprintf("http://%s%s", ln.Addr(), env.cfg.Site.BasePath)
	cli.Header(os.Stderr, env.cfg.Site.Title)
	cli.Box(os.Stderr, []string{
		"Reseñas:   " + cli.FormatNumber(env.store.Snapshot().Len()),
		"Contenido: " + cli.ShortenHome(env.cfg.Content.Dir),
		"URL:       " + url,
	})

	if env.cfg.Web.Watch {
		go func() {
			err := watcher.Watch(ctx, env.cfg.Content.Dir, env.cfg.Content.Extensions, env.store.Reload, env.logger.Named("watcher"))
			if err != nil {
				env.logger.Error("content watcher stopped", zap.Error(err))
			}
		}()
	}
	if openFlag {
		go openBrowser(url)
	}

	return web.Serve(ctx, ln, handler, env.logger.Named("web"))
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return
	}
	cmd.Run()
}
