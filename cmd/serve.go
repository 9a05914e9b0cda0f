package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/marcus/folio/internal/config"
	"github.com/marcus/folio/internal/serve"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve uploaded images and document history over HTTP",
	Long: `Start an HTTP server for the project's uploads. Images stored by folio are
served at /media/<hash>, the source image blocks use, so documents render in
markdown viewers pointed at this server. A small JSON API lists documents,
snapshots and uploads, and accepts new uploads unless --read-only is set.

If --port is 0 (the default), a random available port is assigned.
The actual port is written to .folio/media-port for discovery.`,
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (0 = auto-assign)")
	serveCmd.Flags().StringP("addr", "a", "localhost", "Address to bind to")
	serveCmd.Flags().String("cors", "", "Allowed CORS origin (optional, e.g. http://localhost:3000)")
	serveCmd.Flags().Bool("read-only", false, "Reject uploads")
}

func runServe(cmd *cobra.Command, args []string) error {
	p, err := openProject(false)
	if err != nil {
		return fmt.Errorf("open project: %w", err)
	}
	defer p.Close()

	// Limit connections for long-running server process
	p.db.SetMaxOpenConns(1)

	uploader, err := p.newUploader()
	if err != nil {
		return err
	}

	port, _ := cmd.Flags().GetInt("port")
	addr, _ := cmd.Flags().GetString("addr")
	cors, _ := cmd.Flags().GetString("cors")
	readOnly, _ := cmd.Flags().GetBool("read-only")

	srv := serve.NewServer(p.db, uploader, p.log.Logger, serve.ServeConfig{
		Port:         port,
		Addr:         addr,
		CORSOrigin:   cors,
		MaxBodyBytes: config.MaxUploadBytes(p.cfg),
		ReadOnly:     readOnly,
	})

	ln, err := srv.Listen()
	if err != nil {
		return err
	}
	actualPort := ln.Addr().(*net.TCPAddr).Port

	if err := serve.WritePortFile(p.dir, &serve.PortInfo{
		Port:       actualPort,
		PID:        os.Getpid(),
		StartedAt:  time.Now(),
		InstanceID: serve.GenerateInstanceID(),
	}); err != nil {
		ln.Close()
		return fmt.Errorf("write port file: %w", err)
	}
	defer func() {
		if err := serve.DeletePortFile(p.dir); err != nil {
			p.log.Warn("delete port file", "err", err)
		}
	}()

	fmt.Fprintf(os.Stderr, "folio serve listening on http://%s:%d\n", addr, actualPort)
	fmt.Fprintf(os.Stderr, "  base dir:   %s\n", p.dir)
	fmt.Fprintf(os.Stderr, "  database:   %s\n", filepath.Join(p.dir, ".folio", "folio.db"))
	fmt.Fprintf(os.Stderr, "  log file:   %s\n", p.log.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p.log.Info("serve started", "port", actualPort, "read_only", readOnly)
	if err := srv.Serve(ctx, ln); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	p.log.Info("serve stopped")
	return nil
}
