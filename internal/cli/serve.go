package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/qmlfix/qmlfix/internal/server"
	"github.com/qmlfix/qmlfix/internal/style"
)

var (
	// Serve command flags
	servePort    int
	serveHost    string
	serveMetrics bool
	serveCORS    bool
	serveTimeout time.Duration
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP style rewrite service",
	Long: `Start an HTTP server that rewrites style documents via a REST API.

The server provides:
- POST /api/v1/rewrite accepting a style document plus layer field metadata
- Prometheus metrics endpoint
- Health check endpoint

Examples:
  qmlfix serve                          # Serve on localhost:8080
  qmlfix serve --port 9090 --host 0.0.0.0
  qmlfix serve --metrics=false          # Disable Prometheus metrics`,
	Run: func(cmd *cobra.Command, args []string) {
		config := server.DefaultConfig()
		config.Host = serveHost
		config.Port = servePort
		config.EnableMetrics = serveMetrics
		config.EnableCORS = serveCORS
		config.WriteTimeout = serveTimeout

		srv, err := server.New(config)
		if err != nil {
			style.Error(cmd.ErrOrStderr(), fmt.Sprintf("Failed to create server: %v", err))
			os.Exit(1)
		}

		style.Info(cmd.OutOrStdout(), fmt.Sprintf("Serving style rewrites on http://%s", srv.GetAddr()))
		if serveMetrics {
			style.Info(cmd.OutOrStdout(), fmt.Sprintf("Metrics available on http://%s/metrics", srv.GetAddr()))
		}

		if err := srv.StartWithGracefulShutdown(); err != nil {
			style.Error(cmd.ErrOrStderr(), fmt.Sprintf("Server error: %v", err))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "server port")
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "server host")
	serveCmd.Flags().BoolVar(&serveMetrics, "metrics", true, "enable Prometheus metrics endpoint")
	serveCmd.Flags().BoolVar(&serveCORS, "cors", true, "enable CORS headers")
	serveCmd.Flags().DurationVar(&serveTimeout, "timeout", 15*time.Second, "request write timeout")
}
