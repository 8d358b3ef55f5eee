package secretsweep

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpserver "github.com/accrava/secretsweep/internal/mcp"
	apiserver "github.com/accrava/secretsweep/internal/server"
)

var (
	flagAddr    string
	flagMCPPort int
)

func init() {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the checker over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gcfg, lcfg := loadConfigs()
			ecfg, err := engineConfig(lcfg, gcfg)
			if err != nil {
				return err
			}
			addr := pickString(flagAddr, lcfg.Addr, gcfg.Addr)
			if addr == "" {
				addr = "127.0.0.1:8088"
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "secretsweep API listening on %s\n", addr)
			return apiserver.New(ecfg).ListenAndServe(cmd.Context(), addr)
		},
	}
	addFilterFlags(serve)
	serve.Flags().StringVar(&flagAddr, "addr", "", "listen address (default 127.0.0.1:8088)")
	rootCmd.AddCommand(serve)

	mcp := &cobra.Command{
		Use:   "mcp",
		Short: "Run as MCP server (stdio, or SSE with --port)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gcfg, lcfg := loadConfigs()
			ecfg, err := engineConfig(lcfg, gcfg)
			if err != nil {
				return err
			}
			srv := mcpserver.NewSweepServer(ecfg, version)
			if flagMCPPort > 0 {
				return server.NewSSEServer(srv.MCPServer(),
					server.WithBaseURL(fmt.Sprintf("http://localhost:%d", flagMCPPort)),
				).Start(fmt.Sprintf(":%d", flagMCPPort))
			}
			return server.NewStdioServer(srv.MCPServer()).Listen(cmd.Context(), os.Stdin, os.Stdout)
		},
	}
	addFilterFlags(mcp)
	mcp.Flags().IntVarP(&flagMCPPort, "port", "p", 0, "port to listen on (0 = stdio)")
	rootCmd.AddCommand(mcp)
}
