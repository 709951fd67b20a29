package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudshipai/codemode-gateway/internal/config"
	"github.com/cloudshipai/codemode-gateway/internal/logging"
	gatewaymcp "github.com/cloudshipai/codemode-gateway/internal/mcp"
	"github.com/cloudshipai/codemode-gateway/internal/registry"
)

var (
	cfgFile   string
	httpAddr  string
	debugMode bool

	rootCmd = &cobra.Command{
		Use:   "codemode-gateway",
		Short: "Codemode execution core for an MCP gateway",
		Long:  "Collapses a fleet of backend MCP servers into a search/execute tool pair: a dynamic-code sandbox that proxies a curated capability object to the gateway's internal session.",
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Connect configured backend servers and serve codemode_search/codemode_execute",
		RunE:  runServe,
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect or validate gateway configuration",
	}

	configValidateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file without starting the server",
		RunE:  runConfigValidate,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (YAML/JSON)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	serveCmd.Flags().StringVar(&httpAddr, "http", "", "serve over streamable HTTP at this address instead of stdio (e.g. :8090)")

	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logging.Initialize(debugMode)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	reg := registry.New()
	ctx := context.Background()
	for name, serverCfg := range cfg.Servers {
		if err := reg.AddServer(ctx, name, serverCfg); err != nil {
			logging.Error("failed to connect backend server %q: %v", name, err)
		}
	}
	defer reg.Shutdown()

	gw := gatewaymcp.NewServer(reg, cfg.Sandbox)

	if cmd.Flags().Changed("http") {
		return gw.ServeHTTP(httpAddr)
	}
	return gw.ServeStdio()
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	fmt.Println("configuration valid")
	return nil
}
