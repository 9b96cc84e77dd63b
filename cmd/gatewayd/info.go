package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emergent-company/gatewayd/internal/config"
	"github.com/emergent-company/gatewayd/internal/mcp"
	"github.com/emergent-company/gatewayd/internal/schema"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the resolved configuration, models, and tool catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo()
		},
	}
}

func runInfo() error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	parsed, err := schema.Parse(cfg.RawSchema())
	if err != nil {
		return fmt.Errorf("parsing schema: %w", err)
	}
	types := schema.NewTypeRegistry(parsed, nil)

	fmt.Fprintf(os.Stdout, "gatewayd %s — schema-driven API gateway\n\n", Version)
	fmt.Fprintf(os.Stdout, "SERVER\n")
	fmt.Fprintf(os.Stdout, "  name:        %s\n", cfg.Server.Name)
	fmt.Fprintf(os.Stdout, "  listen:      %s:%s\n", cfg.Transport.Host, cfg.Transport.Port)
	fmt.Fprintf(os.Stdout, "  base path:   %q\n", cfg.REST.BasePath)
	fmt.Fprintf(os.Stdout, "  meta prefix: %q\n", cfg.MetaPrefix)
	fmt.Fprintf(os.Stdout, "  id format:   %s\n", cfg.ID.Format)
	fmt.Fprintf(os.Stdout, "  auth mode:   %s\n", cfg.Auth.Mode)
	fmt.Fprintf(os.Stdout, "  mcp:         enabled=%v prefix=%q\n\n", cfg.MCP.Enabled, cfg.MCP.Prefix)

	fmt.Fprintf(os.Stdout, "MODELS (%d)\n", len(parsed.ModelOrder))
	for _, m := range parsed.OrderedModels() {
		num, _ := types.TypeNum(m.Name)
		fmt.Fprintf(os.Stdout, "  %-3d %-20s /%s (%d fields, pk=%s)\n",
			num, m.Name, m.Plural, len(m.FieldOrder), m.PrimaryKey)
	}

	tools := mcp.DeriveModelTools(parsed, cfg.MCP.Prefix)
	fmt.Fprintf(os.Stdout, "\nDERIVED TOOLS (%d, route-only)\n", len(tools))
	for _, t := range tools {
		fmt.Fprintf(os.Stdout, "  %-32s -> %s\n", t.Name(), t.RESTPath())
	}

	return nil
}
