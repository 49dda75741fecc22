// Package cmd wires configuration, logging and the cluster client into the
// k8s-assess command tree.
package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pat-nel87/k8s-assess-mcp/pkg/config"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/k8s"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/logging"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/server"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/tools"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/util"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/worker"
)

// Version is stamped at build time.
var Version = "0.1.0"

type app struct {
	configPath string
	stdout     io.Writer
}

// NewRootCommand returns the k8s-assess command. Without a subcommand it
// serves on stdio.
func NewRootCommand() *cobra.Command {
	return newRootCommand(os.Stdout)
}

func newRootCommand(out io.Writer) *cobra.Command {
	a := &app{stdout: out}

	cmd := &cobra.Command{
		Use:           "k8s-assess",
		Short:         "Kubernetes cluster assessment tools over MCP",
		Long:          "k8s-assess exposes read-only cluster health, resource usage, diagnostics and service mesh checks as MCP tools.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd, tools.VariantStdio)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	pf.String("kubeconfig", "", "path to the kubeconfig file")
	pf.String("context", "", "kubeconfig context to use")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.Int("workers", util.DefaultWorkers, "maximum concurrent tool fetches")

	cmd.AddCommand(
		newStdioCmd(a),
		newHTTPCmd(a),
		newToolsCmd(a),
	)
	return cmd
}

func newStdioCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve MCP over stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd, tools.VariantStdio)
		},
	}
}

func newHTTPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve MCP over streamable HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd, tools.VariantHTTP)
		},
	}
	cmd.Flags().String("addr", config.DefaultConfig().Server.Address, "listen address")
	return cmd
}

func newToolsCmd(a *app) *cobra.Command {
	var variant string
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools a transport exposes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			descs, err := tools.Descriptors(tools.Variant(variant))
			if err != nil {
				return err
			}
			for _, d := range descs {
				scope := ""
				if d.Namespaced {
					scope = " [namespace]"
				}
				fmt.Fprintf(a.stdout, "%s%s\n    %s\n", d.Name, scope, d.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&variant, "variant", string(tools.VariantHTTP), "transport variant (stdio or http)")
	return cmd
}

func (a *app) serve(cmd *cobra.Command, variant tools.Variant) error {
	cfg, err := config.Load(a.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.NewLogger(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	defer func() { _ = log.Sync() }()

	d, err := newDispatcher(cfg, variant, log)
	if err != nil {
		return err
	}
	srv := server.New(d, Version)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infow("starting", "version", Version, "variant", variant, "tools", len(d.Descriptors()), "workers", cfg.Workers.Size)
	if variant == tools.VariantHTTP {
		return server.RunHTTP(ctx, cfg.Server, srv, logging.Named(log, "http"))
	}
	return server.RunStdio(ctx, srv, logging.Named(log, "stdio"))
}

// newDispatcher builds the dispatcher with a lazily loaded cluster client,
// so a server can start before credentials are reachable.
func newDispatcher(cfg *config.Config, variant tools.Variant, log *zap.SugaredLogger) (*tools.Dispatcher, error) {
	descs, err := tools.Descriptors(variant)
	if err != nil {
		return nil, err
	}
	kubeLog := logging.Named(log, "k8s")
	provider := k8s.NewProvider(func() (*k8s.ClusterClient, error) {
		c, err := k8s.NewClusterClient(k8s.Options{
			Kubeconfig: cfg.Kube.Kubeconfig,
			Context:    cfg.Kube.Context,
			Timeout:    cfg.Kube.Timeout,
		})
		if err != nil {
			return nil, err
		}
		kubeLog.Infow("kubernetes client initialized", "context", cfg.Kube.Context)
		return c, nil
	})
	return tools.NewDispatcher(descs, provider, worker.New(cfg.Workers.Size), logging.Named(log, "tools"))
}
