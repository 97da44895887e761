package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"task-tracker/internal/client"
	"task-tracker/internal/config"
)

func newHealthcheckCmd(load func() (config.Config, error)) *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe /api/health of a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				cfg, err := load()
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				url = localURL(cfg.Server.Addr)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			health, err := client.New(url).Health(ctx)
			if err != nil {
				return fmt.Errorf("healthcheck %s: %w", url, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", health.Status, health.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Base URL of the server (defaults to the configured listen address)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Request timeout")
	return cmd
}

// localURL turns a listen address into a URL reachable from the same host.
func localURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}
