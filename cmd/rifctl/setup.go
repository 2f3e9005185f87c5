package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rif-protocol-server/internal/setup"
)

func newSetupCmd(a *app) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the MCP server with a desktop MCP client",
	}
	cmd.PersistentFlags().StringVar(&configPath, "client-config", "", "client config file (default: the desktop client's location for this OS)")

	var binary, dataDir string
	register := &cobra.Command{
		Use:   "register",
		Short: "Add or replace the rif-protocol server entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := setup.Register(setup.Options{ConfigPath: configPath, BinaryPath: binary, DataDir: dataDir})
			if err != nil {
				return err
			}
			a.logger.WithField("config", path).Info("MCP server registered")
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s in %s\nRestart the client to load it.\n", setup.ServerName, path)
			return nil
		},
	}
	register.Flags().StringVar(&binary, "binary", "", "path to the mcp-server binary (default: search PATH)")
	register.Flags().StringVar(&dataDir, "data-dir", "", "data directory passed as RIF_DATA_DIR")

	unregister := &cobra.Command{
		Use:   "unregister",
		Short: "Remove the rif-protocol server entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setup.Unregister(configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", setup.ServerName)
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show whether the server is registered and runnable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := setup.Inspect(configPath)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Client config: %s\n", st.ConfigPath)
			if st.Registered {
				fmt.Fprintf(w, "Server binary: %s\n", st.Entry.Command)
				if dir := st.Entry.Env["RIF_DATA_DIR"]; dir != "" {
					fmt.Fprintf(w, "Data directory: %s\n", dir)
				}
			}
			if len(st.Issues) == 0 {
				fmt.Fprintln(w, "✅ Ready")
				return nil
			}
			for _, issue := range st.Issues {
				fmt.Fprintf(w, "⚠ %s\n", issue)
			}
			return nil
		},
	}

	cmd.AddCommand(register, unregister, status)
	return cmd
}
