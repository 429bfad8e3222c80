// Package main provides the odataq CLI: load an entity set from a database and
// apply OData query options to it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "odataq",
		Short: "Apply OData query options to database tables",
		Long: `odataq loads an entity set declared in its configuration file from a
sqlite or postgres table and applies $filter (simple equality), $orderby,
$search, $skip, $top and server-driven paging to it.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", getEnvStr("ODATAQ_CONFIG", "odataq.yaml"), "Path to the YAML configuration file")
	rootCmd.PersistentFlags().String("dialect", "", "Database dialect (sqlite, postgres); overrides the configuration")
	rootCmd.PersistentFlags().String("dsn", "", "Database DSN; overrides the configuration")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "odataq %s\n", version)
		},
	})
	rootCmd.AddCommand(newSetsCmd())
	rootCmd.AddCommand(newQueryCmd())
	return rootCmd
}

func newSetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sets",
		Short: "List the configured entity sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			for _, set := range cfg.EntitySets {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d properties\n", set.Name, set.TableName(), len(set.Properties))
			}
			return nil
		},
	}
}

func getEnvStr(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
