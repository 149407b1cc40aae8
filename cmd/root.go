package cmd

import (
	"fmt"
	"github.com/ValentinKolb/localdb/cmd/history"
	"github.com/ValentinKolb/localdb/cmd/kv"
	"github.com/ValentinKolb/localdb/cmd/tenant"
	"github.com/ValentinKolb/localdb/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "ldb",
		Short: "namespaced, observable key-value store",
		Long: fmt.Sprintf(`localdb (v%s)

A local key-value store with tenant namespacing, per-key pipelines,
middleware chains and change notification, backed by sqlite or memory.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of localdb",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("localdb v%s\n", Version)
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(tenant.TenantCommands)
	RootCmd.AddCommand(history.HistoryCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	util.SetupStoreFlags(RootCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
