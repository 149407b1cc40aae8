package kv

import (
	"github.com/ValentinKolb/localdb/cmd/util"
	"github.com/ValentinKolb/localdb/lib/store"
	"github.com/spf13/cobra"
)

var (
	kvStore *store.Store

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:   "kv",
		Short: "Perform key-value store operations",
	}
)

func init() {
	// open the store before and close it after every subcommand
	util.StoreCommand(KeyValueCommands, &kvStore)

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(rmCmd)
	KeyValueCommands.AddCommand(clearCmd)
	KeyValueCommands.AddCommand(keysCmd)
	KeyValueCommands.AddCommand(lenCmd)
	KeyValueCommands.AddCommand(dumpCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}
