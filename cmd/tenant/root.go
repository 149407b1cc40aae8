package tenant

import (
	"fmt"
	"github.com/ValentinKolb/localdb/cmd/util"
	"github.com/ValentinKolb/localdb/lib/store"
	"github.com/spf13/cobra"
	"strings"
)

var (
	tenantStore *store.Store

	// TenantCommands represents the tenant command group
	TenantCommands = &cobra.Command{
		Use:   "tenant",
		Short: "Show or switch the active tenant",
	}
	showCmd = &cobra.Command{
		Use:   "show",
		Short: "Prints the active tenant",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if id, ok := tenantStore.Tenant(); ok {
				fmt.Println(id)
			} else {
				fmt.Println("no tenant set")
			}
		},
	}
	setCmd = &cobra.Command{
		Use:   "set [id]",
		Short: "Switches to (and persists) a tenant. Without an id the tenant is unset",
		Long: util.WrapString(`Switches to a tenant and persists it, so later commands use it without
--tenant. Existing data is neither migrated nor cleared: keys of other tenants
simply become invisible. Without an id the persisted tenant is removed.`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			if strings.Contains(id, ":") {
				return fmt.Errorf("tenant %q must not contain ':'", id)
			}
			if err := tenantStore.SetTenant(id); err != nil {
				return err
			}
			if id == "" {
				fmt.Println("tenant unset")
			} else {
				fmt.Printf("tenant set to %s\n", id)
			}
			return nil
		},
	}
)

func init() {
	util.StoreCommand(TenantCommands, &tenantStore)

	TenantCommands.AddCommand(showCmd)
	TenantCommands.AddCommand(setCmd)
}
