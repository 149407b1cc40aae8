package kv

import (
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/localdb/cmd/util"
	"github.com/ValentinKolb/localdb/lib/codec"
	"github.com/spf13/cobra"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, err := parseValue(args[1], setAsJSON)
			if err != nil {
				return err
			}
			if err := kvStore.Set(key, value); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := kvStore.Get(key)
			if value == nil {
				fmt.Printf("key=%s, found=false\n", key)
				return nil
			}
			text, err := formatValue(value)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
	rmCmd = &cobra.Command{
		Use:   "rm [key]",
		Short: "Removes a key value pair",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			kvStore.Remove(args[0])
			fmt.Println("removed successfully")
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Removes every key of the current tenant (every key if no tenant is set)",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			kvStore.Clear()
			fmt.Println("cleared successfully")
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Lists the keys of the current tenant in order",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for i := 0; i < kvStore.Length(); i++ {
				if key, ok := kvStore.Key(i); ok {
					fmt.Println(key)
				}
			}
		},
	}
	lenCmd = &cobra.Command{
		Use:   "len",
		Short: "Prints the number of keys of the current tenant",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(kvStore.Length())
		},
	}

	setAsJSON bool
)

func init() {
	setCmd.Flags().BoolVar(&setAsJSON, "json", false, util.WrapString("Parse the value as JSON instead of storing it as text"))
}

// parseValue turns a command line argument into the value to store
func parseValue(arg string, asJSON bool) (any, error) {
	if !asJSON {
		return arg, nil
	}
	var value any
	if err := json.Unmarshal([]byte(arg), &value); err != nil {
		return nil, fmt.Errorf("value is not valid JSON: %w", err)
	}
	if value == nil {
		return nil, fmt.Errorf("value must not be null")
	}
	return value, nil
}

// formatValue renders a stored value for the terminal
func formatValue(value any) (string, error) {
	return codec.Encode(value)
}
