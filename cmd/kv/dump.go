package kv

import (
	"bytes"
	"fmt"
	"github.com/BurntSushi/toml"
	"github.com/ValentinKolb/localdb/cmd/util"
	"github.com/ValentinKolb/localdb/lib/codec"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"strings"
)

var (
	dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Prints every key value pair of the current tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make(map[string]any)
			for _, key := range kvStore.Keys() {
				if value := kvStore.Get(key); value != nil {
					values[key] = value
				}
			}
			out, err := renderDump(values, dumpFormat)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}

	dumpFormat string
)

func init() {
	dumpCmd.Flags().StringVar(&dumpFormat, "format", "json", util.WrapString("Output format (json, yaml, toml)"))
}

// renderDump serializes the values in the given format
func renderDump(values map[string]any, format string) (string, error) {
	switch strings.ToLower(format) {
	case "json":
		return codec.Encode(values)
	case "yaml", "yml":
		out, err := yaml.Marshal(values)
		if err != nil {
			return "", fmt.Errorf("failed to render yaml: %w", err)
		}
		return strings.TrimSuffix(string(out), "\n"), nil
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(values); err != nil {
			return "", fmt.Errorf("failed to render toml: %w", err)
		}
		return strings.TrimSuffix(buf.String(), "\n"), nil
	default:
		return "", fmt.Errorf("invalid format %s (expected one of: json, yaml, toml)", format)
	}
}
