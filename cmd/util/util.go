package util

import (
	"fmt"
	"github.com/ValentinKolb/localdb/lib/common"
	"github.com/ValentinKolb/localdb/lib/medium"
	"github.com/ValentinKolb/localdb/lib/notify"
	"github.com/ValentinKolb/localdb/lib/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"strings"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStoreFlags adds the flags every store command understands
func SetupStoreFlags(cmd *cobra.Command) {
	defaults := common.DefaultStoreConfig()

	key := "medium"
	cmd.PersistentFlags().String(key, string(defaults.Medium), WrapString("Storage medium (memory, sqlite). The memory medium forgets everything when the command exits"))

	key = "data-path"
	cmd.PersistentFlags().String(key, defaults.DataPath, WrapString("Path of the sqlite database file (use :memory: for a private in-memory database)"))

	key = "tenant"
	cmd.PersistentFlags().String(key, "", WrapString("Tenant to activate before running the command. Empty keeps the tenant persisted in the database"))

	key = "log-level"
	cmd.PersistentFlags().String(key, defaults.LogLevel, WrapString("Log level (debug, info, warn, error)"))

	key = "verbose"
	cmd.PersistentFlags().Bool(key, false, WrapString("Log every store operation"))
}

// InitConfig loads .env files and initializes viper to read LDB_* environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("ldb")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetStoreConfig reads the store configuration from viper
func GetStoreConfig() (common.StoreConfig, error) {
	mediumType, err := common.ParseMediumType(viper.GetString("medium"))
	if err != nil {
		return common.StoreConfig{}, err
	}

	conf := common.StoreConfig{
		Medium:   mediumType,
		DataPath: viper.GetString("data-path"),
		Tenant:   viper.GetString("tenant"),
		LogLevel: viper.GetString("log-level"),
		Verbose:  viper.GetBool("verbose"),
	}
	if err := conf.Validate(); err != nil {
		return common.StoreConfig{}, err
	}
	return conf, nil
}

// NewMedium creates the medium selected by the configuration
func NewMedium(conf common.StoreConfig) (medium.IMedium, error) {
	switch conf.Medium {
	case common.MediumMemory:
		return medium.NewMemoryMedium(), nil
	case common.MediumSQLite:
		return medium.NewSQLiteMedium(conf.DataPath)
	default:
		return nil, fmt.Errorf("invalid medium %s", conf.Medium)
	}
}

// OpenStore initializes logging and opens a store for the current configuration.
// Logs and user notifications go to stderr so command output stays parseable.
func OpenStore() (*store.Store, error) {
	conf, err := GetStoreConfig()
	if err != nil {
		return nil, err
	}

	if err := common.InitLoggers(conf, os.Stderr); err != nil {
		return nil, err
	}

	m, err := NewMedium(conf)
	if err != nil {
		return nil, err
	}

	return store.NewStore(m, &store.Options{
		Tenant:   conf.Tenant,
		Notifier: notify.NewConsoleNotifier(os.Stderr),
		Logging:  conf.Verbose,
	}), nil
}

// StoreCommand wires store setup and teardown into a command group.
// The opened store is written to target before any subcommand runs.
func StoreCommand(cmd *cobra.Command, target **store.Store) {
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := BindCommandFlags(cmd); err != nil {
			return err
		}
		s, err := OpenStore()
		if err != nil {
			return err
		}
		*target = s
		return nil
	}
	cmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		if *target == nil {
			return nil
		}
		return (*target).Close()
	}
}
