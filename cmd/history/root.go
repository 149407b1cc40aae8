package history

import (
	"fmt"
	"github.com/ValentinKolb/localdb/cmd/util"
	"github.com/ValentinKolb/localdb/lib/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"strings"
	"time"
)

var (
	historyStore *store.Store

	// HistoryCommands represents the chat history command group
	HistoryCommands = &cobra.Command{
		Use:   "history",
		Short: "Save and list chat histories",
	}
	saveCmd = &cobra.Command{
		Use:     "save [role=content ...]",
		Short:   "Saves a conversation, given as role=content pairs",
		Example: `  ldb history save "user=What is localdb?" "assistant=A key-value store."`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			messages, err := parseMessages(args)
			if err != nil {
				return err
			}
			saved, err := historyStore.SaveChatHistory(messages)
			if err != nil {
				return err
			}
			fmt.Printf("saved chat history %d (%d messages)\n", saved.ID, len(saved.Messages))
			return nil
		},
	}
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists all saved conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			histories, err := historyStore.LoadChatHistories()
			if err != nil {
				return err
			}
			if len(histories) == 0 {
				fmt.Println("no chat histories")
				return nil
			}

			bold := color.New(color.Bold)
			for _, h := range histories {
				_, _ = bold.Printf("#%d", h.ID)
				fmt.Printf("  %s  (%d messages)\n", formatTimestamp(h.Timestamp), len(h.Messages))
				for _, m := range h.Messages {
					fmt.Printf("  %-10s %s\n", m.Role+":", m.Content)
				}
			}
			return nil
		},
	}
)

func init() {
	util.StoreCommand(HistoryCommands, &historyStore)

	HistoryCommands.AddCommand(saveCmd)
	HistoryCommands.AddCommand(listCmd)
}

// parseMessages converts role=content arguments into messages
func parseMessages(args []string) ([]store.Message, error) {
	messages := make([]store.Message, 0, len(args))
	for _, arg := range args {
		role, content, ok := strings.Cut(arg, "=")
		role = strings.TrimSpace(role)
		if !ok || role == "" {
			return nil, fmt.Errorf("invalid message %q (expected role=content)", arg)
		}
		messages = append(messages, store.Message{Role: role, Content: content})
	}
	return messages, nil
}

// formatTimestamp renders a stored timestamp in local time, or as stored if it cannot be parsed
func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format(time.DateTime)
}
