package cli

import (
	"github.com/spf13/cobra"

	"github.com/local/scoresplit/internal/config"
)

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Manage the instrument part vocabulary",
}

var vocabListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the vocabulary in match order",
	RunE: func(cmd *cobra.Command, args []string) error {
		parts, err := config.LoadVocabulary(cfg.ConfigDir)
		if err != nil {
			return err
		}
		for _, p := range parts {
			cmd.Println(p)
		}
		return nil
	},
}

var vocabAddCmd = &cobra.Command{
	Use:   "add [part]",
	Short: "Append a part name to the vocabulary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parts, err := config.AddVocabularyEntry(cfg.ConfigDir, args[0])
		if err != nil {
			return err
		}
		cmd.Printf("vocabulary now has %d entries\n", len(parts))
		return nil
	},
}

var vocabRemoveCmd = &cobra.Command{
	Use:   "remove [part]",
	Short: "Remove a part name from the vocabulary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parts, err := config.RemoveVocabularyEntry(cfg.ConfigDir, args[0])
		if err != nil {
			return err
		}
		cmd.Printf("vocabulary now has %d entries\n", len(parts))
		return nil
	},
}

func init() {
	vocabCmd.AddCommand(vocabListCmd, vocabAddCmd, vocabRemoveCmd)
	rootCmd.AddCommand(vocabCmd)
}
