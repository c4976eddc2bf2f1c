package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/010m010/PMSChartAnalyzer/storage"
)

var tablesAddName string

func init() {
	rootCmd.AddCommand(tablesCmd)
	tablesCmd.AddCommand(tablesListCmd)
	tablesCmd.AddCommand(tablesAddCmd)
	tablesCmd.AddCommand(tablesRemoveCmd)
	tablesAddCmd.Flags().StringVar(&tablesAddName, "name", "", "display name for the table")
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Manage saved difficulty-table URLs",
}

var tablesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved difficulty tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := defaultStore()
		if err != nil {
			return err
		}
		cfg, err := store.LoadConfig()
		if err != nil {
			return err
		}
		if len(cfg.DifficultyTables) == 0 {
			fmt.Println("no saved tables")
			return nil
		}
		for _, t := range cfg.DifficultyTables {
			if t.Name != "" {
				fmt.Printf("%s\t%s\n", t.Name, t.URL)
			} else {
				fmt.Println(t.URL)
			}
		}
		return nil
	},
}

var tablesAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Save a difficulty-table URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := defaultStore()
		if err != nil {
			return err
		}
		return store.AddTable(args[0], tablesAddName)
	},
}

var tablesRemoveCmd = &cobra.Command{
	Use:   "remove <url>",
	Short: "Forget a saved difficulty-table URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := defaultStore()
		if err != nil {
			return err
		}
		if err := store.RemoveTable(args[0]); err != nil {
			return err
		}
		return store.RemoveTableCache(args[0])
	},
}

func defaultStore() (*storage.Store, error) {
	dir, err := storage.DefaultDir()
	if err != nil {
		return nil, err
	}
	return storage.NewStore(dir), nil
}
