package main

import (
	"context"
	"fmt"
	"os"

	"github.com/smart-todo/smart-todo-list/cmd/configure/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "smart-todo-configure",
		Short: "Administration tool for the Smart Todo List API",
		Long:  "CLI tool for applying the schema, loading sample data, maintaining categories and checking the AI provider",
	}

	rootCmd.AddCommand(commands.NewMigrateCmd())
	rootCmd.AddCommand(commands.NewSeedCmd())
	rootCmd.AddCommand(commands.NewCategoriesCmd())
	rootCmd.AddCommand(commands.NewTestAICmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
