package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhuantitest/ledgerparse/internal/storage"
)

func notesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Inspect notes the pipeline could not classify",
		Long: `List notes that ended up in the neutral category.

Frequently seen notes are good candidates for new dictionary keywords.`,
		RunE: runNotes,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum notes to show")

	return cmd
}

func runNotes(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := storage.Open(notesDBPath())
	if err != nil {
		return fmt.Errorf("opening note database: %w", err)
	}
	defer store.Close()

	notes, err := store.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("listing notes: %w", err)
	}
	if len(notes) == 0 {
		fmt.Println(faintStyle.Render("沒有未分類的備註"))
		return nil
	}

	for _, n := range notes {
		fmt.Printf("%s %s %s\n",
			amountStyle.Render(fmt.Sprintf("%4d×", n.SeenCount)),
			titleStyle.Render(n.Note),
			faintStyle.Render(n.Source))
	}
	return nil
}
