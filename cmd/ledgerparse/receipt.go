package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zhuantitest/ledgerparse/internal/classify"
	"github.com/zhuantitest/ledgerparse/internal/fx"
	"github.com/zhuantitest/ledgerparse/internal/model"
	"github.com/zhuantitest/ledgerparse/internal/receipt"
)

func receiptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipt [file]",
		Short: "Parse a receipt OCR text dump into line items",
		Long: `Parse the OCR text of one receipt.

Boilerplate lines are filtered, item lines are extracted with quantity
and price, each item is classified, and the item sum is reconciled
against the printed total.

Reads from the given file, or stdin when no file (or -) is given.

Examples:
  ledgerparse receipt scan.txt
  tesseract scan.png - -l chi_tra | ledgerparse receipt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runReceipt,
	}

	cmd.Flags().Bool("offline", false, "Skip the remote model, local stages only")

	return cmd
}

func runReceipt(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	// Bound here because classify shares the config key.
	_ = viper.BindPFlag("classifier.offline", cmd.Flags().Lookup("offline"))

	var document []byte
	var err error
	if len(args) == 0 || args[0] == "-" {
		document, err = io.ReadAll(os.Stdin)
	} else {
		document, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	orchestrator, store := buildOrchestrator(classify.Config{})
	if store != nil {
		defer store.Close()
	}

	assembler := receipt.New(orchestrator, fx.NewService())

	slog.Info("Parsing receipt")
	parsed, err := assembler.ParseText(ctx, string(document))
	if err != nil {
		return fmt.Errorf("parsing receipt: %w", err)
	}

	printReceipt(parsed)
	return nil
}

func printReceipt(r model.ParsedReceipt) {
	if r.StoreName != "" {
		fmt.Println(titleStyle.Render(r.StoreName))
	}
	if r.Date != "" {
		fmt.Println(faintStyle.Render(r.Date))
	}

	for _, item := range r.Items {
		fmt.Printf("%-24s x%-3d %s  %s %s\n",
			item.Name,
			item.Quantity,
			amountStyle.Render(fmt.Sprintf("%8.0f", item.Price)),
			categoryStyle.Render(item.Category),
			formatConfidence(item.Confidence))
	}

	fmt.Println(faintStyle.Render(fmt.Sprintf("%d 行，%d 行被過濾", r.TotalCount, r.FilteredCount)))
	if r.TotalAmount > 0 {
		fmt.Printf("%s %s\n", titleStyle.Render("總計"), amountStyle.Render(fmt.Sprintf("%.0f", r.TotalAmount)))
	}

	rec := r.Reconciliation
	if rec.IsValid {
		fmt.Println(categoryStyle.Render("✓ 品項合計與總額相符"))
	} else {
		for _, s := range rec.Suggestions {
			fmt.Println(warnStyle.Render("⚠ " + s))
		}
	}
}
