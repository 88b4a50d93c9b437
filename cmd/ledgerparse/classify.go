package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zhuantitest/ledgerparse/internal/classify"
	"github.com/zhuantitest/ledgerparse/internal/model"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [text...]",
		Short: "Classify item descriptions into spending categories",
		Long: `Classify one or more item descriptions.

Each text runs through the rule gate, the local keyword dictionaries
and, when the local answer is weak, the hosted zero-shot model.
With no arguments, texts are read from stdin, one per line.

Examples:
  ledgerparse classify 珍珠奶茶
  ledgerparse classify 高鐵車票 洗衣精 "不知道是什麼"
  cat items.txt | ledgerparse classify`,
		RunE: runClassify,
	}

	cmd.Flags().Bool("offline", false, "Skip the remote model, local stages only")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	// Bound here because receipt shares the config key.
	_ = viper.BindPFlag("classifier.offline", cmd.Flags().Lookup("offline"))

	texts := args
	if len(texts) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				texts = append(texts, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}
	if len(texts) == 0 {
		return fmt.Errorf("nothing to classify")
	}

	var cfg classify.Config
	var bar *progressbar.ProgressBar
	if len(texts) > 5 {
		bar = progressbar.Default(int64(len(texts)), "classifying")
		cfg.Progress = func(done, total int) { _ = bar.Add(1) }
	}

	orchestrator, store := buildOrchestrator(cfg)
	if store != nil {
		defer store.Close()
	}

	slog.Info("Classifying texts", "count", len(texts))

	results := orchestrator.ClassifyBatch(ctx, texts)
	if bar != nil {
		_ = bar.Finish()
	}

	for i, res := range results {
		printClassification(texts[i], res)
	}
	return nil
}

func printClassification(text string, res model.ClassificationResult) {
	if !res.IsProduct {
		fmt.Printf("%s  %s %s\n",
			titleStyle.Render(text),
			warnStyle.Render("非消費品項"),
			faintStyle.Render(res.Reason))
		return
	}

	line := fmt.Sprintf("%s  %s %s %s",
		titleStyle.Render(text),
		categoryStyle.Render(res.Category),
		formatConfidence(res.Confidence),
		faintStyle.Render(string(res.Source)))
	if res.Reason != "" {
		line += " " + faintStyle.Render("("+res.Reason+")")
	}
	fmt.Println(line)
}
