package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhuantitest/ledgerparse/internal/rule"
	"github.com/zhuantitest/ledgerparse/internal/spoken"
)

func spokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spoken <utterance>",
		Short: "Parse a spoken bookkeeping phrase",
		Long: `Parse one spoken bookkeeping utterance into amount, note,
account and category, with a quality score out of 100.

Examples:
  ledgerparse spoken "麥當勞 120 元 晚餐"
  ledgerparse spoken "幫我記 高鐵車票 1490 元"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSpoken,
	}
}

func runSpoken(_ *cobra.Command, args []string) error {
	parser := spoken.NewParser(rule.New())
	exp := parser.Parse(strings.Join(args, " "))

	if exp.HasAmount {
		fmt.Printf("%s %s\n", titleStyle.Render("金額"), amountStyle.Render(fmt.Sprintf("%.0f", exp.Amount)))
	}
	if exp.Note != "" {
		fmt.Printf("%s %s\n", titleStyle.Render("備註"), exp.Note)
	}
	if exp.Account != "" {
		fmt.Printf("%s %s\n", titleStyle.Render("帳戶"), exp.Account)
	}
	fmt.Printf("%s %s\n", titleStyle.Render("分類"), categoryStyle.Render(exp.Category))
	fmt.Printf("%s %d/100\n", titleStyle.Render("可信度"), exp.Confidence)

	for _, s := range exp.Suggestions {
		fmt.Println(warnStyle.Render("⚠ " + s))
	}
	return nil
}
