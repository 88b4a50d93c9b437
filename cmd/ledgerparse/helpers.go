package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"

	"github.com/zhuantitest/ledgerparse/internal/classify"
	"github.com/zhuantitest/ledgerparse/internal/rule"
	"github.com/zhuantitest/ledgerparse/internal/storage"
	"github.com/zhuantitest/ledgerparse/internal/zeroshot"
)

// Shared output styles.
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	categoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	amountStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// buildOrchestrator wires the classification pipeline from config.
// The caller closes the returned store when it is non-nil.
func buildOrchestrator(cfg classify.Config) (*classify.Orchestrator, *storage.NoteStore) {
	var remote classify.Remote
	if !viper.GetBool("classifier.offline") {
		token := viper.GetString("classifier.token")
		if token == "" {
			token = os.Getenv("HUGGINGFACE_API_TOKEN")
		}
		remote = zeroshot.NewClassifier(zeroshot.Config{
			Endpoint:    viper.GetString("classifier.endpoint"),
			Token:       token,
			InputPrefix: zeroshot.DefaultInputPrefix,
			MultiLabel:  true,
		})
	}

	var notes classify.NoteStore
	var store *storage.NoteStore
	if path := notesDBPath(); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			slog.Warn("Cannot create database directory, notes disabled", "error", err)
		} else if s, err := storage.Open(path); err != nil {
			slog.Warn("Cannot open note database, notes disabled", "error", err)
		} else {
			store = s
			notes = s
		}
	}

	return classify.New(rule.New(), remote, notes, cfg), store
}

func notesDBPath() string {
	path := viper.GetString("database.path")
	if path == "" {
		path = "$HOME/.local/share/ledgerparse/notes.db"
	}
	return expandPath(path)
}

// expandPath resolves $HOME and a leading ~ in configured paths.
func expandPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	path = strings.ReplaceAll(path, "$HOME", home)
	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(home, path[2:])
	}
	return path
}

func formatConfidence(conf float64) string {
	return faintStyle.Render(fmt.Sprintf("%.0f%%", conf*100))
}
