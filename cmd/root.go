package cmd

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kalkin/glv/internal/config"
	"github.com/kalkin/glv/internal/forkpoint"
	"github.com/kalkin/glv/internal/git"
	"github.com/kalkin/glv/internal/history"
	"github.com/kalkin/glv/internal/subtrees"
	"github.com/kalkin/glv/internal/ui"
)

var workDir string

var rootCmd = &cobra.Command{
	Use:   "glv [revision] [-- path...]",
	Short: "An interactive, foldable git history viewer",
	Long: `glv shows the first-parent history of a repository as a foldable tree.
Merge commits expand into the branch history they absorbed.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !git.IsWorkTree(workDir) {
			return fmt.Errorf("%s is not a git repository", workDir)
		}

		revRange := "HEAD"
		var paths []string
		if len(args) > 0 {
			revRange = args[0]
			paths = args[1:]
		}

		total, err := git.CountCommits(workDir, revRange, paths)
		if err != nil {
			if errors.Is(err, git.ErrNoRevisions) {
				fmt.Fprintln(os.Stderr, "No revisions match the given arguments.")
				os.Exit(1)
			}
			return err
		}

		cfg := config.Default()
		worker := forkpoint.NewWorker()
		defer worker.Close()

		builder := &history.Builder{
			WorkingDir: workDir,
			Parser: &history.Parser{
				WorkingDir: workDir,
				Modules:    &subtrees.Detector{Subtrees: cfg.Subtrees},
				Ancestors:  &forkpoint.Checker{Worker: worker},
			},
		}

		model := ui.NewModel(cfg, builder, worker, workDir, revRange, paths, total)
		p := tea.NewProgram(model, tea.WithAltScreen())
		final, err := p.Run()
		if err != nil {
			return fmt.Errorf("run ui: %w", err)
		}
		if m, ok := final.(ui.Model); ok && m.Err() != nil {
			return m.Err()
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&workDir, "workdir", "w", ".", "repository working directory")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
