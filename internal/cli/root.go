package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TWRT/board-sync/internal/client"
	"github.com/TWRT/board-sync/internal/client/board"
	"github.com/TWRT/board-sync/internal/client/issues"
	"github.com/TWRT/board-sync/internal/config"
	"github.com/TWRT/board-sync/internal/repository"
	"github.com/TWRT/board-sync/internal/taskstore"
)

var rootCmd *cobra.Command

func init() {
	rootCmd = &cobra.Command{
		Use:   "board-sync",
		Short: "Two-way sync between Markdown task files and a project board",
		Long: `board-sync keeps a directory of Markdown task files and a GitHub
Projects board describing the same work in step.

populate pushes local records out: issue, board membership, metadata,
categorized comments and field values. sync pulls the board back into
the files, archiving, creating and deleting records to match it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.AddCommand(populateCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(runsCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// app wires the clients, the task store and the run ledger for the two
// sync commands.
type app struct {
	cfg         *config.Config
	db          *sql.DB
	store       *taskstore.Store
	runRepo     *repository.RunRepository
	eventRepo   *repository.ItemEventRepository
	boardClient client.BoardClient
	issueClient client.IssueClient
}

func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := repository.InitDB(cfg.LedgerPath)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:         cfg,
		db:          db,
		store:       taskstore.NewStore(cfg.TasksDir, cfg.ArchiveDir),
		runRepo:     repository.NewRunRepository(db),
		eventRepo:   repository.NewItemEventRepository(db),
		boardClient: board.NewBoardClient(cfg.Token),
		issueClient: issues.NewIssuesClient(cfg.RepoOwner, cfg.RepoName, cfg.Token),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
