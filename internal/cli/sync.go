package cli

import (
	"github.com/spf13/cobra"

	"github.com/TWRT/board-sync/internal/service"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the board back into the local task files",
	Long: `Reads every item on the board and rewrites the local backlog to
match: headers are updated from the issue and the board fields, records
are created for issues seen for the first time, moved between the active
and archive directories when their archived flag changed, and deleted
when their issue left the board.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	svc := service.NewSyncService(
		app.boardClient,
		app.issueClient,
		app.store,
		app.runRepo,
		app.eventRepo,
		app.cfg,
	)

	_, err = svc.Run(cmd.Context())
	return err
}
