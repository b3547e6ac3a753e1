package cli

import (
	"github.com/spf13/cobra"

	"github.com/TWRT/board-sync/internal/service"
)

var skipPush bool

var populateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Push local task records to the issue tracker and the board",
	Long: `Walks every task record, active and archived, and makes the remote
side match it: the issue exists, sits on the board, carries the record's
metadata and comments, and its board fields hold the record's values.

Issue numbers handed out along the way are written back into the task
files and committed in a single batch at the end.`,
	RunE: runPopulate,
}

func init() {
	populateCmd.Flags().BoolVar(&skipPush, "skip-push", false, "Do not commit or push identifier write-backs")
}

func runPopulate(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	svc := service.NewPopulateService(
		app.boardClient,
		app.issueClient,
		app.store,
		app.runRepo,
		app.eventRepo,
		app.cfg,
	)

	_, err = svc.Run(cmd.Context(), skipPush)
	return err
}
