package cmd

import (
	"job-auction/internal/events"
	"job-auction/utils"

	"github.com/spf13/cobra"
)

// SweepCmd closes every auction whose window has ended, once
func SweepCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Close expired auctions once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, release, err := a.openRepository()
			if err != nil {
				return err
			}
			defer release()

			svc := a.newService(repo, events.Nop{})
			closed, err := svc.SweepExpired(cmd.Context())
			utils.Info("sweep finished", map[string]any{"closed": closed})
			return err
		},
	}
}
