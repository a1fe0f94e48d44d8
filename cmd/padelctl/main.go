package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	c := &apiClient{}
	root := &cobra.Command{
		Use:   "padelctl",
		Short: "Run tournament draws and results against a padel-club server",
		Long: `padelctl calls the padel-club HTTP API with an organizer session.
Log in through the browser and pass the value of the "session" cookie
with --session or PADEL_SESSION.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.host, "host", "http://localhost:8080", "The host address of the server")
	root.PersistentFlags().StringVar(&c.session, "session", os.Getenv("PADEL_SESSION"), "Session cookie value")

	root.AddCommand(
		newGenerateCmd(c),
		newResetCmd(c),
		newSubmitCmd(c),
		newResolveCmd(c),
		newConflictsCmd(c),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "padelctl: %s\n", err)
		os.Exit(1)
	}
}
