package cmd

import (
	"github.com/spf13/cobra"

	"github.com/marcus-crane/mediabridge/media"
)

var controlCmd = &cobra.Command{
	Use:       "control <play|pause|next|previous>",
	Short:     "Send a transport command to the active media player",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"play", "pause", "next", "previous"},
	RunE: func(cmd *cobra.Command, args []string) error {
		command, err := media.ParseCommand(args[0])
		if err != nil {
			return err
		}
		media.Send(logger, newBackend(cfg, logger), command)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(controlCmd)
}
