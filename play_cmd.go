package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/educast/podcast/audio"
)

var playCmd = &cobra.Command{
	Use:   "play EPISODE",
	Short: "Play a finished episode",
	Long: paragraph(
		fmt.Sprintf("\n%s a finished episode through the system audio device.", keyword("Play")),
	),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		buf, err := audio.DecodeFile(args[0])
		if err != nil {
			return err
		}

		player, err := audio.NewPlayer(buf.Format.SampleRate, buf.Format.NumChannels)
		if err != nil {
			return err
		}

		fmt.Println("Playing:", args[0])
		return player.PlayFile(cmd.Context(), args[0])
	},
}
