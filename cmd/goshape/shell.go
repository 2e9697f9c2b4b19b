package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/goshape/internal/catalog"
	"github.com/reoring/goshape/source"
)

func newShellCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "shell FILE",
		Short: "Browse a command tree interactively",
		Long: `Load a command-tree document and read commands from standard input.
End a line with "?" to list what may follow the matched keywords, or with
"??" for long help including the command and its arguments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := source.DecodeFile(args[0], g.sourceOptions())
			if err != nil {
				return err
			}
			root, err := catalog.DecodeCommands(data, g.parseOpt())
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			sh := &catalog.Shell{Root: root, In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Log: g.log}
			return sh.Run(cmd.Context())
		},
	}
}
