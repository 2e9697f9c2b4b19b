package main

import (
	"github.com/spf13/cobra"

	"github.com/reoring/goshape/internal/catalog"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema NAME",
		Short:     "Print the JSON Schema of a built-in schema",
		Args:      cobra.ExactArgs(1),
		ValidArgs: catalog.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := lookupSchema(args[0])
			if err != nil {
				return err
			}
			doc, err := s.JSONSchema()
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), "json", doc)
		},
	}
}
