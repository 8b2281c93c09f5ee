package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iota-uz/suggestion-admin/pkg/tagcolor"
)

func newColorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "color LABEL...",
		Short: "Print the tag color of each label",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, label := range args {
				if _, err := fmt.Fprintf(out, "%s\t%s\n", label, tagcolor.ColorFor(label)); err != nil {
					return withCode(exitIO, err)
				}
			}
			return nil
		},
	}
}
