package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowmaid/pkg/mxgraph"
)

// pagesCommand creates the pages command, which lists a document's pages
// without converting them.
func (c *CLI) pagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pages <file>",
		Short: "List the pages of a diagram file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(args[0])
			if err != nil {
				return err
			}
			names, err := mxgraph.ListPages(input)
			if err != nil {
				return err
			}
			for i, name := range names {
				if name == "" {
					name = StyleDim.Render("(unnamed)")
				}
				printKeyValue(fmt.Sprintf("page %d", i), name)
			}
			return nil
		},
	}
}
