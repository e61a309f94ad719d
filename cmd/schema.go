package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"issuetracker/internal/transport/httpapi"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [payload]",
	Short: "Print JSON schemas of the HTTP request payloads",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		schemas := httpapi.PayloadSchemas()
		format := outputFormat
		if !structured() {
			format = "json"
		}

		if len(args) == 0 {
			return newUI(cmd).Structured(format, schemas)
		}

		schema, ok := schemas[args[0]]
		if !ok {
			names := make([]string, 0, len(schemas))
			for name := range schemas {
				names = append(names, name)
			}
			sort.Strings(names)
			return fmt.Errorf("unknown payload %q (one of %v)", args[0], names)
		}
		return newUI(cmd).Structured(format, schema)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
