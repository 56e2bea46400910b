// Command dcpuir translates target-ISA assembly read from standard
// input into SSA-form IR written to standard output.
package main

import (
	"bufio"
	"log"
	"os"

	"github.com/dcpu16-tools/dcpuir/pkg/codegen"
	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(0)

	root := &cobra.Command{
		Use:           "dcpuir",
		Short:         "translate target-ISA assembly to SSA IR",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(os.Stdin)
			out := bufio.NewWriter(os.Stdout)
			defer out.Flush()
			return codegen.Translate(in, out)
		},
	}

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}
