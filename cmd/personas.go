package cmd

import (
	"github.com/bimmerbailey/soudan/internal/output"
	"github.com/bimmerbailey/soudan/internal/prompt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List the recognized expert personas",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		writer := output.New(cmd.OutOrStdout(), output.ParseFormat(viper.GetString("format")))
		return writer.WritePersonas(prompt.Options())
	},
}

func init() {
	rootCmd.AddCommand(personasCmd)
}
