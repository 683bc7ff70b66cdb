package cli

import "github.com/spf13/cobra"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the spoadmin version",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println("spoadmin " + version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
