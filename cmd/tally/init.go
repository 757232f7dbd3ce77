package tally

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the tally record store",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, where, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		logger.Info("store initialized", "location", where)
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized tally %s store at %s\n", cfg.Store, where)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
