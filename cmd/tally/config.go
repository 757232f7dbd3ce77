package tally

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/saadjs/tally/internal/service"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage per-user goals",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a goal (daily_calorie_goal, daily_water_goal)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			if err := svc.SetConfig(ctx, cfg.UserID, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1])
			return nil
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			values, err := svc.ListConfig(ctx, cfg.UserID)
			if err != nil {
				return loadFailed("config", err)
			}
			keys := make([]string, 0, len(values))
			for k := range values {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(cmd.OutOrStdout(), "KEY\tVALUE")
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", k, values[k])
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configGetCmd)
}
