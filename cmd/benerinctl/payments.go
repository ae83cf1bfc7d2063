package main

import (
	"fmt"
	"time"

	config "github.com/benerin-indonesia/benerin/configs"
	"github.com/benerin-indonesia/benerin/services"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(paymentsCmd)
	paymentsCmd.AddCommand(paymentsExpireCmd)

	paymentsExpireCmd.Flags().Duration("older-than", 0, "Age after which a pending payment expires (default PAYMENT_EXPIRY or 24h)")
}

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Payment maintenance",
}

var paymentsExpireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Cancel pending payments older than the expiry window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		age, _ := cmd.Flags().GetDuration("older-than")
		if age <= 0 {
			age = config.ConfigDuration("PAYMENT_EXPIRY", 24*time.Hour)
		}

		db, err := mustDB(cmd)
		if err != nil {
			return err
		}
		n, err := services.ExpireStalePayments(db, time.Now().Add(-age))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "expired %d pending payments\n", n)
		return nil
	},
}
