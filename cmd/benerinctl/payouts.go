package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/benerin-indonesia/benerin/models"
	"github.com/benerin-indonesia/benerin/services"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(payoutsCmd)
	payoutsCmd.AddCommand(payoutsListCmd)
	payoutsCmd.AddCommand(payoutsMarkPaidCmd)
	payoutsCmd.AddCommand(payoutsRejectCmd)

	payoutsListCmd.Flags().String("status", "", "Filter by status: pending, paid or rejected")
	payoutsMarkPaidCmd.Flags().String("note", "", "Transfer reference")
	payoutsRejectCmd.Flags().String("note", "", "Reason shown to the technician")
	_ = payoutsRejectCmd.MarkFlagRequired("note")
}

var payoutsCmd = &cobra.Command{
	Use:   "payouts",
	Short: "Inspect and process technician payouts",
}

var payoutsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List payouts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")

		db, err := mustDB(cmd)
		if err != nil {
			return err
		}
		payouts, err := services.ListPayouts(db, services.PayoutFilter{Status: models.PayoutStatus(status)})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTECHNICIAN\tAMOUNT\tSTATUS\tBANK\tACCOUNT\tCREATED")
		for _, p := range payouts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.TechnicianID, p.Amount.StringFixed(2),
				p.Status, p.BankName, p.AccountNumber, p.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var payoutsMarkPaidCmd = &cobra.Command{
	Use:   "mark-paid PAYOUT_ID",
	Short: "Mark a pending payout as transferred",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, _ := cmd.Flags().GetString("note")
		return processPayout(cmd, args[0], services.DecisionPaid, note)
	},
}

var payoutsRejectCmd = &cobra.Command{
	Use:   "reject PAYOUT_ID",
	Short: "Reject a pending payout and return the amount to the technician",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, _ := cmd.Flags().GetString("note")
		return processPayout(cmd, args[0], services.DecisionRejected, note)
	},
}

func processPayout(cmd *cobra.Command, rawID string, decision services.PayoutDecision, note string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid payout id %q: %w", rawID, err)
	}

	db, err := mustDB(cmd)
	if err != nil {
		return err
	}
	payout, err := services.ProcessPayout(db, id, decision, note)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "payout %s is now %s\n", payout.ID, payout.Status)
	return nil
}
