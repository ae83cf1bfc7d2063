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
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(balancesCmd)

	balanceCmd.Flags().String("role", string(models.OwnerTechnician), "Owner role: user or technician")
	balanceCmd.Flags().String("id", "", "Owner ID")
	_ = balanceCmd.MarkFlagRequired("id")

	balancesCmd.Flags().String("role", "", "Only show owners with this role")
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show one owner's balance computed from the ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		roleFlag, _ := cmd.Flags().GetString("role")
		idFlag, _ := cmd.Flags().GetString("id")

		role := models.OwnerRole(roleFlag)
		if !role.Valid() {
			return fmt.Errorf("invalid role %q", roleFlag)
		}
		id, err := uuid.Parse(idFlag)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", idFlag, err)
		}

		db, err := mustDB(cmd)
		if err != nil {
			return err
		}
		s, err := services.OwnerBalanceSummary(db, role, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\ncredit  %s\ndebit   %s\nbalance %s\n", s.OwnerRole, s.OwnerID,
			s.TotalCredit.StringFixed(2), s.TotalDebit.StringFixed(2), s.Balance.StringFixed(2))
		return nil
	},
}

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "List every owner's balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		roleFlag, _ := cmd.Flags().GetString("role")
		role := models.OwnerRole(roleFlag)
		if role != "" && !role.Valid() {
			return fmt.Errorf("invalid role %q", roleFlag)
		}

		db, err := mustDB(cmd)
		if err != nil {
			return err
		}
		summaries, err := services.BalanceSummaries(db, role)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ROLE\tOWNER\tCREDIT\tDEBIT\tBALANCE")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.OwnerRole, s.OwnerID,
				s.TotalCredit.StringFixed(2), s.TotalDebit.StringFixed(2), s.Balance.StringFixed(2))
		}
		return w.Flush()
	},
}
