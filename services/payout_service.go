package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/benerin-indonesia/benerin/metrics"
	"github.com/benerin-indonesia/benerin/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestPayout reserves amount from the technician's balance. The balance check,
// the payout row and the payout_request debit commit together or not at all, and
// requests for the same technician are serialized so they cannot both pass the
// check against the same balance.
func RequestPayout(db *gorm.DB, technicianID uuid.UUID, amount, minPayout decimal.Decimal) (*models.Payout, error) {
	if amount.LessThan(minPayout) {
		metrics.PayoutRequests.WithLabelValues("below_minimum").Inc()
		return nil, invalid("amount", ErrBelowMinimumPayout, "minimum payout is %s", minPayout.StringFixed(0))
	}

	unlock := balanceLocks.lock(models.OwnerTechnician, technicianID)
	defer unlock()

	var payout models.Payout
	var debit *models.LedgerEntry
	err := db.Transaction(func(tx *gorm.DB) error {
		var technician models.Technician
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&technician, "id = ?", technicianID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTechnicianNotFound
			}
			return err
		}
		if !technician.HasBankAccount() {
			return invalid("bank_account", ErrBankProfileIncomplete, "complete your bank name, account name and account number before requesting a payout")
		}

		balance, err := CurrentBalance(tx, models.OwnerTechnician, technicianID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(balance) {
			return invalid("amount", ErrInsufficientBalance, "insufficient balance, available %s", balance.StringFixed(2))
		}

		payout = models.Payout{
			TechnicianID:  technicianID,
			Amount:        amount.Round(2),
			Status:        models.PayoutPending,
			BankName:      *technician.BankName,
			AccountName:   *technician.AccountName,
			AccountNumber: *technician.AccountNumber,
		}
		if err := tx.Create(&payout).Error; err != nil {
			return err
		}

		debit, err = PostLedgerEntry(tx, PostEntryInput{
			OwnerRole: models.OwnerTechnician,
			OwnerID:   technicianID,
			Amount:    payout.Amount.Neg(),
			Type:      models.EntryPayoutRequest,
			RefTable:  models.RefPayout,
			RefID:     &payout.ID,
			Note:      "Payout request to " + payout.BankName + " " + payout.AccountNumber,
		})
		return err
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			metrics.PayoutRequests.WithLabelValues("rejected").Inc()
		} else {
			metrics.PayoutRequests.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	metrics.PayoutRequests.WithLabelValues("accepted").Inc()
	countEntries(debit)
	return &payout, nil
}

type PayoutDecision string

const (
	DecisionPaid     PayoutDecision = "paid"
	DecisionRejected PayoutDecision = "rejected"
)

// ProcessPayout closes a pending payout. A rejection hands the reserved amount back
// with a payout_reversal credit in the same transaction.
func ProcessPayout(db *gorm.DB, payoutID uuid.UUID, decision PayoutDecision, note string) (*models.Payout, error) {
	if decision != DecisionPaid && decision != DecisionRejected {
		return nil, invalid("decision", nil, "decision must be paid or rejected")
	}

	var payout models.Payout
	if err := db.First(&payout, "id = ?", payoutID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPayoutNotFound
		}
		return nil, err
	}

	unlock := balanceLocks.lock(models.OwnerTechnician, payout.TechnicianID)
	defer unlock()

	var reversal *models.LedgerEntry
	err := db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": models.PayoutStatus(decision)}
		if note != "" {
			updates["note"] = note
		}
		if decision == DecisionPaid {
			updates["paid_at"] = time.Now()
		}

		res := tx.Model(&models.Payout{}).
			Where("id = ? AND status = ?", payout.ID, models.PayoutPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPayoutNotPending
		}

		if decision == DecisionRejected {
			entry, err := PostLedgerEntry(tx, PostEntryInput{
				OwnerRole: models.OwnerTechnician,
				OwnerID:   payout.TechnicianID,
				Amount:    payout.Amount,
				Type:      models.EntryPayoutReversal,
				RefTable:  models.RefPayout,
				RefID:     &payout.ID,
				Note:      fmt.Sprintf("Payout %s rejected", payout.ID),
			})
			if err != nil {
				return err
			}
			reversal = entry
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PayoutsProcessed.WithLabelValues(string(decision)).Inc()
	countEntries(reversal)

	if err := db.First(&payout, "id = ?", payout.ID).Error; err != nil {
		return nil, err
	}
	return &payout, nil
}

type PayoutFilter struct {
	TechnicianID *uuid.UUID
	Status       models.PayoutStatus
}

func ListPayouts(db *gorm.DB, f PayoutFilter) ([]models.Payout, error) {
	query := db.Model(&models.Payout{})
	if f.TechnicianID != nil {
		query = query.Where("technician_id = ?", *f.TechnicianID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}

	var payouts []models.Payout
	if err := query.Order("created_at desc").Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}
