package services

import (
	"errors"
	"fmt"

	"github.com/benerin-indonesia/benerin/metrics"
	"github.com/benerin-indonesia/benerin/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PostEntryInput struct {
	OwnerRole models.OwnerRole
	OwnerID   uuid.UUID
	Amount    decimal.Decimal
	Type      models.LedgerEntryType
	Currency  string
	RefTable  string
	RefID     *uuid.UUID
	Note      string
}

// PostLedgerEntry appends one entry. The sign of Amount is the caller's decision;
// nothing here stops a balance from going negative.
func PostLedgerEntry(tx *gorm.DB, in PostEntryInput) (*models.LedgerEntry, error) {
	if !in.OwnerRole.Valid() {
		return nil, fmt.Errorf("unknown owner role %q", in.OwnerRole)
	}
	if in.OwnerID == uuid.Nil {
		return nil, errors.New("owner id is required")
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("unknown ledger entry type %q", in.Type)
	}

	entry := models.LedgerEntry{
		OwnerRole: in.OwnerRole,
		OwnerID:   in.OwnerID,
		Amount:    in.Amount.Round(2),
		Currency:  in.Currency,
		Type:      in.Type,
		RefID:     in.RefID,
	}
	if in.RefTable != "" {
		refTable := in.RefTable
		entry.RefTable = &refTable
	}
	if in.Note != "" {
		note := in.Note
		entry.Note = &note
	}

	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// CurrentBalance sums every entry of the owner. It is always computed from the
// entries themselves.
func CurrentBalance(tx *gorm.DB, role models.OwnerRole, ownerID uuid.UUID) (decimal.Decimal, error) {
	var result struct{ Balance decimal.Decimal }
	err := tx.Model(&models.LedgerEntry{}).
		Select("COALESCE(SUM(amount), 0) AS balance").
		Where("owner_role = ? AND owner_id = ?", role, ownerID).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Balance.Round(2), nil
}

type LedgerFilter struct {
	OwnerRole models.OwnerRole
	OwnerID   *uuid.UUID
	Type      models.LedgerEntryType
	RefTable  string
	RefID     *uuid.UUID
	Limit     int
	Offset    int
}

func ListLedgerEntries(tx *gorm.DB, f LedgerFilter) ([]models.LedgerEntry, error) {
	query := tx.Model(&models.LedgerEntry{})
	if f.OwnerRole != "" {
		query = query.Where("owner_role = ?", f.OwnerRole)
	}
	if f.OwnerID != nil {
		query = query.Where("owner_id = ?", *f.OwnerID)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.RefTable != "" {
		query = query.Where("ref_table = ?", f.RefTable)
	}
	if f.RefID != nil {
		query = query.Where("ref_id = ?", *f.RefID)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit).Offset(f.Offset)
	}

	var entries []models.LedgerEntry
	if err := query.Order("created_at asc").Order("id asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

type BalanceSummary struct {
	OwnerRole   models.OwnerRole `json:"owner_role"`
	OwnerID     uuid.UUID        `json:"owner_id"`
	TotalCredit decimal.Decimal  `json:"total_credit"`
	TotalDebit  decimal.Decimal  `json:"total_debit"`
	Balance     decimal.Decimal  `json:"balance"`
}

const summaryColumns = "owner_role, owner_id, " +
	"COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0) AS total_credit, " +
	"COALESCE(SUM(CASE WHEN amount < 0 THEN amount ELSE 0 END), 0) AS total_debit, " +
	"COALESCE(SUM(amount), 0) AS balance"

// BalanceSummaries aggregates the ledger per owner, optionally for one role only.
func BalanceSummaries(tx *gorm.DB, role models.OwnerRole) ([]BalanceSummary, error) {
	query := tx.Model(&models.LedgerEntry{}).Select(summaryColumns)
	if role != "" {
		query = query.Where("owner_role = ?", role)
	}

	var summaries []BalanceSummary
	if err := query.Group("owner_role, owner_id").Order("owner_role, owner_id").Scan(&summaries).Error; err != nil {
		return nil, err
	}
	for i := range summaries {
		summaries[i].round()
	}
	return summaries, nil
}

func OwnerBalanceSummary(tx *gorm.DB, role models.OwnerRole, ownerID uuid.UUID) (BalanceSummary, error) {
	var summaries []BalanceSummary
	err := tx.Model(&models.LedgerEntry{}).
		Select(summaryColumns).
		Where("owner_role = ? AND owner_id = ?", role, ownerID).
		Group("owner_role, owner_id").
		Scan(&summaries).Error
	if err != nil {
		return BalanceSummary{}, err
	}
	if len(summaries) == 0 {
		return BalanceSummary{OwnerRole: role, OwnerID: ownerID}, nil
	}
	summaries[0].round()
	return summaries[0], nil
}

func (s *BalanceSummary) round() {
	s.TotalCredit = s.TotalCredit.Round(2)
	s.TotalDebit = s.TotalDebit.Round(2)
	s.Balance = s.Balance.Round(2)
}

// PostAdjustment records a manual correction by an admin.
func PostAdjustment(db *gorm.DB, role models.OwnerRole, ownerID uuid.UUID, amount decimal.Decimal, note string) (*models.LedgerEntry, error) {
	if !role.Valid() {
		return nil, invalid("owner_role", nil, "owner role must be user or technician")
	}
	if amount.IsZero() {
		return nil, invalid("amount", nil, "adjustment amount must not be zero")
	}

	unlock := balanceLocks.lock(role, ownerID)
	defer unlock()

	entry, err := PostLedgerEntry(db, PostEntryInput{
		OwnerRole: role,
		OwnerID:   ownerID,
		Amount:    amount,
		Type:      models.EntryAdjustment,
		Note:      note,
	})
	if err != nil {
		return nil, err
	}
	countEntries(entry)
	return entry, nil
}

func countEntries(entries ...*models.LedgerEntry) {
	for _, e := range entries {
		if e != nil {
			metrics.LedgerEntries.WithLabelValues(string(e.Type)).Inc()
		}
	}
}
