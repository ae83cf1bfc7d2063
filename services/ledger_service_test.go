package services

import (
	"testing"

	"github.com/benerin-indonesia/benerin/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerEntriesCannotBeUpdated(t *testing.T) {
	db := newTestDB(t)
	owner := uuid.New()
	entry, err := PostLedgerEntry(db, PostEntryInput{OwnerRole: models.OwnerTechnician, OwnerID: owner, Amount: dec("50000"), Type: models.EntryHold})
	require.NoError(t, err)

	err = db.Model(entry).Update("amount", dec("1")).Error
	assert.ErrorIs(t, err, models.ErrLedgerEntryImmutable)

	entry.Note = strPtr("edited")
	assert.ErrorIs(t, db.Save(entry).Error, models.ErrLedgerEntryImmutable)

	var stored models.LedgerEntry
	require.NoError(t, db.First(&stored, "id = ?", entry.ID).Error)
	assert.True(t, stored.Amount.Equal(dec("50000")))
	assert.Nil(t, stored.Note)
}

func TestLedgerEntriesCannotBeDeleted(t *testing.T) {
	db := newTestDB(t)
	owner := uuid.New()
	entry, err := PostLedgerEntry(db, PostEntryInput{OwnerRole: models.OwnerUser, OwnerID: owner, Amount: dec("10000"), Type: models.EntryRefundCredit})
	require.NoError(t, err)

	assert.ErrorIs(t, db.Delete(entry).Error, models.ErrLedgerEntryImmutable)

	var count int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).Where("id = ?", entry.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPostLedgerEntryValidation(t *testing.T) {
	db := newTestDB(t)

	_, err := PostLedgerEntry(db, PostEntryInput{OwnerRole: "merchant", OwnerID: uuid.New(), Amount: dec("1"), Type: models.EntryHold})
	assert.Error(t, err)

	_, err = PostLedgerEntry(db, PostEntryInput{OwnerRole: models.OwnerUser, Amount: dec("1"), Type: models.EntryHold})
	assert.Error(t, err)

	_, err = PostLedgerEntry(db, PostEntryInput{OwnerRole: models.OwnerUser, OwnerID: uuid.New(), Amount: dec("1"), Type: "bonus"})
	assert.Error(t, err)
}

func TestPostLedgerEntryDefaults(t *testing.T) {
	db := newTestDB(t)
	ref := uuid.New()
	entry, err := PostLedgerEntry(db, PostEntryInput{
		OwnerRole: models.OwnerTechnician,
		OwnerID:   uuid.New(),
		Amount:    dec("1234.567"),
		Type:      models.EntryHold,
		RefTable:  models.RefPayment,
		RefID:     &ref,
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCurrency, entry.Currency)
	assert.True(t, entry.Amount.Equal(dec("1234.57")))
	require.NotNil(t, entry.RefTable)
	assert.Equal(t, models.RefPayment, *entry.RefTable)
}

func TestCurrentBalanceSumsEntries(t *testing.T) {
	db := newTestDB(t)
	tech := uuid.New()
	other := uuid.New()

	assert.True(t, balanceOf(t, db, models.OwnerTechnician, tech).IsZero())

	credit(t, db, models.OwnerTechnician, tech, "150000")
	credit(t, db, models.OwnerTechnician, tech, "-40000.50")
	credit(t, db, models.OwnerTechnician, other, "999")
	credit(t, db, models.OwnerUser, tech, "777")

	assert.True(t, balanceOf(t, db, models.OwnerTechnician, tech).Equal(dec("109999.5")))
}

func TestListLedgerEntriesFilters(t *testing.T) {
	db := newTestDB(t)
	tech := uuid.New()
	ref := uuid.New()

	_, err := PostLedgerEntry(db, PostEntryInput{OwnerRole: models.OwnerTechnician, OwnerID: tech, Amount: dec("100"), Type: models.EntryHold, RefTable: models.RefPayment, RefID: &ref})
	require.NoError(t, err)
	credit(t, db, models.OwnerTechnician, tech, "5")
	credit(t, db, models.OwnerUser, uuid.New(), "5")

	all, err := ListLedgerEntries(db, LedgerFilter{OwnerRole: models.OwnerTechnician, OwnerID: &tech})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	holds, err := ListLedgerEntries(db, LedgerFilter{Type: models.EntryHold, RefTable: models.RefPayment, RefID: &ref})
	require.NoError(t, err)
	require.Len(t, holds, 1)
	assert.Equal(t, tech, holds[0].OwnerID)

	page, err := ListLedgerEntries(db, LedgerFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestBalanceSummaries(t *testing.T) {
	db := newTestDB(t)
	tech := uuid.New()
	user := uuid.New()

	credit(t, db, models.OwnerTechnician, tech, "100000")
	credit(t, db, models.OwnerTechnician, tech, "-30000")
	credit(t, db, models.OwnerUser, user, "20000")

	all, err := BalanceSummaries(db, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	techs, err := BalanceSummaries(db, models.OwnerTechnician)
	require.NoError(t, err)
	require.Len(t, techs, 1)
	assert.Equal(t, tech, techs[0].OwnerID)
	assert.True(t, techs[0].TotalCredit.Equal(dec("100000")))
	assert.True(t, techs[0].TotalDebit.Equal(dec("-30000")))
	assert.True(t, techs[0].Balance.Equal(dec("70000")))

	empty, err := OwnerBalanceSummary(db, models.OwnerUser, uuid.New())
	require.NoError(t, err)
	assert.True(t, empty.Balance.IsZero())
	assert.Equal(t, models.OwnerUser, empty.OwnerRole)
}

func TestPostAdjustment(t *testing.T) {
	db := newTestDB(t)
	tech := uuid.New()

	entry, err := PostAdjustment(db, models.OwnerTechnician, tech, dec("-2500"), "correction for duplicate transfer")
	require.NoError(t, err)
	assert.Equal(t, models.EntryAdjustment, entry.Type)
	assert.True(t, balanceOf(t, db, models.OwnerTechnician, tech).Equal(dec("-2500")))

	_, err = PostAdjustment(db, models.OwnerTechnician, tech, dec("0"), "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)

	_, err = PostAdjustment(db, "admin", tech, dec("1"), "")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "owner_role", verr.Field)
}
