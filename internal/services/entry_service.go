package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/controlfin/backend/internal/models"
	"github.com/controlfin/backend/internal/repository"
)

type EntryService struct {
	db        *sql.DB
	entries   *repository.EntryRepository
	ownership *OwnershipValidator
	maxAmount int64 // configured ceiling, in cents
}

// EntryInput carries the mutable entry fields after boundary parsing:
// the date is already a calendar day and the amount is in cents.
type EntryInput struct {
	Name       string
	AccountID  string
	CategoryID string
	Date       time.Time
	Amount     int64
	Paid       bool
}

func NewEntryService(db *sql.DB, entries *repository.EntryRepository,
	ownership *OwnershipValidator, maxAmount int64) *EntryService {
	return &EntryService{
		db:        db,
		entries:   entries,
		ownership: ownership,
		maxAmount: maxAmount,
	}
}

func (s *EntryService) ListAll(userLogin string) ([]models.Entry, error) {
	return s.entries.FindAllByOwner(s.db, userLogin)
}

func (s *EntryService) ListAllDetailed(userLogin string) ([]models.EntryDetail, error) {
	return s.entries.FindDetailedByOwner(s.db, userLogin)
}

func (s *EntryService) GetByID(entryID, userLogin string) (*models.Entry, error) {
	if err := s.ownership.ValidateEntryOwner(s.db, entryID, userLogin); err != nil {
		return nil, err
	}
	return s.entries.FindByID(s.db, entryID)
}

// ListByPeriod filters the user's entries to the given period, an
// integer formatted YYYYMM (e.g. 202405).
func (s *EntryService) ListByPeriod(period int, userLogin string) ([]models.Entry, error) {
	entries, err := s.entries.FindAllByOwner(s.db, userLogin)
	if err != nil {
		return nil, err
	}

	year := period / 100
	month := period % 100

	if year < 1000 || year > 9999 {
		return nil, NewBusiness("Ano da competência informada inválido!")
	}
	if month < 1 || month > 12 {
		return nil, NewBusiness("Mês da competência informada inválido!")
	}

	filtered := []models.Entry{}
	for _, entry := range entries {
		if entry.Date.Year() == year && int(entry.Date.Month()) == month {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

func (s *EntryService) Create(input EntryInput, userLogin string) (*models.Entry, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.ownership.ValidateAccountOwner(tx, input.AccountID, userLogin); err != nil {
		return nil, err
	}
	if err := s.ownership.ValidateCategoryOwner(tx, input.CategoryID, userLogin); err != nil {
		return nil, err
	}

	if err := s.validateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := s.validateUniqueNameAndDate(tx, "", input.Name, input.Date, userLogin); err != nil {
		return nil, err
	}

	entry, err := s.entries.Insert(tx, &models.Entry{
		Name:       input.Name,
		AccountID:  input.AccountID,
		CategoryID: input.CategoryID,
		Date:       input.Date,
		Amount:     input.Amount,
		Paid:       input.Paid,
	})
	if err != nil {
		return nil, err
	}
	return entry, tx.Commit()
}

func (s *EntryService) Update(entryID string, input EntryInput, userLogin string) (*models.Entry, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Check order matters: ownership of account, category and entry
	// first, then the range checks, then the collision check.
	if err := s.ownership.ValidateAccountOwner(tx, input.AccountID, userLogin); err != nil {
		return nil, err
	}
	if err := s.ownership.ValidateCategoryOwner(tx, input.CategoryID, userLogin); err != nil {
		return nil, err
	}
	if err := s.ownership.ValidateEntryOwner(tx, entryID, userLogin); err != nil {
		return nil, err
	}

	if err := s.validateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := s.validateUniqueNameAndDate(tx, entryID, input.Name, input.Date, userLogin); err != nil {
		return nil, err
	}

	entry, err := s.entries.FindByID(tx, entryID)
	if err != nil {
		return nil, err
	}
	entry.Name = input.Name
	entry.AccountID = input.AccountID
	entry.CategoryID = input.CategoryID
	entry.Date = input.Date
	entry.Amount = input.Amount
	entry.Paid = input.Paid

	if err := s.entries.Update(tx, entry); err != nil {
		return nil, err
	}
	return entry, tx.Commit()
}

func (s *EntryService) MarkPaid(entryID, userLogin string) (*models.Entry, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.ownership.ValidateEntryOwner(tx, entryID, userLogin); err != nil {
		return nil, err
	}

	entry, err := s.entries.FindByID(tx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Paid {
		return nil, NewBusiness("Lançamento já está pago!")
	}

	entry.Paid = true
	if err := s.entries.SetPaid(tx, entry.ID, true); err != nil {
		return nil, err
	}
	return entry, tx.Commit()
}

func (s *EntryService) MarkUnpaid(entryID, userLogin string) (*models.Entry, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.ownership.ValidateEntryOwner(tx, entryID, userLogin); err != nil {
		return nil, err
	}

	entry, err := s.entries.FindByID(tx, entryID)
	if err != nil {
		return nil, err
	}
	if !entry.Paid {
		return nil, NewBusiness("Lançamento já não está pago!")
	}

	entry.Paid = false
	if err := s.entries.SetPaid(tx, entry.ID, false); err != nil {
		return nil, err
	}
	return entry, tx.Commit()
}

// Delete has no back-reference guard: entries are leaves.
func (s *EntryService) Delete(entryID, userLogin string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.ownership.ValidateEntryOwner(tx, entryID, userLogin); err != nil {
		return err
	}
	if err := s.entries.DeleteByID(tx, entryID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *EntryService) validateAmount(amount int64) error {
	if amount <= 0 {
		return NewBusiness("Valor do lançamento informado deve ser maior que 0!")
	}
	if amount > s.maxAmount {
		return NewBusiness(fmt.Sprintf(
			"Valor do lançamento informado não deve ser superior a %s!", FormatAmount(s.maxAmount)))
	}
	return nil
}

// validateUniqueNameAndDate rejects an entry whose name and date both
// collide with another entry of the same user. excludeID skips the
// entry being updated; it is empty on create.
func (s *EntryService) validateUniqueNameAndDate(q repository.Querier, excludeID, name string,
	date time.Time, userLogin string) error {

	entries, err := s.entries.FindAllByOwner(q, userLogin)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.ID != excludeID && entry.Name == name && sameDay(entry.Date, date) {
			return NewConflict("Lançamento com nome e data informados já existente.")
		}
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// FormatAmount renders an amount in cents as a plain decimal with two
// fractional digits, as the API exposes it.
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
