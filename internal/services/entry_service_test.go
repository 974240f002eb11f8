package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/controlfin/backend/internal/repository"
)

// ceiling of 10000.00 in cents, as configured by default
const testMaxAmount = int64(1_000_000)

func entryServiceForTest(t *testing.T) (*EntryService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	entries := repository.NewEntryRepository()
	service := NewEntryService(db, entries, newOwnershipValidator(), testMaxAmount)
	return service, mock, func() { db.Close() }
}

func expectOwnedEntries(mock sqlmock.Sqlmock, owner string, rows *sqlmock.Rows) {
	mock.ExpectQuery("SELECT e.id, e.name, e.account_id, e.category_id, e.date, e.amount, e.paid FROM entries e JOIN accounts a ON e.account_id = a.id WHERE a.user_login = \\$1").
		WithArgs(owner).
		WillReturnRows(rows)
}

func entryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "account_id", "category_id", "date", "amount", "paid"})
}

func expectEntryRow(mock sqlmock.Sqlmock, id, name string, date time.Time, amount int64, paid bool) {
	mock.ExpectQuery("SELECT id, name, account_id, category_id, date, amount, paid FROM entries WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(entryRows().AddRow(id, name, "acc-1", "cat-1", date, amount, paid))
}

// expectEntryOwnership covers the three lookups behind entry ownership:
// entry, its account, the caller.
func expectEntryOwnership(mock sqlmock.Sqlmock, entryID, name string, date time.Time, amount int64, paid bool, owner string) {
	expectEntryRow(mock, entryID, name, date, amount, paid)
	expectAccountRow(mock, "acc-1", "Conta Corrente", owner)
	expectUserRow(mock, owner)
}

func TestEntryService_Create(t *testing.T) {
	service, mock, closeDB := entryServiceForTest(t)
	defer closeDB()

	date := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)

	t.Run("successful creation", func(t *testing.T) {
		mock.ExpectBegin()
		expectAccountRow(mock, "acc-1", "Conta Corrente", "maria")
		expectUserRow(mock, "maria")
		expectCategoryRow(mock, "cat-1", "Alimentação", "maria")
		expectUserRow(mock, "maria")
		expectOwnedEntries(mock, "maria", entryRows())
		mock.ExpectExec("INSERT INTO entries").
			WithArgs(sqlmock.AnyArg(), "Pizza", "acc-1", "cat-1", date, int64(1000), false).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		entry, err := service.Create(EntryInput{
			Name:       "Pizza",
			AccountID:  "acc-1",
			CategoryID: "cat-1",
			Date:       date,
			Amount:     1000,
		}, "maria")
		assert.NoError(t, err)
		assert.Equal(t, "Pizza", entry.Name)
		assert.NotEmpty(t, entry.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("amount must be positive", func(t *testing.T) {
		mock.ExpectBegin()
		expectAccountRow(mock, "acc-1", "Conta Corrente", "maria")
		expectUserRow(mock, "maria")
		expectCategoryRow(mock, "cat-1", "Alimentação", "maria")
		expectUserRow(mock, "maria")
		mock.ExpectRollback()

		_, err := service.Create(EntryInput{
			Name:       "Pizza",
			AccountID:  "acc-1",
			CategoryID: "cat-1",
			Date:       date,
			Amount:     0,
		}, "maria")
		assert.Error(t, err)

		domainErr, ok := AsDomainError(err)
		assert.True(t, ok)
		assert.Equal(t, KindBusiness, domainErr.Kind)
		assert.Equal(t, "Valor do lançamento informado deve ser maior que 0!", domainErr.Message)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("amount above the ceiling", func(t *testing.T) {
		mock.ExpectBegin()
		expectAccountRow(mock, "acc-1", "Conta Corrente", "maria")
		expectUserRow(mock, "maria")
		expectCategoryRow(mock, "cat-1", "Alimentação", "maria")
		expectUserRow(mock, "maria")
		mock.ExpectRollback()

		_, err := service.Create(EntryInput{
			Name:       "Pizza",
			AccountID:  "acc-1",
			CategoryID: "cat-1",
			Date:       date,
			Amount:     testMaxAmount + 1,
		}, "maria")
		assert.Error(t, err)

		domainErr, ok := AsDomainError(err)
		assert.True(t, ok)
		assert.Equal(t, KindBusiness, domainErr.Kind)
		assert.Equal(t, "Valor do lançamento informado não deve ser superior a 10000.00!", domainErr.Message)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("amount equal to the ceiling passes", func(t *testing.T) {
		mock.ExpectBegin()
		expectAccountRow(mock, "acc-1", "Conta Corrente", "maria")
		expectUserRow(mock, "maria")
		expectCategoryRow(mock, "cat-1", "Alimentação", "maria")
		expectUserRow(mock, "maria")
		expectOwnedEntries(mock, "maria", entryRows())
		mock.ExpectExec("INSERT INTO entries").
			WithArgs(sqlmock.AnyArg(), "Pizza", "acc-1", "cat-1", date, testMaxAmount, false).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		_, err := service.Create(EntryInput{
			Name:       "Pizza",
			AccountID:  "acc-1",
			CategoryID: "cat-1",
			Date:       date,
			Amount:     testMaxAmount,
		}, "maria")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("name and date collision", func(t *testing.T) {
		mock.ExpectBegin()
		expectAccountRow(mock, "acc-1", "Conta Corrente", "maria")
		expectUserRow(mock, "maria")
		expectCategoryRow(mock, "cat-1", "Alimentação", "maria")
		expectUserRow(mock, "maria")
		expectOwnedEntries(mock, "maria",
			entryRows().AddRow("entry-9", "Pizza", "acc-1", "cat-1", date, int64(2000), false))
		mock.ExpectRollback()

		_, err := service.Create(EntryInput{
			Name:       "Pizza",
			AccountID:  "acc-1",
			CategoryID: "cat-1",
			Date:       date,
			Amount:     1000,
		}, "maria")
		assert.Error(t, err)

		domainErr, ok := AsDomainError(err)
		assert.True(t, ok)
		assert.Equal(t, KindConflict, domainErr.Kind)
		assert.Equal(t, "Lançamento com nome e data informados já existente.", domainErr.Message)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("same name on another day passes", func(t *testing.T) {
		mock.ExpectBegin()
		expectAccountRow(mock, "acc-1", "Conta Corrente", "maria")
		expectUserRow(mock, "maria")
		expectCategoryRow(mock, "cat-1", "Alimentação", "maria")
		expectUserRow(mock, "maria")
		expectOwnedEntries(mock, "maria",
			entryRows().AddRow("entry-9", "Pizza", "acc-1", "cat-1", date.AddDate(0, 0, 1), int64(2000), false))
		mock.ExpectExec("INSERT INTO entries").
			WithArgs(sqlmock.AnyArg(), "Pizza", "acc-1", "cat-1", date, int64(1000), false).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		_, err := service.Create(EntryInput{
			Name:       "Pizza",
			AccountID:  "acc-1",
			CategoryID: "cat-1",
			Date:       date,
			Amount:     1000,
		}, "maria")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEntryService_Update(t *testing.T) {
	service, mock, closeDB := entryServiceForTest(t)
	defer closeDB()

	date := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)

	t.Run("collision scan skips the entry being updated", func(t *testing.T) {
		mock.ExpectBegin()
		expectAccountRow(mock, "acc-1", "Conta Corrente", "maria")
		expectUserRow(mock, "maria")
		expectCategoryRow(mock, "cat-1", "Alimentação", "maria")
		expectUserRow(mock, "maria")
		expectEntryOwnership(mock, "entry-1", "Pizza", date, 1000, false, "maria")
		expectOwnedEntries(mock, "maria",
			entryRows().AddRow("entry-1", "Pizza", "acc-1", "cat-1", date, int64(1000), false))
		expectEntryRow(mock, "entry-1", "Pizza", date, 1000, false)
		mock.ExpectExec("UPDATE entries SET name = \\$1, account_id = \\$2, category_id = \\$3, date = \\$4, amount = \\$5, paid = \\$6 WHERE id = \\$7").
			WithArgs("Pizza", "acc-1", "cat-1", date, int64(1500), true, "entry-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		entry, err := service.Update("entry-1", EntryInput{
			Name:       "Pizza",
			AccountID:  "acc-1",
			CategoryID: "cat-1",
			Date:       date,
			Amount:     1500,
			Paid:       true,
		}, "maria")
		assert.NoError(t, err)
		assert.Equal(t, int64(1500), entry.Amount)
		assert.True(t, entry.Paid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("collision with a different entry", func(t *testing.T) {
		mock.ExpectBegin()
		expectAccountRow(mock, "acc-1", "Conta Corrente", "maria")
		expectUserRow(mock, "maria")
		expectCategoryRow(mock, "cat-1", "Alimentação", "maria")
		expectUserRow(mock, "maria")
		expectEntryOwnership(mock, "entry-1", "Pizza", date, 1000, false, "maria")
		expectOwnedEntries(mock, "maria",
			entryRows().AddRow("entry-2", "Cinema", "acc-1", "cat-1", date, int64(3000), false))
		mock.ExpectRollback()

		_, err := service.Update("entry-1", EntryInput{
			Name:       "Cinema",
			AccountID:  "acc-1",
			CategoryID: "cat-1",
			Date:       date,
			Amount:     1000,
		}, "maria")
		assert.Error(t, err)

		domainErr, ok := AsDomainError(err)
		assert.True(t, ok)
		assert.Equal(t, KindConflict, domainErr.Kind)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ownership checked before the amount range", func(t *testing.T) {
		// A zero amount on an account of another user reports the
		// ownership failure, not the range failure.
		mock.ExpectBegin()
		expectAccountRow(mock, "acc-1", "Conta Corrente", "joao")
		expectUserRow(mock, "maria")
		mock.ExpectRollback()

		_, err := service.Update("entry-1", EntryInput{
			Name:       "Pizza",
			AccountID:  "acc-1",
			CategoryID: "cat-1",
			Date:       date,
			Amount:     0,
		}, "maria")
		assert.Error(t, err)

		domainErr, ok := AsDomainError(err)
		assert.True(t, ok)
		assert.Equal(t, KindForbidden, domainErr.Kind)
		assert.Equal(t, "Conta não pertence ao usuário informado!", domainErr.Message)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEntryService_MarkPaid(t *testing.T) {
	service, mock, closeDB := entryServiceForTest(t)
	defer closeDB()

	date := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)

	t.Run("marks an unpaid entry", func(t *testing.T) {
		mock.ExpectBegin()
		expectEntryOwnership(mock, "entry-1", "Pizza", date, 1000, false, "maria")
		expectEntryRow(mock, "entry-1", "Pizza", date, 1000, false)
		mock.ExpectExec("UPDATE entries SET paid = \\$1 WHERE id = \\$2").
			WithArgs(true, "entry-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		entry, err := service.MarkPaid("entry-1", "maria")
		assert.NoError(t, err)
		assert.True(t, entry.Paid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already paid", func(t *testing.T) {
		mock.ExpectBegin()
		expectEntryOwnership(mock, "entry-1", "Pizza", date, 1000, true, "maria")
		expectEntryRow(mock, "entry-1", "Pizza", date, 1000, true)
		mock.ExpectRollback()

		_, err := service.MarkPaid("entry-1", "maria")
		assert.Error(t, err)

		domainErr, ok := AsDomainError(err)
		assert.True(t, ok)
		assert.Equal(t, KindBusiness, domainErr.Kind)
		assert.Equal(t, "Lançamento já está pago!", domainErr.Message)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEntryService_MarkUnpaid(t *testing.T) {
	service, mock, closeDB := entryServiceForTest(t)
	defer closeDB()

	date := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)

	t.Run("clears a paid entry", func(t *testing.T) {
		mock.ExpectBegin()
		expectEntryOwnership(mock, "entry-1", "Pizza", date, 1000, true, "maria")
		expectEntryRow(mock, "entry-1", "Pizza", date, 1000, true)
		mock.ExpectExec("UPDATE entries SET paid = \\$1 WHERE id = \\$2").
			WithArgs(false, "entry-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		entry, err := service.MarkUnpaid("entry-1", "maria")
		assert.NoError(t, err)
		assert.False(t, entry.Paid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already unpaid", func(t *testing.T) {
		mock.ExpectBegin()
		expectEntryOwnership(mock, "entry-1", "Pizza", date, 1000, false, "maria")
		expectEntryRow(mock, "entry-1", "Pizza", date, 1000, false)
		mock.ExpectRollback()

		_, err := service.MarkUnpaid("entry-1", "maria")
		assert.Error(t, err)

		domainErr, ok := AsDomainError(err)
		assert.True(t, ok)
		assert.Equal(t, KindBusiness, domainErr.Kind)
		assert.Equal(t, "Lançamento já não está pago!", domainErr.Message)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEntryService_ListByPeriod(t *testing.T) {
	service, mock, closeDB := entryServiceForTest(t)
	defer closeDB()

	t.Run("filters by year and month", func(t *testing.T) {
		expectOwnedEntries(mock, "maria", entryRows().
			AddRow("entry-1", "Pizza", "acc-1", "cat-1", time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), int64(1000), false).
			AddRow("entry-2", "Cinema", "acc-1", "cat-1", time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), int64(3000), false).
			AddRow("entry-3", "Mercado", "acc-1", "cat-1", time.Date(2023, 5, 10, 0, 0, 0, 0, time.UTC), int64(20000), true))

		entries, err := service.ListByPeriod(202405, "maria")
		assert.NoError(t, err)
		assert.Len(t, entries, 1)
		assert.Equal(t, "entry-1", entries[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid month", func(t *testing.T) {
		expectOwnedEntries(mock, "maria", entryRows())

		_, err := service.ListByPeriod(202413, "maria")
		assert.Error(t, err)

		domainErr, ok := AsDomainError(err)
		assert.True(t, ok)
		assert.Equal(t, KindBusiness, domainErr.Kind)
		assert.Equal(t, "Mês da competência informada inválido!", domainErr.Message)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid year", func(t *testing.T) {
		expectOwnedEntries(mock, "maria", entryRows())

		_, err := service.ListByPeriod(99905, "maria")
		assert.Error(t, err)

		domainErr, ok := AsDomainError(err)
		assert.True(t, ok)
		assert.Equal(t, KindBusiness, domainErr.Kind)
		assert.Equal(t, "Ano da competência informada inválido!", domainErr.Message)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("period with no entries", func(t *testing.T) {
		expectOwnedEntries(mock, "maria", entryRows())

		entries, err := service.ListByPeriod(202405, "maria")
		assert.NoError(t, err)
		assert.Empty(t, entries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "10000.00", FormatAmount(1_000_000))
	assert.Equal(t, "0.05", FormatAmount(5))
	assert.Equal(t, "12.34", FormatAmount(1234))
	assert.Equal(t, "-3.50", FormatAmount(-350))
}
