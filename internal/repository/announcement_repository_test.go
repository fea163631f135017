package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fair-rice-portal/internal/model"
)

var announcementCols = []string{"id", "title", "content", "created_at"}

func TestAnnouncementRepo_Latest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM announcements ORDER BY created_at DESC, id DESC LIMIT 1`).
		WillReturnRows(sqlmock.NewRows(announcementCols).AddRow(3, "Next distribution", "Saturday 10am", now))
	mock.ExpectQuery(`FROM announcements ORDER BY created_at DESC, id DESC LIMIT 1`).
		WillReturnRows(sqlmock.NewRows(announcementCols))

	repo := NewAnnouncementRepo(db)
	a, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Next distribution", a.Title)

	_, err = repo.Latest(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepo_CreateAndDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Now().UTC()

	mock.ExpectExec(`INSERT INTO announcements`).
		WithArgs("t", "c", now).
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectExec(`DELETE FROM announcements WHERE id = \?`).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM announcements WHERE id = \?`).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewAnnouncementRepo(db)
	a := model.Announcement{Title: "t", Content: "c", CreatedAt: now}
	require.NoError(t, repo.Create(context.Background(), &a))
	assert.Equal(t, uint64(4), a.ID)
	require.NoError(t, repo.Delete(context.Background(), 4))
	assert.ErrorIs(t, repo.Delete(context.Background(), 4), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepo_ListPaged(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM announcements`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))
	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC LIMIT \? OFFSET \?`).
		WithArgs(2, 2).
		WillReturnRows(sqlmock.NewRows(announcementCols).AddRow(1, "old", "c", now))

	out, total, err := NewAnnouncementRepo(db).ListPaged(context.Background(), model.NewPageRequest(1, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, out, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
