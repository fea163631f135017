package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fair-rice-portal/internal/model"
)

var grievanceCols = []string{"id", "tracking_id", "subject", "content", "contact_info", "image_filename", "status", "created_at"}

func TestGrievanceRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO grievances`).
		WithArgs("GRV-AB12CD34", "Short", "Body", nil, "x.png", "New", now).
		WillReturnResult(sqlmock.NewResult(17, 1))

	g := model.Grievance{TrackingID: "GRV-AB12CD34", Subject: "Short", Content: "Body", ImageName: "x.png", Status: model.StatusNew, CreatedAt: now}
	require.NoError(t, NewGrievanceRepo(db).Create(context.Background(), &g))
	assert.Equal(t, uint64(17), g.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrievanceRepo_Create_DuplicateToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO grievances`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	g := model.Grievance{TrackingID: "GRV-AB12CD34", Subject: "s", Content: "c", Status: model.StatusNew}
	err = NewGrievanceRepo(db).Create(context.Background(), &g)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrievanceRepo_GetByTrackingID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM grievances WHERE tracking_id = \?`).
		WithArgs("GRV-AB12CD34").
		WillReturnRows(sqlmock.NewRows(grievanceCols).AddRow(1, "GRV-AB12CD34", "s", "c", "phone", nil, "In Review", now))
	mock.ExpectQuery(`FROM grievances WHERE tracking_id = \?`).
		WithArgs("GRV-00000000").
		WillReturnRows(sqlmock.NewRows(grievanceCols))

	repo := NewGrievanceRepo(db)
	g, err := repo.GetByTrackingID(context.Background(), "GRV-AB12CD34")
	require.NoError(t, err)
	assert.Equal(t, "phone", g.ContactInfo)
	assert.Equal(t, "", g.ImageName)
	assert.Equal(t, "In Review", g.Status)

	_, err = repo.GetByTrackingID(context.Background(), "GRV-00000000")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrievanceRepo_ListPaged_NewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM grievances`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC LIMIT \? OFFSET \?`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(grievanceCols).AddRow(1, "GRV-AB12CD34", "s", "c", nil, nil, "New", now))

	page := model.NewPageRequest(0, 10)
	page.Sort.Desc = true
	out, total, err := NewGrievanceRepo(db).ListPaged(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, out, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrievanceRepo_AddComment_MissingGrievance(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO grievance_comments`).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})

	err = NewGrievanceRepo(db).AddComment(context.Background(), &model.Comment{GrievanceID: 99, Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrievanceRepo_CommentsFor_GroupsOldestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM grievance_comments WHERE grievance_id IN \(\?,\?\) ORDER BY created_at ASC, id ASC`).
		WithArgs(uint64(1), uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "grievance_id", "content", "created_at"}).
			AddRow(10, 1, "first", t0).
			AddRow(11, 2, "other", t0.Add(time.Minute)).
			AddRow(12, 1, "second", t0.Add(time.Hour)))

	out, err := NewGrievanceRepo(db).CommentsFor(context.Background(), []uint64{1, 2})
	require.NoError(t, err)
	require.Len(t, out[1], 2)
	assert.Equal(t, "first", out[1][0].Content)
	assert.Equal(t, "second", out[1][1].Content)
	assert.Len(t, out[2], 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrievanceRepo_CommentsFor_EmptyIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	out, err := NewGrievanceRepo(db).CommentsFor(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}
