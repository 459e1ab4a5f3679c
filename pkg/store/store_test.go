package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timeplus-io/processviz/pkg/config"
	"github.com/timeplus-io/processviz/pkg/models"
)

func newMockStore(t *testing.T, driver string) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	d, err := DialectFor(driver)
	require.NoError(t, err)
	return New(db, d, "Process"), mock
}

func sampleDataset() models.Dataset {
	return models.Dataset{
		{Date: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), ExpParam: 101.5, ConstParam: 100, RandParam: 99, SinParam: 100.2},
		{Date: time.Date(2018, 1, 2, 0, 0, 0, 0, time.UTC), ExpParam: 101.6, ConstParam: 100, RandParam: 101, SinParam: 99.8},
	}
}

func TestReplaceProcessTable(t *testing.T) {
	s, mock := newMockStore(t, config.DriverSQLServer)
	d := s.Dialect()
	ds := sampleDataset()

	mock.ExpectExec(d.DropTable("Process")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(d.CreateTable("Process", GetProcessSchema())).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	prep := mock.ExpectPrepare(d.Insert("Process", columnNames(GetProcessSchema())))
	for _, r := range ds {
		prep.ExpectExec().
			WithArgs(r.Date, r.ExpParam, r.ConstParam, r.RandParam, r.SinParam).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	n, err := s.ReplaceProcessTable(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceProcessTableErrors(t *testing.T) {
	ctx := context.Background()
	schema := GetProcessSchema()

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock, d Dialect)
		wantErr string
	}{
		{
			name: "drop fails",
			setup: func(mock sqlmock.Sqlmock, d Dialect) {
				mock.ExpectExec(d.DropTable("Process")).WillReturnError(errors.New("login failed"))
			},
			wantErr: "failed to drop table 'Process': login failed",
		},
		{
			name: "create fails",
			setup: func(mock sqlmock.Sqlmock, d Dialect) {
				mock.ExpectExec(d.DropTable("Process")).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(d.CreateTable("Process", schema)).WillReturnError(errors.New("permission denied"))
			},
			wantErr: "failed to create table 'Process': permission denied",
		},
		{
			name: "insert fails and rolls back",
			setup: func(mock sqlmock.Sqlmock, d Dialect) {
				mock.ExpectExec(d.DropTable("Process")).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(d.CreateTable("Process", schema)).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectBegin()
				prep := mock.ExpectPrepare(d.Insert("Process", columnNames(schema)))
				prep.ExpectExec().WillReturnError(errors.New("duplicate key"))
				mock.ExpectRollback()
			},
			wantErr: "failed to insert row for 2018-01-01: duplicate key",
		},
		{
			name: "commit fails",
			setup: func(mock sqlmock.Sqlmock, d Dialect) {
				mock.ExpectExec(d.DropTable("Process")).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(d.CreateTable("Process", schema)).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectBegin()
				prep := mock.ExpectPrepare(d.Insert("Process", columnNames(schema)))
				prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
				prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit().WillReturnError(errors.New("connection reset"))
			},
			wantErr: "failed to commit 2 rows: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t, config.DriverSQLServer)
			tt.setup(mock, s.Dialect())

			n, err := s.ReplaceProcessTable(ctx, sampleDataset())
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
			assert.Zero(t, n)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQueryProcessRange(t *testing.T) {
	s, mock := newMockStore(t, config.DriverPostgres)
	from := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(columnNames(GetProcessSchema())).
		AddRow(time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), 101.5, 100.0, int64(99), 100.2).
		AddRow("2018-01-02 00:00:00", 101.6, 100.0, int64(101), 99.8)
	mock.ExpectQuery(s.Dialect().SelectRange("Process", columnNames(GetProcessSchema()), ColumnDate)).
		WithArgs(from, to).
		WillReturnRows(rows)

	ds, err := s.QueryProcessRange(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, sampleDataset(), ds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryProcessRangeEmpty(t *testing.T) {
	s, mock := newMockStore(t, config.DriverSQLite)
	mock.ExpectQuery(s.Dialect().SelectRange("Process", columnNames(GetProcessSchema()), ColumnDate)).
		WillReturnRows(sqlmock.NewRows(columnNames(GetProcessSchema())))

	ds, err := s.QueryProcessRange(context.Background(), time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.NotNil(t, ds)
	assert.Empty(t, ds)
}

func TestQueryProcessRangeBadDate(t *testing.T) {
	s, mock := newMockStore(t, config.DriverSQLite)
	rows := sqlmock.NewRows(columnNames(GetProcessSchema())).AddRow("yesterday", 1.0, 1.0, int64(1), 1.0)
	mock.ExpectQuery(s.Dialect().SelectRange("Process", columnNames(GetProcessSchema()), ColumnDate)).
		WillReturnRows(rows)

	_, err := s.QueryProcessRange(context.Background(), time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read date column")
}

func TestQueryProcessRangeQueryError(t *testing.T) {
	s, mock := newMockStore(t, config.DriverSQLite)
	mock.ExpectQuery(s.Dialect().SelectRange("Process", columnNames(GetProcessSchema()), ColumnDate)).
		WillReturnError(sql.ErrConnDone)

	_, err := s.QueryProcessRange(context.Background(), time.Now(), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestCountRows(t *testing.T) {
	s, mock := newMockStore(t, config.DriverProton)
	mock.ExpectQuery("SELECT count(*) FROM table(`Process`)").
		WillReturnRows(sqlmock.NewRows([]string{"count()"}).AddRow(int64(2000)))

	n, err := s.CountRows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2000), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
