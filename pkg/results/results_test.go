package results

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/tiersql/internal/testutil"
	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect_FakeResult(t *testing.T) {
	res := testutil.NewFakeResult(
		[]string{"animal_id", "species", "dob"},
		[]string{"INT", "VARCHAR(64)", "DATE"},
		[]any{int64(1), "mouse", nil},
		[]any{int64(2), "rat", "2024-03-01"},
	)

	rows, err := Collect(res)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, res.Closed(), "Collect must close the result")

	row := rows[0]
	assert.False(t, row.IsEmpty())
	assert.Equal(t, 3, row.ColumnCount())
	assert.Equal(t, []core.TableColumn{
		{Ordinal: 0, Name: "animal_id", Type: core.DataTypeInteger},
		{Ordinal: 1, Name: "species", Type: core.DataTypeString},
		{Ordinal: 2, Name: "dob", Type: core.DataTypeDate},
	}, row.Columns())

	col, ok := row.Column("species")
	require.True(t, ok)
	assert.Equal(t, 1, col.Ordinal)

	col, ok = row.ColumnAt(2)
	require.True(t, ok)
	assert.Equal(t, "dob", col.Name)

	_, ok = row.Column("missing")
	assert.False(t, ok)
	_, ok = row.ColumnAt(3)
	assert.False(t, ok)
	_, ok = row.ColumnAt(-1)
	assert.False(t, ok)

	v, ok := rows[1].Value("species")
	require.True(t, ok)
	assert.Equal(t, "rat", v)

	v, ok = row.Value("dob")
	require.True(t, ok)
	assert.Nil(t, v)

	v, ok = rows[1].ValueAt(0)
	require.True(t, ok)
	assert.Equal(t, int64(2), v)
}

func TestCollect_NoColumns(t *testing.T) {
	rows, err := Collect(testutil.NewFakeResult(nil, nil))
	require.NoError(t, err)
	assert.Empty(t, rows)

	var zero TableRow
	assert.True(t, zero.IsEmpty())
	assert.Equal(t, 0, zero.ColumnCount())
	assert.Nil(t, zero.Columns())
	_, ok := zero.Column("x")
	assert.False(t, ok)
}

func TestCollect_SQLRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRowsWithColumnDefinition(
			sqlmock.NewColumn("table_name").OfType("VARCHAR", ""),
			sqlmock.NewColumn("payload").OfType("BLOB", []byte(nil)),
		).
			AddRow("animal__session", []byte{0x01, 0x02}).
			AddRow("#species", []byte{0x03}),
	)

	sqlRows, err := db.Query("SELECT table_name, payload FROM catalog")
	require.NoError(t, err)

	rows, err := Collect(sqlRows)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	col, ok := rows[0].Column("payload")
	require.True(t, ok)
	assert.Equal(t, core.DataTypeBlob, col.Type)

	v, _ := rows[0].Value("payload")
	assert.Equal(t, []byte{0x01, 0x02}, v)
	v, _ = rows[1].Value("table_name")
	assert.Equal(t, "#species", v)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCollect_IterationError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rowErr := errors.New("connection reset")
	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"n"}).AddRow(1).AddRow(2).RowError(1, rowErr),
	)

	sqlRows, err := db.Query("SELECT n FROM t")
	require.NoError(t, err)

	_, err = Collect(sqlRows)
	require.Error(t, err)
	assert.ErrorIs(t, err, rowErr)
}
