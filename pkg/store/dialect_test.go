package store

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timeplus-io/processviz/pkg/config"
)

func TestDialectStatements(t *testing.T) {
	g := goldie.New(t)
	schema := GetProcessSchema()
	columns := columnNames(schema)

	for _, driver := range []string{
		config.DriverSQLServer,
		config.DriverPostgres,
		config.DriverSQLite,
		config.DriverDuckDB,
		config.DriverProton,
	} {
		t.Run(driver, func(t *testing.T) {
			d, err := DialectFor(driver)
			require.NoError(t, err)
			assert.Equal(t, driver, d.Name())

			statements := []string{
				d.DropTable("Process"),
				d.CreateTable("Process", schema),
				d.Insert("Process", columns),
				d.SelectRange("Process", columns, ColumnDate),
				d.Count("Process"),
			}
			g.Assert(t, driver+"_statements", []byte(strings.Join(statements, "\n")+"\n"))
		})
	}
}

func TestDialectForUnknown(t *testing.T) {
	_, err := DialectFor("oracle")
	assert.EqualError(t, err, `unsupported database driver "oracle"`)
}

func TestQuoteEscapes(t *testing.T) {
	tests := []struct {
		driver string
		ident  string
		want   string
	}{
		{config.DriverSQLServer, "we]ird", "[we]]ird]"},
		{config.DriverPostgres, `we"ird`, `"we""ird"`},
		{config.DriverProton, "we`ird", "`we``ird`"},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := DialectFor(tt.driver)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Quote(tt.ident))
		})
	}
}

func TestNullableColumns(t *testing.T) {
	schema := []Column{{Name: "note", Kind: KindFloat, Nullable: true}}

	sqlite, _ := DialectFor(config.DriverSQLite)
	assert.Equal(t, `CREATE TABLE "t" ("note" REAL)`, sqlite.CreateTable("t", schema))

	proton, _ := DialectFor(config.DriverProton)
	assert.Equal(t, "CREATE STREAM `t` (`note` float64 NULL)", proton.CreateTable("t", schema))
}

func TestDriverNames(t *testing.T) {
	want := map[string]string{
		config.DriverSQLServer: "sqlserver",
		config.DriverPostgres:  "pgx",
		config.DriverSQLite:    "sqlite",
		config.DriverDuckDB:    "duckdb",
		config.DriverProton:    "proton",
	}
	for name, driver := range want {
		d, err := DialectFor(name)
		require.NoError(t, err)
		assert.Equal(t, driver, d.DriverName(), name)
	}
}
