package store

import (
	"fmt"
	"strings"

	"github.com/timeplus-io/processviz/pkg/config"
)

// Dialect renders the handful of statements the store issues for one database flavour
type Dialect interface {
	// Name is the config driver name, e.g. "sqlserver"
	Name() string
	// DriverName is the database/sql driver registered for this dialect
	DriverName() string
	Quote(ident string) string
	// Placeholder returns the bind marker for the n-th (1-based) argument
	Placeholder(n int) string
	ColumnType(kind ColumnKind) string

	DropTable(table string) string
	CreateTable(table string, schema []Column) string
	Insert(table string, columns []string) string
	SelectRange(table string, columns []string, dateColumn string) string
	Count(table string) string
}

// sqlDialect covers every ANSI-ish backend. Proton overrides the parts that differ.
type sqlDialect struct {
	name        string
	driver      string
	quoteOpen   string
	quoteClose  string
	placeholder func(n int) string
	types       map[ColumnKind]string
}

func (d *sqlDialect) Name() string       { return d.name }
func (d *sqlDialect) DriverName() string { return d.driver }

func (d *sqlDialect) Quote(ident string) string {
	escaped := strings.ReplaceAll(ident, d.quoteClose, d.quoteClose+d.quoteClose)
	return d.quoteOpen + escaped + d.quoteClose
}

func (d *sqlDialect) Placeholder(n int) string { return d.placeholder(n) }

func (d *sqlDialect) ColumnType(kind ColumnKind) string { return d.types[kind] }

func (d *sqlDialect) DropTable(table string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(table)
}

func (d *sqlDialect) CreateTable(table string, schema []Column) string {
	fields := make([]string, len(schema))
	for i, col := range schema {
		field := fmt.Sprintf("%s %s", d.Quote(col.Name), d.ColumnType(col.Kind))
		if !col.Nullable {
			field += " NOT NULL"
		}
		if col.PrimaryKey {
			field += " PRIMARY KEY"
		}
		fields[i] = field
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", d.Quote(table), strings.Join(fields, ", "))
}

func (d *sqlDialect) Insert(table string, columns []string) string {
	marks := make([]string, len(columns))
	for i := range columns {
		marks[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.Quote(table), d.quoteList(columns), strings.Join(marks, ", "))
}

func (d *sqlDialect) SelectRange(table string, columns []string, dateColumn string) string {
	return d.selectRangeFrom(d.Quote(table), columns, dateColumn)
}

func (d *sqlDialect) selectRangeFrom(source string, columns []string, dateColumn string) string {
	date := d.Quote(dateColumn)
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s >= %s AND %s < %s ORDER BY %s",
		d.quoteList(columns), source, date, d.Placeholder(1), date, d.Placeholder(2), date)
}

func (d *sqlDialect) Count(table string) string {
	return "SELECT COUNT(*) FROM " + d.Quote(table)
}

func (d *sqlDialect) quoteList(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.Quote(c)
	}
	return strings.Join(quoted, ", ")
}

// protonDialect targets Timeplus Proton streams. Historical reads go through
// table() so the range query terminates instead of tailing the stream.
type protonDialect struct {
	sqlDialect
}

func (d *protonDialect) DropTable(table string) string {
	return "DROP STREAM IF EXISTS " + d.Quote(table)
}

func (d *protonDialect) CreateTable(table string, schema []Column) string {
	fields := make([]string, len(schema))
	for i, col := range schema {
		if col.Nullable {
			fields[i] = fmt.Sprintf("%s %s NULL", d.Quote(col.Name), d.ColumnType(col.Kind))
		} else {
			fields[i] = fmt.Sprintf("%s %s", d.Quote(col.Name), d.ColumnType(col.Kind))
		}
	}
	return fmt.Sprintf("CREATE STREAM %s (%s)", d.Quote(table), strings.Join(fields, ", "))
}

// Insert omits VALUES; the driver turns a prepared INSERT into a native batch.
func (d *protonDialect) Insert(table string, columns []string) string {
	return fmt.Sprintf("INSERT INTO %s (%s)", d.Quote(table), d.quoteList(columns))
}

func (d *protonDialect) SelectRange(table string, columns []string, dateColumn string) string {
	return d.selectRangeFrom("table("+d.Quote(table)+")", columns, dateColumn)
}

func (d *protonDialect) Count(table string) string {
	return "SELECT count(*) FROM table(" + d.Quote(table) + ")"
}

func questionMark(int) string { return "?" }

var dialects = map[string]Dialect{
	config.DriverSQLServer: &sqlDialect{
		name:        config.DriverSQLServer,
		driver:      "sqlserver",
		quoteOpen:   "[",
		quoteClose:  "]",
		placeholder: func(n int) string { return fmt.Sprintf("@p%d", n) },
		types: map[ColumnKind]string{
			KindTimestamp: "DATETIME2",
			KindFloat:     "FLOAT",
			KindInteger:   "BIGINT",
		},
	},
	config.DriverPostgres: &sqlDialect{
		name:        config.DriverPostgres,
		driver:      "pgx",
		quoteOpen:   `"`,
		quoteClose:  `"`,
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		types: map[ColumnKind]string{
			KindTimestamp: "TIMESTAMP",
			KindFloat:     "DOUBLE PRECISION",
			KindInteger:   "BIGINT",
		},
	},
	config.DriverSQLite: &sqlDialect{
		name:        config.DriverSQLite,
		driver:      "sqlite",
		quoteOpen:   `"`,
		quoteClose:  `"`,
		placeholder: questionMark,
		types: map[ColumnKind]string{
			KindTimestamp: "TIMESTAMP",
			KindFloat:     "REAL",
			KindInteger:   "INTEGER",
		},
	},
	config.DriverDuckDB: &sqlDialect{
		name:        config.DriverDuckDB,
		driver:      "duckdb",
		quoteOpen:   `"`,
		quoteClose:  `"`,
		placeholder: questionMark,
		types: map[ColumnKind]string{
			KindTimestamp: "TIMESTAMP",
			KindFloat:     "DOUBLE",
			KindInteger:   "BIGINT",
		},
	},
	config.DriverProton: &protonDialect{sqlDialect{
		name:        config.DriverProton,
		driver:      "proton",
		quoteOpen:   "`",
		quoteClose:  "`",
		placeholder: questionMark,
		types: map[ColumnKind]string{
			KindTimestamp: "datetime64(3)",
			KindFloat:     "float64",
			KindInteger:   "int64",
		},
	}},
}

// DialectFor returns the dialect registered for a config driver name
func DialectFor(driver string) (Dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	return d, nil
}
