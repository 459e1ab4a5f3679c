package store

// Column names of the process table
const (
	ColumnDate       = "date"
	ColumnExpParam   = "exp_param"
	ColumnConstParam = "const_param"
	ColumnRandParam  = "rand_param"
	ColumnSinParam   = "sin_param"
)

// ColumnKind is a portable column type, mapped to a concrete type per dialect
type ColumnKind int

const (
	KindTimestamp ColumnKind = iota
	KindFloat
	KindInteger
)

// Column represents a column definition
type Column struct {
	Name       string
	Kind       ColumnKind
	Nullable   bool // Whether the column can be NULL
	PrimaryKey bool
}

// GetProcessSchema returns the schema of the process table.
// The order matches the scan order used by QueryProcessRange.
func GetProcessSchema() []Column {
	return []Column{
		{Name: ColumnDate, Kind: KindTimestamp, PrimaryKey: true},
		{Name: ColumnExpParam, Kind: KindFloat},
		{Name: ColumnConstParam, Kind: KindFloat},
		{Name: ColumnRandParam, Kind: KindInteger},
		{Name: ColumnSinParam, Kind: KindFloat},
	}
}

func columnNames(schema []Column) []string {
	names := make([]string, len(schema))
	for i, col := range schema {
		names[i] = col.Name
	}
	return names
}
