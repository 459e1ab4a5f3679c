//go:build cgo

package store

import (
	_ "github.com/marcboeker/go-duckdb" // duckdb driver, needs cgo
)
