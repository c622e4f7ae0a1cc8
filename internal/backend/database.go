package backend

import (
	"fmt"
	"strings"
)

// Database selects which dataset the bank API reads and writes.
type Database string

const (
	DatabaseSeed    Database = "SEED"
	DatabaseTesting Database = "TESTING"
	DatabaseProd    Database = "PROD"
)

// Databases lists the selectable datasets in display order.
func Databases() []Database {
	return []Database{DatabaseSeed, DatabaseTesting, DatabaseProd}
}

// ParseDatabase accepts a dataset name in any letter case.
func ParseDatabase(value string) (Database, error) {
	db := Database(strings.ToUpper(strings.TrimSpace(value)))
	switch db {
	case DatabaseSeed, DatabaseTesting, DatabaseProd:
		return db, nil
	}
	return "", fmt.Errorf("backend: unknown database %q", value)
}

func (d Database) String() string {
	return string(d)
}

// Label returns the human readable name shown in the selector.
func (d Database) Label() string {
	switch d {
	case DatabaseSeed:
		return "Seed"
	case DatabaseTesting:
		return "Testing"
	case DatabaseProd:
		return "Production"
	default:
		return string(d)
	}
}
