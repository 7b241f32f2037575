// Package tonnage manages the capacity-code key: the external table
// mapping code strings to refrigeration tons.
package tonnage

import (
	"errors"

	"hvacquote/internal"
	"hvacquote/internal/storage"
)

// Table is the in-memory tonnage key. Built once at startup and never
// mutated, so any number of concurrent quote calls may read it.
type Table struct {
	tons map[string]float64
}

func NewTable(codes []internal.TonnageCode) *Table {
	tons := make(map[string]float64, len(codes))
	for _, c := range codes {
		tons[c.Code] = c.Tons
	}
	return &Table{tons: tons}
}

// Lookup matches code as an exact string. Leading zeros are part of
// the key: "03" and "3" are distinct codes.
func (t *Table) Lookup(code string) (float64, bool) {
	tons, ok := t.tons[code]
	return tons, ok
}

func (t *Table) Len() int {
	return len(t.tons)
}

// LoadFromDB reads the stored key into a Table. An empty table is an
// error: pricing cannot proceed at all without the key.
func LoadFromDB(db *storage.DB) (*Table, error) {
	codes, err := db.ListTonnageCodes()
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, errors.New("tonnage key not loaded; run tonnage:import first")
	}
	return NewTable(codes), nil
}
