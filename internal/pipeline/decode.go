package pipeline

import (
	"fmt"

	"hvacquote/internal"
	"hvacquote/internal/tonnage"
	"hvacquote/internal/util"
)

// Capacity map for the three-letter family: the two digits at
// positions 3-4 of the model encode tonnage directly.
var alternateFamilyTons = map[string]float64{
	"03": 3,
	"04": 4,
	"06": 6,
	"07": 7.5,
	"08": 8.5,
	"10": 10,
	"12": 12.5,
}

// Decoder resolves a model token to refrigeration tons. The tonnage
// table is read-only shared reference data; a Decoder is safe for
// concurrent use.
type Decoder struct {
	table *tonnage.Table
}

func NewDecoder(table *tonnage.Table) *Decoder {
	return &Decoder{table: table}
}

// DecodeOutcome carries either a resolved tonnage or the human-readable
// reason decoding failed. Failures are data, never errors.
type DecodeOutcome struct {
	Tons   float64
	Code   string
	OK     bool
	Reason string
}

func (d *Decoder) Decode(token internal.ModelToken) DecodeOutcome {
	if token.Family == internal.FamilyAlternate {
		return decodeAlternate(token.Raw)
	}
	return d.decodeStandard(token.Raw)
}

func decodeAlternate(model string) DecodeOutcome {
	prefix := util.AlnumPrefix(model, 5)
	if len(prefix) < 5 {
		return DecodeOutcome{Reason: "Could not decode a valid capacity code."}
	}
	code := prefix[3:5]
	tons, ok := alternateFamilyTons[code]
	if !ok {
		return DecodeOutcome{Code: code, Reason: fmt.Sprintf("Capacity code '%s' not found in direct map.", code)}
	}
	return DecodeOutcome{Tons: tons, Code: code, OK: true}
}

// decodeStandard reads the capacity code out of the first five
// alphanumeric characters: positions 2-4 when all three are digits,
// else positions 2-3 when both are digits. The code is then matched
// against the tonnage key as an exact string; "03" never matches a
// key of "3".
func (d *Decoder) decodeStandard(model string) DecodeOutcome {
	prefix := util.AlnumPrefix(model, 5)

	code := ""
	if len(prefix) >= 5 && util.AllDigits(prefix[2:5]) {
		code = prefix[2:5]
	} else if len(prefix) >= 4 && util.AllDigits(prefix[2:4]) {
		code = prefix[2:4]
	}
	if code == "" {
		return DecodeOutcome{Reason: "Could not decode a valid capacity code."}
	}

	tons, ok := d.table.Lookup(code)
	if !ok {
		return DecodeOutcome{Code: code, Reason: fmt.Sprintf("Capacity code '%s' not found in key.", code)}
	}
	return DecodeOutcome{Tons: tons, Code: code, OK: true}
}
