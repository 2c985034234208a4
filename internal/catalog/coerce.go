package catalog

// coerce.go converts loosely typed spreadsheet cells into typed item fields.
//
// Spreadsheet data is messy: numbers arrive as strings with currency symbols
// and thousands separators, as native floats from xlsx cells, or not at all.
// The policy here is fixed and never returns an error:
//   - Numeric fields resolve to 0 when blank, absent or unparsable.
//   - Nullable numeric fields resolve to nil instead, so "no previous price"
//     stays distinguishable from "previous price is zero".
//   - String fields resolve to "" or to a field-specific default label.
//   - The natural key never defaults: a blank key means "no match possible".

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// RawRow is one parsed spreadsheet row keyed by header name.
// Header keys are case-sensitive.
type RawRow map[string]any

// Recognised column names.
const (
	ColTildaUID        = "tildaUid"
	ColBrand           = "brand"
	ColModel           = "model"
	ColSKU             = "sku"
	ColMark            = "mark"
	ColCategory        = "category"
	ColTitle           = "title"
	ColDescription     = "description"
	ColText            = "text"
	ColPhoto           = "photo"
	ColPrice           = "price"
	ColQuantity        = "quantity"
	ColPriceOld        = "priceOld"
	ColEditions        = "editions"
	ColModifications   = "modifications"
	ColExternalID      = "externalId"
	ColParentUID       = "parentUid"
	ColEngineType      = "engineType"
	ColEngineVolume    = "engineVolume"
	ColTransmission    = "transmission"
	ColDriveType       = "driveType"
	ColYear            = "year"
	ColEnginePower     = "enginePower"
	ColPriceUSD        = "priceUSD"
	ColCountryOfOrigin = "countryOfOrigin"
	ColMileage         = "mileage"
	ColWeight          = "weight"
	ColLength          = "length"
	ColWidth           = "width"
	ColHeight          = "height"
)

var knownColumns = map[string]bool{
	ColTildaUID: true, ColBrand: true, ColModel: true, ColSKU: true, ColMark: true,
	ColCategory: true, ColTitle: true, ColDescription: true, ColText: true, ColPhoto: true,
	ColPrice: true, ColQuantity: true, ColPriceOld: true, ColEditions: true,
	ColModifications: true, ColExternalID: true, ColParentUID: true, ColEngineType: true,
	ColEngineVolume: true, ColTransmission: true, ColDriveType: true, ColYear: true,
	ColEnginePower: true, ColPriceUSD: true, ColCountryOfOrigin: true, ColMileage: true,
	ColWeight: true, ColLength: true, ColWidth: true, ColHeight: true,
}

// IsColumn reports whether name is a recognised import column (case-sensitive).
func IsColumn(name string) bool { return knownColumns[name] }

// numericRegex validates that a string is a valid numeric format after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// decimalCommaRegex matches a single comma used as a decimal separator ("1,6", "12,50").
var decimalCommaRegex = regexp.MustCompile(`^[+-]?\d+,\d{1,2}$`)

// numberNoise is stripped from numeric cells before parsing.
var numberNoise = strings.NewReplacer(
	"$", "",
	"\u20ac", "", // Euro
	"\u00a3", "", // Pound
	"\u20bd", "", // Ruble
	" ", "",
	"\u00a0", "", // no-break space, used as thousands separator
	"\u202f", "", // narrow no-break space
)

// Float coerces a cell to a non-negative float. Never NaN.
func Float(raw any) float64 {
	v, ok := parseNumber(raw)
	if !ok || v < 0 {
		return 0
	}
	return v
}

// Int coerces a cell to a non-negative int, truncating fractions.
func Int(raw any) int {
	v := Float(raw)
	if v > math.MaxInt32 {
		return 0
	}
	return int(v)
}

// NullableFloat coerces a cell to a float, or nil when the cell carries no number.
func NullableFloat(raw any) *float64 {
	v, ok := parseNumber(raw)
	if !ok || v < 0 {
		return nil
	}
	return &v
}

// String coerces a cell to a trimmed string.
func String(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return String(float64(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// StringOr coerces a cell to a trimmed string, using def when blank.
func StringOr(raw any, def string) string {
	if s := String(raw); s != "" {
		return s
	}
	return def
}

// NaturalKey coerces a natural-key cell. ok is false when the key is blank;
// such rows must take the create path and are never matched to each other.
func NaturalKey(raw any) (key string, ok bool) {
	key = cleanCell(String(raw))
	return key, key != ""
}

// PhotoList splits a space-separated list of image URLs.
// The first URL is the primary thumbnail.
func PhotoList(raw any) []string {
	fields := strings.Fields(String(raw))
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// CoerceRow maps a raw spreadsheet row onto an Item.
// Unknown columns are ignored; missing columns take the default policies.
func CoerceRow(row RawRow) Item {
	uid, _ := NaturalKey(row[ColTildaUID])
	brand := StringOr(row[ColBrand], DefaultLabel)
	title := String(row[ColTitle])

	return Item{
		ExternalUID: uid,
		Brand:       brand,
		Model:       modelFrom(String(row[ColModel]), title, brand),
		SKU:         String(row[ColSKU]),
		Mark:        String(row[ColMark]),
		Category:    String(row[ColCategory]),

		Title:       title,
		Description: String(row[ColDescription]),
		Text:        String(row[ColText]),
		Photos:      PhotoList(row[ColPhoto]),

		Price:    Known(Float(row[ColPrice])),
		PriceOld: NullableFloat(row[ColPriceOld]),
		PriceUSD: Float(row[ColPriceUSD]),
		Quantity: Int(row[ColQuantity]),

		Editions:      String(row[ColEditions]),
		Modifications: String(row[ColModifications]),
		ExternalID:    String(row[ColExternalID]),
		ParentUID:     String(row[ColParentUID]),

		EngineType:      String(row[ColEngineType]),
		EngineVolume:    Float(row[ColEngineVolume]),
		EnginePower:     Float(row[ColEnginePower]),
		Transmission:    String(row[ColTransmission]),
		DriveType:       String(row[ColDriveType]),
		Year:            Int(row[ColYear]),
		CountryOfOrigin: String(row[ColCountryOfOrigin]),
		Mileage:         Float(row[ColMileage]),
		Weight:          Float(row[ColWeight]),
		Length:          Float(row[ColLength]),
		Width:           Float(row[ColWidth]),
		Height:          Float(row[ColHeight]),
	}
}

// modelFrom prefers an explicit model column, then the title with the brand
// prefix removed ("Toyota Land Cruiser 300" -> "Land Cruiser 300").
func modelFrom(model, title, brand string) string {
	if model != "" {
		return model
	}
	if title == "" {
		return DefaultLabel
	}
	if brand != DefaultLabel && len(title) > len(brand) && strings.EqualFold(title[:len(brand)], brand) && title[len(brand)] == ' ' {
		title = strings.TrimSpace(title[len(brand):])
	}
	if title == "" {
		return DefaultLabel
	}
	return title
}

// parseNumber extracts a finite number from a cell of unknown shape.
func parseNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case string:
		return parseNumericString(v)
	case bool:
		return 0, false
	default:
		return parseNumericString(fmt.Sprint(v))
	}
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseNumericString handles currency symbols, thousands separators and
// decimal commas.
func parseNumericString(s string) (float64, bool) {
	s = numberNoise.Replace(cleanCell(s))
	if s == "" {
		return 0, false
	}

	switch {
	case strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ",", "")
	case decimalCommaRegex.MatchString(s):
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}

	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

// cleanCell removes spreadsheet artifacts from a cell value:
// surrounding whitespace, Excel formula prefixes (="...") and quotes.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}
