package catalog

import (
	"strconv"
	"time"
)

// DefaultLabel is used for brand-like fields that must never be blank.
const DefaultLabel = "Unknown"

// Price is the listing price in USD.
// The zero value is OnRequest.
type Price struct {
	amount float64
	known  bool
}

// OnRequest is a listing whose price is deliberately unset.
var OnRequest = Price{}

// Known returns a priced listing. Non-positive amounts are price on request,
// because storage uses both NULL and 0 to encode it.
func Known(amount float64) Price {
	if amount <= 0 {
		return OnRequest
	}
	return Price{amount: amount, known: true}
}

// PriceFromNullable decodes a stored price column.
func PriceFromNullable(v *float64) Price {
	if v == nil {
		return OnRequest
	}
	return Known(*v)
}

// IsOnRequest reports whether the listing has no usable price.
func (p Price) IsOnRequest() bool { return !p.known }

// Amount returns the price and whether it is known.
func (p Price) Amount() (float64, bool) { return p.amount, p.known }

// Value returns the amount, or 0 for price on request.
// This is the encoding written to storage.
func (p Price) Value() float64 {
	if !p.known {
		return 0
	}
	return p.amount
}

func (p Price) String() string {
	if !p.known {
		return "on request"
	}
	return strconv.FormatFloat(p.amount, 'f', -1, 64)
}

// MarshalJSON encodes price on request as null.
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.known {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, p.amount, 'f', -1, 64), nil
}

// UnmarshalJSON accepts a number or null.
func (p *Price) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*p = OnRequest
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*p = Known(f)
	return nil
}

// Item is one sellable unit in the catalog.
type Item struct {
	ID          string `json:"id"`
	ExternalUID string `json:"externalUid"`

	Brand    string `json:"brand"`
	Model    string `json:"model"`
	SKU      string `json:"sku"`
	Mark     string `json:"mark"`
	Category string `json:"category"` // legacy free-text label, may be compound

	Title       string   `json:"title"`
	Description string   `json:"description"`
	Text        string   `json:"text"`
	Photos      []string `json:"photos"`

	Price    Price    `json:"price"`
	PriceOld *float64 `json:"priceOld"`
	PriceUSD float64  `json:"priceUSD"`
	Quantity int      `json:"quantity"`

	Editions      string `json:"editions"`
	Modifications string `json:"modifications"`
	ExternalID    string `json:"externalId"`
	ParentUID     string `json:"parentUid"`

	EngineType      string  `json:"engineType"`
	EngineVolume    float64 `json:"engineVolume"`
	EnginePower     float64 `json:"enginePower"`
	Transmission    string  `json:"transmission"`
	DriveType       string  `json:"driveType"`
	Year            int     `json:"year"`
	CountryOfOrigin string  `json:"countryOfOrigin"`
	Mileage         float64 `json:"mileage"`
	Weight          float64 `json:"weight"`
	Length          float64 `json:"length"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Thumbnail returns the primary photo URL, or "" when the item has none.
func (it Item) Thumbnail() string {
	if len(it.Photos) == 0 {
		return ""
	}
	return it.Photos[0]
}

// HasNaturalKey reports whether the item can be reconciled by ExternalUID.
func (it Item) HasNaturalKey() bool {
	return it.ExternalUID != ""
}

// Overwrite copies every imported field from src, keeping identity and
// creation time of the stored record.
func (it *Item) Overwrite(src Item) {
	id, created := it.ID, it.CreatedAt
	*it = src
	it.ID = id
	it.CreatedAt = created
}
