package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Product is an immutable catalog record. Instances are created once at
// startup and are read-only for the lifetime of the process.
type Product struct {
	ID       string `json:"product_id"`
	Name     string `json:"product_name"`
	Category string `json:"category"`
	Price    Price  `json:"price"`
	About    string `json:"about_product"`
	Brand    string `json:"brand"`
	Rating   string `json:"rating"`
	Features Attr   `json:"features"`
	Tags     Attr   `json:"tags"`
	Specs    Attr   `json:"specs"`
}

// UnmarshalJSON accepts the loose field aliases the catalog files use:
// product_id/id, product_name/name, about_product/description,
// brand/manufacturer, price/discounted_price.
func (p *Product) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID              string `json:"product_id"`
		AltID           string `json:"id"`
		Name            string `json:"product_name"`
		AltName         string `json:"name"`
		Category        string `json:"category"`
		Price           Price  `json:"price"`
		DiscountedPrice Price  `json:"discounted_price"`
		About           string `json:"about_product"`
		Description     string `json:"description"`
		Brand           string `json:"brand"`
		Manufacturer    string `json:"manufacturer"`
		Rating          Attr   `json:"rating"`
		Features        Attr   `json:"features"`
		Tags            Attr   `json:"tags"`
		Specs           Attr   `json:"specs"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.ID = firstNonEmpty(aux.ID, aux.AltID)
	p.Name = firstNonEmpty(aux.Name, aux.AltName)
	p.Category = aux.Category
	p.Price = aux.Price
	if p.Price.IsZero() {
		p.Price = aux.DiscountedPrice
	}
	p.About = firstNonEmpty(aux.About, aux.Description)
	p.Brand = firstNonEmpty(aux.Brand, aux.Manufacturer)
	p.Rating = aux.Rating.Render()
	p.Features = aux.Features
	p.Tags = aux.Tags
	p.Specs = aux.Specs
	return nil
}

// DocText composes the enriched text a product is indexed under.
func (p Product) DocText() string {
	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+": "+value+".")
		}
	}
	add("Name", p.Name)
	add("Description", p.About)
	add("Category", p.Category)
	add("Brand", p.Brand)
	add("Key specs", p.Specs.Render())
	add("Features", p.Features.Render())
	add("Tags", p.Tags.Render())
	add("Rating", p.Rating)
	if !p.Price.IsZero() {
		parts = append(parts, "Price: "+p.Price.String()+" ("+p.PriceBucket()+").")
	}
	if len(parts) == 0 {
		parts = append(parts, p.ID)
	}
	return strings.Join(parts, " ")
}

// CompositeQuery builds the synthetic query used to find related products:
// the space-joined concatenation of the present, non-empty descriptive parts.
func (p Product) CompositeQuery() string {
	var parts []string
	for _, part := range []string{
		p.Name,
		p.About,
		p.Category,
		p.Brand,
		p.Features.Render(),
		p.Tags.Render(),
		p.Specs.Render(),
	} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

// PriceBucket classifies the product into a coarse price tier.
func (p Product) PriceBucket() string {
	v := p.Price.Value()
	switch {
	case v <= 1000:
		return "budget"
	case v <= 5000:
		return "mid-range"
	default:
		return "premium"
	}
}

// MatchText is the name+about concatenation the fuzzy matcher scores against.
func (p Product) MatchText() string {
	if p.About == "" {
		return p.Name
	}
	return p.Name + " " + p.About
}

// Price holds a raw price value of any source shape (number, currency
// string, absent). Parsing is total: malformed input yields 0, never an
// error.
type Price struct {
	raw string
}

// NewPrice builds a price from its raw textual form.
func NewPrice(raw string) Price { return Price{raw: strings.TrimSpace(raw)} }

// IsZero reports whether the source record carried no price.
func (p Price) IsZero() bool { return p.raw == "" }

// String returns the raw price as found in the catalog.
func (p Price) String() string { return p.raw }

// Value coerces the price to a number, stripping currency symbols and
// thousand separators. Absent or unparsable prices are 0.
func (p Price) Value() float64 { return ParsePrice(p.raw) }

// UnmarshalJSON accepts a JSON number, string, or null.
func (p *Price) UnmarshalJSON(data []byte) error {
	s, ok := scalarString(data)
	if !ok {
		*p = Price{}
		return nil
	}
	*p = NewPrice(s)
	return nil
}

// MarshalJSON emits the raw price string, or null when absent.
func (p Price) MarshalJSON() ([]byte, error) {
	if p.raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(p.raw)
}

// ParsePrice extracts a numeric value from a raw price string. It keeps
// digits and the decimal point, drops everything else, and returns 0 when
// nothing parsable remains.
func ParsePrice(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
