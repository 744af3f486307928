package content

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Package is a bookable service package. Prices are in major currency units.
type Package struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	Description      string   `json:"description" yaml:"description"`
	Currency         string   `json:"currency" yaml:"currency"`
	Price            float64  `json:"price" yaml:"price"`
	Deposit          float64  `json:"deposit" yaml:"deposit"`
	Includes         []string `json:"includes,omitempty" yaml:"includes"`
	DurationEstimate string   `json:"durationEstimate,omitempty" yaml:"durationEstimate"`
	Availability     string   `json:"availability,omitempty" yaml:"availability"`
}

// DefaultCurrency is used for stored packages that do not name a currency.
const DefaultCurrency = "GBP"

// BuiltinPackages returns the catalog used when no packages have been stored.
func BuiltinPackages() []Package {
	return []Package{
		{
			ID:               "bridal-package",
			Name:             "Bridal Package",
			Description:      "The ultimate all-in-one bridal experience designed to make you look and feel flawless on your wedding day.",
			Currency:         "GBP",
			Price:            350.99,
			Deposit:          120,
			Includes:         []string{"Bridal trial session tailored to your look and theme", "Premium skin prep and luxury finish", "3-4 hour full glam session", "Professional touch-ups throughout the day", "Two edited videos ideal for reels or wedding memories"},
			DurationEstimate: "3-4 hours (wedding day)",
			Availability:     "BOTH",
		},
		{
			ID:               "birthday-glam",
			Name:             "Birthday Glam Package",
			Description:      "Celebrate your special day with a luxury beauty and photography experience.",
			Currency:         "NGN",
			Price:            65000,
			Deposit:          15000,
			Includes:         []string{"Flawless makeup application", "Premium skin prep and lash styling", "Birthday photoshoot included", "High-quality edited photos", "Non-refundable booking fee applies"},
			DurationEstimate: "2-3 hours",
			Availability:     "BOTH",
		},
		{
			ID:               "exclusive-birthday-shoot",
			Name:             "Exclusive Birthday Shoot",
			Description:      "Makeup photography session with cinematic video and professional editing.",
			Currency:         "NGN",
			Price:            60000,
			Deposit:          15000,
			Includes:         []string{"30-second reel included", "1-2 outfit changes for variety", "High-definition makeup finish", "Five professionally edited photos", "Cinematic reel for social media"},
			DurationEstimate: "2-3 hours",
			Availability:     "BOTH",
		},
	}
}

// LoadCatalogFile reads a YAML catalog of the form `packages: [...]`.
func LoadCatalogFile(path string) ([]Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file struct {
		Packages []Package `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(file.Packages) == 0 {
		return nil, fmt.Errorf("catalog %s defines no packages", path)
	}
	for i, p := range file.Packages {
		if p.ID == "" {
			file.Packages[i].ID = packageID(p.Name, i)
		}
		if p.Currency == "" {
			file.Packages[i].Currency = DefaultCurrency
		}
	}
	return file.Packages, nil
}

// storedPackage is the loosely-typed shape editors save in the packages section.
type storedPackage struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Currency    string          `json:"currency"`
	Price       json.RawMessage `json:"price"`
	Deposit     json.RawMessage `json:"deposit"`
	Includes    []string        `json:"includes"`
	Features    []string        `json:"features"`
}

// PackagesFromDocument converts a stored packages document into a catalog.
// ok is false when the document has no packages array, in which case the
// caller should use its fallback catalog. Entries without an id get
// slug(name)-index; entries whose price or deposit is not numeric are skipped.
func PackagesFromDocument(doc Document) (pkgs []Package, ok bool) {
	var wrapper struct {
		Packages []json.RawMessage `json:"packages"`
	}
	if err := json.Unmarshal(doc, &wrapper); err != nil || wrapper.Packages == nil {
		return nil, false
	}

	pkgs = make([]Package, 0, len(wrapper.Packages))
	for idx, raw := range wrapper.Packages {
		var sp storedPackage
		if err := json.Unmarshal(raw, &sp); err != nil {
			continue
		}
		price, priceOK := coerceAmount(sp.Price)
		deposit, depositOK := coerceAmount(sp.Deposit)
		if !priceOK || !depositOK {
			continue
		}

		p := Package{
			ID:          sp.ID,
			Name:        sp.Name,
			Description: sp.Description,
			Currency:    strings.ToUpper(strings.TrimSpace(sp.Currency)),
			Price:       price,
			Deposit:     deposit,
			Includes:    sp.Includes,
		}
		if p.ID == "" {
			p.ID = packageID(sp.Name, idx)
		}
		if p.Currency == "" {
			p.Currency = DefaultCurrency
		}
		if p.Includes == nil {
			p.Includes = sp.Features
		}
		pkgs = append(pkgs, p)
	}
	return pkgs, true
}

// FindPackage returns the package with the given id.
func FindPackage(pkgs []Package, id string) (Package, bool) {
	for _, p := range pkgs {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}

var whitespace = regexp.MustCompile(`\s+`)

func packageID(name string, idx int) string {
	return fmt.Sprintf("%s-%d", whitespace.ReplaceAllString(strings.ToLower(name), "-"), idx)
}

// coerceAmount accepts a JSON number or a numeric string.
func coerceAmount(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, n >= 0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
