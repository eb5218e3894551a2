package catalog

import (
	"fmt"
	"strings"
)

// Kind discriminates the three entity types carried by the supply chain
// graph. All cross-type dispatch goes through this discriminant.
type Kind string

const (
	KindLocation Kind = "LOCATION"
	KindSupplier Kind = "SUPPLIER"
	KindProduct  Kind = "PRODUCT"
)

// Entity is the shared view over the three catalog record types.
//
// Key returns the identity key that uniquely distinguishes an entity within
// its kind, flattened to a single string. Two entities are the same entity
// iff kind and key match. Display returns the stable one-line rendering of
// all fields consumed as tool output.
type Entity interface {
	Kind() Kind
	Key() string
	DisplayName() string
	Display() string
}

// Location represents a geographical site in the supply chain: a port,
// warehouse, or manufacturing region. Identity is the (name, country) pair;
// two locations with the same name in different countries are distinct.
type Location struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// NewLocation validates and creates a Location. Records are immutable after
// creation.
func NewLocation(name string, country string) (Location, error) {
	if strings.TrimSpace(name) == "" {
		return Location{}, fmt.Errorf("location name must not be empty")
	}
	if strings.TrimSpace(country) == "" {
		return Location{}, fmt.Errorf("location country must not be empty (location %q)", name)
	}
	return Location{Name: name, Country: country}, nil
}

func (l Location) Kind() Kind { return KindLocation }

// Key flattens the (name, country) identity pair into a single string.
func (l Location) Key() string { return l.Name + ", " + l.Country }

func (l Location) DisplayName() string { return l.Name }

func (l Location) Display() string {
	return fmt.Sprintf("Location %q (country: %s)", l.Name, l.Country)
}

// Supplier represents a manufacturing company. RiskScore and Revenue are
// descriptive attributes and are never mutated after creation. Identity is
// the company name.
type Supplier struct {
	Name      string  `json:"name"`
	RiskScore float64 `json:"risk_score"`
	Revenue   float64 `json:"revenue"`
}

// NewSupplier validates and creates a Supplier. RiskScore must be in [0, 1]
// and Revenue must be non-negative.
func NewSupplier(name string, riskScore float64, revenue float64) (Supplier, error) {
	if strings.TrimSpace(name) == "" {
		return Supplier{}, fmt.Errorf("supplier name must not be empty")
	}
	if riskScore < 0 || riskScore > 1 {
		return Supplier{}, fmt.Errorf("supplier %q risk score %.2f out of range [0,1]", name, riskScore)
	}
	if revenue < 0 {
		return Supplier{}, fmt.Errorf("supplier %q revenue must not be negative", name)
	}
	return Supplier{Name: name, RiskScore: riskScore, Revenue: revenue}, nil
}

func (s Supplier) Kind() Kind { return KindSupplier }

func (s Supplier) Key() string { return s.Name }

func (s Supplier) DisplayName() string { return s.Name }

func (s Supplier) Display() string {
	return fmt.Sprintf("Supplier %q (risk score: %.2f, revenue: %.2f)", s.Name, s.RiskScore, s.Revenue)
}

// Product represents a manufactured good. The SKU is assigned once at
// creation and never regenerated; it is the identity key.
type Product struct {
	Name  string  `json:"name"`
	SKU   string  `json:"sku"`
	Price float64 `json:"price"`
}

// NewProduct validates and creates a Product. Price must be non-negative.
func NewProduct(name string, sku string, price float64) (Product, error) {
	if strings.TrimSpace(name) == "" {
		return Product{}, fmt.Errorf("product name must not be empty")
	}
	if strings.TrimSpace(sku) == "" {
		return Product{}, fmt.Errorf("product %q sku must not be empty", name)
	}
	if price < 0 {
		return Product{}, fmt.Errorf("product %q price must not be negative", name)
	}
	return Product{Name: name, SKU: sku, Price: price}, nil
}

func (p Product) Kind() Kind { return KindProduct }

func (p Product) Key() string { return p.SKU }

func (p Product) DisplayName() string { return p.Name }

func (p Product) Display() string {
	return fmt.Sprintf("Product %q (sku: %s, price: %.2f)", p.Name, p.SKU, p.Price)
}

// Placement records that a supplier operates out of a location
// (the LOCATED_AT relationship, supplier → location).
type Placement struct {
	SupplierKey string `json:"supplier_key"`
	LocationKey string `json:"location_key"`
}

// Production records that a supplier manufactures a product
// (the MANUFACTURES relationship, supplier → product).
type Production struct {
	SupplierKey string `json:"supplier_key"`
	ProductKey  string `json:"product_key"`
}

// Catalog is the immutable-after-build set of entities and relationships
// from which the relationship graph and the semantic indices are populated.
type Catalog struct {
	Locations   []Location   `json:"locations"`
	Suppliers   []Supplier   `json:"suppliers"`
	Products    []Product    `json:"products"`
	Placements  []Placement  `json:"placements"`
	Productions []Production `json:"productions"`
}
