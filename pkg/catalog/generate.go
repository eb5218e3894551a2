package catalog

import (
	"fmt"
	"math/rand"
)

// Synthetic world generation. Produces a randomized but internally
// consistent catalog: every supplier is placed at exactly one location and
// every product is made by exactly one supplier.

var portCities = []string{
	"Shanghai", "Los Angeles", "Rotterdam", "Singapore", "Hamburg",
	"Antwerp", "Hong Kong", "Busan", "Dubai", "Long Beach",
	"Tianjin", "Ningbo-Zhoushan", "Qingdao",
}

var hubCities = []string{
	"Hamburg", "Frankfurt", "Chicago", "Memphis", "Atlanta", "Tokyo",
	"Seoul", "Mumbai", "São Paulo", "Amsterdam", "London", "Paris",
}

var factoryCities = []string{
	"Shenzhen", "Guangzhou", "Bangalore", "Ho Chi Minh City", "Manila",
	"Jakarta", "Bangkok", "Istanbul", "Mexico City", "San Diego",
}

var countryByCity = map[string]string{
	"Shanghai": "China", "Tianjin": "China", "Ningbo-Zhoushan": "China",
	"Qingdao": "China", "Hong Kong": "China", "Shenzhen": "China",
	"Guangzhou": "China",
	"Los Angeles": "United States", "Long Beach": "United States",
	"Chicago": "United States", "Memphis": "United States",
	"Atlanta": "United States", "San Diego": "United States",
	"Rotterdam": "Netherlands", "Amsterdam": "Netherlands",
	"Hamburg": "Germany", "Frankfurt": "Germany",
	"Singapore": "Singapore",
	"Busan":     "South Korea", "Seoul": "South Korea",
	"Dubai":            "United Arab Emirates",
	"Antwerp":          "Belgium",
	"Tokyo":            "Japan",
	"Mumbai":           "India", "Bangalore": "India",
	"São Paulo":        "Brazil",
	"London":           "United Kingdom",
	"Paris":            "France",
	"Ho Chi Minh City": "Vietnam",
	"Manila":           "Philippines",
	"Jakarta":          "Indonesia",
	"Bangkok":          "Thailand",
	"Istanbul":         "Turkey",
	"Mexico City":      "Mexico",
}

type locationTemplate struct {
	formats []string
	cities  []string
}

var locationTemplates = []locationTemplate{
	{
		formats: []string{"Port of %s", "%s Port"},
		cities:  portCities,
	},
	{
		formats: []string{"%s Warehouse", "%s Distribution Center", "%s Logistics Hub"},
		cities:  hubCities,
	},
	{
		formats: []string{"%s Manufacturing Facility", "%s Production Center", "%s Factory"},
		cities:  factoryCities,
	},
}

var companyPrefixes = []string{
	"Pacific", "Global", "Meridian", "Northwind", "Atlas", "Vertex",
	"Orion", "Cascade", "Summit", "Horizon", "Keystone", "Equator",
	"Polaris", "Zenith", "Crescent", "Harbor",
}

var companySectors = []string{
	"Components", "Industries", "Manufacturing", "Materials", "Logistics",
	"Electronics", "Textiles", "Precision", "Chemicals", "Fabrication",
}

var companySuffixes = []string{"Ltd", "Corp", "GmbH", "Co", "Group", "Inc"}

var productAdjectives = []string{
	"Hydraulic", "Surgical", "Industrial", "Ceramic", "Stainless",
	"Reinforced", "Compact", "Modular", "Thermal", "Optical",
	"Precision", "Heavy-Duty",
}

var productNouns = []string{
	"Pump", "Mask", "Valve", "Bearing", "Sensor", "Filter", "Actuator",
	"Compressor", "Cable Assembly", "Circuit Board", "Gasket", "Coupling",
}

// Generate builds a randomized catalog from the given seed. A fixed seed
// produces the same world on every run.
//
// The generated shape follows the expected network: 20-30 locations, 1-3
// suppliers per location, 1-3 products per supplier.
func Generate(seed int64) *Catalog {
	rng := rand.New(rand.NewSource(seed))
	cat := &Catalog{}

	generateLocations(rng, cat)
	generateSuppliers(rng, cat)
	generateProducts(rng, cat)

	return cat
}

func generateLocations(rng *rand.Rand, cat *Catalog) {
	seen := map[string]struct{}{}
	target := 20 + rng.Intn(11)

	// Name collisions between draws are skipped, so the final count can land
	// below target; the loop bound keeps generation finite either way.
	for attempt := 0; attempt < target*4 && len(cat.Locations) < target; attempt++ {
		tmpl := locationTemplates[rng.Intn(len(locationTemplates))]
		format := tmpl.formats[rng.Intn(len(tmpl.formats))]
		city := tmpl.cities[rng.Intn(len(tmpl.cities))]

		loc := Location{
			Name:    fmt.Sprintf(format, city),
			Country: countryByCity[city],
		}
		if _, dup := seen[loc.Key()]; dup {
			continue
		}
		seen[loc.Key()] = struct{}{}
		cat.Locations = append(cat.Locations, loc)
	}
}

func generateSuppliers(rng *rand.Rand, cat *Catalog) {
	seen := map[string]struct{}{}

	for _, loc := range cat.Locations {
		count := 1 + rng.Intn(3)
		for i := 0; i < count; i++ {
			name := companyName(rng)
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}

			sup := Supplier{
				Name:      name,
				RiskScore: float64(rng.Intn(101)) / 100,
				Revenue:   100_000 + rng.Float64()*9_900_000,
			}
			cat.Suppliers = append(cat.Suppliers, sup)
			cat.Placements = append(cat.Placements, Placement{
				SupplierKey: sup.Key(),
				LocationKey: loc.Key(),
			})
		}
	}
}

func generateProducts(rng *rand.Rand, cat *Catalog) {
	usedSKUs := map[string]struct{}{}

	// Product names may repeat across suppliers; identity is the SKU.
	for _, sup := range cat.Suppliers {
		count := 1 + rng.Intn(3)
		for i := 0; i < count; i++ {
			prod := Product{
				Name:  productName(rng),
				SKU:   uniqueSKU(rng, usedSKUs),
				Price: 100 + rng.Float64()*900,
			}
			cat.Products = append(cat.Products, prod)
			cat.Productions = append(cat.Productions, Production{
				SupplierKey: sup.Key(),
				ProductKey:  prod.Key(),
			})
		}
	}
}

func companyName(rng *rand.Rand) string {
	return fmt.Sprintf("%s %s %s",
		companyPrefixes[rng.Intn(len(companyPrefixes))],
		companySectors[rng.Intn(len(companySectors))],
		companySuffixes[rng.Intn(len(companySuffixes))],
	)
}

func productName(rng *rand.Rand) string {
	return fmt.Sprintf("%s %s",
		productAdjectives[rng.Intn(len(productAdjectives))],
		productNouns[rng.Intn(len(productNouns))],
	)
}

// uniqueSKU draws 10-digit SKUs until one is unused. SKUs are never
// regenerated for an existing product.
func uniqueSKU(rng *rand.Rand, used map[string]struct{}) string {
	for {
		sku := fmt.Sprintf("%010d", 1_000_000_000+rng.Int63n(9_000_000_000))
		if _, dup := used[sku]; dup {
			continue
		}
		used[sku] = struct{}{}
		return sku
	}
}
