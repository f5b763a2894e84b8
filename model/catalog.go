package model

import (
	"fmt"
	"strings"
)

// Catalog identifies the external survey a record was ingested from.
// It is a closed set: validation rules and required fields are keyed on it.
type Catalog int

const (
	CatalogUnknown Catalog = iota
	CatalogSDSS            // spectroscopic galaxy survey rows
	CatalogDESI            // deep-field photometric rows
	CatalogNASAESI         // exoplanet archive rows
	CatalogNEO             // near-Earth-object ephemerides
)

// String returns the canonical catalog tag.
func (c Catalog) String() string {
	switch c {
	case CatalogSDSS:
		return "SDSS"
	case CatalogDESI:
		return "DESI"
	case CatalogNASAESI:
		return "NASA_ESI"
	case CatalogNEO:
		return "NEO"
	default:
		return "UNKNOWN"
	}
}

// ParseCatalog maps a catalog tag (case-insensitive, "NASA ESI" and
// "NASA_ESI" both accepted) to its enum value.
func ParseCatalog(s string) (Catalog, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SDSS":
		return CatalogSDSS, nil
	case "DESI":
		return CatalogDESI, nil
	case "NASA_ESI", "NASA ESI", "NASAESI":
		return CatalogNASAESI, nil
	case "NEO":
		return CatalogNEO, nil
	default:
		return CatalogUnknown, fmt.Errorf("unknown catalog %q", s)
	}
}
