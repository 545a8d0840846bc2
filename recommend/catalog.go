package recommend

import "delivery-svc/models"

// PresetCatalog is the bundled substitute catalog, served when the
// recommendation service cannot be reached. The store never mutates
// alternatives; this data is read-only reference.
func PresetCatalog() []models.Alternative {
	return []models.Alternative{
		{ID: "alt1", Name: "Sourdough Bread", Price: 3.20, Similarity: 85},
		{ID: "alt2", Name: "Multigrain Bread", Price: 2.95, Similarity: 90},
		{ID: "alt3", Name: "Rye Bread", Price: 3.10, Similarity: 75},
		{ID: "alt4", Name: "White Bread", Price: 2.40, Similarity: 70},
		{ID: "alt5", Name: "Gluten-Free Bread", Price: 4.50, Similarity: 60},
	}
}

// LookupAlternative resolves a replacement id against the catalog.
// Order price totals must use the alternative's price for replaced
// items, not the original item price.
func LookupAlternative(id string) (models.Alternative, bool) {
	for _, alt := range PresetCatalog() {
		if alt.ID == id {
			return alt, true
		}
	}
	return models.Alternative{}, false
}
