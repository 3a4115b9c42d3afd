package steam

import (
	"strings"

	"github.com/aluiziolira/go-steam-search/models"
)

// FindByNameSubstring returns the IDs of every entry whose name contains
// query, in catalog order. Matching is case-sensitive and duplicates are kept.
func FindByNameSubstring(catalog []models.CatalogEntry, query string) []uint64 {
	var ids []uint64
	for _, entry := range catalog {
		if strings.Contains(entry.Name, query) {
			ids = append(ids, entry.AppID)
		}
	}
	return ids
}

// MatchEntries is FindByNameSubstring returning whole entries.
func MatchEntries(catalog []models.CatalogEntry, query string) []models.CatalogEntry {
	var matches []models.CatalogEntry
	for _, entry := range catalog {
		if strings.Contains(entry.Name, query) {
			matches = append(matches, entry)
		}
	}
	return matches
}
