package steam

import (
	"reflect"
	"testing"

	"github.com/aluiziolira/go-steam-search/models"
)

func TestFindByNameSubstring(t *testing.T) {
	catalog := []models.CatalogEntry{
		{AppID: 70, Name: "Half-Life"},
		{AppID: 220, Name: "Half-Life 2"},
		{AppID: 264710, Name: "Subnautica"},
		{AppID: 220, Name: "Half-Life 2"},
	}

	tests := []struct {
		name  string
		query string
		want  []uint64
	}{
		{name: "empty query matches all", query: "", want: []uint64{70, 220, 264710, 220}},
		{name: "substring keeps order and duplicates", query: "Half-Life", want: []uint64{70, 220, 220}},
		{name: "case sensitive", query: "half-life", want: nil},
		{name: "inner substring", query: "naut", want: []uint64{264710}},
		{name: "no match", query: "Portal", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindByNameSubstring(catalog, tt.query); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FindByNameSubstring(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestFindByNameSubstringCaseSensitiveOnly(t *testing.T) {
	catalog := []models.CatalogEntry{{AppID: 70, Name: "Half-Life"}}
	if got := FindByNameSubstring(catalog, "half-life"); len(got) != 0 {
		t.Fatalf("expected no match, got %v", got)
	}
}

func TestMatchEntries(t *testing.T) {
	catalog := []models.CatalogEntry{
		{AppID: 264710, Name: "Subnautica"},
		{AppID: 271590, Name: "Grand Theft Auto V"},
		{AppID: 848450, Name: "Subnautica: Below Zero"},
	}
	got := MatchEntries(catalog, "Subnautica")
	want := []models.CatalogEntry{catalog[0], catalog[2]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MatchEntries = %v, want %v", got, want)
	}
}
