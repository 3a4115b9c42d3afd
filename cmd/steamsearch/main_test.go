package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aluiziolira/go-steam-search/config"
	"github.com/aluiziolira/go-steam-search/models"
	"github.com/aluiziolira/go-steam-search/steam"
)

func TestReadQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "unix newline", input: "Subnautica\n", want: "Subnautica"},
		{name: "windows newline", input: "Half-Life\r\n", want: "Half-Life"},
		{name: "surrounding spaces", input: "  Portal 2 \n", want: "Portal 2"},
		{name: "no newline at eof", input: "Dota", want: "Dota"},
		{name: "empty input", input: "", want: ""},
		{name: "only first line", input: "first\nsecond\n", want: "first"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := readQuery(strings.NewReader(tt.input), &out)
			if err != nil {
				t.Fatalf("readQuery: %v", err)
			}
			if got != tt.want {
				t.Fatalf("readQuery = %q, want %q", got, tt.want)
			}
			if out.String() != prompt {
				t.Fatalf("prompt = %q", out.String())
			}
		})
	}
}

func TestPrintNames(t *testing.T) {
	var out bytes.Buffer
	printNames(&out, []models.CatalogEntry{
		{AppID: 264710, Name: " Subnautica "},
		{AppID: 848450, Name: "Subnautica: Below Zero"},
	})
	if got, want := out.String(), "Subnautica\nSubnautica: Below Zero\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestPrintNamesEmpty(t *testing.T) {
	var out bytes.Buffer
	printNames(&out, nil)
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestPrintDetails(t *testing.T) {
	appID := uint64(264710)
	free := false
	score := uint8(87)
	short := "<b>Descend</b> into the depths."

	var out bytes.Buffer
	printDetails(&out, []*models.AppDetail{
		{
			Name:             "Subnautica",
			AppID:            &appID,
			IsFree:           &free,
			RequiredAge:      models.RequiredAge{Value: 0, Valid: true},
			ShortDescription: &short,
			Metacritic:       &models.Metacritic{Score: &score},
		},
		{Name: "Soundtrack"},
	})

	text := out.String()
	for _, want := range []string{
		"Subnautica (264710)",
		"Free:          false",
		"Required age:  0",
		"Metacritic:    87",
		"Summary:       Descend into the depths.",
		"Soundtrack (?)",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
}

func TestCreateWriterUnsupported(t *testing.T) {
	if _, err := createWriter("xml", filepath.Join(t.TempDir(), "out.xml")); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.OutputFile = filepath.Join(dir, "apps.csv")
	cfg.OutputFormat = "dual"

	if err := export(cfg, []*models.AppDetail{{Name: "Subnautica"}, {Name: "Portal 2"}}); err != nil {
		t.Fatalf("export: %v", err)
	}

	data, err := os.ReadFile(cfg.OutputFile)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv lines = %d, want 3", len(lines))
	}
	if _, err := os.Stat(filepath.Join(dir, "apps.jsonl")); err != nil {
		t.Fatalf("jsonl companion missing: %v", err)
	}
}

func TestExportEmpty(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OutputFile = filepath.Join(t.TempDir(), "apps.jsonl")
	cfg.OutputFormat = "json"

	if err := export(cfg, nil); err != nil {
		t.Fatalf("empty export should succeed, got %v", err)
	}
}

func TestMetricsRouter(t *testing.T) {
	metrics := steam.NewMetrics()
	metrics.IncRequest("catalog")
	router := newMetricsRouter(metrics.Registry)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `steam_requests_total{endpoint="catalog"} 1`) {
		t.Fatalf("metrics body missing request counter:\n%s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}
