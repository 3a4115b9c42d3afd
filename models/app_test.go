package models

import (
	"encoding/json"
	"testing"
)

func TestParseRequiredAge(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    RequiredAge
		wantErr bool
	}{
		{name: "number", raw: `18`, want: RequiredAge{Value: 18, Valid: true}},
		{name: "quoted number", raw: `"18"`, want: RequiredAge{Value: 18, Valid: true}},
		{name: "zero", raw: `0`, want: RequiredAge{Value: 0, Valid: true}},
		{name: "null", raw: `null`, want: RequiredAge{}},
		{name: "letters", raw: `"abc"`, wantErr: true},
		{name: "empty string", raw: `""`, wantErr: true},
		{name: "negative", raw: `-1`, wantErr: true},
		{name: "fraction", raw: `17.5`, wantErr: true},
		{name: "bool", raw: `true`, wantErr: true},
		{name: "object", raw: `{"age":18}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRequiredAge([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRequiredAge(%s) = %+v, want error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRequiredAge(%s): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("ParseRequiredAge(%s) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestAppDetailRequiredAgeMissing(t *testing.T) {
	var detail AppDetail
	if err := json.Unmarshal([]byte(`{"name":"Portal"}`), &detail); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if detail.RequiredAge.Valid {
		t.Fatalf("missing required_age should be absent, got %+v", detail.RequiredAge)
	}
}

func TestRequiredAgeMarshal(t *testing.T) {
	out, err := json.Marshal(struct {
		A RequiredAge `json:"a"`
		B RequiredAge `json:"b"`
	}{A: RequiredAge{Value: 16, Valid: true}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":16,"b":null}` {
		t.Fatalf("marshal = %s", out)
	}
}
