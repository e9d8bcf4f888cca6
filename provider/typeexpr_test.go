package provider

import (
	"strings"
	"testing"
)

func TestParseTypeExpr(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Int", "Int"},
		{"acme/shared.Box", "acme/shared.Box"},
		{"acme/shared.Box?", "acme/shared.Box?"},
		{"acme/shared.Pair<Int,Int>", "acme/shared.Pair<Int, Int>"},
		{" acme/shared.Pair < Int , String? > ? ", "acme/shared.Pair<Int, String?>?"},
		{"List<*>", "List<*>"},
		{"Map<in K, out V>", "Map<in K, out V>"},
		{"Box<in>", "Box<in>"},
		{"Box<out, in>", "Box<out, in>"},
		{"List<List<github.com/acme/x.Y>>", "List<List<github.com/acme/x.Y>>"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseTypeExpr(tt.input)
			if err != nil {
				t.Fatalf("parseTypeExpr failed: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("parseTypeExpr(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTypeExpr_Errors(t *testing.T) {
	tests := []struct {
		input   string
		wantErr string
	}{
		{"", "expected a type name"},
		{"Pair<Int", "expected ',' or '>'"},
		{"Pair<>", "expected a type name"},
		{"Box Box", "unexpected"},
		{".Box", "malformed name"},
		{"acme.", "malformed name"},
		{"Box??", "unexpected"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := parseTypeExpr(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
