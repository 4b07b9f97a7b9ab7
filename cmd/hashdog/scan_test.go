package main

import (
	"testing"

	"github.com/ivoronin/hashdog/internal/database"
)

func TestParseFormatValid(t *testing.T) {
	tests := []struct {
		input string
		want  database.Format
	}{
		{"", database.LineFormat},
		{"line", database.LineFormat},
		{"LINE", database.LineFormat},
		{"hashdeep", database.HashdeepFormat},
		{"HashDeep", database.HashdeepFormat},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseFormat(tt.input)
			if err != nil {
				t.Fatalf("parseFormat(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormatUnknown(t *testing.T) {
	_, err := parseFormat("csv")
	if err == nil {
		t.Fatal("parseFormat(\"csv\") should return an error")
	}
}

func TestNewScanCmdDefaults(t *testing.T) {
	cmd := newScanCmd()

	format, err := cmd.Flags().GetString("format")
	if err != nil || format != "line" {
		t.Errorf("default --format = %q, %v, want %q", format, err, "line")
	}

	db, err := cmd.Flags().GetString("db")
	if err != nil || db != "hashdog.db" {
		t.Errorf("default --db = %q, %v, want %q", db, err, "hashdog.db")
	}

	algorithms, err := cmd.Flags().GetStringSlice("algorithm")
	if err != nil || len(algorithms) != 1 || algorithms[0] != "sha256" {
		t.Errorf("default --algorithm = %v, %v, want [sha256]", algorithms, err)
	}

	if err := cmd.Args(cmd, nil); err == nil {
		t.Error("scan with no paths should fail cobra.MinimumNArgs(1) validation")
	}
}
