package database

import "testing"

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		wantVersion string
		wantUp      bool
		wantOK      bool
	}{
		{
			name:        "valid up migration",
			filename:    "20250902_120000_initial_schema.up.sql",
			wantVersion: "20250902_120000",
			wantUp:      true,
			wantOK:      true,
		},
		{
			name:        "valid down migration",
			filename:    "20250902_120000_initial_schema.down.sql",
			wantVersion: "20250902_120000",
			wantUp:      false,
			wantOK:      true,
		},
		{
			name:     "missing direction",
			filename: "20250902_120000_initial_schema.sql",
			wantOK:   false,
		},
		{
			name:     "not sql",
			filename: "20250902_120000_initial_schema.up.txt",
			wantOK:   false,
		},
		{
			name:     "no version",
			filename: "schema.up.sql",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, isUp, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
			if isUp != tt.wantUp {
				t.Errorf("isUp = %v, want %v", isUp, tt.wantUp)
			}
		})
	}
}

func TestExtractMigrationName(t *testing.T) {
	if got := extractMigrationName("20250902_120000_initial_schema.up.sql"); got != "initial_schema" {
		t.Errorf("extractMigrationName() = %q, want initial_schema", got)
	}
	if got := extractMigrationName("20250902_120000_add_vent_column.down.sql"); got != "add_vent_column" {
		t.Errorf("extractMigrationName() = %q, want add_vent_column", got)
	}
}
