package domain

import "testing"

func TestVersionStatus_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status VersionStatus
		want   bool
	}{
		{VersionStatusDraft, true},
		{VersionStatusPublished, true},
		{VersionStatusArchived, true},
		{VersionStatus("DELETED"), false},
		{VersionStatus(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()
			if got := tt.status.IsValid(); got != tt.want {
				t.Errorf("VersionStatus(%q).IsValid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestVersionStatus_String(t *testing.T) {
	t.Parallel()
	if got := VersionStatusPublished.String(); got != "PUBLISHED" {
		t.Errorf("got %q, want PUBLISHED", got)
	}
}

func TestCEFRLevel_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level CEFRLevel
		want  bool
	}{
		{CEFRLevelA1, true},
		{CEFRLevelB2, true},
		{CEFRLevelC2, true},
		{CEFRLevel("D1"), false},
		{CEFRLevel("b1"), false},
		{CEFRLevel(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			t.Parallel()
			if got := tt.level.IsValid(); got != tt.want {
				t.Errorf("CEFRLevel(%q).IsValid() = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}
