package services

import (
	"os"
	"path/filepath"
	"testing"
)

const statusYAML = `phase: scaling
current_focus:
  - Fleet ops
  - Concierge latency
upcoming:
  - Winter routes
open_for_investment: true
message: Heads down on the winter season.
`

func writeStatusFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "company_status.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write status file: %v", err)
	}
	return path
}

func TestCompanyStatusDefaultWithoutFile(t *testing.T) {
	service := NewCompanyStatusService("")

	status := service.Current()
	if status.Phase != "building" {
		t.Errorf("default phase = %q, want building", status.Phase)
	}
	if status.OpenForInvestment {
		t.Error("default status should not be open for investment")
	}
}

func TestCompanyStatusLoadsFromYAML(t *testing.T) {
	path := writeStatusFile(t, statusYAML)
	service := NewCompanyStatusService(path)

	status := service.Current()
	if status.Phase != "scaling" {
		t.Errorf("phase = %q, want scaling", status.Phase)
	}
	if len(status.CurrentFocus) != 2 || status.CurrentFocus[0] != "Fleet ops" {
		t.Errorf("current focus = %v", status.CurrentFocus)
	}
	if !status.OpenForInvestment {
		t.Error("open_for_investment not parsed")
	}
}

func TestCompanyStatusReloadPicksUpChanges(t *testing.T) {
	path := writeStatusFile(t, statusYAML)
	service := NewCompanyStatusService(path)

	updated := `phase: fundraising
message: New chapter.
`
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("failed to rewrite status file: %v", err)
	}
	service.reload()

	status := service.Current()
	if status.Phase != "fundraising" {
		t.Errorf("phase after reload = %q, want fundraising", status.Phase)
	}
	if status.Message != "New chapter." {
		t.Errorf("message after reload = %q", status.Message)
	}
}

func TestCompanyStatusReloadKeepsPreviousOnBrokenFile(t *testing.T) {
	path := writeStatusFile(t, statusYAML)
	service := NewCompanyStatusService(path)

	if err := os.WriteFile(path, []byte("phase: [unclosed"), 0o644); err != nil {
		t.Fatalf("failed to corrupt status file: %v", err)
	}
	service.reload()

	if status := service.Current(); status.Phase != "scaling" {
		t.Errorf("broken reload replaced status, phase = %q", status.Phase)
	}
}

func TestCompanyStatusMissingFileFallsBackToDefault(t *testing.T) {
	service := NewCompanyStatusService(filepath.Join(t.TempDir(), "missing.yaml"))

	if status := service.Current(); status.Phase != "building" {
		t.Errorf("missing file should keep the default, phase = %q", status.Phase)
	}
}
