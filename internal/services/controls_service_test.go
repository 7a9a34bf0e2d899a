package services

import (
	"testing"

	"github.com/strappedupmami/journeyatlas/internal/models"
)

func newTestControlsService() *ControlsService {
	return NewControlsService(NewPersistenceService(nil, nil))
}

func TestControlsDefaultsForUnknownOwner(t *testing.T) {
	service := newTestControlsService()

	controls := service.Get("user-1")
	if controls.Cadence != models.CadenceSteady {
		t.Errorf("default cadence = %s, want steady", controls.Cadence)
	}
	if controls.DetailLevel != models.DetailStandard {
		t.Errorf("default detail level = %s, want standard", controls.DetailLevel)
	}
	if !controls.IncludeCompanyAwareness || !controls.IncludeReminderSuggestions {
		t.Error("company awareness and reminder suggestions should default on")
	}
	if controls.RemindersApp != "google_calendar" || controls.AlarmsApp != "apple_clock" {
		t.Errorf("default apps = %s/%s", controls.RemindersApp, controls.AlarmsApp)
	}
}

func TestControlsUpdateNormalization(t *testing.T) {
	tests := []struct {
		name        string
		cadence     string
		detailLevel string
		wantCadence models.Cadence
		wantDetail  models.DetailLevel
	}{
		{"known values", "aggressive", "expanded", models.CadenceAggressive, models.DetailExpanded},
		{"case and spacing", "  AGGRESSIVE ", " Concise ", models.CadenceAggressive, models.DetailConcise},
		{"unknown values default", "frantic", "verbose", models.CadenceSteady, models.DetailStandard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestControlsService()
			controls := service.Update("user-1", ControlsInput{
				Cadence:     tt.cadence,
				DetailLevel: tt.detailLevel,
			})
			if controls.Cadence != tt.wantCadence {
				t.Errorf("cadence = %s, want %s", controls.Cadence, tt.wantCadence)
			}
			if controls.DetailLevel != tt.wantDetail {
				t.Errorf("detail level = %s, want %s", controls.DetailLevel, tt.wantDetail)
			}
		})
	}
}

func TestControlsPartialUpdateKeepsStoredValues(t *testing.T) {
	service := newTestControlsService()

	off := false
	service.Update("user-1", ControlsInput{
		Cadence:                 "aggressive",
		DetailLevel:             "expanded",
		IncludeCompanyAwareness: &off,
	})

	// A later update that omits every field must not reset anything.
	controls := service.Update("user-1", ControlsInput{})
	if controls.Cadence != models.CadenceAggressive {
		t.Errorf("omitted cadence reset stored value to %s", controls.Cadence)
	}
	if controls.DetailLevel != models.DetailExpanded {
		t.Errorf("omitted detail level reset stored value to %s", controls.DetailLevel)
	}
	if controls.IncludeCompanyAwareness {
		t.Error("omitted boolean reset stored value")
	}
	if !controls.IncludeReminderSuggestions {
		t.Error("untouched boolean should keep its default")
	}
}

func TestControlsAppUpdates(t *testing.T) {
	service := newTestControlsService()

	controls := service.Update("user-1", ControlsInput{
		RemindersApp: "apple_reminders",
		AlarmsApp:    "  ",
	})
	if controls.RemindersApp != "apple_reminders" {
		t.Errorf("reminders app = %s", controls.RemindersApp)
	}
	if controls.AlarmsApp != "apple_clock" {
		t.Errorf("blank alarms app should keep the stored value, got %s", controls.AlarmsApp)
	}
}
