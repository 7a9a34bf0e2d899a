package models

// CompanyStatus is the organizational awareness snapshot surfaced in the
// execution feed and on its own endpoint.
type CompanyStatus struct {
	Phase             string   `json:"phase" yaml:"phase"`
	CurrentFocus      []string `json:"current_focus" yaml:"current_focus"`
	Upcoming          []string `json:"upcoming" yaml:"upcoming"`
	OpenForInvestment bool     `json:"open_for_investment" yaml:"open_for_investment"`
	Message           string   `json:"message" yaml:"message"`
}

// DefaultCompanyStatus is served until a status file is loaded.
func DefaultCompanyStatus() CompanyStatus {
	return CompanyStatus{
		Phase:             "building",
		CurrentFocus:      []string{"Concierge quality", "Execution feed depth"},
		Upcoming:          []string{"Fleet expansion", "Seasonal route guides"},
		OpenForInvestment: false,
		Message:           "JourneyAtlas is heads-down on the concierge core.",
	}
}
