package services

import (
	"encoding/json"
)

// UseCaseConfig is a named feature's AI policy, stored as a JSON setting
// under ai_usecase_<name>. Defaults are applied once at the decode
// boundary, never at call sites.
type UseCaseConfig struct {
	Enabled      bool    `json:"enabled"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
	SystemPrompt string  `json:"system_prompt"`
}

// defaultUseCaseConfig returns the disabled baseline policy.
func defaultUseCaseConfig() UseCaseConfig {
	return UseCaseConfig{
		Enabled:     false,
		Provider:    "groq",
		Temperature: 0.7,
	}
}

// decodeUseCaseConfig parses a stored policy and applies defaults for
// fields the stored document leaves unset. Malformed JSON fails closed
// to the disabled baseline. Temperature decodes through a pointer so an
// explicit 0 (deterministic output) is distinguishable from an absent
// field; only absent or negative values fall back to 0.7.
func decodeUseCaseConfig(raw string) UseCaseConfig {
	cfg := defaultUseCaseConfig()
	if raw == "" {
		return cfg
	}
	var doc struct {
		Enabled      bool     `json:"enabled"`
		Provider     string   `json:"provider"`
		Model        string   `json:"model"`
		Temperature  *float64 `json:"temperature"`
		MaxTokens    int      `json:"max_tokens"`
		SystemPrompt string   `json:"system_prompt"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return defaultUseCaseConfig()
	}

	cfg.Enabled = doc.Enabled
	cfg.Provider = doc.Provider
	cfg.Model = doc.Model
	cfg.MaxTokens = doc.MaxTokens
	cfg.SystemPrompt = doc.SystemPrompt
	if doc.Temperature != nil && *doc.Temperature >= 0 {
		cfg.Temperature = *doc.Temperature
	}
	if cfg.Provider == "" {
		cfg.Provider = "groq"
	}
	return cfg
}

// UseCaseInfo is display metadata for a known use case. The catalog is
// presentation-only: gating operates on any use-case name found in
// configuration, listed here or not.
type UseCaseInfo struct {
	Name                string `json:"name"`
	Label               string `json:"label"`
	Description         string `json:"description"`
	Icon                string `json:"icon"`
	RecommendedProvider string `json:"recommended_provider"`
}

// UseCaseCatalog lists the care-home features that ship with AI support.
var UseCaseCatalog = []UseCaseInfo{
	{
		Name:                "discharge_reporting",
		Label:               "Discharge Reports",
		Description:         "Drafts discharge summary reports from a resident's care history.",
		Icon:                "file-text",
		RecommendedProvider: "groq",
	},
	{
		Name:                "therapy_reporting",
		Label:               "Therapy Reports",
		Description:         "Summarizes therapy session notes into progress reports.",
		Icon:                "activity",
		RecommendedProvider: "groq",
	},
	{
		Name:                "incident_summary",
		Label:               "Incident Summaries",
		Description:         "Condenses incident records into shift-handover summaries.",
		Icon:                "alert-triangle",
		RecommendedProvider: "gemini",
	},
	{
		Name:                "report_generation",
		Label:               "General Reports",
		Description:         "Free-form report drafting for administrative documents.",
		Icon:                "edit",
		RecommendedProvider: "gemini",
	},
}
