package config

import (
	"fmt"
	"os"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/params"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of financial state files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a financial state from a YAML or JSON file
func (ip *InputParser) LoadFromFile(filename string) (*domain.FinancialState, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates a financial state document.
func (ip *InputParser) Parse(data []byte) (*domain.FinancialState, error) {
	var state domain.FinancialState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateFinancialState(&state); err != nil {
		return nil, fmt.Errorf("financial state validation failed: %w", err)
	}

	return &state, nil
}

// ValidateFinancialState checks a loaded state independently of the year it
// will be calculated for.
func (ip *InputParser) ValidateFinancialState(state *domain.FinancialState) error {
	if state == nil {
		return fmt.Errorf("financial state is required")
	}
	if state.FiscalYear != "" {
		if _, err := domain.ParseFiscalYear(state.FiscalYear); err != nil {
			return err
		}
	}

	codes := make(map[string]int, len(state.Accounts))
	for i, a := range state.Accounts {
		if a.Code == "" {
			return &domain.InputError{Field: fmt.Sprintf("accounts[%d].code", i), Reason: "code is required"}
		}
		if prev, dup := codes[a.Code]; dup {
			return &domain.InputError{
				Field:  fmt.Sprintf("accounts[%d].code", i),
				Reason: fmt.Sprintf("duplicate account code %s (also at accounts[%d])", a.Code, prev),
			}
		}
		codes[a.Code] = i
	}

	return params.ValidateState(state.FiscalYear, state)
}

// SaveFinancialState writes state as YAML.
func SaveFinancialState(state *domain.FinancialState, filename string) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal financial state: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}
