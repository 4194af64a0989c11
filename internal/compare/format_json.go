package compare

import (
	"encoding/json"

	"github.com/rgehrsitz/taxsim/internal/domain"
)

// JSONFormatter formats comparison results as JSON
type JSONFormatter struct {
	Pretty bool // If true, format with indentation
	// IncludeReports adds the full report of every case, trace included.
	IncludeReports bool
}

type jsonComparison struct {
	*ComparisonSet
	Reports map[string]*domain.Report `json:"reports,omitempty"`
}

// Format generates JSON output for comparison results
func (jf *JSONFormatter) Format(compSet *ComparisonSet) (string, error) {
	out := jsonComparison{ComparisonSet: compSet}
	if jf.IncludeReports {
		out.Reports = make(map[string]*domain.Report)
		if compSet.BaseResult != nil {
			out.Reports[compSet.BaseResult.ScenarioName] = compSet.BaseResult.Report
		}
		for _, alt := range compSet.AlternativeResults {
			out.Reports[alt.ScenarioName] = alt.Report
		}
	}

	var data []byte
	var err error
	if jf.Pretty {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
