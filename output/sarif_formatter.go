package output

import (
	"encoding/json"
	"io"

	sarif "github.com/owenrumney/go-sarif/v2/sarif"
)

// SARIFFormatter formats findings as SARIF 2.1.0 so CI systems can
// annotate the IR sources that produced the program.
type SARIFFormatter struct{}

var ruleDescriptions = map[string]string{
	RuleConstantValue: "Operation always evaluates to the same constant",
	RuleDeadEdge:      "Control-flow edge is never taken",
}

func (f *SARIFFormatter) Format(w io.Writer, findings []Finding) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}

	run := sarif.NewRunWithInformationURI("bril-ssa", "https://github.com/chioni16/ssa")

	seen := make(map[string]bool)
	for _, finding := range findings {
		if seen[finding.RuleID] {
			continue
		}
		seen[finding.RuleID] = true
		run.AddRule(finding.RuleID).
			WithDescription(ruleDescriptions[finding.RuleID]).
			WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel("note"))
	}

	for _, finding := range findings {
		result := run.CreateResultForRule(finding.RuleID).
			WithMessage(sarif.NewTextMessage(finding.Message))
		if finding.Row > 0 {
			region := sarif.NewRegion().WithStartLine(finding.Row)
			if finding.Col > 0 {
				region.WithStartColumn(finding.Col)
			}
			location := sarif.NewLocation().
				WithPhysicalLocation(
					sarif.NewPhysicalLocation().
						WithArtifactLocation(sarif.NewArtifactLocation().WithUri(finding.Function)).
						WithRegion(region),
				)
			result.AddLocation(location)
		}
	}

	report.AddRun(run)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
