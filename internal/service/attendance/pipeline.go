package attendance

import (
	"io"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
)

// Pipeline runs one access log through normalization, filtering, daily
// reduction, aggregation and compliance classification. It holds no state
// between runs; the same input and configuration always give the same report.
type Pipeline struct {
	profile attendance.SiteProfile
	policy  attendance.Policy
}

func NewPipeline(profile attendance.SiteProfile, policy attendance.Policy) *Pipeline {
	return &Pipeline{profile: profile, policy: policy}
}

func (p *Pipeline) Run(r io.Reader) (attendance.Report, error) {
	log, err := normalize(r, p.profile)
	if err != nil {
		return attendance.Report{}, err
	}

	entries := filterEntries(log.Events, p.policy.ExcludedUsers)
	presence := reduceDailyPresence(entries)

	return assembleReport(log, p.profile, p.policy, entries, presence), nil
}
