package detect

// Detection thresholds. These are fixed policy constants agreed with the
// fraud team, not tunable defaults: changing them changes what the platform
// reports as an incident.
const (
	// FailedAttemptFloor: minimum failed logins from one source address
	// before it appears in the brute-force aggregate at all.
	FailedAttemptFloor = 5
	// RapidAttemptFloor: minimum login attempts against one account before
	// it appears in the rapid-attempt aggregate.
	RapidAttemptFloor = 10
)

// band maps a minimum count to a severity. Bands are evaluated in order, so
// each table must be sorted by descending threshold.
type band struct {
	min      int
	severity Severity
}

// The two activity types deliberately band the same count range differently:
// ten failed logins spread over one source address is routine scanning noise,
// ten attempts concentrated on a single account is an active takeover attempt.
var (
	bruteForceBands = []band{
		{min: 50, severity: SeverityCritical},
		{min: 10, severity: SeverityMedium},
	}
	rapidAttemptBands = []band{
		{min: 50, severity: SeverityCritical},
		{min: 10, severity: SeverityHigh},
	}
)

// classify resolves a raw count against a band table, falling back to Low for
// counts that cleared the detection floor but no band.
func classify(count int, bands []band) Severity {
	for _, b := range bands {
		if count >= b.min {
			return b.severity
		}
	}
	return SeverityLow
}
