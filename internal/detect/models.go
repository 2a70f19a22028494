package detect

// ActivityType names a detected authentication-abuse pattern.
type ActivityType string

const (
	// ActivityBruteForce: many failed logins concentrated on one source address.
	ActivityBruteForce ActivityType = "brute_force"
	// ActivityRapidAttempts: many login attempts, success or failure,
	// concentrated on one account (credential-stuffing signature).
	ActivityRapidAttempts ActivityType = "rapid_attempts"
)

// Severity ranks an alert. The numeric value orders alerts; higher is worse.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "low"
	}
}

// MarshalText makes severities render as their names in JSON responses.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Alert is one detected pattern. Derived purely from aggregate counts for the
// requested window; never persisted, recomputed on every call.
type Alert struct {
	Type     ActivityType `json:"activity_type"`
	Key      string       `json:"key"`
	Count    int          `json:"count"`
	Severity Severity     `json:"severity"`
}
