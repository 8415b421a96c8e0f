package claim

import (
	"fmt"
	"strconv"
	"strings"
)

// Activity is the status index stored on the board.
type Activity int

const (
	Vacation Activity = iota
	Billable
	Holding
	Education
	WorkReduction
	TBD
	Holiday
	Presales
	Illness
	PaidNotWorked
	IntellectualCapital
	BusinessDevelopment
	Overhead
)

var activities = []struct {
	name    string
	display string
}{
	Vacation:            {"vacation", "Vacation"},
	Billable:            {"billable", "Billable"},
	Holding:             {"holding", "Holding"},
	Education:           {"education", "Education"},
	WorkReduction:       {"work_reduction", "Work Reduction"},
	TBD:                 {"tbd", "TBD"},
	Holiday:             {"holiday", "Holiday"},
	Presales:            {"presales", "Presales"},
	Illness:             {"illness", "Illness"},
	PaidNotWorked:       {"paid_not_worked", "Paid Not Worked"},
	IntellectualCapital: {"intellectual_capital", "Intellectual Capital"},
	BusinessDevelopment: {"business_development", "Business Development"},
	Overhead:            {"overhead", "Overhead"},
}

// Activities lists every known activity in code order.
func Activities() []Activity {
	out := make([]Activity, len(activities))
	for i := range activities {
		out[i] = Activity(i)
	}
	return out
}

func (a Activity) Known() bool {
	return a >= 0 && int(a) < len(activities)
}

// String returns the wire name, or "unknown(n)" for codes outside the table.
func (a Activity) String() string {
	if !a.Known() {
		return fmt.Sprintf("unknown(%d)", int(a))
	}
	return activities[a].name
}

func (a Activity) Display() string {
	if !a.Known() {
		return a.String()
	}
	if a == Billable {
		return activities[a].display + " (default)"
	}
	return activities[a].display
}

// RequiresProject reports whether customer and work item are mandatory.
func (a Activity) RequiresProject() bool {
	switch a {
	case Billable, Presales, Overhead, BusinessDevelopment, IntellectualCapital:
		return true
	}
	return false
}

// ActivityByName maps a wire name back to its code. Spaces and dashes are
// accepted in place of underscores.
func ActivityByName(name string) (Activity, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer(" ", "_", "-", "_").Replace(n)
	for i, a := range activities {
		if a.name == n {
			return Activity(i), true
		}
	}
	return 0, false
}

// ParseActivity accepts either a numeric code or a name.
func ParseActivity(s string) (Activity, error) {
	if code, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		if a := Activity(code); a.Known() {
			return a, nil
		}
		return 0, fmt.Errorf("%w: %q", ErrUnknownActivity, s)
	}
	if a, ok := ActivityByName(s); ok {
		return a, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownActivity, s)
}
