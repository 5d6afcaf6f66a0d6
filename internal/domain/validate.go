package domain

import (
	"fmt"
	"math"
	"strings"
)

// Validate checks the structural invariants of an imported document and
// returns one message per offending field path. An empty map means the
// document is acceptable.
func (d Document) Validate() map[string]string {
	problems := make(map[string]string)
	add := func(path, format string, args ...any) {
		if _, exists := problems[path]; !exists {
			problems[path] = fmt.Sprintf(format, args...)
		}
	}

	if d.Policy.BlockWindowDays < 0 {
		add("policy.block_window_days", "must not be negative")
	}

	personIDs := make(map[string]struct{}, len(d.Persons))
	for i, p := range d.Persons {
		path := fmt.Sprintf("persons[%d]", i)
		if strings.TrimSpace(p.ID) == "" {
			add(path+".id", "id is required")
		} else if _, dup := personIDs[p.ID]; dup {
			add(path+".id", "duplicate person id %s", p.ID)
		}
		personIDs[p.ID] = struct{}{}

		for j, day := range p.ExamDates {
			if day.IsZero() {
				add(fmt.Sprintf("%s.exam_dates[%d]", path, j), "date is required")
			}
			if j > 0 && !p.ExamDates[j-1].Before(day) {
				add(fmt.Sprintf("%s.exam_dates[%d]", path, j), "exam dates must be unique and ascending")
			}
		}

		entryIDs := make(map[string]struct{}, len(p.HoursEntries))
		for j, e := range p.HoursEntries {
			epath := fmt.Sprintf("%s.hours_entries[%d]", path, j)
			if strings.TrimSpace(e.ID) == "" {
				add(epath+".id", "id is required")
			} else if _, dup := entryIDs[e.ID]; dup {
				add(epath+".id", "duplicate entry id %s", e.ID)
			}
			entryIDs[e.ID] = struct{}{}
			if e.Date.IsZero() {
				add(epath+".date", "date is required")
			}
			if e.SignedHours == 0 || math.IsNaN(e.SignedHours) || math.IsInf(e.SignedHours, 0) {
				add(epath+".signed_hours", "hours must be a non-zero finite number")
			}
			if e.SignedHours > 0 && e.Compensated {
				add(epath+".compensated", "credits cannot be compensated")
			}
			if (e.CompensatedBy == nil) != (e.CompensatedAt == nil) {
				add(epath+".compensated_by", "compensated_by and compensated_at must be set together")
			}
		}

		for j, ev := range p.AuditLog {
			apath := fmt.Sprintf("%s.audit_log[%d]", path, j)
			if !ev.Action.Valid() {
				add(apath+".action", "unknown action %q", ev.Action)
			}
			if ev.At.IsZero() {
				add(apath+".at", "timestamp is required")
			}
		}
	}

	accountIDs := make(map[string]struct{}, len(d.Accounts))
	usernames := make(map[string]struct{}, len(d.Accounts))
	for i, a := range d.Accounts {
		path := fmt.Sprintf("accounts[%d]", i)
		if strings.TrimSpace(a.ID) == "" {
			add(path+".id", "id is required")
		} else if _, dup := accountIDs[a.ID]; dup {
			add(path+".id", "duplicate account id %s", a.ID)
		}
		accountIDs[a.ID] = struct{}{}

		name := strings.ToLower(strings.TrimSpace(a.Username))
		if name == "" {
			add(path+".username", "username is required")
		} else if _, dup := usernames[name]; dup {
			add(path+".username", "duplicate username %s", a.Username)
		}
		usernames[name] = struct{}{}

		if !a.Role.Valid() {
			add(path+".role", "unknown role %q", a.Role)
		}
		if a.Role == RoleIntern {
			if _, ok := personIDs[a.PersonID]; !ok {
				add(path+".person_id", "intern account must reference an existing person")
			}
		}
	}

	return problems
}
