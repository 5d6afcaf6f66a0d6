package domain

import (
	"cmp"
	"iter"
	"slices"
	"strings"
)

// HasExamDate reports whether the person already has an exam on day.
func (p *Person) HasExamDate(day Date) bool {
	_, found := slices.BinarySearchFunc(p.ExamDates, day, Date.Compare)
	return found
}

// AddExamDate inserts day keeping ExamDates sorted and duplicate-free. It
// reports whether the set changed.
func (p *Person) AddExamDate(day Date) bool {
	idx, found := slices.BinarySearchFunc(p.ExamDates, day, Date.Compare)
	if found {
		return false
	}
	p.ExamDates = slices.Insert(p.ExamDates, idx, day)
	return true
}

// RemoveExamDate deletes day from the set. It reports whether the set changed.
func (p *Person) RemoveExamDate(day Date) bool {
	idx, found := slices.BinarySearchFunc(p.ExamDates, day, Date.Compare)
	if !found {
		return false
	}
	p.ExamDates = slices.Delete(p.ExamDates, idx, idx+1)
	return true
}

// Entry returns a pointer to the entry with the given id.
func (p *Person) Entry(id string) (*HourEntry, bool) {
	for i := range p.HoursEntries {
		if p.HoursEntries[i].ID == id {
			return &p.HoursEntries[i], true
		}
	}
	return nil, false
}

// RemoveEntry deletes the entry with the given id and returns it.
func (p *Person) RemoveEntry(id string) (HourEntry, bool) {
	idx := slices.IndexFunc(p.HoursEntries, func(e HourEntry) bool { return e.ID == id })
	if idx < 0 {
		return HourEntry{}, false
	}
	removed := p.HoursEntries[idx]
	p.HoursEntries = slices.Delete(p.HoursEntries, idx, idx+1)
	return removed, true
}

// AppendAudit adds an event at the end of the log. The log has no edit or
// delete counterpart.
func (p *Person) AppendAudit(event AuditEvent) {
	p.AuditLog = append(p.AuditLog, event)
}

// AuditDescending yields the audit log newest first. Events sharing the same
// timestamp keep their insertion order.
func (p *Person) AuditDescending() iter.Seq[AuditEvent] {
	order := make([]int, len(p.AuditLog))
	for i := range order {
		order[i] = i
	}
	events := p.AuditLog
	slices.SortStableFunc(order, func(a, b int) int {
		return events[b].At.Compare(events[a].At)
	})
	return func(yield func(AuditEvent) bool) {
		for _, idx := range order {
			if !yield(events[idx]) {
				return
			}
		}
	}
}

// Clone returns a deep copy of the person.
func (p Person) Clone() Person {
	out := p
	out.ExamDates = slices.Clone(p.ExamDates)
	out.AuditLog = slices.Clone(p.AuditLog)
	if p.HoursEntries != nil {
		out.HoursEntries = make([]HourEntry, len(p.HoursEntries))
		for i, e := range p.HoursEntries {
			out.HoursEntries[i] = e.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the entry.
func (e HourEntry) Clone() HourEntry {
	out := e
	out.LastModifiedBy = clonePtr(e.LastModifiedBy)
	out.LastModifiedAt = clonePtr(e.LastModifiedAt)
	out.CompensatedBy = clonePtr(e.CompensatedBy)
	out.CompensatedAt = clonePtr(e.CompensatedAt)
	return out
}

// Clone returns a deep copy of the account.
func (a Account) Clone() Account {
	out := a
	out.Capabilities = a.Capabilities.Clone()
	return out
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := d
	if d.Persons != nil {
		out.Persons = make([]Person, len(d.Persons))
		for i, p := range d.Persons {
			out.Persons[i] = p.Clone()
		}
	}
	if d.Accounts != nil {
		out.Accounts = make([]Account, len(d.Accounts))
		for i, a := range d.Accounts {
			out.Accounts[i] = a.Clone()
		}
	}
	return out
}

// SortPersonsByName orders persons by name, then id.
func SortPersonsByName(persons []Person) {
	slices.SortStableFunc(persons, func(a, b Person) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			cmp.Compare(a.ID, b.ID),
		)
	})
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
