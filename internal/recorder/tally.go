package recorder

import "classrecord/internal/attendance"

// Tally is the live count of marks for a roster.
// Present+Absent+Late+Excused+Unmarked always equals Total.
type Tally struct {
	Total    int `json:"total"`
	Present  int `json:"present"`
	Absent   int `json:"absent"`
	Late     int `json:"late"`
	Excused  int `json:"excused"`
	Unmarked int `json:"unmarked"`
}

// Count tallies the ledger over the roster. Ledger entries for students not on
// the roster are ignored; unrecognised statuses count as unmarked.
func Count(roster []attendance.Student, l *Ledger) Tally {
	t := Tally{Total: len(roster)}
	for _, st := range roster {
		switch l.Status(st.StudentID) {
		case attendance.StatusPresent:
			t.Present++
		case attendance.StatusAbsent:
			t.Absent++
		case attendance.StatusLate:
			t.Late++
		case attendance.StatusExcused:
			t.Excused++
		}
	}
	t.Unmarked = t.Total - t.Present - t.Absent - t.Late - t.Excused
	return t
}
