package recorder

import "classrecord/internal/attendance"

// Entry is the mark held for one student.
type Entry struct {
	Status  attendance.Status
	Remarks string
}

// change remembers what one student's entry was before a batch touched it.
type change struct {
	studentID string
	prev      Entry
	existed   bool
}

// Ledger maps student ids to their mark for the session being recorded.
// Every mutation is one batch on an undo stack.
type Ledger struct {
	entries map[string]Entry
	history [][]change
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]Entry)}
}

// Mark sets the status and remarks of one student, replacing both.
// Status values are not checked here; the server rejects unknown ones.
func (l *Ledger) Mark(studentID string, status attendance.Status, remarks string) {
	l.apply([]string{studentID}, status, remarks)
}

// apply writes status to every id as a single undoable batch.
func (l *Ledger) apply(ids []string, status attendance.Status, remarks string) {
	if len(ids) == 0 {
		return
	}
	batch := make([]change, 0, len(ids))
	for _, id := range ids {
		prev, existed := l.entries[id]
		batch = append(batch, change{studentID: id, prev: prev, existed: existed})
		l.entries[id] = Entry{Status: status, Remarks: remarks}
	}
	l.history = append(l.history, batch)
}

// Status returns the student's mark, or StatusUnset.
func (l *Ledger) Status(studentID string) attendance.Status {
	return l.entries[studentID].Status
}

// Remarks returns the student's remarks, or "".
func (l *Ledger) Remarks(studentID string) string {
	return l.entries[studentID].Remarks
}

// Entry returns the student's entry and whether one exists.
func (l *Ledger) Entry(studentID string) (Entry, bool) {
	e, ok := l.entries[studentID]
	return e, ok
}

// Len is the number of students with an entry.
func (l *Ledger) Len() int { return len(l.entries) }

// Undo reverts the most recent batch. It reports false when there is nothing to undo.
func (l *Ledger) Undo() bool {
	if len(l.history) == 0 {
		return false
	}
	batch := l.history[len(l.history)-1]
	l.history = l.history[:len(l.history)-1]
	for i := len(batch) - 1; i >= 0; i-- {
		ch := batch[i]
		if ch.existed {
			l.entries[ch.studentID] = ch.prev
		} else {
			delete(l.entries, ch.studentID)
		}
	}
	return true
}

// CanUndo reports whether Undo would change anything.
func (l *Ledger) CanUndo() bool { return len(l.history) > 0 }

// Clear empties the ledger and its history.
func (l *Ledger) Clear() {
	l.entries = make(map[string]Entry)
	l.history = nil
}
