package runner

// Report is one file's execution result: every reportable outcome plus
// a file-level failure, when a session-level fault aborted the file
// before every table could run.
type Report struct {
	File     string
	Outcomes []Outcome
	Aborted  bool
	AbortErr error
}

// Passed reports whether every non-snoozed outcome in this file passed
// and the file was not aborted.
func (r Report) Passed() bool {
	if r.Aborted {
		return false
	}
	for _, o := range r.Outcomes {
		if o.Status == StatusFail || o.Status == StatusException {
			return false
		}
	}
	return true
}

// Counts tallies outcomes by status.
type Counts struct {
	Pass      int
	Fail      int
	Exception int
	Snoozed   int
}

// Tally summarizes r's outcomes.
func (r Report) Tally() Counts {
	var c Counts
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusPass:
			c.Pass++
		case StatusFail:
			c.Fail++
		case StatusException:
			c.Exception++
		case StatusSnoozed:
			c.Snoozed++
		}
	}
	return c
}
