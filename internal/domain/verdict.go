package domain

import "fmt"

// Verdict is the health classification of an endpoint after all attempts.
type Verdict string

const (
	VerdictAlive    Verdict = "ALIVE"
	VerdictUnstable Verdict = "UNSTABLE"
	VerdictDead     Verdict = "DEAD"
)

func (v Verdict) Valid() bool {
	switch v {
	case VerdictAlive, VerdictUnstable, VerdictDead:
		return true
	}
	return false
}

func ParseVerdict(s string) (Verdict, error) {
	v := Verdict(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown verdict %q", s)
	}
	return v, nil
}

// DefaultKeep is what the filter keeps when nothing else is configured:
// anything that answered at least once.
func DefaultKeep() []Verdict {
	return []Verdict{VerdictAlive, VerdictUnstable}
}
