// Package models defines the data structures shared by the classifier,
// the planner, the ledger and the ingestion pipeline.
package models

import "fmt"

const (
	SubjectUnknown        = "unknown"
	SpecializationGeneral = "general"
)

// SessionType is the administrative exam round a document belongs to.
type SessionType int

const (
	SessionUnspecified SessionType = iota
	SessionModel
	SessionSimulation
	SessionMainI
	SessionMainII
	SessionSpecial
	SessionMainIRetake
	SessionMainIIRetake
	SessionSpecialRetake
)

var sessionNames = map[SessionType]string{
	SessionUnspecified:   "Unspecified",
	SessionModel:         "Model",
	SessionSimulation:    "Simulation",
	SessionMainI:         "MainSessionI",
	SessionMainII:        "MainSessionII",
	SessionSpecial:       "SpecialSession",
	SessionMainIRetake:   "MainSessionIRetake",
	SessionMainIIRetake:  "MainSessionIIRetake",
	SessionSpecialRetake: "SpecialSessionRetake",
}

// sessionDirs are the directory names used in the published file tree.
var sessionDirs = map[SessionType]string{
	SessionUnspecified:   "-",
	SessionModel:         "Model",
	SessionSimulation:    "Simulare",
	SessionMainI:         "Sesiunea-I",
	SessionMainII:        "Sesiunea-II",
	SessionSpecial:       "Sesiune-olimpici",
	SessionMainIRetake:   "Sesiunea-I-rezerva",
	SessionMainIIRetake:  "Sesiunea-II-rezerva",
	SessionSpecialRetake: "Sesiune-olimpici-rezerva",
}

func (s SessionType) String() string {
	if name, ok := sessionNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SessionType(%d)", int(s))
}

// Dir returns the storage directory name for the session.
func (s SessionType) Dir() string {
	if dir, ok := sessionDirs[s]; ok {
		return dir
	}
	return sessionDirs[SessionUnspecified]
}

// IsRetake reports whether s is one of the retake ("rezerva") rounds.
func (s SessionType) IsRetake() bool {
	return s == SessionMainIRetake || s == SessionMainIIRetake || s == SessionSpecialRetake
}

// ParseSessionType maps a session name (as used in rule files) to its value.
func ParseSessionType(name string) (SessionType, error) {
	for s, n := range sessionNames {
		if n == name {
			return s, nil
		}
	}
	return SessionUnspecified, fmt.Errorf("unknown session type %q", name)
}

func (s SessionType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SessionType) UnmarshalText(text []byte) error {
	v, err := ParseSessionType(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// DocumentRole tells a question paper apart from its answer key.
type DocumentRole string

const (
	RoleVariant   DocumentRole = "Variant"
	RoleAnswerKey DocumentRole = "AnswerKey"
)

// ExamDescriptor is the structured metadata extracted from one document name.
type ExamDescriptor struct {
	Probe          string       `json:"probe,omitempty" yaml:"probe,omitempty"`
	RawSubject     string       `json:"raw_subject,omitempty" yaml:"raw_subject,omitempty"`
	Subject        string       `json:"subject" yaml:"subject"`
	Specialization string       `json:"specialization" yaml:"specialization"`
	Year           string       `json:"year" yaml:"year"`
	Session        SessionType  `json:"session" yaml:"session"`
	Role           DocumentRole `json:"role" yaml:"role"`
	Filename       string       `json:"filename" yaml:"filename"`
	Pattern        string       `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// PlacementDecision lists where a document goes and under which name.
type PlacementDecision struct {
	Destinations []string `json:"destinations" yaml:"destinations"`
	Filename     string   `json:"filename" yaml:"filename"`
}

// Keys joins every destination with the cleaned filename.
func (p PlacementDecision) Keys() []string {
	keys := make([]string, len(p.Destinations))
	for i, dir := range p.Destinations {
		keys[i] = dir + "/" + p.Filename
	}
	return keys
}

// IsFanOut reports whether the document is placed under more than one track.
func (p PlacementDecision) IsFanOut() bool {
	return len(p.Destinations) > 1
}
