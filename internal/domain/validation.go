package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"tradematch.app/linkup/internal/model"
)

const (
	DefaultMinIntroLength = 10
	MaxIntroLength        = 5000
	MaxNoteLength         = 1000
	MaxMeetingProposals   = 10
)

var localePattern = regexp.MustCompile(`^[A-Za-z]{2,3}([-_][A-Za-z0-9]{2,8})?$`)

// Rules are the tunable limits applied when validating a creation payload.
type Rules struct {
	MinIntroLength int
}

func DefaultRules() Rules {
	return Rules{MinIntroLength: DefaultMinIntroLength}
}

type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError collects every problem found in a payload. A request with any
// issue is rejected as a whole.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.Field + ": " + issue.Reason
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, reason string) {
	e.Issues = append(e.Issues, FieldIssue{Field: field, Reason: reason})
}

func (e *ValidationError) orNil() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e
}

// NewValidationError builds a single-issue error for callers outside this package.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Issues: []FieldIssue{{Field: field, Reason: reason}}}
}

// CreateConnectionInput is the canonical, still untrusted, creation payload.
type CreateConnectionInput struct {
	MatchID           int64
	BuyerProfileID    int64
	SupplierProfileID int64
	IntroMessage      string
	Locale            string
	Attachments       []string
	LogisticsPlan     *LogisticsPlanInput
	MeetingProposal   []string
}

type LogisticsPlanInput struct {
	Incoterm   *string
	Transports []string
}

// Draft is a creation payload that passed validation.
type Draft struct {
	MatchID           int64
	BuyerProfileID    int64
	SupplierProfileID int64
	IntroMessage      string
	Locale            string
	Attachments       []model.Attachment
	LogisticsPlan     *model.LogisticsPlan
	MeetingProposal   []time.Time
}

// ValidateDraft normalizes in and rejects it if any field is malformed or outside
// its vocabulary.
func ValidateDraft(rules Rules, in CreateConnectionInput) (Draft, error) {
	verr := &ValidationError{}

	if in.MatchID <= 0 {
		verr.add("matchId", "is required")
	}
	if in.BuyerProfileID <= 0 {
		verr.add("buyerProfileId", "is required")
	}
	if in.SupplierProfileID <= 0 {
		verr.add("supplierProfileId", "is required")
	}
	if in.BuyerProfileID > 0 && in.BuyerProfileID == in.SupplierProfileID {
		verr.add("supplierProfileId", "must differ from buyerProfileId")
	}

	minLen := rules.MinIntroLength
	if minLen <= 0 {
		minLen = DefaultMinIntroLength
	}
	intro := strings.TrimSpace(in.IntroMessage)
	switch n := utf8.RuneCountInString(intro); {
	case n == 0:
		verr.add("introMessage", "is required")
	case n < minLen:
		verr.add("introMessage", fmt.Sprintf("must be at least %d characters", minLen))
	case n > MaxIntroLength:
		verr.add("introMessage", fmt.Sprintf("must be at most %d characters", MaxIntroLength))
	}

	locale := strings.TrimSpace(in.Locale)
	if locale != "" && !localePattern.MatchString(locale) {
		verr.add("locale", "is not a locale tag")
	}

	attachments := make([]model.Attachment, 0, len(in.Attachments))
	for i, raw := range in.Attachments {
		a := model.Attachment(strings.TrimSpace(raw))
		if !a.Valid() {
			verr.add(fmt.Sprintf("attachments[%d]", i), fmt.Sprintf("unknown attachment %q", raw))
			continue
		}
		if !slices.Contains(attachments, a) {
			attachments = append(attachments, a)
		}
	}

	plan := validateLogistics(verr, in.LogisticsPlan)

	if len(in.MeetingProposal) > MaxMeetingProposals {
		verr.add("meetingProposal", fmt.Sprintf("at most %d proposals are allowed", MaxMeetingProposals))
	}
	proposals := make([]time.Time, 0, len(in.MeetingProposal))
	for i, raw := range in.MeetingProposal {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
		if err != nil {
			verr.add(fmt.Sprintf("meetingProposal[%d]", i), "must be an RFC 3339 timestamp")
			continue
		}
		proposals = append(proposals, t.UTC())
	}

	if err := verr.orNil(); err != nil {
		return Draft{}, err
	}

	return Draft{
		MatchID:           in.MatchID,
		BuyerProfileID:    in.BuyerProfileID,
		SupplierProfileID: in.SupplierProfileID,
		IntroMessage:      intro,
		Locale:            locale,
		Attachments:       attachments,
		LogisticsPlan:     plan,
		MeetingProposal:   proposals,
	}, nil
}

func validateLogistics(verr *ValidationError, in *LogisticsPlanInput) *model.LogisticsPlan {
	if in == nil {
		return nil
	}

	plan := &model.LogisticsPlan{Transports: make([]model.TransportMode, 0, len(in.Transports))}

	if in.Incoterm != nil {
		term := model.Incoterm(strings.ToUpper(strings.TrimSpace(*in.Incoterm)))
		if term.Valid() {
			plan.Incoterm = &term
		} else {
			verr.add("logisticsPlan.incoterm", fmt.Sprintf("unknown incoterm %q", *in.Incoterm))
		}
	}

	for i, raw := range in.Transports {
		mode := model.TransportMode(strings.ToLower(strings.TrimSpace(raw)))
		if !mode.Valid() {
			verr.add(fmt.Sprintf("logisticsPlan.transports[%d]", i), fmt.Sprintf("unknown transport mode %q", raw))
			continue
		}
		if !slices.Contains(plan.Transports, mode) {
			plan.Transports = append(plan.Transports, mode)
		}
	}

	return plan
}

// ParseStatus turns a requested status into the closed enum.
func ParseStatus(raw string) (model.ConnectionStatus, error) {
	s := model.ConnectionStatus(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", NewValidationError("status", fmt.Sprintf("unknown status %q", raw))
	}
	return s, nil
}

// NormalizeNote trims a transition note. Blank notes are dropped.
func NormalizeNote(note *string) (*string, error) {
	if note == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > MaxNoteLength {
		return nil, NewValidationError("note", fmt.Sprintf("must be at most %d characters", MaxNoteLength))
	}
	return &trimmed, nil
}
