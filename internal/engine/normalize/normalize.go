// Package normalize converts raw CRM export records into canonical domain
// entities. Field names are resolved through per-provider alias tables, dates
// are parsed permissively, and missing values fall back to safe defaults so a
// partial export never aborts an analysis run.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"revenue_radar_backend/internal/engine/domain"
	"revenue_radar_backend/platform/phone"
)

// RawRecord is one untyped record from a CRM export.
type RawRecord map[string]interface{}

// RawSnapshot is the untyped form of a pipeline snapshot as delivered by a
// connector or webhook payload.
type RawSnapshot struct {
	Provider      string      `json:"provider"`
	Leads         []RawRecord `json:"leads"`
	Opportunities []RawRecord `json:"opportunities"`
	Activities    []RawRecord `json:"activities"`
	Reps          []RawRecord `json:"reps"`
}

// Lead normalizes a raw lead record using the given preset. Records without a
// resolvable id are unusable and return ok=false. Records without a parseable
// createdAt are stamped with now, so normalization is a pure function of its
// arguments.
func Lead(raw RawRecord, p Preset, now time.Time) (domain.Lead, bool) {
	id := pickString(raw, p.Lead, "id")
	if id == "" {
		return domain.Lead{}, false
	}

	createdAt := pickTime(raw, p.Lead, "createdAt")
	if createdAt == nil {
		createdAt = &now
	}

	return domain.Lead{
		ID:               id,
		FirstName:        pickString(raw, p.Lead, "firstName"),
		LastName:         pickString(raw, p.Lead, "lastName"),
		Email:            strings.ToLower(pickString(raw, p.Lead, "email")),
		Phone:            normalizePhone(pickString(raw, p.Lead, "phone")),
		Company:          pickString(raw, p.Lead, "company"),
		Title:            pickString(raw, p.Lead, "title"),
		Status:           LeadStatus(pickString(raw, p.Lead, "status")),
		AssignedTo:       pickString(raw, p.Lead, "assignedTo"),
		Source:           strings.ToLower(strings.TrimSpace(pickString(raw, p.Lead, "leadSource"))),
		HasBudget:        pickBool(raw, p.Lead, "hasBudget"),
		HasTimeline:      pickBool(raw, p.Lead, "hasTimeline"),
		CreatedAt:        *createdAt,
		FirstContactedAt: pickTime(raw, p.Lead, "firstContactedAt"),
	}, true
}

// Opportunity normalizes a raw deal record using the given preset. Like Lead,
// a missing createdAt is stamped with now rather than read from a clock.
func Opportunity(raw RawRecord, p Preset, now time.Time) (domain.Opportunity, bool) {
	id := pickString(raw, p.Opportunity, "id")
	if id == "" {
		return domain.Opportunity{}, false
	}

	createdAt := pickTime(raw, p.Opportunity, "createdAt")
	if createdAt == nil {
		createdAt = &now
	}
	updatedAt := pickTime(raw, p.Opportunity, "updatedAt")
	if updatedAt == nil {
		updatedAt = createdAt
	}

	name := pickString(raw, p.Opportunity, "name")
	if name == "" {
		name = "Unnamed deal " + id
	}

	return domain.Opportunity{
		ID:             id,
		Name:           name,
		ContactID:      pickString(raw, p.Opportunity, "contactId"),
		Value:          pickFloat(raw, p.Opportunity, "value"),
		Status:         DealStatus(pickString(raw, p.Opportunity, "status")),
		Stage:          strings.ToLower(strings.TrimSpace(pickString(raw, p.Opportunity, "stage"))),
		AssignedTo:     pickString(raw, p.Opportunity, "assignedTo"),
		CreatedAt:      *createdAt,
		UpdatedAt:      *updatedAt,
		StageChangedAt: pickTime(raw, p.Opportunity, "stageChangedAt"),
		LostReason:     pickString(raw, p.Opportunity, "lostReason"),
	}, true
}

// Activity normalizes a raw activity record using the given preset.
func Activity(raw RawRecord, p Preset) (domain.Activity, bool) {
	id := pickString(raw, p.Activity, "id")
	if id == "" {
		return domain.Activity{}, false
	}

	createdAt := pickTime(raw, p.Activity, "createdAt")
	if createdAt == nil {
		return domain.Activity{}, false
	}

	return domain.Activity{
		ID:          id,
		Type:        ActivityType(pickString(raw, p.Activity, "type")),
		ContactID:   pickString(raw, p.Activity, "contactId"),
		DealID:      pickString(raw, p.Activity, "dealId"),
		PerformedBy: pickString(raw, p.Activity, "performedBy"),
		Outcome:     strings.ToLower(strings.TrimSpace(pickString(raw, p.Activity, "outcome"))),
		CreatedAt:   *createdAt,
	}, true
}

// Rep normalizes a raw rep record using the given preset.
func Rep(raw RawRecord, p Preset) (domain.Rep, bool) {
	id := pickString(raw, p.Rep, "id")
	if id == "" {
		return domain.Rep{}, false
	}

	active := true
	if v, found := pickRaw(raw, p.Rep, "active"); found {
		active = toBool(v)
	}

	return domain.Rep{
		ID:     id,
		Name:   pickString(raw, p.Rep, "name"),
		Active: active,
	}, true
}

// Snapshot normalizes a full raw snapshot, dropping records that lack an id.
// The caller supplies now as the fallback timestamp for records without a
// createdAt. The second return value counts dropped records.
func Snapshot(raw RawSnapshot, now time.Time) (domain.Snapshot, int) {
	p := ForProvider(raw.Provider)
	dropped := 0

	snap := domain.Snapshot{
		Leads:         make([]domain.Lead, 0, len(raw.Leads)),
		Opportunities: make([]domain.Opportunity, 0, len(raw.Opportunities)),
		Activities:    make([]domain.Activity, 0, len(raw.Activities)),
		Reps:          make([]domain.Rep, 0, len(raw.Reps)),
	}

	for _, r := range raw.Leads {
		if l, ok := Lead(r, p, now); ok {
			snap.Leads = append(snap.Leads, l)
		} else {
			dropped++
		}
	}
	for _, r := range raw.Opportunities {
		if o, ok := Opportunity(r, p, now); ok {
			snap.Opportunities = append(snap.Opportunities, o)
		} else {
			dropped++
		}
	}
	for _, r := range raw.Activities {
		if a, ok := Activity(r, p); ok {
			snap.Activities = append(snap.Activities, a)
		} else {
			dropped++
		}
	}
	for _, r := range raw.Reps {
		if rep, ok := Rep(r, p); ok {
			snap.Reps = append(snap.Reps, rep)
		} else {
			dropped++
		}
	}

	return snap, dropped
}

// LeadStatus maps free-text status values onto the canonical lead statuses.
// Unrecognized values default to "new" so an exotic CRM status never hides a
// lead from the scans.
func LeadStatus(s string) domain.LeadStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "contacted", "attempted", "working", "in progress", "open - contacted":
		return domain.LeadStatusContacted
	case "qualified", "sql", "mql", "open - qualified", "converted":
		return domain.LeadStatusQualified
	case "unqualified", "disqualified", "junk", "not a fit", "closed - not converted":
		return domain.LeadStatusUnqualified
	default:
		return domain.LeadStatusNew
	}
}

// DealStatus maps free-text status values onto the canonical deal statuses.
// Unrecognized values default to "open".
func DealStatus(s string) domain.DealStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "won", "closed won", "closed-won", "closedwon":
		return domain.DealStatusWon
	case "lost", "closed lost", "closed-lost", "closedlost":
		return domain.DealStatusLost
	case "abandoned", "deleted", "archived", "inactive":
		return domain.DealStatusAbandoned
	default:
		return domain.DealStatusOpen
	}
}

// ActivityType maps free-text activity types onto the canonical set.
// Unrecognized values default to "note".
func ActivityType(s string) domain.ActivityType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "phone", "phone_call", "outbound call", "inbound call":
		return domain.ActivityCall
	case "email", "mail", "e-mail", "incoming_email", "outgoing_email":
		return domain.ActivityEmail
	case "sms", "text", "whatsapp", "message":
		return domain.ActivitySMS
	case "meeting", "appointment", "demo", "visit", "videocall":
		return domain.ActivityMeeting
	case "task", "todo", "follow_up", "followup":
		return domain.ActivityTask
	default:
		return domain.ActivityNote
	}
}

func normalizePhone(raw string) string {
	if raw == "" {
		return ""
	}
	return phone.NormalizeE164(raw)
}

// pickRaw resolves a canonical field against the record: the canonical name
// itself first, then the preset aliases in order.
func pickRaw(raw RawRecord, aliases AliasTable, field string) (interface{}, bool) {
	if v, ok := raw[field]; ok && v != nil {
		return v, true
	}
	for _, alias := range aliases[field] {
		if v, ok := raw[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func pickString(raw RawRecord, aliases AliasTable, field string) string {
	v, ok := pickRaw(raw, aliases, field)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func pickFloat(raw RawRecord, aliases AliasTable, field string) float64 {
	v, ok := pickRaw(raw, aliases, field)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if r == '$' || r == ',' || r == ' ' {
				return -1
			}
			return r
		}, n)
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func pickBool(raw RawRecord, aliases AliasTable, field string) bool {
	v, ok := pickRaw(raw, aliases, field)
	if !ok {
		return false
	}
	return toBool(v)
}

func toBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "y", "1":
			return true
		}
		return false
	case float64:
		return b != 0
	default:
		return false
	}
}

// timeLayouts are tried in order by pickTime. Exports in the wild mix ISO
// timestamps, bare dates, and US-style dates freely.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"Jan 2, 2006",
	time.RFC1123,
}

func pickTime(raw RawRecord, aliases AliasTable, field string) *time.Time {
	v, ok := pickRaw(raw, aliases, field)
	if !ok {
		return nil
	}

	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				utc := parsed.UTC()
				return &utc
			}
		}
		// Bare digit strings are epoch seconds or milliseconds.
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return epochTime(n)
		}
		return nil
	case float64:
		return epochTime(int64(t))
	default:
		return nil
	}
}

func epochTime(n int64) *time.Time {
	if n <= 0 {
		return nil
	}
	// Millisecond epochs are 13 digits for contemporary dates.
	if n > 1e12 {
		n /= 1000
	}
	utc := time.Unix(n, 0).UTC()
	return &utc
}
