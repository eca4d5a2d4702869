// Package patient holds the patient document model and its store.
package patient

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MeetingDetails records the most recent scheduled meeting for a patient.
type MeetingDetails struct {
	MeetingLink     string    `bson:"meeting_link" json:"meeting_link"`
	MeetingDatetime time.Time `bson:"meeting_datetime" json:"meeting_datetime"`
	ScheduledAt     time.Time `bson:"scheduled_at" json:"scheduled_at"`
	EmailSent       bool      `bson:"email_sent" json:"email_sent"`
}

// Patient is the stored patient document. The collection is schemaless:
// only the identity fields are typed, the vitals may hold numbers or
// strings, and everything else, including the "{TYPE}_PLAN" subdocuments
// that live at the top level of the document, lands in the inline Extra
// map.
type Patient struct {
	PatientID      int             `bson:"patientid" json:"patientid"`
	Name           string          `bson:"name" json:"name"`
	MobileNo       string          `bson:"mobileno,omitempty" json:"mobileno,omitempty"`
	Email          string          `bson:"email,omitempty" json:"email,omitempty"`
	Weight         any             `bson:"weight,omitempty" json:"weight,omitempty"`
	BP             any             `bson:"bp,omitempty" json:"bp,omitempty"`
	HeartRate      any             `bson:"heartrate,omitempty" json:"heartrate,omitempty"`
	FastingSugar   any             `bson:"fasting_sugar,omitempty" json:"fasting_sugar,omitempty"`
	PlanType       string          `bson:"type,omitempty" json:"type,omitempty"`
	ActivatedAt    *time.Time      `bson:"time,omitempty" json:"time,omitempty"`
	MeetingDetails *MeetingDetails `bson:"meeting_details,omitempty" json:"meeting_details,omitempty"`

	Extra map[string]any `bson:",inline" json:"-"`
}

// PlanKey normalises a plan type to its document key, e.g. "Diet" ->
// "DIET_PLAN".
func PlanKey(planType string) string {
	return strings.ToUpper(planType) + "_PLAN"
}

// DayKey returns the key of a day inside a plan subdocument, e.g. "DAY3".
func DayKey(day int) string {
	return fmt.Sprintf("DAY%d", day)
}

// Stringify renders a schemaless field for message text. The store does
// not enforce types; numbers and strings both occur in practice.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// PlanDay looks up the plan text for a given plan type and day. The second
// return is false when either the plan or the day is absent.
func (p *Patient) PlanDay(planType string, day int) (string, bool) {
	plan, ok := p.Extra[PlanKey(planType)]
	if !ok {
		return "", false
	}
	return docLookup(plan, DayKey(day))
}

// docLookup reads a key out of a subdocument regardless of how the codec
// materialised it.
func docLookup(doc any, key string) (string, bool) {
	switch d := doc.(type) {
	case map[string]string:
		v, ok := d[key]
		return v, ok
	case map[string]any:
		if v, ok := d[key]; ok {
			return Stringify(v), true
		}
	case primitive.M:
		if v, ok := d[key]; ok {
			return Stringify(v), true
		}
	case primitive.D:
		for _, e := range d {
			if e.Key == key {
				return Stringify(e.Value), true
			}
		}
	}
	return "", false
}

// MarshalJSON folds the inline remainder back into the top level so API
// responses mirror the stored document shape.
func (p Patient) MarshalJSON() ([]byte, error) {
	type alias Patient
	base, err := json.Marshal(alias(p))
	if err != nil {
		return nil, err
	}
	if len(p.Extra) == 0 {
		return base, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(base, &doc); err != nil {
		return nil, err
	}
	for key, val := range p.Extra {
		doc[key] = fromBSON(val)
	}
	return json.Marshal(doc)
}

// fromBSON rewrites codec-native document types into plain maps and slices
// so they serialise as JSON objects rather than key/value pair arrays.
func fromBSON(v any) any {
	switch x := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(x))
		for _, e := range x {
			m[e.Key] = fromBSON(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[k] = fromBSON(val)
		}
		return m
	case primitive.A:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = fromBSON(val)
		}
		return out
	default:
		return v
	}
}
