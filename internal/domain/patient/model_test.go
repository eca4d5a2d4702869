package patient

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestPlanKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Diet", "DIET_PLAN"},
		{"diet", "DIET_PLAN"},
		{"EXERCISE", "EXERCISE_PLAN"},
		{"Routine", "ROUTINE_PLAN"},
	}
	for _, tt := range tests {
		if got := PlanKey(tt.in); got != tt.want {
			t.Errorf("PlanKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"120/80", "120/80"},
		{62, "62"},
		{int32(72), "72"},
		{95.5, "95.5"},
	}
	for _, tt := range tests {
		if got := Stringify(tt.in); got != tt.want {
			t.Errorf("Stringify(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPatient_PlanDay(t *testing.T) {
	p := &Patient{
		PatientID: 1,
		Extra: map[string]any{
			"DIET_PLAN": map[string]string{"DAY1": "Oats breakfast", "DAY3": "Light dinner"},
		},
	}

	if text, ok := p.PlanDay("Diet", 1); !ok || text != "Oats breakfast" {
		t.Errorf("PlanDay(Diet, 1) = %q, %v", text, ok)
	}
	if text, ok := p.PlanDay("diet", 3); !ok || text != "Light dinner" {
		t.Errorf("PlanDay(diet, 3) = %q, %v", text, ok)
	}
	if _, ok := p.PlanDay("Diet", 2); ok {
		t.Error("expected missing day to report absent")
	}
	if _, ok := p.PlanDay("Exercise", 1); ok {
		t.Error("expected missing plan to report absent")
	}
}

func TestPatient_DecodesSchemalessDocument(t *testing.T) {
	// Real documents carry fields the model does not declare and numeric
	// vitals; decoding must tolerate both.
	raw, err := bson.Marshal(bson.D{
		{Key: "patientid", Value: 12},
		{Key: "name", Value: "Asha"},
		{Key: "gender", Value: "F"},
		{Key: "weight", Value: int32(62)},
		{Key: "bp", Value: "120/80"},
		{Key: "DIET_PLAN", Value: bson.D{{Key: "DAY1", Value: "Oats breakfast"}}},
	})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	var p Patient
	if err := bson.Unmarshal(raw, &p); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if text, ok := p.PlanDay("Diet", 1); !ok || text != "Oats breakfast" {
		t.Errorf("PlanDay through decoded subdocument = %q, %v", text, ok)
	}
	if got := Stringify(p.Weight); got != "62" {
		t.Errorf("numeric weight = %q, want 62", got)
	}
	if _, ok := p.Extra["gender"]; !ok {
		t.Error("undeclared field must survive in Extra")
	}

	// and the JSON rendering flattens the decoded subdocument as an object
	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var doc map[string]any
	json.Unmarshal(out, &doc)
	plan, ok := doc["DIET_PLAN"].(map[string]any)
	if !ok {
		t.Fatalf("expected DIET_PLAN object, got %T", doc["DIET_PLAN"])
	}
	if plan["DAY1"] != "Oats breakfast" {
		t.Errorf("unexpected plan content: %v", plan)
	}
	if doc["gender"] != "F" {
		t.Errorf("expected gender in response, got %v", doc["gender"])
	}
}

func TestPatient_MarshalJSON_FlattensPlans(t *testing.T) {
	activated := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	p := Patient{
		PatientID:   7,
		Name:        "Asha",
		MobileNo:    "9990001111",
		PlanType:    "Diet",
		ActivatedAt: &activated,
		Extra: map[string]any{
			"DIET_PLAN": map[string]string{"DAY1": "Oats breakfast"},
		},
	}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	// plan subdocument must sit at the top level
	plan, ok := doc["DIET_PLAN"].(map[string]any)
	if !ok {
		t.Fatalf("expected top-level DIET_PLAN, got %v", doc)
	}
	if plan["DAY1"] != "Oats breakfast" {
		t.Errorf("unexpected plan content: %v", plan)
	}

	// activation time serialises as RFC3339
	ts, ok := doc["time"].(string)
	if !ok {
		t.Fatalf("expected string time, got %T", doc["time"])
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("time %q is not RFC3339: %v", ts, err)
	}
}

func TestPatient_MarshalJSON_OmitsEmpty(t *testing.T) {
	raw, err := json.Marshal(Patient{PatientID: 1, Name: "Asha"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for _, key := range []string{"email", "time", "meeting_details", "type", "weight"} {
		if strings.Contains(string(raw), `"`+key+`"`) {
			t.Errorf("expected %q to be omitted when empty: %s", key, raw)
		}
	}
}
