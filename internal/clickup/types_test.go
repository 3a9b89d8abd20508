package clickup

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUpdatedAtParsesEpochMillis(t *testing.T) {
	task := Task{DateUpdated: "1700000000000"}
	ts, ok := task.UpdatedAt()
	if !ok {
		t.Fatal("expected timestamp to parse")
	}
	want := time.UnixMilli(1700000000000)
	if !ts.Equal(want) {
		t.Fatalf("expected %v, got %v", want, ts)
	}

	for _, raw := range []string{"", "not-a-number"} {
		if _, ok := (Task{DateUpdated: raw}).UpdatedAt(); ok {
			t.Fatalf("expected %q to fail parsing", raw)
		}
	}
}

func TestDueAtHandlesMissingDate(t *testing.T) {
	if _, ok := (Task{}).DueAt(); ok {
		t.Fatal("nil due date should not parse")
	}

	raw := "1700000000000"
	task := Task{DueDate: &raw}
	if _, ok := task.DueAt(); !ok {
		t.Fatal("expected due date to parse")
	}
}

func rateField(raw string) []CustomField {
	return []CustomField{{Name: "Rate", Value: json.RawMessage(raw)}}
}

func TestRateFormatsCurrency(t *testing.T) {
	cases := []struct {
		name   string
		fields []CustomField
		want   string
		isNil  bool
	}{
		{"number", rateField(`2000`), "$2,000", false},
		{"quoted string", rateField(`"1500"`), "$1,500", false},
		{"small amount", rateField(`500`), "$500", false},
		{"seven figures", rateField(`1250000`), "$1,250,000", false},
		{"zero", rateField(`0`), "", true},
		{"null value", rateField(`null`), "", true},
		{"absent field", []CustomField{{Name: "Platform", Value: json.RawMessage(`"IG"`)}}, "", true},
		{"no fields", nil, "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := (Task{CustomFields: tc.fields}).Rate()
			if tc.isNil {
				if got != nil {
					t.Fatalf("expected nil, got %q", *got)
				}
				return
			}
			if got == nil || *got != tc.want {
				t.Fatalf("expected %q, got %v", tc.want, got)
			}
		})
	}
}
