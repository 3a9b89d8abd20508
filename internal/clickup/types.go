// Package clickup provides the read-only client and types for the ClickUp
// task feed that drives deal synchronization.
package clickup

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Task statuses with special meaning for the pipeline.
const (
	StatusCompleted       = "completed"
	StatusPaymentReceived = "payment received"
)

// Task is a single ClickUp task as returned by the list tasks endpoint.
// Timestamps arrive as epoch milliseconds encoded as numeric strings.
type Task struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Status       TaskStatus    `json:"status"`
	DateUpdated  string        `json:"date_updated"`
	DueDate      *string       `json:"due_date"`
	Description  string        `json:"description"`
	CustomFields []CustomField `json:"custom_fields"`
}

// TaskStatus wraps the status label of a task.
type TaskStatus struct {
	Status string `json:"status"`
}

// CustomField is a ClickUp custom field. Values arrive as strings or numbers
// depending on field type, so the raw JSON is kept.
type CustomField struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// UpdatedAt parses the task's last-update timestamp. ok is false when the
// field is missing or malformed.
func (t Task) UpdatedAt() (ts time.Time, ok bool) {
	return parseEpochMillis(t.DateUpdated)
}

// DueAt parses the task's optional due date.
func (t Task) DueAt() (ts time.Time, ok bool) {
	if t.DueDate == nil {
		return time.Time{}, false
	}
	return parseEpochMillis(*t.DueDate)
}

// Rate extracts the "Rate" custom field as a display value formatted as
// "$" plus a comma-grouped integer, matching how deal values are stored.
// Returns nil when the field is absent or empty.
func (t Task) Rate() *string {
	for _, field := range t.CustomFields {
		if field.Name != "Rate" {
			continue
		}
		amount, ok := numericFieldValue(field.Value)
		if !ok || amount == 0 {
			return nil
		}
		formatted := "$" + groupThousands(amount)
		return &formatted
	}
	return nil
}

func parseEpochMillis(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

// numericFieldValue coerces a raw custom field value into an integer amount.
// ClickUp delivers currency fields as either a JSON number or a quoted string.
func numericFieldValue(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return int64(asNumber), true
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil && asString != "" {
		parsed, err := strconv.ParseFloat(asString, 64)
		if err != nil {
			return 0, false
		}
		return int64(parsed), true
	}

	return 0, false
}

func groupThousands(n int64) string {
	if n < 0 {
		return "-" + groupThousands(-n)
	}
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var out []byte
	for i, digit := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digit)
	}
	return string(out)
}

// String implements fmt.Stringer for log output.
func (t Task) String() string {
	return fmt.Sprintf("%s (%s)", t.Name, t.Status.Status)
}
