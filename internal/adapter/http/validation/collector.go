package validation

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"

	"todoservice/internal/core/model/response"
)

// Accepted date-time layouts, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var jsonNull = []byte("null")

// collector accumulates violations for one request.
type collector struct {
	trans      ut.Translator
	prefix     string
	violations []response.ValidationError
	failures   map[string]bool
}

func newCollector(trans ut.Translator) *collector {
	return &collector{
		trans:    trans,
		failures: map[string]bool{},
	}
}

// nested shares the violation list but prefixes every field, so updateData
// errors read "updateData.title".
func (c *collector) nested(prefix string) *collector {
	return &collector{
		trans:    c.trans,
		prefix:   c.prefix + prefix + ".",
		failures: c.failures,
	}
}

func (c *collector) add(field, key string) {
	field = c.prefix + field
	message, err := c.trans.T(key, field)
	if err != nil {
		message = key
	}

	c.failures[rootField(field)] = true
	c.violations = append(c.violations, response.ValidationError{Field: field, Message: message})
}

// addRoot reports a violation about the whole object being read: "body" at
// the top level, the nested field name otherwise.
func (c *collector) addRoot(key string) {
	field := strings.TrimSuffix(c.prefix, ".")
	if field == "" {
		field = "body"
	}

	message, err := c.trans.T(key, field)
	if err != nil {
		message = key
	}

	c.failures[field] = true
	c.violations = append(c.violations, response.ValidationError{Field: field, Message: message})
}

func (c *collector) addMessage(field, message string) {
	field = c.prefix + field
	c.failures[rootField(field)] = true
	c.violations = append(c.violations, response.ValidationError{Field: field, Message: message})
}

func (c *collector) failed(field string) bool {
	return c.failures[rootField(c.prefix+field)]
}

// merge moves the violations of a nested collector into c.
func (c *collector) merge(other *collector) {
	c.violations = append(c.violations, other.violations...)
}

func (c *collector) err() error {
	if len(c.violations) == 0 {
		return nil
	}
	return &Error{Violations: c.violations}
}

// rootField strips list indexes: "tags[3]" is tracked as "tags".
func rootField(field string) string {
	if i := strings.Index(field, "["); i >= 0 {
		return field[:i]
	}
	return field
}

func decodeObject(body []byte) (map[string]json.RawMessage, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, false
	}

	return fields, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

func (c *collector) readString(fields map[string]json.RawMessage, name string) (value *string, present bool) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil, ok
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		c.add(name, msgString)
		return nil, true
	}

	s = strings.TrimSpace(s)
	return &s, true
}

func (c *collector) readBool(fields map[string]json.RawMessage, name string) (value *bool, present bool) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil, ok
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		c.add(name, msgBoolean)
		return nil, true
	}

	return &b, true
}

func (c *collector) readDate(fields map[string]json.RawMessage, name string) (value *time.Time, present bool) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil, ok
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		c.add(name, msgDate)
		return nil, true
	}

	t, ok := parseDate(strings.TrimSpace(s))
	if !ok {
		c.add(name, msgDate)
		return nil, true
	}

	return &t, true
}

// readTags returns trimmed tags. A null value reads as nil with present set.
func (c *collector) readTags(fields map[string]json.RawMessage, name string) (value []string, present bool) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil, ok
	}

	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		c.add(name, msgStringArray)
		return nil, true
	}

	if tags == nil {
		tags = []string{}
	}

	for i := range tags {
		tags[i] = strings.TrimSpace(tags[i])
	}

	return tags, true
}

func (c *collector) readIDs(fields map[string]json.RawMessage, name string) []string {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		c.add(name, msgStringArray)
		return nil
	}

	for i := range ids {
		ids[i] = strings.ToLower(strings.TrimSpace(ids[i]))
	}

	return ids
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}
