package repository

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"strings"
)

// encodeTags serializes tags into the text column; nil tags stay NULL.
func encodeTags(tags []string) (sql.NullString, error) {
	if tags == nil {
		return sql.NullString{}, nil
	}

	encoded, err := marshalJSON(tags)
	if err != nil {
		return sql.NullString{}, err
	}

	return sql.NullString{String: encoded, Valid: true}, nil
}

// decodeTags never fails: a value that is not a JSON array of strings reads
// as an empty list.
func decodeTags(value sql.NullString) []string {
	if !value.Valid {
		return nil
	}

	var tags []string
	if err := json.Unmarshal([]byte(value.String), &tags); err != nil || tags == nil {
		return []string{}
	}

	return tags
}

// tagPattern matches a whole element of an encoded tag list, so "work" does
// not match "homework".
func tagPattern(tag string) string {
	element, err := marshalJSON(tag)
	if err != nil {
		element = `"` + tag + `"`
	}

	return "%" + escapeLike(element) + "%"
}

func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(v); err != nil {
		return "", err
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}
