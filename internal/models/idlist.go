package models

import "encoding/json"

// Membership lists (party attendees, a user's saved parties) are persisted as
// a JSON array string on the parent document, e.g. "[3,17,42]". The helpers
// below are the only code that touches the raw form.

// DecodeIDList parses a stored id list. Malformed or empty input decodes to an
// empty list rather than an error; corrupt persisted state reads as "no
// members" instead of failing the request.
func DecodeIDList(raw string) []int64 {
	if raw == "" {
		return []int64{}
	}
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return []int64{}
	}
	if ids == nil {
		return []int64{}
	}
	return ids
}

// EncodeIDList is the inverse of DecodeIDList for lists without duplicates.
func EncodeIDList(ids []int64) string {
	if len(ids) == 0 {
		return "[]"
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// ContainsID reports whether id is present in the stored list.
func ContainsID(raw string, id int64) bool {
	for _, existing := range DecodeIDList(raw) {
		if existing == id {
			return true
		}
	}
	return false
}

// AddID appends id to the stored list if absent. The second return value is
// false when the id was already present, in which case raw comes back
// unchanged; callers treat that as an "already a member" condition, not an
// error.
func AddID(raw string, id int64) (string, bool) {
	ids := DecodeIDList(raw)
	for _, existing := range ids {
		if existing == id {
			return raw, false
		}
	}
	return EncodeIDList(append(ids, id)), true
}

// RemoveID deletes id from the stored list if present, preserving the order
// of the remaining ids. Mirrors AddID: false means the id was not a member.
func RemoveID(raw string, id int64) (string, bool) {
	ids := DecodeIDList(raw)
	for i, existing := range ids {
		if existing == id {
			return EncodeIDList(append(ids[:i], ids[i+1:]...)), true
		}
	}
	return raw, false
}
