package models

import (
	"encoding/json"
	"strings"
)

// SlotList is an ordered list of opaque time-slot labels. Vendor input is
// freeform: it decodes from either a JSON array of strings or a single
// string with comma/whitespace separated labels.
type SlotList []string

func (s *SlotList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = NormalizeSlots(list)
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*s = NormalizeSlots([]string{single})
	return nil
}

// NormalizeSlots splits entries on commas and whitespace, trims them and
// drops empties, preserving order.
func NormalizeSlots(in []string) []string {
	out := make([]string, 0, len(in))
	for _, raw := range in {
		for _, part := range strings.FieldsFunc(raw, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		}) {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// NormalizeSlot maps an absent slot to the empty string so conflict checks
// compare missing and empty slots as equal.
func NormalizeSlot(s string) string { return strings.TrimSpace(s) }
