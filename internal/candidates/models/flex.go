package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FlexItem is one entry of a flexible-shape field: either flat text or a
// structured record. Historical candidate documents stored education,
// experience and certifications in both shapes; normalization to this tagged
// form happens once, at the JSON boundary, so nothing downstream sniffs
// shapes again.
type FlexItem struct {
	Flat       string
	Structured map[string]any
}

// IsFlat reports whether the item is plain text.
func (f FlexItem) IsFlat() bool { return f.Structured == nil }

func (f *FlexItem) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Flat = s
		f.Structured = nil
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err == nil {
		f.Flat = ""
		f.Structured = obj
		return nil
	}
	// Numbers and booleans occur in legacy records; render them as text.
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("flex item: unsupported shape: %w", err)
	}
	f.Flat = fmt.Sprint(v)
	f.Structured = nil
	return nil
}

func (f FlexItem) MarshalJSON() ([]byte, error) {
	if f.Structured != nil {
		return json.Marshal(f.Structured)
	}
	return json.Marshal(f.Flat)
}

// Text renders the item as one human-readable line. Structured records come
// out as "key: value" pairs in key order, skipping empty values.
func (f FlexItem) Text() string {
	if f.Structured == nil {
		return f.Flat
	}
	keys := make([]string, 0, len(f.Structured))
	for k := range f.Structured {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		v := f.Structured[k]
		if v == nil {
			continue
		}
		text := strings.TrimSpace(fmt.Sprint(v))
		if text == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", k, text))
	}
	return strings.Join(parts, ", ")
}

// FlexList is a flexible-shape list field. It accepts a bare string, a single
// object, an array of strings, an array of objects, or any mix, and always
// normalizes to a list of tagged items.
type FlexList []FlexItem

func (l *FlexList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var items []FlexItem
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var item FlexItem
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*l = FlexList{item}
	return nil
}

// Text renders the list one item per line, skipping blanks.
func (l FlexList) Text() string {
	var lines []string
	for _, item := range l {
		if line := item.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
