package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TabularRecordSet is one table of rows produced by executing a query.
// Columns preserves the order in which keys first appear across the rows;
// Rows preserve response order. Values are decoded JSON scalars passed
// through untouched, with no coercion and no null handling.
type TabularRecordSet struct {
	Columns []string
	Rows    []map[string]any
}

// queryResponse mirrors the segments of an executeQueries response body
// that the transformer cares about.
type queryResponse struct {
	Results []struct {
		Tables []struct {
			Rows []json.RawMessage `json:"rows"`
		} `json:"tables"`
	} `json:"results"`
}

// RecordSetFromRaw derives a record set from a raw query response by taking
// the first result's first table. A missing results/tables/rows segment or
// an empty row list yields (nil, nil): callers treat that as a skip, not a
// fault. Only undecodable JSON is an error.
func RecordSetFromRaw(raw json.RawMessage) (*TabularRecordSet, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var resp queryResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	if len(resp.Results) == 0 || len(resp.Results[0].Tables) == 0 {
		return nil, nil
	}
	rawRows := resp.Results[0].Tables[0].Rows
	if len(rawRows) == 0 {
		return nil, nil
	}

	rs := &TabularRecordSet{Rows: make([]map[string]any, 0, len(rawRows))}
	seen := make(map[string]bool)
	for _, rawRow := range rawRows {
		var row map[string]any
		if err := json.Unmarshal(rawRow, &row); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		for _, key := range objectKeys(rawRow) {
			if !seen[key] {
				seen[key] = true
				rs.Columns = append(rs.Columns, key)
			}
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, nil
}

// TextDump renders the record set as flat text for full-text indexing: a
// header line of column names followed by one line per row, fields joined
// by " | ". Nil and absent values render as empty fields.
func (rs *TabularRecordSet) TextDump() string {
	var b strings.Builder
	b.WriteString(strings.Join(rs.Columns, " | "))
	for _, row := range rs.Rows {
		b.WriteByte('\n')
		for i, col := range rs.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			if v, ok := row[col]; ok && v != nil {
				b.WriteString(FormatValue(v))
			}
		}
	}
	return b.String()
}

// FormatValue renders a decoded JSON scalar as text. Whole floats print
// without a fractional part so integer-valued measures read naturally.
func FormatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}

// objectKeys returns the top-level keys of a JSON object in document order.
// encoding/json decodes objects into maps and loses key order; the order
// matters here because it becomes the column order of the record set.
func objectKeys(raw json.RawMessage) []string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := tok.(string)
		if !ok {
			return keys
		}
		keys = append(keys, key)
		if err := skipValue(dec); err != nil {
			return keys
		}
	}
	return keys
}

// skipValue consumes one JSON value, descending into nested containers.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); ok && (d == '{' || d == '[') {
		depth := 1
		for depth > 0 {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			if d, ok := tok.(json.Delim); ok {
				switch d {
				case '{', '[':
					depth++
				case '}', ']':
					depth--
				}
			}
		}
	}
	return nil
}
