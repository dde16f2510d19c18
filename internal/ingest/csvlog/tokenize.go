package csvlog

import "strings"

// Tokenize splits CSV text into rows of raw fields.
//
// A double quote toggles quoting and is never emitted. Inside quotes a
// comma is literal and a newline stays part of the field. Outside quotes a
// carriage return is dropped so CRLF input splits like LF input. Blank lines
// produce no row, and the final row needs no trailing newline.
func Tokenize(data string) [][]string {
	var (
		rows     [][]string
		fields   []string
		field    strings.Builder
		inQuotes bool
		touched  bool // current row has content or a separator
	)

	endField := func() {
		fields = append(fields, field.String())
		field.Reset()
	}
	endRow := func() {
		endField()
		if touched {
			rows = append(rows, fields)
		}
		fields = nil
		touched = false
	}

	for _, r := range data {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			touched = true
		case inQuotes:
			field.WriteRune(r)
		case r == ',':
			endField()
			touched = true
		case r == '\n':
			endRow()
		case r == '\r':
		default:
			field.WriteRune(r)
			touched = true
		}
	}
	if touched || field.Len() > 0 {
		endRow()
	}
	return rows
}
