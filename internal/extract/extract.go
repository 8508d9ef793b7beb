/*
PURPOSE:
  Recovers the JSON entities a model returned inside free text.
  Checks whether a whole answer is valid JSON.

REQUIREMENTS:
  User-specified:
  - Tolerate ```json fences and the json...<|end-output|> sentinel form.
  - Never fail: an unreadable answer yields an empty entity list.

  Implementation-discovered:
  - Numbers are decoded as json.Number so artifacts keep their spelling.
  - Trailing data after the first value makes the text invalid.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (Runner)
  - Uses: internal/model

ERROR HANDLING:
  - Parse errors never leave this package; Success/valid flags carry them.

USAGE:
  res := extract.ExtractEntities(raw)
  ok := extract.IsValidJSON(raw)
*/

// Package extract recovers JSON entities from free-text model output and
// scores that output against expected substrings.
package extract

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/daryltucker/forest-extract/internal/model"
)

const (
	fenceOpen   = "```json"
	fenceClose  = "```"
	jsonToken   = "json"
	endSentinel = "<|end-output|>"
)

// Candidate returns the part of raw that should be parsed as JSON.
//
// A ```json fence is cut out up to the last closing fence, and a leading
// "json" token is cut out up to the first <|end-output|> sentinel; both
// are trimmed. Anything else is returned untouched.
func Candidate(raw string) string {
	if open := strings.Index(raw, fenceOpen); open >= 0 {
		start := open + len(fenceOpen)
		if end := strings.LastIndex(raw, fenceClose); end >= start {
			return strings.TrimSpace(raw[start:end])
		}
	}

	if strings.HasPrefix(raw, jsonToken) {
		if end := strings.Index(raw, endSentinel); end >= 0 {
			return strings.TrimSpace(raw[len(jsonToken):end])
		}
	}

	// Not trimmed: the whole response is the candidate as-is.
	return raw
}

// ExtractEntities decodes the JSON candidate of raw. It never fails; a
// response that cannot be decoded yields an empty entity list.
func ExtractEntities(raw string) model.ExtractionResult {
	v, err := decode(Candidate(raw))
	if err != nil {
		return model.ExtractionResult{Entities: []any{}, Success: false}
	}
	return model.ExtractionResult{Entities: v, Success: true}
}

// IsValidJSON reports whether the unmodified raw text is a JSON document.
// It can disagree with ExtractEntities, which looks inside markers.
func IsValidJSON(raw string) bool {
	_, err := decode(raw)
	return err == nil
}

// EntityCount reports how many entities a decoded value holds.
func EntityCount(v any) int {
	switch t := v.(type) {
	case nil:
		return 0
	case []any:
		return len(t)
	case map[string]any:
		return len(t)
	case string:
		return utf8.RuneCountInString(t)
	default:
		return 1
	}
}

var errTrailingData = errors.New("extract: trailing data after JSON value")

// decode parses exactly one JSON value. Numbers stay json.Number so that
// re-encoding writes them back verbatim.
func decode(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return v, nil
}

// Decode parses a JSON document the same way extraction does. It is used
// to read entity artifacts back.
func Decode(data []byte) (any, error) {
	return decode(string(data))
}
