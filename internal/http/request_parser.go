package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"finboard/internal/core"
)

const (
	// maxBodyBytes bounds JSON request bodies.
	maxBodyBytes = 1 << 20
	// maxParamLength bounds free-text label and year parameters.
	maxParamLength = 64
)

var errParamTooLong = errors.New("parameter too long")

// ParseSelection reads the selection from query parameters. A period
// parameter in PeriodKey.String form wins over kind, label and year. A
// missing kind means Monthly; a missing label or year takes the kind's
// first option and DefaultYear. Label and year are not checked against the
// option sets: unknown values resolve to the default period.
func ParseSelection(query url.Values) (core.Selection, error) {
	if raw := sanitizeInput(query.Get("period")); raw != "" {
		if len(raw) > 3*maxParamLength {
			return core.Selection{}, fmt.Errorf("period: %w", errParamTooLong)
		}
		key, err := core.ParsePeriodKey(raw)
		if err != nil {
			return core.Selection{}, err
		}
		year := key.Year
		if year == "" {
			year = core.DefaultYear
		}
		return core.Selection{Kind: key.Kind, Label: key.Label, Year: year}, nil
	}

	sel := core.DefaultSelection()
	if rawKind := sanitizeInput(query.Get("kind")); rawKind != "" {
		kind, err := core.ParsePeriodKind(rawKind)
		if err != nil {
			return core.Selection{}, err
		}
		sel, _ = sel.WithKind(kind)
	}

	if v := sanitizeInput(query.Get("label")); v != "" {
		if len(v) > maxParamLength {
			return core.Selection{}, fmt.Errorf("label: %w", errParamTooLong)
		}
		sel.Label = v
	}
	if v := sanitizeInput(query.Get("year")); v != "" {
		if len(v) > maxParamLength {
			return core.Selection{}, fmt.Errorf("year: %w", errParamTooLong)
		}
		sel.Year = v
	}
	return sel, nil
}

// ParseJSONBody decodes a bounded JSON body into dst, rejecting unknown
// fields and trailing data.
func ParseJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("invalid JSON body: unexpected trailing data")
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}
