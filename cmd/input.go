package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/assets"
)

// draftFields lists the fields that can be set on a draft, in display order.
var draftFields = []string{"name", "type", "value", "currency", "location", "notes"}

// setField sets the draft field key to value.
func setField(d *assets.Draft, key, value string) error {
	switch strings.ToLower(key) {
	case "name":
		d.Name = value
	case "type":
		d.Type = value
	case "value":
		d.Value = value
	case "currency":
		d.Currency = value
	case "location":
		d.Location = value
	case "notes":
		d.Notes = value
	default:
		return &assets.ValidationError{Field: key, Reason: "unknown field, want one of " + strings.Join(draftFields, ", ")}
	}
	return nil
}

// draftFrom applies "field=value" arguments to d.
func draftFrom(d assets.Draft, args []string) (assets.Draft, error) {
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return d, &assets.ValidationError{Field: arg, Reason: "expected field=value"}
		}
		if err := setField(&d, key, value); err != nil {
			return d, err
		}
	}
	return d, nil
}

// resolveID finds the asset designated by ref: either its 1-based row number
// or a unique prefix of its ID. ULIDs start with '0', so row numbers never
// collide with prefixes.
func resolveID(c *assets.Collection, ref string) (assets.ID, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", &assets.ValidationError{Field: "id", Reason: "required"}
	}
	list := c.Assets()
	if !strings.HasPrefix(ref, "0") {
		if n, err := strconv.Atoi(ref); err == nil {
			if n < 1 || n > len(list) {
				return "", fmt.Errorf("row %d: %w", n, assets.ErrNotFound)
			}
			return list[n-1].ID, nil
		}
	}

	prefix := strings.ToUpper(ref)
	var found []assets.ID
	for _, a := range list {
		if strings.HasPrefix(a.ID.String(), prefix) {
			found = append(found, a.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("asset %s: %w", ref, assets.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return "", &assets.ValidationError{Field: "id", Reason: fmt.Sprintf("%q matches %d assets", ref, len(found))}
	}
}

// splitLine splits a shell line into words. Double quotes group words, and a
// backslash escapes the next character.
func splitLine(line string) ([]string, error) {
	var (
		words   []string
		word    strings.Builder
		inWord  bool
		quoted  bool
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			word.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped, inWord = true, true
		case r == '"':
			quoted, inWord = !quoted, true
		case !quoted && (r == ' ' || r == '\t'):
			if inWord {
				words = append(words, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteRune(r)
			inWord = true
		}
	}
	if quoted || escaped {
		return nil, fmt.Errorf("unterminated quote or escape in %q", line)
	}
	if inWord {
		words = append(words, word.String())
	}
	return words, nil
}
