// Package participant describes the person taking part in a session.
//
// Participant details are collected by the CLI before a session starts and
// are consumed read-only by the engine: the subject id and task variant
// select the output location and the stimulus subdirectory.
package participant

import (
	"fmt"
	"regexp"
	"strings"
)

// Gender values accepted for a participant.
const (
	Male   = "male"
	Female = "female"
	Other  = "other"
)

// Task variants. Each variant selects a subdirectory under the stimulus root.
const (
	VariantLong  = "long"
	VariantShort = "short"
)

// Genders lists the accepted gender values in display order.
var Genders = []string{Male, Female, Other}

// Variants lists the accepted task variants in display order.
var Variants = []string{VariantLong, VariantShort}

// subjectIDRe restricts subject ids to characters that are safe as a single
// directory name on every platform the lab uses.
var subjectIDRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Info holds the participant metadata for one session.
type Info struct {
	SubjectID string `json:"subject_id"`
	Age       string `json:"age"`
	Gender    string `json:"gender"`
	Variant   string `json:"variant"`
	Debug     bool   `json:"debug"`
}

// Validate checks every field of info and returns the first problem found.
func (info Info) Validate() error {
	if strings.TrimSpace(info.SubjectID) == "" {
		return fmt.Errorf("subject id is required")
	}
	if !subjectIDRe.MatchString(info.SubjectID) || strings.Contains(info.SubjectID, "..") {
		return fmt.Errorf("subject id %q must be a plain name (letters, digits, '_', '-', '.')", info.SubjectID)
	}
	if err := ValidateGender(info.Gender); err != nil {
		return err
	}
	return ValidateVariant(info.Variant)
}

// ValidateGender reports whether g is one of Genders.
func ValidateGender(g string) error {
	if !contains(Genders, g) {
		return fmt.Errorf("gender must be one of %s, got: %q", strings.Join(Genders, ", "), g)
	}
	return nil
}

// ValidateVariant reports whether v is one of Variants.
func ValidateVariant(v string) error {
	if !contains(Variants, v) {
		return fmt.Errorf("variant must be one of %s, got: %q", strings.Join(Variants, ", "), v)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
