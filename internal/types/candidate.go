// Package types provides type definitions for the candidate documents stored in cv_profiles.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Placeholder is rendered wherever a document field is missing.
const Placeholder = "N/A"

// CandidateData is the parsed form of the cv_profiles.data document.
type CandidateData struct {
	Candidate  Profile      `json:"candidate"`
	Skills     []Skill      `json:"skills"`
	Education  []Education  `json:"education"`
	Experience []Experience `json:"experience"`
}

// Profile holds the candidate sub-object of the document
type Profile struct {
	FullName          Text `json:"fullName"`
	PrimaryProfession Text `json:"primaryProfession"`
	Location          Text `json:"location"`
	Seniority         Text `json:"seniority"`
	Department        Text `json:"department"`
}

// Skill is a single entry of the skills list
type Skill struct {
	Name Text `json:"name"`
}

// UnmarshalJSON accepts both {"name": "..."} objects and bare scalars.
func (s *Skill) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return s.Name.UnmarshalJSON(b)
	}
	type skill Skill
	var v skill
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = Skill(v)
	return nil
}

// Education is a single entry of the education list
type Education struct {
	DegreeType     Text `json:"degreeType"`
	FieldOfStudy   Text `json:"fieldOfStudy"`
	Institution    Text `json:"institution"`
	GraduationYear Text `json:"graduationYear"`
}

// Experience is a single entry of the experience list
type Experience struct {
	Title       Text `json:"title"`
	CompanyName Text `json:"companyName"`
	StartDate   Text `json:"startDate"`
	EndDate     Text `json:"endDate"`
	Description Text `json:"description"`
}

// Text is a scalar document field. Decoding never fails: null, objects and
// arrays leave it unset, numbers and booleans keep their JSON text.
type Text struct {
	Value string
	Set   bool
}

// NewText returns a set Text holding s.
func NewText(s string) Text {
	return Text{Value: s, Set: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*t = Text{}
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case 'n', '{', '[':
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		*t = NewText(s)
	default:
		*t = NewText(string(b))
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Set {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// Present reports whether the field holds a non-blank value.
func (t Text) Present() bool {
	return t.Set && strings.TrimSpace(t.Value) != ""
}

// Or returns the value, or fallback when the field is missing or blank.
func (t Text) Or(fallback string) string {
	if !t.Present() {
		return fallback
	}
	return t.Value
}

// OrNA returns the value or the N/A placeholder.
func (t Text) OrNA() string {
	return t.Or(Placeholder)
}

// ParseCandidateData decodes a raw data document section by section.
// Sections that are missing or have the wrong shape are left empty, so the
// result is always usable for rendering.
func ParseCandidateData(raw []byte) CandidateData {
	var data CandidateData

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sections); err != nil {
		return data
	}

	if section, ok := sections["candidate"]; ok {
		var p Profile
		if err := json.Unmarshal(section, &p); err == nil {
			data.Candidate = p
		}
	}
	data.Skills = decodeList[Skill](sections["skills"])
	data.Education = decodeList[Education](sections["education"])
	data.Experience = decodeList[Experience](sections["experience"])

	return data
}

// decodeList decodes a JSON array item by item, skipping nulls and entries
// that do not decode.
func decodeList[T any](raw json.RawMessage) []T {
	if len(raw) == 0 {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			continue
		}
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// SkillNames returns the non-blank skill names in document order.
func (d CandidateData) SkillNames() []string {
	names := make([]string, 0, len(d.Skills))
	for _, s := range d.Skills {
		if s.Name.Present() {
			names = append(names, s.Name.Value)
		}
	}
	return names
}

// FirstEducation returns the first education entry, or an empty one.
func (d CandidateData) FirstEducation() Education {
	if len(d.Education) == 0 {
		return Education{}
	}
	return d.Education[0]
}
