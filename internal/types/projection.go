package types

import (
	"encoding/json"
	"fmt"
)

// Projection is the display-safe view of a candidate used by the listing API.
type Projection struct {
	Candidate ProjectedProfile `json:"candidate"`
	Skills    []ProjectedSkill `json:"skills"`
}

// ProjectedProfile carries the candidate fields with placeholders filled in
type ProjectedProfile struct {
	FullName          string `json:"fullName"`
	PrimaryProfession string `json:"primaryProfession"`
	Location          string `json:"location"`
	Seniority         string `json:"seniority"`
	Department        string `json:"department"`
}

// ProjectedSkill is a skill entry of a projection
type ProjectedSkill struct {
	Name string `json:"name"`
}

// Project reduces the document to its projection.
func (d CandidateData) Project() Projection {
	p := d.Candidate
	skills := make([]ProjectedSkill, 0, len(d.Skills))
	for _, name := range d.SkillNames() {
		skills = append(skills, ProjectedSkill{Name: name})
	}

	return Projection{
		Candidate: ProjectedProfile{
			FullName:          p.FullName.OrNA(),
			PrimaryProfession: p.PrimaryProfession.OrNA(),
			Location:          p.Location.OrNA(),
			Seniority:         p.Seniority.OrNA(),
			Department:        p.Department.OrNA(),
		},
		Skills: skills,
	}
}

// ProjectionEntry pairs a record id with its projection. It encodes as a
// two-element JSON array: [id, projection].
type ProjectionEntry struct {
	ID         int64
	Projection Projection
}

// MarshalJSON implements json.Marshaler.
func (e ProjectionEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.ID, e.Projection})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *ProjectionEntry) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("projection entry: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.ID); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &e.Projection)
}
