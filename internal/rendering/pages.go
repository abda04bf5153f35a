package rendering

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/jonathan/cvfeed/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"join": strings.Join,
}).ParseFS(templateFS, "templates/*.html"))

// Page template names
const (
	candidateTemplate  = "candidate.html"
	candidatesTemplate = "candidates.html"
	statusTemplate     = "status.html"
)

// CandidatePage is the view model of /candidate/{id}
type CandidatePage struct {
	ID             int64
	FullName       string
	Profession     string
	Location       string
	Seniority      string
	Department     string
	Skills         []string
	Education      []EducationView
	Experience     []ExperienceView
	Source         string
	SourceFileName string
	CreatedAt      string
	PrevURL        string
	NextURL        string
}

// EducationView is one education line of a candidate page
type EducationView struct {
	DegreeType     string
	FieldOfStudy   string
	Institution    string
	GraduationYear string
}

// ExperienceView is one experience entry of a candidate page
type ExperienceView struct {
	Title       string
	CompanyName string
	Period      string
	Description string
}

// CandidatesPage is the view model of /candidates
type CandidatesPage struct {
	Jobs       []string
	Candidates []CandidateRow
}

// CandidateRow is one row of the listing page
type CandidateRow struct {
	ID         int64
	URL        string
	FullName   string
	Profession string
	Location   string
	Seniority  string
	Department string
	Skills     []string
}

// RecordMeta carries the row columns shown next to the document.
type RecordMeta struct {
	Source         *string
	SourceFileName *string
	CreatedAt      *time.Time
}

// NewCandidatePage builds the view model of a candidate page.
func NewCandidatePage(id int64, data types.CandidateData, meta RecordMeta, prev, next *int64) CandidatePage {
	p := data.Candidate
	page := CandidatePage{
		ID:             id,
		FullName:       p.FullName.OrNA(),
		Profession:     p.PrimaryProfession.OrNA(),
		Location:       p.Location.OrNA(),
		Seniority:      p.Seniority.OrNA(),
		Department:     p.Department.OrNA(),
		Skills:         data.SkillNames(),
		Source:         orNA(meta.Source),
		SourceFileName: orNA(meta.SourceFileName),
		CreatedAt:      types.Placeholder,
	}
	if meta.CreatedAt != nil {
		page.CreatedAt = meta.CreatedAt.UTC().Format(time.RFC3339)
	}

	for _, e := range data.Education {
		page.Education = append(page.Education, EducationView{
			DegreeType:     e.DegreeType.OrNA(),
			FieldOfStudy:   e.FieldOfStudy.OrNA(),
			Institution:    e.Institution.OrNA(),
			GraduationYear: e.GraduationYear.OrNA(),
		})
	}
	for _, e := range data.Experience {
		page.Experience = append(page.Experience, ExperienceView{
			Title:       e.Title.OrNA(),
			CompanyName: e.CompanyName.OrNA(),
			Period:      fmt.Sprintf("%s – %s", e.StartDate.OrNA(), e.EndDate.Or(openEndDate)),
			Description: e.Description.OrNA(),
		})
	}

	if prev != nil {
		page.PrevURL = CandidatePath(*prev)
	}
	if next != nil {
		page.NextURL = CandidatePath(*next)
	}
	return page
}

// NewCandidatesPage builds the listing view model from projections.
func NewCandidatesPage(jobs []string, entries []types.ProjectionEntry) CandidatesPage {
	page := CandidatesPage{Jobs: jobs}
	for _, e := range entries {
		c := e.Projection.Candidate
		skills := make([]string, 0, len(e.Projection.Skills))
		for _, s := range e.Projection.Skills {
			skills = append(skills, s.Name)
		}
		page.Candidates = append(page.Candidates, CandidateRow{
			ID:         e.ID,
			URL:        CandidatePath(e.ID),
			FullName:   c.FullName,
			Profession: c.PrimaryProfession,
			Location:   c.Location,
			Seniority:  c.Seniority,
			Department: c.Department,
			Skills:     skills,
		})
	}
	return page
}

// CandidatePath is the server path of a candidate page.
func CandidatePath(id int64) string {
	return fmt.Sprintf("/candidate/%d", id)
}

// RenderCandidatePage writes the candidate page. Nothing is written when the
// template fails.
func RenderCandidatePage(w io.Writer, page CandidatePage) error {
	return render(w, candidateTemplate, page)
}

// RenderCandidatesPage writes the listing page.
func RenderCandidatesPage(w io.Writer, page CandidatesPage) error {
	return render(w, candidatesTemplate, page)
}

// RenderStatusPage writes a minimal page for not-found and error responses.
func RenderStatusPage(w io.Writer, title, message string) error {
	return render(w, statusTemplate, struct {
		Title   string
		Message string
	}{Title: title, Message: message})
}

func render(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return &TemplateError{Name: name, Cause: err}
	}
	if _, err := buf.WriteTo(w); err != nil {
		return &RenderError{Message: "failed to write " + name, Cause: err}
	}
	return nil
}

func orNA(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return types.Placeholder
	}
	return *s
}
