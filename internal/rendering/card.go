// Package rendering turns candidate documents into chat cards and HTML pages.
package rendering

import (
	"fmt"
	"strings"

	"github.com/jonathan/cvfeed/internal/types"
)

const (
	// MaxCardSkills is the number of skills listed on a card before the ellipsis line.
	MaxCardSkills = 10
	// DefaultLinkBase is the origin used for card profile links.
	DefaultLinkBase = "http://localhost:5000"

	skillEllipsis = "• ..."
	openEndDate   = "Present"
)

// FormatCard renders one candidate as a Telegram Markdown card. Missing fields
// render as N/A so the card always has the same sections.
func FormatCard(id int64, data types.CandidateData, linkBase string) string {
	p := data.Candidate
	edu := data.FirstEducation()

	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 *%s* – %s\n", p.FullName.OrNA(), p.PrimaryProfession.OrNA())
	fmt.Fprintf(&sb, "📍 %s | *%s*\n", p.Location.OrNA(), p.Seniority.OrNA())
	sb.WriteString("\n*Skills:*\n")
	sb.WriteString(formatSkills(data.SkillNames()))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "🎓 *%s* in *%s*\n", edu.DegreeType.OrNA(), edu.FieldOfStudy.OrNA())
	sb.WriteString("\n💼 *Experience:*\n")
	sb.WriteString(formatExperience(data.Experience))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "🔗 [More Info](%s)\n", ProfileLink(linkBase, id))

	return sb.String()
}

// ProfileLink builds the candidate page URL used on cards.
func ProfileLink(linkBase string, id int64) string {
	if linkBase == "" {
		linkBase = DefaultLinkBase
	}
	return EscapeLinkURL(fmt.Sprintf("%s/candidate/%d", strings.TrimRight(linkBase, "/"), id))
}

func formatSkills(names []string) string {
	if len(names) == 0 {
		return types.Placeholder
	}

	shown := names[:min(len(names), MaxCardSkills)]
	lines := make([]string, 0, len(shown)+1)
	for _, name := range shown {
		lines = append(lines, "• "+name)
	}
	if len(names) > MaxCardSkills {
		lines = append(lines, skillEllipsis)
	}
	return strings.Join(lines, "\n")
}

func formatExperience(entries []types.Experience) string {
	if len(entries) == 0 {
		return types.Placeholder
	}

	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, fmt.Sprintf("• *%s* @ *%s* (%s–%s)\n  %s",
			e.Title.OrNA(),
			e.CompanyName.OrNA(),
			e.StartDate.OrNA(),
			e.EndDate.Or(openEndDate),
			e.Description.OrNA(),
		))
	}
	return strings.Join(blocks, "\n\n")
}
