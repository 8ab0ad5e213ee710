package tools

import (
	"fmt"
	"strings"

	"github.com/sandiips/schoolfinder/internal/school"
)

// toWeight maps an importance level to its ranking weight.
func toWeight(importance string) float64 {
	switch importance {
	case "High":
		return 0.4
	case "Medium":
		return 0.2
	default:
		return 0.0
	}
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}

// rankingSummary opens the ranked-results payload with a conversational
// overview of what was found.
func rankingSummary(schools []school.RankedSchool, p RankSchoolsParams) string {
	if len(schools) == 0 {
		return "I couldn't find any schools that match your criteria. Let me help you adjust your preferences to find suitable options."
	}

	hasPreferences := len(p.SportsSelected) > 0 || len(p.CCAsSelected) > 0 || len(p.CultureSelected) > 0

	affiliated := 0
	ip := 0
	for _, s := range schools {
		if s.IsAffiliated {
			affiliated++
		}
		if s.Track == "IP" {
			ip++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d excellent school options for your AL score of %d. ", len(schools), p.ALScore)

	if affiliated > 0 {
		fmt.Fprintf(&b, "%d %s affiliated with your primary school, giving you priority admission. ",
			affiliated, plural(affiliated, "school is", "schools are"))
	}
	if ip > 0 {
		fmt.Fprintf(&b, "%d %s the Integrated Program (6-year pathway without O-Levels). ",
			ip, plural(ip, "offers", "offer"))
	}

	if hasPreferences {
		matching := 0
		for _, s := range schools {
			if len(s.SportsMatches) > 0 || len(s.CCAsMatches) > 0 || len(s.CultureMatches) > 0 {
				matching++
			}
		}
		if matching > 0 {
			fmt.Fprintf(&b, "%d %s your specific interests in ",
				matching, plural(matching, "school matches", "schools match"))
			var interests []string
			if len(p.SportsSelected) > 0 {
				interests = append(interests, fmt.Sprintf("sports (%s)", strings.Join(p.SportsSelected, ", ")))
			}
			if len(p.CCAsSelected) > 0 {
				interests = append(interests, fmt.Sprintf("CCAs (%s)", strings.Join(p.CCAsSelected, ", ")))
			}
			if len(p.CultureSelected) > 0 {
				interests = append(interests, fmt.Sprintf("culture (%s)", strings.Join(p.CultureSelected, ", ")))
			}
			b.WriteString(strings.Join(interests, " and ") + ". ")
		}
	}

	b.WriteString("These recommendations are ranked by admission eligibility, affiliation benefits, and your preferences.")
	return b.String()
}

// formatRankedSchools renders the full ranked-results text handed to the
// model: summary first, then a numbered block per school, then next steps.
func formatRankedSchools(schools []school.RankedSchool, p RankSchoolsParams) string {
	var parts []string

	parts = append(parts, rankingSummary(schools, p), "")

	for i, s := range schools {
		header := fmt.Sprintf("**%d. %s**", i+1, s.Name)
		if s.IsAffiliated {
			header += " 🎓 *Affiliated*"
		}
		parts = append(parts, header)
		parts = append(parts, fmt.Sprintf("📍 %s (%.1f km away)", s.Address, s.DistanceKM))

		if s.Track == "IP" {
			parts = append(parts, "🎓 Integrated Program (IP) - 6-year pathway")
		} else if s.PostingGroup != nil {
			parts = append(parts, fmt.Sprintf("🎓 Posting Group %d - O-Level track", *s.PostingGroup))
		}

		if s.COPMaxScore > 0 {
			if s.IsAffiliated {
				parts = append(parts, fmt.Sprintf("📊 2024 Cut-off (Affiliated): AL %d ✨", s.COPMaxScore))
			} else {
				parts = append(parts, fmt.Sprintf("📊 2024 Cut-off: AL %d", s.COPMaxScore))
			}
		}

		if len(s.SportsMatches) > 0 {
			parts = append(parts, fmt.Sprintf("⚽ **Strong in**: %s", strings.Join(s.SportsMatches, ", ")))
		}
		if len(s.CCAsMatches) > 0 {
			parts = append(parts, fmt.Sprintf("🎯 **CCAs**: %s", strings.Join(s.CCAsMatches, ", ")))
		}
		if len(s.CultureMatches) > 0 {
			parts = append(parts, fmt.Sprintf("💡 **Culture**: %s", strings.Join(s.CultureMatches, ", ")))
		}
		if s.MatchSummary != "" {
			parts = append(parts, "✨ "+s.MatchSummary)
		}
		if s.RecommendationReason != "" {
			parts = append(parts, "💬 "+s.RecommendationReason)
		}
		parts = append(parts, "")
	}

	parts = append(parts,
		"💡 **Next Steps**:",
		"- Want to know more about a specific school? Just ask!",
		"- Want to see schools with different criteria? Let me know!")

	return strings.Join(parts, "\n")
}

// formatSimpleRankedSchools renders the distance-first results.
func formatSimpleRankedSchools(schools []school.SimpleRankedSchool, p RankSchoolsSimpleParams) string {
	var parts []string

	parts = append(parts, fmt.Sprintf(
		"Based on your profile (AL %d, postal code %s, primary school: %s), I found **%d school%s** you can likely get into:",
		p.ALScore, p.PostalCode, p.PrimarySchool, len(schools), plural(len(schools), "", "s")))
	parts = append(parts, "")

	hasAffiliated := false
	for i, s := range schools {
		header := fmt.Sprintf("**%d. %s**", i+1, s.Name)
		if s.IsAffiliated {
			header += " 🎓 *Affiliated*"
			hasAffiliated = true
		}
		parts = append(parts, header)
		parts = append(parts, fmt.Sprintf("📍 %s (%.1f km away)", s.Address, s.DistanceKM))

		if s.Track == "IP" {
			parts = append(parts, "🎓 Integrated Program (IP) - 6-year pathway")
		} else if s.PostingGroup != nil {
			parts = append(parts, fmt.Sprintf("🎓 Posting Group %d - O-Level track", *s.PostingGroup))
		}
		if s.Gender != "" && s.Gender != "Co-ed" {
			parts = append(parts, fmt.Sprintf("👥 %s school", s.Gender))
		}

		if s.COPMaxScore > 0 {
			copRange := fmt.Sprintf("AL %d", s.COPMaxScore)
			if s.COPMinScore > 0 {
				copRange = fmt.Sprintf("AL %d-%d", s.COPMinScore, s.COPMaxScore)
			}
			if s.IsAffiliated {
				parts = append(parts, fmt.Sprintf("📊 2024 Cut-off (Affiliated): %s ✨", copRange))
			} else {
				parts = append(parts, fmt.Sprintf("📊 2024 Cut-off: %s", copRange))
			}
		}
		parts = append(parts, "")
	}

	if hasAffiliated {
		parts = append(parts,
			"✨ **Affiliation Bonus**: Schools marked with 🎓 *Affiliated* give you priority admission with lower cut-off scores!",
			"")
	}

	parts = append(parts,
		"💡 **Next Steps**:",
		"- Want to explore schools strong in specific sports or CCAs? Just ask!",
		"- Want more personalized recommendations with sports/CCA preferences? Let me know!")

	return strings.Join(parts, "\n")
}

// sportSummary leads the sport-search payload.
func sportSummary(schools []school.SportSchool, p SearchSchoolsBySportParams) string {
	if len(schools) == 0 {
		return fmt.Sprintf("I couldn't find schools with %s programs matching your criteria. This sport may not be widely offered, or you could try adjusting your filters.", p.SportName)
	}

	veryStrong, strong, ip := 0, 0, 0
	for _, s := range schools {
		switch s.SportStrengthRating {
		case "Very Strong":
			veryStrong++
		case "Strong":
			strong++
		}
		if s.Track == "IP" {
			ip++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d schools with %s programs. ", len(schools), p.SportName)
	if veryStrong > 0 {
		fmt.Fprintf(&b, "%d %s exceptional %s programs with top-tier national performance. ",
			veryStrong, plural(veryStrong, "school has", "schools have"), p.SportName)
	}
	if strong > 0 {
		fmt.Fprintf(&b, "%d %s strong competitive %s programs. ",
			strong, plural(strong, "school has", "schools have"), p.SportName)
	}
	if ip > 0 {
		fmt.Fprintf(&b, "%d %s the Integrated Program. ", ip, plural(ip, "offers", "offer"))
	}
	fmt.Fprintf(&b, "These schools are ranked by %s performance, with the strongest programs shown first.", p.SportName)
	return b.String()
}

// ccaSummary leads the CCA-search payload.
func ccaSummary(schools []school.CCASchool, p SearchSchoolsByCCAParams) string {
	if len(schools) == 0 {
		return fmt.Sprintf("I couldn't find schools with %s programs matching your criteria. This CCA may not be widely offered, or you could try adjusting your filters.", p.CCAName)
	}

	veryStrong, strong, ip := 0, 0, 0
	for _, s := range schools {
		switch s.CCAStrengthRating {
		case "Very Strong":
			veryStrong++
		case "Strong":
			strong++
		}
		if s.Track == "IP" {
			ip++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d schools with %s programs. ", len(schools), p.CCAName)
	if veryStrong > 0 {
		fmt.Fprintf(&b, "%d %s exceptional %s programs with outstanding achievements. ",
			veryStrong, plural(veryStrong, "school has", "schools have"), p.CCAName)
	}
	if strong > 0 {
		fmt.Fprintf(&b, "%d %s strong competitive %s programs. ",
			strong, plural(strong, "school has", "schools have"), p.CCAName)
	}
	if ip > 0 {
		fmt.Fprintf(&b, "%d %s the Integrated Program. ", ip, plural(ip, "offers", "offer"))
	}
	fmt.Fprintf(&b, "These schools are ranked by %s performance, with the strongest programs shown first.", p.CCAName)
	return b.String()
}

// academicSummary leads the academic-search payload.
func academicSummary(schools []school.AcademicSchool, p SearchSchoolsByAcademicParams) string {
	if len(schools) == 0 {
		return "I couldn't find schools matching your academic criteria. Try adjusting your filters or ask me for general academic rankings."
	}

	ip, topCOP := 0, 0
	for _, s := range schools {
		if s.Track == "IP" {
			ip++
		}
		if s.COPMaxScore > 0 && s.COPMaxScore <= 10 {
			topCOP++
		}
	}

	var b strings.Builder
	focus := "academically strong"
	if p.AcademicFocus != "Overall" {
		focus = p.AcademicFocus
	}
	fmt.Fprintf(&b, "I found %d %s schools. ", len(schools), focus)
	if ip > 0 {
		fmt.Fprintf(&b, "%d %s the prestigious Integrated Program (6-year pathway). ", ip, plural(ip, "offers", "offer"))
	}
	if topCOP > 0 {
		fmt.Fprintf(&b, "%d %s highly competitive cut-off scores (COP <= 10). ", topCOP, plural(topCOP, "has", "have"))
	}
	if p.AcademicFocus == "Overall" {
		b.WriteString("These schools are ranked by overall academic strength, considering track, posting group, and historical performance.")
	} else {
		fmt.Fprintf(&b, "These schools are ranked by %s achievement and competitive track record.", p.AcademicFocus)
	}
	return b.String()
}

// schoolProfileSummary builds the comprehensive one-school narrative.
func schoolProfileSummary(s *school.SchoolDetails) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Here's comprehensive information about **%s**:", s.Name), "")

	competitiveness := "accessible"
	if s.COPMaxScore <= 8 {
		competitiveness = "highly competitive"
	} else if s.COPMaxScore <= 15 {
		competitiveness = "competitive"
	}
	if s.Track == "IP" {
		parts = append(parts, fmt.Sprintf(
			"**Academic:** Integrated Program (IP) school with 6-year pathway. 2024 COP: %d (%s).",
			s.COPMaxScore, competitiveness))
	} else {
		pg := 0
		if s.PostingGroup != nil {
			pg = *s.PostingGroup
		}
		parts = append(parts, fmt.Sprintf(
			"**Academic:** Posting Group %d school. 2024 COP: %d (%s).",
			pg, s.COPMaxScore, competitiveness))
	}
	parts = append(parts, "")

	if len(s.AffiliatedPrimarySchools) > 0 {
		shown := s.AffiliatedPrimarySchools
		suffix := ""
		if len(shown) > 3 {
			shown = shown[:3]
			suffix = " and others"
		}
		parts = append(parts, fmt.Sprintf("**Affiliations:** Affiliated with %s%s.", strings.Join(shown, ", "), suffix), "")
	}

	if len(s.TopSports) > 0 {
		parts = append(parts, "**Sports Performance:**",
			fmt.Sprintf("Strongest sports: %s.", strings.Join(s.TopSports, ", ")), "")
	}
	if len(s.CCAAchievements) > 0 {
		parts = append(parts, "**Co-Curricular Achievements:**",
			strings.Join(s.CCAAchievements, "; "), "")
	}
	if s.CultureSummary != "" {
		parts = append(parts, "**School Culture:**", s.CultureSummary)
	}

	return strings.Join(parts, "\n")
}

// formatAffiliatedSchools renders the affiliation lookup as the final text
// payload, including both cut-off bands and the AL-point advantage.
func formatAffiliatedSchools(schools []school.AffiliatedSchool, primarySchool string) string {
	if len(schools) == 0 {
		return fmt.Sprintf(`I couldn't find any secondary schools affiliated with "%s". This could mean:

1. The primary school name might be slightly different (try the full official name)
2. The school might not have affiliated secondary schools
3. The primary school might be spelled differently

Could you double-check the primary school name? For example, "Rosyth School" or "Tao Nan School".`, primarySchool)
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("I found **%d secondary school%s** affiliated with **%s**:",
		len(schools), plural(len(schools), "", "s"), primarySchool))
	parts = append(parts, "")

	for i, s := range schools {
		parts = append(parts, fmt.Sprintf("**%d. %s**", i+1, s.Name))
		parts = append(parts, "📍 "+s.Address)

		if s.Track == "IP" {
			parts = append(parts, "🎓 Integrated Program (IP) - 6-year pathway")
		} else {
			pg := 0
			if s.PostingGroup != nil {
				pg = *s.PostingGroup
			}
			parts = append(parts, fmt.Sprintf("🎓 Posting Group %d - O-Level track", pg))
		}
		if s.Gender != "" && s.Gender != "Co-ed" {
			parts = append(parts, fmt.Sprintf("👥 %s school", s.Gender))
		}

		switch {
		case s.COPAffiliatedMax != nil && s.COPNonAffiliatedMax != nil:
			parts = append(parts, "📊 **2024 Cut-off Points:**")
			parts = append(parts, fmt.Sprintf("   • Affiliated students (%s): AL %d-%d",
				primarySchool, deref(s.COPAffiliatedMin), *s.COPAffiliatedMax))
			parts = append(parts, fmt.Sprintf("   • Non-affiliated students: AL %d-%d",
				deref(s.COPNonAffiliatedMin), *s.COPNonAffiliatedMax))
			parts = append(parts, fmt.Sprintf("   • **Affiliation advantage: %d AL point%s** 🎉",
				s.AffiliationBonus, plural(s.AffiliationBonus, "", "s")))
		case s.COPNonAffiliatedMax != nil:
			parts = append(parts, fmt.Sprintf("📊 2024 Cut-off: AL %d-%d",
				deref(s.COPNonAffiliatedMin), *s.COPNonAffiliatedMax))
			parts = append(parts, "   • Affiliated students typically get 2 AL points advantage")
		}
		parts = append(parts, "")
	}

	parts = append(parts, "💡 **About School Affiliation:**")
	parts = append(parts, fmt.Sprintf(
		"Students from %s get priority admission to these schools with lower cut-off scores (typically 2 AL points advantage). This means it's easier to get into affiliated schools!",
		primarySchool))

	if len(schools) >= 2 {
		parts = append(parts, "",
			"You can choose up to 3 affiliated schools during S1 posting to maximize your affiliation benefits.")
	}

	return strings.Join(parts, "\n")
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
