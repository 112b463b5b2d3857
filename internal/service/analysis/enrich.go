// internal/service/analysis/enrich.go

package analysis

import (
	"sort"
	"strings"

	"newsradar/internal/domain/article"
	"newsradar/internal/domain/trend"
)

const maxTechStack = 10

// DetectTechStack scans article text and keywords against the tech
// vocabulary. Text matches require word boundaries so "go" does not fire on
// "google". Returns at most ten entries, sorted for stable output.
func DetectTechStack(text string, keywords []article.Keyword) []string {
	found := map[string]bool{}
	padded := " " + strings.ToLower(text) + " "

	for _, tech := range techVocabulary {
		if strings.Contains(padded, " "+tech+" ") {
			found[tech] = true
		}
	}
	for _, kw := range keywords {
		lower := strings.ToLower(kw.Keyword)
		for _, tech := range techVocabulary {
			if lower == tech {
				found[tech] = true
			}
		}
	}

	stack := make([]string, 0, len(found))
	for tech := range found {
		stack = append(stack, tech)
	}
	sort.Strings(stack)
	if len(stack) > maxTechStack {
		stack = stack[:maxTechStack]
	}
	return stack
}

// BuildGeoImpact combines classifier regions, country mentions in the text
// and the trend provider's regional interest into one geo impact record.
// Always returns a non-nil record; "US" is the default region.
func BuildGeoImpact(cls *article.Classification, text, title string, trends *trend.Result) *article.GeoImpact {
	var regions []string
	addRegion := func(code string) {
		for _, existing := range regions {
			if existing == code {
				return
			}
		}
		regions = append(regions, code)
	}

	if cls != nil {
		for _, code := range cls.Metadata.AffectedRegions {
			code = strings.ToUpper(strings.TrimSpace(code))
			if _, ok := countryNames[code]; ok {
				addRegion(code)
			}
		}
	}

	// Country-name mentions only matter when the classifier gave nothing.
	if len(regions) == 0 {
		haystack := strings.ToLower(text + " " + title)
		codes := make([]string, 0, len(countryNames))
		for code := range countryNames {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			if strings.Contains(haystack, strings.ToLower(countryNames[code])) {
				addRegion(code)
			}
		}
	}

	if trends != nil {
		if sig, ok := trends.Sources[trend.ProviderGoogle]; ok {
			for _, region := range sig.TrendingRegions {
				if _, known := countryNames[region.Country]; known {
					addRegion(region.Country)
				}
			}
		}
	}

	if len(regions) == 0 {
		regions = []string{"US"}
	}

	scope := "Regional"
	if len(regions) > 2 {
		scope = "Global"
	}
	return &article.GeoImpact{
		Regions:       regions,
		PrimaryRegion: regions[0],
		Scope:         scope,
	}
}

// BuildActions derives recommended follow-ups from the classification and
// the keyword set. The rule table is intentionally small.
func BuildActions(cls *article.Classification, keywords []article.Keyword) []article.Action {
	var actions []article.Action

	if cls != nil && cls.Metadata.Actionable {
		actions = append(actions, article.Action{
			Type:        "patch",
			Title:       "Check for Updates",
			Description: "Verify if your systems are affected and apply latest patches.",
			Priority:    "High",
		})
	}

	var joined strings.Builder
	for _, kw := range keywords {
		joined.WriteString(strings.ToLower(kw.Keyword))
		joined.WriteByte(' ')
	}
	kwText := joined.String()

	if strings.Contains(kwText, "phishing") {
		actions = append(actions, article.Action{
			Type:        "alert",
			Title:       "Warn Employees",
			Description: "Send alert about new phishing campaign.",
			Priority:    "Medium",
		})
	}
	if strings.Contains(kwText, "ransomware") {
		actions = append(actions, article.Action{
			Type:        "backup",
			Title:       "Verify Backups",
			Description: "Ensure offline backups are up to date.",
			Priority:    "Critical",
		})
	}
	return actions
}
