package history

import "regexp"

// subjectIcons pairs subject patterns with a category glyph. Order matters:
// the first match wins and the final catch-all guarantees a default.
var subjectIcons = []struct {
	re   *regexp.Regexp
	icon string
}{
	{regexp.MustCompile(`(?i)^Revert:?\s*`), " "},
	{regexp.MustCompile(`(?i)^archive:?\s*`), " "},
	{regexp.MustCompile(`(?i)^issue:?\s*`), " "},
	{regexp.MustCompile(`(?i)^BREAKING CHANGE:?\s*`), "⚠ "},
	{regexp.MustCompile(`(?i)^fixup!\s+`), " "},
	{regexp.MustCompile(`(?i)^ADD:\s?[a-z0-9]+`), " "},
	{regexp.MustCompile(`(?i)^ref(actor)?:?\s*`), "↺ "},
	{regexp.MustCompile(`(?i)^lang:?\s*`), "韛"},
	{regexp.MustCompile(`(?i)^deps(\(.+\))?:?\s*`), " "},
	{regexp.MustCompile(`(?i)^config:?\s*`), " "},
	{regexp.MustCompile(`(?i)^test(\(.+\))?:?\s*`), " "},
	{regexp.MustCompile(`(?i)^ci(\(.+\))?:?\s*`), " "},
	{regexp.MustCompile(`(?i)^perf(\(.+\))?:?\s*`), "龍"},
	{regexp.MustCompile(`(?i)^(bug)?fix(ing|ed)?(\(.+\))?[/:\s]+`), " "},
	{regexp.MustCompile(`(?i)^doc(s|umentation)?:?\s*`), "✎ "},
	{regexp.MustCompile(`(?i)^improve(ment)?:?\s*`), " "},
	{regexp.MustCompile(`(?i)^CHANGE/?:?\s*`), " "},
	{regexp.MustCompile(`(?i)^hotfix:?\s*`), " "},
	{regexp.MustCompile(`(?i)^feat:?\s*`), "➕"},
	{regexp.MustCompile(`(?i)^add:?\s*`), "➕"},
	{regexp.MustCompile(`(?i)^(release|bump):?\s*`), " "},
	{regexp.MustCompile(`(?i)^build:?\s*`), "🔨"},
	{regexp.MustCompile(`(?i).*\bchangelog\b.*`), "✎ "},
	{regexp.MustCompile(`(?i)^refactor:?\s*`), "↺ "},
	{regexp.MustCompile(`(?i)^.* Import .*`), "⮈ "},
	{regexp.MustCompile(`(?i)^Split .*`), " "},
	{regexp.MustCompile(`(?i)^Remove:?\s+.*`), " "},
	{regexp.MustCompile(`(?i)^Update :\w+.*`), " "},
	{regexp.MustCompile(`(?i)^style:?\s*`), "♥ "},
	{regexp.MustCompile(`(?i)^DONE:?\s?[a-z0-9]+`), " "},
	{regexp.MustCompile(`(?i)^rename?\s*`), " "},
	{regexp.MustCompile(`(?i).*`), "  "},
}

func iconFor(subject string) string {
	for _, entry := range subjectIcons {
		if entry.re.MatchString(subject) {
			return entry.icon
		}
	}
	return "  "
}
