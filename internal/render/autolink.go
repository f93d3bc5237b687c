package render

import (
	"regexp"
	"sort"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"mvdan.cc/xurls/v2"
)

// LinkKind classifies an autolink match.
type LinkKind string

const (
	// LinkURL is a web address with or without scheme.
	LinkURL LinkKind = "url"
	// LinkEmail is an e-mail address.
	LinkEmail LinkKind = "email"
	// LinkPhone is a phone number.
	LinkPhone LinkKind = "phone"
)

// Link is one match found in plaintext. Start and End are byte offsets.
type Link struct {
	Start int
	End   int
	Text  string
	Kind  LinkKind
	Href  string
}

var (
	urlPattern   = xurls.Relaxed()
	phonePattern = regexp.MustCompile(`\+?\(?\d[\d\s().-]{5,}\d`)
	schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)
)

// DefaultRegion is used to parse phone numbers without a country code.
const DefaultRegion = "US"

// Linker finds and wraps links in plaintext.
type Linker struct {
	format Format
	region string
}

// NewLinker constructs a Linker. An empty region uses DefaultRegion.
func NewLinker(format Format, region string) *Linker {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}
	return &Linker{format: format, region: region}
}

// Parse returns non-overlapping links in text ordered by offset.
func (l *Linker) Parse(text string) []Link {
	var links []Link
	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		match := text[loc[0]:loc[1]]
		links = append(links, classifyURL(loc[0], loc[1], match))
	}
	for _, loc := range phonePattern.FindAllStringIndex(text, -1) {
		if overlaps(links, loc[0], loc[1]) {
			continue
		}
		match := strings.TrimSpace(text[loc[0]:loc[1]])
		num, err := phonenumbers.Parse(match, l.region)
		if err != nil || !phonenumbers.IsValidNumber(num) {
			continue
		}
		links = append(links, Link{
			Start: loc[0],
			End:   loc[1],
			Text:  text[loc[0]:loc[1]],
			Kind:  LinkPhone,
			Href:  "tel:" + phonenumbers.Format(num, phonenumbers.E164),
		})
	}
	sort.Slice(links, func(i, j int) bool { return links[i].Start < links[j].Start })
	return links
}

// LinkAt returns the link covering the byte offset, if any.
func (l *Linker) LinkAt(text string, offset int) (Link, bool) {
	for _, link := range l.Parse(text) {
		if offset >= link.Start && offset <= link.End {
			return link, true
		}
	}
	return Link{}, false
}

// Autolink escapes text and wraps every link. It reports whether any link
// was found.
func (l *Linker) Autolink(text string) (string, bool) {
	links := l.Parse(text)
	if len(links) == 0 {
		return Escape(l.format, text), false
	}
	var b strings.Builder
	pos := 0
	for _, link := range links {
		b.WriteString(Escape(l.format, text[pos:link.Start]))
		b.WriteString(l.anchor(link))
		pos = link.End
	}
	b.WriteString(Escape(l.format, text[pos:]))
	return b.String(), true
}

// Escape escapes text for the linker's format.
func (l *Linker) Escape(text string) string {
	return Escape(l.format, text)
}

func (l *Linker) anchor(link Link) string {
	label := Escape(l.format, link.Text)
	if l.format == FormatTerminal {
		href := stripControl(link.Href)
		return "\x1b]8;;" + href + "\x1b\\" + "\x1b[4m" + label + "\x1b[24m" + "\x1b]8;;\x1b\\"
	}
	return `<a href="` + Escape(FormatHTML, link.Href) + `" class="autolink">` + label + `</a>`
}

func classifyURL(start, end int, match string) Link {
	link := Link{Start: start, End: end, Text: match, Kind: LinkURL, Href: match}
	switch {
	case strings.HasPrefix(strings.ToLower(match), "mailto:"):
		link.Kind = LinkEmail
	case schemePrefix.MatchString(match) && strings.Contains(match, "://"):
	case isEmail(match):
		link.Kind = LinkEmail
		link.Href = "mailto:" + match
	default:
		link.Href = "http://" + match
	}
	return link
}

func isEmail(match string) bool {
	at := strings.Index(match, "@")
	if at <= 0 {
		return false
	}
	return !strings.ContainsAny(match[:at], "/:")
}

func overlaps(links []Link, start, end int) bool {
	for _, link := range links {
		if start < link.End && end > link.Start {
			return true
		}
	}
	return false
}
