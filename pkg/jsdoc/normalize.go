package jsdoc

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Markers the documentation site styles inside bullet lines.
const (
	DefaultMarker = "<tag:default>"
	ReturnsMarker = "<tag:returns>"
)

var (
	typeMarkerRe = regexp.MustCompile(`/// type: ([^\n]+)`)
	indentPairRe = regexp.MustCompile(`(?m)^(?:  )+`)
)

// Diagnostic reports a doc tag that was dropped from the rendered output.
type Diagnostic struct {
	Tag     string `json:"tag"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Subject, d.Message)
}

// Comment is a normalized doc block.
type Comment struct {
	Text        string
	Bullets     []string
	Diagnostics []Diagnostic
}

// Normalizer turns parsed doc blocks into render-ready comments.
//
// It is stateless apart from its logger and safe for concurrent use.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a Normalizer. A nil logger uses slog.Default().
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize converts a block into its description and bullet lines.
//
// Recognized tags become bullets in source order. Any other tag is dropped
// and reported as a Diagnostic (and a warning log record) naming subject, so
// authors notice unsupported tags without failing the build. A nil block
// yields an empty Comment.
func (n *Normalizer) Normalize(b *Block, subject string) Comment {
	c := Comment{Bullets: []string{}}
	if b == nil {
		return c
	}

	c.Text = NormalizeDescription(b.Description)

	for _, tag := range b.Tags {
		switch tag.Name {
		case "param":
			c.Bullets = append(c.Bullets, bullet(tag.Param, tag.Text))
		case "default":
			c.Bullets = append(c.Bullets, bullet(DefaultMarker, tag.Text))
		case "returns", "return":
			c.Bullets = append(c.Bullets, bullet(ReturnsMarker, tag.Text))
		default:
			d := Diagnostic{
				Tag:     tag.Name,
				Subject: subject,
				Message: fmt.Sprintf("unhandled doc tag @%s", tag.Name),
			}
			c.Diagnostics = append(c.Diagnostics, d)
			n.logger.Warn("unhandled doc tag", "tag", tag.Name, "subject", subject)
		}
	}

	return c
}

// NormalizeDescription applies the description rewrites: the `/// type: T`
// marker becomes an inline `/** @type {T} */` annotation, and leading
// indentation written in pairs of spaces becomes one tab per pair.
func NormalizeDescription(s string) string {
	s = typeMarkerRe.ReplaceAllStringFunc(s, func(m string) string {
		t := strings.TrimSpace(typeMarkerRe.FindStringSubmatch(m)[1])
		return "/** @type {" + t + "} */"
	})
	s = indentPairRe.ReplaceAllStringFunc(s, func(m string) string {
		return strings.Repeat("\t", len(m)/2)
	})
	return s
}

// bullet joins the non-empty parts of a tag line after "- ".
func bullet(label, text string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{label, text} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return "- " + strings.Join(parts, " ")
}
