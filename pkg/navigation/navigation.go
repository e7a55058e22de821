// Package navigation walks the active shape of a form: given a position it
// finds the next or previous screen, skipping steps that currently have
// nothing to ask. It must be rebuilt from the current shape for every
// decision, never reused across answer changes.
package navigation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/i18n"
)

// Introduction is the step index of a section's introduction screen.
const Introduction = -1

// ErrInvalidPosition is returned for positions outside the shape.
var ErrInvalidPosition = errors.New("navigation: invalid position")

// Position addresses a screen: a section and a step index, or Introduction.
type Position struct {
	Section int
	Step    int
}

// IsIntroduction reports whether p addresses an introduction screen.
func (p Position) IsIntroduction() bool { return p.Step == Introduction }

// Kind is the type of screen a Destination points at.
type Kind string

const (
	KindStart        Kind = "start"
	KindIntroduction Kind = "introduction"
	KindStep         Kind = "step"
	KindSummary      Kind = "summary"
)

// PageLink is a labelled URL.
type PageLink struct {
	Label string
	URL   string
}

// Destination is the result of a navigation decision.
type Destination struct {
	Kind     Kind
	Position Position
	Link     PageLink
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithBaseURL sets the prefix step and introduction URLs are built on.
func WithBaseURL(base string) Option {
	return func(n *Navigator) { n.baseURL = strings.TrimRight(base, "/") }
}

// WithSummaryURL overrides the summary URL (default base + "/summary").
func WithSummaryURL(u string) Option {
	return func(n *Navigator) { n.summaryURL = u }
}

// WithStartURL overrides the start URL (default base + "/start").
func WithStartURL(u string) Option {
	return func(n *Navigator) { n.startURL = u }
}

// WithLocalizer localises link labels.
func WithLocalizer(loc i18n.Localizer) Option {
	return func(n *Navigator) { n.loc = loc }
}

// Navigator computes destinations over one active shape.
type Navigator struct {
	shape      form.Shape
	baseURL    string
	summaryURL string
	startURL   string
	loc        i18n.Localizer
}

// New builds a Navigator for shape.
func New(shape form.Shape, options ...Option) *Navigator {
	n := &Navigator{shape: shape}
	for _, opt := range options {
		if opt != nil {
			opt(n)
		}
	}
	if n.summaryURL == "" {
		n.summaryURL = n.baseURL + "/summary"
	}
	if n.startURL == "" {
		n.startURL = n.baseURL + "/start"
	}
	return n
}

// Validate reports whether pos addresses a screen of the shape.
func (n *Navigator) Validate(pos Position) error {
	section, ok := n.shape.Section(pos.Section)
	if !ok {
		return fmt.Errorf("%w: section %d", ErrInvalidPosition, pos.Section)
	}
	if pos.IsIntroduction() {
		if !section.HasIntroduction() {
			return fmt.Errorf("%w: section %q has no introduction", ErrInvalidPosition, section.Slug)
		}
		return nil
	}
	if _, ok := section.Step(pos.Step); !ok {
		return fmt.Errorf("%w: step %d of section %q", ErrInvalidPosition, pos.Step, section.Slug)
	}
	return nil
}

// At returns the destination for pos itself.
func (n *Navigator) At(pos Position) (Destination, error) {
	if err := n.Validate(pos); err != nil {
		return Destination{}, err
	}
	if pos.IsIntroduction() {
		return n.introduction(pos.Section), nil
	}
	return n.step(pos.Section, pos.Step), nil
}

// First returns the first screen of the form.
func (n *Navigator) First() Destination {
	if len(n.shape.Sections) == 0 {
		return n.summary()
	}
	return n.enterSection(0)
}

// Next returns the screen after pos. From an introduction it is always the
// section's first step. Otherwise it is the next required step of the
// section, then the next section's introduction or first step, then the
// summary.
func (n *Navigator) Next(pos Position) (Destination, error) {
	if err := n.Validate(pos); err != nil {
		return Destination{}, err
	}
	if pos.IsIntroduction() {
		return n.step(pos.Section, 0), nil
	}

	section := n.shape.Sections[pos.Section]
	for idx := pos.Step + 1; idx < len(section.Steps); idx++ {
		if section.Steps[idx].IsRequired {
			return n.step(pos.Section, idx), nil
		}
	}
	if pos.Section+1 < len(n.shape.Sections) {
		return n.enterSection(pos.Section + 1), nil
	}
	return n.summary(), nil
}

// Previous returns the screen before pos: the last earlier required step of
// the section, else its introduction, else the previous section's last
// required step (or its introduction), else the start page. Unlike Next, it
// passes over an earlier section with no required step and no introduction
// instead of landing on its step 0.
func (n *Navigator) Previous(pos Position) (Destination, error) {
	if err := n.Validate(pos); err != nil {
		return Destination{}, err
	}

	section := n.shape.Sections[pos.Section]
	if !pos.IsIntroduction() {
		for idx := pos.Step - 1; idx >= 0; idx-- {
			if section.Steps[idx].IsRequired {
				return n.step(pos.Section, idx), nil
			}
		}
		if section.HasIntroduction() {
			return n.introduction(pos.Section), nil
		}
	}

	for si := pos.Section - 1; si >= 0; si-- {
		if dest, ok := n.leaveSection(si); ok {
			return dest, nil
		}
	}
	return n.start(), nil
}

// Last is the screen "back" from the summary leads to.
func (n *Navigator) Last() Destination {
	for si := len(n.shape.Sections) - 1; si >= 0; si-- {
		if dest, ok := n.leaveSection(si); ok {
			return dest
		}
	}
	return n.start()
}

// enterSection lands on the section's introduction or, without one, its
// first step.
func (n *Navigator) enterSection(si int) Destination {
	if n.shape.Sections[si].HasIntroduction() {
		return n.introduction(si)
	}
	return n.step(si, 0)
}

// leaveSection finds the last screen of a section when walking backwards
// into it. ok is false when there is nothing to show.
func (n *Navigator) leaveSection(si int) (Destination, bool) {
	section := n.shape.Sections[si]
	for idx := len(section.Steps) - 1; idx >= 0; idx-- {
		if section.Steps[idx].IsRequired {
			return n.step(si, idx), true
		}
	}
	if section.HasIntroduction() {
		return n.introduction(si), true
	}
	return Destination{}, false
}

func (n *Navigator) step(si, idx int) Destination {
	section := n.shape.Sections[si]
	step := section.Steps[idx]
	label := n.loc.Text(step.Title)
	if label == "" {
		label = n.loc.Text(section.Title)
	}
	return Destination{
		Kind:     KindStep,
		Position: Position{Section: si, Step: idx},
		Link:     PageLink{Label: label, URL: n.baseURL + "/" + escapeSlug(step.Slug)},
	}
}

func (n *Navigator) introduction(si int) Destination {
	section := n.shape.Sections[si]
	return Destination{
		Kind:     KindIntroduction,
		Position: Position{Section: si, Step: Introduction},
		Link:     PageLink{Label: n.loc.Text(section.Title), URL: n.baseURL + "/" + url.PathEscape(section.Slug)},
	}
}

func (n *Navigator) summary() Destination {
	return Destination{
		Kind:     KindSummary,
		Position: Position{Section: len(n.shape.Sections), Step: 0},
		Link:     PageLink{Label: n.loc.Key("navigation.summary", "Summary"), URL: n.summaryURL},
	}
}

func (n *Navigator) start() Destination {
	return Destination{
		Kind:     KindStart,
		Position: Position{Section: -1, Step: 0},
		Link:     PageLink{Label: n.loc.Key("navigation.start", "Start"), URL: n.startURL},
	}
}

func escapeSlug(slug string) string {
	parts := strings.Split(slug, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// PositionForSlug maps a step slug ("section/2") or section slug to a
// position.
func PositionForSlug(shape form.Shape, slug string) (Position, error) {
	slug = strings.Trim(slug, "/")
	if si, sti, ok := shape.FindStep(slug); ok {
		return Position{Section: si, Step: sti}, nil
	}
	for si, section := range shape.Sections {
		if section.Slug != slug {
			continue
		}
		if section.HasIntroduction() {
			return Position{Section: si, Step: Introduction}, nil
		}
		return Position{Section: si, Step: 0}, nil
	}
	return Position{}, fmt.Errorf("%w: unknown slug %q", ErrInvalidPosition, slug)
}
