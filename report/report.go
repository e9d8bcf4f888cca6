// Package report renders the outcome of a commonization run as the files
// written to the output directory: common.json for tools and common.txt for
// people.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/broady/commonizer/cir"
	"github.com/broady/commonizer/engine"
	"github.com/broady/commonizer/provider"
	"github.com/broady/commonizer/sink"
)

// Output file names.
const (
	JSONFile = "common.json"
	TextFile = "common.txt"
)

// Input is everything a report covers.
type Input struct {
	// Platforms lists the platform names in canonical order.
	Platforms []string

	// Outcomes are the engine results, one per group.
	Outcomes []engine.Outcome

	// Unmatched are declarations that never formed a group.
	Unmatched []provider.Unmatched

	// Modules are the loaded modules; only their warnings are reported.
	Modules []*cir.Module
}

// Document is the JSON form of a report.
type Document struct {
	Platforms    []string      `json:"platforms"`
	Summary      Summary       `json:"summary"`
	Declarations []Declaration `json:"declarations"`
	Retained     []Retained    `json:"retained,omitempty"`
	Warnings     []Warning     `json:"warnings,omitempty"`
}

// Summary counts groups by outcome.
type Summary struct {
	Groups     int                  `json:"groups"`
	Commonized int                  `json:"commonized"`
	Strategies map[cir.Strategy]int `json:"strategies,omitempty"`
	Retained   int                  `json:"retained"`
	Failed     int                  `json:"failed"`
}

// Declaration is one shared declaration.
type Declaration struct {
	ID          cir.ClassifierID `json:"id"`
	Strategy    cir.Strategy     `json:"strategy"`
	Declaration cir.Declaration  `json:"declaration"`
}

// Retained is a declaration that stays with its platforms.
type Retained struct {
	ID        cir.ClassifierID `json:"id"`
	Platforms []string         `json:"platforms"`
	Reason    string           `json:"reason"`
}

// Warning is a loader warning tagged with its platform.
type Warning struct {
	Platform    string `json:"platform"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	Declaration string `json:"declaration,omitempty"`
	Source      string `json:"source,omitempty"`
}

// Reasons for retaining a grouped declaration.
const (
	ReasonNoCommonForm = "no common form"
	reasonFailed       = "failed: "
)

// Build assembles the document for in. Declarations and retained entries are
// sorted by ID; warnings keep platform order.
func Build(in Input) *Document {
	doc := &Document{
		Platforms:    slices.Clone(in.Platforms),
		Declarations: []Declaration{},
		Summary:      Summary{Groups: len(in.Outcomes)},
	}

	for _, out := range in.Outcomes {
		switch {
		case out.Err != nil:
			doc.Summary.Failed++
			doc.Retained = append(doc.Retained, Retained{
				ID:        out.ID,
				Platforms: slices.Clone(out.Platforms),
				Reason:    reasonFailed + out.Err.Error(),
			})
		case out.Commonized:
			doc.Summary.Commonized++
			if doc.Summary.Strategies == nil {
				doc.Summary.Strategies = make(map[cir.Strategy]int)
			}
			doc.Summary.Strategies[out.Strategy]++
			doc.Declarations = append(doc.Declarations, Declaration{
				ID:          out.ID,
				Strategy:    out.Strategy,
				Declaration: out.Declaration,
			})
		default:
			doc.Summary.Retained++
			doc.Retained = append(doc.Retained, Retained{
				ID:        out.ID,
				Platforms: slices.Clone(out.Platforms),
				Reason:    ReasonNoCommonForm,
			})
		}
	}
	for _, u := range in.Unmatched {
		doc.Retained = append(doc.Retained, Retained{
			ID:        u.ID,
			Platforms: slices.Clone(u.Platforms),
			Reason:    u.Reason,
		})
	}

	slices.SortStableFunc(doc.Declarations, func(a, b Declaration) int { return a.ID.Compare(b.ID) })
	slices.SortStableFunc(doc.Retained, func(a, b Retained) int { return a.ID.Compare(b.ID) })

	for _, m := range in.Modules {
		for _, w := range m.Warnings {
			rw := Warning{
				Platform:    m.Platform,
				Code:        w.Code,
				Message:     w.Message,
				Declaration: w.Declaration,
			}
			if w.Source != nil && !w.Source.IsZero() {
				rw.Source = fmt.Sprintf("%s:%d:%d", w.Source.File, w.Source.Line, w.Source.Column)
			}
			doc.Warnings = append(doc.Warnings, rw)
		}
	}
	return doc
}

// Render builds the document for in and returns the report files.
func Render(in Input) ([]sink.File, error) {
	doc := Build(in)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	data = append(data, '\n')

	return []sink.File{
		{Path: JSONFile, Content: data},
		{Path: TextFile, Content: Text(doc)},
	}, nil
}

// Text renders doc for people.
func Text(doc *Document) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "platforms: %s\n", strings.Join(doc.Platforms, ", "))
	fmt.Fprintf(&buf, "commonized %d of %d groups", doc.Summary.Commonized, doc.Summary.Groups)
	if doc.Summary.Failed > 0 {
		fmt.Fprintf(&buf, ", %d failed", doc.Summary.Failed)
	}
	buf.WriteString("\n")

	if len(doc.Declarations) > 0 {
		buf.WriteString("\ncommon declarations:\n")
		tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
		for _, d := range doc.Declarations {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", d.Strategy, d.ID.Package, Describe(d.Declaration))
		}
		tw.Flush()
	}

	if len(doc.Retained) > 0 {
		buf.WriteString("\nretained per platform:\n")
		tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
		for _, r := range doc.Retained {
			fmt.Fprintf(tw, "  %s\t[%s]\t%s\n", r.ID, strings.Join(r.Platforms, ", "), r.Reason)
		}
		tw.Flush()
	}

	if len(doc.Warnings) > 0 {
		buf.WriteString("\nwarnings:\n")
		tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
		for _, w := range doc.Warnings {
			where := w.Source
			if where == "" {
				where = w.Declaration
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", w.Platform, w.Code, where, w.Message)
		}
		tw.Flush()
	}
	return buf.Bytes()
}

// Describe renders a declaration the way it would be written, e.g.
// "typealias Conn = acme/shared.Handle" or "public final class Poller".
func Describe(d cir.Declaration) string {
	switch d := d.(type) {
	case *cir.TypeAlias:
		return fmt.Sprintf("%s typealias %s%s = %s", d.Visibility, d.Name, typeParameters(d.TypeParameters), d.Underlying)
	case *cir.Class:
		return fmt.Sprintf("%s %s %s %s%s", d.Visibility, d.Modality, d.ClassKind, d.Name, typeParameters(d.TypeParameters))
	case nil:
		return "<none>"
	}
	return fmt.Sprintf("%s %s", d.DeclKind(), d.DeclName())
}

func typeParameters(params []cir.TypeParameter) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		var b strings.Builder
		if p.Reified {
			b.WriteString("reified ")
		}
		if p.Variance != cir.Invariant {
			b.WriteString(p.Variance.String())
			b.WriteString(" ")
		}
		b.WriteString(p.Name)
		for j, bound := range p.UpperBounds {
			if j == 0 {
				b.WriteString(" : ")
			} else {
				b.WriteString(" & ")
			}
			b.WriteString(fmt.Sprint(bound))
		}
		parts[i] = b.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}
