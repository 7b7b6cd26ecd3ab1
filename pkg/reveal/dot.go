package reveal

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

// ToDOT returns a Graphviz DOT rendering of the plan as a left-to-right
// timeline: one node per step, labeled with its offset, name and changes,
// and clustered by phase.
//
// Example:
//
//	plan := reveal.NewPlan(q)
//	dot := plan.ToDOT()
//	// Use 'dot' command or RenderSVG to visualize
func (p Plan) ToDOT() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", "reveal_"+string(p.Variant))
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, shape=box, style=\"filled,rounded\", fillcolor=white];\n")
	buf.WriteString("  edge [fontname=\"SF Mono, Menlo, monospace\", fontsize=10];\n\n")

	var cluster Phase = -1
	for _, s := range p.Steps {
		if s.Phase != cluster {
			if cluster >= 0 {
				buf.WriteString("  }\n")
			}
			cluster = s.Phase
			fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", int(cluster))
			fmt.Fprintf(&buf, "    label=%q;\n    style=dashed;\n", cluster.String())
		}
		fmt.Fprintf(&buf, "    s%d [label=%q%s];\n", s.Seq, stepLabel(s), stepAttrs(s))
	}
	if cluster >= 0 {
		buf.WriteString("  }\n")
	}

	for i := 1; i < len(p.Steps); i++ {
		prev, cur := p.Steps[i-1], p.Steps[i]
		fmt.Fprintf(&buf, "  s%d -> s%d [label=%q];\n", prev.Seq, cur.Seq, "+"+(cur.At-prev.At).String())
	}
	buf.WriteString("}\n")
	return buf.String()
}

func stepLabel(s Step) string {
	lines := []string{fmt.Sprintf("%s  %s", s.At, s.Effect.Name)}
	for _, c := range s.Effect.Changes {
		if c.Duration > 0 {
			lines = append(lines, fmt.Sprintf("%s → %g over %s", c.Prop, c.To, c.Duration))
		} else {
			lines = append(lines, fmt.Sprintf("%s = %g", c.Prop, c.To))
		}
	}
	if s.Effect.Unlock {
		lines = append(lines, "can advance")
	}
	return strings.Join(lines, "\n")
}

func stepAttrs(s Step) string {
	if s.Effect.Unlock {
		return ", fillcolor=\"#d1fae5\""
	}
	return ""
}

// RenderSVG renders the plan timeline as an SVG image.
//
// RenderSVG requires the Graphviz library (github.com/goccy/go-graphviz).
// Errors are returned if Graphviz cannot initialize, the DOT is malformed,
// or rendering fails.
func (p Plan) RenderSVG(ctx context.Context) ([]byte, error) {
	dot := p.ToDOT()

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
