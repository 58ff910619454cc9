package querytpl

import (
	"github.com/itsatony/go-querytpl/internal"
)

// Template is a compiled query template. It is immutable and can be built
// concurrently from multiple goroutines.
type Template struct {
	source  string
	nodes   []internal.Node
	markers int
	blocks  int
	engine  *Engine
}

func newTemplate(source string, nodes []internal.Node, engine *Engine) *Template {
	return &Template{
		source:  source,
		nodes:   nodes,
		markers: internal.CountMarkers(nodes),
		blocks:  internal.CountBlocks(nodes),
		engine:  engine,
	}
}

// Source returns the template source text.
func (t *Template) Source() string {
	return t.source
}

// MarkerCount returns how many parameters a build consumes.
func (t *Template) MarkerCount() int {
	return t.markers
}

// BlockCount returns the number of optional blocks.
func (t *Template) BlockCount() int {
	return t.blocks
}

// Build substitutes params into the template.
func (t *Template) Build(params ...Value) (string, error) {
	return t.engine.execute(t, params)
}

// BuildArgs is Build with plain Go values, converted with ValueOf.
func (t *Template) BuildArgs(args ...any) (string, error) {
	params, err := ValuesOf(args...)
	if err != nil {
		return "", err
	}
	return t.Build(params...)
}
