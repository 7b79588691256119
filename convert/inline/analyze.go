package inline

import "strings"

// Assignment is a color valued property found inside a style body.
type Assignment struct {
	Property string // one of Properties()
	Value    string // literal color including leading '#'
}

// Digits returns color value without leading '#'.
func (a Assignment) Digits() string {
	return strings.TrimPrefix(a.Value, "#")
}

// Variable returns name of the custom property for this assignment.
func (a Assignment) Variable() string {
	return "--" + a.Property + "-" + a.Digits()
}

// Reference returns var() expression replacing literal color.
func (a Assignment) Reference() string {
	return "var(" + a.Variable() + ")"
}

// Block is a single style={{...}} occurrence.
type Block struct {
	Offset      int    // byte offset of the body in the source
	Body        string // body text including its braces
	Assignments []Assignment
}

// Analysis describes what Transform does to a source.
type Analysis struct {
	Blocks       []Block
	Declarations []string // declaration lines in emission order
	Output       string   // result of Transform
}

// Assignments returns total number of color assignments found.
func (a *Analysis) Assignments() int {
	n := 0
	for _, b := range a.Blocks {
		n += len(b.Assignments)
	}
	return n
}

// Analyze scans source the same way Transform does and transforms it.
// Declarations are taken from the transformed text so they always match it.
func Analyze(source string) *Analysis {
	res := &Analysis{}
	for _, loc := range styleRe.FindAllStringSubmatchIndex(source, -1) {
		body := source[loc[2]:loc[3]]
		res.Blocks = append(res.Blocks, Block{
			Offset:      loc[2],
			Body:        body,
			Assignments: scanAssignments(body),
		})
	}

	// header lines never contain var() references, so scanning the whole
	// output is safe
	res.Output = Transform(source)
	res.Declarations = declarations(res.Output)
	return res
}
