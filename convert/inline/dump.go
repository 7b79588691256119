package inline

import "stylevars/utils/debug"

// Dump renders analysis as indented text for debug reports.
func (a *Analysis) Dump(name string) []byte {
	tw := debug.NewTreeWriter()
	tw.Line(0, "source %s: %d block(s), %d color(s)", name, len(a.Blocks), a.Assignments())
	for _, b := range a.Blocks {
		tw.Line(1, "block offset=%d", b.Offset)
		tw.Field(2, "body", b.Body)
		for _, as := range b.Assignments {
			tw.Line(2, "%s %s -> %s", as.Property, as.Value, as.Reference())
		}
	}
	if len(a.Declarations) > 0 {
		tw.Line(1, "declarations")
		for _, d := range a.Declarations {
			tw.Field(2, "line", d)
		}
	}
	return tw.Bytes()
}
