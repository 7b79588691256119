// Package common keeps enums shared by command line handling and
// configuration, so neither has to import the other.
package common

//go:generate go tool go-enum --marshal --names

// Token export format.
// ENUM(figma, css, yaml)
type ExportFmt int

// Ext returns file extension for exported tokens.
func (f ExportFmt) Ext() string {
	switch f {
	case ExportFmtFigma:
		return ".json"
	case ExportFmtCss:
		return ".css"
	case ExportFmtYaml:
		return ".yaml"
	default:
		// this should never happen
		panic("unsupported export format requested")
	}
}
