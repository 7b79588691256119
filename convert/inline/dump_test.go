package inline

import (
	"strings"
	"testing"
)

func TestAnalysisDump(t *testing.T) {
	a := Analyze(`<div style={{color: '#FFF', padding: 2}}/><p style={{fill: "#123456"}}/>`)
	got := string(a.Dump("Card.jsx"))

	for _, want := range []string{
		"source Card.jsx: 2 block(s), 2 color(s)\n",
		"  block offset=",
		"    color #FFF -> var(--color-FFF)\n",
		"    fill #123456 -> var(--fill-123456)\n",
		"  declarations\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("dump does not contain %q:\n%s", want, got)
		}
	}
}

func TestAnalysisDump_NoStyles(t *testing.T) {
	got := string(Analyze("const x = 1").Dump("x.js"))
	if got != "source x.js: 0 block(s), 0 color(s)\n" {
		t.Errorf("Dump() = %q", got)
	}
}
