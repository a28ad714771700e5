package testfile

import (
	"fmt"
	"strings"

	"github.com/AnthonyAugust/meu-agente-tests/internal/pysource"
)

// template identifies which canned test a function name maps to.
type template int

const (
	templateGeneric template = iota
	templateAdd
	templateSubtract
	templateDivide
)

// vocabulary maps lowercased function names to their template. Anything
// missing falls through to templateGeneric.
var vocabulary = map[string]template{
	"add":      templateAdd,
	"sum":      templateAdd,
	"soma":     templateAdd,
	"sub":      templateSubtract,
	"subtract": templateSubtract,
	"subtrai":  templateSubtract,
	"menos":    templateSubtract,
	"div":      templateDivide,
	"divide":   templateDivide,
	"division": templateDivide,
}

func templateFor(name string) template {
	return vocabulary[strings.ToLower(name)]
}

// Fallback builds a pytest file for sigs without any remote call. Known
// arithmetic names get concrete assertions; every other function gets a
// smoke test that skips when the function needs arguments.
func Fallback(module string, sigs []pysource.Signature) string {
	names := make([]string, len(sigs))
	for i, s := range sigs {
		names[i] = s.Name
	}

	var b strings.Builder
	b.WriteString(Marker + "\n")
	fmt.Fprintf(&b, "from %s import %s\n\n", module, strings.Join(names, ", "))

	for _, s := range sigs {
		name := s.Name
		switch templateFor(name) {
		case templateAdd:
			fmt.Fprintf(&b, "def test_%s_basic():\n    assert %s(2, 3) == 5\n\n", name, name)
		case templateSubtract:
			fmt.Fprintf(&b, "def test_%s_basic():\n    assert %s(5, 2) == 3\n\n", name, name)
		case templateDivide:
			fmt.Fprintf(&b, "def test_%s_success():\n    assert %s(6, 2) == 3\n\n", name, name)
			fmt.Fprintf(&b, "def test_%s_by_zero():\n    with pytest.raises(ZeroDivisionError):\n        %s(1, 0)\n\n", name, name)
		default:
			fmt.Fprintf(&b, "def test_%s_exists_or_skip():\n", name)
			b.WriteString("    try:\n")
			fmt.Fprintf(&b, "        %s()\n", name)
			b.WriteString("    except TypeError:\n")
			b.WriteString("        pytest.skip('Auto-test skipped: function requires arguments')\n\n")
		}
	}
	return b.String()
}
