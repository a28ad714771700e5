// Package prompt builds the instruction sent to the model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/AnthonyAugust/meu-agente-tests/internal/pysource"
	"github.com/AnthonyAugust/meu-agente-tests/internal/testfile"
)

// Delimiters around the embedded module source.
const (
	BeginMarker = "---MODULE-BEGIN---"
	EndMarker   = "---MODULE-END---"
)

// System is the system message sent with every request.
const System = "You are a helpful assistant that writes pytest unit tests."

// Request is everything the builder needs about the subject module.
type Request struct {
	Module     string
	Source     string
	Signatures []pysource.Signature
}

const userTemplate = `
You are a Python developer who writes unit tests using pytest.
Return ONLY the content of a single Python file. The FIRST line MUST be exactly:
%[1]s

The file should be named %[2]s and must contain pytest test functions named def test_*.
Import the functions from the module using: from %[3]s import %[4]s

Do not write any explanations or markdown. Do not include code fences (` + "```" + `).
Write tests that include success and failure cases where appropriate (e.g., divide by zero).
Module code:
%[5]s
%[6]s
%[7]s
`

// Build returns the user prompt for req.
func Build(req Request) string {
	names := make([]string, len(req.Signatures))
	for i, s := range req.Signatures {
		names[i] = s.Name
	}
	return fmt.Sprintf(userTemplate,
		testfile.Marker,
		testfile.Name(req.Module),
		req.Module,
		strings.Join(names, ", "),
		BeginMarker,
		req.Source,
		EndMarker,
	)
}
