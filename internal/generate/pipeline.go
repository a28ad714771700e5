// Package generate drives one run: load the source, extract signatures, ask
// the remote model or fall back to templates, and write the test file.
package generate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/AnthonyAugust/meu-agente-tests/internal/config"
	"github.com/AnthonyAugust/meu-agente-tests/internal/llm"
	"github.com/AnthonyAugust/meu-agente-tests/internal/prompt"
	"github.com/AnthonyAugust/meu-agente-tests/internal/pysource"
	"github.com/AnthonyAugust/meu-agente-tests/internal/testfile"
)

// Request is the subject of one generation, passed by value to whichever
// generator runs.
type Request struct {
	Module     string
	Source     string
	Signatures []pysource.Signature
}

// PromptRequest converts r for the prompt builder.
func (r Request) PromptRequest() prompt.Request {
	return prompt.Request{Module: r.Module, Source: r.Source, Signatures: r.Signatures}
}

// Pipeline generates one test file per Run.
type Pipeline struct {
	// OutputDir is where the test file is written. Defaults to tests/.
	OutputDir string
	// OnState, if set, is called on every transition.
	OnState func(State)

	azure  config.AzureConfig
	client llm.Client
	logger *zap.Logger
	out    io.Writer
	state  State
}

// NewPipeline creates a pipeline. The remote path is used only when azure is
// fully configured and client is non-nil. Status lines go to out.
func NewPipeline(azure config.AzureConfig, client llm.Client, logger *zap.Logger, out io.Writer) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Pipeline{
		OutputDir: testfile.DefaultDir,
		azure:     azure,
		client:    client,
		logger:    logger,
		out:       out,
	}
}

// State returns the state of the last transition.
func (p *Pipeline) State() State { return p.state }

func (p *Pipeline) setState(s State) {
	p.state = s
	if s.IsTerminal() {
		p.logger.Info("pipeline finished", zap.String("state", string(s)))
	} else {
		p.logger.Debug("pipeline state", zap.String("state", string(s)))
	}
	if p.OnState != nil {
		p.OnState(s)
	}
}

// fail moves to StateFailed and returns err unchanged.
func (p *Pipeline) fail(err error) error {
	p.setState(StateFailed)
	return err
}

// ModuleName is the input file's base name without its extension.
func ModuleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads path and extracts its signatures. It fails with *InputError when
// the file is unreadable or defines no functions, and with
// *pysource.ParseError when the source is not valid Python.
func (p *Pipeline) Load(path string) (Request, error) {
	p.setState(StateLoading)
	src, err := os.ReadFile(path)
	if err != nil {
		return Request{}, p.fail(&InputError{Path: path, Err: err})
	}

	p.setState(StateExtracting)
	sigs, err := pysource.Extract(src)
	if err != nil {
		return Request{}, p.fail(err)
	}
	if len(sigs) == 0 {
		return Request{}, p.fail(&InputError{Path: path, Err: ErrNoFunctions})
	}

	p.logger.Debug("extracted signatures",
		zap.String("path", path),
		zap.Int("count", len(sigs)),
	)
	return Request{
		Module:     ModuleName(path),
		Source:     string(src),
		Signatures: sigs,
	}, nil
}

// Run executes the whole pipeline for the source file at path and returns the
// file it wrote. Remote failures never surface: they switch to the fallback
// templates.
func (p *Pipeline) Run(ctx context.Context, path string) (*testfile.File, error) {
	req, err := p.Load(path)
	if err != nil {
		return nil, err
	}

	content, ok := p.generateRemote(ctx, req)
	if !ok {
		p.setState(StateFallback)
		content = testfile.Fallback(req.Module, req.Signatures)
	}

	p.setState(StateWriting)
	f := &testfile.File{
		Path:    testfile.Path(p.OutputDir, req.Module),
		Content: content,
	}
	if err := testfile.Write(*f); err != nil {
		return nil, p.fail(&WriteError{Path: f.Path, Err: err})
	}

	p.setState(StateDone)
	fmt.Fprintf(p.out, "Test file generated: %s\n", f.Path)
	return f, nil
}

// generateRemote returns the sanitized model output, or false when the
// remote path is unavailable or failed.
func (p *Pipeline) generateRemote(ctx context.Context, req Request) (string, bool) {
	if !p.azure.Enabled() || p.client == nil {
		fmt.Fprintln(p.out, "Azure OpenAI is not configured. Generating basic tests (fallback mode).")
		return "", false
	}

	p.setState(StateRemoteGenerating)
	fmt.Fprintln(p.out, "Calling Azure OpenAI to generate the tests...")
	raw, err := p.client.Complete(ctx, prompt.Build(req.PromptRequest()))
	if err != nil {
		if llm.IsRemoteCallError(err) {
			p.logger.Warn("remote generation failed", zap.Error(err))
		} else {
			p.logger.Error("remote client returned an unclassified error", zap.Error(err))
		}
		fmt.Fprintf(p.out, "Error calling Azure OpenAI: %v\n", err)
		fmt.Fprintln(p.out, "Generating basic tests as fallback.")
		return "", false
	}

	p.setState(StateSanitizing)
	content := testfile.Sanitize(raw)
	if !testfile.HasMarker(content) {
		p.logger.Warn("model output does not start with the marker line; writing it unchanged",
			zap.String("marker", testfile.Marker),
		)
	}
	return content, true
}
