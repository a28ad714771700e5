package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/AnthonyAugust/meu-agente-tests/internal/config"
)

// question describes a single configuration prompt. Check, if set, vets the
// answer after the default has been applied.
type question struct {
	Key     string
	Prompt  string
	Default string
	Secret  bool
	Check   func(string) error
}

var azureQuestions = []question{
	{Key: config.EnvEndpoint, Prompt: "Azure OpenAI endpoint (https://<resource>.openai.azure.com)", Check: checkEndpoint},
	{Key: config.EnvAPIKey, Prompt: "API key", Secret: true, Check: required},
	{Key: config.EnvDeployment, Prompt: "Deployment name", Check: checkDeployment},
	{Key: config.EnvAPIVersion, Prompt: "API version", Default: config.DefaultAPIVersion, Check: required},
}

func required(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("a value is required")
	}
	return nil
}

func checkEndpoint(v string) error {
	u, err := url.Parse(strings.TrimSpace(v))
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return errors.New("enter an http(s) URL such as https://myresource.openai.azure.com")
	}
	return nil
}

// checkDeployment rejects names that cannot sit in a URL path segment.
func checkDeployment(v string) error {
	if err := required(v); err != nil {
		return err
	}
	if strings.ContainsAny(v, "/?# ") {
		return fmt.Errorf("deployment name %q cannot contain '/', '?', '#' or spaces", v)
	}
	return nil
}

func newInitCmd() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write Azure OpenAI settings to a .env file",
		Long: `Prompt for the Azure OpenAI endpoint, key, deployment and API version and
merge the answers into the .env file. Other keys in the file are kept.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			answers, err := promptQuestions(azureQuestions)
			if err != nil {
				return fmt.Errorf("prompt: %w", err)
			}
			if err := config.SaveAzure(envFile, azureFromAnswers(answers)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote Azure OpenAI settings to %s\n", envFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&envFile, "file", config.DotEnvFile, "dotenv file to update")
	return cmd
}

func azureFromAnswers(answers map[string]string) config.AzureConfig {
	return config.AzureConfig{
		Endpoint:   answers[config.EnvEndpoint],
		APIKey:     answers[config.EnvAPIKey],
		Deployment: answers[config.EnvDeployment],
		APIVersion: answers[config.EnvAPIVersion],
	}
}

// ---------------------------------------------------------------------------
// Question form
// ---------------------------------------------------------------------------

// promptModel asks one question at a time. Enter on an answer that fails
// its check keeps the form on that question and shows the reason.
type promptModel struct {
	questions []question
	idx       int
	inputs    []textinput.Model
	answers   map[string]string
	err       error
	done      bool
	cancelled bool
}

func newPromptModel(questions []question) promptModel {
	inputs := make([]textinput.Model, len(questions))
	for i, q := range questions {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = q.Default
		ti.CharLimit = 512
		if q.Secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '*'
		}
		inputs[i] = ti
	}
	m := promptModel{
		questions: questions,
		inputs:    inputs,
		answers:   make(map[string]string, len(questions)),
	}
	if len(inputs) > 0 {
		m.inputs[0].Focus()
	}
	return m
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}
	}
	var cmd tea.Cmd
	m.inputs[m.idx], cmd = m.inputs[m.idx].Update(msg)
	return m, cmd
}

// submit records the current answer and advances, or stays put with m.err
// set when the answer is rejected.
func (m promptModel) submit() (tea.Model, tea.Cmd) {
	q := m.questions[m.idx]
	v := strings.TrimSpace(m.inputs[m.idx].Value())
	if v == "" {
		v = q.Default
	}
	if q.Check != nil {
		if err := q.Check(v); err != nil {
			m.err = err
			return m, nil
		}
	}
	m.err = nil
	m.answers[q.Key] = v

	if m.idx == len(m.questions)-1 {
		m.done = true
		return m, tea.Quit
	}
	m.inputs[m.idx].Blur()
	m.idx++
	m.inputs[m.idx].Focus()
	return m, textinput.Blink
}

func (m promptModel) View() string {
	if m.done || m.cancelled || len(m.questions) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%d/%d] %s\n%s\n", m.idx+1, len(m.questions), m.questions[m.idx].Prompt, m.inputs[m.idx].View())
	if m.err != nil {
		fmt.Fprintf(&b, "  %v\n", m.err)
	}
	b.WriteString("(enter to accept, esc to cancel)\n")
	return b.String()
}

// promptQuestions runs the form and returns the accepted answers keyed by
// question.Key.
func promptQuestions(questions []question) (map[string]string, error) {
	if len(questions) == 0 {
		return map[string]string{}, nil
	}
	result, err := tea.NewProgram(newPromptModel(questions)).Run()
	if err != nil {
		return nil, err
	}
	final, ok := result.(promptModel)
	if !ok || !final.done {
		return nil, errors.New("cancelled")
	}
	return final.answers, nil
}
