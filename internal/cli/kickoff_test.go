package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"SupportCrew/internal/agent/agenttest"
	"SupportCrew/internal/config"
	"SupportCrew/internal/crew"
	"SupportCrew/internal/crews"
	"SupportCrew/internal/engine"
	"SupportCrew/internal/parser"
	"SupportCrew/internal/vectorstore"
	"SupportCrew/pkg/types"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var markers = []string{
	"Defining agents...",
	"Defining tools...",
	"Creating tasks...",
	"Assembling the crew...",
	"Crew assembled successfully.",
	"Starting main execution...",
	"Kicking off the crew...",
	"Crew execution completed.",
	"Result: ",
	"Script execution completed.",
}

func staticModels(m model.ToolCallingChatModel) ModelFactory {
	return func(ctx context.Context, defs map[string]types.Model) (map[string]model.ToolCallingChatModel, error) {
		out := make(map[string]model.ToolCallingChatModel, len(defs))
		for name := range defs {
			out[name] = m
		}
		return out, nil
	}
}

func supportModel() *agenttest.Model {
	return agenttest.NewModel(func(input []*schema.Message) (*schema.Message, error) {
		if strings.Contains(agenttest.System(input), "Quality Assurance") {
			return agenttest.Reply("Hi Jane, Acme Co refunds any order within 30 days."), nil
		}
		return agenttest.Reply("Draft reply about the refund policy."), nil
	})
}

func keywordMemory(storage types.MemoryConfig, settings *config.Settings, runID string) (*vectorstore.WorkflowVectorStore, error) {
	embed := func(context.Context, string) ([]float32, error) {
		return []float32{0.6, 0.8}, nil
	}
	return vectorstore.NewWorkflowVectorStore(vectorstore.Options{RunID: runID, Embedding: embed})
}

// assertInOrder checks that each marker appears after the previous one.
func assertInOrder(t *testing.T, output string, want []string) {
	t.Helper()
	pos := 0
	for _, m := range want {
		idx := strings.Index(output[pos:], m)
		if !assert.GreaterOrEqual(t, idx, 0, "marker %q missing or out of order in:\n%s", m, output) {
			return
		}
		pos += idx + len(m)
	}
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	return lines[len(lines)-1]
}

func TestKickoffAcmeScenario(t *testing.T) {
	var buf bytes.Buffer
	m := supportModel()

	result := Kickoff(context.Background(), &buf, KickoffOptions{
		Inputs:    map[string]string{"customer": "Acme Co", "person": "Jane Doe", "inquiry": "What is your refund policy?"},
		Settings:  &config.Settings{OpenAIAPIKey: "sk-test-0123456789"},
		NewModels: staticModels(m),
		NewMemory: keywordMemory,
	})

	require.NoError(t, result.Err)
	assert.True(t, result.Succeeded())
	assert.Equal(t, "Hi Jane, Acme Co refunds any order within 30 days.", result.Output)

	output := buf.String()
	assertInOrder(t, output, markers)
	assert.Contains(t, output, "Result: Hi Jane, Acme Co refunds any order within 30 days.")
	assert.Equal(t, "Script execution completed.", lastLine(output))
	assert.Contains(t, output, "OPENAI_API_KEY: ********6789")
	assert.NotContains(t, output, "sk-test-0123456789")
	assert.Contains(t, output, "[Support Representative] Working on:")
	assert.Contains(t, output, "Token usage: 30 total")

	calls := m.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, agenttest.LastUser(calls[0]), "Jane Doe from Acme Co")
}

func TestKickoffUnsetCredentials(t *testing.T) {
	var buf bytes.Buffer
	unauthorized := agenttest.NewModel(func([]*schema.Message) (*schema.Message, error) {
		return nil, errors.New("401 Unauthorized: You didn't provide an API key")
	})

	result := Kickoff(context.Background(), &buf, KickoffOptions{
		Settings:  &config.Settings{},
		NewModels: staticModels(unauthorized),
	})

	assert.Equal(t, engine.StatusFailed, result.Status)
	output := buf.String()
	assert.Contains(t, output, "OPENAI_API_KEY: (not set)")
	assert.Contains(t, output, "SERPER_API_KEY: (not set)")
	assertInOrder(t, output, []string{"Kicking off the crew...", "An error occurred:", "Traceback:", "Script execution completed."})
	assert.Contains(t, output, "401 Unauthorized")
	assert.NotContains(t, output, "Crew execution completed.")
	assert.Equal(t, "Script execution completed.", lastLine(output))
}

func TestKickoffAssembleFailure(t *testing.T) {
	var buf bytes.Buffer
	definition := strings.Replace(string(crews.CustomerSupport),
		"agents: [support_agent, support_quality_assurance_agent]", "agents: [support_agent]", 1)
	require.NotEqual(t, string(crews.CustomerSupport), definition)

	m := supportModel()
	result := Kickoff(context.Background(), &buf, KickoffOptions{
		Definition: []byte(definition),
		NewModels:  staticModels(m),
	})

	assert.False(t, result.Succeeded())
	assert.ErrorIs(t, result.Err, crew.ErrAgentNotInGroup)
	assert.Empty(t, m.Calls())

	output := buf.String()
	assertInOrder(t, output, []string{"Assembling the crew...", "An error occurred:", "Traceback:", "Script execution completed."})
	assert.NotContains(t, output, "Crew assembled successfully.")
	assert.Contains(t, output, "crew.Assemble", "traceback names the failing function")
}

func TestKickoffParseFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agents: []\n"), 0600))

	var buf bytes.Buffer
	result := Kickoff(context.Background(), &buf, KickoffOptions{Path: path})

	assert.False(t, result.Succeeded())
	output := buf.String()
	assert.Contains(t, output, "An error occurred: parse "+path+": no agents defined")
	assert.NotContains(t, output, "Defining agents...")
	assert.Equal(t, "Script execution completed.", lastLine(output))
}

func TestKickoffMissingFile(t *testing.T) {
	var buf bytes.Buffer
	result := Kickoff(context.Background(), &buf, KickoffOptions{Path: filepath.Join(t.TempDir(), "nope.yaml")})

	assert.False(t, result.Succeeded())
	assert.Contains(t, buf.String(), "An error occurred: parse ")
	assert.Equal(t, "Script execution completed.", lastLine(buf.String()))
}

func TestKickoffMissingInput(t *testing.T) {
	var buf bytes.Buffer
	definition := strings.Replace(string(crews.CustomerSupport), "  person: Beagel Thomanson\n", "", 1)

	m := supportModel()
	result := Kickoff(context.Background(), &buf, KickoffOptions{
		Definition: []byte(definition),
		NewModels:  staticModels(m),
	})

	assert.ErrorIs(t, result.Err, crew.ErrMissingInput)
	assert.Contains(t, buf.String(), "An error occurred: person: missing run input")
	assert.Empty(t, m.Calls())
}

func TestKickoffRecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	result := Kickoff(context.Background(), &buf, KickoffOptions{
		NewModels: func(context.Context, map[string]types.Model) (map[string]model.ToolCallingChatModel, error) {
			panic("model registry corrupted")
		},
	})

	assert.False(t, result.Succeeded())
	output := buf.String()
	assertInOrder(t, output, []string{"Starting main execution...", "An error occurred: panic: model registry corrupted", "Traceback:", "Script execution completed."})
}

func TestValidateCrew(t *testing.T) {
	cfg, err := parser.Parse(crews.CustomerSupport)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, validateCrew(&buf, cfg))

	output := buf.String()
	assert.Contains(t, output, "✓ Crew is valid")
	assert.Contains(t, output, "Tasks: inquiry_resolution -> quality_assurance_review")
	assert.Contains(t, output, "Inputs: customer, inquiry, person")
	assert.NotContains(t, output, "without a default")

	cfg.Crew.Agents = []string{"support_agent"}
	assert.ErrorIs(t, validateCrew(&buf, cfg), crew.ErrAgentNotInGroup)
}

func TestCollectInputs(t *testing.T) {
	inputFlags = map[string]string{"customer": "From Input", "product": "widgets"}
	customer, person, inquiry = "Acme Co", "", "Refunds?"
	defer func() {
		inputFlags = nil
		customer, person, inquiry = "", "", ""
	}()

	assert.Equal(t, map[string]string{
		"customer": "Acme Co",
		"product":  "widgets",
		"inquiry":  "Refunds?",
	}, collectInputs())
}
