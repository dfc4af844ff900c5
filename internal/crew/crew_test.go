package crew

import (
	"context"
	"testing"

	"SupportCrew/internal/crews"
	"SupportCrew/internal/parser"
	"SupportCrew/pkg/types"

	"github.com/cloudwego/eino/components/tool"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAgent(t *testing.T, id string) *Agent {
	t.Helper()
	a, err := NewAgent(types.Agent{ID: id, Role: id + " role", Goal: "help", Backstory: "works for {customer}"})
	require.NoError(t, err)
	return a
}

func mustTask(t *testing.T, id string, agent *Agent, deps ...string) *Task {
	t.Helper()
	task, err := NewTask(types.Task{ID: id, Description: id + " for {inquiry}", ExpectedOutput: "text", Context: deps}, agent, nil)
	require.NoError(t, err)
	return task
}

func TestNewAgent(t *testing.T) {
	a, err := NewAgent(types.Agent{ID: "a", Role: "r", Goal: "g", Backstory: "b"})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxIterations, a.Spec().MaxIterations)

	_, err = NewAgent(types.Agent{ID: "a", Role: "r", Goal: "g"})
	assert.True(t, errors.Is(err, ErrMissingField))
	assert.Contains(t, err.Error(), "backstory")
}

func TestNewTask(t *testing.T) {
	agent := mustAgent(t, "support")

	_, err := NewTask(types.Task{ID: "t", Description: "d"}, nil, nil)
	assert.True(t, errors.Is(err, ErrAgentRequired))

	task, err := NewTask(types.Task{ID: "t", Description: "d"}, agent, []tool.BaseTool{})
	require.NoError(t, err)
	assert.Equal(t, "support", task.Spec().Agent)
	assert.Empty(t, task.Tools())

	_, err = NewTask(types.Task{ID: "t", Description: "d", Agent: "other"}, agent, nil)
	assert.Error(t, err)
}

func TestAssembleRejectsForeignAgent(t *testing.T) {
	member := mustAgent(t, "support")
	outsider := mustAgent(t, "qa")

	_, err := Assemble([]*Agent{member}, []*Task{
		mustTask(t, "resolve", member),
		mustTask(t, "review", outsider, "resolve"),
	}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAgentNotInGroup))
	assert.Contains(t, err.Error(), `task "review" agent "qa"`)
}

func TestAssembleDuplicateIDs(t *testing.T) {
	a := mustAgent(t, "a")
	_, err := Assemble([]*Agent{a, mustAgent(t, "a")}, nil, Options{})
	assert.True(t, errors.Is(err, ErrDuplicateID))

	_, err = Assemble([]*Agent{a}, []*Task{mustTask(t, "x", a), mustTask(t, "x", a)}, Options{})
	assert.True(t, errors.Is(err, ErrDuplicateID))
}

func TestExecutionOrder(t *testing.T) {
	a := mustAgent(t, "a")

	tests := []struct {
		name  string
		tasks []*Task
		want  []string
	}{
		{
			name:  "declared order without dependencies",
			tasks: []*Task{mustTask(t, "one", a), mustTask(t, "two", a)},
			want:  []string{"one", "two"},
		},
		{
			name:  "dependency declared later runs first",
			tasks: []*Task{mustTask(t, "review", a, "resolve"), mustTask(t, "resolve", a)},
			want:  []string{"resolve", "review"},
		},
		{
			name: "ties keep declaration order",
			tasks: []*Task{
				mustTask(t, "final", a, "left", "right"),
				mustTask(t, "left", a),
				mustTask(t, "right", a),
			},
			want: []string{"left", "right", "final"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Assemble([]*Agent{a}, tt.tasks, Options{})
			require.NoError(t, err)
			var got []string
			for _, task := range g.Order() {
				got = append(got, task.ID())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecutionOrderErrors(t *testing.T) {
	a := mustAgent(t, "a")

	_, err := Assemble([]*Agent{a}, []*Task{mustTask(t, "x", a, "y"), mustTask(t, "y", a, "x")}, Options{})
	assert.True(t, errors.Is(err, ErrDependencyCycle))

	_, err = Assemble([]*Agent{a}, []*Task{mustTask(t, "x", a, "ghost")}, Options{})
	assert.True(t, errors.Is(err, ErrUnknownDependency))
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("{customer} asked: {inquiry}", "{person} from {customer}", "literal {{braces}} stay")
	assert.Equal(t, []string{"customer", "inquiry", "person"}, got)

	missing := MissingInputs(map[string]string{"customer": "Acme"}, "{customer} {person} {inquiry}")
	assert.Equal(t, []string{"inquiry", "person"}, missing)
}

func TestRender(t *testing.T) {
	ctx := context.Background()

	out, err := Render(ctx, "{person} from {customer}'s team", map[string]string{"person": "Jane Doe", "customer": "Acme Co"})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe from Acme Co's team", out)

	_, err = Render(ctx, "{person} from {customer}", map[string]string{"person": "Jane"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingInput))
	assert.Contains(t, err.Error(), "customer")
}

func TestBuiltinCrew(t *testing.T) {
	config, err := parser.Parse(crews.CustomerSupport)
	require.NoError(t, err)

	tools := map[string]tool.BaseTool{"search_tool": nil, "scrape_tool": nil, "docs_scrape_tool": nil}
	g, err := Build(config, tools)
	require.NoError(t, err)

	order := g.Order()
	require.Len(t, order, 2)
	assert.Equal(t, "inquiry_resolution", order[0].ID())
	assert.Equal(t, "quality_assurance_review", order[1].ID())
	assert.Equal(t, "support_quality_assurance_agent", order[1].Agent().ID())
	assert.Len(t, order[0].Tools(), 1)
	assert.True(t, g.MemoryEnabled())

	for _, placeholder := range g.Placeholders() {
		assert.Contains(t, config.Inputs, placeholder)
	}
	assert.Equal(t, []string{"customer", "inquiry", "person"}, g.Placeholders())

	inputs := []map[string]string{
		config.Inputs,
		{"customer": "Acme Co", "person": "Jane Doe", "inquiry": "What is your refund policy?"},
		{"customer": "", "person": "", "inquiry": ""},
	}
	for _, in := range inputs {
		require.NoError(t, g.CheckInputs(in))
		assert.Equal(t, "inquiry_resolution", g.Order()[0].ID())
	}

	err = g.CheckInputs(map[string]string{"customer": "Acme Co"})
	assert.True(t, errors.Is(err, ErrMissingInput))
	assert.Contains(t, err.Error(), "inquiry, person")
}

func TestBuildAssembleFailure(t *testing.T) {
	config, err := parser.Parse(crews.CustomerSupport)
	require.NoError(t, err)
	config.Crew.Agents = []string{"support_agent"}

	_, err = Build(config, map[string]tool.BaseTool{"docs_scrape_tool": nil})
	assert.True(t, errors.Is(err, ErrAgentNotInGroup))
}
