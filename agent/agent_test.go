package agent_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semfibo/agent"
	"github.com/c360studio/semfibo/audit"
	"github.com/c360studio/semfibo/dispatch"
	"github.com/c360studio/semfibo/llm"
	"github.com/c360studio/semfibo/llm/testutil"
	"github.com/c360studio/semfibo/ontology"
	"github.com/c360studio/semfibo/ontology/ontologytest"
	"github.com/c360studio/semfibo/planner"
)

func testSets() map[string]ontology.ModuleSet {
	comprehensive := append([]string{}, ontologytest.CoreModules...)
	comprehensive = append(comprehensive,
		"BE/A.rdf", "BE/B.rdf", "FBC/C.rdf", "FBC/D.rdf", "FND/E.rdf", "SEC/F.rdf", "SEC/G.rdf")
	return map[string]ontology.ModuleSet{
		ontology.SetCore: ontologytest.CoreSet,
		ontology.SetBanking: {
			Name:        ontology.SetBanking,
			DisplayName: "Banking Only",
			Description: "Accounting subset.",
			Modules:     []string{"FND/Accounting/AccountingEquity.rdf"},
		},
		ontology.SetComprehensive: {
			Name:        ontology.SetComprehensive,
			DisplayName: "Comprehensive",
			Modules:     comprehensive,
		},
	}
}

type fixture struct {
	agent *agent.Agent
	store *ontology.Store
	llm   *testutil.MockClient
}

func newFixture(t *testing.T, llm *testutil.MockClient, opts ...agent.Option) fixture {
	t.Helper()
	store := ontology.NewStore(ontologytest.WriteModules(t), testSets())
	require.NoError(t, store.Load(context.Background(), ontology.SetCore))

	p := planner.New(llm, dispatch.Tools())
	a := agent.New(store, p, dispatch.New(store), opts...)
	return fixture{agent: a, store: store, llm: llm}
}

func TestAsk_PropertiesScenario(t *testing.T) {
	f := newFixture(t, testutil.Reply(`{"function":"get_properties","arguments":["ShareholdersEquity"]}`))

	ans := f.agent.Answer(context.Background(), "What are the properties of ShareholdersEquity?")
	assert.Equal(t,
		"Object properties of 'ShareholdersEquity': hasReportingCurrency, isEquityOf\n"+
			"Data properties of 'ShareholdersEquity': hasRetainedAmount",
		ans.Text)
	assert.Equal(t, agent.RoutePlan, ans.Route)
	assert.Equal(t, dispatch.StatusOK, ans.Status)
	assert.Equal(t, "get_properties", ans.Function)

	req := f.llm.Requests()[0]
	assert.Equal(t, "What are the properties of ShareholdersEquity?", req.Messages[1].Content)
	assert.NotContains(t, req.Messages[0].Content, `"step": "analysis"`)
}

func TestAsk_NotFoundScenario(t *testing.T) {
	f := newFixture(t, testutil.Reply("```json\n{\"function\":\"get_superclasses\",\"arguments\":[\"OwnersEquit\"]}\n```"))

	got := f.agent.Ask(context.Background(), "What are the superclasses of OwnersEquit?")
	assert.Equal(t, "Class 'OwnersEquit' not found. Try another or check spelling.", got)
}

func TestAsk_PlannerFailures(t *testing.T) {
	tests := []struct {
		name   string
		llm    *testutil.MockClient
		want   string
		status string
	}{
		{
			name:   "transport",
			llm:    &testutil.MockClient{Err: errors.New("connection refused")},
			want:   "LLM error: connection refused",
			status: agent.StatusLLMError,
		},
		{
			name:   "transient",
			llm:    &testutil.MockClient{Err: llm.NewTransientError(errors.New("HTTP request failed: EOF"))},
			want:   "LLM error: HTTP request failed: EOF (temporary failure, try again)",
			status: agent.StatusLLMError,
		},
		{
			name:   "fatal",
			llm:    &testutil.MockClient{Err: llm.NewFatalError(errors.New("LLM API error (status 401): bad key"))},
			want:   "LLM error: LLM API error (status 401): bad key (request rejected, check the llm settings)",
			status: agent.StatusLLMError,
		},
		{
			name:   "trailing comma",
			llm:    testutil.Reply(`{"function": "list_classes", "arguments": [],}`),
			want:   "Failed to parse LLM output as JSON:\n{\"function\": \"list_classes\", \"arguments\": [],}",
			status: agent.StatusParseError,
		},
		{
			name:   "missing function",
			llm:    testutil.Reply(`{"arguments": ["Share"]}`),
			want:   `Invalid plan format: {"arguments": ["Share"]}`,
			status: agent.StatusInvalidPlan,
		},
		{
			name:   "unsupported",
			llm:    testutil.Reply(`{"function": "drop_tables", "arguments": []}`),
			want:   "Unsupported function: drop_tables",
			status: dispatch.StatusUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.llm)
			ans := f.agent.Answer(context.Background(), "list the classes")
			assert.Equal(t, tt.want, ans.Text)
			assert.Equal(t, tt.status, ans.Status)
		})
	}
}

func TestAsk_MultiStep(t *testing.T) {
	plan := `[
  {"function": "get_superclasses", "arguments": ["RetainedEarnings"]},
  {"function": "get_superclasses", "arguments": ["shareholdersequity"]},
  {"step": "analysis", "instruction": "compare the two parents"}
]`
	f := newFixture(t, testutil.Reply(plan, "Both roll up to OwnersEquity."))

	ans := f.agent.Answer(context.Background(), "Compare RetainedEarnings and ShareholdersEquity")
	assert.Equal(t, agent.RouteMultiStep, ans.Route)
	assert.Equal(t, dispatch.StatusOK, ans.Status)

	want := "Individual Results:\n\n" +
		"### 1. get_superclasses\nSuperclasses of 'RetainedEarnings':\n  - ShareholdersEquity\n\n" +
		"### 2. get_superclasses\nSuperclasses of 'ShareholdersEquity':\n  - OwnersEquity\n\n" +
		strings.Repeat("=", 60) + "\nAnalysis:\n\nBoth roll up to OwnersEquity."
	assert.Equal(t, want, ans.Text)

	reqs := f.llm.Requests()
	require.Len(t, reqs, 2)
	assert.Contains(t, reqs[0].Messages[0].Content, `"step": "analysis"`)
	assert.Contains(t, reqs[1].Messages[0].Content, "--- Result 2 (get_superclasses) ---")
}

func TestAsk_MultiStepPartial(t *testing.T) {
	plan := `[{"function": "get_superclasses", "arguments": ["Nope"]}, {"step": "analysis"}, {"step": "mystery"}]`
	f := newFixture(t, testutil.Reply(plan, "Nothing to compare."))

	ans := f.agent.Answer(context.Background(), "Give me an overview of Nope")
	assert.Equal(t, agent.StatusPartial, ans.Status)
	assert.Contains(t, ans.Text, "### 1. get_superclasses\nClass 'Nope' not found.")
	assert.True(t, strings.HasSuffix(ans.Text, "Analysis:\n\nNothing to compare."))

	reqs := f.llm.Requests()
	require.Len(t, reqs, 2)
	assert.Contains(t, reqs[1].Messages[0].Content, "Analyze these ontology query results and Analyze and synthesize the results.")
}

func TestAsk_MultiStepDisabled(t *testing.T) {
	f := newFixture(t, testutil.Reply(`{"function":"list_classes","arguments":[]}`), agent.WithMultiStep(false))

	ans := f.agent.Answer(context.Background(), "Give me a comprehensive overview of equity")
	assert.Equal(t, agent.RoutePlan, ans.Route)
	assert.NotContains(t, f.llm.Requests()[0].Messages[0].Content, `"step": "analysis"`)
}

func TestAsk_SwitchModuleSet(t *testing.T) {
	f := newFixture(t, testutil.Reply())

	ans := f.agent.Answer(context.Background(), "Please switch to banking")
	assert.Equal(t, agent.RouteModuleSwitch, ans.Route)
	assert.Equal(t, dispatch.StatusOK, ans.Status)
	assert.True(t, strings.HasPrefix(ans.Text, "Module set switched.\n\nSwitched to banking (Banking Only)"), ans.Text)
	assert.Contains(t, ans.Text, "New stats:\nOntology statistics (Banking Only):")
	assert.Equal(t, ontology.SetBanking, f.store.Current().Name)
	assert.Zero(t, f.llm.CallCount(), "module requests never reach the planner")

	ans = f.agent.Answer(context.Background(), "use core modules")
	assert.Equal(t, dispatch.StatusOK, ans.Status)
	assert.Equal(t, ontology.SetCore, f.store.Current().Name)
}

func TestAsk_SwitchFailures(t *testing.T) {
	f := newFixture(t, testutil.Reply())
	before := f.store.Graph()

	ans := f.agent.Answer(context.Background(), "load securities")
	assert.Equal(t, "Invalid module set 'securities'. Available: banking, comprehensive, core", ans.Text)
	assert.Equal(t, dispatch.StatusBadRequest, ans.Status)

	ans = f.agent.Answer(context.Background(), "switch to comprehensive")
	assert.Equal(t, agent.StatusError, ans.Status)
	assert.True(t, strings.HasPrefix(ans.Text, "Error switching module set: "))
	assert.Contains(t, ans.Text, "The previous module set is still loaded.")
	assert.Same(t, before, f.store.Graph())
}

func TestAsk_ModuleInfo(t *testing.T) {
	f := newFixture(t, testutil.Reply())

	got := f.agent.Ask(context.Background(), "What modules are loaded?")
	assert.True(t, strings.HasPrefix(got, "Current module set: Core Financial Concepts (core)\n"), got)
	assert.Contains(t, got, "Current stats:\nOntology statistics (Core Financial Concepts):\nClasses: 17")
	assert.Contains(t, got, "\n  * core: Core Financial Concepts (3 modules)")
	assert.Contains(t, got, "\n    banking: Banking Only (1 modules)\n      Accounting subset.")
	assert.Less(t, strings.Index(got, "banking:"), strings.Index(got, "comprehensive:"))
}

func TestAsk_CompareModules(t *testing.T) {
	f := newFixture(t, testutil.Reply())

	got := f.agent.Ask(context.Background(), "compare the modules")
	assert.Equal(t, "Module set comparison: core vs comprehensive\n"+
		"  core: 3 modules\n"+
		"  comprehensive: 10 modules\n"+
		"  Common modules: 3\n"+
		"  Overlap: 30.0%\n\n"+
		"Additional in comprehensive:\n"+
		"  - BE/A.rdf\n  - BE/B.rdf\n  - FBC/C.rdf\n  - FBC/D.rdf\n  - FND/E.rdf\n"+
		"  ... and 2 more", got)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	f := newFixture(t, testutil.Reply())
	assert.Equal(t, "Please ask a question.", f.agent.Ask(context.Background(), "   "))
	assert.Zero(t, f.llm.CallCount())
}

func TestAsk_Audit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")
	sink, err := audit.NewFileSink(path)
	require.NoError(t, err)
	rec := audit.NewRecorder(sink, nil)

	f := newFixture(t, testutil.Reply(`{"function":"get_subclasses","arguments":["Party"]}`), agent.WithRecorder(rec))
	f.agent.Ask(context.Background(), "What are the subclasses of Party?")
	f.agent.Ask(context.Background(), "available modules")
	require.NoError(t, rec.Close())

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var entries []audit.Entry
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		var e audit.Entry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		entries = append(entries, e)
	}
	require.Len(t, entries, 2)

	assert.Equal(t, "What are the subclasses of Party?", entries[0].Question)
	assert.Equal(t, "get_subclasses", entries[0].Function)
	assert.Equal(t, []string{"Party"}, entries[0].Arguments)
	assert.Equal(t, "Subclasses of 'Party':\n  - Organization\n  - Owner", entries[0].Output)
	assert.Contains(t, entries[0].RawPlan, "get_subclasses")
	assert.Equal(t, agent.RouteModuleInfo, entries[1].Route)
	assert.Equal(t, rec.SessionID(), entries[1].SessionID)
}
