package scenario

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive
)

func writeScenarioFixture(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.lua")
	if err := os.WriteFile(path, []byte(source), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadScenarioRecordsSteps(t *testing.T) {
	g := NewWithT(t)

	path := writeScenarioFixture(t, `local scene = Scenario.new("addition")
scene:press("5", "+", 3, "=")
scene:keys("Escape")
scene:expect({ current = "0", previous = "", awaiting = false })
scene:clear()
return scene
`)

	scenario, err := LoadScenarioFromFile(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(scenario.Name).To(Equal("addition"))
	g.Expect(scenario.Steps).To(HaveLen(4))

	g.Expect(scenario.Steps[0]).To(And(
		HaveField("Kind", StepPress),
		HaveField("Inputs", Equal([]string{"5", "+", "3", "="})),
		HaveField("Line", 2),
	))
	g.Expect(scenario.Steps[1]).To(And(
		HaveField("Kind", StepKeys),
		HaveField("Inputs", Equal([]string{"Escape"})),
	))
	g.Expect(scenario.Steps[2].Kind).To(Equal(StepExpect))
	g.Expect(scenario.Steps[2].Expect).To(Equal(map[string]any{
		"current":  "0",
		"previous": "",
		"awaiting": false,
	}))
	g.Expect(scenario.Steps[3]).To(And(
		HaveField("Kind", StepClear),
		HaveField("Line", 5),
	))
}

func TestLoadScenarioSupportsChaining(t *testing.T) {
	g := NewWithT(t)

	scenario, err := LoadScenarioFromSource("chain", `return Scenario.new():press("1"):press("+"):expect({ current = 1 })`)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(scenario.Name).To(Equal("chain"))
	g.Expect(scenario.Steps).To(HaveLen(3))
	g.Expect(scenario.Steps[2].Expect).To(HaveKeyWithValue("current", "1"))
}

func TestLoadScenarioDefaultsNameToFile(t *testing.T) {
	g := NewWithT(t)

	path := writeScenarioFixture(t, `return Scenario.new():press("1")`)
	scenario, err := LoadScenarioFromFile(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(scenario.Name).To(Equal("fixture"))
}

func TestLoadScenarioRejectsBadScripts(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "missing return", source: `Scenario.new("x")`, want: "must return Scenario"},
		{name: "returns table", source: `return {}`, want: "must return Scenario"},
		{name: "unknown expect field", source: `return Scenario.new():expect({ display = "0" })`, want: "unknown field display"},
		{name: "wrong expect type", source: `return Scenario.new():expect({ awaiting = "yes" })`, want: "awaiting must be a boolean"},
		{name: "empty expect", source: `return Scenario.new():expect({})`, want: "at least one field"},
		{name: "press without inputs", source: `return Scenario.new():press()`, want: "press needs at least one input"},
		{name: "press with table", source: `return Scenario.new():press({ "1" })`, want: "string expected"},
		{name: "syntax error", source: `return Scenario.new(`, want: "load lua"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			_, err := LoadScenarioFromSource(tt.name, tt.source)
			g.Expect(err).To(MatchError(ContainSubstring(tt.want)))
		})
	}
}
