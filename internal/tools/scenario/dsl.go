package scenario

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

var expectFields = map[string]lua.Type{
	"current":  lua.TypeString,
	"previous": lua.TypeString,
	"operator": lua.TypeString,
	"awaiting": lua.TypeBoolean,
}

// LoadScenarioFromFile runs the Lua script at path and returns the Scenario
// it builds. Scripts without a name are named after the file.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	scenario, err := loadScenario(func(state *lua.State) error {
		return lua.LoadFile(state, path, "t")
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

// LoadScenarioFromSource runs Lua source and returns the Scenario it builds.
func LoadScenarioFromSource(name, source string) (*Scenario, error) {
	scenario, err := loadScenario(func(state *lua.State) error {
		return lua.LoadBuffer(state, source, name, "t")
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = name
	}
	return scenario, nil
}

func loadScenario(load func(*lua.State) error) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerLuaTypes(state)

	if err := load(state); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	return scenario, nil
}

func registerLuaTypes(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, scenarioConstructor, 0)
	state.SetGlobal("Scenario")
}

var scenarioConstructor = []lua.RegistryFunction{
	{Name: "new", Function: scenarioNew},
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "press", Function: scenarioPress},
	{Name: "keys", Function: scenarioKeys},
	{Name: "expect", Function: scenarioExpect},
	{Name: "clear", Function: scenarioClear},
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	state.PushUserData(&Scenario{Name: name})
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

// scenarioPress records action names or shorthand characters. Numbers are
// accepted so that scene:press(1, 2) reads naturally.
func scenarioPress(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(state, scenario, Step{Kind: StepPress, Inputs: checkInputs(state, "press")})
	return returnSelf(state)
}

func scenarioKeys(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(state, scenario, Step{Kind: StepKeys, Inputs: checkInputs(state, "keys")})
	return returnSelf(state)
}

func scenarioClear(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(state, scenario, Step{Kind: StepClear})
	return returnSelf(state)
}

func scenarioExpect(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)

	expect := map[string]any{}
	state.PushNil()
	for state.Next(2) {
		if state.TypeOf(-2) != lua.TypeString {
			lua.ArgumentError(state, 2, "expect keys must be field names")
		}
		key, _ := state.ToString(-2)
		want, ok := expectFields[key]
		if !ok {
			lua.Errorf(state, "expect: unknown field %s", key)
		}
		switch {
		case want == lua.TypeBoolean && state.TypeOf(-1) == lua.TypeBoolean:
			expect[key] = state.ToBoolean(-1)
		case want == lua.TypeString && (state.TypeOf(-1) == lua.TypeString || state.TypeOf(-1) == lua.TypeNumber):
			value, _ := state.ToString(-1)
			expect[key] = value
		case want == lua.TypeBoolean:
			lua.Errorf(state, "expect: field %s must be a boolean", key)
		default:
			lua.Errorf(state, "expect: field %s must be a string", key)
		}
		state.Pop(1)
	}
	if len(expect) == 0 {
		lua.ArgumentError(state, 2, "expect needs at least one field")
	}

	appendStep(state, scenario, Step{Kind: StepExpect, Expect: expect})
	return returnSelf(state)
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func checkInputs(state *lua.State, method string) []string {
	top := state.Top()
	if top < 2 {
		lua.Errorf(state, "%s needs at least one input", method)
	}
	inputs := make([]string, 0, top-1)
	for index := 2; index <= top; index++ {
		inputs = append(inputs, lua.CheckString(state, index))
	}
	return inputs
}

func appendStep(state *lua.State, scenario *Scenario, step Step) {
	step.Line = callerLine(state)
	scenario.Steps = append(scenario.Steps, step)
}

// callerLine reports the script line of the current method call, or 0.
func callerLine(state *lua.State) int {
	frame, ok := lua.Stack(state, 1)
	if !ok {
		return 0
	}
	debug, ok := lua.Info(state, "l", frame)
	if !ok {
		return 0
	}
	return debug.CurrentLine
}

func returnSelf(state *lua.State) int {
	state.PushValue(1)
	return 1
}
