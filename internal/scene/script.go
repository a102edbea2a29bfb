package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Script runs Lua hooks against its owner. The chunk may define any of
// on_start, on_enable, on_disable, on_update(dt) and on_destroy; each receives
// the global table `actor` (called with dot syntax, e.g. actor.translate(0, 1, 0)).
// A hook that raises an error disables the script.
type Script struct {
	BaseComponent

	name   string
	source string
	vm     *lua.LState
	err    error
}

// NewScript creates a script from Lua source. The chunk runs on the first hook.
func NewScript(name, source string) *Script {
	return &Script{name: name, source: source}
}

func (s *Script) Name() string { return s.name }

// Err returns the error that stopped the script, if any
func (s *Script) Err() error { return s.err }

func (s *Script) load() bool {
	if s.vm != nil {
		return true
	}
	if s.err != nil || s.owner == nil {
		return false
	}
	vm := lua.NewState()
	vm.SetGlobal("actor", s.actorTable(vm))
	if err := vm.DoString(s.source); err != nil {
		vm.Close()
		s.fail(fmt.Errorf("load %s: %w", s.name, err))
		return false
	}
	s.vm = vm
	return true
}

func (s *Script) OnStart()            { s.call("on_start") }
func (s *Script) OnEnable()           { s.call("on_enable") }
func (s *Script) OnDisable()          { s.call("on_disable") }
func (s *Script) OnUpdate(dt float32) { s.call("on_update", lua.LNumber(dt)) }

func (s *Script) OnDestroy() {
	if s.vm == nil {
		return
	}
	s.call("on_destroy")
	s.vm.Close()
	s.vm = nil
}

// Global returns a global Lua value, LNil when the script is not running
func (s *Script) Global(name string) lua.LValue {
	if s.vm == nil {
		return lua.LNil
	}
	return s.vm.GetGlobal(name)
}

func (s *Script) call(hook string, args ...lua.LValue) {
	if s.err != nil || !s.load() {
		return
	}
	fn := s.vm.GetGlobal(hook)
	if fn == lua.LNil {
		return
	}
	if err := s.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...); err != nil {
		s.fail(fmt.Errorf("%s.%s: %w", s.name, hook, err))
	}
}

func (s *Script) fail(err error) {
	s.err = err
	if s.owner != nil {
		s.owner.Logger().Warn("script disabled", zap.String("script", s.name), zap.Uint32("actor", s.owner.id), zap.Error(err))
	}
}

func (s *Script) actorTable(vm *lua.LState) *lua.LTable {
	t := vm.NewTable()
	vm.SetFuncs(t, map[string]lua.LGFunction{
		"name": func(L *lua.LState) int {
			L.Push(lua.LString(s.owner.name))
			return 1
		},
		"id": func(L *lua.LState) int {
			L.Push(lua.LNumber(s.owner.id))
			return 1
		},
		"is_active": func(L *lua.LState) int {
			L.Push(lua.LBool(s.owner.IsActive()))
			return 1
		},
		"set_active": func(L *lua.LState) int {
			s.owner.SetActive(L.CheckBool(1))
			return 0
		},
		"position": func(L *lua.LState) int {
			p := s.owner.transform.Position()
			L.Push(lua.LNumber(p[0]))
			L.Push(lua.LNumber(p[1]))
			L.Push(lua.LNumber(p[2]))
			return 3
		},
		"set_position": func(L *lua.LState) int {
			s.owner.transform.SetPosition(checkVec3(L, 1))
			return 0
		},
		"translate": func(L *lua.LState) int {
			s.owner.transform.Translate(checkVec3(L, 1))
			return 0
		},
		"rotate": func(L *lua.LState) int {
			axis := checkVec3(L, 1)
			s.owner.transform.RotateAxis(axis, float32(L.CheckNumber(4)))
			return 0
		},
	})
	return t
}

func checkVec3(L *lua.LState, n int) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(L.CheckNumber(n)),
		float32(L.CheckNumber(n + 1)),
		float32(L.CheckNumber(n + 2)),
	}
}
