package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for load-time spawn hooks.
// Game-loop goroutine only; scripts load once at startup.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine starts a VM and loads every script under scriptsDir.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	// Core helpers load first so feature scripts can use them.
	corePath := filepath.Join(scriptsDir, "core")
	if err := e.loadDir(corePath); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load core scripts: %w", err)
	}

	for _, sub := range []string{"spawn", "behavior", "maps"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir runs every .lua file in one directory. A missing directory is
// fine: not every project ships every hook category.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// SpawnContext holds pre-packed data for an object spawn hook.
type SpawnContext struct {
	Template string
	Kind     string
	MapID    int
	MapName  string
	X, Y     int
	Props    map[string]string
}

// SpawnResult carries customizations returned by a spawn hook. Zero values
// mean "keep the template default".
type SpawnResult struct {
	Animation string            // initial animation name override
	Facing    string            // "south", "north", "east", "west"
	Solid     bool              // force the object solid
	Props     map[string]string // property overrides merged over the template's
	Cancel    bool              // skip spawning this object entirely
}

// OnSpawn calls a template's Lua spawn hook. A missing function or a script
// error falls back to the template defaults; spawning never fails on a bad
// hook.
func (e *Engine) OnSpawn(fnName string, ctx SpawnContext) SpawnResult {
	fn := e.vm.GetGlobal(fnName)
	if fn == lua.LNil {
		e.log.Warn("lua spawn hook not found", zap.String("name", fnName))
		return SpawnResult{}
	}

	t := e.vm.NewTable()
	t.RawSetString("template", lua.LString(ctx.Template))
	t.RawSetString("kind", lua.LString(ctx.Kind))
	t.RawSetString("map_id", lua.LNumber(ctx.MapID))
	t.RawSetString("map_name", lua.LString(ctx.MapName))
	t.RawSetString("x", lua.LNumber(ctx.X))
	t.RawSetString("y", lua.LNumber(ctx.Y))

	props := e.vm.NewTable()
	for k, v := range ctx.Props {
		props.RawSetString(k, lua.LString(v))
	}
	t.RawSetString("props", props)

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua spawn hook error", zap.String("name", fnName), zap.Error(err))
		return SpawnResult{}
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	if result == lua.LNil {
		return SpawnResult{}
	}

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua spawn hook returned non-table", zap.String("name", fnName))
		return SpawnResult{}
	}

	res := SpawnResult{
		Animation: lStr(rt, "animation"),
		Facing:    lStr(rt, "facing"),
		Solid:     rt.RawGetString("solid") == lua.LTrue,
		Cancel:    rt.RawGetString("cancel") == lua.LTrue,
	}

	if overrides, ok := rt.RawGetString("props").(*lua.LTable); ok {
		res.Props = make(map[string]string)
		overrides.ForEach(func(k, v lua.LValue) {
			res.Props[lua.LVAsString(k)] = lua.LVAsString(v)
		})
	}

	return res
}

// MapLoadedHook calls the optional Lua on_map_loaded(map_id, name) callback.
func (e *Engine) MapLoadedHook(mapID int, name string) {
	fn := e.vm.GetGlobal("on_map_loaded")
	if fn == lua.LNil {
		return
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(mapID), lua.LString(name)); err != nil {
		e.log.Error("lua on_map_loaded error", zap.Error(err), zap.Int("map_id", mapID))
	}
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

func (e *Engine) Close() {
	e.vm.Close()
}
