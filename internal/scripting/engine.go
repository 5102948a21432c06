package scripting

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

//go:embed lua/*.lua
var builtin embed.FS

// Engine wraps a single gopher-lua VM for gameplay formulas.
// Single-goroutine access only (game loop).
type Engine struct {
	vm      *lua.LState
	log     *zap.Logger
	missing map[string]bool // functions already reported as absent
}

// NewEngine creates a Lua engine with the built-in scripts loaded, then every
// .lua file in scriptsDir on top of them. An empty or missing scriptsDir
// leaves the built-ins in effect.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, missing: make(map[string]bool)}

	if err := e.loadBuiltin(); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load builtin scripts: %w", err)
	}
	if scriptsDir != "" {
		if err := e.loadDir(scriptsDir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

func (e *Engine) loadBuiltin() error {
	names, err := fs.Glob(builtin, "lua/*.lua")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		src, err := builtin.ReadFile(name)
		if err != nil {
			return err
		}
		if err := e.vm.DoString(string(src)); err != nil {
			return fmt.Errorf("load %s: %w", path.Base(name), err)
		}
		e.log.Debug("loaded builtin lua script", zap.String("file", name))
	}
	return nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
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

// ContactContext holds pre-packed data for a contact damage calculation.
type ContactContext struct {
	Amount       int  // base damage of the dealer
	Expend       bool // dealer is consumed on impact
	TargetHP     int
	TargetMax    int
	TargetPlayer bool
}

// CalcContactDamage calls the Lua calc_contact_damage function. Without the
// function, or when it fails, the dealer's base amount is used.
func (e *Engine) CalcContactDamage(ctx ContactContext) int {
	fn := e.lookup("calc_contact_damage")
	if fn == lua.LNil {
		return ctx.Amount
	}

	t := e.vm.NewTable()
	t.RawSetString("amount", lua.LNumber(ctx.Amount))
	t.RawSetString("expend", lua.LBool(ctx.Expend))
	t.RawSetString("target_hp", lua.LNumber(ctx.TargetHP))
	t.RawSetString("target_max", lua.LNumber(ctx.TargetMax))
	t.RawSetString("target_player", lua.LBool(ctx.TargetPlayer))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_contact_damage error", zap.Error(err))
		return ctx.Amount
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua calc_contact_damage returned non-number",
			zap.String("type", result.Type().String()))
		return ctx.Amount
	}
	return max(int(n), 0)
}

// WaveSize calls the Lua wave_size function: how many enemies wave brings.
func (e *Engine) WaveSize(wave int) int {
	if e.lookup("wave_size") == lua.LNil {
		return defaultWaveSize(wave)
	}
	n, err := e.callIntFunc("wave_size", wave)
	if err != nil {
		return defaultWaveSize(wave)
	}
	return max(n, 0)
}

func defaultWaveSize(wave int) int { return 3 + 2*wave }

// lookup returns a global Lua function, or LNil after logging its absence
// once per name.
func (e *Engine) lookup(name string) lua.LValue {
	fn := e.vm.GetGlobal(name)
	if _, ok := fn.(*lua.LFunction); ok {
		return fn
	}
	if !e.missing[name] {
		e.missing[name] = true
		e.log.Warn("lua function not found, using fallback", zap.String("name", name))
	}
	return lua.LNil
}

// callIntFunc calls a Lua function with int args and returns an int result.
func (e *Engine) callIntFunc(name string, args ...int) (int, error) {
	fn := e.vm.GetGlobal(name)

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = lua.LNumber(a)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return 0, err
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return int(lua.LVAsNumber(result)), nil
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
