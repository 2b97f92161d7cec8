package stage

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

const (
	sandboxTimeoutViolation     = "sandbox timeout"
	sandboxInstructionViolation = "sandbox instruction limit"
	sandboxMemoryViolation      = "sandbox memory limit"
)

// LuaLibs selects the standard libraries opened in the sandbox.
type LuaLibs struct {
	Base   bool
	Table  bool
	String bool
	Math   bool
}

// LuaSandbox bounds filter scripts. Zero limits disable the check.
type LuaSandbox struct {
	TimeoutMs        int
	InstructionLimit int
	MemoryLimitBytes int
	Libs             LuaLibs
}

// DefaultLuaSandbox returns the limits used for job filters.
func DefaultLuaSandbox() LuaSandbox {
	return LuaSandbox{
		TimeoutMs:        2000,
		InstructionLimit: 1000000,
		MemoryLimitBytes: 8 << 20,
		Libs:             LuaLibs{Base: true, Table: true, String: true, Math: true},
	}
}

func newSandboxLuaState(seedKey string, cfg LuaSandbox) *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:     true,
		RegistrySize:     256,
		RegistryMaxSize:  registryMaxFromMemory(cfg.MemoryLimitBytes),
		RegistryGrowStep: 0,
	})
	openLib := func(name string, f lua.LGFunction) {
		L.Push(L.NewFunction(f))
		L.Push(lua.LString(name))
		L.Call(1, 0)
	}
	if cfg.Libs.Base {
		openLib("base", lua.OpenBase)
	}
	if cfg.Libs.String {
		openLib("string", lua.OpenString)
	}
	if cfg.Libs.Table {
		openLib("table", lua.OpenTable)
	}
	if cfg.Libs.Math {
		openLib("math", lua.OpenMath)
		installSeededRandom(L, seedFor(seedKey))
	}
	return L
}

func registryMaxFromMemory(memoryLimitBytes int) int {
	if memoryLimitBytes <= 0 {
		return 256
	}
	n := memoryLimitBytes / 64
	if n < 128 {
		n = 128
	}
	if n > 4096 {
		n = 4096
	}
	return n
}

func seedFor(key string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}

// installSeededRandom makes math.random reproducible per record.
func installSeededRandom(L *lua.LState, seed int64) {
	mathTbl, ok := L.GetGlobal("math").(*lua.LTable)
	if !ok || mathTbl == nil {
		return
	}
	rng := rand.New(rand.NewSource(seed))
	mathTbl.RawSetString("random", L.NewFunction(func(L *lua.LState) int {
		switch L.GetTop() {
		case 0:
			L.Push(lua.LNumber(rng.Float64()))
		case 1:
			hi := L.CheckInt(1)
			if hi < 1 {
				L.ArgError(1, "interval is empty")
				return 0
			}
			L.Push(lua.LNumber(rng.Intn(hi) + 1))
		default:
			lo, hi := L.CheckInt(1), L.CheckInt(2)
			if hi < lo {
				L.ArgError(2, "interval is empty")
				return 0
			}
			L.Push(lua.LNumber(rng.Intn(hi-lo+1) + lo))
		}
		return 1
	}))
	mathTbl.RawSetString("randomseed", L.NewFunction(func(*lua.LState) int { return 0 }))
}

// instructionLimitWouldTrip is a static estimate: gopher-lua has no
// instruction hook, so loops are priced up front.
func instructionLimitWouldTrip(code string, instructionLimit int) bool {
	if instructionLimit <= 0 {
		return false
	}
	cost := len(code) * 10
	lower := strings.ToLower(code)
	if strings.Contains(lower, "while ") || strings.Contains(lower, "repeat") || strings.Contains(lower, "for ") {
		cost += 1000000
	}
	return cost > instructionLimit
}

func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadline") || strings.Contains(msg, "context canceled")
}

// runLuaPredicate evaluates code with the given globals and reports its
// truthiness. A sandbox violation is returned as an error naming it.
func runLuaPredicate(ctx context.Context, cfg LuaSandbox, seedKey string, globals map[string]any, code string) (bool, error) {
	if instructionLimitWouldTrip(code, cfg.InstructionLimit) {
		return false, errors.New(sandboxInstructionViolation)
	}
	L := newSandboxLuaState(seedKey, cfg)
	defer L.Close()

	if cfg.TimeoutMs > 0 {
		tctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.TimeoutMs)*time.Millisecond)
		defer cancel()
		L.SetContext(tctx)
	} else {
		L.SetContext(ctx)
	}
	for k, v := range globals {
		L.SetGlobal(k, toLValue(L, v))
	}
	fn, err := L.LoadString(code)
	if err != nil {
		return false, err
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		if isTimeoutError(err) {
			return false, errors.New(sandboxTimeoutViolation)
		}
		if strings.Contains(strings.ToLower(err.Error()), "registry overflow") {
			return false, errors.New(sandboxMemoryViolation)
		}
		return false, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	return lua.LVAsBool(ret), nil
}

// toLValue converts a Go value to a Lua value.
func toLValue(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case string:
		return lua.LString(x)
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(float64(x))
	case float64:
		return lua.LNumber(x)
	case map[string]any:
		tbl := L.NewTable()
		for k, v2 := range x {
			tbl.RawSetString(k, toLValue(L, v2))
		}
		return tbl
	case []string:
		tbl := L.NewTable()
		for i, s := range x {
			tbl.RawSetInt(i+1, lua.LString(s))
		}
		return tbl
	case []any:
		tbl := L.NewTable()
		for i, v2 := range x {
			tbl.RawSetInt(i+1, toLValue(L, v2))
		}
		return tbl
	default:
		return lua.LString(fmt.Sprint(x))
	}
}

// containsReturn reports whether the code has a "return" keyword outside
// string literals and comments.
func containsReturn(s string) bool {
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '"' || c == '\'':
			i = skipQuoted(s, i)
		case c == '[' && longBracketLevel(s, i) >= 0:
			i = skipLongBracket(s, i)
		case strings.HasPrefix(s[i:], "--"):
			if longBracketLevel(s, i+2) >= 0 {
				i = skipLongBracket(s, i+2)
				continue
			}
			if nl := strings.IndexByte(s[i:], '\n'); nl >= 0 {
				i += nl + 1
			} else {
				i = len(s)
			}
		case isIdentByte(c):
			j := i
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			if s[i:j] == "return" {
				return true
			}
			i = j
		default:
			i++
		}
	}
	return false
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// skipQuoted returns the index after the quoted string starting at i.
func skipQuoted(s string, i int) int {
	q := s[i]
	for i++; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case q:
			return i + 1
		}
	}
	return len(s)
}

// longBracketLevel returns n for an opening "[" "="*n "[" at i, else -1.
func longBracketLevel(s string, i int) int {
	if i >= len(s) || s[i] != '[' {
		return -1
	}
	j := i + 1
	for j < len(s) && s[j] == '=' {
		j++
	}
	if j < len(s) && s[j] == '[' {
		return j - i - 1
	}
	return -1
}

// skipLongBracket returns the index after the long string or comment
// opening at i.
func skipLongBracket(s string, i int) int {
	level := longBracketLevel(s, i)
	closing := "]" + strings.Repeat("=", level) + "]"
	body := i + level + 2
	if end := strings.Index(s[body:], closing); end >= 0 {
		return body + end + len(closing)
	}
	return len(s)
}
