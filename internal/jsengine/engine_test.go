package jsengine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	_, err := Load("")
	assert.ErrorIs(t, err, ErrNoScript)

	_, err = Load(filepath.Join(t.TempDir(), "missing.js"))
	assert.ErrorContains(t, err, "failed to read engine script")

	bad := filepath.Join(t.TempDir(), "bad.js")
	require.NoError(t, os.WriteFile(bad, []byte("var = ;"), 0600))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "failed to compile engine script")

	good := filepath.Join(t.TempDir(), "good.js")
	require.NoError(t, os.WriteFile(good, []byte("var Engine = { run: function (x) { return x + 1; } };"), 0600))
	script, err := Load(good)
	require.NoError(t, err)
	assert.Equal(t, good, script.Path)

	vm := goja.New()
	require.NoError(t, script.Run(vm))
	engine, err := Global(vm, "Engine")
	require.NoError(t, err)
	run, err := Method(engine, "run")
	require.NoError(t, err)
	out, err := run(engine, vm.ToValue(41))
	require.NoError(t, err)
	assert.Equal(t, int64(42), out.ToInteger())
}

func TestGlobalAndMethodErrors(t *testing.T) {
	vm := goja.New()
	_, err := Global(vm, "Nope")
	assert.ErrorContains(t, err, "did not define Nope")

	script, err := Compile("stub.js", "var Engine = { notAFunction: 1 };")
	require.NoError(t, err)
	require.NoError(t, script.Run(vm))
	engine, err := Global(vm, "Engine")
	require.NoError(t, err)
	_, err = Method(engine, "notAFunction")
	assert.ErrorContains(t, err, "notAFunction is not a function")
}

func TestRunReportsThrow(t *testing.T) {
	script, err := Compile("throws.js", "throw new Error('boom');")
	require.NoError(t, err)
	err = script.Run(goja.New())
	assert.ErrorContains(t, err, "failed to evaluate engine script throws.js")
}

func TestThrownAndProperties(t *testing.T) {
	vm := goja.New()
	_, err := vm.RunString(`throw { message: "bad", line: 3, col: NaN, extract: ["a", null, ""], nested: { x: 1 } };`)
	require.Error(t, err)

	obj, ok := Thrown(err)
	require.True(t, ok)

	assert.Equal(t, "bad", String(obj, "message"))
	assert.Equal(t, "", String(obj, "missing"))

	line, ok := Int(obj, "line")
	assert.True(t, ok)
	assert.Equal(t, 3, line)
	_, ok = Int(obj, "col")
	assert.False(t, ok, "NaN is not an int")
	_, ok = Int(obj, "missing")
	assert.False(t, ok)

	_, ok = Object(obj, "nested")
	assert.True(t, ok)
	assert.False(t, Present(obj, "missing"))
	assert.False(t, Present(nil, "message"))

	extract := Strings(obj, "extract")
	require.Len(t, extract, 3)
	require.NotNil(t, extract[0])
	assert.Equal(t, "a", *extract[0])
	assert.Nil(t, extract[1])
	require.NotNil(t, extract[2])
	assert.Equal(t, "", *extract[2])
	assert.Nil(t, Strings(obj, "missing"))
}

func TestThrownPrimitive(t *testing.T) {
	_, err := goja.New().RunString(`throw "just a string";`)
	require.Error(t, err)
	_, ok := Thrown(err)
	assert.False(t, ok)

	_, ok = Thrown(errors.New("plain"))
	assert.False(t, ok)
}

func TestInterruptOnDone(t *testing.T) {
	vm := goja.New()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	stop := InterruptOnDone(ctx, vm)
	defer stop()

	_, err := vm.RunString(`for (;;) {}`)
	require.Error(t, err)

	cause, ok := Interrupted(err)
	require.True(t, ok)
	assert.ErrorIs(t, cause, context.DeadlineExceeded)

	_, ok = Interrupted(errors.New("other"))
	assert.False(t, ok)
}
