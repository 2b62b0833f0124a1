package less

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
)

// browserPrelude gives the browser build the globals it reads at load time.
// onReady is off so the build never scans a document for stylesheets.
const browserPrelude = `
var window = this;
window.window = window;
window.location = { href: "file:///", protocol: "file:", hostname: "", port: "", hash: "", search: "" };
window.document = {
  currentScript: null,
  getElementsByTagName: function () { return []; },
  querySelectorAll: function () { return []; },
  createElement: function () { return { style: {}, childNodes: [], appendChild: function () {}, setAttribute: function () {} }; },
  createTextNode: function () { return {}; },
  head: { appendChild: function () {}, removeChild: function () {} }
};
window.less = { env: "production", logLevel: 0, async: false, fileAsync: false, onReady: false, useFileCache: false };
`

// importPlugin installs a file manager that reads @import targets through
// __polycReadImport instead of XHR.
const importPlugin = `
(function (global, less) {
  var Base = less.FileManager;
  function ImportManager() {}
  ImportManager.prototype = Base ? new Base() : {};
  ImportManager.prototype.supports = function () { return true; };
  ImportManager.prototype.supportsSync = function () { return false; };
  ImportManager.prototype.loadFile = function (filename, currentDirectory, options) {
    var paths = (options && options.paths) || [];
    var res = global.__polycReadImport(filename, currentDirectory || "", paths);
    if (res.error) {
      return Promise.reject({ type: "File", message: res.error });
    }
    return Promise.resolve({ filename: res.filename, contents: res.contents });
  };
  global.__polycImportPlugin = {
    install: function (less, pluginManager) {
      pluginManager.addFileManager(new ImportManager());
    }
  };
})(this, less);
`

// ResolveImport finds an @import target. Relative names are tried against
// the importing file's directory first, then each search path; names without
// an extension also try ".less".
func ResolveImport(filename, currentDirectory string, paths []string) (string, []byte, error) {
	var candidates []string
	if filepath.IsAbs(filename) {
		candidates = append(candidates, filename)
	} else {
		if currentDirectory != "" {
			candidates = append(candidates, filepath.Join(currentDirectory, filename))
		}
		for _, p := range paths {
			candidates = append(candidates, filepath.Join(p, filename))
		}
		if currentDirectory == "" && len(paths) == 0 {
			candidates = append(candidates, filename)
		}
	}

	var tried []string
	for _, c := range candidates {
		names := []string{c}
		if filepath.Ext(c) == "" {
			names = append(names, c+".less")
		}
		for _, name := range names {
			data, err := os.ReadFile(name)
			if err == nil {
				return name, data, nil
			}
			tried = append(tried, name)
		}
	}

	return "", nil, fmt.Errorf("'%s' wasn't found. Tried - %s", filename, strings.Join(tried, ","))
}

func readImportFunc(vm *goja.Runtime) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		filename := call.Argument(0).String()
		currentDirectory := call.Argument(1).String()

		var paths []string
		if err := vm.ExportTo(call.Argument(2), &paths); err != nil {
			paths = nil
		}

		resolved, data, err := ResolveImport(filename, currentDirectory, paths)
		if err != nil {
			return vm.ToValue(map[string]any{"error": err.Error()})
		}
		return vm.ToValue(map[string]any{
			"filename": resolved,
			"contents": string(data),
		})
	}
}
