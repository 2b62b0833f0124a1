package dispatch

import (
	"context"

	"github.com/mattjoyce/polyc/internal/coffee"
	"github.com/mattjoyce/polyc/internal/less"
	"github.com/mattjoyce/polyc/internal/transpile"
)

//go:generate mockgen -destination=mocks/mock_dispatch.go -package=mocks github.com/mattjoyce/polyc/internal/dispatch CoffeeCompiler,LessRenderer,Transpiler,Detector

// CoffeeCompiler compiles CoffeeScript; failures are *coffee.Error.
type CoffeeCompiler interface {
	Compile(ctx context.Context, code string, opts coffee.Options) (string, error)
}

// LessRenderer renders Less; failures are *less.Error.
type LessRenderer interface {
	Render(ctx context.Context, code string, opts less.Options) (string, error)
}

// Transpiler lowers JS-family source to CommonJS.
type Transpiler interface {
	Transpile(code, fileName string) (*transpile.Output, error)
}

// Detector extracts module specifiers from compiled JavaScript.
type Detector interface {
	Detect(src string) ([]string, error)
}
