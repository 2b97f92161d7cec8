package stage

import (
	"github.com/flarebyte/gendoc/internal/extract"
	"github.com/flarebyte/gendoc/internal/tmpl"
)

// Deps carries what a stage factory may need. Each factory reads only its
// own fields.
type Deps struct {
	Options   Options
	Extractor extract.Extractor
	Filter    string
	Sandbox   LuaSandbox
	Template  string
	Engine    tmpl.Engine
	Extension string
}

// Factory builds a stage instance for one job.
type Factory func(deps Deps) (Stage, error)

var registry = map[string]Factory{}

// Register adds a stage factory.
func Register(name string, f Factory) {
	registry[name] = f
}

// Build instantiates a registered stage by name.
func Build(name string, deps Deps) (Stage, error) {
	f, ok := registry[name]
	if !ok {
		return nil, ErrUnknown{name: name}
	}
	deps.Options = deps.Options.normalized()
	if deps.Sandbox == (LuaSandbox{}) {
		deps.Sandbox = DefaultLuaSandbox()
	}
	return f(deps)
}

// ErrUnknown is returned when a stage is not found.
type ErrUnknown struct{ name string }

func (e ErrUnknown) Error() string { return "unknown stage: " + e.name }
