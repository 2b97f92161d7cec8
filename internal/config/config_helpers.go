package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
	"gopkg.in/yaml.v3"
)

const schemaSource = `
#Job: {
	sourceFiles: string & !=""
	template:    string & !=""
	outputFile?: string & !=""
	outputDir?:  string & !=""
	extension?:  string
	filter?:     string & !=""
	gitignore?:  bool
}

#Config: {
	configVersion?: string
	lua?: {
		timeoutMs?:        int & >=0
		instructionLimit?: int & >=0
		memoryLimitBytes?: int & >=0
	}
	jobs: [...#Job]
}
`

// compileConfig loads a JSON, CUE or YAML config and unifies it with the
// closed schema.
func compileConfig(path string) (cue.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to read config: %w", err)
	}
	ctx := cuecontext.New()
	var v cue.Value
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		expr, err := cuejson.Extract(path, data)
		if err != nil {
			return cue.Value{}, fmt.Errorf("invalid config: %v", err)
		}
		v = ctx.BuildExpr(expr)
	case ".cue":
		v = ctx.CompileBytes(data, cue.Filename(path))
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return cue.Value{}, fmt.Errorf("invalid config: %v", err)
		}
		v = ctx.Encode(doc)
	default:
		return cue.Value{}, errors.New("unsupported config format: expected .json, .cue, .yaml or .yml")
	}
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("invalid config: %v", err)
	}
	if f := v.LookupPath(cue.ParsePath("jobs")); !f.Exists() {
		return cue.Value{}, errors.New("missing required field: jobs")
	}
	schema := ctx.CompileString(schemaSource).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("config schema: %v", err)
	}
	u := schema.Unify(v)
	if err := u.Validate(cue.Concrete(true)); err != nil {
		return cue.Value{}, fmt.Errorf("invalid config: %v", err)
	}
	return u, nil
}
