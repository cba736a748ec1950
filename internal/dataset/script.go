package dataset

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dop251/goja"

	"github.com/classmap/runtime/internal/errhandling"
	"github.com/classmap/runtime/internal/pathutil"
)

// Error codes for the derived-field script
const (
	ErrCodeScriptEmpty       = "SCRIPT_EMPTY"
	ErrCodeScriptTooLong     = "SCRIPT_TOO_LONG"
	ErrCodeCompilationFailed = "COMPILATION_FAILED"
	ErrCodeMissingTransform  = "MISSING_TRANSFORM"
	ErrCodeNotFunction       = "NOT_FUNCTION"
	ErrCodeExecutionFailed   = "EXECUTION_FAILED"
)

// MaxScriptLength is the maximum allowed script length in bytes (100KB).
const MaxScriptLength = 100 * 1024

// FieldScript runs a user-supplied JavaScript transform(record) function
// once per record at load time, producing derived fields. The function
// receives the record as an object and returns an object of additional
// fields; canonical fields cannot be overridden.
//
// Thread safety: goja runtimes are not goroutine-safe. A FieldScript is
// owned by a single load and must not be shared across concurrent loads.
type FieldScript struct {
	source      string
	runtime     *goja.Runtime
	transformFn goja.Callable
}

// NewFieldScript compiles an inline script and verifies it defines a
// transform function.
func NewFieldScript(source string) (*FieldScript, error) {
	if strings.TrimSpace(source) == "" {
		return nil, errhandling.NewInputError(ErrCodeScriptEmpty, "script cannot be empty", nil)
	}
	if len(source) > MaxScriptLength {
		return nil, errhandling.NewInputError(ErrCodeScriptTooLong,
			fmt.Sprintf("script is %d bytes, max %d", len(source), MaxScriptLength), nil)
	}
	if !utf8.ValidString(source) {
		return nil, errhandling.NewInputError(ErrCodeCompilationFailed, "script is not valid UTF-8", nil)
	}

	rt := goja.New()
	if _, err := rt.RunString(source); err != nil {
		return nil, errhandling.NewInputError(ErrCodeCompilationFailed,
			fmt.Sprintf("script compilation failed: %v", err), err)
	}

	transformVal := rt.Get("transform")
	if transformVal == nil || goja.IsUndefined(transformVal) || goja.IsNull(transformVal) {
		return nil, errhandling.NewInputError(ErrCodeMissingTransform,
			"script must define a transform(record) function", nil)
	}
	transformFn, ok := goja.AssertFunction(transformVal)
	if !ok {
		return nil, errhandling.NewInputError(ErrCodeNotFunction, "transform is not a function", nil)
	}

	return &FieldScript{source: source, runtime: rt, transformFn: transformFn}, nil
}

// NewFieldScriptFromFile compiles a script read from a file.
func NewFieldScriptFromFile(path string) (*FieldScript, error) {
	if err := pathutil.ValidateFilePath(path); err != nil {
		return nil, errhandling.NewInputError(ErrCodeCompilationFailed, err.Error(), err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errhandling.NewIOError(ErrCodeCompilationFailed,
			fmt.Sprintf("reading script file %s", path), err)
	}
	return NewFieldScript(string(content))
}

// Apply runs transform against one record map and returns the derived
// fields. Keys colliding with canonical field names are dropped, and a
// nil or non-object return yields no derived fields.
func (f *FieldScript) Apply(record map[string]interface{}) (map[string]interface{}, error) {
	result, err := f.transformFn(goja.Undefined(), f.runtime.ToValue(record))
	if err != nil {
		return nil, errhandling.NewInputError(ErrCodeExecutionFailed,
			fmt.Sprintf("transform failed: %v", err), err)
	}

	exported := result.Export()
	fields, ok := exported.(map[string]interface{})
	if !ok {
		return nil, nil
	}

	extra := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		switch k {
		case FieldClassification, FieldAge, FieldCounty, FieldCountyCode, FieldState, "ageBand":
			continue
		}
		extra[k] = v
	}
	if len(extra) == 0 {
		return nil, nil
	}
	return extra, nil
}
