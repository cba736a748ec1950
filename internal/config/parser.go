package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseConfig parses and validates a configuration file. The format is
// detected from the file extension, falling back to content sniffing.
func ParseConfig(filepath string) *Result {
	result := &Result{FilePath: filepath}

	var parseResult *ParseResult
	switch DetectFormat(filepath) {
	case "json":
		parseResult = ParseJSONFile(filepath)
	case "yaml":
		parseResult = ParseYAMLFile(filepath)
	default:
		content, err := os.ReadFile(filepath)
		if err != nil {
			result.ParseErrors = append(result.ParseErrors, ParseError{
				Path:    filepath,
				Message: fmt.Sprintf("failed to read file: %v", err),
				Type:    ErrorTypeIO,
			})
			return result
		}
		contentStr := string(content)
		switch {
		case IsJSON(contentStr):
			parseResult = ParseJSONString(contentStr)
			parseResult.FilePath = filepath
		case IsYAML(contentStr):
			parseResult = ParseYAMLString(contentStr)
			parseResult.FilePath = filepath
		default:
			result.ParseErrors = append(result.ParseErrors, ParseError{
				Path:    filepath,
				Message: "unable to detect configuration format: not valid JSON or YAML",
				Type:    ErrorTypeFormat,
			})
			return result
		}
	}

	result.Data = parseResult.Data
	result.ParseErrors = parseResult.Errors
	result.Format = parseResult.Format
	if !parseResult.IsValid() {
		return result
	}

	validation := ValidateConfig(parseResult.Data)
	result.ValidationErrors = validation.Errors
	return result
}

// ParseJSONFile parses a JSON configuration file from the given path.
func ParseJSONFile(filepath string) *ParseResult {
	result := &ParseResult{FilePath: filepath, Format: "json"}

	content, err := os.ReadFile(filepath)
	if err != nil {
		result.Errors = append(result.Errors, ParseError{
			Path:    filepath,
			Message: fmt.Sprintf("failed to read file: %v", err),
			Type:    ErrorTypeIO,
		})
		return result
	}

	parsed := ParseJSONString(string(content))
	result.Data = parsed.Data
	result.Errors = parsed.Errors
	for i := range result.Errors {
		if result.Errors[i].Path == "" {
			result.Errors[i].Path = filepath
		}
	}
	return result
}

// ParseJSONString parses JSON configuration content from a string.
func ParseJSONString(content string) *ParseResult {
	result := &ParseResult{Format: "json"}

	content = strings.TrimSpace(content)
	if content == "" {
		result.Errors = append(result.Errors, ParseError{
			Message: "empty content: expected JSON object",
			Type:    ErrorTypeSyntax,
		})
		return result
	}

	var data interface{}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		result.Errors = append(result.Errors, parseJSONError(err, content))
		return result
	}
	if data == nil {
		return result
	}

	dataMap, ok := data.(map[string]interface{})
	if !ok {
		result.Errors = append(result.Errors, ParseError{
			Message: fmt.Sprintf("invalid configuration: expected JSON object, got %T", data),
			Type:    ErrorTypeFormat,
		})
		return result
	}

	result.Data = dataMap
	return result
}

// parseJSONError extracts location information from a JSON unmarshaling
// error.
func parseJSONError(err error, content string) ParseError {
	parseErr := ParseError{Message: err.Error(), Type: ErrorTypeSyntax}

	if syntaxErr, ok := err.(*json.SyntaxError); ok {
		parseErr.Line, parseErr.Column = offsetToLineColumn(content, syntaxErr.Offset)
		parseErr.Message = fmt.Sprintf("JSON syntax error at offset %d: %s", syntaxErr.Offset, syntaxErr.Error())
	}
	if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
		parseErr.Line, parseErr.Column = offsetToLineColumn(content, typeErr.Offset)
		parseErr.Message = fmt.Sprintf("type error at field '%s': expected %s, got %s",
			typeErr.Field, typeErr.Type.String(), typeErr.Value)
	}
	return parseErr
}

// offsetToLineColumn converts a byte offset to 1-based line and column.
func offsetToLineColumn(content string, offset int64) (line, column int) {
	if offset <= 0 {
		return 1, 1
	}
	line, column = 1, 1
	for i := int64(0); i < offset && i < int64(len(content)); i++ {
		if content[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}

// ParseYAMLFile parses a YAML configuration file from the given path.
func ParseYAMLFile(filepath string) *ParseResult {
	result := &ParseResult{FilePath: filepath, Format: "yaml"}

	content, err := os.ReadFile(filepath)
	if err != nil {
		result.Errors = append(result.Errors, ParseError{
			Path:    filepath,
			Message: fmt.Sprintf("failed to read file: %v", err),
			Type:    ErrorTypeIO,
		})
		return result
	}

	parsed := ParseYAMLString(string(content))
	result.Data = parsed.Data
	result.Errors = parsed.Errors
	for i := range result.Errors {
		if result.Errors[i].Path == "" {
			result.Errors[i].Path = filepath
		}
	}
	return result
}

// ParseYAMLString parses YAML configuration content from a string.
func ParseYAMLString(content string) *ParseResult {
	result := &ParseResult{Format: "yaml"}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, ParseError{
			Message: "empty content: expected YAML document",
			Type:    ErrorTypeSyntax,
		})
		return result
	}

	var data interface{}
	if err := yaml.Unmarshal([]byte(content), &data); err != nil {
		result.Errors = append(result.Errors, parseYAMLError(err))
		return result
	}
	if data == nil {
		return result
	}

	dataMap, ok := data.(map[string]interface{})
	if !ok {
		result.Errors = append(result.Errors, ParseError{
			Message: fmt.Sprintf("invalid configuration: expected YAML mapping, got %T", data),
			Type:    ErrorTypeFormat,
		})
		return result
	}

	result.Data = dataMap
	return result
}

// parseYAMLError extracts line information from a YAML unmarshaling error.
// yaml.v3 embeds it in the message as "yaml: line X: ...".
func parseYAMLError(err error) ParseError {
	parseErr := ParseError{Message: err.Error(), Type: ErrorTypeSyntax}

	if typeErr, ok := err.(*yaml.TypeError); ok {
		parseErr.Message = fmt.Sprintf("YAML type error: %s", strings.Join(typeErr.Errors, "; "))
	}
	if strings.Contains(err.Error(), "yaml: line ") {
		var line int
		if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil {
			parseErr.Line = line
		}
	}
	return parseErr
}

// DetectFormat detects the configuration format from the file extension.
// Returns "json", "yaml", or empty string when unknown.
func DetectFormat(filepath string) string {
	switch strings.ToLower(path.Ext(filepath)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// IsJSON checks whether the content looks like JSON.
func IsJSON(content string) bool {
	content = strings.TrimSpace(content)
	return strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[")
}

// IsYAML checks whether the content parses as YAML. JSON is also valid
// YAML, so check IsJSON first.
func IsYAML(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	var data interface{}
	return yaml.Unmarshal([]byte(content), &data) == nil && data != nil
}
