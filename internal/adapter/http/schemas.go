package http

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const roadProperties = `{
	"roadName": {"type": "string", "minLength": 1},
	"region": {"type": "string"},
	"accidents": {"type": "integer", "minimum": 0, "maximum": 2147483647},
	"trafficDensity": {"type": "number", "minimum": 0},
	"roadCondition": {"type": "string"},
	"lighting": {"type": "string"},
	"pedestrianInfrastructure": {"type": "string"},
	"safetyScore": {"type": "number"}
}`

var (
	addRoadSchema = `{
	"type": "object",
	"required": ["roadName", "accidents", "trafficDensity"],
	"properties": ` + roadProperties + `
}`

	updateRoadSchema = `{
	"type": "object",
	"required": ["accidents", "trafficDensity"],
	"properties": ` + roadProperties + `
}`

	hazardSchema = `{
	"type": "object",
	"required": ["roadName", "description"],
	"properties": {
		"roadName": {"type": "string", "minLength": 1},
		"description": {"type": "string", "minLength": 1},
		"latitude": {"type": "number", "minimum": -90, "maximum": 90},
		"longitude": {"type": "number", "minimum": -180, "maximum": 180},
		"region": {"type": "string"}
	},
	"dependentRequired": {
		"latitude": ["longitude"],
		"longitude": ["latitude"]
	}
}`
)

// requestSchemas holds the compiled request body schemas.
type requestSchemas struct {
	addRoad    *jsonschema.Schema
	updateRoad *jsonschema.Schema
	hazard     *jsonschema.Schema
}

func mustCompileSchemas() *requestSchemas {
	s, err := compileSchemas()
	if err != nil {
		panic(err)
	}
	return s
}

func compileSchemas() (*requestSchemas, error) {
	c := jsonschema.NewCompiler()

	compiled := make(map[string]*jsonschema.Schema, 3)
	for name, doc := range map[string]string{
		"add-road":    addRoadSchema,
		"update-road": updateRoadSchema,
		"hazard":      hazardSchema,
	} {
		var parsed any
		if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
			return nil, fmt.Errorf("parse %s schema: %w", name, err)
		}
		url := fmt.Sprintf("schema://%s.json", name)
		if err := c.AddResource(url, parsed); err != nil {
			return nil, fmt.Errorf("add %s schema: %w", name, err)
		}
		sch, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", name, err)
		}
		compiled[name] = sch
	}

	return &requestSchemas{
		addRoad:    compiled["add-road"],
		updateRoad: compiled["update-road"],
		hazard:     compiled["hazard"],
	}, nil
}

// validationMessage flattens a multi-line schema error into one line.
func validationMessage(err error) string {
	lines := strings.Split(strings.TrimSpace(err.Error()), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(l), "-"))
	}
	return strings.Join(lines, "; ")
}
