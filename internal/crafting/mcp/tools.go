package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rsned/crafting-macro-server/internal/crafting/search"
	"github.com/rsned/crafting-macro-server/pkg/crafting"
)

var errInvalidParams = errors.New("invalid params")

// ToolDefinition describes an MCP tool.
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema JSONSchema `json:"inputSchema"`
}

// JSONSchema is a simplified JSON Schema representation.
type JSONSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a schema property.
type Property struct {
	Type        string              `json:"type,omitempty"`
	Description string              `json:"description,omitempty"`
	Default     any                 `json:"default,omitempty"`
	Enum        []string            `json:"enum,omitempty"`
	Minimum     *float64            `json:"minimum,omitempty"`
	Maximum     *float64            `json:"maximum,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Required    []string            `json:"required,omitempty"`
}

// GetToolDefinitions returns all tool definitions.
func GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		generateMacroTool(),
		simulateMacroTool(),
		availableSkillsTool(),
	}
}

func playerStatusProperty() Property {
	minLevel, maxLevel := 1.0, 100.0
	minCP, maxCP := 0.0, 1000.0
	return Property{
		Type:        "object",
		Description: "The crafter's level and crafting points",
		Properties: map[string]Property{
			"craftingLevel": {Type: "integer", Description: "Crafter level; limits the usable skills", Minimum: &minLevel, Maximum: &maxLevel},
			"craftsmanship": {Type: "integer", Description: "Craftsmanship stat"},
			"control":       {Type: "integer", Description: "Control stat"},
			"cp":            {Type: "integer", Description: "Crafting points available", Minimum: &minCP, Maximum: &maxCP},
		},
		Required: []string{"craftingLevel", "cp"},
	}
}

func recipeProperty() Property {
	minProgress := 1.0
	return Property{
		Type:        "object",
		Description: "The item being crafted",
		Properties: map[string]Property{
			"name":             {Type: "string", Description: "Recipe name, for history only"},
			"requiredProgress": {Type: "integer", Description: "Progress needed to finish", Minimum: &minProgress},
			"maxQuality":       {Type: "integer", Description: "Quality ceiling"},
			"baseDurability":   {Type: "integer", Description: "Starting durability; 0 means 70"},
			"difficulty":       {Type: "string", Enum: []string{"NORMAL", "HARD", "EXPERT"}},
		},
		Required: []string{"requiredProgress", "maxQuality"},
	}
}

func generateMacroTool() ToolDefinition {
	strategies := make([]string, 0, 3)
	for _, k := range search.Kinds() {
		strategies = append(strategies, string(k))
	}
	maxTime := 60000.0

	return ToolDefinition{
		Name:        "generate_macro",
		Description: "Search for the best crafting action sequence for a recipe and return it as macro text, with final quality, progress, CP and durability.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"playerStatus": playerStatusProperty(),
				"recipe":       recipeProperty(),
				"availableSkills": {
					Type:        "array",
					Description: "Restrict the search to these skill names. Empty uses every skill unlocked at the crafter's level.",
					Items:       &Property{Type: "string"},
				},
				"qualityFocus": {
					Type:        "boolean",
					Description: "Maximize quality (true) or finish in the fewest steps (false)",
					Default:     true,
				},
				"durabilityConstraint": {
					Type:        "boolean",
					Description: "Never let durability reach zero",
					Default:     true,
				},
				"strategy": {
					Type:        "string",
					Description: "Search algorithm",
					Enum:        strategies,
					Default:     string(search.DefaultKind),
				},
				"timeLimitMs": {
					Type:        "integer",
					Description: "Search time limit in milliseconds",
					Maximum:     &maxTime,
				},
			},
			Required: []string{"playerStatus", "recipe"},
		},
	}
}

func (s *Server) toolGenerateMacro(ctx context.Context, args json.RawMessage) (any, error) {
	var req crafting.MacroRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return s.svc.GenerateMacro(ctx, req)
}

func simulateMacroTool() ToolDefinition {
	return ToolDefinition{
		Name:        "simulate_macro",
		Description: "Replay a fixed action sequence, given as skill names or macro text, and return the state after every step.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"playerStatus": playerStatusProperty(),
				"recipe":       recipeProperty(),
				"actions": {
					Type:        "array",
					Description: "Skill names in order",
					Items:       &Property{Type: "string"},
				},
				"macroText": {
					Type:        "string",
					Description: "Macro text with /ac \"Skill\" lines; used when actions is empty",
				},
				"initialBuffs": {
					Type:        "array",
					Description: "Buffs active at the start, as \"Name\" or \"Name:N\"",
					Items:       &Property{Type: "string"},
				},
			},
			Required: []string{"playerStatus", "recipe"},
		},
	}
}

func (s *Server) toolSimulateMacro(ctx context.Context, args json.RawMessage) (any, error) {
	var req crafting.SimulateRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return s.svc.SimulateMacro(ctx, req)
}

func availableSkillsTool() ToolDefinition {
	minLevel := 0.0
	return ToolDefinition{
		Name:        "available_skills",
		Description: "List the skills unlocked at a crafting level with their costs.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"level": {
					Type:        "integer",
					Description: "Crafting level; 0 lists every skill",
					Default:     0,
					Minimum:     &minLevel,
				},
			},
		},
	}
}

type availableSkillsArgs struct {
	Level int `json:"level"`
}

func (s *Server) toolAvailableSkills(ctx context.Context, args json.RawMessage) (any, error) {
	var req availableSkillsArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &req); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidParams, err)
		}
	}
	return s.svc.AvailableSkills(ctx, req.Level)
}
