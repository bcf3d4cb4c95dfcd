package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mealgen/pkg/model"
	"github.com/m-mizutani/mealgen/pkg/parser"
	"github.com/m-mizutani/mealgen/pkg/usecase/enrich"
	"github.com/m-mizutani/mealgen/pkg/utils/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "mealgen"
	serverVersion = "1.0.0"

	maxMealsPerCall = 10
)

// Generator is the part of the generate use case exposed as tools
type Generator interface {
	GenerateMeals(ctx context.Context, userID model.UserID, count int) ([]*model.Meal, error)
	Inspect(ctx context.Context, userID model.UserID) (*enrich.Context, string, error)
}

// GenerateMealInput is the argument of the generate_meal tool
type GenerateMealInput struct {
	UserID string `json:"user_id"`
	Count  int    `json:"count,omitempty"`
}

// InspectProfileInput is the argument of the inspect_profile tool
type InspectProfileInput struct {
	UserID string `json:"user_id"`
}

// Server exposes meal generation over MCP
type Server struct {
	gen    Generator
	server *mcp.Server
}

// NewServer creates a server with the generate_meal and inspect_profile tools
func NewServer(gen Generator) *Server {
	s := &Server{
		gen: gen,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: serverVersion,
		}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_meal",
		Description: "Generate personalized meals for a user from their dietary profile and meal history. Returns each meal as JSON with recipe_name, ingredients and instructions.",
		InputSchema: generateMealSchema(),
	}, s.GenerateMeal)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "inspect_profile",
		Description: "Show the meal history analysis and the prompt that would be sent for a user, without generating a meal.",
		InputSchema: inspectProfileSchema(),
	}, s.InspectProfile)

	return s
}

// Run serves the tools over stdin/stdout until the client disconnects
func (s *Server) Run(ctx context.Context) error {
	if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return goerr.Wrap(err, "MCP server failed")
	}
	return nil
}

func userIDSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Description: "Profile identifier, e.g. USER_001",
	}
}

func generateMealSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"user_id": userIDSchema(),
			"count": {
				Type:        "integer",
				Description: fmt.Sprintf("Number of meals to generate (1-%d, default 1)", maxMealsPerCall),
			},
		},
		Required: []string{"user_id"},
	}
}

func inspectProfileSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"user_id": userIDSchema(),
		},
		Required: []string{"user_id"},
	}
}

// GenerateMeal handles the generate_meal tool
func (s *Server) GenerateMeal(ctx context.Context, req *mcp.CallToolRequest, in *GenerateMealInput) (*mcp.CallToolResult, any, error) {
	count := in.Count
	if count == 0 {
		count = 1
	}
	if count > maxMealsPerCall {
		return errorResult(goerr.Wrap(model.ErrInvalidArgument, "count is too large",
			goerr.V("count", count), goerr.V("max", maxMealsPerCall))), nil, nil
	}

	meals, err := s.gen.GenerateMeals(ctx, model.UserID(in.UserID), count)
	if err != nil {
		return toolError(ctx, err)
	}

	var content []mcp.Content
	for _, meal := range meals {
		data, err := parser.MarshalJSON(meal)
		if err != nil {
			return nil, nil, err
		}
		content = append(content, &mcp.TextContent{Text: string(data)})
	}

	return &mcp.CallToolResult{Content: content}, nil, nil
}

// InspectProfile handles the inspect_profile tool
func (s *Server) InspectProfile(ctx context.Context, req *mcp.CallToolRequest, in *InspectProfileInput) (*mcp.CallToolResult, any, error) {
	enriched, p, err := s.gen.Inspect(ctx, model.UserID(in.UserID))
	if err != nil {
		return toolError(ctx, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Past meals summary: %s\n", enriched.PastMealsSummary)
	fmt.Fprintf(&b, "Variety needs: %s\n", enriched.VarietyNeeds)
	fmt.Fprintf(&b, "\nPrompt:\n%s", p)

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: b.String()},
		},
	}, nil, nil
}

// toolError reports caller mistakes as tool results so the client model can
// correct itself; other failures are protocol errors.
func toolError(ctx context.Context, err error) (*mcp.CallToolResult, any, error) {
	if errors.Is(err, model.ErrInvalidArgument) || errors.Is(err, model.ErrNotFound) {
		return errorResult(err), nil, nil
	}

	logging.From(ctx).Error("tool call failed", logging.ErrAttr(err))
	return nil, nil, err
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: err.Error()},
		},
	}
}
