package mcp_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/mealgen/pkg/model"
	"github.com/m-mizutani/mealgen/pkg/repository"
	"github.com/m-mizutani/mealgen/pkg/service/mcp"
	"github.com/m-mizutani/mealgen/pkg/usecase/generate"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const reply = `Recipe Name: Chickpea Spinach Stew

Ingredients: 
- Chickpeas: 1 can
- Spinach: 2 cups

Instructions: 
1. Warm the chickpeas.
2. Stir in the spinach.
`

type mockCompleter struct {
	calls int
	err   error
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return reply, nil
}

func newServer(t *testing.T, completer *mockCompleter) *mcp.Server {
	repo, err := repository.NewMemoryFromFixture()
	gt.NoError(t, err)
	return mcp.NewServer(generate.New(repo, completer))
}

func resultText(t *testing.T, result *sdk.CallToolResult, i int) string {
	gt.A(t, result.Content).Longer(i)
	text, ok := result.Content[i].(*sdk.TextContent)
	gt.True(t, ok)
	return text.Text
}

func TestGenerateMeal(t *testing.T) {
	completer := &mockCompleter{}
	s := newServer(t, completer)

	result, _, err := s.GenerateMeal(context.Background(), nil, &mcp.GenerateMealInput{UserID: "USER_002", Count: 2})
	gt.NoError(t, err)
	gt.False(t, result.IsError)
	gt.A(t, result.Content).Length(2)
	gt.Equal(t, completer.calls, 2)

	text := resultText(t, result, 0)
	gt.S(t, text).Contains(`"recipe_name": "Chickpea Spinach Stew"`)
	gt.S(t, text).Contains(`"Stir in the spinach."`)
}

func TestGenerateMealDefaultsToOneMeal(t *testing.T) {
	completer := &mockCompleter{}
	result, _, err := newServer(t, completer).GenerateMeal(context.Background(), nil, &mcp.GenerateMealInput{UserID: "USER_001"})
	gt.NoError(t, err)
	gt.A(t, result.Content).Length(1)
	gt.Equal(t, completer.calls, 1)
}

func TestGenerateMealCallerErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input mcp.GenerateMealInput
	}{
		{name: "unknown user", input: mcp.GenerateMealInput{UserID: "ghost-user"}},
		{name: "empty user", input: mcp.GenerateMealInput{UserID: ""}},
		{name: "negative count", input: mcp.GenerateMealInput{UserID: "USER_001", Count: -1}},
		{name: "count too large", input: mcp.GenerateMealInput{UserID: "USER_001", Count: 11}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			completer := &mockCompleter{}
			result, _, err := newServer(t, completer).GenerateMeal(context.Background(), nil, &tc.input)
			gt.NoError(t, err)
			gt.True(t, result.IsError)
			gt.Equal(t, completer.calls, 0)
		})
	}
}

func TestGenerateMealUpstreamError(t *testing.T) {
	completer := &mockCompleter{err: goerr.New("service unavailable")}
	result, _, err := newServer(t, completer).GenerateMeal(context.Background(), nil, &mcp.GenerateMealInput{UserID: "USER_001"})
	gt.Error(t, err)
	gt.V(t, result).Nil()
	gt.True(t, errors.Is(err, model.ErrUpstream))
}

func TestInspectProfile(t *testing.T) {
	completer := &mockCompleter{}
	result, _, err := newServer(t, completer).InspectProfile(context.Background(), nil, &mcp.InspectProfileInput{UserID: "USER_001"})
	gt.NoError(t, err)
	gt.False(t, result.IsError)
	gt.Equal(t, completer.calls, 0)

	text := resultText(t, result, 0)
	gt.S(t, text).Contains("Past meals summary: User has enjoyed 5 previous meals.")
	gt.S(t, text).Contains("AI Meal Assistant Context - Generate ONE different meal:")
}
