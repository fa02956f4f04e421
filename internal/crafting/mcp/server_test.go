package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/crafting-macro-server/internal/crafting/config"
	"github.com/rsned/crafting-macro-server/internal/crafting/db"
	"github.com/rsned/crafting-macro-server/internal/crafting/engine"
	"github.com/rsned/crafting-macro-server/pkg/crafting"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	database, err := db.OpenAndInit(context.Background(), db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	e, err := engine.New(database, config.DefaultConfig())
	require.NoError(t, err)
	return NewServer(e, "test", nil)
}

// exchange sends one request per line and decodes the responses.
func exchange(t *testing.T, s *Server, lines ...string) []Response {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, s.Serve(context.Background(), strings.NewReader(strings.Join(lines, "\n")), &out))

	var resps []Response
	dec := json.NewDecoder(&out)
	for dec.More() {
		var r Response
		require.NoError(t, dec.Decode(&r))
		resps = append(resps, r)
	}
	return resps
}

// toolText unwraps the text content of a tools/call result.
func toolText(t *testing.T, r Response) (string, bool) {
	t.Helper()
	require.Nil(t, r.Error)
	data, err := json.Marshal(r.Result)
	require.NoError(t, err)
	var res ToolCallResult
	require.NoError(t, json.Unmarshal(data, &res))
	require.Len(t, res.Content, 1)
	return res.Content[0].Text, res.IsError
}

func TestInitializeAndList(t *testing.T) {
	resps := exchange(t, newTestServer(t),
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
	)
	require.Len(t, resps, 2)

	data, err := json.Marshal(resps[1].Result)
	require.NoError(t, err)
	var list ToolsListResult
	require.NoError(t, json.Unmarshal(data, &list))

	var names []string
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"generate_macro", "simulate_macro", "available_skills"}, names)
}

func TestGenerateMacroTool(t *testing.T) {
	resps := exchange(t, newTestServer(t),
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"generate_macro","arguments":{"playerStatus":{"craftingLevel":5,"cp":400},"recipe":{"requiredProgress":360,"maxQuality":1000,"baseDurability":60}}}}`,
	)
	require.Len(t, resps, 1)

	text, isErr := toolText(t, resps[0])
	require.False(t, isErr, text)
	var resp crafting.MacroResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Equal(t, 200, resp.FinalQuality)
	assert.True(t, resp.ProgressComplete)
}

func TestToolErrors(t *testing.T) {
	resps := exchange(t, newTestServer(t),
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"simulate_macro","arguments":{"playerStatus":{"craftingLevel":5},"recipe":{"requiredProgress":100},"actions":["Basic Synthesis","Hasty Touch"]}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"craft_query","arguments":{}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"resources/list"}`,
		`not json`,
		`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"generate_macro","arguments":{"recipe":"bread"}}}`,
	)
	require.Len(t, resps, 5)

	text, isErr := toolText(t, resps[0])
	assert.True(t, isErr)
	assert.Contains(t, text, `unknown skill "Hasty Touch"`)

	require.NotNil(t, resps[1].Error)
	assert.Equal(t, ErrCodeInvalidParams, resps[1].Error.Code)

	require.NotNil(t, resps[2].Error)
	assert.Equal(t, ErrCodeMethodNotFound, resps[2].Error.Code)

	require.NotNil(t, resps[3].Error)
	assert.Equal(t, ErrCodeParse, resps[3].Error.Code)

	require.NotNil(t, resps[4].Error)
	assert.Equal(t, ErrCodeInvalidParams, resps[4].Error.Code)
}

func TestAvailableSkillsTool(t *testing.T) {
	resps := exchange(t, newTestServer(t),
		`{"jsonrpc":"2.0","id":"a","method":"tools/call","params":{"name":"available_skills","arguments":{"level":11}}}`,
	)
	require.Len(t, resps, 1)
	assert.Equal(t, "a", resps[0].ID)

	text, isErr := toolText(t, resps[0])
	require.False(t, isErr)
	var skills []crafting.SkillInfo
	require.NoError(t, json.Unmarshal([]byte(text), &skills))
	assert.Len(t, skills, 4)
}
