// ABOUTME: MCP tool definitions and registration for the docent server
// ABOUTME: Defines JSON schemas for the question answering and indexing tools
package mcp

import (
	"github.com/docent-dev/docent/internal/answer"
	"github.com/docent-dev/docent/internal/index"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, orchestrator *answer.Orchestrator, indexer *index.Indexer) *Handlers {
	// Initialize handlers
	handlers := &Handlers{
		orchestrator: orchestrator,
		indexer:      indexer,
	}

	// 1. ask_question - Answer a question from the indexed documents
	server.AddTool(mcp.Tool{
		Name:        "ask_question",
		Description: "Answer a natural-language question using the indexed documents. Returns the answer with cited source fragments and similarity scores.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "Question to answer from the document corpus",
				},
			},
			Required: []string{"question"},
		},
	}, handlers.AskQuestion)

	// 2. search_documents - Retrieve relevant fragments without generating an answer
	server.AddTool(mcp.Tool{
		Name:        "search_documents",
		Description: "Search the indexed documents for fragments similar to a query. Returns matching fragments with their source files and scores, without generating an answer.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results to return (default: 5)",
					"default":     5,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchDocuments)

	// 3. get_statistics - Summarize the indexed corpus
	server.AddTool(mcp.Tool{
		Name:        "get_statistics",
		Description: "Get statistics about the indexed corpus: document and fragment counts, file type breakdown, and recent search activity.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.GetStatistics)

	// 4. reindex - Index new or changed documents
	server.AddTool(mcp.Tool{
		Name:        "reindex",
		Description: "Index the document corpus. Skips files whose content is unchanged unless force is set. An optional path restricts indexing to a single file.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Optional path to a single file to index",
				},
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "Reindex files even when their content is unchanged (default: false)",
					"default":     false,
				},
			},
		},
	}, handlers.Reindex)

	return handlers
}
