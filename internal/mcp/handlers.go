// ABOUTME: MCP tool handler implementations for the docent server
// ABOUTME: Contains handler implementations with proper error handling for all 4 tools
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/docent-dev/docent/internal/answer"
	"github.com/docent-dev/docent/internal/index"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	orchestrator *answer.Orchestrator
	indexer      *index.Indexer
}

// AskQuestion handles the ask_question tool
func (h *Handlers) AskQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract arguments
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}

	report, err := h.orchestrator.Answer(ctx, question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("answering failed: %v", err)), nil
	}

	responseJSON, err := json.Marshal(report)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// SearchDocuments handles the search_documents tool
func (h *Handlers) SearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract arguments
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	limit := request.GetInt("limit", 5)

	results, err := h.orchestrator.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	// Build result summaries
	entries := make([]map[string]interface{}, 0, len(results))
	for _, res := range results {
		entries = append(entries, map[string]interface{}{
			"file_name": res.Document.FileName(),
			"path":      res.Document.Path,
			"seq":       res.Fragment.Seq,
			"content":   res.Fragment.Content,
			"score":     res.Score,
		})
	}

	response := map[string]interface{}{
		"results": entries,
		"count":   len(entries),
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// GetStatistics handles the get_statistics tool
func (h *Handlers) GetStatistics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.orchestrator.Statistics()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read statistics: %v", err)), nil
	}

	responseJSON, err := json.Marshal(stats)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// Reindex handles the reindex tool
func (h *Handlers) Reindex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract arguments
	path := request.GetString("path", "")
	force := request.GetBool("force", false)

	// A specific path indexes just that file; hash-skip does not apply
	if path != "" {
		ok, err := h.indexer.IndexDocument(ctx, path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("indexing %s failed: %v", path, err)), nil
		}

		indexed := 0
		if ok {
			indexed = 1
		}
		response := map[string]interface{}{
			"indexed": indexed,
			"path":    path,
		}
		responseJSON, err := json.Marshal(response)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
		}
		return mcp.NewToolResultText(string(responseJSON)), nil
	}

	count, err := h.indexer.IndexAll(ctx, force, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("indexing failed: %v", err)), nil
	}

	response := map[string]interface{}{
		"indexed": count,
		"root":    h.indexer.Root(),
		"force":   force,
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}
