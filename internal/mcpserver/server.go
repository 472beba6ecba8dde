// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Centavo tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/centavo-app/centavo/internal/ledger"
	"github.com/centavo-app/centavo/internal/models"
)

// Server wraps the MCP server with Centavo tools.
type Server struct {
	mcp *server.MCPServer
	svc *ledger.Service
}

// New creates a new MCP server with all Centavo tools registered.
func New(svc *ledger.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Centavo",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_records",
		mcp.WithDescription("List finance records, optionally filtered by type and month."),
		mcp.WithString("type", mcp.Description("Optional record type (e.g. EXPENSE, INCOME, SUBSCRIPTION)")),
		mcp.WithString("month", mcp.Description("Optional month filter in YYYY-MM format")),
	), s.listRecords)

	s.mcp.AddTool(mcp.NewTool("add_record",
		mcp.WithDescription("Create a new finance record. The record MUST follow the "+
			"canonical record format (closed type enumeration, ISO dates, decimal string "+
			"values). Read the contract first via the get_record_contract tool or the "+
			"centavo://record-format resource."),
		mcp.WithString("record", mcp.Required(), mcp.Description("JSON object for the record to create")),
	), s.addRecord)

	s.mcp.AddTool(mcp.NewTool("month_summary",
		mcp.WithDescription("Financial overview for one month: income, expenses, balance, "+
			"category breakdown, budget usage and pending ledger totals."),
		mcp.WithString("month", mcp.Required(), mcp.Description("Month in YYYY-MM format")),
	), s.monthSummary)

	s.mcp.AddTool(mcp.NewTool("get_record_contract",
		mcp.WithDescription("Returns the canonical Centavo record format contract. "+
			"Call this before creating records to ensure correct structure."),
	), s.getRecordContract)

	// Resource: record format contract.
	s.mcp.AddResource(
		mcp.NewResource("centavo://record-format", "Record Format Contract",
			mcp.WithResourceDescription("Canonical record format that all finance records must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecordFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ := ""
	if v, err := req.RequireString("type"); err == nil {
		typ = v
	}
	month := ""
	if v, err := req.RequireString("month"); err == nil {
		month = v
	}

	records := s.svc.List(models.RecordType(typ), month)
	out, _ := json.MarshalIndent(records, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("record")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var rec models.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid record JSON: %s", err)), nil
	}
	created, err := s.svc.Create(rec)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", created.ID)), nil
}

func (s *Server) monthSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	month, err := req.RequireString("month")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(s.svc.Summary(month), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getRecordContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RecordFormatContract), nil
}

func (s *Server) readRecordFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "centavo://record-format",
			MIMEType: "text/markdown",
			Text:     RecordFormatContract,
		},
	}, nil
}
