// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Lotsawa tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/lotsawa/internal/apperr"
	"github.com/starford/lotsawa/internal/docservice"
	"github.com/starford/lotsawa/internal/document"
	"github.com/starford/lotsawa/internal/notation"
)

const contractURI = "lotsawa://notation"

// Server wraps the MCP server with Lotsawa tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
}

// New creates a new MCP server with all Lotsawa tools registered.
func New(svc *docservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Lotsawa",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("parse_notation",
		mcp.WithDescription("Parse annotated Tibetan notation and return its stanza blocks, words and warnings. "+
			"Nothing is stored. Use it to check a draft before create_document."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Notation text with >>> / >>>> / >>>>> blocks")),
	), s.parseNotation)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read a library document. format=raw returns the notation text, "+
			"format=parsed returns blocks and warnings as JSON."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. texts/verse.tib)")),
		mcp.WithString("format", mcp.Description("raw (default) or parsed")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a new annotated document. Content MUST follow the notation contract; "+
			"read it first via get_notation_contract or the "+contractURI+" resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new document (must end with .tib)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Notation text")),
	), s.createDocument)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List library documents with block and word counts."),
		mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("search_words",
		mcp.WithDescription("Find annotated words whose surface, root or definition contains the query."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Tibetan or gloss substring")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 50)")),
	), s.searchWords)

	s.mcp.AddTool(mcp.NewTool("concordance",
		mcp.WithDescription("List every annotated occurrence of a root or surface form across the library."),
		mcp.WithString("word", mcp.Required(), mcp.Description("Root or surface form")),
	), s.concordance)

	s.mcp.AddTool(mcp.NewTool("lookup_verb",
		mcp.WithDescription("Look up a verb form in the verb dictionary (tense, volition, honorific, definition)."),
		mcp.WithString("word", mcp.Required(), mcp.Description("Tibetan verb form")),
	), s.lookupVerb)

	s.mcp.AddTool(mcp.NewTool("decode_annotation",
		mcp.WithDescription("Decode the bracketed content of one annotation line into its fields."),
		mcp.WithString("content", mcp.Required(), mcp.Description("e.g. {v,past} བྱེད to do")),
	), s.decodeAnnotation)

	s.mcp.AddTool(mcp.NewTool("encode_annotation",
		mcp.WithDescription("Encode analysis fields as canonical annotation content. "+
			"With a surface, the full annotation line is returned."),
		mcp.WithString("pos", mcp.Required(), mcp.Description("Part-of-speech tag expression, e.g. n, vd, v->n")),
		mcp.WithString("tense", mcp.Description("Comma-separated modifiers, e.g. hon,past")),
		mcp.WithString("root", mcp.Description("Tibetan root form")),
		mcp.WithString("definition", mcp.Description("Gloss")),
		mcp.WithString("full_form", mcp.Description("Full form written before the braces")),
		mcp.WithString("verb_id", mcp.Description("Verb dictionary ID")),
		mcp.WithString("surface", mcp.Description("Surface text for a full annotation line")),
		mcp.WithNumber("depth", mcp.Description("Nesting depth of the line (0 or 1)")),
	), s.encodeAnnotation)

	s.mcp.AddTool(mcp.NewTool("edit_document",
		mcp.WithDescription("Change one unit of one stanza: annotate a byte span of a text unit or an "+
			"undecomposed word, set the analysis of a word, or remove a word's analysis. Units are "+
			"addressed by block, line and unit index as returned by read_document format=parsed. "+
			"Only the touched stanza is rewritten."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document")),
		mcp.WithString("op", mcp.Required(), mcp.Description("annotate, set or remove")),
		mcp.WithNumber("block", mcp.Description("Zero-based stanza index")),
		mcp.WithNumber("line", mcp.Description("Zero-based line index inside the stanza")),
		mcp.WithNumber("unit", mcp.Required(), mcp.Description("Index of the unit in the line")),
		mcp.WithNumber("child", mcp.Description("Index of a sub-word inside the unit; omit for the unit itself")),
		mcp.WithNumber("start", mcp.Description("annotate: byte offset where the new word starts")),
		mcp.WithNumber("end", mcp.Description("annotate: byte offset just past the new word")),
		mcp.WithString("pos", mcp.Description("annotate/set: part-of-speech tag expression")),
		mcp.WithString("tense", mcp.Description("annotate/set: comma-separated modifiers")),
		mcp.WithString("root", mcp.Description("annotate/set: Tibetan root form")),
		mcp.WithString("definition", mcp.Description("annotate/set: gloss")),
		mcp.WithString("full_form", mcp.Description("annotate/set: full form")),
		mcp.WithString("verb_id", mcp.Description("annotate/set: verb dictionary ID")),
		mcp.WithString("if_match", mcp.Description("Checksum the document must still have")),
	), s.editDocument)

	s.mcp.AddTool(mcp.NewTool("import_text",
		mcp.WithDescription("Import plain Tibetan text from an http(s) URL or a base64 data: URI as a new "+
			"document split into stanzas at blank lines."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:text/plain;base64,... URI")),
		mcp.WithString("filename", mcp.Description("Optional document name; derived from the URL when empty")),
	), s.importText)

	s.mcp.AddTool(mcp.NewTool("get_notation_contract",
		mcp.WithDescription("Returns the Lotsawa notation contract. "+
			"Call this before writing annotations to ensure correct structure."),
	), s.getNotationContract)

	// Resource: notation contract.
	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Notation Contract",
			mcp.WithResourceDescription("Annotation notation that all documents must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNotationResource,
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

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func serviceError(err error, path string) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path))
	case errors.Is(err, apperr.ErrAlreadyExists):
		return mcp.NewToolResultError(fmt.Sprintf("document already exists: %s", path))
	}
	return mcp.NewToolResultError(err.Error())
}

type parseResult struct {
	Blocks   []document.Block   `json:"blocks"`
	Warnings []document.Warning `json:"warnings"`
}

func (s *Server) parseNotation(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	blocks, warnings := document.Parse(text)
	if blocks == nil {
		blocks = []document.Block{}
	}
	if warnings == nil {
		warnings = []document.Warning{}
	}
	return jsonResult(parseResult{Blocks: blocks, Warnings: warnings}), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.GetDocument(ctx, path)
	if err != nil {
		return serviceError(err, path), nil
	}
	if req.GetString("format", "raw") == "parsed" {
		return jsonResult(parseResult{Blocks: doc.Blocks, Warnings: doc.Warnings}), nil
	}
	return mcp.NewToolResultText(doc.Content), nil
}

func (s *Server) createDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.CreateDocument(ctx, path, []byte(content))
	if err != nil {
		return serviceError(err, path), nil
	}
	msg := fmt.Sprintf("created: %s", path)
	if len(doc.Warnings) > 0 {
		lines := make([]string, len(doc.Warnings))
		for i, w := range doc.Warnings {
			lines[i] = w.String()
		}
		msg += "\nwarnings:\n" + strings.Join(lines, "\n")
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, total, err := s.svc.ListDocuments(ctx, req.GetInt("limit", 50), req.GetInt("offset", 0), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lines := make([]string, 0, len(items)+1)
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s\t%d blocks\t%d words", it.Path, it.Blocks, it.Words))
	}
	lines = append(lines, fmt.Sprintf("(%d of %d)", len(items), total))
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) searchWords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	words, err := s.svc.SearchWords(ctx, query, req.GetInt("limit", 50))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(words) == 0 {
		return mcp.NewToolResultText("no words found"), nil
	}
	return jsonResult(words), nil
}

func (s *Server) concordance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	word, err := req.RequireString("word")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	words, err := s.svc.Concordance(ctx, word, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(words) == 0 {
		return mcp.NewToolResultText("no occurrences found"), nil
	}
	return jsonResult(words), nil
}

func (s *Server) lookupVerb(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	word, err := req.RequireString("word")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries, err := s.svc.LookupVerb(ctx, word)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("no entries found"), nil
	}
	return jsonResult(entries), nil
}

func (s *Server) decodeAnnotation(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(notation.Decode(content)), nil
}

func (s *Server) encodeAnnotation(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pos, err := req.RequireString("pos")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a := analysisArgs(req, pos)
	if err := a.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	surface := req.GetString("surface", "")
	if surface == "" {
		return mcp.NewToolResultText(notation.Encode(a)), nil
	}
	depth := req.GetInt("depth", 0)
	if depth < 0 || depth >= document.MaxWordDepth {
		return mcp.NewToolResultError(fmt.Sprintf("depth must be 0..%d", document.MaxWordDepth-1)), nil
	}
	return mcp.NewToolResultText(notation.EncodeLine(depth, surface, a)), nil
}

// analysisArgs builds an analysis from the shared annotation arguments.
func analysisArgs(req mcp.CallToolRequest, pos string) notation.Analysis {
	a := notation.Analysis{
		FullForm:     req.GetString("full_form", ""),
		PartOfSpeech: pos,
		Tense:        req.GetString("tense", ""),
		Root:         req.GetString("root", ""),
		Definition:   req.GetString("definition", ""),
		VerbID:       req.GetString("verb_id", ""),
	}
	a.IsPolished = a.VerbID != ""
	return a
}

func (s *Server) editDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	op, err := req.RequireString("op")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	unit := req.GetInt("unit", -1)
	if unit < 0 {
		return mcp.NewToolResultError("unit must be a non-negative index"), nil
	}
	units := []int{unit}
	if child := req.GetInt("child", -1); child >= 0 {
		units = append(units, child)
	}
	e := docservice.Edit{
		Op:       docservice.EditOp(op),
		Block:    req.GetInt("block", 0),
		Path:     document.Path{Line: req.GetInt("line", 0), Units: units},
		Start:    req.GetInt("start", 0),
		End:      req.GetInt("end", 0),
		Analysis: analysisArgs(req, req.GetString("pos", "")),
	}
	doc, err := s.svc.EditDocument(ctx, path, req.GetString("if_match", ""), e)
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return mcp.NewToolResultError("document changed since it was read; read it again"), nil
		}
		return serviceError(err, path), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("edited: %s (checksum %s)", path, doc.Checksum)), nil
}

func (s *Server) getNotationContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NotationContract), nil
}

func (s *Server) readNotationResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     NotationContract,
		},
	}, nil
}
