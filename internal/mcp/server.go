// Package mcp exposes the reasoning engine as a Model Context Protocol
// server over stdin/stdout. One JSON-RPC 2.0 message per line, requests
// handled sequentially in arrival order.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"ustad/internal/logging"
	"ustad/internal/session"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "ustad"
	serverVersion   = "1.0.0"
)

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Server serves the reasoning tools over a line-delimited JSON-RPC
// stream.
type Server struct {
	store *session.Store
	in    io.Reader
	out   io.Writer

	writeMu sync.Mutex

	// defaultID backs tool calls that omit a session id.
	sessionMu sync.Mutex
	defaultID string
}

// NewServer wires a session store to a transport pair. Production use
// passes os.Stdin and os.Stdout.
func NewServer(store *session.Store, in io.Reader, out io.Writer) *Server {
	return &Server{store: store, in: in, out: out}
}

// Serve reads requests until EOF or context cancellation. Malformed
// lines produce parse errors instead of terminating the loop.
func (s *Server) Serve(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	logging.Boot("mcp server listening on stdio")

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req rpcRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			s.writeError(nil, codeParseError, fmt.Sprintf("parse error: %v", err))
			continue
		}

		s.dispatch(ctx, &req)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stdio read failed: %w", err)
	}
	return nil
}

func (s *Server) dispatch(ctx context.Context, req *rpcRequest) {
	// Notifications carry no id and get no response.
	if strings.HasPrefix(req.Method, "notifications/") {
		return
	}

	switch req.Method {
	case "initialize":
		s.writeResult(req.ID, map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    serverName,
				"version": serverVersion,
			},
		})
	case "ping":
		s.writeResult(req.ID, map[string]any{})
	case "tools/list":
		s.writeResult(req.ID, map[string]any{"tools": toolDefinitions()})
	case "tools/call":
		s.handleToolCall(ctx, req)
	default:
		s.writeError(req.ID, codeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (s *Server) handleToolCall(ctx context.Context, req *rpcRequest) {
	var params toolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.writeError(req.ID, codeInvalidParams, fmt.Sprintf("invalid params: %v", err))
		return
	}

	handler, ok := s.toolHandler(params.Name)
	if !ok {
		s.writeError(req.ID, codeInvalidParams, fmt.Sprintf("unknown tool: %s", params.Name))
		return
	}

	text, err := handler(ctx, params.Arguments)
	if err != nil {
		// Tool-level failures are results, not protocol errors.
		s.writeResult(req.ID, toolResult(err.Error(), true))
		return
	}
	s.writeResult(req.ID, toolResult(text, false))
}

func toolResult(text string, isError bool) map[string]any {
	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"isError": isError,
	}
}

func (s *Server) writeResult(id json.RawMessage, result any) {
	s.write(rpcResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) writeError(id json.RawMessage, code int, msg string) {
	s.write(rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: msg}})
}

func (s *Server) write(resp rpcResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.APIError("mcp: marshal response failed: %v", err)
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.out.Write(data)
	s.out.Write([]byte("\n"))
}

// resolveSession maps an optional caller id to a live session, creating
// the shared default session on first use.
func (s *Server) resolveSession(id string) string {
	if id != "" {
		return id
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	if s.defaultID == "" {
		s.defaultID = s.store.Create()
	}
	return s.defaultID
}

// forgetDefault clears the cached default id after a reset destroyed it.
func (s *Server) forgetDefault(id string) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	if s.defaultID == id {
		s.defaultID = ""
	}
}
