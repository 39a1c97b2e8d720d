package mcp

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
)

// ToolHandler defines the interface for tool handlers
type ToolHandler interface {
	GetName() string
	GetDescription() string
	GetInputSchema() JSONSchema
	Execute(ctx context.Context, arguments json.RawMessage) (*CallToolResult, error)
}

// ResourceHandler defines the interface for resources with a fixed URI
type ResourceHandler interface {
	GetURI() string
	GetName() string
	GetDescription() string
	GetMimeType() string
	Read(ctx context.Context) (*ReadResourceResult, error)
}

// ResourceTemplateHandler serves every URI matching a template such as
// ledger://parties/{partyId}/statement
type ResourceTemplateHandler interface {
	GetURITemplate() string
	GetName() string
	GetDescription() string
	GetMimeType() string
	ReadTemplate(ctx context.Context, uri string, vars map[string]string) (*ReadResourceResult, error)
}

// HandlerRegistry manages tool and resource handlers
type HandlerRegistry struct {
	tools     map[string]ToolHandler
	resources map[string]ResourceHandler
	templates []ResourceTemplateHandler
}

// NewHandlerRegistry creates a new handler registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		tools:     make(map[string]ToolHandler),
		resources: make(map[string]ResourceHandler),
	}
}

// RegisterTool registers a tool handler
func (r *HandlerRegistry) RegisterTool(handler ToolHandler) {
	r.tools[handler.GetName()] = handler
}

// RegisterResource registers a resource handler
func (r *HandlerRegistry) RegisterResource(handler ResourceHandler) {
	r.resources[handler.GetURI()] = handler
}

// RegisterResourceTemplate registers a resource template handler
func (r *HandlerRegistry) RegisterResourceTemplate(handler ResourceTemplateHandler) {
	r.templates = append(r.templates, handler)
}

// GetTool retrieves a tool handler by name
func (r *HandlerRegistry) GetTool(name string) (ToolHandler, bool) {
	handler, ok := r.tools[name]
	return handler, ok
}

// GetResource retrieves a resource handler by URI
func (r *HandlerRegistry) GetResource(uri string) (ResourceHandler, bool) {
	handler, ok := r.resources[uri]
	return handler, ok
}

// MatchTemplate finds the first registered template matching uri and returns its variables
func (r *HandlerRegistry) MatchTemplate(uri string) (ResourceTemplateHandler, map[string]string, bool) {
	for _, handler := range r.templates {
		if vars, ok := MatchURITemplate(handler.GetURITemplate(), uri); ok {
			return handler, vars, true
		}
	}
	return nil, nil, false
}

// ListTools returns all registered tools ordered by name
func (r *HandlerRegistry) ListTools() []Tool {
	tools := make([]Tool, 0, len(r.tools))
	for _, handler := range r.tools {
		tools = append(tools, Tool{
			Name:        handler.GetName(),
			Description: handler.GetDescription(),
			InputSchema: handler.GetInputSchema(),
		})
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// ListResources returns all registered resources ordered by URI
func (r *HandlerRegistry) ListResources() []Resource {
	resources := make([]Resource, 0, len(r.resources))
	for _, handler := range r.resources {
		resources = append(resources, Resource{
			URI:         handler.GetURI(),
			Name:        handler.GetName(),
			Description: handler.GetDescription(),
			MimeType:    handler.GetMimeType(),
		})
	}
	sort.Slice(resources, func(i, j int) bool { return resources[i].URI < resources[j].URI })
	return resources
}

// ListResourceTemplates returns the registered templates in registration order
func (r *HandlerRegistry) ListResourceTemplates() []ResourceTemplate {
	templates := make([]ResourceTemplate, 0, len(r.templates))
	for _, handler := range r.templates {
		templates = append(templates, ResourceTemplate{
			URITemplate: handler.GetURITemplate(),
			Name:        handler.GetName(),
			Description: handler.GetDescription(),
			MimeType:    handler.GetMimeType(),
		})
	}
	return templates
}

// MatchURITemplate matches uri against a template whose variables each fill one
// whole path segment. Query strings are not part of the match.
func MatchURITemplate(template string, uri string) (map[string]string, bool) {
	if i := strings.IndexByte(uri, '?'); i >= 0 {
		uri = uri[:i]
	}
	tParts := strings.Split(template, "/")
	uParts := strings.Split(uri, "/")
	if len(tParts) != len(uParts) {
		return nil, false
	}

	vars := map[string]string{}
	for i, part := range tParts {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			if uParts[i] == "" {
				return nil, false
			}
			vars[part[1:len(part)-1]] = uParts[i]
			continue
		}
		if part != uParts[i] {
			return nil, false
		}
	}
	return vars, true
}
