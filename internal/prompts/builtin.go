package prompts

import (
	"strings"

	"github.com/Argha713/mcp-pipeline-server/internal/protocol"
)

// Template is one named, fixed prompt: a list of declared arguments and a
// message whose {{placeholders}} get substituted at Get time.
type Template struct {
	Name        string
	Description string
	Arguments   []protocol.PromptArgument
	Role        string // defaults to "user" if empty
	Body        string // e.g. "Summarize the following {{language}} code:\n{{code}}"
}

// BuiltinProvider serves a fixed, in-process registry of Templates.
type BuiltinProvider struct {
	byName map[string]Template
}

// NewBuiltinProvider builds a provider over the given templates.
func NewBuiltinProvider(templates ...Template) *BuiltinProvider {
	byName := make(map[string]Template, len(templates))
	for _, t := range templates {
		byName[t.Name] = t
	}
	return &BuiltinProvider{byName: byName}
}

// CanHandle reports whether name is one of this provider's templates.
func (p *BuiltinProvider) CanHandle(name string) bool {
	_, ok := p.byName[name]
	return ok
}

// List returns every template's descriptor.
func (p *BuiltinProvider) List() ([]protocol.PromptDescriptor, error) {
	out := make([]protocol.PromptDescriptor, 0, len(p.byName))
	for _, t := range p.byName {
		out = append(out, protocol.PromptDescriptor{
			Name:        t.Name,
			Description: t.Description,
			Arguments:   t.Arguments,
		})
	}
	return out, nil
}

// Get renders name's template, substituting arguments. A missing required
// argument yields a KindArgument ProviderError; an unknown name yields
// KindUnknownName.
func (p *BuiltinProvider) Get(name string, arguments map[string]string) (protocol.GetPromptResult, error) {
	t, ok := p.byName[name]
	if !ok {
		return protocol.GetPromptResult{}, newError(KindUnknownName, "unknown prompt: %s", name)
	}

	for _, arg := range t.Arguments {
		if arg.Required {
			if _, present := arguments[arg.Name]; !present {
				return protocol.GetPromptResult{}, newError(KindArgument, "missing required argument %q for prompt %q", arg.Name, name)
			}
		}
	}

	role := t.Role
	if role == "" {
		role = "user"
	}

	text := t.Body
	for k, v := range arguments {
		text = strings.ReplaceAll(text, "{{"+k+"}}", v)
	}

	return protocol.GetPromptResult{
		Description: t.Description,
		Messages: []protocol.PromptMessage{
			{Role: role, Content: protocol.ContentItem{Type: "text", Text: text}},
		},
	}, nil
}
