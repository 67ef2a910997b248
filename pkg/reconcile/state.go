package reconcile

import (
	"strings"

	"github.com/ccollicutt/loglens/pkg/literal"
)

// DefaultRole labels messages that do not name a role.
const DefaultRole = "unknown"

var promptKeys = map[string]bool{
	"prompt":        true,
	"input":         true,
	"user_prompt":   true,
	"system_prompt": true,
}

type message struct {
	role    string
	content string
}

// state accumulates recognized fields across a whole log.
type state struct {
	model string

	roles     []string
	roleTexts map[string]string

	sequence []message

	prompts    []string
	promptSeen map[string]bool

	content   string
	reasoning string
	text      string
}

func newState() *state {
	return &state{
		roleTexts:  make(map[string]string),
		promptSeen: make(map[string]bool),
	}
}

// visit walks v, collecting every recognized field at any depth.
func (s *state) visit(v literal.Value) {
	switch v.Kind() {
	case literal.KindSequence:
		for _, item := range v.Items() {
			s.visit(item)
		}
	case literal.KindMapping:
		s.visitFields(v.Mapping())
	case literal.KindRecord:
		r := v.Record()
		for _, item := range r.Positional {
			s.visit(item)
		}
		s.visitFields(r.Fields)
	}
}

func (s *state) visitFields(m *literal.Mapping) {
	for _, e := range m.Entries() {
		s.collect(e.Key, e.Value)
		s.visit(e.Value)
	}
}

func (s *state) collect(key string, v literal.Value) {
	switch {
	case key == "model":
		if s.model == "" {
			s.model = v.Text()
		}
	case key == "messages":
		for _, item := range v.Items() {
			s.addMessage(item)
		}
	case promptKeys[key]:
		if text, ok := v.Str(); ok {
			s.addPrompt(text)
		}
	case key == "content":
		if text, ok := v.Str(); ok {
			s.content = Merge(s.content, text)
		}
	case key == "reasoning" || key == "reasoning_content":
		if text, ok := v.Str(); ok {
			s.reasoning = Merge(s.reasoning, text)
		}
	case key == "text":
		if text, ok := v.Str(); ok {
			s.text = Merge(s.text, text)
		}
	}
}

func (s *state) addMessage(v literal.Value) {
	fields := v.Mapping()
	if r := v.Record(); r != nil {
		fields = r.Fields
	}
	if fields == nil {
		return
	}

	role := DefaultRole
	if r, ok := fields.Get("role"); ok && r.Text() != "" {
		role = r.Text()
	}
	c, _ := fields.Get("content")
	content := contentText(c)
	if content == "" {
		return
	}

	if _, ok := s.roleTexts[role]; !ok {
		s.roles = append(s.roles, role)
	}
	s.roleTexts[role] = Merge(s.roleTexts[role], content)

	if n := len(s.sequence); n > 0 && s.sequence[n-1].role == role {
		s.sequence[n-1].content = Merge(s.sequence[n-1].content, content)
		return
	}
	s.sequence = append(s.sequence, message{role: role, content: content})
}

func (s *state) addPrompt(text string) {
	if strings.TrimSpace(text) == "" || s.promptSeen[text] {
		return
	}
	s.promptSeen[text] = true
	s.prompts = append(s.prompts, text)
}

// contentText flattens message content: sequences are concatenated and
// mappings contribute their text, content or value field.
func contentText(v literal.Value) string {
	switch v.Kind() {
	case literal.KindSequence:
		var sb strings.Builder
		for _, item := range v.Items() {
			sb.WriteString(contentText(item))
		}
		return sb.String()
	case literal.KindMapping, literal.KindRecord:
		fields := v.Mapping()
		if r := v.Record(); r != nil {
			fields = r.Fields
		}
		for _, key := range []string{"text", "content", "value"} {
			if f, ok := fields.Get(key); ok {
				return contentText(f)
			}
		}
		return ""
	}
	return v.Text()
}

// lines renders the accumulated fields in output order, one "key: value"
// line each. Values are quoted literals, e.g. model: 'gpt-4', so newlines and
// separators inside a value survive the second classification pass.
func (s *state) lines() []string {
	var out []string
	add := func(key, value string) {
		out = append(out, key+": "+literal.Quote(value))
	}

	if s.model != "" {
		add("model", s.model)
	}
	for _, role := range s.roles {
		if text := s.roleTexts[role]; strings.TrimSpace(text) != "" {
			add("prompt."+role, text)
		}
	}
	if len(s.sequence) > 0 {
		parts := make([]string, len(s.sequence))
		for i, m := range s.sequence {
			parts[i] = m.role + ": " + m.content
		}
		add("prompt.sequence", strings.Join(parts, " | "))
	}
	for _, p := range s.prompts {
		add("prompt.raw", p)
	}
	if strings.TrimSpace(s.reasoning) != "" {
		add("response.reasoning", s.reasoning)
	}
	if strings.TrimSpace(s.content) != "" {
		add("response.content", s.content)
	}
	if strings.TrimSpace(s.text) != "" {
		add("response.text", s.text)
	}
	return out
}
