package change

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// The producing engine serializes its tree as JSON. The wire structs
// below mirror that format exactly; Decode converts them to the
// in-memory model, dropping what it cannot interpret rather than
// failing, so that a newer engine does not break an older viewer.

type wireNode struct {
	ID       string      `json:"id"`
	Indent   int         `json:"indent"`
	Tokens   []wireToken `json:"tokens"`
	Edit     *wireEdit   `json:"edit"`
	Children []*wireNode `json:"children"`
}

type wireToken struct {
	Text string `json:"text"`
	When string `json:"when"`
	Role string `json:"role"`
}

type wireEdit struct {
	Action   string `json:"action"`
	Type     string `json:"type"`
	Replaced string `json:"replaced"`
}

var conditionsByName = map[string]DisplayCondition{
	"both":      DisplayAlways,
	"before":    DisplayBefore,
	"after":     DisplayAfter,
	"collapsed": DisplayCollapsed,
}

var rolesByName = map[string]Role{
	"key":         RoleKey,
	"value":       RoleValue,
	"punctuation": RolePunctuation,
	"marker":      RoleMarker,
}

// Decode parses an engine-produced tree and computes its aggregate
// counts. Malformed JSON is an error. Unknown enum names are not:
// unknown actions drop the edit, unknown classifications become
// Unclassified, unknown display conditions render on both sides.
func Decode(data []byte) (*Node, error) {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(err, "change.Decode")
	}
	root := w.convert()
	root.Recount()
	return root, nil
}

func (w *wireNode) convert() *Node {
	node := &Node{
		ID:     w.ID,
		Indent: w.Indent,
	}
	if len(w.Tokens) > 0 {
		node.Tokens = make([]Token, len(w.Tokens))
		for i, t := range w.Tokens {
			node.Tokens[i] = Token{
				Text: t.Text,
				When: conditionsByName[t.When],
				Role: rolesByName[t.Role],
			}
		}
	}
	if w.Edit != nil {
		if action, ok := ParseAction(w.Edit.Action); ok {
			node.Edit = &Edit{
				Action:   action,
				Class:    ParseClassification(w.Edit.Type),
				Replaced: w.Edit.Replaced,
			}
		}
	}
	if len(w.Children) > 0 {
		node.Children = make([]*Node, 0, len(w.Children))
		for _, c := range w.Children {
			if c == nil {
				continue
			}
			node.Children = append(node.Children, c.convert())
		}
	}
	return node
}
