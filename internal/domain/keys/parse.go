package keys

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/solrkeys/internal/domain"
)

// Reserved control entries of the generic key structure.
const (
	controlPrefix   = "#"
	ctrlConjunction = "#conjunction"
	ctrlNegation    = "#negation"
	ctrlEscaped     = "#escaped"
)

// Parse reads a generic key structure from a YAML or JSON document.
//
// Mapping entries named #conjunction, #negation and #escaped configure the
// node, other #-prefixed entries are ignored and the remaining entries become
// children in document order. A scalar document is a bare-string root.
//
// JSON documents are read token by token; yaml.v3 rejects JSON string
// escapes such as \/ that YAML does not share.
func Parse(data []byte) (Child, error) {
	if json.Valid(data) {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		return fromJSON(dec)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Child{}, fmt.Errorf("%w: %w", domain.ErrInvalidKeys, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return Subtree(NewNode()), nil
	}
	return fromYAML(doc.Content[0])
}

func fromYAML(n *yaml.Node) (Child, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Subtree(NewNode()), nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return Term(""), nil
		}
		return Term(n.Value), nil
	case yaml.SequenceNode:
		node := NewNode()
		for _, item := range n.Content {
			c, err := fromYAML(item)
			if err != nil {
				return Child{}, err
			}
			node.Children = append(node.Children, c)
		}
		return Subtree(node), nil
	case yaml.MappingNode:
		node, err := nodeFromMapping(n)
		if err != nil {
			return Child{}, err
		}
		return Subtree(node), nil
	default:
		return Child{}, domain.NewQueryError(domain.ErrInvalidKeys, "unsupported node at line %d", n.Line)
	}
}

func nodeFromMapping(n *yaml.Node) (*Node, error) {
	node := NewNode()
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if !strings.HasPrefix(key.Value, controlPrefix) {
			c, err := fromYAML(value)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, c)
			continue
		}
		if err := applyControl(node, key.Value, value); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func applyControl(node *Node, name string, value *yaml.Node) error {
	switch name {
	case ctrlConjunction:
		var c string
		if err := value.Decode(&c); err != nil {
			return domain.NewQueryError(domain.ErrInvalidKeys, "%s: %v", name, err)
		}
		return setConjunction(node, c)
	case ctrlNegation:
		if err := value.Decode(&node.Negation); err != nil {
			return domain.NewQueryError(domain.ErrInvalidKeys, "%s: %v", name, err)
		}
	case ctrlEscaped:
		if err := value.Decode(&node.Escaped); err != nil {
			return domain.NewQueryError(domain.ErrInvalidKeys, "%s: %v", name, err)
		}
	}
	return nil
}

func setConjunction(node *Node, c string) error {
	switch conj := Conjunction(strings.ToUpper(strings.TrimSpace(c))); conj {
	case And, Or:
		node.Conjunction = conj
		return nil
	default:
		return domain.NewQueryError(domain.ErrInvalidKeys, "%s must be AND or OR, got %q", ctrlConjunction, c)
	}
}

func fromJSON(dec *json.Decoder) (Child, error) {
	tok, err := dec.Token()
	if err != nil {
		return Child{}, domain.NewQueryError(domain.ErrInvalidKeys, "%v", err)
	}
	switch v := tok.(type) {
	case json.Delim:
		node := NewNode()
		if v == '{' {
			err = objectFromJSON(dec, node)
		} else {
			err = arrayFromJSON(dec, node)
		}
		if err != nil {
			return Child{}, err
		}
		return Subtree(node), nil
	case nil:
		return Term(""), nil
	case string:
		return Term(v), nil
	case json.Number:
		return Term(v.String()), nil
	case bool:
		return Term(strconv.FormatBool(v)), nil
	default:
		return Child{}, domain.NewQueryError(domain.ErrInvalidKeys, "unexpected token %v", tok)
	}
}

func arrayFromJSON(dec *json.Decoder, node *Node) error {
	for dec.More() {
		c, err := fromJSON(dec)
		if err != nil {
			return err
		}
		node.Children = append(node.Children, c)
	}
	return closeJSON(dec)
}

func objectFromJSON(dec *json.Decoder, node *Node) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return domain.NewQueryError(domain.ErrInvalidKeys, "%v", err)
		}
		key, _ := tok.(string)
		if !strings.HasPrefix(key, controlPrefix) {
			c, err := fromJSON(dec)
			if err != nil {
				return err
			}
			node.Children = append(node.Children, c)
			continue
		}
		if err := applyJSONControl(dec, node, key); err != nil {
			return err
		}
	}
	return closeJSON(dec)
}

func applyJSONControl(dec *json.Decoder, node *Node, name string) error {
	switch name {
	case ctrlConjunction, ctrlNegation, ctrlEscaped:
	default:
		// Unknown control entries are skipped whole.
		_, err := fromJSON(dec)
		return err
	}

	tok, err := dec.Token()
	if err != nil {
		return domain.NewQueryError(domain.ErrInvalidKeys, "%v", err)
	}
	if name == ctrlConjunction {
		c, ok := tok.(string)
		if !ok {
			return domain.NewQueryError(domain.ErrInvalidKeys, "%s must be a string", name)
		}
		return setConjunction(node, c)
	}
	b, ok := tok.(bool)
	if !ok {
		return domain.NewQueryError(domain.ErrInvalidKeys, "%s must be a boolean", name)
	}
	if name == ctrlNegation {
		node.Negation = b
	} else {
		node.Escaped = b
	}
	return nil
}

func closeJSON(dec *json.Decoder) error {
	if _, err := dec.Token(); err != nil {
		return domain.NewQueryError(domain.ErrInvalidKeys, "%v", err)
	}
	return nil
}
