// Where: internal/synth/node.go
// What: Ordered YAML node builders and intrinsic function helpers.
// Why: Keep template output deterministic and readable (Type before Properties).
package synth

import (
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

type object struct {
	node *yaml.Node
}

func newObject() *object {
	return &object{node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

// set appends key in insertion order. Nil values are skipped.
func (o *object) set(key string, value any) *object {
	if value == nil {
		return o
	}
	child := toNode(value)
	if child == nil {
		return o
	}
	o.node.Content = append(o.node.Content, scalar("!!str", key), child)
	return o
}

func (o *object) empty() bool {
	return len(o.node.Content) == 0
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func toNode(value any) *yaml.Node {
	switch v := value.(type) {
	case *object:
		if v == nil {
			return nil
		}
		return v.node
	case *yaml.Node:
		return v
	case string:
		return scalar("!!str", v)
	case int:
		return scalar("!!int", strconv.Itoa(v))
	case int64:
		return scalar("!!int", strconv.FormatInt(v, 10))
	case bool:
		return scalar("!!bool", strconv.FormatBool(v))
	case []string:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v {
			seq.Content = append(seq.Content, scalar("!!str", item))
		}
		return seq
	case []any:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v {
			if child := toNode(item); child != nil {
				seq.Content = append(seq.Content, child)
			}
		}
		return seq
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		obj := newObject()
		for _, key := range keys {
			obj.set(key, v[key])
		}
		return obj.node
	default:
		return nil
	}
}

func ref(id string) *object {
	return newObject().set("Ref", id)
}

func getAtt(id, attr string) *object {
	return newObject().set("Fn::GetAtt", []string{id, attr})
}

func sub(format string) *object {
	return newObject().set("Fn::Sub", format)
}
