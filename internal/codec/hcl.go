package codec

import (
	"fmt"
	"io"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"graphedit/internal/domain"
)

// HCLCodec handles HCL import/export. A description is written as
//
//	version = 0.5
//
//	loop {
//	  while = ":continue"
//	}
//
//	node "llm" {
//	  agent = "openAIAgent"
//	  inputs {
//	    prompt = ":userInput.text"
//	  }
//	  graph {
//	    node "inner" { ... }
//	  }
//	}
//
// with node blocks and input attributes in declaration order.
type HCLCodec struct{}

// NewHCLCodec creates a new HCL codec
func NewHCLCodec() *HCLCodec {
	return &HCLCodec{}
}

// Format returns the codec format identifier
func (c *HCLCodec) Format() string {
	return "hcl"
}

// Parse imports a graph description from HCL
func (c *HCLCodec) Parse(r io.Reader) (*domain.GraphData, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read HCL: %w", err)
	}

	file, diags := hclsyntax.ParseConfig(src, "graph.hcl", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, malformed("HCL", diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, malformed("HCL", fmt.Errorf("unexpected body type %T", file.Body))
	}

	g, err := decodeGraphBody(body, true)
	if err != nil {
		return nil, malformed("HCL", err)
	}
	return g, nil
}

// Export writes a graph description as HCL
func (c *HCLCodec) Export(g *domain.GraphData, w io.Writer) error {
	f := hclwrite.NewEmptyFile()
	if err := encodeGraphBody(f.Body(), g, true); err != nil {
		return fmt.Errorf("failed to encode HCL: %w", err)
	}
	if _, err := w.Write(f.Bytes()); err != nil {
		return fmt.Errorf("failed to write HCL: %w", err)
	}
	return nil
}

func encodeGraphBody(body *hclwrite.Body, g *domain.GraphData, root bool) error {
	if g.Version != 0 {
		body.SetAttributeValue("version", cty.NumberFloatVal(g.Version))
	}
	if g.Concurrency != 0 {
		body.SetAttributeValue("concurrency", cty.NumberIntVal(int64(g.Concurrency)))
	}
	if g.Loop != nil {
		if err := encodeLoop(body.AppendNewBlock("loop", nil).Body(), g.Loop); err != nil {
			return err
		}
	}

	for _, e := range g.Nodes {
		body.AppendNewline()
		block := body.AppendNewBlock("node", []string{e.Key})
		if err := encodeNode(block.Body(), e.Value); err != nil {
			return fmt.Errorf("node %q: %w", e.Key, err)
		}
	}

	if root && g.Metadata != nil {
		body.AppendNewline()
		encodeMetadata(body.AppendNewBlock("metadata", nil).Body(), g.Metadata)
	}
	return nil
}

func encodeLoop(body *hclwrite.Body, spec *domain.LoopSpec) error {
	if spec.While != nil {
		v, err := toCty(spec.While)
		if err != nil {
			return fmt.Errorf("loop while: %w", err)
		}
		body.SetAttributeValue("while", v)
	}
	if spec.Count != 0 {
		body.SetAttributeValue("count", cty.NumberIntVal(int64(spec.Count)))
	}
	return nil
}

func encodeNode(body *hclwrite.Body, nd domain.NodeData) error {
	if nd.Agent != "" {
		body.SetAttributeValue("agent", cty.StringVal(nd.Agent))
	}
	if nd.Value != nil {
		v, err := toCty(nd.Value)
		if err != nil {
			return fmt.Errorf("value: %w", err)
		}
		body.SetAttributeValue("value", v)
	}
	if nd.Update != "" {
		body.SetAttributeValue("update", cty.StringVal(nd.Update))
	}
	if nd.IsResult {
		body.SetAttributeValue("is_result", cty.True)
	}
	if len(nd.Params) > 0 {
		v, err := toCty(nd.Params)
		if err != nil {
			return fmt.Errorf("params: %w", err)
		}
		body.SetAttributeValue("params", v)
	}

	if len(nd.Inputs) > 0 {
		inputs := body.AppendNewBlock("inputs", nil).Body()
		for _, in := range nd.Inputs {
			if !hclsyntax.ValidIdentifier(in.Key) {
				return fmt.Errorf("input %q is not a valid HCL identifier", in.Key)
			}
			v, err := toCty(in.Value)
			if err != nil {
				return fmt.Errorf("input %q: %w", in.Key, err)
			}
			inputs.SetAttributeValue(in.Key, v)
		}
	}

	if nd.Graph != nil {
		if err := encodeGraphBody(body.AppendNewBlock("graph", nil).Body(), nd.Graph, false); err != nil {
			return err
		}
	}
	return nil
}

func encodeMetadata(body *hclwrite.Body, md *domain.Metadata) {
	if md.NextID != 0 {
		body.SetAttributeValue("next_id", cty.NumberIntVal(int64(md.NextID)))
	}
	keys := make([]string, 0, len(md.Positions))
	for k := range md.Positions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pos := md.Positions[k]
		b := body.AppendNewBlock("position", []string{k}).Body()
		b.SetAttributeValue("x", cty.NumberFloatVal(pos.X))
		b.SetAttributeValue("y", cty.NumberFloatVal(pos.Y))
	}
}

// orderedAttributes returns a body's attributes in source order
func orderedAttributes(body *hclsyntax.Body) []*hclsyntax.Attribute {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, a := range body.Attributes {
		attrs = append(attrs, a)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})
	return attrs
}

// attrValue evaluates an attribute without variables or functions
func attrValue(a *hclsyntax.Attribute) (any, error) {
	v, diags := a.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s: %w", a.SrcRange, diags)
	}
	return fromCty(v)
}

func decodeGraphBody(body *hclsyntax.Body, root bool) (*domain.GraphData, error) {
	g := &domain.GraphData{}
	for _, a := range orderedAttributes(body) {
		v, err := attrValue(a)
		if err != nil {
			return nil, err
		}
		switch a.Name {
		case "version":
			f, ok := asFloat(v)
			if !ok {
				return nil, fmt.Errorf("%s: version must be a number", a.SrcRange)
			}
			g.Version = f
		case "concurrency":
			n, ok := v.(int)
			if !ok {
				return nil, fmt.Errorf("%s: concurrency must be an integer", a.SrcRange)
			}
			g.Concurrency = n
		default:
			return nil, fmt.Errorf("%s: unexpected attribute %q", a.SrcRange, a.Name)
		}
	}

	for _, b := range body.Blocks {
		switch {
		case b.Type == "loop" && len(b.Labels) == 0:
			spec, err := decodeLoop(b.Body)
			if err != nil {
				return nil, err
			}
			g.Loop = spec
		case b.Type == "node" && len(b.Labels) == 1:
			if _, dup := g.Nodes.Get(b.Labels[0]); dup {
				return nil, fmt.Errorf("%s: duplicate node %q", b.DefRange(), b.Labels[0])
			}
			nd, err := decodeNode(b.Body)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", b.Labels[0], err)
			}
			g.Nodes = append(g.Nodes, domain.Entry[domain.NodeData]{Key: b.Labels[0], Value: nd})
		case root && b.Type == "metadata" && len(b.Labels) == 0:
			md, err := decodeMetadata(b.Body)
			if err != nil {
				return nil, err
			}
			g.Metadata = md
		default:
			return nil, fmt.Errorf("%s: unexpected block %q", b.DefRange(), b.Type)
		}
	}
	return g, nil
}

func decodeLoop(body *hclsyntax.Body) (*domain.LoopSpec, error) {
	spec := &domain.LoopSpec{}
	for _, a := range orderedAttributes(body) {
		v, err := attrValue(a)
		if err != nil {
			return nil, err
		}
		switch a.Name {
		case "while":
			spec.While = v
		case "count":
			n, ok := v.(int)
			if !ok {
				return nil, fmt.Errorf("%s: count must be an integer", a.SrcRange)
			}
			spec.Count = n
		default:
			return nil, fmt.Errorf("%s: unexpected loop attribute %q", a.SrcRange, a.Name)
		}
	}
	return spec, nil
}

func decodeNode(body *hclsyntax.Body) (domain.NodeData, error) {
	var nd domain.NodeData
	for _, a := range orderedAttributes(body) {
		v, err := attrValue(a)
		if err != nil {
			return nd, err
		}
		var ok bool
		switch a.Name {
		case "agent":
			nd.Agent, ok = v.(string)
		case "value":
			nd.Value, ok = v, true
		case "update":
			nd.Update, ok = v.(string)
		case "is_result":
			nd.IsResult, ok = v.(bool)
		case "params":
			nd.Params, ok = v.(map[string]any)
		default:
			return nd, fmt.Errorf("%s: unexpected attribute %q", a.SrcRange, a.Name)
		}
		if !ok {
			return nd, fmt.Errorf("%s: attribute %q has the wrong type", a.SrcRange, a.Name)
		}
	}

	for _, b := range body.Blocks {
		switch b.Type {
		case "inputs":
			for _, a := range orderedAttributes(b.Body) {
				v, err := attrValue(a)
				if err != nil {
					return nd, err
				}
				nd.Inputs = append(nd.Inputs, domain.Entry[any]{Key: a.Name, Value: v})
			}
		case "graph":
			nested, err := decodeGraphBody(b.Body, false)
			if err != nil {
				return nd, err
			}
			nd.Graph = nested
		default:
			return nd, fmt.Errorf("%s: unexpected block %q", b.DefRange(), b.Type)
		}
	}
	return nd, nil
}

func decodeMetadata(body *hclsyntax.Body) (*domain.Metadata, error) {
	md := &domain.Metadata{}
	for _, a := range orderedAttributes(body) {
		v, err := attrValue(a)
		if err != nil {
			return nil, err
		}
		n, ok := v.(int)
		if a.Name != "next_id" || !ok {
			return nil, fmt.Errorf("%s: unexpected metadata attribute %q", a.SrcRange, a.Name)
		}
		md.NextID = n
	}

	for _, b := range body.Blocks {
		if b.Type != "position" || len(b.Labels) != 1 {
			return nil, fmt.Errorf("%s: unexpected block %q", b.DefRange(), b.Type)
		}
		var pos domain.Position
		for _, a := range orderedAttributes(b.Body) {
			v, err := attrValue(a)
			if err != nil {
				return nil, err
			}
			f, ok := asFloat(v)
			if !ok {
				return nil, fmt.Errorf("%s: %s must be a number", a.SrcRange, a.Name)
			}
			switch a.Name {
			case "x":
				pos.X = f
			case "y":
				pos.Y = f
			default:
				return nil, fmt.Errorf("%s: unexpected position attribute %q", a.SrcRange, a.Name)
			}
		}
		if md.Positions == nil {
			md.Positions = make(map[string]domain.Position)
		}
		md.Positions[b.Labels[0]] = pos
	}
	return md, nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
