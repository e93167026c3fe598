// Package parsers extracts comparable declarations from Rust source files and
// from the rust code samples embedded in Markdown specification documents.
package parsers

import (
	"errors"
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/mvp-joe/spec-check/internal/item"
)

var rustLanguage = sitter.NewLanguage(rust.Language())

var errNoTree = errors.New("parser returned no tree")

// Options controls which declarations are extracted.
type Options struct {
	// CheckPrivate keeps non-pub declarations, tagged item.Private.
	CheckPrivate bool
}

// ExtractSource parses one Rust source file and returns its top-level declarations.
func ExtractSource(path string, source []byte, opts Options) (*item.Set, error) {
	tree, err := parseRust(source)
	if err != nil {
		return nil, &ParseError{File: path, Msg: err.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()
	if bad := firstSyntaxError(root); bad != nil {
		pos := bad.StartPosition()
		return nil, &ParseError{
			File:   path,
			Line:   int(pos.Row) + 1,
			Column: int(pos.Column) + 1,
			Msg:    describeSyntaxError(bad, source),
		}
	}

	return Walk(root, source, opts), nil
}

// Walk collects the top-level declarations under a parsed source_file node.
// Both ExtractSource and ExtractSamples go through it.
func Walk(root *sitter.Node, source []byte, opts Options) *item.Set {
	return newWalker(source, opts, nil).walk(root)
}

func parseRust(source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(rustLanguage); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, errNoTree
	}
	return tree, nil
}

type walker struct {
	source []byte
	opts   Options
	lineOf func(row int) int
	set    *item.Set
}

func newWalker(source []byte, opts Options, lineOf func(row int) int) *walker {
	if lineOf == nil {
		lineOf = func(row int) int { return row + 1 }
	}
	return &walker{source: source, opts: opts, lineOf: lineOf, set: item.NewSet()}
}

func (w *walker) walk(root *sitter.Node) *item.Set {
	w.eachDeclaration(root, func(n *sitter.Node, attrs []item.Attribute) {
		switch n.Kind() {
		case "struct_item":
			w.extractStruct(n, attrs)
		case "enum_item":
			w.extractEnum(n, attrs)
		case "trait_item":
			w.extractTrait(n, attrs)
		case "function_item", "function_signature_item":
			w.extractFunction(n, attrs)
		}
	})
	return w.set
}

// eachDeclaration calls fn for every named child of container that is not an
// attribute or comment, passing the outer attributes that precede it.
func (w *walker) eachDeclaration(container *sitter.Node, fn func(*sitter.Node, []item.Attribute)) {
	var pending []item.Attribute
	for i := 0; i < int(container.ChildCount()); i++ {
		child := container.Child(uint(i))
		if !child.IsNamed() || isComment(child) {
			continue
		}
		if child.Kind() == "attribute_item" {
			pending = append(pending, item.Attribute{
				Text:      displayText(child, w.source),
				Signature: canonical(child, w.source),
			})
			continue
		}
		fn(child, pending)
		pending = nil
	}
}

func (w *walker) visibility(node *sitter.Node) (item.Visibility, bool) {
	vis := item.Private
	if v := findChildByType(node, "visibility_modifier"); v != nil && displayText(v, w.source) == "pub" {
		vis = item.Public
	}
	return vis, vis == item.Public || w.opts.CheckPrivate
}

func (w *walker) line(node *sitter.Node) int {
	return w.lineOf(int(node.StartPosition().Row))
}

func (w *walker) extractStruct(node *sitter.Node, attrs []item.Attribute) {
	nameNode := node.ChildByFieldName("name")
	vis, keep := w.visibility(node)
	if nameNode == nil || !keep {
		return
	}
	name := extractNodeText(nameNode, w.source)

	sig := newSignature("struct")
	sig.add(node.ChildByFieldName("type_parameters"), w.source)

	body := node.ChildByFieldName("body")
	if body == nil {
		body = findChildByType(node, "field_declaration_list")
	}
	if body == nil {
		body = findChildByType(node, "ordered_field_declaration_list")
	}
	switch {
	case body == nil:
	case body.Kind() == "field_declaration_list":
		sig.fields("{", "}", w.namedFields(body))
	default:
		sig.fields("(", ")", w.positionalFields(body))
	}
	sig.add(findChildByType(node, "where_clause"), w.source)

	w.set.Add(item.Item{
		Kind:       item.Struct,
		Name:       name,
		Signature:  sig.canonical(),
		Display:    "struct " + name + sig.display(),
		Visibility: vis,
		Attributes: attrs,
		Line:       w.line(nameNode),
	})
}

// namedFields returns "vis name: type" parts for a field_declaration_list.
func (w *walker) namedFields(body *sitter.Node) []part {
	var parts []part
	for i := 0; i < int(body.ChildCount()); i++ {
		f := body.Child(uint(i))
		if f.Kind() != "field_declaration" {
			continue
		}
		prefix := ""
		if v := findChildByType(f, "visibility_modifier"); v != nil {
			prefix = displayText(v, w.source) + " "
		}
		name := extractNodeText(f.ChildByFieldName("name"), w.source)
		typ := f.ChildByFieldName("type")
		parts = append(parts, part{
			display: prefix + name + ": " + displayText(typ, w.source),
			canon:   strings.TrimSpace(canonical(findChildByType(f, "visibility_modifier"), w.source) + " " + name + " : " + canonical(typ, w.source)),
		})
	}
	return parts
}

// positionalFields returns "vis type" parts for a tuple struct body.
func (w *walker) positionalFields(body *sitter.Node) []part {
	var parts []part
	var vis *sitter.Node
	for i := 0; i < int(body.ChildCount()); i++ {
		f := body.Child(uint(i))
		if !f.IsNamed() || isComment(f) || f.Kind() == "attribute_item" {
			continue
		}
		if f.Kind() == "visibility_modifier" {
			vis = f
			continue
		}
		p := part{display: displayText(f, w.source), canon: canonical(f, w.source)}
		if vis != nil {
			p.display = displayText(vis, w.source) + " " + p.display
			p.canon = canonical(vis, w.source) + " " + p.canon
			vis = nil
		}
		parts = append(parts, p)
	}
	return parts
}

func (w *walker) extractEnum(node *sitter.Node, attrs []item.Attribute) {
	nameNode := node.ChildByFieldName("name")
	vis, keep := w.visibility(node)
	if nameNode == nil || !keep {
		return
	}
	name := extractNodeText(nameNode, w.source)

	sig := newSignature("enum")
	sig.add(node.ChildByFieldName("type_parameters"), w.source)
	sig.add(findChildByType(node, "where_clause"), w.source)

	var variants []part
	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			v := body.Child(uint(i))
			if v.Kind() != "enum_variant" {
				continue
			}
			variants = append(variants, part{display: displayText(v, w.source), canon: canonical(v, w.source)})
		}
	}
	sig.fields("{", "}", variants)

	w.set.Add(item.Item{
		Kind:       item.Enum,
		Name:       name,
		Signature:  sig.canonical(),
		Display:    "enum " + name + sig.display(),
		Visibility: vis,
		Attributes: attrs,
		Line:       w.line(nameNode),
	})
}

func (w *walker) extractTrait(node *sitter.Node, attrs []item.Attribute) {
	nameNode := node.ChildByFieldName("name")
	vis, keep := w.visibility(node)
	if nameNode == nil || !keep {
		return
	}
	traitName := extractNodeText(nameNode, w.source)

	methods := 0
	if body := node.ChildByFieldName("body"); body != nil {
		w.eachDeclaration(body, func(n *sitter.Node, methodAttrs []item.Attribute) {
			switch n.Kind() {
			case "function_signature_item", "function_item":
			default:
				return
			}
			methodName := n.ChildByFieldName("name")
			if methodName == nil {
				return
			}
			methods++
			canon, display := w.functionSignature(n)
			w.set.Add(item.Item{
				Kind:       item.TraitMethod,
				Name:       extractNodeText(methodName, w.source),
				Trait:      traitName,
				Signature:  canon,
				Display:    display,
				Visibility: vis,
				Attributes: methodAttrs,
				Line:       w.line(methodName),
			})
		})
	}
	if methods > 0 {
		return
	}

	// A trait without methods has nothing to compare except its header.
	sig := newSignature("trait")
	if findChildByType(node, "unsafe") != nil {
		sig = newSignature("unsafe trait")
	}
	sig.add(node.ChildByFieldName("type_parameters"), w.source)
	if bounds := node.ChildByFieldName("bounds"); bounds != nil {
		sig.add(bounds, w.source)
	}
	sig.add(findChildByType(node, "where_clause"), w.source)

	w.set.Add(item.Item{
		Kind:       item.Trait,
		Name:       traitName,
		Signature:  sig.canonical(),
		Display:    sig.keyword + " " + traitName + sig.display(),
		Visibility: vis,
		Attributes: attrs,
		Line:       w.line(nameNode),
	})
}

func (w *walker) extractFunction(node *sitter.Node, attrs []item.Attribute) {
	nameNode := node.ChildByFieldName("name")
	vis, keep := w.visibility(node)
	if nameNode == nil || !keep {
		return
	}
	canon, display := w.functionSignature(node)
	w.set.Add(item.Item{
		Kind:       item.Function,
		Name:       extractNodeText(nameNode, w.source),
		Signature:  canon,
		Display:    display,
		Visibility: vis,
		Attributes: attrs,
		Line:       w.line(nameNode),
	})
}

// functionSignature builds the signature of a function_item or
// function_signature_item: modifiers, generics, parameter types, return type
// and where clause. Parameter names and bodies are not part of it.
func (w *walker) functionSignature(node *sitter.Node) (canon, display string) {
	name := extractNodeText(node.ChildByFieldName("name"), w.source)

	var c, d strings.Builder
	if mods := findChildByType(node, "function_modifiers"); mods != nil {
		c.WriteString(canonical(mods, w.source) + " ")
		d.WriteString(displayText(mods, w.source) + " ")
	}
	c.WriteString("fn")
	d.WriteString("fn " + name)

	if tp := node.ChildByFieldName("type_parameters"); tp != nil {
		c.WriteString(" " + canonical(tp, w.source))
		d.WriteString(displayText(tp, w.source))
	}

	params := w.parameterTypes(node.ChildByFieldName("parameters"))
	canonParams := make([]string, len(params))
	displayParams := make([]string, len(params))
	for i, p := range params {
		canonParams[i] = p.canon
		displayParams[i] = p.display
	}
	c.WriteString(" ( " + strings.Join(canonParams, " , ") + " )")
	d.WriteString("(" + strings.Join(displayParams, ", ") + ")")

	if ret := node.ChildByFieldName("return_type"); ret != nil {
		c.WriteString(" -> " + canonical(ret, w.source))
		d.WriteString(" -> " + displayText(ret, w.source))
	}
	if wc := findChildByType(node, "where_clause"); wc != nil {
		c.WriteString(" " + canonical(wc, w.source))
		d.WriteString(" " + displayText(wc, w.source))
	}
	return c.String(), d.String()
}

// parameterTypes returns the type of each parameter in declared order.
// self parameters and variadics are kept whole.
func (w *walker) parameterTypes(params *sitter.Node) []part {
	if params == nil {
		return nil
	}
	var parts []part
	for i := 0; i < int(params.ChildCount()); i++ {
		p := params.Child(uint(i))
		if !p.IsNamed() || isComment(p) || p.Kind() == "attribute_item" {
			continue
		}
		target := p
		if p.Kind() == "parameter" {
			if t := p.ChildByFieldName("type"); t != nil {
				target = t
			}
		}
		parts = append(parts, part{display: displayText(target, w.source), canon: canonical(target, w.source)})
	}
	return parts
}

type part struct {
	display string
	canon   string
}

// signature accumulates the canonical and display forms of a type
// declaration in step.
type signature struct {
	keyword string
	canon   []string
	disp    strings.Builder
}

func newSignature(keyword string) *signature {
	return &signature{keyword: keyword, canon: []string{keyword}}
}

func (s *signature) add(node *sitter.Node, source []byte) {
	if node == nil {
		return
	}
	s.canon = append(s.canon, canonical(node, source))
	switch node.Kind() {
	case "type_parameters":
		s.disp.WriteString(displayText(node, source))
	case "trait_bounds":
		s.disp.WriteString(displayText(node, source))
	default:
		s.disp.WriteString(" " + displayText(node, source))
	}
}

func (s *signature) fields(open, closing string, parts []part) {
	canon := make([]string, len(parts))
	disp := make([]string, len(parts))
	for i, p := range parts {
		canon[i] = p.canon
		disp[i] = p.display
	}
	s.canon = append(s.canon, open, strings.Join(canon, " , "), closing)
	if open == "{" {
		if len(parts) == 0 {
			s.disp.WriteString(" {}")
			return
		}
		s.disp.WriteString(" { " + strings.Join(disp, ", ") + " }")
		return
	}
	s.disp.WriteString(open + strings.Join(disp, ", ") + closing)
}

func (s *signature) canonical() string {
	return strings.Join(s.canon, " ")
}

func (s *signature) display() string {
	return s.disp.String()
}
