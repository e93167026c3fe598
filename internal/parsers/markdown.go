package parsers

import (
	"bytes"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/mvp-joe/spec-check/internal/item"
)

// SampleLanguage is the fenced code block language whose blocks are extracted.
// The match is exact and case-sensitive.
const SampleLanguage = "rust"

// sampleBlock locates one extracted code block inside the synthetic unit.
type sampleBlock struct {
	offset    int // byte offset of the block in the unit
	firstLine int // 0-based unit row of the block's first line
	docLine   int // 1-based document line of the block's first line
}

// samples is the concatenation of a document's rust blocks.
type samples struct {
	unit   []byte
	blocks []sampleBlock
}

// ExtractSamples parses a Markdown document, concatenates its rust code blocks
// in document order and returns the declarations they contain.
// A document without rust blocks yields an empty set.
func ExtractSamples(path string, doc []byte, opts Options) (*item.Set, error) {
	s := collectSamples(doc)
	if len(s.blocks) == 0 {
		return item.NewSet(), nil
	}

	tree, err := parseRust(s.unit)
	if err != nil {
		return nil, &SampleParseError{Document: path, Block: 0, Line: s.blocks[0].docLine, Msg: err.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()
	if bad := firstSyntaxError(root); bad != nil {
		if perr := s.blameBlock(path); perr != nil {
			return nil, perr
		}
		return nil, &SampleParseError{
			Document: path,
			Block:    s.blockAt(int(bad.StartByte())),
			Line:     s.docLine(int(bad.StartPosition().Row)),
			Msg:      describeSyntaxError(bad, s.unit),
		}
	}

	return newWalker(s.unit, opts, s.docLine).walk(root), nil
}

// blameBlock parses each block on its own and returns an error for the first
// one that fails, or nil if every block parses alone. An unclosed delimiter
// in one block can swallow the blocks after it in the joined unit, so the
// first error node there does not always sit in the failing block.
func (s samples) blameBlock(path string) *SampleParseError {
	for i, b := range s.blocks {
		end := len(s.unit)
		if i+1 < len(s.blocks) {
			end = s.blocks[i+1].offset
		}
		src := s.unit[b.offset:end]

		tree, err := parseRust(src)
		if err != nil {
			return &SampleParseError{Document: path, Block: i, Line: b.docLine, Msg: err.Error()}
		}
		bad := firstSyntaxError(tree.RootNode())
		if bad == nil {
			tree.Close()
			continue
		}
		perr := &SampleParseError{
			Document: path,
			Block:    i,
			Line:     b.docLine + int(bad.StartPosition().Row),
			Msg:      describeSyntaxError(bad, src),
		}
		tree.Close()
		return perr
	}
	return nil
}

// collectSamples walks the Markdown AST and gathers every fenced block tagged
// with SampleLanguage.
func collectSamples(doc []byte) samples {
	var s samples
	var buf bytes.Buffer
	rows := 0

	root := goldmark.New().Parser().Parse(text.NewReader(doc))
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := n.(*ast.FencedCodeBlock)
		if !ok || string(block.Language(doc)) != SampleLanguage {
			return ast.WalkContinue, nil
		}

		lines := block.Lines()
		sb := sampleBlock{offset: buf.Len(), firstLine: rows, docLine: fenceLine(block, doc) + 1}
		if lines.Len() > 0 {
			sb.docLine = lineOfOffset(doc, lines.At(0).Start)
		}
		s.blocks = append(s.blocks, sb)

		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(doc))
		}
		if buf.Len() > 0 && buf.Bytes()[buf.Len()-1] != '\n' {
			buf.WriteByte('\n')
		}
		rows = bytes.Count(buf.Bytes(), []byte{'\n'})
		return ast.WalkSkipChildren, nil
	})

	s.unit = buf.Bytes()
	return s
}

// blockAt returns the index of the block containing the unit byte offset.
func (s samples) blockAt(offset int) int {
	i := sort.Search(len(s.blocks), func(i int) bool { return s.blocks[i].offset > offset })
	if i == 0 {
		return 0
	}
	return i - 1
}

// docLine maps a 0-based unit row to its 1-based document line.
func (s samples) docLine(row int) int {
	i := sort.Search(len(s.blocks), func(i int) bool { return s.blocks[i].firstLine > row })
	if i == 0 {
		return row + 1
	}
	b := s.blocks[i-1]
	return b.docLine + (row - b.firstLine)
}

// fenceLine returns the 1-based line of the opening fence, or 0 if unknown.
func fenceLine(block *ast.FencedCodeBlock, doc []byte) int {
	if block.Info == nil {
		return 0
	}
	return lineOfOffset(doc, block.Info.Segment.Start)
}

func lineOfOffset(doc []byte, offset int) int {
	if offset > len(doc) {
		offset = len(doc)
	}
	return bytes.Count(doc[:offset], []byte{'\n'}) + 1
}
