// Package extractor derives the set of namespace-qualified translation
// keys referenced in a TypeScript/JavaScript source file.
//
// Two call shapes are recognized:
//
//	const t = useTranslations("Checkout")          // binding-producing
//	const t = await getTranslations({namespace: "Checkout"})
//	t("title")                                      // key-use
//	t.rich("terms")
//
// Extraction walks the syntax tree once, recording namespace binding
// declarations and raw key references against a lexical scope table; a
// separate resolution pass (resolver.go) turns them into fully-qualified
// keys. Unrecognized call shapes fall through silently.
package extractor

import (
	"log/slog"
	"strconv"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"intlscan/pkg/parser"
)

// Binder call names. The string argument (or the object form's namespace
// property), split on ".", becomes the namespace path.
const (
	useTranslations = "useTranslations"
	getTranslations = "getTranslations"
)

// Extractor extracts translation keys from source files. Safe for
// concurrent use; all per-file state lives in the FileExtraction.
type Extractor struct {
	parsers *parser.Manager
	logger  *slog.Logger
}

// NewExtractor creates an extractor on top of a parser Manager.
func NewExtractor(pm *parser.Manager, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{parsers: pm, logger: logger}
}

// ExtractFile parses one file and returns its binding declarations and raw
// key references. The parse tree is file-scoped and closed before return.
//
// A file whose tree contains syntax errors yields a *parser.ParseError;
// callers treat it as fatal for that file only, never for a batch.
func (e *Extractor) ExtractFile(filePath string, source []byte) (*FileExtraction, error) {
	tree, err := e.parsers.ParseFile(source, filePath)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if errs := parser.FindSyntaxErrors(root); len(errs) > 0 {
		return nil, &parser.ParseError{File: filePath, Errors: errs}
	}

	fe := &FileExtraction{
		File:   filePath,
		Scopes: NewScopeTable(),
	}
	w := &walker{
		source:     source,
		fe:         fe,
		boundNames: make(map[string]struct{}),
	}
	w.walk(root, 0)

	return fe, nil
}

// ExtractKeys is the common ExtractFile+Resolve path: one file in,
// resolved key sequence and diagnostics out.
func (e *Extractor) ExtractKeys(filePath string, source []byte) ([]Key, []Diagnostic, error) {
	fe, err := e.ExtractFile(filePath, source)
	if err != nil {
		return nil, nil, err
	}
	keys, diags := Resolve(fe)
	return keys, append(fe.Diagnostics, diags...), nil
}

// walker carries the per-file walk state.
type walker struct {
	source []byte
	fe     *FileExtraction

	// boundNames holds every local name bound so far in the file, so
	// key-use recognition only fires for names that can resolve. Scope
	// correctness is enforced later by the resolver.
	boundNames map[string]struct{}
}

// walk visits node and its children, pushing a scope frame for
// function-like and block-like nodes.
func (w *walker) walk(node *ts.Node, scope ScopeID) {
	switch node.Kind() {
	case "function_declaration", "generator_function_declaration",
		"function_expression", "function", "generator_function",
		"arrow_function", "method_definition",
		"statement_block", "class_body":
		scope = w.fe.Scopes.Push(scope)

	case "variable_declarator":
		w.visitDeclarator(node, scope)

	case "call_expression":
		w.visitCall(node, scope)
	}

	for i := uint(0); i < uint(node.ChildCount()); i++ {
		w.walk(node.Child(i), scope)
	}
}

// visitDeclarator recognizes binding-producing declarations:
//
//	const t = useTranslations("X")
//	const t = getTranslations("X")
//	const t = await getTranslations({namespace: "X.Sub"})
func (w *walker) visitDeclarator(node *ts.Node, scope ScopeID) {
	name := node.ChildByFieldName("name")
	if name == nil || name.Kind() != "identifier" {
		// Destructured targets can't be used as a callee; skip.
		return
	}

	call := node.ChildByFieldName("value")
	if call == nil {
		return
	}
	if call.Kind() == "await_expression" {
		call = firstChildOfKind(call, "call_expression")
	}
	if call == nil || call.Kind() != "call_expression" {
		return
	}

	callee := call.ChildByFieldName("function")
	if callee == nil || callee.Kind() != "identifier" {
		return
	}
	calleeName := callee.Utf8Text(w.source)
	if calleeName != useTranslations && calleeName != getTranslations {
		return
	}

	namespace, ok := namespaceArgument(call, w.source)
	if !ok {
		w.diag(call, "translation binding has no statically known namespace, skipped")
		return
	}

	localName := name.Utf8Text(w.source)
	pos := node.StartPosition()
	w.fe.Bindings = append(w.fe.Bindings, BindingDecl{
		LocalName: localName,
		Namespace: splitNamespace(namespace),
		Scope:     scope,
		Line:      uint32(pos.Row + 1),
		Column:    uint32(pos.Column + 1),
	})
	w.boundNames[localName] = struct{}{}
}

// visitCall recognizes key-use calls on a bound local name: `t("key")`
// and one-level member access like `t.rich("key")` or `t.markup("key")`.
func (w *walker) visitCall(node *ts.Node, scope ScopeID) {
	callee := node.ChildByFieldName("function")
	if callee == nil {
		return
	}

	var localName string
	switch callee.Kind() {
	case "identifier":
		localName = callee.Utf8Text(w.source)
	case "member_expression":
		object := callee.ChildByFieldName("object")
		if object == nil || object.Kind() != "identifier" {
			return
		}
		localName = object.Utf8Text(w.source)
	default:
		return
	}

	// Only names known to be translation bindings are candidates; other
	// calls with string arguments are unrelated and fall through.
	if _, ok := w.boundNames[localName]; !ok {
		return
	}

	arg := firstArgument(node)
	if arg == nil {
		return
	}
	leaf, ok := stringLiteral(arg, w.source)
	if !ok {
		w.diag(node, "translation key is not a string literal, skipped")
		return
	}

	pos := node.StartPosition()
	w.fe.Refs = append(w.fe.Refs, RawRef{
		LocalName: localName,
		LeafKey:   leaf,
		Scope:     scope,
		Line:      uint32(pos.Row + 1),
		Column:    uint32(pos.Column + 1),
	})
}

func (w *walker) diag(node *ts.Node, msg string) {
	pos := node.StartPosition()
	w.fe.Diagnostics = append(w.fe.Diagnostics, Diagnostic{
		File:    w.fe.File,
		Line:    uint32(pos.Row + 1),
		Column:  uint32(pos.Column + 1),
		Message: msg,
	})
}

// namespaceArgument extracts the namespace string from a binder call:
// either a string-literal first argument, or an object first argument
// with a string-valued "namespace" property.
func namespaceArgument(call *ts.Node, source []byte) (string, bool) {
	arg := firstArgument(call)
	if arg == nil {
		return "", false
	}

	if s, ok := stringLiteral(arg, source); ok {
		return s, true
	}

	if arg.Kind() != "object" {
		return "", false
	}
	for i := uint(0); i < uint(arg.ChildCount()); i++ {
		pair := arg.Child(i)
		if pair == nil || pair.Kind() != "pair" {
			continue
		}
		key := pair.ChildByFieldName("key")
		if key == nil {
			continue
		}
		keyName := key.Utf8Text(source)
		if key.Kind() == "string" {
			keyName, _ = stringLiteral(key, source)
		}
		if keyName != "namespace" {
			continue
		}
		value := pair.ChildByFieldName("value")
		if value == nil {
			return "", false
		}
		return stringLiteral(value, source)
	}
	return "", false
}

// firstArgument returns the first real argument of a call_expression,
// skipping punctuation and comments.
func firstArgument(call *ts.Node) *ts.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	for i := uint(0); i < uint(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		if child != nil && child.Kind() != "comment" {
			return child
		}
	}
	return nil
}

// stringLiteral returns the runtime value of a plain string literal node,
// with escape sequences decoded the way the engine cooks them. Computed
// expressions, template strings and identifiers are rejected.
func stringLiteral(node *ts.Node, source []byte) (string, bool) {
	if node == nil || node.Kind() != "string" {
		return "", false
	}
	var out []byte
	for i := uint(0); i < uint(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "string_fragment":
			out = append(out, child.Utf8Text(source)...)
		case "escape_sequence":
			out = append(out, decodeEscape(child.Utf8Text(source))...)
		}
	}
	return string(out), true
}

// decodeEscape converts one JS escape sequence (backslash included) to
// the characters it produces at runtime. Malformed sequences are kept
// verbatim rather than dropped.
func decodeEscape(seq string) string {
	if len(seq) < 2 || seq[0] != '\\' {
		return seq
	}
	switch seq[1] {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case 'b':
		return "\b"
	case 'f':
		return "\f"
	case 'v':
		return "\v"
	case '0':
		if len(seq) == 2 {
			return "\x00"
		}
		return seq
	case 'x':
		if code, err := strconv.ParseUint(seq[2:], 16, 32); err == nil {
			return string(rune(code))
		}
		return seq
	case 'u':
		body := seq[2:]
		if strings.HasPrefix(body, "{") && strings.HasSuffix(body, "}") {
			body = body[1 : len(body)-1]
		}
		if code, err := strconv.ParseUint(body, 16, 32); err == nil {
			return string(rune(code))
		}
		return seq
	case '\n':
		// Line continuation contributes nothing.
		return ""
	default:
		// Identity escapes: \', \", \\, \/ and any other escaped char.
		return seq[1:]
	}
}

func firstChildOfKind(node *ts.Node, kind string) *ts.Node {
	for i := uint(0); i < uint(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}
