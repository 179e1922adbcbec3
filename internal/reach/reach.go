// Package reach implements reachability analysis (C8): a directed graph over
// typed declarations, built by walking the typed tree per the connection
// rules of spec §4.3, then a dead-code sweep from the program's entry points.
// Grounded on the teacher's Scope-chain traversal style in
// internal/compregister.Compiler, generalized from "walk to compile" to "walk
// to build a graph, then separately traverse that graph for liveness".
package reach

import (
	"fmt"
	"sort"

	"golang.org/x/exp/maps"

	"corec/internal/config"
	"corec/internal/decl"
	"corec/internal/diag"
	"corec/internal/engines"
	"corec/internal/span"
	"corec/internal/typedtree"
	"corec/internal/types"
)

// NodeKind tags which of spec §3's five reachability-graph node shapes a
// Node is.
type NodeKind uint8

const (
	NodeProgram NodeKind = iota
	NodeMethod
	NodeField
	NodeVariant
	NodeDominator
)

// Node is one reachability-graph node. Dominator nodes are never reported:
// function-exit and external-trait stubs carry a dummy span, while the
// others carry the span of the statement or expression they stand for.
// Every other kind carries the span of the declaration/field/variant it
// represents, used to render a dead-code warning and to dedup overlapping
// warnings by span containment.
type Node struct {
	Kind    NodeKind
	Span    span.Span
	Message string // human-readable description used in the dead-code warning
	Code    diag.Code
}

// Graph is the full reachability graph for one compilation unit. Edges are
// stored as an adjacency set (not a slice) since the same connection rule
// can fire more than once for the same (from, to) pair (e.g. two calls to
// the same function); a set keeps the graph's size bounded by distinct
// relationships rather than call-site count.
type Graph struct {
	nodes []Node
	edges map[int]map[int]bool

	fnEntry map[decl.ID]int
	fnExit  map[decl.ID]int

	fieldNode map[decl.ID]map[string]int
	enumNode  map[decl.ID]int
	variant   map[decl.ID]map[int]int

	implNode  map[decl.ID]int
	traitNode map[decl.ID]int

	entryPoints []int
}

func newGraph() *Graph {
	return &Graph{
		edges:     make(map[int]map[int]bool),
		fnEntry:   make(map[decl.ID]int),
		fnExit:    make(map[decl.ID]int),
		fieldNode: make(map[decl.ID]map[string]int),
		enumNode:  make(map[decl.ID]int),
		variant:   make(map[decl.ID]map[int]int),
		implNode:  make(map[decl.ID]int),
		traitNode: make(map[decl.ID]int),
	}
}

func (g *Graph) node(kind NodeKind, sp span.Span, code diag.Code, msg string) int {
	id := len(g.nodes)
	g.nodes = append(g.nodes, Node{Kind: kind, Span: sp, Code: code, Message: msg})
	return id
}

func (g *Graph) edge(from, to int) {
	if g.edges[from] == nil {
		g.edges[from] = make(map[int]bool)
	}
	g.edges[from][to] = true
}

func (g *Graph) edgeAll(froms []int, to int) {
	for _, f := range froms {
		g.edge(f, to)
	}
}

// Build constructs the reachability graph for prog and computes entry points
// per kind (spec §3): script/predicate programs enter only through `main`;
// contract/library programs enter through every public function, trait and
// impl block. Public structs and enums are not entry points.
func Build(e *engines.Engines, prog *typedtree.Program, kind config.ProgramKind) *Graph {
	g := newGraph()
	b := &builder{g: g, decls: e.Decls, types: e.Types}

	b.declareShapes(prog)
	b.declareEntries(prog, kind)
	b.declareImpls(prog)

	for _, fd := range prog.Functions {
		b.buildFunction(fd)
	}
	return g
}

type builder struct {
	g     *Graph
	decls *decl.Engine
	types *types.Engine
}

// declareShapes creates one program node per enum and trait declaration, an
// entry node plus an exit dominator per function, a field node per struct
// field, and a variant node per enum variant — the static graph skeleton
// every later edge attaches to. A struct gets no node of its own, and impl
// nodes are created by declareImpls.
func (b *builder) declareShapes(prog *typedtree.Program) {
	for _, id := range prog.Decls {
		d := b.decls.Get(id)
		switch d.Kind {
		case decl.KindStruct:
			fields := make(map[string]int, len(d.Fields))
			for _, f := range d.Fields {
				fields[f.Name] = b.g.node(NodeField, f.Span, diag.CodeUnreadField,
					fmt.Sprintf("field %q of struct %q is never read", f.Name, d.Name))
			}
			b.g.fieldNode[id] = fields

		case decl.KindEnum:
			b.g.enumNode[id] = b.g.node(NodeProgram, d.Span, diag.CodeDeadCode,
				fmt.Sprintf("enum %q", d.Name))
			variants := make(map[int]int, len(d.Fields))
			for i, v := range d.Fields {
				variants[i] = b.g.node(NodeVariant, v.Span, diag.CodeDeadEnumVariant,
					fmt.Sprintf("variant %q of enum %q is never constructed", v.Name, d.Name))
			}
			b.g.variant[id] = variants

		case decl.KindFunction:
			entry := b.g.node(NodeProgram, d.Span, diag.CodeDeadCode, fmt.Sprintf("function %q", d.Name))
			exit := b.g.node(NodeDominator, span.Dummy(), "", "")
			b.g.fnEntry[id] = entry
			b.g.fnExit[id] = exit

		case decl.KindTrait:
			b.g.traitNode[id] = b.g.node(NodeProgram, d.Span, diag.CodeDeadCode, fmt.Sprintf("trait %q", d.Name))
		}
	}
}

// declareImpls wires each impl block's method set to the impl node (spec
// §4.3's last bullet): known-trait impls get an edge from the trait's node;
// impls of a trait declared elsewhere get an "external trait" stub that is
// itself always treated as reachable, since whether the trait is used
// outside this compilation unit is unknowable here.
func (b *builder) declareImpls(prog *typedtree.Program) {
	for _, id := range prog.Decls {
		d := b.decls.Get(id)
		if d.Kind != decl.KindImpl {
			continue
		}
		implEntry := b.g.node(NodeProgram, d.Span, diag.CodeDeadCode, "impl block")
		b.g.implNode[id] = implEntry

		if d.HasTrait {
			if d.InCurrentMod {
				if traitID, ok := b.g.traitNode[d.Trait]; ok {
					b.g.edge(traitID, implEntry)
				}
			} else {
				stub := b.g.node(NodeDominator, span.Dummy(), "", "")
				b.g.entryPoints = append(b.g.entryPoints, stub)
				b.g.edge(stub, implEntry)
			}
		}

		for _, methodID := range d.Methods {
			if methodEntry, ok := b.g.fnEntry[methodID]; ok {
				b.g.edge(methodEntry, implEntry)
			}
		}
	}
}

// declareEntries computes the entry-point set per spec §3.
func (b *builder) declareEntries(prog *typedtree.Program, kind config.ProgramKind) {
	for _, id := range prog.Decls {
		d := b.decls.Get(id)
		if kind.EntersThroughMain() {
			if d.Kind == decl.KindFunction && d.IsMain {
				b.g.entryPoints = append(b.g.entryPoints, b.g.fnEntry[id])
			}
			continue
		}
		if d.Visibility != decl.VisibilityPublic {
			continue
		}
		switch d.Kind {
		case decl.KindFunction:
			b.g.entryPoints = append(b.g.entryPoints, b.g.fnEntry[id])
		case decl.KindTrait:
			b.g.entryPoints = append(b.g.entryPoints, b.g.traitNode[id])
		case decl.KindStruct, decl.KindEnum:
			// Public data types add no entry point: a struct has no node of its
			// own (only its fields do), and an enum's node is reached only
			// through an instantiation.
		case decl.KindImpl:
			if n, ok := b.g.implNode[id]; ok {
				b.g.entryPoints = append(b.g.entryPoints, n)
			}
		}
	}
}

func (b *builder) buildFunction(fd typedtree.Decl) {
	entry, ok := b.g.fnEntry[fd.ID]
	if !ok {
		return
	}
	leaves := []int{entry}
	leaves = b.walkStmts(leaves, fd.Body)
	leaves = b.walkExpr(leaves, fd.Tail)
	if exit, ok := b.g.fnExit[fd.ID]; ok {
		b.g.edgeAll(leaves, exit)
	}
}

func (b *builder) walkStmts(leaves []int, stmts []typedtree.Stmt) []int {
	for _, s := range stmts {
		leaves = b.walkStmt(leaves, s)
	}
	return leaves
}

func (b *builder) walkStmt(leaves []int, s typedtree.Stmt) []int {
	switch s.Kind {
	case typedtree.StmtLet:
		return b.walkExpr(leaves, s.Init)

	case typedtree.StmtExpr:
		return b.walkExpr(leaves, s.Expr)

	case typedtree.StmtReturn:
		leaves = b.walkExpr(leaves, s.Expr)
		ret := b.g.node(NodeDominator, s.Span, "", "")
		b.g.edgeAll(leaves, ret)
		if s.Expr != nil {
			b.g.edge(ret, b.exprNode(s.Expr))
		}
		return nil // terminates the current leaf set

	case typedtree.StmtWhile:
		entry := b.g.node(NodeDominator, s.Span, "", "")
		exit := b.g.node(NodeDominator, s.Span, "", "")
		b.g.edgeAll(leaves, entry)
		b.g.edge(entry, exit) // zero iterations
		bodyLeaves := b.walkExpr([]int{entry}, s.Cond)
		bodyLeaves = b.walkStmts(bodyLeaves, s.Body)
		b.g.edgeAll(bodyLeaves, entry) // loop repeats
		b.g.edgeAll(bodyLeaves, exit)
		return []int{exit}

	default: // StmtSideEffect: imports carry no graph-visible behavior
		return leaves
	}
}

// exprNode returns a node standing in for e's "evaluation" for the purpose
// of a return statement's edge into it: a fresh dominator, created on every
// call, since no expression kind has a dedicated node of its own.
func (b *builder) exprNode(e *typedtree.Expr) int {
	return b.g.node(NodeDominator, e.Span, "", "")
}

func (b *builder) walkExpr(leaves []int, e *typedtree.Expr) []int {
	if e == nil {
		return leaves
	}
	switch e.Kind {
	case typedtree.ExprBinary:
		leaves = b.walkExpr(leaves, e.Left)
		return b.walkExpr(leaves, e.Right)

	case typedtree.ExprUnary:
		return b.walkExpr(leaves, e.Right)

	case typedtree.ExprIf:
		leaves = b.walkExpr(leaves, e.Cond)
		thenLeaves := b.walkExpr(leaves, e.Then)
		elseLeaves := leaves
		if e.Else != nil {
			elseLeaves = b.walkExpr(leaves, e.Else)
		}
		return append(append([]int{}, thenLeaves...), elseLeaves...)

	case typedtree.ExprBlock:
		leaves = b.walkStmts(leaves, e.Stmts)
		return b.walkExpr(leaves, e.Tail)

	case typedtree.ExprCall, typedtree.ExprMethodCall:
		if e.Kind == typedtree.ExprMethodCall {
			leaves = b.walkExpr(leaves, e.Receiver)
		}
		for _, a := range e.Args {
			leaves = b.walkExpr(leaves, a)
		}
		return b.walkCall(leaves, e)

	case typedtree.ExprFieldAccess:
		leaves = b.walkExpr(leaves, e.Object)
		return b.walkFieldAccess(leaves, e)

	case typedtree.ExprStructInit:
		for _, f := range e.FieldInits {
			leaves = b.walkExpr(leaves, f.Value)
		}
		return leaves

	case typedtree.ExprEnumInit:
		leaves = b.walkExpr(leaves, e.Payload)
		return b.walkEnumInit(leaves, e)

	case typedtree.ExprTuple, typedtree.ExprArray:
		for _, el := range e.Elements {
			leaves = b.walkExpr(leaves, el)
		}
		return leaves

	default: // Literal, Variable, AsmBlock, ErrorRecovery: no graph impact
		return leaves
	}
}

// walkCall connects leaves to the callee's fn-entry and continues from its
// fn-exit (spec §4.3's function-application rule), or — when the callee
// wasn't resolved by C6 — roots a dummy external-call node without
// continuing any further traversal through it.
func (b *builder) walkCall(leaves []int, e *typedtree.Expr) []int {
	if !e.HasFn {
		stub := b.g.node(NodeDominator, e.Span, "", "")
		b.g.edgeAll(leaves, stub)
		return leaves
	}
	entry, ok := b.g.fnEntry[e.Fn]
	if !ok {
		return leaves
	}
	b.g.edgeAll(leaves, entry)
	exit, ok := b.g.fnExit[e.Fn]
	if !ok {
		return leaves
	}
	return []int{exit}
}

func (b *builder) walkFieldAccess(leaves []int, e *typedtree.Expr) []int {
	access := b.g.node(NodeDominator, e.Span, "", "")
	b.g.edgeAll(leaves, access)
	if e.Object != nil {
		if desc := b.types.Get(e.Object.Type); desc.Kind == types.KindStruct {
			if fields, ok := b.g.fieldNode[desc.Decl]; ok {
				if fieldID, ok := fields[e.FieldName]; ok {
					b.g.edge(access, fieldID)
				}
			}
		}
	}
	return []int{access}
}

func (b *builder) walkEnumInit(leaves []int, e *typedtree.Expr) []int {
	entry, ok := b.g.enumNode[e.EnumDecl]
	if !ok {
		return leaves
	}
	b.g.edgeAll(leaves, entry)
	exit := b.g.node(NodeDominator, e.Span, "", "")
	if variants, ok := b.g.variant[e.EnumDecl]; ok {
		if variantID, ok := variants[e.VariantIdx]; ok {
			b.g.edge(entry, variantID)
			b.g.edge(variantID, exit)
			return []int{exit}
		}
	}
	b.g.edge(entry, exit)
	return []int{exit}
}

// DeadCode runs the dead-code sweep (spec §4.3): every node reachable from
// any entry point via any path is live; everything else is reported once,
// with warnings whose span is strictly contained within another warning's
// span dropped (spec's "overlapping spans are deduplicated" rule).
func (g *Graph) DeadCode() []diag.Diagnostic {
	live := g.reachable()

	var candidates []Node
	for i, n := range g.nodes {
		if live[i] {
			continue
		}
		if n.Kind == NodeDominator || n.Message == "" {
			continue
		}
		candidates = append(candidates, n)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Span.Start < candidates[j].Span.Start
	})

	var out []diag.Diagnostic
	for i, n := range candidates {
		contained := false
		for j, other := range candidates {
			if i == j {
				continue
			}
			if other.Span.Contains(n.Span) {
				contained = true
				break
			}
		}
		if contained {
			continue
		}
		out = append(out, diag.Warnf(n.Code, n.Span, "%s", n.Message))
	}
	return out
}

func (g *Graph) reachable() map[int]bool {
	visited := make(map[int]bool)
	queue := append([]int(nil), g.entryPoints...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if visited[n] {
			continue
		}
		visited[n] = true
		for _, next := range orderedEdges(g.edges, n) {
			if !visited[next] {
				queue = append(queue, next)
			}
		}
	}
	return visited
}

// orderedEdges returns n's outgoing edges in a deterministic order: the
// adjacency set has no ordering guarantee on its own (spec's domain-stack
// note on golang.org/x/exp/maps: deterministic iteration over arena maps and
// graph adjacency sets), so results would otherwise vary by map iteration
// order on every run.
func orderedEdges(edges map[int]map[int]bool, n int) []int {
	out := maps.Keys(edges[n])
	sort.Ints(out)
	return out
}
