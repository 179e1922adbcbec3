// Package parsetree defines the untyped parse tree: the contract between the
// (out-of-scope, spec §1) lexer/parser and the type-checker (C6). It is
// intentionally a thin, tagged-variant shape rather than a double-dispatch
// visitor hierarchy — see the "deep visitor patterns" design note (spec §9) —
// generalizing the node kinds of the teacher's internal/parser/ast.go
// (Binary, Literal, Variable, Call, If, Block, ...) with the declaration
// kinds (struct/enum/trait/fn/impl) C6 needs that the teacher's
// scripting-language AST never had to represent.
package parsetree

import "corec/internal/span"

// ExprKind tags which shape an Expr node holds.
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprVariable
	ExprBinary
	ExprUnary
	ExprCall
	ExprMethodCall
	ExprIf
	ExprBlock
	ExprStructInit
	ExprEnumInit
	ExprFieldAccess
	ExprTuple
	ExprArray
	ExprAsmBlock
)

// Operator names the surface-syntax operator token for Binary/Unary nodes;
// the shunting-yard pass (spec §9) has already reshuffled flat
// `expr (op expr)*` sequences into this single-root tree by the time C6 sees
// it (spec design note: "this must happen before the typed tree is
// constructed").
type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
	OpMod Operator = "%"
	OpAnd Operator = "&"
	OpOr  Operator = "|"
	OpXor Operator = "^"
	OpLsh Operator = "<<"
	OpRsh Operator = ">>"
	OpEq  Operator = "=="
	OpGt  Operator = ">"
	OpLt  Operator = "<"
	OpNot Operator = "!"
)

// Expr is a tagged-variant expression node. Only the fields relevant to Kind
// are populated; every consumer does a closed switch on Kind rather than
// double dispatch.
type Expr struct {
	Kind ExprKind
	Span span.Span

	// ExprLiteral
	LitValue interface{}

	// ExprVariable (variable name) / ExprFieldAccess (field being accessed) /
	// ExprMethodCall (method name). ExprStructInit and ExprEnumInit use Path
	// instead, since a type reference may be a multi-segment module path.
	Name string
	Path []string // ExprStructInit / ExprEnumInit: the referenced type's path

	// ExprBinary / ExprUnary (Unary uses Right as the single operand)
	Op          Operator
	Left, Right *Expr

	// ExprCall / ExprMethodCall (Callee is the receiver for MethodCall)
	Callee      *Expr
	Args        []*Expr
	QualTrait   []string // non-nil for <T as Trait>::method(...) disambiguation

	// ExprIf
	Cond, Then, Else *Expr

	// ExprBlock
	Stmts []Stmt
	Tail  *Expr // implicit-return trailing expression, if any

	// ExprStructInit
	FieldInits []FieldInit

	// ExprEnumInit
	VariantName string
	Payload     *Expr

	// ExprFieldAccess
	Object *Expr

	// ExprTuple / ExprArray
	Elements []*Expr

	// ExprAsmBlock
	AsmArgs []AsmArg
	AsmBody []AsmInstr
	AsmRet  *TypeExpr
}

type FieldInit struct {
	Name  string
	Value *Expr
}

type AsmArg struct {
	Register string
	Init     *Expr
}

type AsmInstr struct {
	Op   string
	Args []string
}

// StmtKind tags a statement.
type StmtKind uint8

const (
	StmtLet StmtKind = iota
	StmtExpr
	StmtReturn
	StmtWhile
	StmtUse
)

type Stmt struct {
	Kind StmtKind
	Span span.Span

	// StmtLet
	Name string
	Type *TypeExpr
	Init *Expr

	// StmtExpr / StmtReturn
	Expr *Expr

	// StmtWhile
	Cond *Expr
	Body []Stmt

	// StmtUse
	ImportPath []string
	Alias      string
}

// TypeExpr is the untyped surface-syntax spelling of a type, resolved into a
// types.ID by C6 (Custom references are resolved via types.Engine.Resolve).
type TypeExpr struct {
	Path []string
	Args []*TypeExpr
	// ArrayCount is set for `[T; N]` and StringArray-style `str[N]` spellings.
	ArrayCount int
	HasCount   bool
}

// DeclKind tags a top-level declaration.
type DeclKind uint8

const (
	DeclStruct DeclKind = iota
	DeclEnum
	DeclTrait
	DeclFunction
	DeclImpl
)

type Attribute struct {
	Name string
	Args []AttrArg
	Span span.Span
}

type AttrArg struct {
	Name  string // empty for positional args
	Value string
	Span  span.Span
}

type FieldDecl struct {
	Name string
	Type *TypeExpr
	Span span.Span
}

type ParamDecl struct {
	Name string
	Type *TypeExpr
}

type TypeParamDecl struct {
	Name   string
	Bounds []*TypeExpr
}

// Decl is a tagged-variant top-level declaration.
type Decl struct {
	Kind       DeclKind
	Name       string
	Span       span.Span
	Public     bool
	Attributes []Attribute
	TypeParams []TypeParamDecl

	// DeclStruct / DeclEnum
	Fields []FieldDecl

	// DeclTrait: method signatures required of implementors
	RequiredMethods []FunctionDecl

	// DeclFunction
	Function *FunctionDecl

	// DeclImpl
	TraitPath []string // nil for inherent impls
	ForType   *TypeExpr
	Methods   []FunctionDecl
}

type FunctionDecl struct {
	Name       string
	Span       span.Span
	Public     bool
	Attributes []Attribute
	TypeParams []TypeParamDecl
	Params     []ParamDecl
	Return     *TypeExpr
	Body       []Stmt
	TailExpr   *Expr
}

// Program is the root of the untyped parse tree for one compilation unit.
type Program struct {
	Decls []Decl
}
