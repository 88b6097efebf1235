package ast

import (
	"bytes"
	"platypus/internal/token"
	"strconv"
	"strings"
)

// The base Node interface
type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Pattern is the left-hand side of a match case.
type Pattern interface {
	Node
	patternNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	} else {
		return ""
	}
}

func (p *Program) String() string {
	var out bytes.Buffer

	for i, s := range p.Statements {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(s.String())
	}

	return out.String()
}

// Statements

// VarStatement is produced for a bare `name = expr` at statement position;
// it either rebinds an existing name or defines a new one.
type VarStatement struct {
	Token token.Token // the identifier token
	Name  *Identifier
	Value Expression
}

func (vs *VarStatement) statementNode()       {}
func (vs *VarStatement) TokenLiteral() string { return vs.Token.Literal }
func (vs *VarStatement) String() string {
	return vs.Name.String() + " = " + vs.Value.String() + ";"
}

type FunctionStatement struct {
	Token      token.Token // the 'func' token
	Name       *Identifier
	Parameters []*Identifier
	ReturnType *Identifier // parsed, never enforced
	Body       []Statement
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *FunctionStatement) String() string {
	var out bytes.Buffer
	out.WriteString("func ")
	out.WriteString(fs.Name.String())
	writeSignature(&out, fs.Parameters, fs.ReturnType)
	writeBody(&out, fs.Body)
	return out.String()
}

// ParameterNames returns the declared parameter names in order.
func (fs *FunctionStatement) ParameterNames() []string {
	return identNames(fs.Parameters)
}

type ReturnStatement struct {
	Token       token.Token // the 'return' token
	ReturnValue Expression  // nil for a bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string {
	var out bytes.Buffer

	out.WriteString(rs.TokenLiteral())

	if rs.ReturnValue != nil {
		out.WriteString(" ")
		out.WriteString(rs.ReturnValue.String())
	}

	out.WriteString(";")

	return out.String()
}

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String() + ";"
	}
	return ""
}

type IfStatement struct {
	Token      token.Token // The 'if' token
	Condition  Expression
	ThenBranch Statement
	ElseBranch Statement // nil when there is no else
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) String() string {
	var out bytes.Buffer

	out.WriteString("if (")
	out.WriteString(is.Condition.String())
	out.WriteString(") ")
	out.WriteString(is.ThenBranch.String())

	if is.ElseBranch != nil {
		out.WriteString(" else ")
		out.WriteString(is.ElseBranch.String())
	}

	return out.String()
}

type WhileStatement struct {
	Token     token.Token // The 'while' token
	Condition Expression
	Body      Statement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) String() string {
	return "while (" + ws.Condition.String() + ") " + ws.Body.String()
}

// ForStatement is the three-clause loop; every clause is optional.
type ForStatement struct {
	Token     token.Token // The 'for' token
	Init      Statement
	Condition Expression
	Increment Expression
	Body      Statement
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) String() string {
	var out bytes.Buffer

	out.WriteString("for (")
	if fs.Init != nil {
		out.WriteString(strings.TrimSuffix(fs.Init.String(), ";"))
	}
	out.WriteString("; ")
	if fs.Condition != nil {
		out.WriteString(fs.Condition.String())
	}
	out.WriteString("; ")
	if fs.Increment != nil {
		out.WriteString(fs.Increment.String())
	}
	out.WriteString(") ")
	out.WriteString(fs.Body.String())

	return out.String()
}

type ForEachStatement struct {
	Token    token.Token // The 'for' token
	Variable *Identifier
	Iterable Expression
	Body     Statement
}

func (fe *ForEachStatement) statementNode()       {}
func (fe *ForEachStatement) TokenLiteral() string { return fe.Token.Literal }
func (fe *ForEachStatement) String() string {
	return "for (" + fe.Variable.String() + " in " + fe.Iterable.String() + ") " + fe.Body.String()
}

type ClassProperty struct {
	Name  *Identifier
	Value Expression // a NullLiteral when declared bare
}

func (cp *ClassProperty) String() string {
	return cp.Name.String() + " = " + cp.Value.String() + ";"
}

type ClassStatement struct {
	Token      token.Token // The 'class' token
	Name       *Identifier
	Parent     *Identifier // nil without `extends`
	Methods    []*FunctionStatement
	Properties []*ClassProperty
}

func (cs *ClassStatement) statementNode()       {}
func (cs *ClassStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ClassStatement) String() string {
	var out bytes.Buffer

	out.WriteString("class ")
	out.WriteString(cs.Name.String())
	if cs.Parent != nil {
		out.WriteString(" extends ")
		out.WriteString(cs.Parent.String())
	}
	out.WriteString(" {")
	for _, p := range cs.Properties {
		out.WriteString(" ")
		out.WriteString(p.String())
	}
	for _, m := range cs.Methods {
		out.WriteString(" ")
		out.WriteString(m.String())
	}
	out.WriteString(" }")

	return out.String()
}

type BlockStatement struct {
	Token      token.Token // the { token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer
	writeBody(&out, bs.Statements)
	return out.String()
}

// Expressions

type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (n *NumberLiteral) expressionNode()      {}
func (n *NumberLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NumberLiteral) String() string {
	if n.Token.Literal != "" {
		return n.Token.Literal
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()      {}
func (b *BooleanLiteral) TokenLiteral() string { return b.Token.Literal }
func (b *BooleanLiteral) String() string       { return strconv.FormatBool(b.Value) }

type NullLiteral struct {
	Token token.Token
}

func (n *NullLiteral) expressionNode()      {}
func (n *NullLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NullLiteral) String() string       { return "null" }

type AssignExpression struct {
	Token token.Token // the = token
	Name  *Identifier
	Value Expression
}

func (ae *AssignExpression) expressionNode()      {}
func (ae *AssignExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignExpression) String() string {
	return "(" + ae.Name.String() + " = " + ae.Value.String() + ")"
}

type PropertyAssignExpression struct {
	Token    token.Token // the = token
	Object   Expression
	Property *Identifier
	Value    Expression
}

func (pa *PropertyAssignExpression) expressionNode()      {}
func (pa *PropertyAssignExpression) TokenLiteral() string { return pa.Token.Literal }
func (pa *PropertyAssignExpression) String() string {
	return "(" + pa.Object.String() + "." + pa.Property.String() + " = " + pa.Value.String() + ")"
}

type PrefixExpression struct {
	Token    token.Token // The prefix token, e.g. !
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(pe.Operator)
	out.WriteString(pe.Right.String())
	out.WriteString(")")

	return out.String()
}

type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")

	return out.String()
}

// CallExpression calls a function by name; only a bare identifier may be
// called.
type CallExpression struct {
	Token     token.Token // The '(' token
	Function  *Identifier
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + joinExpressions(ce.Arguments) + ")"
}

type LambdaExpression struct {
	Token      token.Token // The '(' token
	Parameters []*Identifier
	Body       Expression
}

func (le *LambdaExpression) expressionNode()      {}
func (le *LambdaExpression) TokenLiteral() string { return le.Token.Literal }
func (le *LambdaExpression) String() string {
	return "(" + strings.Join(identNames(le.Parameters), ", ") + ") => " + le.Body.String()
}

// ParameterNames returns the declared parameter names in order.
func (le *LambdaExpression) ParameterNames() []string {
	return identNames(le.Parameters)
}

type MatchCase struct {
	Token   token.Token // The 'case' token
	Pattern Pattern
	Body    Expression
}

func (mc *MatchCase) String() string {
	return "case " + mc.Pattern.String() + " => " + mc.Body.String()
}

type MatchExpression struct {
	Token token.Token // The 'match' token
	Value Expression
	Cases []*MatchCase
}

func (me *MatchExpression) expressionNode()      {}
func (me *MatchExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MatchExpression) String() string {
	var out bytes.Buffer

	out.WriteString("match (")
	out.WriteString(me.Value.String())
	out.WriteString(") {")
	for _, c := range me.Cases {
		out.WriteString(" ")
		out.WriteString(c.String())
	}
	out.WriteString(" }")

	return out.String()
}

type ArrayLiteral struct {
	Token    token.Token // the '[' token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) String() string {
	return "[" + joinExpressions(al.Elements) + "]"
}

// NewExpression instantiates a class. Arguments are parsed but unused.
type NewExpression struct {
	Token     token.Token // the 'new' token
	Class     *Identifier
	Arguments []Expression
}

func (ne *NewExpression) expressionNode()      {}
func (ne *NewExpression) TokenLiteral() string { return ne.Token.Literal }
func (ne *NewExpression) String() string {
	return "new " + ne.Class.String() + "(" + joinExpressions(ne.Arguments) + ")"
}

type MethodCallExpression struct {
	Token     token.Token // the '.' token
	Object    Expression
	Method    *Identifier
	Arguments []Expression
}

func (mc *MethodCallExpression) expressionNode()      {}
func (mc *MethodCallExpression) TokenLiteral() string { return mc.Token.Literal }
func (mc *MethodCallExpression) String() string {
	return mc.Object.String() + "." + mc.Method.String() + "(" + joinExpressions(mc.Arguments) + ")"
}

type PropertyExpression struct {
	Token    token.Token // the '.' token
	Object   Expression
	Property *Identifier
}

func (pe *PropertyExpression) expressionNode()      {}
func (pe *PropertyExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PropertyExpression) String() string {
	return pe.Object.String() + "." + pe.Property.String()
}

// Patterns

// LiteralPattern matches a value equal to its literal.
type LiteralPattern struct {
	Token token.Token
	Value Expression // one of the literal expressions
}

func (lp *LiteralPattern) patternNode()         {}
func (lp *LiteralPattern) TokenLiteral() string { return lp.Token.Literal }
func (lp *LiteralPattern) String() string       { return lp.Value.String() }

// TypePattern matches by runtime type name; it never binds the value.
type TypePattern struct {
	Token token.Token
	Name  string
}

func (tp *TypePattern) patternNode()         {}
func (tp *TypePattern) TokenLiteral() string { return tp.Token.Literal }
func (tp *TypePattern) String() string       { return tp.Name }

type WildcardPattern struct {
	Token token.Token
}

func (wp *WildcardPattern) patternNode()         {}
func (wp *WildcardPattern) TokenLiteral() string { return wp.Token.Literal }
func (wp *WildcardPattern) String() string       { return "_" }

func identNames(idents []*Identifier) []string {
	names := make([]string, len(idents))
	for i, id := range idents {
		names[i] = id.Value
	}
	return names
}

func joinExpressions(exps []Expression) string {
	parts := make([]string, len(exps))
	for i, e := range exps {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func writeSignature(out *bytes.Buffer, params []*Identifier, returnType *Identifier) {
	out.WriteString("(")
	out.WriteString(strings.Join(identNames(params), ", "))
	out.WriteString(")")
	if returnType != nil {
		out.WriteString(": ")
		out.WriteString(returnType.String())
	}
	out.WriteString(" ")
}

func writeBody(out *bytes.Buffer, stmts []Statement) {
	out.WriteString("{")
	for _, s := range stmts {
		out.WriteString(" ")
		out.WriteString(s.String())
	}
	out.WriteString(" }")
}
