package parser

import (
	"fmt"
	"platypus/internal/ast"
	"reflect"
	"strconv"
	"strings"
)

// RenderASTAsText produces an indented, source-like rendering of the AST.
// It is meant for debugging precedence and statement nesting.
func RenderASTAsText(node ast.Node, indent int) string {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return "nil"
	}

	sp := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *ast.Program:
		var sb strings.Builder
		for i, s := range n.Statements {
			if i > 0 {
				sb.WriteString("\n")
			}
			// Root level statements start at indent 0
			sb.WriteString(RenderASTAsText(s, 0))
		}
		return sb.String()

	case *ast.VarStatement:
		return fmt.Sprintf("%s%s = %s", sp, n.Name.Value, RenderASTAsText(n.Value, indent))

	case *ast.FunctionStatement:
		sig := fmt.Sprintf("%sfunc %s(%s)", sp, n.Name.Value, strings.Join(n.ParameterNames(), ", "))
		if n.ReturnType != nil {
			sig += ": " + n.ReturnType.Value
		}
		return sig + " " + renderStatements(n.Body, indent)

	case *ast.ReturnStatement:
		if n.ReturnValue == nil {
			return sp + "return"
		}
		return fmt.Sprintf("%sreturn %s", sp, RenderASTAsText(n.ReturnValue, indent))

	case *ast.ExpressionStatement:
		// The statement handles the line's starting indentation
		return sp + RenderASTAsText(n.Expression, indent)

	case *ast.BlockStatement:
		return sp + renderStatements(n.Statements, indent)

	case *ast.IfStatement:
		res := fmt.Sprintf("%sif (%s) %s", sp, RenderASTAsText(n.Condition, 0), renderBranch(n.ThenBranch, indent))
		if n.ElseBranch != nil {
			res += " else " + renderBranch(n.ElseBranch, indent)
		}
		return res

	case *ast.WhileStatement:
		return fmt.Sprintf("%swhile (%s) %s", sp, RenderASTAsText(n.Condition, 0), renderBranch(n.Body, indent))

	case *ast.ForStatement:
		init, cond, incr := "", "", ""
		if n.Init != nil {
			init = RenderASTAsText(n.Init, 0)
		}
		if n.Condition != nil {
			cond = RenderASTAsText(n.Condition, 0)
		}
		if n.Increment != nil {
			incr = RenderASTAsText(n.Increment, 0)
		}
		return fmt.Sprintf("%sfor (%s; %s; %s) %s", sp, init, cond, incr, renderBranch(n.Body, indent))

	case *ast.ForEachStatement:
		return fmt.Sprintf("%sfor (%s in %s) %s", sp, n.Variable.Value, RenderASTAsText(n.Iterable, 0), renderBranch(n.Body, indent))

	case *ast.ClassStatement:
		var sb strings.Builder
		sb.WriteString(sp + "class " + n.Name.Value)
		if n.Parent != nil {
			sb.WriteString(" extends " + n.Parent.Value)
		}
		sb.WriteString(" {\n")
		inner := strings.Repeat("  ", indent+1)
		for _, prop := range n.Properties {
			sb.WriteString(fmt.Sprintf("%s%s = %s\n", inner, prop.Name.Value, RenderASTAsText(prop.Value, indent+1)))
		}
		for _, m := range n.Methods {
			sb.WriteString(RenderASTAsText(m, indent+1))
			sb.WriteString("\n")
		}
		sb.WriteString(sp + "}")
		return sb.String()

	case *ast.LambdaExpression:
		return fmt.Sprintf("(%s) => %s", strings.Join(n.ParameterNames(), ", "), RenderASTAsText(n.Body, indent))

	case *ast.CallExpression:
		return fmt.Sprintf("%s(%s)", n.Function.Value, renderList(n.Arguments))

	case *ast.MethodCallExpression:
		return fmt.Sprintf("%s.%s(%s)", RenderASTAsText(n.Object, 0), n.Method.Value, renderList(n.Arguments))

	case *ast.PropertyExpression:
		return RenderASTAsText(n.Object, 0) + "." + n.Property.Value

	case *ast.NewExpression:
		return fmt.Sprintf("new %s(%s)", n.Class.Value, renderList(n.Arguments))

	case *ast.AssignExpression:
		return fmt.Sprintf("(%s = %s)", n.Name.Value, RenderASTAsText(n.Value, indent))

	case *ast.PropertyAssignExpression:
		return fmt.Sprintf("(%s.%s = %s)", RenderASTAsText(n.Object, 0), n.Property.Value, RenderASTAsText(n.Value, indent))

	case *ast.InfixExpression:
		return fmt.Sprintf("(%s %s %s)", RenderASTAsText(n.Left, 0), n.Operator, RenderASTAsText(n.Right, 0))

	case *ast.PrefixExpression:
		return fmt.Sprintf("(%s%s)", n.Operator, RenderASTAsText(n.Right, 0))

	case *ast.MatchExpression:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("match (%s) {", RenderASTAsText(n.Value, 0)))
		inner := strings.Repeat("  ", indent+1)
		for _, c := range n.Cases {
			sb.WriteString(fmt.Sprintf("\n%scase %s => %s", inner, RenderASTAsText(c.Pattern, 0), RenderASTAsText(c.Body, indent+1)))
		}
		sb.WriteString("\n" + sp + "}")
		return sb.String()

	case *ast.ArrayLiteral:
		return "[" + renderList(n.Elements) + "]"

	case *ast.Identifier:
		return n.Value
	case *ast.NumberLiteral:
		return strconv.FormatFloat(n.Value, 'f', -1, 64)
	case *ast.StringLiteral:
		return fmt.Sprintf("%q", n.Value)
	case *ast.BooleanLiteral:
		return fmt.Sprintf("%v", n.Value)
	case *ast.NullLiteral:
		return "null"

	case *ast.WildcardPattern:
		return "_"
	case *ast.TypePattern:
		return n.Name
	case *ast.LiteralPattern:
		return RenderASTAsText(n.Value, 0)

	default:
		return fmt.Sprintf("<unknown:%T>", n)
	}
}

func renderStatements(stmts []ast.Statement, indent int) string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range stmts {
		// Statements inside the block are indented +1
		sb.WriteString(RenderASTAsText(s, indent+1))
		sb.WriteString("\n")
	}
	// The closing brace aligns with the parent's indent
	sb.WriteString(strings.Repeat("  ", indent) + "}")
	return sb.String()
}

// renderBranch renders a loop or if body on the same line as its header.
func renderBranch(stmt ast.Statement, indent int) string {
	if block, ok := stmt.(*ast.BlockStatement); ok {
		return renderStatements(block.Statements, indent)
	}
	return RenderASTAsText(stmt, 0)
}

func renderList(exps []ast.Expression) string {
	parts := make([]string, len(exps))
	for i, e := range exps {
		parts[i] = RenderASTAsText(e, 0)
	}
	return strings.Join(parts, ", ")
}
