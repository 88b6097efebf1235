package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"platypus/internal/ast"
	"reflect"

	"gopkg.in/yaml.v3"
)

// Supported formats for WriteAST.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// WalkAST recursively traverses an AST and serializes it into a map structure.
// Keys carry a numeric prefix so both encoders, which sort keys, keep a
// readable field order.
func WalkAST(node ast.Node) interface{} {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return nil
	}

	switch n := node.(type) {
	case *ast.Program:
		return map[string]interface{}{
			"0.type":       "Program",
			"1.statements": walkStatements(n.Statements),
		}

	case *ast.VarStatement:
		return map[string]interface{}{
			"0.type":     "VarStatement",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.name":     n.Name.Value,
			"3.value":    WalkAST(n.Value),
		}

	case *ast.FunctionStatement:
		return map[string]interface{}{
			"0.type":       "FunctionStatement",
			"1.position":   position(n.Token.Line, n.Token.Column),
			"2.name":       n.Name.Value,
			"3.parameters": n.ParameterNames(),
			"4.returnType": WalkAST(n.ReturnType),
			"5.body":       walkStatements(n.Body),
		}

	case *ast.ReturnStatement:
		return map[string]interface{}{
			"0.type":        "ReturnStatement",
			"1.position":    position(n.Token.Line, n.Token.Column),
			"2.returnValue": WalkAST(n.ReturnValue),
		}

	case *ast.ExpressionStatement:
		return map[string]interface{}{
			"0.type":       "ExpressionStatement",
			"1.position":   position(n.Token.Line, n.Token.Column),
			"2.expression": WalkAST(n.Expression),
		}

	case *ast.IfStatement:
		return map[string]interface{}{
			"0.type":      "IfStatement",
			"1.position":  position(n.Token.Line, n.Token.Column),
			"2.condition": WalkAST(n.Condition),
			"3.then":      WalkAST(n.ThenBranch),
			"4.else":      WalkAST(n.ElseBranch),
		}

	case *ast.WhileStatement:
		return map[string]interface{}{
			"0.type":      "WhileStatement",
			"1.position":  position(n.Token.Line, n.Token.Column),
			"2.condition": WalkAST(n.Condition),
			"3.body":      WalkAST(n.Body),
		}

	case *ast.ForStatement:
		return map[string]interface{}{
			"0.type":      "ForStatement",
			"1.position":  position(n.Token.Line, n.Token.Column),
			"2.init":      WalkAST(n.Init),
			"3.condition": WalkAST(n.Condition),
			"4.increment": WalkAST(n.Increment),
			"5.body":      WalkAST(n.Body),
		}

	case *ast.ForEachStatement:
		return map[string]interface{}{
			"0.type":     "ForEachStatement",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.variable": n.Variable.Value,
			"3.iterable": WalkAST(n.Iterable),
			"4.body":     WalkAST(n.Body),
		}

	case *ast.ClassStatement:
		properties := make([]interface{}, len(n.Properties))
		for i, prop := range n.Properties {
			properties[i] = map[string]interface{}{
				"0.name":  prop.Name.Value,
				"1.value": WalkAST(prop.Value),
			}
		}
		methods := make([]interface{}, len(n.Methods))
		for i, m := range n.Methods {
			methods[i] = WalkAST(m)
		}
		return map[string]interface{}{
			"0.type":       "ClassStatement",
			"1.position":   position(n.Token.Line, n.Token.Column),
			"2.name":       n.Name.Value,
			"3.parent":     WalkAST(n.Parent),
			"4.properties": properties,
			"5.methods":    methods,
		}

	case *ast.BlockStatement:
		return map[string]interface{}{
			"0.type":       "BlockStatement",
			"1.position":   position(n.Token.Line, n.Token.Column),
			"2.statements": walkStatements(n.Statements),
		}

	case *ast.Identifier:
		return map[string]interface{}{
			"0.type":  "Identifier",
			"1.value": n.Value,
		}

	case *ast.NumberLiteral:
		return map[string]interface{}{
			"0.type":  "NumberLiteral",
			"1.value": n.Value,
		}

	case *ast.StringLiteral:
		return map[string]interface{}{
			"0.type":  "StringLiteral",
			"1.value": n.Value,
		}

	case *ast.BooleanLiteral:
		return map[string]interface{}{
			"0.type":  "BooleanLiteral",
			"1.value": n.Value,
		}

	case *ast.NullLiteral:
		return map[string]interface{}{
			"0.type": "NullLiteral",
		}

	case *ast.AssignExpression:
		return map[string]interface{}{
			"0.type":     "AssignExpression",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.name":     n.Name.Value,
			"3.value":    WalkAST(n.Value),
		}

	case *ast.PropertyAssignExpression:
		return map[string]interface{}{
			"0.type":     "PropertyAssignExpression",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.object":   WalkAST(n.Object),
			"3.property": n.Property.Value,
			"4.value":    WalkAST(n.Value),
		}

	case *ast.InfixExpression:
		return map[string]interface{}{
			"0.type":     "InfixExpression",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.left":     WalkAST(n.Left),
			"3.operator": n.Operator,
			"4.right":    WalkAST(n.Right),
		}

	case *ast.PrefixExpression:
		return map[string]interface{}{
			"0.type":     "PrefixExpression",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.operator": n.Operator,
			"3.right":    WalkAST(n.Right),
		}

	case *ast.CallExpression:
		return map[string]interface{}{
			"0.type":      "CallExpression",
			"1.position":  position(n.Token.Line, n.Token.Column),
			"2.function":  n.Function.Value,
			"3.arguments": walkExpressions(n.Arguments),
		}

	case *ast.LambdaExpression:
		return map[string]interface{}{
			"0.type":       "LambdaExpression",
			"1.position":   position(n.Token.Line, n.Token.Column),
			"2.parameters": n.ParameterNames(),
			"3.body":       WalkAST(n.Body),
		}

	case *ast.MatchExpression:
		cases := make([]interface{}, len(n.Cases))
		for i, c := range n.Cases {
			cases[i] = map[string]interface{}{
				"0.pattern": WalkAST(c.Pattern),
				"1.body":    WalkAST(c.Body),
			}
		}
		return map[string]interface{}{
			"0.type":     "MatchExpression",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.value":    WalkAST(n.Value),
			"3.cases":    cases,
		}

	case *ast.ArrayLiteral:
		return map[string]interface{}{
			"0.type":     "ArrayLiteral",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.elements": walkExpressions(n.Elements),
		}

	case *ast.NewExpression:
		return map[string]interface{}{
			"0.type":      "NewExpression",
			"1.position":  position(n.Token.Line, n.Token.Column),
			"2.class":     n.Class.Value,
			"3.arguments": walkExpressions(n.Arguments),
		}

	case *ast.MethodCallExpression:
		return map[string]interface{}{
			"0.type":      "MethodCallExpression",
			"1.position":  position(n.Token.Line, n.Token.Column),
			"2.object":    WalkAST(n.Object),
			"3.method":    n.Method.Value,
			"4.arguments": walkExpressions(n.Arguments),
		}

	case *ast.PropertyExpression:
		return map[string]interface{}{
			"0.type":     "PropertyExpression",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.object":   WalkAST(n.Object),
			"3.property": n.Property.Value,
		}

	case *ast.LiteralPattern:
		return map[string]interface{}{
			"0.type":  "LiteralPattern",
			"1.value": WalkAST(n.Value),
		}

	case *ast.TypePattern:
		return map[string]interface{}{
			"0.type": "TypePattern",
			"1.name": n.Name,
		}

	case *ast.WildcardPattern:
		return map[string]interface{}{
			"0.type": "WildcardPattern",
		}

	default:
		return map[string]interface{}{
			"0.type": "Unknown: " + n.String(),
		}
	}
}

func position(line, column int) string {
	return fmt.Sprintf("%d:%d", line, column)
}

func walkStatements(stmts []ast.Statement) []interface{} {
	out := make([]interface{}, len(stmts))
	for i, s := range stmts {
		out[i] = WalkAST(s)
	}
	return out
}

func walkExpressions(exps []ast.Expression) []interface{} {
	out := make([]interface{}, len(exps))
	for i, e := range exps {
		out[i] = WalkAST(e)
	}
	return out
}

// EncodeAST writes the tree to w in the requested format.
func EncodeAST(w io.Writer, node ast.Node, format string) error {
	switch format {
	case FormatJSON, "":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")  // Pretty-print the JSON
		encoder.SetEscapeHTML(false) // Disable escaping of characters like <, >, &
		if err := encoder.Encode(WalkAST(node)); err != nil {
			return fmt.Errorf("failed to write JSON: %w", err)
		}
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(WalkAST(node)); err != nil {
			return fmt.Errorf("failed to write YAML: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("failed to write YAML: %w", err)
		}
	case FormatText:
		if _, err := io.WriteString(w, RenderASTAsText(node, 0)+"\n"); err != nil {
			return fmt.Errorf("failed to write AST text: %w", err)
		}
	default:
		return fmt.Errorf("unknown AST format %q", format)
	}
	return nil
}

// WriteAST takes a root AST node and writes it to filename.
func WriteAST(node ast.Node, filename string, format string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create AST file: %w", err)
	}
	defer file.Close()

	return EncodeAST(file, node, format)
}
