package ast

import (
	"fmt"
	"strings"
)

// Print renders prog as an indented tree (tree.txt / etree.txt form).
// Each line is a node's label; children are indented two spaces deeper
// than their parent.
func Print(prog *Program) string {
	var sb strings.Builder
	sb.WriteString("main\n")
	for _, d := range prog.Declarations {
		printNode(&sb, d, 1)
	}
	for _, s := range prog.Statements {
		printNode(&sb, s, 1)
	}
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
}

func printNode(sb *strings.Builder, n Node, depth int) {
	indent(sb, depth)
	switch v := n.(type) {
	case *VarDecl:
		names := make([]string, len(v.Names))
		for i, id := range v.Names {
			names[i] = id.Value
		}
		fmt.Fprintf(sb, "decl %s: %s\n", v.Type, strings.Join(names, ", "))

	case *BlockStmt:
		sb.WriteString("block\n")
		for _, s := range v.Statements {
			printNode(sb, s, depth+1)
		}

	case *AssignStmt:
		fmt.Fprintf(sb, "Assign to: %s\n", v.Target.Value)
		printExpr(sb, v.Value, depth+1)

	case *CinStmt:
		fmt.Fprintf(sb, "cin %s\n", v.Target.Value)

	case *CoutStmt:
		sb.WriteString("cout\n")
		printExpr(sb, v.Value, depth+1)

	case *CoutlnStmt:
		sb.WriteString("coutln\n")
		printExpr(sb, v.Value, depth+1)

	case *IfStmt:
		sb.WriteString("if\n")
		printExpr(sb, v.Condition, depth+1)
		indent(sb, depth)
		sb.WriteString("then\n")
		printNode(sb, v.Then, depth+1)
		if v.Else != nil {
			indent(sb, depth)
			sb.WriteString("else\n")
			printNode(sb, v.Else, depth+1)
		}

	case *WhileStmt:
		sb.WriteString("while\n")
		printExpr(sb, v.Condition, depth+1)
		printNode(sb, v.Body, depth+1)

	case *RepeatStmt:
		sb.WriteString("repeat\n")
		printNode(sb, v.Body, depth+1)
		indent(sb, depth)
		sb.WriteString("until\n")
		printExpr(sb, v.Condition, depth+1)

	case *BreakStmt:
		sb.WriteString("rompe\n")

	default:
		fmt.Fprintf(sb, "%s\n", n.String())
	}
}

func printExpr(sb *strings.Builder, e Expression, depth int) {
	indent(sb, depth)
	switch v := e.(type) {
	case *BinaryExpr:
		fmt.Fprintf(sb, "%s\n", v.Operator)
		printExpr(sb, v.Left, depth+1)
		printExpr(sb, v.Right, depth+1)
	case *UnaryExpr:
		fmt.Fprintf(sb, "unary %s\n", v.Operator)
		printExpr(sb, v.Operand, depth+1)
	case *Placeholder:
		sb.WriteString("Ø\n")
		printExpr(sb, v.Left, depth+1)
		printExpr(sb, v.Right, depth+1)
	case *Identifier:
		fmt.Fprintf(sb, "id %s\n", v.Value)
	case *IntegerLiteral:
		fmt.Fprintf(sb, "int %d\n", v.Value)
	case *RealLiteral:
		fmt.Fprintf(sb, "real %g\n", v.Value)
	case *BooleanLiteral:
		fmt.Fprintf(sb, "bool %t\n", v.Value)
	default:
		fmt.Fprintf(sb, "%s\n", e.String())
	}
}
