// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package analyzer

import (
	"github.com/spf13/cast"

	"github.com/ankoh/dashql-sub002/ast"
)

// classifyConstants walks the node array in its existing children-before-
// parents order and marks every literal, and every operator application
// whose operands are all themselves constant, as constant (§4.F). This runs
// ahead of classifyColumnTransforms, which needs to tell a genuinely
// constant operand apart from the one column-rooted operand an arithmetic
// expression may fold around.
//
// text is the script's original source; integer/float literals are
// re-coerced from their source span via cast, the same library the scanner
// uses to validate IConst/FConst text, rather than re-deriving a value from
// the node type alone.
func classifyConstants(text string, nodes []ast.Node, out *AnalyzedScript) {
	for id := ast.NodeID(0); int(id) < len(nodes); id++ {
		switch nodes[id].Type {
		case ast.NodeTypeConstInteger:
			e := Expression{NodeID: id, IsConstant: true, LiteralType: LiteralTypeInteger}
			if v, err := cast.ToInt64E(nodeText(text, nodes[id])); err == nil {
				e.HasLiteralValue = true
				e.LiteralInt = v
			}
			out.setExpr(id, e)
		case ast.NodeTypeConstFloat:
			e := Expression{NodeID: id, IsConstant: true, LiteralType: LiteralTypeFloat}
			if v, err := cast.ToFloat64E(nodeText(text, nodes[id])); err == nil {
				e.HasLiteralValue = true
				e.LiteralFloat = v
			}
			out.setExpr(id, e)
		case ast.NodeTypeConstString:
			out.setExpr(id, Expression{NodeID: id, IsConstant: true, LiteralType: LiteralTypeString})
		case ast.NodeTypeBool:
			out.setExpr(id, Expression{NodeID: id, IsConstant: true, LiteralType: LiteralTypeBool})
		case ast.NodeTypeObjectSQLExpression, ast.NodeTypeObjectSQLNaryExpression:
			classifyConstantOperator(nodes, out, id)
		case ast.NodeTypeObjectSQLFunctionExpression:
			classifyConstantFunctionCall(nodes, out, id)
		}
	}
}

func nodeText(text string, n ast.Node) string {
	if int(n.Location.End()) > len(text) {
		return ""
	}
	return text[n.Location.Offset:n.Location.End()]
}

func classifyConstantOperator(nodes []ast.Node, out *AnalyzedScript, id ast.NodeID) {
	operands := expressionOperands(nodes, id)
	if len(operands) == 0 {
		return
	}
	litType := LiteralTypeUnknown
	for i, opID := range operands {
		e, ok := out.getExpr(opID)
		if !ok || !e.IsConstant {
			return
		}
		if i == 0 {
			litType = e.LiteralType
		}
	}
	out.setExpr(id, Expression{NodeID: id, IsConstant: true, LiteralType: litType})
}

// expressionOperands returns an operator application's operand node ids, in
// argument order, from whichever of ARG0/ARG1/ARG2 are present.
func expressionOperands(nodes []ast.Node, id ast.NodeID) []ast.NodeID {
	var out []ast.NodeID
	for _, key := range [...]ast.AttributeKey{
		ast.AttributeKeyExpressionArg0,
		ast.AttributeKeyExpressionArg1,
		ast.AttributeKeyExpressionArg2,
	} {
		if opID, ok := ast.LookupAttribute(nodes, id, key); ok {
			out = append(out, opID)
		}
	}
	return out
}

// functionOperands returns a function call's argument node ids, in order,
// from its FUNCTION_ARGS array attribute.
func functionOperands(nodes []ast.Node, id ast.NodeID) []ast.NodeID {
	argsID, ok := ast.LookupAttribute(nodes, id, ast.AttributeKeyFunctionArgs)
	if !ok {
		return nil
	}
	begin, count := nodes[argsID].Children()
	out := make([]ast.NodeID, count)
	for i := uint32(0); i < count; i++ {
		out[i] = begin + i
	}
	return out
}

// classifyConstantFunctionCall marks a function call constant when it takes
// at least one argument and every argument is itself constant — the same
// fold classifyConstantOperator applies to arithmetic, generalized to
// FUNCTION_ARGS. The function's own semantics are never evaluated; only
// its literal type is left unknown, since folding the call itself is a
// downstream concern this pass does not take on.
func classifyConstantFunctionCall(nodes []ast.Node, out *AnalyzedScript, id ast.NodeID) {
	operands := functionOperands(nodes, id)
	if len(operands) == 0 {
		return
	}
	for _, opID := range operands {
		e, ok := out.getExpr(opID)
		if !ok || !e.IsConstant {
			return
		}
	}
	out.setExpr(id, Expression{NodeID: id, IsConstant: true, LiteralType: LiteralTypeUnknown})
}
