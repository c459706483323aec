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
	"github.com/ankoh/dashql-sub002/ast"
	"github.com/ankoh/dashql-sub002/parser"
)

// classifyColumnTransforms finds every arithmetic operator application with
// exactly one non-constant operand that is itself either a bare column
// reference or a narrower column-transform, and records the maximal chain
// rooted at the topmost such application (§4.F). A chain like `(a + 1) * 2`
// produces one ColumnTransform rooted at the multiply, not one per operator.
func classifyColumnTransforms(nodes []ast.Node, out *AnalyzedScript) {
	var roots []ast.NodeID
	targeted := make(map[ast.NodeID]bool)

	for id := ast.NodeID(0); int(id) < len(nodes); id++ {
		var targetID ast.NodeID
		var ok bool
		switch nodes[id].Type {
		case ast.NodeTypeObjectSQLExpression, ast.NodeTypeObjectSQLNaryExpression:
			targetID, ok = classifyOperatorApplication(nodes, out, id)
		case ast.NodeTypeObjectSQLFunctionExpression:
			targetID, ok = classifyFunctionApplication(nodes, out, id)
		default:
			continue
		}
		if !ok {
			continue
		}
		roots = append(roots, id)
		targeted[targetID] = true
	}

	for _, root := range roots {
		if targeted[root] {
			// root is itself some other root's target operand, so it is not
			// the topmost node of its chain.
			continue
		}
		e, _ := out.getExpr(root)
		cur := e.TargetExpressionID
		for nodes[cur].Type != ast.NodeTypeObjectSQLColumnRef {
			ce, ok := out.getExpr(cur)
			if !ok || !ce.IsColumnTransform {
				// Shouldn't happen: classifyOperatorApplication only targets
				// column refs or nodes it has itself marked as transforms.
				break
			}
			cur = ce.TargetExpressionID
		}
		if nodes[cur].Type != ast.NodeTypeObjectSQLColumnRef {
			continue
		}
		var columnID uint32
		if ce, ok := out.getExpr(cur); ok && ce.ResolvedColumn != nil {
			columnID = ce.ResolvedColumn.ColumnID
		}
		out.ColumnTransforms = append(out.ColumnTransforms, ColumnTransform{
			RootNodeID:      root,
			ColumnRefNodeID: cur,
			ColumnID:        columnID,
		})
	}
}

// classifyOperatorApplication reports whether node id is an arithmetic
// operator application with exactly one column-transform-eligible operand
// (a bare column reference, or a narrower transform) and every other
// operand constant. On success it marks id's Expression and returns the
// eligible operand's node id.
func classifyOperatorApplication(nodes []ast.Node, out *AnalyzedScript, id ast.NodeID) (ast.NodeID, bool) {
	opNodeID, ok := ast.LookupAttribute(nodes, id, ast.AttributeKeyExpressionOperator)
	if !ok {
		return 0, false
	}
	op := parser.ExpressionOperator(nodes[opNodeID].Value())
	if !op.IsArithmeticBinary() {
		// Unary NEGATE/NOT are considered separately and never fold into a
		// column transform.
		return 0, false
	}

	operands := expressionOperands(nodes, id)
	var eligible ast.NodeID
	found := false
	for _, opID := range operands {
		if isColumnTransformEligible(nodes, out, opID) {
			if found {
				return 0, false
			}
			eligible = opID
			found = true
			continue
		}
		if e, ok := out.getExpr(opID); !ok || !e.IsConstant {
			return 0, false
		}
	}
	if !found {
		return 0, false
	}

	out.setExpr(id, Expression{NodeID: id, IsColumnTransform: true, TargetExpressionID: eligible})
	return eligible, true
}

// classifyFunctionApplication is classifyOperatorApplication's counterpart
// for OBJECT_SQL_FUNCTION_EXPRESSION nodes (§4.F): a function call qualifies
// under the same "one column-transform operand, rest constant" condition,
// but only when the call carries no function-call modifiers (DISTINCT,
// ORDER BY, FILTER, ...) — a modifier changes what the call computes in a
// way a plain per-row column transform can't represent.
func classifyFunctionApplication(nodes []ast.Node, out *AnalyzedScript, id ast.NodeID) (ast.NodeID, bool) {
	if modsID, ok := ast.LookupAttribute(nodes, id, ast.AttributeKeyFunctionModifiers); ok {
		if _, count := nodes[modsID].Children(); count > 0 {
			return 0, false
		}
	}

	operands := functionOperands(nodes, id)
	var eligible ast.NodeID
	found := false
	for _, opID := range operands {
		if isColumnTransformEligible(nodes, out, opID) {
			if found {
				return 0, false
			}
			eligible = opID
			found = true
			continue
		}
		if e, ok := out.getExpr(opID); !ok || !e.IsConstant {
			return 0, false
		}
	}
	if !found {
		return 0, false
	}

	out.setExpr(id, Expression{NodeID: id, IsColumnTransform: true, TargetExpressionID: eligible})
	return eligible, true
}

func isColumnTransformEligible(nodes []ast.Node, out *AnalyzedScript, id ast.NodeID) bool {
	if nodes[id].Type == ast.NodeTypeObjectSQLColumnRef {
		return true
	}
	e, ok := out.getExpr(id)
	return ok && e.IsColumnTransform
}
