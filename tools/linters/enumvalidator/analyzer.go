package enumvalidator

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/analysis"
)

var Analyzer = &analysis.Analyzer{
	Name: "enumvalidator",
	Doc:  "checks that connection enum fields only use defined constants, not string literals",
	Run:  run,
}

// enumTypes are the closed string sets of the connection model. Values outside
// them must come through the domain parsers, never from a literal.
var enumTypes = map[string]bool{
	"ConnectionStatus": true,
	"ConnectionStage":  true,
	"Attachment":       true,
	"Incoterm":         true,
	"TransportMode":    true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			switch node := n.(type) {
			case *ast.AssignStmt:
				for i, lhs := range node.Lhs {
					if i >= len(node.Rhs) {
						continue
					}
					sel, ok := lhs.(*ast.SelectorExpr)
					if ok && isEnum(pass, sel) && isStringLiteral(node.Rhs[i]) {
						pass.Reportf(node.Pos(),
							"enum field %s assigned string literal; use defined constant instead",
							sel.Sel.Name)
					}
				}
			case *ast.KeyValueExpr:
				key, ok := node.Key.(*ast.Ident)
				if ok && isEnum(pass, key) && isStringLiteral(node.Value) {
					pass.Reportf(node.Pos(),
						"enum field %s set to string literal; use defined constant instead",
						key.Name)
				}
			}
			return true
		})
	}
	return nil, nil
}

func isEnum(pass *analysis.Pass, expr ast.Expr) bool {
	if t := pass.TypesInfo.TypeOf(expr); t != nil {
		if named, ok := t.(*types.Named); ok {
			return enumTypes[named.Obj().Name()]
		}
	}
	return false
}

func isStringLiteral(expr ast.Expr) bool {
	lit, ok := expr.(*ast.BasicLit)
	return ok && lit.Kind == token.STRING
}
