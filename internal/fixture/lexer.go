// Package fixture is a tiny textual front-end used only to exercise the
// mid-end in tests and in cmd/midendc's -fixture mode. It is not a
// production front-end: it is scaffolding that lets internal/scenarios and
// cmd/midendc build internal/ast trees from short source snippets instead
// of constructing them by hand in Go every time.
package fixture

import "github.com/alecthomas/participle/v2/lexer"

var fixtureLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Integer", `[0-9]+`, nil},
		{"Operator", `(\|\||&&|==|!=|<=|>=|[-+*/%<>=!])`, nil},
		{"Punctuation", `[{}\[\]();,:]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
