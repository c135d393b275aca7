package glsl

import "testing"

func tokenizeAll(t *testing.T, src string) []Token {
	t.Helper()
	lex := NewLexer(src, 0)
	toks, err := lex.Tokenize()
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	return toks
}

func TestLineContinuation(t *testing.T) {
	src := "int a\\\n = 1;"
	out, lineOf := joinContinuations(src)
	if out != "int a = 1;" {
		t.Fatalf("got %q", out)
	}
	if len(lineOf) != len(out) {
		t.Fatalf("lineOf length mismatch: %d vs %d", len(lineOf), len(out))
	}
}

func TestMacroDuplicateParameterNames(t *testing.T) {
	diags := &Diagnostics{}
	pp := NewPreprocessor(diags)
	toks := tokenizeAll(t, "#define A(x,x) x\n")
	pp.Process(toks)
	if pp.IsDefined("A") {
		t.Fatalf("macro A should not be registered")
	}
	if !diags.HasErrors() {
		t.Fatalf("expected a diagnostic for duplicate parameter names")
	}
}

func TestVersion310Unsupported(t *testing.T) {
	diags := &Diagnostics{}
	pp := NewPreprocessor(diags)
	toks := tokenizeAll(t, "#version 310 es\n")
	pp.Process(toks)
	if !diags.HasErrors() {
		t.Fatalf("expected unsupported-version diagnostic")
	}
}

func TestVersion300RequiresES(t *testing.T) {
	diags := &Diagnostics{}
	pp := NewPreprocessor(diags)
	toks := tokenizeAll(t, "#version 300\n")
	pp.Process(toks)
	if !diags.HasErrors() {
		t.Fatalf("expected a diagnostic requiring the 'es' token")
	}
}

func TestObjectMacroExpansion(t *testing.T) {
	diags := &Diagnostics{}
	pp := NewPreprocessor(diags)
	toks := tokenizeAll(t, "#define N 4\nint a = N;\n")
	out := pp.Process(toks)
	var texts []string
	for _, tk := range out {
		if tk.Kind != TokenEOF {
			texts = append(texts, tk.Text)
		}
	}
	want := []string{"int", "a", "=", "4", ";"}
	if len(texts) != len(want) {
		t.Fatalf("got %v", texts)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Fatalf("token %d: got %q want %q", i, texts[i], want[i])
		}
	}
}

func TestFunctionMacroExpansion(t *testing.T) {
	diags := &Diagnostics{}
	pp := NewPreprocessor(diags)
	toks := tokenizeAll(t, "#define ADD(a,b) ((a)+(b))\nint c = ADD(1,2);\n")
	out := pp.Process(toks)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	found := false
	for _, tk := range out {
		if tk.Kind == TokenIntLiteral && tk.Text == "2" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected expanded argument 2 in output: %v", out)
	}
}

func TestRedefinitionSameBodyIsSilent(t *testing.T) {
	diags := &Diagnostics{}
	pp := NewPreprocessor(diags)
	tokenizeAll(t, "")
	loc := Location{File: 0, Line: 1}
	body := []Token{{Kind: TokenIntLiteral, Text: "1"}}
	pp.Define(Macro{Name: "X", Kind: MacroObject, Replacement: body}, loc)
	pp.Define(Macro{Name: "X", Kind: MacroObject, Replacement: body}, loc)
	if diags.HasErrors() {
		t.Fatalf("identical redefinition should be silent, got: %v", diags)
	}
}

func TestRedefinitionDifferentBodyErrors(t *testing.T) {
	diags := &Diagnostics{}
	pp := NewPreprocessor(diags)
	loc := Location{File: 0, Line: 1}
	pp.Define(Macro{Name: "X", Kind: MacroObject, Replacement: []Token{{Kind: TokenIntLiteral, Text: "1"}}}, loc)
	pp.Define(Macro{Name: "X", Kind: MacroObject, Replacement: []Token{{Kind: TokenIntLiteral, Text: "2"}}}, loc)
	if !diags.HasErrors() {
		t.Fatalf("expected an error for conflicting redefinition")
	}
}

func TestReservedGLPrefix(t *testing.T) {
	diags := &Diagnostics{}
	pp := NewPreprocessor(diags)
	pp.Define(Macro{Name: "GL_FOO", Kind: MacroObject}, Location{Line: 1})
	if !diags.HasErrors() {
		t.Fatalf("expected reserved-name error")
	}
}

func TestUndefWhileExpanding(t *testing.T) {
	diags := &Diagnostics{}
	pp := NewPreprocessor(diags)
	pp.Define(Macro{Name: "X", Kind: MacroObject, Replacement: []Token{{Kind: TokenIntLiteral, Text: "1"}}}, Location{Line: 1})
	pp.macros["X"].ExpansionCount = 1
	pp.Undef("X", Location{Line: 2})
	if !diags.HasErrors() {
		t.Fatalf("expected error undefining a macro mid-expansion")
	}
}

func TestIfElifSkipsUnevaluated(t *testing.T) {
	diags := &Diagnostics{}
	pp := NewPreprocessor(diags)
	src := "#define A 1\n#if A\nint x = 1;\n#elif 1/0\nint y = 2;\n#endif\n"
	toks := tokenizeAll(t, src)
	// The #elif condition divides by zero, but because the #if already
	// matched, spec.md §4.1 requires it never be evaluated.
	pp.Process(toks)
	if diags.HasErrors() {
		t.Fatalf("unevaluated #elif should not produce a division error: %v", diags)
	}
}
