package genstream

import (
	"encoding/json"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// codeLanguages are the fence languages treated as app source.
var codeLanguages = map[string]bool{
	"js": true, "jsx": true, "javascript": true,
	"ts": true, "tsx": true, "typescript": true,
}

// ExtractCode pulls the app source and its dependency map out of a
// markdown generation response. The first fenced block with a recognized
// source language becomes the code; a json fence containing a
// "dependencies" object supplies the dependency map. When the response
// carries no recognized fence at all, the raw text is returned as code;
// models sometimes emit bare source without fences.
func ExtractCode(markdown string) (code string, deps map[string]string) {
	src := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var firstFence string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fc, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lang := strings.ToLower(string(fc.Language(src)))
		body := fenceBody(fc, src)

		switch {
		case codeLanguages[lang] && code == "":
			code = body
		case lang == "json" && deps == nil:
			deps = parseDependencies(body)
		case firstFence == "":
			firstFence = body
		}
		return ast.WalkContinue, nil
	})

	if code == "" {
		code = firstFence
	}
	if code == "" {
		code = markdown
	}
	return code, deps
}

// fenceBody concatenates the source lines of a fenced code block.
func fenceBody(fc *ast.FencedCodeBlock, src []byte) string {
	var b strings.Builder
	lines := fc.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(src[seg.Start:seg.Stop])
	}
	return b.String()
}

// parseDependencies reads a {"dependencies": {...}} json fence. A fence
// that is a bare name→version object is accepted too. Unparseable input
// yields nil rather than an error; dependency hints are best-effort.
func parseDependencies(body string) map[string]string {
	var wrapped struct {
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.Unmarshal([]byte(body), &wrapped); err == nil && len(wrapped.Dependencies) > 0 {
		return wrapped.Dependencies
	}
	var bare map[string]string
	if err := json.Unmarshal([]byte(body), &bare); err == nil && len(bare) > 0 {
		return bare
	}
	return nil
}
