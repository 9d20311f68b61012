package cmd

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/rivo/tview"
)

const highlightStyle = "monokai"

// highlight renders text as tview color tags using the chroma lexer for
// language. Unknown languages come back escaped but uncolored.
func highlight(text, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		return tview.Escape(text)
	}
	lexer = chroma.Coalesce(lexer)

	tokens, err := chroma.Tokenise(lexer, nil, text)
	if err != nil {
		return tview.Escape(text)
	}

	style := styles.Get(highlightStyle)
	base := style.Get(chroma.Text).Colour

	var sb strings.Builder
	for _, tok := range tokens {
		if tok.Type == chroma.EOFType {
			break
		}
		value := tview.Escape(tok.Value)
		entry := style.Get(tok.Type)
		// only tokens with their own color get a tag
		if !entry.Colour.IsSet() || entry.Colour == base {
			sb.WriteString(value)
			continue
		}
		fmt.Fprintf(&sb, "[%s]%s[-]", entry.Colour.String(), value)
	}
	return sb.String()
}
