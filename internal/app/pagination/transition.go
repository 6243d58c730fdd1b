package pagination

import "strings"

// Symbol es una de las reacciones de navegación.
type Symbol string

const (
	SymFirst    Symbol = "⏪"
	SymPrevious Symbol = "◀"
	SymStop     Symbol = "⏹"
	SymNext     Symbol = "▶"
	SymLast     Symbol = "⏩"
)

// Symbols en el orden en que se agregan al mensaje.
var Symbols = []Symbol{SymFirst, SymPrevious, SymStop, SymNext, SymLast}

// ParseSymbol normaliza el emoji que llega del evento (Discord a veces agrega U+FE0F).
func ParseSymbol(emoji string) (Symbol, bool) {
	s := Symbol(strings.ReplaceAll(emoji, "\ufe0f", ""))
	for _, sym := range Symbols {
		if s == sym {
			return sym, true
		}
	}
	return "", false
}

// Transition aplica la tabla de navegación. stop=true significa terminar el menú.
// Con total <= 0 siempre devuelve 0.
func Transition(sym Symbol, total, n int) (next int, stop bool) {
	if sym == SymStop {
		return 0, true
	}
	if total <= 0 {
		return 0, false
	}
	switch sym {
	case SymFirst:
		return 0, false
	case SymPrevious:
		return (n - 1 + total) % total, false
	case SymNext:
		return (n + 1) % total, false
	case SymLast:
		return total - 1, false
	}
	return n, false
}
