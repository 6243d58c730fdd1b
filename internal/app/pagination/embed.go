package pagination

import "fmt"

// Embed es lo que se muestra; el adapter lo traduce a *discordgo.MessageEmbed.
type Embed struct {
	Title       string
	Description string
	Footer      string
	Thumbnail   string
}

// Render proyecta el menú en la página actual.
func Render(inst *Instance, tr Translator) Embed {
	n := inst.CurrentPage
	total := len(inst.Entries)

	var page Page
	if n < len(inst.Pages) {
		page = inst.Pages[n]
	}

	e := Embed{
		Title:     page.Title,
		Footer:    inst.Footer,
		Thumbnail: page.Thumbnail,
	}
	if n < total {
		e.Description = inst.Entries[n]
	}
	if e.Title == "" {
		e.Title = tr.Translate(inst.Lang, "global.page", map[string]any{"num": n + 1})
	}
	if e.Footer == "" {
		e.Footer = tr.Translate(inst.Lang, "global.page", map[string]any{"num": fmt.Sprintf("%d/%d", n+1, total)})
	}
	return e
}
