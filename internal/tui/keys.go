package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/hay-kot/stager/internal/core/config"
	"github.com/hay-kot/stager/internal/core/label"
)

// labelBinding binds one category to its keys.
type labelBinding struct {
	Category string
	Binding  key.Binding
}

// KeyMap holds every binding the review screen responds to.
type KeyMap struct {
	Labels []labelBinding
	Skip   key.Binding
	Back   key.Binding
	Save   key.Binding
	Quit   key.Binding
	Help   key.Binding
	Up     key.Binding
	Down   key.Binding
}

// NewKeyMap builds the key map from configured bindings. Categories are
// taken in label order so the help and sidebar list them consistently.
func NewKeyMap(bindings map[string][]string) KeyMap {
	km := KeyMap{
		Skip: bind(bindings[config.ActionSkip], "skip"),
		Back: bind(bindings[config.ActionBack], "back"),
		Save: bind(bindings[config.ActionSave], "save"),
		Quit: bind(bindings[config.ActionQuit], "quit"),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Up:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "scroll up")),
		Down: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "scroll down")),
	}

	for _, c := range label.Strings() {
		km.Labels = append(km.Labels, labelBinding{
			Category: c,
			Binding:  bind(bindings[c], c),
		})
	}

	return km
}

func bind(keys []string, desc string) key.Binding {
	helpKey := ""
	if len(keys) > 0 {
		helpKey = keys[0]
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc))
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	out := make([]key.Binding, 0, len(k.Labels)+3)
	for _, lb := range k.Labels {
		out = append(out, lb.Binding)
	}
	return append(out, k.Skip, k.Back, k.Help)
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	labels := make([]key.Binding, 0, len(k.Labels))
	for _, lb := range k.Labels {
		labels = append(labels, lb.Binding)
	}
	return [][]key.Binding{
		labels,
		{k.Skip, k.Back, k.Up, k.Down},
		{k.Save, k.Help, k.Quit},
	}
}
