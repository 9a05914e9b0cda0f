package toolbar

import "github.com/marcus/folio/pkg/editor"

// PluginKey is the state key the toolbar factory is registered under.
const PluginKey editor.PluginKey = "toolbar-plugin"

// Methods is the toolbar factory feature plugins look up in the editor state.
type Methods struct {
	CreateToolbar func(view *editor.View, target Target, derive DeriveFunc, shouldShow ShouldShowFunc) (*Instance, error)
}

// NewPlugin returns the host integration plugin. It holds nothing but the
// factory, so one plugin serves any number of toolbars.
func NewPlugin(env *Env) editor.Plugin {
	methods := &Methods{
		CreateToolbar: func(view *editor.View, target Target, derive DeriveFunc, shouldShow ShouldShowFunc) (*Instance, error) {
			return New(env, view, target, derive, shouldShow)
		},
	}
	return editor.Plugin{
		Key: PluginKey,
		State: &editor.StateField{
			Init:  func(editor.State) any { return methods },
			Apply: func(_ *editor.Transaction, value any, _, _ editor.State) any { return value },
		},
	}
}

// FromState returns the factory registered on state.
func FromState(state editor.State) (*Methods, bool) {
	v, ok := state.PluginState(PluginKey)
	if !ok {
		return nil, false
	}
	m, ok := v.(*Methods)
	if !ok || m == nil || m.CreateToolbar == nil {
		return nil, false
	}
	return m, true
}
