// Package manifest builds the virtual filesystem handed to the sandbox:
// a single-file map with the current source under a fixed path.
package manifest

// AppPath is where the sandbox expects the generated app source.
const AppPath = "/App.jsx"

// Build returns the sandbox filesystem for the given source. While the
// welcome screen is showing, or before any code exists, the manifest is
// empty and the sandbox keeps its built-in content.
func Build(code string, showWelcome bool) map[string]string {
	if showWelcome || code == "" {
		return nil
	}
	return map[string]string{AppPath: code}
}
