package acquire

import (
	"os/exec"
	"path/filepath"
)

// CookieStore is a browser whose cookie database may exist locally.
type CookieStore struct {
	Browser string
	Paths   []string
}

func (s CookieStore) present(exists func(string) bool) bool {
	for _, p := range s.Paths {
		if exists(p) {
			return true
		}
	}
	return false
}

// DefaultCookieStores lists the Chrome and Edge default-profile cookie
// databases for goos. localAppData is only used on Windows.
func DefaultCookieStores(goos, home, localAppData string) []CookieStore {
	switch goos {
	case "windows":
		if localAppData == "" {
			return nil
		}
		return []CookieStore{
			{Browser: "chrome", Paths: []string{filepath.Join(localAppData, "Google", "Chrome", "User Data", "Default", "Network", "Cookies")}},
			{Browser: "edge", Paths: []string{filepath.Join(localAppData, "Microsoft", "Edge", "User Data", "Default", "Network", "Cookies")}},
		}
	case "darwin":
		return []CookieStore{
			{Browser: "chrome", Paths: []string{filepath.Join(home, "Library", "Application Support", "Google", "Chrome", "Default", "Cookies")}},
			{Browser: "edge", Paths: []string{filepath.Join(home, "Library", "Application Support", "Microsoft Edge", "Default", "Cookies")}},
		}
	default:
		return []CookieStore{
			{Browser: "chrome", Paths: []string{filepath.Join(home, ".config", "google-chrome", "Default", "Cookies")}},
			{Browser: "edge", Paths: []string{filepath.Join(home, ".config", "microsoft-edge", "Default", "Cookies")}},
		}
	}
}

var jsRuntimes = []struct{ name, exe string }{
	{"deno", "deno"},
	{"node", "node"},
	{"bun", "bun"},
	{"quickjs", "qjs"},
}

// DetectJSRuntimes returns the runtimes whose executables lookPath finds.
// A nil lookPath uses exec.LookPath.
func DetectJSRuntimes(lookPath func(string) (string, error)) []string {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	var out []string
	for _, rt := range jsRuntimes {
		if _, err := lookPath(rt.exe); err == nil {
			out = append(out, rt.name)
		}
	}
	return out
}
