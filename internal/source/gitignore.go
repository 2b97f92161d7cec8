package source

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	gitgitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ignorer matches slash paths against the .gitignore files found from the
// root down to each path's directory. Patterns are read once per directory.
type ignorer struct {
	root  string
	cache map[string][]gitgitignore.Pattern
}

func newIgnorer(root string) *ignorer {
	return &ignorer{root: root, cache: map[string][]gitgitignore.Pattern{}}
}

func (g *ignorer) match(rel string, isDir bool) bool {
	if path.Base(rel) == ".gitignore" {
		return true
	}
	var patterns []gitgitignore.Pattern
	for _, d := range dirsForRel(rel) {
		patterns = append(patterns, g.patterns(d)...)
	}
	if len(patterns) == 0 {
		return false
	}
	return gitgitignore.NewMatcher(patterns).Match(strings.Split(rel, "/"), isDir)
}

func (g *ignorer) patterns(dir string) []gitgitignore.Pattern {
	if ps, ok := g.cache[dir]; ok {
		return ps
	}
	ps := readGitignorePatterns(g.root, dir)
	g.cache[dir] = ps
	return ps
}

// dirsForRel returns the directories from "." down to the directory of rel.
func dirsForRel(rel string) []string {
	dirs := []string{"."}
	dir := path.Dir(rel)
	if dir == "." {
		return dirs
	}
	cur := ""
	for _, part := range strings.Split(dir, "/") {
		cur = path.Join(cur, part)
		dirs = append(dirs, cur)
	}
	return dirs
}

// readGitignorePatterns parses root/dir/.gitignore; a missing file yields none.
func readGitignorePatterns(root, dir string) []gitgitignore.Pattern {
	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(dir), ".gitignore"))
	if err != nil {
		return nil
	}
	var domain []string
	if dir != "." {
		domain = strings.Split(dir, "/")
	}
	var patterns []gitgitignore.Pattern
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitgitignore.ParsePattern(line, domain))
	}
	return patterns
}
