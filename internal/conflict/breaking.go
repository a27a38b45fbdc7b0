package conflict

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/vordr/internal/note"
)

var (
	interfaceRe = regexp.MustCompile(`export\s+interface\s+(\w+)\s*\{([^}]+)\}`)
	memberRe    = regexp.MustCompile(`(\w+)\s*\??:`)
)

// breakingRule detects removed public interfaces and removed interface
// members by structural pattern match. It only runs when prior content is
// available; report order follows the order interfaces appear in the old
// content.
type breakingRule struct{}

func (breakingRule) Name() string { return "breaking-changes" }

func (breakingRule) Apply(_ *note.Note, newContent, oldContent string, rep *Report) {
	if oldContent == "" {
		return
	}

	oldNames, oldMembers := extractInterfaces(oldContent)
	_, newMembers := extractInterfaces(newContent)

	for _, name := range oldNames {
		newSet, exists := newMembers[name]
		if !exists {
			rep.Breaking = append(rep.Breaking, BreakingChange{
				Type:      BreakingRemovedInterface,
				Interface: name,
				Details:   fmt.Sprintf("Public interface %s was removed", name),
			})
			continue
		}

		var removed []string
		for _, m := range oldMembers[name].order {
			if _, ok := newSet.set[m]; !ok {
				removed = append(removed, m)
			}
		}
		if len(removed) > 0 {
			rep.Breaking = append(rep.Breaking, BreakingChange{
				Type:       BreakingRemovedProperties,
				Interface:  name,
				Properties: removed,
				Details:    fmt.Sprintf("Properties removed from %s: %s", name, strings.Join(removed, ", ")),
			})
		}
	}
}

// memberSet holds an interface's member names both as a lookup set and in
// declaration order, so removed members report deterministically.
type memberSet struct {
	order []string
	set   map[string]struct{}
}

// extractInterfaces returns interface names in declaration order plus their
// members.
func extractInterfaces(content string) ([]string, map[string]memberSet) {
	var names []string
	members := make(map[string]memberSet)

	for _, m := range interfaceRe.FindAllStringSubmatch(content, -1) {
		name, body := m[1], m[2]
		set := memberSet{set: map[string]struct{}{}}
		for _, pm := range memberRe.FindAllStringSubmatch(body, -1) {
			if _, dup := set.set[pm[1]]; dup {
				continue
			}
			set.set[pm[1]] = struct{}{}
			set.order = append(set.order, pm[1])
		}
		if _, seen := members[name]; !seen {
			names = append(names, name)
		}
		members[name] = set
	}
	return names, members
}
