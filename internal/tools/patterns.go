package tools

import "regexp"

// destructiveRule describes a shell pattern run_command refuses to execute.
type destructiveRule struct {
	pattern *regexp.Regexp
	reason  string
}

var destructivePatterns []destructiveRule

func init() {
	raw := []struct {
		pattern string
		reason  string
	}{
		// Filesystem destruction
		{`\brm\s+.*-[a-zA-Z]*[rR]`, "recursive remove"},
		{`\brm\s+.*-[a-zA-Z]*[fF]`, "force remove"},
		// Disk/partition
		{`\bdd\b\s+.*\bof=`, "raw disk write (dd)"},
		{`\bmkfs\b`, "filesystem format"},
		{`\bfdisk\b`, "partition edit"},
		// System
		{`:\(\)\s*\{`, "fork bomb"},
		{`>/dev/sd[a-z]`, "raw device write"},
		{`\bchmod\s+.*-[a-zA-Z]*[rR]`, "recursive chmod"},
		{`\bchown\s+.*-[a-zA-Z]*[rR]`, "recursive chown"},
		// Privilege escalation
		{`\bsudo\b`, "privilege escalation"},
		{`\bsu\s`, "switch user"},
	}
	destructivePatterns = make([]destructiveRule, len(raw))
	for i, r := range raw {
		destructivePatterns[i] = destructiveRule{
			pattern: regexp.MustCompile(r.pattern),
			reason:  r.reason,
		}
	}
}

// matchDestructivePattern checks a command string against the denylist.
// Returns the matched rule, or nil if the command is safe.
func matchDestructivePattern(command string) *destructiveRule {
	for i := range destructivePatterns {
		if destructivePatterns[i].pattern.MatchString(command) {
			return &destructivePatterns[i]
		}
	}
	return nil
}
