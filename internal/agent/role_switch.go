package agent

import (
	"strings"

	"github.com/jarvisai/jarvis/pkg/models"
)

// SwitchRoleSentinelPrefix is the fixed marker the switch_role tool's
// result begins its first line with (spec §6):
// "__JARVIS_SWITCH_ROLE__:<role>".
const SwitchRoleSentinelPrefix = "__JARVIS_SWITCH_ROLE__:"

// ParseRoleSwitch extracts the role named on content's first line, if it
// begins with the sentinel. Role strings outside the five-role enum are
// rejected (spec §6: "the state is not changed").
func ParseRoleSwitch(content string) (string, bool) {
	firstLine := content
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		firstLine = content[:idx]
	}
	firstLine = strings.TrimSpace(firstLine)

	if !strings.HasPrefix(firstLine, SwitchRoleSentinelPrefix) {
		return "", false
	}
	role := strings.TrimSpace(strings.TrimPrefix(firstLine, SwitchRoleSentinelPrefix))
	if !models.IsValidAgentRole(role) {
		return "", false
	}
	return role, true
}
