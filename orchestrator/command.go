package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nxtg-ai/forge/core"
)

// CommandRecord is one entry in the command facade's history.
type CommandRecord struct {
	Name      string    `json:"name"`
	Args      []string  `json:"args,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	Output    string    `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// YOLOStats tracks activity while YOLO mode is enabled. In YOLO mode the
// facade skips confirmation prompts, so frontends surface these counters to
// keep the user aware of what ran unattended.
type YOLOStats struct {
	Enabled          bool       `json:"enabled"`
	EnabledAt        *time.Time `json:"enabled_at,omitempty"`
	CommandsExecuted int        `json:"commands_executed"`
	TasksQueued      int        `json:"tasks_queued"`
}

var commandNames = []string{"agents", "decisions", "init", "progress", "queue", "status", "yolo"}

// ExecuteCommand runs a named engine command and records it in the command
// history. Unknown commands fail with an error naming the command.
func (e *Engine) ExecuteCommand(ctx context.Context, name string, args ...string) (string, error) {
	output, err := e.runCommand(ctx, name, args)

	record := CommandRecord{
		Name:      name,
		Args:      append([]string(nil), args...),
		Timestamp: time.Now().UTC(),
		Success:   err == nil,
		Output:    output,
	}
	if err != nil {
		record.Error = err.Error()
	}

	e.commandMu.Lock()
	e.commands = append(e.commands, record)
	if e.yoloMode {
		e.yoloStats.CommandsExecuted++
	}
	e.commandMu.Unlock()

	return output, err
}

func (e *Engine) runCommand(ctx context.Context, name string, args []string) (string, error) {
	switch name {
	case "init":
		e.setStatus(core.StatusIdle)
		return "engine initialized", nil

	case "status":
		progress := e.GetProgress()
		return fmt.Sprintf("status=%s phase=%s progress=%d%% tasks=%d",
			e.Status(), progress.CurrentPhase, progress.OverallProgress, progress.TotalTasks), nil

	case "progress":
		progress := e.GetProgress()
		return fmt.Sprintf("%d/%d completed, %d in progress, %d failed, %d blocked",
			progress.CompletedTasks, progress.TotalTasks,
			progress.InProgressTasks, progress.FailedTasks, progress.BlockedTasks), nil

	case "agents":
		agents := e.protocol.Agents()
		lines := make([]string, 0, len(agents))
		for _, agent := range agents {
			lines = append(lines, fmt.Sprintf("%s (%s)", agent.ID, agent.Role))
		}
		return strings.Join(lines, "\n"), nil

	case "queue":
		stats := e.protocol.QueueStats()
		return fmt.Sprintf("%d queued messages, %d queued tasks", stats.Total, e.QueueLength()), nil

	case "decisions":
		decisions := e.protocol.ArchitectureDecisions()
		lines := make([]string, 0, len(decisions))
		for _, d := range decisions {
			lines = append(lines, fmt.Sprintf("%s [%s] %s", d.ID, d.Status, d.Title))
		}
		return strings.Join(lines, "\n"), nil

	case "yolo":
		if len(args) > 0 && args[0] == "off" {
			e.DisableYOLO()
			return "YOLO mode disabled", nil
		}
		e.EnableYOLO()
		return "YOLO mode enabled", nil

	default:
		return "", fmt.Errorf("Unknown command: %s", name)
	}
}

// CommandHistory returns all executed commands in chronological order.
func (e *Engine) CommandHistory() []CommandRecord {
	e.commandMu.Lock()
	defer e.commandMu.Unlock()
	return append([]CommandRecord(nil), e.commands...)
}

// CommandSuggestions returns the command names matching a prefix, sorted
// alphabetically. An empty prefix lists every command.
func (e *Engine) CommandSuggestions(prefix string) []string {
	var out []string
	for _, name := range commandNames {
		if strings.HasPrefix(name, strings.ToLower(prefix)) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// EnableYOLO turns on unattended mode and starts a fresh stats window.
func (e *Engine) EnableYOLO() {
	e.commandMu.Lock()
	defer e.commandMu.Unlock()
	if e.yoloMode {
		return
	}
	now := time.Now().UTC()
	e.yoloMode = true
	e.yoloStats = YOLOStats{Enabled: true, EnabledAt: &now}
}

// DisableYOLO turns off unattended mode; accumulated stats remain readable.
func (e *Engine) DisableYOLO() {
	e.commandMu.Lock()
	defer e.commandMu.Unlock()
	e.yoloMode = false
	e.yoloStats.Enabled = false
}

// YOLOStats returns a copy of the current unattended-mode counters.
func (e *Engine) YOLOStats() YOLOStats {
	e.commandMu.Lock()
	defer e.commandMu.Unlock()
	return e.yoloStats
}
