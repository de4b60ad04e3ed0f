package automation

import (
	"context"
	"fmt"
	"log"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// ScriptExecutor runs the tengo script attached to a rule. Scripts see the
// rule and its dashboard as plain variables and the tengo stdlib.
type ScriptExecutor interface {
	Execute(ctx context.Context, rule *AutomationRule) error
}

type ScriptExecutorImpl struct{}

func NewScriptExecutor() ScriptExecutor {
	return &ScriptExecutorImpl{}
}

func (e *ScriptExecutorImpl) Execute(ctx context.Context, rule *AutomationRule) error {
	if rule.Script == "" {
		return nil
	}

	script := tengo.NewScript([]byte(rule.Script))
	script.SetImports(stdlib.GetModuleMap("text", "times", "fmt", "json"))

	script.Add("rule", ruleVars(rule))

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("failed to compile script: %w", err)
	}

	if err := compiled.RunContext(ctx); err != nil {
		return fmt.Errorf("failed to run script: %w", err)
	}

	log.Printf("Executed script for rule %s", rule.ID)
	return nil
}

func ruleVars(rule *AutomationRule) map[string]interface{} {
	recipients := make([]interface{}, 0, len(rule.Recipients))
	for _, r := range rule.Recipients {
		recipients = append(recipients, r)
	}
	return map[string]interface{}{
		"id":         rule.ID,
		"title":      rule.Title,
		"type":       rule.Type,
		"dashboard":  rule.Dashboard.Key(),
		"schedule":   rule.Schedule,
		"recipients": recipients,
	}
}
