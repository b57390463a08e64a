package steps

import "github.com/dukex/stepflow/pkg/protocol"

// Defaults returns the factories of every built-in step type in palette order.
func Defaults() []protocol.StepFactory {
	return []protocol.StepFactory{
		NewStartStepFactory(),
		NewEndStepFactory(),
		NewAPICallStepFactory(),
		NewEmailStepFactory(),
		NewTextBoxStepFactory(),
		NewConditionStepFactory(),
	}
}
