package cycle

import "time"

// StepObserver receives lifecycle notifications for cycle execution.
type StepObserver interface {
	// OperationStarted reports that an operation is about to execute.
	OperationStarted(runID string, operationName string)
	// OperationFinished reports the outcome of an operation; failure is nil on success.
	OperationFinished(runID string, operationName string, duration time.Duration, failure error)
	// CycleFinished reports the outcome of the whole cycle; failure is nil on success.
	CycleFinished(runID string, duration time.Duration, failure error)
}

// StepObservers fans notifications out to every member.
type StepObservers []StepObserver

// OperationStarted implements StepObserver.
func (observers StepObservers) OperationStarted(runID string, operationName string) {
	for _, observer := range observers {
		if observer != nil {
			observer.OperationStarted(runID, operationName)
		}
	}
}

// OperationFinished implements StepObserver.
func (observers StepObservers) OperationFinished(runID string, operationName string, duration time.Duration, failure error) {
	for _, observer := range observers {
		if observer != nil {
			observer.OperationFinished(runID, operationName, duration, failure)
		}
	}
}

// CycleFinished implements StepObserver.
func (observers StepObservers) CycleFinished(runID string, duration time.Duration, failure error) {
	for _, observer := range observers {
		if observer != nil {
			observer.CycleFinished(runID, duration, failure)
		}
	}
}
