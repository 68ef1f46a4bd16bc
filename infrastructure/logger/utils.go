package logger

import (
	"time"
)

// LogAndMeasureExecutionTime logs that the given function started, and
// returns a function that logs how long it took when deferred.
func LogAndMeasureExecutionTime(log *Logger, functionName string) (onEnd func()) {
	start := time.Now()
	log.Debugf("%s start", functionName)
	return func() {
		log.Debugf("%s end. Took: %s", functionName, time.Since(start))
	}
}
